package model

import "time"

type MilkPhase string

const (
	MilkPhaseNightFOH  MilkPhase = "night_foh"
	MilkPhaseNightBOH  MilkPhase = "night_boh"
	MilkPhaseMorning   MilkPhase = "morning"
	MilkPhaseOnOrder   MilkPhase = "on_order"
	MilkPhaseCompleted MilkPhase = "completed"
)

type DeliveryMethod string

const (
	DeliveryMethodBOHCount DeliveryMethod = "boh_count"
	DeliveryMethodDirect   DeliveryMethod = "direct"
)

// MilkField names a writable count column on a milk order entry.
type MilkField string

const (
	MilkFieldFOH        MilkField = "foh"
	MilkFieldBOH        MilkField = "boh"
	MilkFieldCurrentBOH MilkField = "current_boh"
	MilkFieldDelivered  MilkField = "delivered"
	MilkFieldOnOrder    MilkField = "on_order"
)

// Phase is the phase in which the field is first collected.
func (f MilkField) Phase() (MilkPhase, bool) {
	switch f {
	case MilkFieldFOH:
		return MilkPhaseNightFOH, true
	case MilkFieldBOH:
		return MilkPhaseNightBOH, true
	case MilkFieldCurrentBOH, MilkFieldDelivered:
		return MilkPhaseMorning, true
	case MilkFieldOnOrder:
		return MilkPhaseOnOrder, true
	}
	return "", false
}

type MilkOrderSession struct {
	ID              string           `db:"id" json:"id"`
	ScopeID         string           `db:"scope_id" json:"scope_id"`
	UserID          string           `db:"user_id" json:"user_id"`
	SessionDate     string           `db:"session_date" json:"session_date"`
	Status          MilkPhase        `db:"status" json:"status"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
	NightFOHSavedAt *time.Time       `db:"night_foh_saved_at" json:"night_foh_saved_at"`
	NightBOHSavedAt *time.Time       `db:"night_boh_saved_at" json:"night_boh_saved_at"`
	MorningSavedAt  *time.Time       `db:"morning_saved_at" json:"morning_saved_at"`
	OnOrderSavedAt  *time.Time       `db:"on_order_saved_at" json:"on_order_saved_at"`
	CompletedAt     *time.Time       `db:"completed_at" json:"completed_at"`
	Entries         []MilkOrderEntry `db:"-" json:"entries,omitempty"`
}

func (s *MilkOrderSession) IsCompleted() bool {
	return s.Status == MilkPhaseCompleted
}

// StampSaved records when phase p was saved.
func (s *MilkOrderSession) StampSaved(p MilkPhase, at time.Time) {
	switch p {
	case MilkPhaseNightFOH:
		s.NightFOHSavedAt = &at
	case MilkPhaseNightBOH:
		s.NightBOHSavedAt = &at
	case MilkPhaseMorning:
		s.MorningSavedAt = &at
	case MilkPhaseOnOrder:
		s.OnOrderSavedAt = &at
	case MilkPhaseCompleted:
		s.CompletedAt = &at
	}
}

type MilkOrderEntry struct {
	SessionID      string          `db:"session_id" json:"session_id"`
	ItemID         string          `db:"item_id" json:"item_id"`
	ItemCode       string          `db:"item_code" json:"item_code"`
	ItemName       string          `db:"item_name" json:"item_name"`
	Par            int             `db:"par" json:"par"`
	SortOrder      int             `db:"sort_order" json:"-"`
	FOH            Count           `db:"foh" json:"foh"`
	BOH            Count           `db:"boh" json:"boh"`
	CurrentBOH     Count           `db:"current_boh" json:"current_boh"`
	Delivered      Count           `db:"delivered" json:"delivered"`
	DeliveryMethod *DeliveryMethod `db:"delivery_method" json:"delivery_method"`
	OnOrder        Count           `db:"on_order" json:"on_order"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// Set writes value into field. Morning fields also tag the delivery method.
func (e *MilkOrderEntry) Set(field MilkField, value Count) {
	switch field {
	case MilkFieldFOH:
		e.FOH = value
	case MilkFieldBOH:
		e.BOH = value
	case MilkFieldCurrentBOH:
		e.CurrentBOH = value
		m := DeliveryMethodBOHCount
		e.DeliveryMethod = &m
	case MilkFieldDelivered:
		e.Delivered = value
		m := DeliveryMethodDirect
		e.DeliveryMethod = &m
	case MilkFieldOnOrder:
		e.OnOrder = value
	}
}

// Primary is the count collected during phase p.
func (e *MilkOrderEntry) Primary(p MilkPhase) Count {
	switch p {
	case MilkPhaseNightFOH:
		return e.FOH
	case MilkPhaseNightBOH:
		return e.BOH
	case MilkPhaseMorning:
		if e.DeliveryMethod != nil && *e.DeliveryMethod == DeliveryMethodDirect {
			return e.Delivered
		}
		return e.CurrentBOH
	case MilkPhaseOnOrder:
		return e.OnOrder
	}
	return Count{}
}

type MilkSummaryRow struct {
	ItemID         string          `json:"item_id"`
	ItemCode       string          `json:"item_code"`
	ItemName       string          `json:"item_name"`
	FOH            int             `json:"foh"`
	BOH            int             `json:"boh"`
	Delivered      int             `json:"delivered"`
	DeliveryMethod *DeliveryMethod `json:"delivery_method"`
	OnOrder        int             `json:"on_order"`
	Total          int             `json:"total"`
	Par            int             `json:"par"`
	Order          int             `json:"order"`
}

type MilkSummaryTotals struct {
	FOH       int `json:"foh"`
	BOH       int `json:"boh"`
	Delivered int `json:"delivered"`
	OnOrder   int `json:"on_order"`
	Total     int `json:"total"`
	Par       int `json:"par"`
	Order     int `json:"order"`
}

type MilkSummary struct {
	SessionID   string            `json:"session_id"`
	SessionDate string            `json:"session_date"`
	Rows        []MilkSummaryRow  `json:"rows"`
	Totals      MilkSummaryTotals `json:"totals"`
}
