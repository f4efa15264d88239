package model

import "time"

type RTDEPhase string

const (
	RTDEPhaseCounting  RTDEPhase = "counting"
	RTDEPhasePulling   RTDEPhase = "pulling"
	RTDEPhaseCompleted RTDEPhase = "completed"
)

type RTDESession struct {
	ID              string      `db:"id" json:"id"`
	ScopeID         string      `db:"scope_id" json:"scope_id"`
	UserID          string      `db:"user_id" json:"user_id"`
	Status          RTDEPhase   `db:"status" json:"status"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
	CountingSavedAt *time.Time  `db:"counting_saved_at" json:"counting_saved_at"`
	PullingSavedAt  *time.Time  `db:"pulling_saved_at" json:"pulling_saved_at"`
	ExpiresAt       time.Time   `db:"expires_at" json:"expires_at"`
	CompletedAt     *time.Time  `db:"completed_at" json:"completed_at"`
	Entries         []RTDEEntry `db:"-" json:"entries,omitempty"`
}

// IsExpired is evaluated on every read so a lagging sweep never serves a stale session.
func (s *RTDESession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

func (s *RTDESession) StampSaved(p RTDEPhase, at time.Time) {
	switch p {
	case RTDEPhaseCounting:
		s.CountingSavedAt = &at
	case RTDEPhasePulling:
		s.PullingSavedAt = &at
	case RTDEPhaseCompleted:
		s.CompletedAt = &at
	}
}

type RTDEEntry struct {
	SessionID string    `db:"session_id" json:"session_id"`
	ItemID    string    `db:"item_id" json:"item_id"`
	ItemCode  string    `db:"item_code" json:"item_code"`
	ItemName  string    `db:"item_name" json:"item_name"`
	Par       int       `db:"par" json:"par"`
	SortOrder int       `db:"sort_order" json:"-"`
	Counted   Count     `db:"counted" json:"counted"`
	Pulled    bool      `db:"pulled" json:"pulled"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PullItem is one line of the pull list.
type PullItem struct {
	ItemID       string `json:"item_id"`
	ItemCode     string `json:"item_code"`
	ItemName     string `json:"item_name"`
	NeedQuantity int    `json:"need_quantity"`
	Pulled       bool   `json:"pulled"`
}
