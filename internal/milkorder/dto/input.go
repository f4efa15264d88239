package dto

import (
	"github.com/fekuna/omnipos-storeops-service/internal/auth"
	"github.com/fekuna/omnipos-storeops-service/internal/model"
)

type StartMode string

const (
	StartModeNew    StartMode = "new"
	StartModeResume StartMode = "resume"
)

type StartSessionInput struct {
	User auth.UserContext
	Date string // YYYY-MM-DD, empty means today in the store's timezone
	Mode StartMode
}

type WriteCountInput struct {
	User      auth.UserContext
	SessionID string
	ItemID    string
	Field     model.MilkField
	Value     *int // nil means the client sent no value
}

type CountInput struct {
	ItemID string          `json:"item_id"`
	Field  model.MilkField `json:"field,omitempty"`
	Value  *int            `json:"value"`
}

type SavePhaseInput struct {
	User      auth.UserContext
	SessionID string
	Phase     model.MilkPhase
	Counts    []CountInput
}

type AdvancePhaseInput struct {
	User      auth.UserContext
	SessionID string
	Target    model.MilkPhase
}
