package dto

import "github.com/fekuna/omnipos-storeops-service/internal/model"

// SessionView is a session with its entries and the progress of its current phase.
type SessionView struct {
	*model.MilkOrderSession
	ProgressPercent int `json:"progress_percent"`
}
