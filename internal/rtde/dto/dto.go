package dto

import (
	"time"

	"github.com/fekuna/omnipos-storeops-service/internal/model"
)

type SessionView struct {
	*model.RTDESession
	ProgressPercent int `json:"progress_percent"`
}

type PullListView struct {
	SessionID       string           `json:"session_id"`
	Status          model.RTDEPhase  `json:"status"`
	Items           []model.PullItem `json:"items"`
	ProgressPercent int              `json:"progress_percent"`
}

// CompletionView confirms a finished session; the session itself is gone.
type CompletionView struct {
	SessionID   string          `json:"session_id"`
	Status      model.RTDEPhase `json:"status"`
	CompletedAt time.Time       `json:"completed_at"`
	Pulled      int             `json:"pulled"`
	PullItems   int             `json:"pull_items"`
}

// UncountedItem is one entry blocking the pull list.
type UncountedItem struct {
	ItemID   string `json:"item_id"`
	ItemCode string `json:"item_code"`
	ItemName string `json:"item_name"`
}
