package model

import "time"

const (
	EventSessionStarted   = "SessionStarted"
	EventSessionCompleted = "SessionCompleted"
	EventCatalogUpserted  = "CatalogItemUpserted"
)

const (
	ToolMilkOrder = "milk_order"
	ToolRTDE      = "rtde"
)

type SessionEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Tool      string    `json:"tool"`
	SessionID string    `json:"session_id"`
	ScopeID   string    `json:"scope_id"`
	UserID    string    `json:"user_id"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
