package dto

import "github.com/fekuna/omnipos-storeops-service/internal/auth"

type StartMode string

const (
	StartModeNew    StartMode = "new"
	StartModeResume StartMode = "resume"
)

type StartSessionInput struct {
	User auth.UserContext
	Mode StartMode
}

type WriteCountInput struct {
	User      auth.UserContext
	SessionID string
	ItemID    string
	Value     *int // nil means the client sent no value
}

type CountInput struct {
	ItemID string `json:"item_id"`
	Value  *int   `json:"value"`
}

type SaveCountsInput struct {
	User      auth.UserContext
	SessionID string
	Counts    []CountInput
}

type PullListInput struct {
	User      auth.UserContext
	SessionID string
	// AssignDefaults zeroes uncounted items instead of rejecting the request.
	AssignDefaults bool
}

type MarkPulledInput struct {
	User      auth.UserContext
	SessionID string
	ItemID    string
	Pulled    bool
}
