package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindForbidden         Kind = "forbidden"
	KindNotFound          Kind = "not_found"
	KindInvalidTransition Kind = "invalid_transition"
	KindUnauthorized      Kind = "unauthorized"
	KindInternal          Kind = "internal"
)

// Error is a user-facing failure. MessageID selects the localized message,
// Message is the english rendering used in logs and as a fallback.
type Error struct {
	Kind      Kind
	MessageID string
	Message   string
	Data      map[string]any
	Details   any
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind so callers can write errors.Is(err, apperror.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.MessageID == "" && t.Kind == e.Kind
}

var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
)

func New(kind Kind, messageID, message string, data map[string]any) *Error {
	return &Error{Kind: kind, MessageID: messageID, Message: message, Data: data}
}

func Validation(messageID, message string, data map[string]any) *Error {
	return New(KindValidation, messageID, message, data)
}

func Forbidden(messageID, message string) *Error {
	return New(KindForbidden, messageID, message, nil)
}

func NotFound(messageID, message string, data map[string]any) *Error {
	return New(KindNotFound, messageID, message, data)
}

func InvalidTransition(messageID, message string, data map[string]any) *Error {
	return New(KindInvalidTransition, messageID, message, data)
}

func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func SessionNotFound() *Error {
	return NotFound("error.not_found.session", "session not found", nil)
}

func SessionForbidden() *Error {
	return Forbidden("error.forbidden.session", "you do not own this session")
}

func SessionCompleted() *Error {
	return InvalidTransition("error.transition.completed", "session is already completed", nil)
}

func Transition(from, to string) *Error {
	return InvalidTransition("error.transition.invalid",
		fmt.Sprintf("cannot move session from %s to %s", from, to),
		map[string]any{"From": from, "To": to})
}

func AdminRequired() *Error {
	return Forbidden("error.forbidden.admin", "admin rights are required")
}
