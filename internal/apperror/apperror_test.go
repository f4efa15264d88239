package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("load: %w", SessionNotFound())

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected wrapped error to match ErrNotFound")
	}
	if errors.Is(err, ErrForbidden) {
		t.Errorf("Expected wrapped error not to match ErrForbidden")
	}
	if KindOf(err) != KindNotFound {
		t.Errorf("Expected kind %s, got %s", KindNotFound, KindOf(err))
	}
	if KindOf(errors.New("db down")) != KindInternal {
		t.Errorf("Expected plain errors to be internal")
	}
}

func TestTransitionMessage(t *testing.T) {
	err := Transition("counting", "completed")
	if err.Error() != "cannot move session from counting to completed" {
		t.Errorf("Unexpected message %q", err.Error())
	}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected transition error to match ErrInvalidTransition")
	}
}
