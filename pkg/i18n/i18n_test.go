package i18n

import "testing"

func TestLocalize(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	got := Localize("en", "error.transition.invalid", map[string]any{"From": "counting", "To": "completed"}, "fallback")
	if got != "cannot move session from counting to completed" {
		t.Errorf("Unexpected english message: %q", got)
	}

	got = Localize("id-ID,id;q=0.9", "error.not_found.session", nil, "fallback")
	if got != "sesi tidak ditemukan" {
		t.Errorf("Unexpected indonesian message: %q", got)
	}

	got = Localize("fr", "error.not_found.session", nil, "fallback")
	if got != "session not found" {
		t.Errorf("Expected english fallback for unknown language, got %q", got)
	}

	got = Localize("en", "error.does_not_exist", nil, "fallback")
	if got != "fallback" {
		t.Errorf("Expected fallback for unknown id, got %q", got)
	}
}
