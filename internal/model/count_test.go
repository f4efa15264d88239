package model

import (
	"encoding/json"
	"testing"
)

func TestCount_UnsetIsNotZero(t *testing.T) {
	var unset Count
	zero := NewCount(0)

	if unset.IsSet() {
		t.Errorf("Expected zero value to be unset")
	}
	if !zero.IsSet() {
		t.Errorf("Expected NewCount(0) to be set")
	}
	if unset.OrZero() != 0 || zero.OrZero() != 0 {
		t.Errorf("Expected both to calculate as zero")
	}
	if unset == zero {
		t.Errorf("Expected unset and zero to compare unequal")
	}
}

func TestCount_JSON(t *testing.T) {
	var payload struct {
		A Count `json:"a"`
		B Count `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a":null,"b":0}`), &payload); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if payload.A.IsSet() {
		t.Errorf("Expected null to decode as unset")
	}
	if v, ok := payload.B.Get(); !ok || v != 0 {
		t.Errorf("Expected 0 to decode as set zero, got %v", payload.B)
	}

	out, _ := json.Marshal(payload)
	if string(out) != `{"a":null,"b":0}` {
		t.Errorf("Unexpected encoding %s", out)
	}
}

func TestCount_Scan(t *testing.T) {
	var c Count
	if err := c.Scan(int64(7)); err != nil || c.OrZero() != 7 || !c.IsSet() {
		t.Errorf("Expected 7, got %v (err=%v)", c, err)
	}
	if err := c.Scan(nil); err != nil || c.IsSet() {
		t.Errorf("Expected nil to scan as unset, got %v", c)
	}
	if err := c.Scan("12"); err != nil || c.OrZero() != 12 {
		t.Errorf("Expected 12 from string, got %v", c)
	}
	if err := c.Scan(true); err == nil {
		t.Errorf("Expected error for bool source")
	}

	v, _ := Count{}.Value()
	if v != nil {
		t.Errorf("Expected unset to store NULL, got %v", v)
	}
	v, _ = NewCount(3).Value()
	if v != int64(3) {
		t.Errorf("Expected int64(3), got %v", v)
	}
}

func TestValidCount(t *testing.T) {
	cases := map[int]bool{-1: false, 0: true, 999: true, 1000: false}
	for v, want := range cases {
		if got := ValidCount(v); got != want {
			t.Errorf("ValidCount(%d) = %v, want %v", v, got, want)
		}
	}
}
