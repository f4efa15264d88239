package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/omnipos-storeops-service/pkg/httpx"
	"github.com/fekuna/omnipos-storeops-service/pkg/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger_TagsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := logger.NewFromZap(zap.New(core))

	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, r, logger.NewNop(), errors.New("db down"))
	}))

	req := httptest.NewRequest("GET", "/api/v1/rtde/sessions/active", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	if got := w.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("Expected X-Request-ID req-42, got %q", got)
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Message != "unhandled error" || entries[1].Message != "request failed" {
		t.Errorf("Unexpected messages %q, %q", entries[0].Message, entries[1].Message)
	}
	for _, e := range entries {
		if got := e.ContextMap()["request_id"]; got != "req-42" {
			t.Errorf("Expected %q to carry request_id req-42, got %v", e.Message, got)
		}
	}
}

func TestRequestLogger_GeneratesRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := RequestLogger(logger.NewFromZap(zap.New(core)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))

	id := w.Header().Get("X-Request-ID")
	if id == "" {
		t.Fatalf("Expected a generated X-Request-ID")
	}
	if logs.Len() != 1 || logs.All()[0].ContextMap()["request_id"] != id {
		t.Errorf("Expected one request line tagged %s, got %v", id, logs.All())
	}
}
