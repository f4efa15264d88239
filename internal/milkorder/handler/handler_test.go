package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fekuna/omnipos-storeops-service/internal/auth"
	catalogrepo "github.com/fekuna/omnipos-storeops-service/internal/catalog/repository"
	"github.com/fekuna/omnipos-storeops-service/internal/milkorder/repository"
	"github.com/fekuna/omnipos-storeops-service/internal/milkorder/usecase"
	"github.com/fekuna/omnipos-storeops-service/internal/model"
	"github.com/fekuna/omnipos-storeops-service/internal/testutil"
	"github.com/fekuna/omnipos-storeops-service/pkg/broker"
	"github.com/fekuna/omnipos-storeops-service/pkg/cache"
	"github.com/fekuna/omnipos-storeops-service/pkg/httpx"
	"github.com/fekuna/omnipos-storeops-service/pkg/i18n"
	"github.com/fekuna/omnipos-storeops-service/pkg/logger"
	"github.com/fekuna/omnipos-storeops-service/pkg/middleware"
)

const secret = "test-secret"

func setupServer(t *testing.T) (*httptest.Server, *middleware.JWTAuth) {
	t.Helper()
	if err := i18n.Init(); err != nil {
		t.Fatalf("Failed to init i18n: %v", err)
	}

	db := testutil.NewDB(t)
	testutil.SeedItem(t, db, model.ItemKindMilk, "whole", "Whole Milk", 1, 20)

	clock := testutil.NewClock(time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC))
	uc := usecase.NewMilkOrderUseCase(repository.NewPGRepository(db), catalogrepo.NewPGRepository(db),
		cache.NewMemoryCache(), broker.NopPublisher{}, logger.NewNop(), usecase.WithClock(clock.Now))

	mux := http.NewServeMux()
	NewMilkOrderHandler(uc, logger.NewNop()).Register(mux)

	jwtAuth := middleware.NewJWTAuth(secret, httpx.Unauthorized)
	srv := httptest.NewServer(jwtAuth.Middleware(mux))
	t.Cleanup(srv.Close)
	return srv, jwtAuth
}

func do(t *testing.T, srv *httptest.Server, token, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestMilkOrderHandler_Flow(t *testing.T) {
	srv, jwtAuth := setupServer(t)
	token, err := jwtAuth.Issue("staff-1", auth.RoleStaff, "store-1", time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	resp, body := do(t, srv, token, http.MethodGet, "/api/v1/milk-order/sessions/active", nil)
	if resp.StatusCode != http.StatusOK || body["session"] != nil {
		t.Fatalf("Expected 200 with no session, got %d %v", resp.StatusCode, body)
	}

	resp, body = do(t, srv, token, http.MethodPost, "/api/v1/milk-order/sessions", map[string]any{"mode": "new"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 on start, got %d %v", resp.StatusCode, body)
	}
	id, _ := body["id"].(string)
	if id == "" || body["status"] != "night_foh" {
		t.Fatalf("Unexpected start response %v", body)
	}

	resp, body = do(t, srv, token, http.MethodPut, "/api/v1/milk-order/sessions/"+id+"/entries/whole",
		map[string]any{"field": "foh", "value": 1000})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for out of range count, got %d", resp.StatusCode)
	}
	if msg, _ := body["error"].(string); !strings.Contains(msg, "999") {
		t.Errorf("Expected actionable range message, got %q", msg)
	}

	resp, _ = do(t, srv, token, http.MethodPut, "/api/v1/milk-order/sessions/"+id+"/entries/whole",
		map[string]any{"field": "foh"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for a count without value, got %d", resp.StatusCode)
	}
	resp, _ = do(t, srv, token, http.MethodPost, "/api/v1/milk-order/sessions/"+id+"/phases/night_foh",
		map[string]any{"counts": []map[string]any{{"item_id": "whole"}}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for a batch count without value, got %d", resp.StatusCode)
	}
	resp, body = do(t, srv, token, http.MethodGet, "/api/v1/milk-order/sessions/"+id, nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "night_foh" {
		t.Fatalf("Expected the session to stay in night_foh, got %d %v", resp.StatusCode, body)
	}

	resp, body = do(t, srv, token, http.MethodPut, "/api/v1/milk-order/sessions/"+id+"/entries/whole",
		map[string]any{"field": "foh", "value": 5})
	if resp.StatusCode != http.StatusOK || body["foh"] != float64(5) {
		t.Fatalf("Expected entry with foh 5, got %d %v", resp.StatusCode, body)
	}

	resp, _ = do(t, srv, token, http.MethodPost, "/api/v1/milk-order/sessions/"+id+"/advance", map[string]any{"target": "morning"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected 409 when skipping a phase, got %d", resp.StatusCode)
	}

	resp, body = do(t, srv, token, http.MethodPost, "/api/v1/milk-order/sessions/"+id+"/phases/night_foh",
		map[string]any{"counts": []map[string]any{{"item_id": "whole", "value": 5}}})
	if resp.StatusCode != http.StatusOK || body["status"] != "night_boh" {
		t.Fatalf("Expected night_boh after save, got %d %v", resp.StatusCode, body)
	}

	resp, _ = do(t, srv, token, http.MethodGet, "/api/v1/milk-order/sessions/"+id+"/summary", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected 409 for summary of an open session, got %d", resp.StatusCode)
	}

	colleague, _ := jwtAuth.Issue("staff-2", auth.RoleStaff, "store-1", time.Hour)
	resp, body = do(t, srv, colleague, http.MethodGet, "/api/v1/milk-order/sessions/active", nil)
	if session, _ := body["session"].(map[string]any); resp.StatusCode != http.StatusOK || session["id"] != id {
		t.Errorf("Expected a colleague at the same store to see %s, got %d %v", id, resp.StatusCode, body)
	}

	outsider, _ := jwtAuth.Issue("staff-9", auth.RoleStaff, "store-2", time.Hour)
	resp, _ = do(t, srv, outsider, http.MethodGet, "/api/v1/milk-order/sessions/"+id, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for another store's session, got %d", resp.StatusCode)
	}
}

func TestMilkOrderHandler_HistoryPaging(t *testing.T) {
	srv, jwtAuth := setupServer(t)
	token, _ := jwtAuth.Issue("staff-1", auth.RoleStaff, "store-1", time.Hour)

	resp, body := do(t, srv, token, http.MethodPost, "/api/v1/milk-order/sessions", map[string]any{"mode": "new"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 on start, got %d %v", resp.StatusCode, body)
	}
	id, _ := body["id"].(string)
	for _, target := range []string{"night_boh", "morning", "on_order", "completed"} {
		resp, body = do(t, srv, token, http.MethodPost, "/api/v1/milk-order/sessions/"+id+"/advance", map[string]any{"target": target})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200 advancing to %s, got %d %v", target, resp.StatusCode, body)
		}
	}

	for _, query := range []string{"", "?page_size=0", "?page_size=-5", "?page_size=100000&page=0"} {
		resp, body = do(t, srv, token, http.MethodGet, "/api/v1/milk-order/sessions"+query, nil)
		items, _ := body["items"].([]any)
		if resp.StatusCode != http.StatusOK || body["total"] != float64(1) || len(items) != 1 {
			t.Errorf("Expected one completed session for %q, got %d %v", query, resp.StatusCode, body)
		}
	}
}

func TestMilkOrderHandler_RequiresToken(t *testing.T) {
	srv, _ := setupServer(t)

	resp, body := do(t, srv, "garbage", http.MethodGet, "/api/v1/milk-order/sessions/active", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", resp.StatusCode)
	}
	if body["code"] != "unauthorized" {
		t.Errorf("Expected unauthorized code, got %v", body["code"])
	}
}

func TestMilkOrderHandler_LocalizedErrors(t *testing.T) {
	srv, jwtAuth := setupServer(t)
	token, _ := jwtAuth.Issue("staff-1", auth.RoleStaff, "store-1", time.Hour)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/milk-order/sessions/missing", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept-Language", "id")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var body httpx.ErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound || body.Code != "not_found" {
		t.Fatalf("Expected 404 not_found, got %d %s", resp.StatusCode, body.Code)
	}
	if body.Error == "session not found" {
		t.Errorf("Expected an Indonesian message, got %q", body.Error)
	}
}
