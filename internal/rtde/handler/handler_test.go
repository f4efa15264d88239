package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-storeops-service/internal/auth"
	catalogrepo "github.com/fekuna/omnipos-storeops-service/internal/catalog/repository"
	"github.com/fekuna/omnipos-storeops-service/internal/model"
	"github.com/fekuna/omnipos-storeops-service/internal/rtde/repository"
	"github.com/fekuna/omnipos-storeops-service/internal/rtde/usecase"
	"github.com/fekuna/omnipos-storeops-service/internal/testutil"
	"github.com/fekuna/omnipos-storeops-service/pkg/broker"
	"github.com/fekuna/omnipos-storeops-service/pkg/cache"
	"github.com/fekuna/omnipos-storeops-service/pkg/httpx"
	"github.com/fekuna/omnipos-storeops-service/pkg/i18n"
	"github.com/fekuna/omnipos-storeops-service/pkg/logger"
)

var staff = auth.UserContext{UserID: "staff-1", Role: auth.RoleStaff, StoreID: "store-1"}

func newMux(t *testing.T) *http.ServeMux {
	t.Helper()
	if err := i18n.Init(); err != nil {
		t.Fatalf("Failed to init i18n: %v", err)
	}
	db := testutil.NewDB(t)
	testutil.SeedItem(t, db, model.ItemKindRTDE, "wrap", "Egg Wrap", 1, 10)
	testutil.SeedItem(t, db, model.ItemKindRTDE, "salad", "Fruit Salad", 2, 10)

	uc := usecase.NewRTDEUseCase(repository.NewPGRepository(db), catalogrepo.NewPGRepository(db),
		cache.NewMemoryCache(), broker.NopPublisher{}, logger.NewNop())
	mux := http.NewServeMux()
	NewRTDEHandler(uc, logger.NewNop()).Register(mux)
	return mux
}

// serve calls the mux directly with the identity the auth middleware would set.
func serve(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req = req.WithContext(auth.WithUser(context.Background(), staff))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestRTDEHandler_UncountedThenAssign(t *testing.T) {
	mux := newMux(t)

	w := serve(t, mux, http.MethodPost, "/api/v1/rtde/sessions", map[string]any{"mode": "new"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on start, got %d: %s", w.Code, w.Body.String())
	}
	var session struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	json.Unmarshal(w.Body.Bytes(), &session)

	w = serve(t, mux, http.MethodPut, "/api/v1/rtde/sessions/"+session.ID+"/entries/wrap", map[string]any{"value": 10})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on count, got %d: %s", w.Code, w.Body.String())
	}

	w = serve(t, mux, http.MethodPost, "/api/v1/rtde/sessions/"+session.ID+"/pull-list", map[string]any{"assign_defaults": false})
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 with uncounted items, got %d", w.Code)
	}
	var errBody httpx.ErrorBody
	json.Unmarshal(w.Body.Bytes(), &errBody)
	if !strings.Contains(errBody.Error, "Fruit Salad") {
		t.Errorf("Expected message to name the uncounted item, got %q", errBody.Error)
	}
	if errBody.Details == nil {
		t.Errorf("Expected uncounted items in details")
	}

	w = serve(t, mux, http.MethodPost, "/api/v1/rtde/sessions/"+session.ID+"/pull-list", map[string]any{"assign_defaults": true})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 with defaults, got %d: %s", w.Code, w.Body.String())
	}
	var list struct {
		Status string `json:"status"`
		Items  []struct {
			ItemID       string `json:"item_id"`
			NeedQuantity int    `json:"need_quantity"`
		} `json:"items"`
	}
	json.Unmarshal(w.Body.Bytes(), &list)
	if list.Status != "pulling" || len(list.Items) != 1 || list.Items[0].ItemID != "salad" || list.Items[0].NeedQuantity != 10 {
		t.Errorf("Unexpected pull list %+v", list)
	}

	w = serve(t, mux, http.MethodPut, "/api/v1/rtde/sessions/"+session.ID+"/entries/salad/pulled", map[string]any{"pulled": true})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on mark pulled, got %d", w.Code)
	}

	w = serve(t, mux, http.MethodPost, "/api/v1/rtde/sessions/"+session.ID+"/complete", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on complete, got %d: %s", w.Code, w.Body.String())
	}

	w = serve(t, mux, http.MethodGet, "/api/v1/rtde/sessions/"+session.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after completion, got %d", w.Code)
	}
}

func TestRTDEHandler_RejectsBadBody(t *testing.T) {
	mux := newMux(t)

	w := serve(t, mux, http.MethodPost, "/api/v1/rtde/sessions", map[string]any{"mode": "new", "extra": 1})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown fields, got %d", w.Code)
	}
	w = serve(t, mux, http.MethodPost, "/api/v1/rtde/sessions", map[string]any{"mode": "later"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad mode, got %d", w.Code)
	}
}

func TestRTDEHandler_MissingValueIsNotZero(t *testing.T) {
	mux := newMux(t)

	w := serve(t, mux, http.MethodPost, "/api/v1/rtde/sessions", map[string]any{"mode": "new"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on start, got %d: %s", w.Code, w.Body.String())
	}
	var session struct {
		ID string `json:"id"`
	}
	json.Unmarshal(w.Body.Bytes(), &session)
	base := "/api/v1/rtde/sessions/" + session.ID

	w = serve(t, mux, http.MethodPut, base+"/entries/wrap", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a body without value, got %d: %s", w.Code, w.Body.String())
	}
	w = serve(t, mux, http.MethodPut, base+"/entries/wrap", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an empty body, got %d: %s", w.Code, w.Body.String())
	}
	w = serve(t, mux, http.MethodPost, base+"/counts", map[string]any{
		"counts": []map[string]any{{"item_id": "wrap", "value": 3}, {"item_id": "salad"}},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a batch entry without value, got %d: %s", w.Code, w.Body.String())
	}

	w = serve(t, mux, http.MethodGet, base+"/uncounted", nil)
	var uncounted struct {
		Total int `json:"total"`
	}
	json.Unmarshal(w.Body.Bytes(), &uncounted)
	if uncounted.Total != 2 {
		t.Errorf("Expected both items still uncounted, got %d", uncounted.Total)
	}

	w = serve(t, mux, http.MethodPost, base+"/pull-list", map[string]any{})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 from the pull list gate, got %d: %s", w.Code, w.Body.String())
	}
}
