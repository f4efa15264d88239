package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-storeops-service/internal/auth"
	"github.com/fekuna/omnipos-storeops-service/internal/model"
	"github.com/fekuna/omnipos-storeops-service/internal/rtde"
	"github.com/fekuna/omnipos-storeops-service/internal/rtde/dto"
	"github.com/fekuna/omnipos-storeops-service/pkg/httpx"
	"github.com/fekuna/omnipos-storeops-service/pkg/logger"
)

type RTDEHandler struct {
	uc     rtde.UseCase
	logger logger.ZapLogger
}

func NewRTDEHandler(uc rtde.UseCase, log logger.ZapLogger) *RTDEHandler {
	return &RTDEHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *RTDEHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/rtde/sessions", h.StartSession)
	mux.HandleFunc("GET /api/v1/rtde/sessions/active", h.GetActiveSession)
	mux.HandleFunc("GET /api/v1/rtde/sessions/{id}", h.GetSession)
	mux.HandleFunc("PUT /api/v1/rtde/sessions/{id}/entries/{itemID}", h.WriteCount)
	mux.HandleFunc("POST /api/v1/rtde/sessions/{id}/counts", h.SaveCounts)
	mux.HandleFunc("GET /api/v1/rtde/sessions/{id}/uncounted", h.GetUncounted)
	mux.HandleFunc("POST /api/v1/rtde/sessions/{id}/pull-list", h.RequestPullList)
	mux.HandleFunc("GET /api/v1/rtde/sessions/{id}/pull-list", h.GetPullList)
	mux.HandleFunc("PUT /api/v1/rtde/sessions/{id}/entries/{itemID}/pulled", h.MarkPulled)
	mux.HandleFunc("POST /api/v1/rtde/sessions/{id}/complete", h.CompleteSession)
}

type startRequest struct {
	Mode dto.StartMode `json:"mode"`
}

type countRequest struct {
	Value *int `json:"value"`
}

type countsRequest struct {
	Counts []dto.CountInput `json:"counts"`
}

type pullListRequest struct {
	AssignDefaults bool `json:"assign_defaults"`
}

type pulledRequest struct {
	Pulled bool `json:"pulled"`
}

type activeResponse struct {
	Session *dto.SessionView `json:"session"`
}

func (h *RTDEHandler) GetActiveSession(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	v, err := h.uc.GetActiveSession(r.Context(), user)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, activeResponse{Session: v})
}

func (h *RTDEHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	var req startRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	v, err := h.uc.StartSession(r.Context(), &dto.StartSessionInput{User: user, Mode: req.Mode})
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, v)
}

func (h *RTDEHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	v, err := h.uc.GetSession(r.Context(), r.PathValue("id"), user)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, v)
}

func (h *RTDEHandler) WriteCount(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	var req countRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	entry, err := h.uc.WriteCount(r.Context(), &dto.WriteCountInput{
		User:      user,
		SessionID: r.PathValue("id"),
		ItemID:    r.PathValue("itemID"),
		Value:     req.Value,
	})
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entry)
}

func (h *RTDEHandler) SaveCounts(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	var req countsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	v, err := h.uc.SaveCounts(r.Context(), &dto.SaveCountsInput{User: user, SessionID: r.PathValue("id"), Counts: req.Counts})
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, v)
}

func (h *RTDEHandler) GetUncounted(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	entries, err := h.uc.GetUncounted(r.Context(), r.PathValue("id"), user)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.ListResponse[model.RTDEEntry]{Items: entries, Total: len(entries)})
}

func (h *RTDEHandler) RequestPullList(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	var req pullListRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	list, err := h.uc.RequestPullList(r.Context(), &dto.PullListInput{
		User:           user,
		SessionID:      r.PathValue("id"),
		AssignDefaults: req.AssignDefaults,
	})
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (h *RTDEHandler) GetPullList(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	list, err := h.uc.GetPullList(r.Context(), r.PathValue("id"), user)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (h *RTDEHandler) MarkPulled(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	var req pulledRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	item, err := h.uc.MarkPulled(r.Context(), &dto.MarkPulledInput{
		User:      user,
		SessionID: r.PathValue("id"),
		ItemID:    r.PathValue("itemID"),
		Pulled:    req.Pulled,
	})
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (h *RTDEHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	done, err := h.uc.CompleteSession(r.Context(), r.PathValue("id"), user)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, done)
}
