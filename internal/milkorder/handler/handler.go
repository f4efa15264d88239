package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-storeops-service/internal/auth"
	"github.com/fekuna/omnipos-storeops-service/internal/milkorder"
	"github.com/fekuna/omnipos-storeops-service/internal/milkorder/dto"
	"github.com/fekuna/omnipos-storeops-service/internal/model"
	"github.com/fekuna/omnipos-storeops-service/pkg/httpx"
	"github.com/fekuna/omnipos-storeops-service/pkg/logger"
)

type MilkOrderHandler struct {
	uc     milkorder.UseCase
	logger logger.ZapLogger
}

func NewMilkOrderHandler(uc milkorder.UseCase, log logger.ZapLogger) *MilkOrderHandler {
	return &MilkOrderHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *MilkOrderHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/milk-order/sessions", h.ListHistory)
	mux.HandleFunc("POST /api/v1/milk-order/sessions", h.StartSession)
	mux.HandleFunc("GET /api/v1/milk-order/sessions/active", h.GetActiveSession)
	mux.HandleFunc("GET /api/v1/milk-order/sessions/{id}", h.GetSession)
	mux.HandleFunc("PUT /api/v1/milk-order/sessions/{id}/entries/{itemID}", h.WriteCount)
	mux.HandleFunc("POST /api/v1/milk-order/sessions/{id}/phases/{phase}", h.SavePhase)
	mux.HandleFunc("POST /api/v1/milk-order/sessions/{id}/advance", h.AdvancePhase)
	mux.HandleFunc("GET /api/v1/milk-order/sessions/{id}/summary", h.GetSummary)
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type startRequest struct {
	Date string        `json:"date"`
	Mode dto.StartMode `json:"mode"`
}

type countRequest struct {
	Field model.MilkField `json:"field"`
	Value *int            `json:"value"`
}

type phaseRequest struct {
	Counts []dto.CountInput `json:"counts"`
}

type advanceRequest struct {
	Target model.MilkPhase `json:"target"`
}

type activeResponse struct {
	Session *dto.SessionView `json:"session"`
}

func (h *MilkOrderHandler) GetActiveSession(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	v, err := h.uc.GetActiveSession(r.Context(), user, r.URL.Query().Get("date"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, activeResponse{Session: v})
}

func (h *MilkOrderHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	var req startRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	v, err := h.uc.StartSession(r.Context(), &dto.StartSessionInput{User: user, Date: req.Date, Mode: req.Mode})
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, v)
}

func (h *MilkOrderHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	v, err := h.uc.GetSession(r.Context(), r.PathValue("id"), user)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, v)
}

func (h *MilkOrderHandler) WriteCount(w http.ResponseWriter, r *http.Request) {
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
		Field:     req.Field,
		Value:     req.Value,
	})
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entry)
}

func (h *MilkOrderHandler) SavePhase(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	var req phaseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	v, err := h.uc.SavePhase(r.Context(), &dto.SavePhaseInput{
		User:      user,
		SessionID: r.PathValue("id"),
		Phase:     model.MilkPhase(r.PathValue("phase")),
		Counts:    req.Counts,
	})
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, v)
}

func (h *MilkOrderHandler) AdvancePhase(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	var req advanceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	v, err := h.uc.AdvancePhase(r.Context(), &dto.AdvancePhaseInput{User: user, SessionID: r.PathValue("id"), Target: req.Target})
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, v)
}

func (h *MilkOrderHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	summary, err := h.uc.GetSummary(r.Context(), r.PathValue("id"), user)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary)
}

func (h *MilkOrderHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	page, size := httpx.Pagination(r, defaultPageSize, maxPageSize)
	sessions, total, err := h.uc.ListHistory(r.Context(), user, page, size)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.ListResponse[model.MilkOrderSession]{Items: sessions, Total: total})
}
