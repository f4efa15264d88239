package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-storeops-service/internal/auth"
	"github.com/fekuna/omnipos-storeops-service/internal/catalog"
	"github.com/fekuna/omnipos-storeops-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-storeops-service/internal/model"
	"github.com/fekuna/omnipos-storeops-service/pkg/httpx"
	"github.com/fekuna/omnipos-storeops-service/pkg/logger"
)

type CatalogHandler struct {
	uc     catalog.UseCase
	logger logger.ZapLogger
}

func NewCatalogHandler(uc catalog.UseCase, log logger.ZapLogger) *CatalogHandler {
	return &CatalogHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CatalogHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/catalog/items", h.ListItems)
	mux.HandleFunc("POST /api/v1/catalog/items", h.CreateItem)
	mux.HandleFunc("GET /api/v1/catalog/items/{id}", h.GetItem)
	mux.HandleFunc("PUT /api/v1/catalog/items/{id}", h.UpdateItem)
	mux.HandleFunc("PUT /api/v1/catalog/items/{id}/par", h.SetPar)
}

type itemRequest struct {
	Kind      model.ItemKind `json:"kind"`
	Name      string         `json:"name"`
	SortOrder int            `json:"sort_order"`
	Par       int            `json:"par"`
	IsActive  *bool          `json:"is_active"`
}

type parRequest struct {
	Par int `json:"par"`
}

func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &dto.CatalogFilters{
		Kind:        model.ItemKind(q.Get("kind")),
		SearchQuery: q.Get("q"),
		Page:        httpx.QueryInt(r, "page", 1),
		PageSize:    httpx.QueryInt(r, "page_size", 0),
	}
	if v := q.Get("active"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filters.IsActive = &b
		}
	}

	items, count, err := h.uc.ListItems(r.Context(), filters)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.ListResponse[model.CatalogItem]{Items: items, Total: count})
}

func (h *CatalogHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.uc.GetItem(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (h *CatalogHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	var req itemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	item, err := h.uc.CreateItem(r.Context(), &dto.CreateItemInput{
		Actor:     user,
		Kind:      req.Kind,
		Name:      req.Name,
		SortOrder: req.SortOrder,
		Par:       req.Par,
	})
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, item)
}

func (h *CatalogHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	var req itemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	item, err := h.uc.UpdateItem(r.Context(), &dto.UpdateItemInput{
		Actor:     user,
		ID:        r.PathValue("id"),
		Name:      req.Name,
		SortOrder: req.SortOrder,
		IsActive:  active,
	})
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (h *CatalogHandler) SetPar(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	var req parRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	item, err := h.uc.SetPar(r.Context(), &dto.SetParInput{Actor: user, ID: r.PathValue("id"), Par: req.Par})
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}
