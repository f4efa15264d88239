package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-storeops-service/internal/apperror"
	"github.com/fekuna/omnipos-storeops-service/pkg/cache"
	"github.com/fekuna/omnipos-storeops-service/pkg/i18n"
	"github.com/fekuna/omnipos-storeops-service/pkg/logger"
	"go.uber.org/zap"
)

type ErrorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindInvalidTransition:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// WriteError maps err to a status code and a localized message. Unknown errors
// are logged and reported as internal without leaking their text.
func WriteError(w http.ResponseWriter, r *http.Request, log logger.ZapLogger, err error) {
	lang := r.Header.Get("Accept-Language")

	if errors.Is(err, cache.ErrLockBusy) {
		WriteJSON(w, http.StatusServiceUnavailable, ErrorBody{
			Error: i18n.Localize(lang, "error.busy", nil, "system busy, please try again"),
			Code:  "busy",
		})
		return
	}

	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		logger.FromContext(r.Context(), log).Error("unhandled error", zap.String("path", r.URL.Path), zap.Error(err))
		WriteJSON(w, http.StatusInternalServerError, ErrorBody{
			Error: i18n.Localize(lang, "error.internal", nil, "internal server error"),
			Code:  string(apperror.KindInternal),
		})
		return
	}

	WriteJSON(w, statusFor(appErr.Kind), ErrorBody{
		Error:   i18n.Localize(lang, appErr.MessageID, appErr.Data, appErr.Message),
		Code:    string(appErr.Kind),
		Details: appErr.Details,
	})
}

func Unauthorized(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusUnauthorized, ErrorBody{
		Error: i18n.Localize(r.Header.Get("Accept-Language"), "error.unauthorized", nil, "missing or invalid credentials"),
		Code:  string(apperror.KindUnauthorized),
	})
}

// DecodeJSON reads a JSON body into v. An empty body leaves v untouched.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperror.Validation("error.validation.body", "request body is invalid", nil)
	}
	return nil
}

func QueryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// Pagination reads page and page_size from the query. The page is at least
// 1 and the size falls back to defaultSize when missing or not positive,
// capped at maxSize.
func Pagination(r *http.Request, defaultSize, maxSize int) (page, size int) {
	page = QueryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	size = QueryInt(r, "page_size", defaultSize)
	if size < 1 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	return page, size
}

type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}
