package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/repository"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps service errors to HTTP statuses. Validation and overlap
// messages are returned for inline display; unexpected errors are logged and
// reported generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *domain.ValidationError
		overlap    *domain.OverlapError
		transition *domain.InvalidTransitionError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: validation.Error(), Field: validation.Field})
	case errors.As(err, &overlap):
		writeJSON(w, http.StatusConflict, errorBody{Error: overlap.Error()})
	case errors.As(err, &transition):
		writeJSON(w, http.StatusConflict, errorBody{Error: transition.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, errorBody{Error: "forbidden"})
	case errors.Is(err, repository.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: "concurrent update, please retry"})
	default:
		logger.Error("Unhandled query error", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
