package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/zettel/internal/apperr"
)

func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps the error taxonomy onto HTTP status codes: validation to
// 400, not-found to 404, store errors to 502, anything else to 500.
func writeError(logger *slog.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(logger, w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(logger, w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrStore):
		writeJSON(logger, w, http.StatusBadGateway, errorBody(err.Error()))
	default:
		logger.Error("unhandled service error", slog.String("error", err.Error()))
		writeJSON(logger, w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
