package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"photoshare-backend/internal/apperror"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
)

const maxJSONBody = 1 << 20

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string `json:"message"`
}

// respondJSON writes v as JSON with the given status
func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Message: message})
}

// respondAppError translates a service error into a response. Unexpected
// errors are logged and answered with a generic message.
func respondAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperror.KindUnexpected {
		hlog.FromRequest(r).Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		respondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	hlog.FromRequest(r).Debug().
		Str("kind", string(appErr.Kind)).
		Str("path", r.URL.Path).
		Msg(appErr.Message)
	respondError(w, appErr.Message, appErr.Status())
}

// decodeJSON reads a JSON body into v, rejecting bodies that are too large or malformed
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.InvalidInput("Request body is required")
		}
		return apperror.Wrap(err, apperror.KindInvalidInput, "Invalid request body")
	}
	return nil
}

// idParam parses a positive integer URL parameter
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.InvalidInput("Invalid " + name)
	}
	return id, nil
}
