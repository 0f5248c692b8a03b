package web

// errors.go provides unified error response handling for the web layer.
//
// Handlers call respondError with whatever went wrong; the error is mapped
// to an HTTP status and a client-safe detail string, logged with the chi
// request id for correlation, and written as JSON. Page handlers use
// redirects and flash notifications instead.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/mandjevant/noteboard/internal/auth"
	"github.com/mandjevant/noteboard/internal/logging"
	"github.com/mandjevant/noteboard/internal/store"
)

// ErrorResponse is the JSON shape of API error responses.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// respondError logs the technical error and writes a sanitized JSON detail.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := mapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"request_id", middleware.GetReqID(r.Context()),
	)

	writeError(w, status, detail)
}

// mapError translates domain errors into an HTTP status plus a detail
// message safe to show the client.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusBadRequest, "Incorrect email or password"
	case errors.Is(err, auth.ErrInactiveUser):
		return http.StatusBadRequest, "Inactive user"
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict, "The user with this email already exists in the system"
	case errors.Is(err, auth.ErrInvalidSession):
		return http.StatusUnauthorized, "Not authenticated"
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusBadRequest, "Invalid token"
	case errors.Is(err, auth.ErrSamePassword):
		return http.StatusBadRequest, "New password cannot be the same as the current one"
	case errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, auth.ErrPasswordTooWeak):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, "Conflict"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// writeError writes a JSON error response with the given detail.
func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Detail: detail})
}

// writeJSON encodes v as JSON. Encoding errors are logged since headers are
// already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
