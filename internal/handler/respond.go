package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"absensi/internal/i18n"
	"absensi/internal/identity"
	"absensi/internal/service"
	"absensi/internal/session"
)

var (
	errForbidden  = errors.New("admin role required")
	errBadRequest = errors.New("bad request")
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

// writeError maps err to a status code and a message. Errors without a
// localized message are passed through verbatim.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msgID := classify(err)
	msg := err.Error()
	if msgID != "" {
		msg = i18n.T(r.Context(), msgID)
	}
	if status >= 500 {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSONStatus(w, status, errorResponse{Error: msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		return http.StatusUnauthorized, "error_invalid_credentials"
	case errors.Is(err, identity.ErrEmailTaken):
		return http.StatusConflict, "error_email_taken"
	case service.IsValidation(err):
		return http.StatusBadRequest, "error_validation"
	case errors.Is(err, service.ErrInvalidStatus):
		return http.StatusBadRequest, "error_invalid_status"
	case errors.Is(err, service.ErrInvalidRange):
		return http.StatusBadRequest, "error_invalid_range"
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		return http.StatusConflict, "error_already_checked_in"
	case errors.Is(err, service.ErrNoSession),
		errors.Is(err, identity.ErrInvalidToken),
		errors.Is(err, identity.ErrTokenRevoked),
		errors.Is(err, session.ErrProfileUnavailable):
		return http.StatusUnauthorized, "error_unauthorized"
	case errors.Is(err, errForbidden):
		return http.StatusForbidden, "error_forbidden"
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, ""
	default:
		return http.StatusInternalServerError, ""
	}
}
