package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-carservice-api/internal/domain"
)

// httpError maps a service error onto its status code. Client errors carry the
// wrapped message; server errors are logged and answered generically.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrRegistrationSessionExpired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidOrExpiredCode):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "too many OTP requests, try again later")
	case errors.Is(err, domain.ErrDispatchFailed):
		slog.Error("otp dispatch failed", "err", err)
		writeError(w, http.StatusBadGateway, "failed to send OTP")
	case errors.Is(err, domain.ErrDependencyUnavailable):
		slog.Error("dependency unavailable", "err", err)
		writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		slog.Error("unhandled error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
