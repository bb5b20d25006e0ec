package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrValidation                 = errors.New("validation failed")
	ErrNotFound                   = errors.New("not found")
	ErrConflict                   = errors.New("conflict")
	ErrForbidden                  = errors.New("forbidden")
	ErrRateLimited                = errors.New("too many otp requests")
	ErrInvalidOrExpiredCode       = errors.New("invalid or expired otp")
	ErrRegistrationSessionExpired = errors.New("registration session expired")
	ErrInvalidToken               = errors.New("invalid or expired token")
	ErrDispatchFailed             = errors.New("failed to send otp")
	ErrDependencyUnavailable      = errors.New("dependency unavailable")
)
