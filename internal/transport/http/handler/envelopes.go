package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-carservice-api/internal/domain"
	"github.com/go-carservice-api/internal/pkg/validate"
	"github.com/go-carservice-api/internal/transport/http/middleware"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OTPEnvelope acknowledges a dispatched code. The code itself is never echoed.
type OTPEnvelope struct {
	Message  string           `json:"message"`
	Issuance *domain.Issuance `json:"otp"`
}

// SessionEnvelope wraps a successful OTP verification.
type SessionEnvelope struct {
	Message string          `json:"message"`
	Session *domain.Session `json:"session"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// decode reads a JSON body into dst and runs its validate tags. It writes the
// error response itself and reports whether the handler may continue.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		httpError(w, err)
		return false
	}
	return true
}

// caller returns the authenticated identity, answering 401 when there is none.
func caller(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
	}
	return id, ok
}
