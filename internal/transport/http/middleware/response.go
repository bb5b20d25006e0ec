package middleware

import (
	"encoding/json"
	"net/http"
)

// Rejection bodies. A caller without a usable credential always sees
// msgUnauthorized, whether Auth or RequireRole turned it away.
const (
	msgUnauthorized = "invalid or expired token"
	msgForbidden    = "forbidden"
	msgRateLimited  = "too many requests"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}

func unauthorized(w http.ResponseWriter) {
	writeJSONError(w, http.StatusUnauthorized, msgUnauthorized)
}

func forbidden(w http.ResponseWriter) {
	writeJSONError(w, http.StatusForbidden, msgForbidden)
}
