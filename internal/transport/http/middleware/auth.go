package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-carservice-api/internal/domain"
)

type contextKey string

const claimsKey contextKey = "identity"

// TokenValidator turns a bearer token into the identity it asserts.
type TokenValidator interface {
	Validate(token string) (domain.Identity, error)
}

// Auth returns middleware that validates the Bearer credential and injects the identity into context.
// Every failure gets the same response.
func Auth(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || tokenStr == "" {
				unauthorized(w)
				return
			}
			id, err := v.Validate(tokenStr)
			if err != nil {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, claimsKey, id)
}

// IdentityFromContext extracts the caller identity from the request context.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(claimsKey).(domain.Identity)
	return id, ok
}
