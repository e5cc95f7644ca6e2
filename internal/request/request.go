package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/marketarea/gateway/internal/identity"
)

type contextKey string

const claimsContextKey contextKey = "identity_claims"

// ClientIP extracts the client IP from the request, respecting
// X-Forwarded-For and X-Real-IP. Used as the rate-limit key.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// WithClaims returns a context carrying the session's identity claims.
func WithClaims(ctx context.Context, claims *identity.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the identity claims attached by the session
// middleware, or nil when the request is unauthenticated.
func ClaimsFromContext(r *http.Request) *identity.Claims {
	c, _ := r.Context().Value(claimsContextKey).(*identity.Claims)
	return c
}
