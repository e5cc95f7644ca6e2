package middleware

import (
	"context"
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds a full request cycle, including the
// backend round trip.
const DefaultRequestTimeout = 30 * time.Second

// Timeout enforces a deadline on request handlers. The deadline rides the
// request context, so an expiring inbound request also cancels its
// in-flight backend call.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
