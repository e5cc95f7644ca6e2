package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/marketarea/gateway/internal/request"
	"github.com/marketarea/gateway/internal/session"
	"go.uber.org/zap"
)

// SessionAuth guards resource routes behind a valid browser session. A
// missing or invalid session yields 401 with the uniform
// {"error":"Unauthorized"} envelope and the backend is never contacted.
// An absent session is an expected condition, not an error; it is logged
// at debug level only.
func SessionAuth(store *session.Store, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := store.FromRequest(r)
			if claims == nil {
				logger.Debug("session_absent_or_invalid",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				respondUnauthorized(w)
				return
			}

			ctx := request.WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}
