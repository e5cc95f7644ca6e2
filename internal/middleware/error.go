package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Recover catches handler panics and converts them into a 500 JSON
// envelope. Panic details are logged server-side and never exposed.
func Recover(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic_recovered",
						zap.Any("error", err),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{"error": "Internal Server Error"})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
