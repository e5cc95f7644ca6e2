package middleware

import "net/http"

// DefaultMaxRequestSize caps inbound request bodies at 1MB. Analysis
// payloads are small JSON documents; anything larger is abuse.
const DefaultMaxRequestSize int64 = 1 << 20

// MaxRequestSize limits inbound request body size.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
