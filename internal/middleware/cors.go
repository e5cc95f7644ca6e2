package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// CORS builds the CORS middleware from the configured frontend origins.
// The gateway serves exactly one browser app, so the allow-list is the
// FRONTEND_URL setting (comma-separated for multi-environment deploys).
func CORS(frontendURL string) func(http.Handler) http.Handler {
	origins := parseOrigins(frontendURL)

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           86400,
	})
	return c.Handler
}

func parseOrigins(frontendURL string) []string {
	origins := []string{"http://localhost:3000"}
	for _, origin := range strings.Split(frontendURL, ",") {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		exists := false
		for _, existing := range origins {
			if existing == trimmed {
				exists = true
				break
			}
		}
		if !exists {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
