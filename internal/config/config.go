package config

import (
	"fmt"
	"os"
)

// DefaultBackendURL is the local-development fallback for the analytics
// backend when no address is configured.
const DefaultBackendURL = "http://localhost:8000"

// Config holds application configuration. It is read once at process start
// and treated as read-only afterwards; no component re-reads the
// environment per request.
type Config struct {
	ServerPort  string
	FrontendURL string

	// BackendBaseURL is the resolved analytics backend address, shared by
	// the provisioning hook, the gateway proxy, and the resource routes.
	// BackendAddressSource records which setting won the resolution, for
	// startup diagnostics.
	BackendBaseURL       string
	BackendAddressSource string

	// SessionSecret signs the long-lived browser session token.
	// CredentialSecret signs the short-lived backend credential and is
	// shared contractually with the backend. The two are deliberately
	// distinct keys.
	SessionSecret    string
	CredentialSecret string

	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string

	RedisURL   string
	RateLimit  string
	EnableHSTS bool

	ServerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		SessionSecret:      getEnv("SESSION_SECRET", ""),
		CredentialSecret:   getEnv("CREDENTIAL_SECRET", ""),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectURL:   getEnv("OAUTH_REDIRECT_URL", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		RateLimit:          getEnv("RATE_LIMIT", "20-S"),
		EnableHSTS:         getEnvBool("ENABLE_HSTS", false),
		ServerDebugMode:    getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:        getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	cfg.BackendBaseURL, cfg.BackendAddressSource = resolveBackendAddress()

	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	if cfg.CredentialSecret == "" {
		return nil, fmt.Errorf("CREDENTIAL_SECRET is required")
	}
	if cfg.OAuthRedirectURL == "" {
		cfg.OAuthRedirectURL = "http://localhost:" + cfg.ServerPort + "/auth/callback"
	}

	return cfg, nil
}

// resolveBackendAddress picks the backend base address with a fixed
// precedence: explicit BACKEND_URL, then the public PUBLIC_API_URL, then
// the local default. Evaluated once at startup so every component routes
// identically.
func resolveBackendAddress() (url, source string) {
	if v := os.Getenv("BACKEND_URL"); v != "" {
		return v, "BACKEND_URL"
	}
	if v := os.Getenv("PUBLIC_API_URL"); v != "" {
		return v, "PUBLIC_API_URL"
	}
	return DefaultBackendURL, "default"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
