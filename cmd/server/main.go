package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/marketarea/gateway/internal/backend"
	"github.com/marketarea/gateway/internal/config"
	"github.com/marketarea/gateway/internal/handlers"
	"github.com/marketarea/gateway/internal/logger"
	"github.com/marketarea/gateway/internal/middleware"
	"github.com/marketarea/gateway/internal/services/google"
	"github.com/marketarea/gateway/internal/session"
	"github.com/marketarea/gateway/internal/telemetry"
	"github.com/marketarea/gateway/internal/token"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_gateway",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("backend_url", cfg.BackendBaseURL),
		zap.String("backend_address_source", cfg.BackendAddressSource),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// OpenTelemetry is optional; a missing collector must not block serving.
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized",
					zap.String("endpoint", cfg.OTELEndpoint),
				)
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Core components. The session store and credential signer hold
	// separate secrets: a leaked backend credential can never mint a
	// browser session, and vice versa.
	sessionStore, err := session.NewStore(cfg.SessionSecret, session.WithSecureCookies(cfg.EnableHSTS))
	if err != nil {
		zapLogger.Fatal("failed_to_create_session_store", zap.Error(err))
	}

	credentialSigner, err := token.NewSigner(cfg.CredentialSecret)
	if err != nil {
		zapLogger.Fatal("failed_to_create_credential_signer", zap.Error(err))
	}

	backendClient := backend.New(cfg.BackendBaseURL, zapLogger)

	googleClient := google.NewClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL)

	rateLimitMW, err := middleware.RateLimit(cfg.RateLimit, cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}
	if cfg.RedisURL != "" {
		zapLogger.Info("rate_limiter_backed_by_redis")
	} else {
		zapLogger.Info("rate_limiter_in_memory")
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(googleClient, sessionStore, backendClient, cfg.FrontendURL, zapLogger)
	proxyHandler := handlers.NewProxyHandler(backendClient, zapLogger)
	analysesHandler := handlers.NewSavedAnalysesHandler(backendClient, credentialSigner, zapLogger)
	debugHandler := handlers.NewDebugHandler(backendClient, cfg.BackendAddressSource)
	healthChecker := handlers.NewHealthChecker(backendClient)

	// Router. gorilla/mux runs middleware in registration order, so the
	// list below reads outermost first.
	r := mux.NewRouter()

	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware(telemetry.ServiceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.Recover(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Public routes
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/debug", debugHandler.Debug).Methods("GET")

	openAPIPath := filepath.Join("api", "openapi", "openapi.yaml")
	openAPIHandler := handlers.NewOpenAPIHandler(openAPIPath)
	openAPIHandler.RegisterRoutes(r)

	// Auth routes: rate limited, unauthenticated by nature.
	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.Use(rateLimitMW)
	authHandler.RegisterRoutes(authRouter)

	// Saved-analyses resource routes: session required, fresh backend
	// credential per call.
	analysesRouter := r.PathPrefix("/api/saved-analyses").Subrouter()
	analysesRouter.Use(middleware.SessionAuth(sessionStore, zapLogger))
	analysesRouter.Use(rateLimitMW)
	analysesHandler.RegisterRoutes(analysesRouter)

	// Generic proxy: rate limited, forwards the allow-listed headers as-is.
	// The handler registers its own path-prefix catch-all, so it gets a
	// plain subrouter carrying only the middleware.
	proxyRouter := r.NewRoute().Subrouter()
	proxyRouter.Use(rateLimitMW)
	proxyHandler.RegisterRoutes(proxyRouter)

	// Preflight catch-all; the CORS middleware has already set headers.
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("gateway_listening",
			zap.String("port", cfg.ServerPort),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("gateway_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("gateway_exited")
}
