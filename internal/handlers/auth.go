package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/marketarea/gateway/internal/backend"
	"github.com/marketarea/gateway/internal/identity"
	logpkg "github.com/marketarea/gateway/internal/logger"
	"github.com/marketarea/gateway/internal/session"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// stateCookieName holds the OAuth state nonce between the login redirect
// and the provider callback.
const stateCookieName = "ma_oauth_state"

// stateTTL bounds how long a login attempt may take.
const stateTTL = 10 * time.Minute

// OAuthProvider is the slice of the identity provider the auth handler
// needs. The concrete implementation lives in services/google.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	Userinfo(ctx context.Context, token *oauth2.Token) (*identity.Claims, error)
}

// AuthHandler implements the browser login flow: provider redirect,
// callback, logout, and session introspection. On callback completion it
// fires the provisioning hook exactly once, best-effort.
type AuthHandler struct {
	provider    OAuthProvider
	sessions    *session.Store
	backend     *backend.Client
	frontendURL string
	log         *zap.Logger
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(provider OAuthProvider, sessions *session.Store, client *backend.Client, frontendURL string, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		provider:    provider,
		sessions:    sessions,
		backend:     client,
		frontendURL: frontendURL,
		log:         log,
	}
}

// RegisterRoutes registers the auth routes. These are public; the session
// is what they produce, not what they require.
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/login", h.Login).Methods("GET")
	r.HandleFunc("/callback", h.Callback).Methods("GET")
	r.HandleFunc("/logout", h.Logout).Methods("POST")
	r.HandleFunc("/me", h.Me).Methods("GET")
}

// Login starts the authorization-code flow with a fresh state nonce.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/auth",
		Expires:  time.Now().Add(stateTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback completes the login: verifies state, exchanges the code,
// fetches the verified identity, fires the provisioning hook, and issues
// the session cookie. Provisioning failure is logged and swallowed; the
// session is established regardless.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		respondError(w, http.StatusBadRequest, "Invalid login state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	ctx := r.Context()
	oauthToken, err := h.provider.ExchangeCode(ctx, code)
	if err != nil {
		h.log.Error("oauth_code_exchange_failed",
			zap.String("detail", logpkg.SanitizeError(err)),
		)
		respondError(w, http.StatusBadGateway, "Login failed")
		return
	}

	claims, err := h.provider.Userinfo(ctx, oauthToken)
	if err != nil {
		h.log.Error("userinfo_fetch_failed",
			zap.String("detail", logpkg.SanitizeError(err)),
		)
		respondError(w, http.StatusBadGateway, "Login failed")
		return
	}

	// Ensure the backend user record exists. Non-fatal: the next login
	// retries, and the backend deduplicates on the subject id.
	if err := h.backend.EnsureUser(ctx, *claims); err != nil {
		h.log.Warn("user_provisioning_failed",
			zap.String("subject", claims.Subject),
			zap.String("detail", logpkg.SanitizeError(err)),
		)
	}

	sessionToken, err := h.sessions.Encode(*claims)
	if err != nil {
		h.log.Error("session_encode_failed",
			zap.String("subject", claims.Subject),
			zap.String("detail", logpkg.SanitizeError(err)),
		)
		respondError(w, http.StatusInternalServerError, "Failed to establish session")
		return
	}

	h.sessions.IssueCookie(w, sessionToken)

	// One-shot state cookie; expire it with the login attempt.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.log.Info("user_logged_in", zap.String("subject", claims.Subject))
	http.Redirect(w, r, h.frontendURL, http.StatusFound)
}

// Logout expires the session cookie. Tokens are stateless, so there is
// nothing server-side to revoke; the 30-day token simply stops being sent.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the session's identity claims, or 401 without one.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := h.sessions.FromRequest(r)
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	respondJSON(w, http.StatusOK, claims)
}
