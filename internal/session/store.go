package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/marketarea/gateway/internal/identity"
)

const (
	// DefaultTTL is the browser session lifetime. Sessions are re-issued
	// at the next provider login; there is no renewal protocol.
	DefaultTTL = 30 * 24 * time.Hour

	// CookieName is the HttpOnly cookie carrying the session token.
	CookieName = "ma_session"
)

// Store encodes and decodes long-lived browser session tokens. The session
// secret is independent of the backend credential secret; the two token
// layers never share keys.
type Store struct {
	secret []byte
	ttl    time.Duration
	clock  jwt.Clock
	secure bool
}

// Option configures a Store.
type Option func(*Store)

// WithTTL overrides the session lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source. Used by tests to simulate expiry.
func WithClock(clock jwt.Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithSecureCookies marks issued cookies as Secure. Enable behind TLS.
func WithSecureCookies(secure bool) Option {
	return func(s *Store) {
		s.secure = secure
	}
}

// NewStore creates a session store with the given symmetric secret.
func NewStore(secret string, opts ...Option) (*Store, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}

	s := &Store{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		clock:  jwt.ClockFunc(time.Now),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Encode issues a session token for the given identity claims.
func (s *Store) Encode(claims identity.Claims) (string, error) {
	if err := claims.Validate(); err != nil {
		return "", err
	}

	now := s.clock.Now()
	builder := jwt.NewBuilder().
		Subject(claims.Subject).
		IssuedAt(now).
		Expiration(now.Add(s.ttl))

	if claims.Email != "" {
		builder = builder.Claim("email", claims.Email)
	}
	if claims.Name != "" {
		builder = builder.Claim("name", claims.Name)
	}
	if claims.Picture != "" {
		builder = builder.Claim("picture", claims.Picture)
	}

	tok, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("failed to build session token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return string(signed), nil
}

// Decode extracts identity claims from a session token. Expired, tampered,
// or malformed tokens yield nil: "not logged in" is the canonical signal
// for every protected route, never an error.
func (s *Store) Decode(sessionToken string) *identity.Claims {
	if sessionToken == "" {
		return nil
	}

	tok, err := jwt.Parse([]byte(sessionToken),
		jwt.WithKey(jwa.HS256, s.secret),
		jwt.WithValidate(true),
		jwt.WithClock(s.clock),
	)
	if err != nil {
		return nil
	}

	claims := &identity.Claims{Subject: tok.Subject()}
	if claims.Subject == "" {
		return nil
	}
	if email, ok := tok.Get("email"); ok {
		if v, ok := email.(string); ok {
			claims.Email = v
		}
	}
	if name, ok := tok.Get("name"); ok {
		if v, ok := name.(string); ok {
			claims.Name = v
		}
	}
	if picture, ok := tok.Get("picture"); ok {
		if v, ok := picture.(string); ok {
			claims.Picture = v
		}
	}

	return claims
}

// FromRequest decodes the session carried by the request's cookie.
// A missing cookie is treated the same as an invalid token.
func (s *Store) FromRequest(r *http.Request) *identity.Claims {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	return s.Decode(cookie.Value)
}

// IssueCookie attaches the session token to the response as an HttpOnly
// cookie with the store's lifetime.
func (s *Store) IssueCookie(w http.ResponseWriter, sessionToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sessionToken,
		Path:     "/",
		Expires:  s.clock.Now().Add(s.ttl),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie on the client.
func (s *Store) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
