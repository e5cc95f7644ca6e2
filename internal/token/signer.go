package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/marketarea/gateway/internal/identity"
)

// DefaultTTL is the lifetime of a backend credential. Credentials are
// minted fresh per outbound call and never persisted, so the window is
// kept short.
const DefaultTTL = 1 * time.Hour

// ErrInvalidCredential is returned by Verify for any token that cannot be
// accepted: bad signature, malformed structure, or expiry. Callers must
// treat it uniformly as "unauthenticated", not as a system fault.
var ErrInvalidCredential = errors.New("invalid credential")

// Signer mints and verifies short-lived backend credentials. It is a pure
// function over the provided claims and wall-clock time; the signing secret
// is the one shared contractually with the analytics backend.
type Signer struct {
	secret []byte
	ttl    time.Duration
	clock  jwt.Clock
}

// Option configures a Signer.
type Option func(*Signer)

// WithTTL overrides the credential lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Signer) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source. Used by tests to simulate expiry.
func WithClock(clock jwt.Clock) Option {
	return func(s *Signer) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewSigner creates a credential signer with the given symmetric secret.
func NewSigner(secret string, opts ...Option) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("credential secret is required")
	}

	s := &Signer{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		clock:  jwt.ClockFunc(time.Now),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sign mints a backend credential from the given identity claims. The
// claim set is a strict subset of the session claims plus issue and
// expiry timestamps; nothing else is ever added.
func (s *Signer) Sign(claims identity.Claims) (string, error) {
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
		return "", fmt.Errorf("failed to build credential: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign credential: %w", err)
	}

	return string(signed), nil
}

// Verify checks the signature and expiry of a backend credential and
// extracts its identity claims. Any failure yields ErrInvalidCredential;
// Verify never panics.
func (s *Signer) Verify(credential string) (*identity.Claims, error) {
	tok, err := jwt.Parse([]byte(credential),
		jwt.WithKey(jwa.HS256, s.secret),
		jwt.WithValidate(true),
		jwt.WithClock(s.clock),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	claims := &identity.Claims{Subject: tok.Subject()}
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

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidCredential)
	}

	return claims, nil
}
