package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/marketarea/gateway/internal/identity"
)

const testSecret = "test-credential-secret"

func TestSigner_SignVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		claims identity.Claims
	}{
		{
			name: "full claim set",
			claims: identity.Claims{
				Subject: "u1",
				Email:   "a@b.com",
				Name:    "Alice",
				Picture: "https://example.com/a.png",
			},
		},
		{
			name:   "subject only",
			claims: identity.Claims{Subject: "u2"},
		},
		{
			name:   "subject and email",
			claims: identity.Claims{Subject: "u1", Email: "a@b.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			signer, err := NewSigner(testSecret)
			if err != nil {
				t.Fatalf("NewSigner failed: %v", err)
			}

			credential, err := signer.Sign(tt.claims)
			if err != nil {
				t.Fatalf("Sign failed: %v", err)
			}

			got, err := signer.Verify(credential)
			if err != nil {
				t.Fatalf("Verify failed: %v", err)
			}

			if *got != tt.claims {
				t.Errorf("Expected claims %+v, got %+v", tt.claims, *got)
			}
		})
	}
}

func TestSigner_Sign_RequiresSubject(t *testing.T) {
	t.Parallel()

	signer, err := NewSigner(testSecret)
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}

	if _, err := signer.Sign(identity.Claims{Email: "a@b.com"}); err == nil {
		t.Error("Expected error for claims without subject, got nil")
	}
}

func TestNewSigner_RequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewSigner(""); err == nil {
		t.Error("Expected error for empty secret, got nil")
	}
}

func TestSigner_Verify_Expiry(t *testing.T) {
	t.Parallel()

	claims := identity.Claims{Subject: "u1", Email: "a@b.com"}
	issued := time.Now()

	tests := []struct {
		name      string
		elapsed   time.Duration
		wantValid bool
	}{
		{name: "30 seconds after issue", elapsed: 30 * time.Second, wantValid: true},
		{name: "just before the hour", elapsed: 59 * time.Minute, wantValid: true},
		{name: "61 minutes after issue", elapsed: 61 * time.Minute, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Sign at the issue instant, verify after the simulated elapse.
			signClock := jwt.ClockFunc(func() time.Time { return issued })
			signer, err := NewSigner(testSecret, WithClock(signClock))
			if err != nil {
				t.Fatalf("NewSigner failed: %v", err)
			}

			credential, err := signer.Sign(claims)
			if err != nil {
				t.Fatalf("Sign failed: %v", err)
			}

			verifyClock := jwt.ClockFunc(func() time.Time { return issued.Add(tt.elapsed) })
			verifier, err := NewSigner(testSecret, WithClock(verifyClock))
			if err != nil {
				t.Fatalf("NewSigner failed: %v", err)
			}

			got, err := verifier.Verify(credential)
			if tt.wantValid {
				if err != nil {
					t.Fatalf("Expected valid credential, got error: %v", err)
				}
				if got.Subject != claims.Subject {
					t.Errorf("Expected subject %q, got %q", claims.Subject, got.Subject)
				}
				return
			}

			if err == nil {
				t.Fatal("Expected expired credential to be rejected, got nil error")
			}
			if !errors.Is(err, ErrInvalidCredential) {
				t.Errorf("Expected ErrInvalidCredential, got %v", err)
			}
		})
	}
}

func TestSigner_Verify_RejectsMalformedTokens(t *testing.T) {
	t.Parallel()

	signer, err := NewSigner(testSecret)
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}

	valid, err := signer.Sign(identity.Claims{Subject: "u1"})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	// Flip a character in the signature segment.
	tampered := valid[:len(valid)-2] + "xx"

	otherSigner, err := NewSigner("a-different-secret")
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}
	wrongKey, err := otherSigner.Sign(identity.Claims{Subject: "u1"})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	tests := []struct {
		name       string
		credential string
	}{
		{name: "empty token", credential: ""},
		{name: "garbage token", credential: "not-a-jwt"},
		{name: "truncated token", credential: valid[:len(valid)/2]},
		{name: "tampered signature", credential: tampered},
		{name: "signed with a different secret", credential: wrongKey},
		{name: "header only", credential: strings.Split(valid, ".")[0]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := signer.Verify(tt.credential)
			if err == nil {
				t.Fatalf("Expected error, got claims %+v", got)
			}
			if !errors.Is(err, ErrInvalidCredential) {
				t.Errorf("Expected ErrInvalidCredential, got %v", err)
			}
		})
	}
}

func TestSigner_CustomTTL(t *testing.T) {
	t.Parallel()

	issued := time.Now()
	signClock := jwt.ClockFunc(func() time.Time { return issued })
	signer, err := NewSigner(testSecret, WithTTL(5*time.Minute), WithClock(signClock))
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}

	credential, err := signer.Sign(identity.Claims{Subject: "u1"})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	verifyClock := jwt.ClockFunc(func() time.Time { return issued.Add(6 * time.Minute) })
	verifier, err := NewSigner(testSecret, WithClock(verifyClock))
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}

	if _, err := verifier.Verify(credential); err == nil {
		t.Error("Expected credential past its custom TTL to be rejected")
	}
}
