package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/marketarea/gateway/internal/identity"
)

const testSecret = "test-session-secret"

func TestStore_EncodeDecode_RoundTrip(t *testing.T) {
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
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store, err := NewStore(testSecret)
			if err != nil {
				t.Fatalf("NewStore failed: %v", err)
			}

			tok, err := store.Encode(tt.claims)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			got := store.Decode(tok)
			if got == nil {
				t.Fatal("Decode returned nil for a fresh token")
			}
			if *got != tt.claims {
				t.Errorf("Expected claims %+v, got %+v", tt.claims, *got)
			}
		})
	}
}

func TestStore_Decode_ReturnsNilNotError(t *testing.T) {
	t.Parallel()

	store, err := NewStore(testSecret)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	valid, err := store.Encode(identity.Claims{Subject: "u1"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	otherStore, err := NewStore("another-secret")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	foreign, err := otherStore.Encode(identity.Claims{Subject: "u1"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "garbage token", token: "definitely-not-a-jwt"},
		{name: "truncated token", token: valid[:len(valid)/3]},
		{name: "signed with the wrong secret", token: foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := store.Decode(tt.token); got != nil {
				t.Errorf("Expected nil for invalid session, got %+v", got)
			}
		})
	}
}

func TestStore_Decode_Expiry(t *testing.T) {
	t.Parallel()

	issued := time.Now()
	signClock := jwt.ClockFunc(func() time.Time { return issued })
	store, err := NewStore(testSecret, WithClock(signClock))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	tok, err := store.Encode(identity.Claims{Subject: "u1", Email: "a@b.com"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	tests := []struct {
		name      string
		elapsed   time.Duration
		wantValid bool
	}{
		{name: "one day in", elapsed: 24 * time.Hour, wantValid: true},
		{name: "day 29", elapsed: 29 * 24 * time.Hour, wantValid: true},
		{name: "day 31", elapsed: 31 * 24 * time.Hour, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			clock := jwt.ClockFunc(func() time.Time { return issued.Add(tt.elapsed) })
			decoder, err := NewStore(testSecret, WithClock(clock))
			if err != nil {
				t.Fatalf("NewStore failed: %v", err)
			}

			got := decoder.Decode(tok)
			if tt.wantValid && got == nil {
				t.Error("Expected session to still decode, got nil")
			}
			if !tt.wantValid && got != nil {
				t.Errorf("Expected expired session to decode to nil, got %+v", got)
			}
		})
	}
}

func TestStore_CookieLifecycle(t *testing.T) {
	t.Parallel()

	store, err := NewStore(testSecret)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	claims := identity.Claims{Subject: "u1", Email: "a@b.com"}
	tok, err := store.Encode(claims)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// Issue the cookie and read it back through a request.
	w := httptest.NewRecorder()
	store.IssueCookie(w, tok)

	resp := w.Result()
	defer func() {
		_ = resp.Body.Close()
	}()

	cookies := resp.Cookies()
	if len(cookies) != 1 {
		t.Fatalf("Expected 1 cookie, got %d", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Name != CookieName {
		t.Errorf("Expected cookie name %q, got %q", CookieName, cookie.Name)
	}
	if !cookie.HttpOnly {
		t.Error("Expected session cookie to be HttpOnly")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	got := store.FromRequest(req)
	if got == nil {
		t.Fatal("FromRequest returned nil for a valid session cookie")
	}
	if *got != claims {
		t.Errorf("Expected claims %+v, got %+v", claims, *got)
	}

	// Clearing must expire the cookie client-side.
	w2 := httptest.NewRecorder()
	store.ClearCookie(w2)
	resp2 := w2.Result()
	defer func() {
		_ = resp2.Body.Close()
	}()
	cleared := resp2.Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Error("Expected ClearCookie to set a negative max-age cookie")
	}
}

func TestStore_FromRequest_NoCookie(t *testing.T) {
	t.Parallel()

	store, err := NewStore(testSecret)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := store.FromRequest(req); got != nil {
		t.Errorf("Expected nil without a session cookie, got %+v", got)
	}
}
