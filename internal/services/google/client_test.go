package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func TestAuthCodeURL(t *testing.T) {
	t.Parallel()

	client := NewClient("client-id", "client-secret", "http://localhost:8080/auth/callback")

	got := client.AuthCodeURL("nonce-1")
	if !strings.Contains(got, "state=nonce-1") {
		t.Errorf("Expected state in URL, got %q", got)
	}
	if !strings.Contains(got, "client_id=client-id") {
		t.Errorf("Expected client id in URL, got %q", got)
	}
	if !strings.Contains(got, "scope=openid+email+profile") {
		t.Errorf("Expected openid scopes in URL, got %q", got)
	}
}

func TestUserinfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
		wantSub string
	}{
		{
			name:    "complete profile",
			status:  http.StatusOK,
			body:    `{"sub":"google-1","email":"u@example.com","name":"U","picture":"https://img.example/p.png"}`,
			wantSub: "google-1",
		},
		{
			name:    "minimal profile",
			status:  http.StatusOK,
			body:    `{"sub":"google-2"}`,
			wantSub: "google-2",
		},
		{
			name:    "missing subject",
			status:  http.StatusOK,
			body:    `{"email":"u@example.com"}`,
			wantErr: true,
		},
		{
			name:    "provider error",
			status:  http.StatusUnauthorized,
			body:    `{"error":"invalid_token"}`,
			wantErr: true,
		},
		{
			name:    "malformed body",
			status:  http.StatusOK,
			body:    `{not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer stub.Close()

			client := NewClient("client-id", "client-secret", "http://localhost:8080/auth/callback")
			client.userinfoURL = stub.URL

			claims, err := client.Userinfo(context.Background(), &oauth2.Token{AccessToken: "at"})
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Userinfo() error = %v", err)
			}
			if claims.Subject != tt.wantSub {
				t.Errorf("Expected subject %q, got %q", tt.wantSub, claims.Subject)
			}
		})
	}
}
