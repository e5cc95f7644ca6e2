package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/marketarea/gateway/internal/identity"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

const userinfoEndpoint = "https://openidconnect.googleapis.com/v1/userinfo"

// Client wraps the Google OAuth2 authorization-code flow and userinfo
// lookup used by the login callback.
type Client struct {
	config      *oauth2.Config
	userinfoURL string
}

// NewClient creates an OAuth2 client for Google login.
func NewClient(clientID, clientSecret, redirectURL string) *Client {
	return &Client{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     googleoauth.Endpoint,
		},
		userinfoURL: userinfoEndpoint,
	}
}

// AuthCodeURL returns the provider authorization URL for the given state.
func (c *Client) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code for tokens.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return c.config.Exchange(ctx, code)
}

// Userinfo fetches the verified identity attributes for the given token.
// The returned claims are the only identity the rest of the gateway ever
// sees; provider-specific fields stop here.
func (c *Client) Userinfo(ctx context.Context, token *oauth2.Token) (*identity.Claims, error) {
	httpClient := c.config.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userinfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("userinfo returned status %d: %s", resp.StatusCode, body)
	}

	var info struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("userinfo missing subject")
	}

	return &identity.Claims{
		Subject: info.Sub,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
