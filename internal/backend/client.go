package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/marketarea/gateway/internal/identity"
	"go.uber.org/zap"
)

// ProbeTimeout bounds diagnostic sub-calls against the backend. Proxied
// calls are not bounded here; they inherit the shared client's deployment
// policy.
const ProbeTimeout = 5 * time.Second

// Client talks to the analytics backend. A single instance is shared by
// the provisioning hook, the gateway proxy, and the resource routes so
// that all of them resolve the same base address.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// New creates a backend client for the given base address.
func New(baseURL string, log *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		log:        log,
	}
}

// BaseURL returns the resolved backend base address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIURL builds the full target URL for an API path suffix and raw query
// string. The suffix is joined verbatim; the backend is responsible for
// validating whatever it receives.
func (c *Client) APIURL(pathSuffix, rawQuery string) string {
	target := c.baseURL + "/api/" + strings.TrimPrefix(pathSuffix, "/")
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return target
}

// Forward performs one round trip to the backend API. The inbound request
// context is propagated so a client abort cancels the in-flight call. The
// caller owns the response body.
func (c *Client) Forward(ctx context.Context, method, pathSuffix, rawQuery string, body io.Reader, header http.Header) (*http.Response, error) {
	target := c.APIURL(pathSuffix, rawQuery)

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build backend request: %w", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	return resp, nil
}

// ensureUserRequest is the provisioning payload; field names follow the
// backend's users/ensure contract.
type ensureUserRequest struct {
	GoogleID     string `json:"google_id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	ProfileImage string `json:"profile_image"`
}

// EnsureUser asks the backend to create or refresh the user record for the
// given identity. The backend deduplicates on the subject id, so repeated
// calls are safe. Callers treat a returned error as non-fatal: login
// proceeds and provisioning retries at the next login.
func (c *Client) EnsureUser(ctx context.Context, claims identity.Claims) error {
	payload, err := json.Marshal(ensureUserRequest{
		GoogleID:     claims.Subject,
		Email:        claims.Email,
		Name:         claims.Name,
		ProfileImage: claims.Picture,
	})
	if err != nil {
		return fmt.Errorf("failed to encode provisioning payload: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")

	resp, err := c.Forward(ctx, http.MethodPost, "users/ensure", "", bytes.NewReader(payload), header)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("provisioning rejected with status %d", resp.StatusCode)
	}
	return nil
}

// ProbeResult reports the outcome of one diagnostic call.
type ProbeResult struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// maxProbeDetail bounds probe body excerpts in diagnostic responses.
const maxProbeDetail = 200

// ProbeHealth checks the backend liveness endpoint with a bounded timeout.
func (c *Client) ProbeHealth(ctx context.Context) ProbeResult {
	return c.probe(ctx, c.baseURL+"/health")
}

// ProbeAPI checks a representative backend API endpoint with a bounded
// timeout.
func (c *Client) ProbeAPI(ctx context.Context) ProbeResult {
	return c.probe(ctx, c.APIURL("industries", ""))
}

func (c *Client) probe(ctx context.Context, target string) ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return ProbeResult{Status: "unreachable", Detail: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ProbeResult{Status: "unreachable", Detail: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	detail := ""
	if body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeDetail+1)); err == nil {
		detail = string(body)
		if len(detail) > maxProbeDetail {
			detail = detail[:maxProbeDetail] + "..."
		}
	}

	if resp.StatusCode != http.StatusOK {
		return ProbeResult{Status: fmt.Sprintf("error (%d)", resp.StatusCode), Detail: detail}
	}
	return ProbeResult{Status: "connected", Detail: detail}
}
