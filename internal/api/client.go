// Package api is the HTTP client for the Ask My Garmin backend: the auth
// routes and the streaming /api/ask endpoint.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// headerSessionToken carries the session token rotation value on responses.
const headerSessionToken = "X-Session-Token"

// maxErrorBody limits how much of an error response body is read.
const maxErrorBody = 64 * 1024

// Config holds client connection settings.
type Config struct {
	BaseURL     string
	ConnTimeout time.Duration
	RespTimeout time.Duration
}

// Client talks to the backend. One turn streams at a time; the client refuses
// concurrent sends (the caller disables input while a turn is in flight).
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	logger  *slog.Logger

	authenticated atomic.Bool
	inFlight      atomic.Bool
}

// NewClient creates a client. tokens must not be nil.
func NewClient(cfg Config, tokens TokenStore, logger *slog.Logger) *Client {
	connTimeout := cfg.ConnTimeout
	if connTimeout == 0 {
		connTimeout = 10 * time.Second
	}
	respTimeout := cfg.RespTimeout
	if respTimeout == 0 {
		respTimeout = 300 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			// The ask stream can legitimately stay open for the whole
			// response; the overall timeout covers connect plus body.
			Timeout: connTimeout + respTimeout,
		},
		tokens: tokens,
		logger: logger,
	}
}

// Authenticated reports whether the user is known to be logged in. The stream
// consumer consults this before issuing a request.
func (c *Client) Authenticated() bool { return c.authenticated.Load() }

// SetAuthenticated overrides the authenticated flag (e.g. after a probe).
func (c *Client) SetAuthenticated(v bool) { c.authenticated.Store(v) }

// LoginResult is the outcome of a Login call.
type LoginResult struct {
	MFARequired  bool
	MFASessionID string
}

// AuthStatus describes the backend's view of the Garmin connection.
type AuthStatus struct {
	Connected bool   `json:"connected"`
	Email     string `json:"email"`
	Error     string `json:"error"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type mfaRequest struct {
	SessionID string `json:"session_id"`
	Code      string `json:"code"`
}

type statusResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
}

// Login initiates a Garmin login. When the account has 2FA enabled the
// result carries the MFA session ID to pass to SubmitMFA.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body, err := c.postJSON(ctx, "/api/auth/login", loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal login response: %w", err)
	}

	if resp.Status == "mfa_required" {
		return &LoginResult{MFARequired: true, MFASessionID: resp.SessionID}, nil
	}

	c.authenticated.Store(true)
	c.logger.Info("garmin login succeeded")
	return &LoginResult{}, nil
}

// SubmitMFA completes a login that required a 2FA code.
func (c *Client) SubmitMFA(ctx context.Context, sessionID, code string) error {
	_, err := c.postJSON(ctx, "/api/auth/mfa", mfaRequest{SessionID: sessionID, Code: code})
	if err != nil {
		return err
	}
	c.authenticated.Store(true)
	c.logger.Info("garmin mfa verification succeeded")
	return nil
}

// Status asks the backend whether the Garmin connection is alive and updates
// the client's authenticated flag accordingly.
func (c *Client) Status(ctx context.Context) (*AuthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/status", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setSessionToken(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()
	c.applyRotation(resp)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status check failed: %s", errorDetail(resp.StatusCode, body))
	}

	var status AuthStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("unmarshal status response: %w", err)
	}
	c.authenticated.Store(status.Connected)
	return &status, nil
}

// Logout removes the stored Garmin tokens on the backend and clears the
// local session token.
func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.postJSON(ctx, "/api/auth/logout", struct{}{}); err != nil {
		return err
	}
	c.authenticated.Store(false)
	return c.tokens.SetToken("")
}

// postJSON performs a JSON POST and returns the response body. Non-2xx
// responses become errors carrying the backend's detail message.
func (c *Client) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setSessionToken(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()
	c.applyRotation(resp)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s", errorDetail(resp.StatusCode, body))
	}
	return body, nil
}

func (c *Client) setSessionToken(req *http.Request) {
	if t := c.tokens.Token(); t != "" {
		req.Header.Set(headerSessionToken, t)
	}
}

// applyRotation persists a replacement session token delivered on any
// response. A later rotation always supersedes an earlier one.
func (c *Client) applyRotation(resp *http.Response) {
	t := resp.Header.Get(headerSessionToken)
	if t == "" {
		return
	}
	if err := c.tokens.SetToken(t); err != nil {
		c.logger.Warn("persist rotated session token", "error", err)
	}
}

// errorDetail extracts the human-readable message from an error response.
// The backend wraps messages as {"detail": "..."}; anything else passes
// through as raw body text.
func errorDetail(statusCode int, body []byte) string {
	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &detail); err == nil && detail.Detail != "" {
		return detail.Detail
	}
	if len(body) > 0 {
		return string(body)
	}
	return fmt.Sprintf("API error %d", statusCode)
}
