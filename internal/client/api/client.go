// Package api is the client's REST wrapper around the server's /api
// surface. It owns bearer-token injection, timeouts, error decoding, and
// the global 401/403 reaction that tears down the local session.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout applies to API calls whose context carries no deadline.
const DefaultTimeout = 15 * time.Second

// ResendTimeout is the extended timeout for the resend-verification call,
// which waits on synchronous mail delivery.
const ResendTimeout = 35 * time.Second

// Error is a decoded API error response plus the HTTP status.
type Error struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api error: status %d", e.Status)
}

// IsAuthError reports whether err is an API error with status 401 or 403.
func IsAuthError(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}

// IsStatus reports whether err is an API error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client calls the REST API. TokenFunc supplies the stored bearer token
// ("" when logged out). LocationFunc reports the current route so the
// auth-failure reaction can be suppressed on the login and register
// screens, where a 401 is an expected outcome rather than a dead session.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	TokenFunc    func(ctx context.Context) string
	LocationFunc func() string
	// OnAuthFailure runs once per failing request on 401/403, after the
	// exemption check. Wiring installs the session teardown here.
	OnAuthFailure func(ctx context.Context)
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, "", nil, out, DefaultTimeout)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, in, out, DefaultTimeout)
}

// PostWithTimeout is Post with a non-default timeout; the resend
// verification endpoint uses it.
func (c *Client) PostWithTimeout(ctx context.Context, path string, in, out any, timeout time.Duration) error {
	return c.doJSON(ctx, http.MethodPost, path, in, out, timeout)
}

func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, in, out, DefaultTimeout)
}

func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, in, out, DefaultTimeout)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, "", nil, nil, DefaultTimeout)
}

// PostMultipart sends a prepared multipart body (ad create/update).
func (c *Client) PostMultipart(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	return c.do(ctx, method, path, contentType, body, out, DefaultTimeout)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, timeout time.Duration) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	return c.do(ctx, method, path, "application/json", body, out, timeout)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any, timeout time.Duration) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.setAuthHeader(ctx, req)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		apiErr := c.decodeError(res)
		if apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden {
			c.handleAuthFailure(ctx)
		}
		return apiErr
	}

	if out != nil && res.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// setAuthHeader attaches the bearer token. Tokens that were persisted with
// the "Bearer " prefix already included are tolerated.
func (c *Client) setAuthHeader(ctx context.Context, req *http.Request) {
	if c.TokenFunc == nil {
		return
	}
	token := c.TokenFunc(ctx)
	if token == "" {
		return
	}
	token = strings.TrimPrefix(token, "Bearer ")
	req.Header.Set("Authorization", "Bearer "+token)
}

func (c *Client) decodeError(res *http.Response) *Error {
	apiErr := &Error{Status: res.StatusCode}
	var body struct {
		Error   string            `json:"error"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err == nil {
		apiErr.Code = body.Error
		apiErr.Message = body.Message
		apiErr.Fields = body.Fields
	}
	return apiErr
}

// handleAuthFailure runs the installed teardown unless the user is already
// on the login or register screen.
func (c *Client) handleAuthFailure(ctx context.Context) {
	if c.OnAuthFailure == nil {
		return
	}
	if c.LocationFunc != nil {
		switch c.LocationFunc() {
		case "/login", "/register":
			return
		}
	}
	c.OnAuthFailure(ctx)
}
