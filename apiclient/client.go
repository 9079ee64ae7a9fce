// Package apiclient talks to the portal's backend REST API. It implements the
// two external authentication operations consumed by the lifecycle manager and
// provides the bearer transport every other API call goes through.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/maternalcare/portal-core/auth"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	loginPath   = "/login/"
	refreshPath = "/token/refresh/"

	contentTypeJSON   = "application/json"
	headerRequestID   = "X-Request-ID"
	defaultAPITimeout = 10 * time.Second
)

var _ auth.Authenticator = (*Client)(nil)

// Client calls the portal API's authentication endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     zerolog.Logger
}

// ClientOption modifies the Client instance.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds each authentication call. A timeout is treated like any
// other transient network failure.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger for request outcomes.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the API rooted at baseURL (e.g.
// "http://localhost:8000/api").
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[apiclient.NewClient] base URL is required")
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		timeout:    defaultAPITimeout,
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access             string `json:"access"`
	Refresh            string `json:"refresh"`
	MustChangePassword bool   `json:"must_change_password"`
}

// Authenticate exchanges an identifier/secret pair for a credential pair. An
// explicit rejection by the service maps to auth.InvalidCredentialsErr.
func (c *Client) Authenticate(ctx context.Context, identifier, secret string) (auth.LoginResult, error) {
	var resp loginResponse
	status, err := c.postJSON(ctx, loginPath, loginRequest{Username: identifier, Password: secret}, &resp)
	if err != nil {
		return auth.LoginResult{}, errors.Wrap(err, "[Client.Authenticate] login request")
	}

	switch {
	case status == http.StatusOK:
		return auth.LoginResult{
			AccessCredential:   resp.Access,
			RefreshCredential:  resp.Refresh,
			MustChangePassword: resp.MustChangePassword,
		}, nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return auth.LoginResult{}, auth.InvalidCredentialsErr
	default:
		return auth.LoginResult{}, errors.Errorf("[Client.Authenticate] unexpected status %d", status)
	}
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// RefreshCredential mints a new access credential from a refresh credential.
// Any 4xx answer is an explicit rejection (auth.RefreshRejectedErr); transport
// errors and 5xx answers are transient.
func (c *Client) RefreshCredential(ctx context.Context, refreshCredential string) (string, error) {
	var resp refreshResponse
	status, err := c.postJSON(ctx, refreshPath, refreshRequest{Refresh: refreshCredential}, &resp)
	if err != nil {
		return "", errors.Wrap(err, "[Client.RefreshCredential] refresh request")
	}

	switch {
	case status == http.StatusOK:
		return resp.Access, nil
	case status >= 400 && status < 500:
		return "", errors.Wrapf(auth.RefreshRejectedErr, "status %d", status)
	default:
		return "", errors.Errorf("[Client.RefreshCredential] unexpected status %d", status)
	}
}

// postJSON posts the request body and decodes the response into out when the
// status is 200. The returned status lets callers map rejections themselves.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, errors.Wrap(err, "marshal request")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set(headerRequestID, uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	c.logger.Debug().Str("path", path).Int("status", resp.StatusCode).Msg("api call")

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return 0, errors.Wrap(err, "decode response")
	}
	return resp.StatusCode, nil
}
