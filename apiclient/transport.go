package apiclient

import (
	"context"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// CredentialSource supplies the access credential attached to outgoing calls.
// *session.Store satisfies it.
type CredentialSource interface {
	AccessCredential() string
}

// Refresher performs the silent refresh and the hard logout triggered by
// credential-expiry responses. *auth.Service satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
	Logout()
}

var _ http.RoundTripper = (*Transport)(nil)

// Transport attaches the current access credential as a bearer header to every
// request. On a 401 answer it performs one silent refresh and retries the
// original request exactly once with the new credential; if the retry is also
// rejected the session is hard logged out.
type Transport struct {
	base        http.RoundTripper
	credentials CredentialSource
	lifecycle   Refresher
	logger      zerolog.Logger
}

// TransportOption modifies the Transport instance.
type TransportOption func(*Transport)

// WithBaseTransport sets the wrapped round tripper.
func WithBaseTransport(base http.RoundTripper) TransportOption {
	return func(t *Transport) {
		t.base = base
	}
}

// WithTransportLogger sets the logger for refresh-retry events.
func WithTransportLogger(logger zerolog.Logger) TransportOption {
	return func(t *Transport) {
		t.logger = logger
	}
}

// NewTransport creates the bearer transport.
func NewTransport(credentials CredentialSource, lifecycle Refresher, options ...TransportOption) (*Transport, error) {
	if credentials == nil {
		return nil, errors.New("[apiclient.NewTransport] credential source is required")
	}
	if lifecycle == nil {
		return nil, errors.New("[apiclient.NewTransport] refresher is required")
	}

	t := &Transport{
		base:        http.DefaultTransport,
		credentials: credentials,
		lifecycle:   lifecycle,
		logger:      zerolog.Nop(),
	}
	for _, opt := range options {
		opt(t)
	}
	return t, nil
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(t.withBearer(req))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	newAccess, refreshErr := t.lifecycle.Refresh(req.Context())
	if refreshErr != nil {
		// A rejected refresh has already cleared the session; a transient one
		// keeps it. Either way the original 401 stands.
		t.logger.Debug().Err(refreshErr).Str("path", req.URL.Path).Msg("silent refresh failed")
		return resp, nil
	}

	retry, err := t.rewind(req)
	if err != nil {
		return resp, nil
	}

	drain(resp)
	retry.Header.Set("Authorization", "Bearer "+newAccess)
	retryResp, err := t.base.RoundTrip(retry)
	if err != nil {
		return nil, err
	}
	if retryResp.StatusCode == http.StatusUnauthorized {
		t.logger.Warn().Str("path", req.URL.Path).Msg("retry with refreshed credential rejected, logging out")
		t.lifecycle.Logout()
	}
	return retryResp, nil
}

// withBearer returns a clone with the Authorization header set, leaving the
// caller's request untouched. Unauthenticated sessions send no header.
func (t *Transport) withBearer(req *http.Request) *http.Request {
	access := t.credentials.AccessCredential()
	if access == "" {
		return req
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+access)
	return clone
}

// rewind rebuilds the request for the retry. Requests with a consumed body can
// only be replayed when GetBody is available.
func (t *Transport) rewind(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.GetBody == nil {
		if req.Body != nil {
			return nil, errors.New("[Transport.rewind] request body cannot be replayed")
		}
		return clone, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, errors.Wrap(err, "[Transport.rewind] reopen request body")
	}
	clone.Body = body
	return clone, nil
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
