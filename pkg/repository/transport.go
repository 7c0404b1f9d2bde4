package repository

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/clinaccel/reponav/internal/metrics"
)

// TokenProvider supplies bearer tokens for the repository connection.
// AccessToken is called once at connect time and again whenever the server
// answers 401; implementations are expected to return a fresh token in that
// case rather than replaying a cached, expired one.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider that always returns the same token.
type StaticToken string

// AccessToken implements TokenProvider.
func (t StaticToken) AccessToken(context.Context) (string, error) {
	return string(t), nil
}

// authTransport attaches the bearer token to every request and, on a single
// 401 per request, refreshes the token and retries the original request
// exactly once. A retried request that again receives 401 propagates.
type authTransport struct {
	base   http.RoundTripper
	tokens TokenProvider

	mu    sync.RWMutex
	token string
}

func newAuthTransport(base http.RoundTripper, tokens TokenProvider) *authTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{base: base, tokens: tokens}
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(t.withAuth(req))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	resp.Body.Close()
	if err := t.refresh(req.Context()); err != nil {
		metrics.RecordTokenRefresh(false)
		return nil, fmt.Errorf("refresh access token: %w", err)
	}
	metrics.RecordTokenRefresh(true)

	retry := t.withAuth(req)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewind request body: %w", err)
		}
		retry.Body = body
	}
	return t.base.RoundTrip(retry)
}

func (t *authTransport) withAuth(req *http.Request) *http.Request {
	out := req.Clone(req.Context())
	t.mu.RLock()
	if t.token != "" {
		out.Header.Set("Authorization", "Bearer "+t.token)
	}
	t.mu.RUnlock()
	return out
}

func (t *authTransport) refresh(ctx context.Context) error {
	token, err := t.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()
	return nil
}
