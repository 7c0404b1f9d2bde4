// Package session supplies bearer tokens for the repository connection from
// a saved token file. Credential acquisition itself is out of scope; an
// external login flow writes the file and this package serves and persists
// it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultExpiryMargin is how long before expiry a token is already treated
// as expired, so a refresh happens ahead of the server rejecting it.
const DefaultExpiryMargin = 5 * time.Minute

// ErrTokenExpired is returned when the saved token is past its expiry and no
// fresher one is available.
var ErrTokenExpired = errors.New("saved access token is expired")

// TokenFile is the persisted session token.
type TokenFile struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Server    string    `json:"server"`
	Username  string    `json:"username"`
}

// IsExpired reports whether the token expires within margin. A zero expiry
// means the file carries no expiry and the token is trusted as-is.
func (t *TokenFile) IsExpired(margin time.Duration) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(margin).After(t.ExpiresAt)
}

// Load reads a token file. When the file records no expiry, the expiry claim
// embedded in the JWT itself is used if present.
func Load(path string) (*TokenFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load token file: %w", err)
	}
	var tf TokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse token file %s: %w", path, err)
	}
	if tf.ExpiresAt.IsZero() {
		if exp, ok := tokenExpiry(tf.Token); ok {
			tf.ExpiresAt = exp
		}
	}
	return &tf, nil
}

// Save writes a token file, creating parent directories. The file is private
// to the user.
func Save(path string, tf *TokenFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("save token file: %w", err)
	}
	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return fmt.Errorf("save token file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("save token file: %w", err)
	}
	return nil
}

// tokenExpiry reads the exp claim of a JWT without verifying its signature.
// Verification is the server's job; the client only schedules refreshes.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Provider serves the saved token as a repository TokenProvider. Each
// AccessToken call re-reads the file, so a login flow refreshing the file
// concurrently is picked up on the next 401.
type Provider struct {
	path   string
	margin time.Duration

	mu     sync.Mutex
	cached *TokenFile
}

// NewProvider builds a provider over a token file path. A non-positive
// margin falls back to DefaultExpiryMargin.
func NewProvider(path string, margin time.Duration) *Provider {
	if margin <= 0 {
		margin = DefaultExpiryMargin
	}
	return &Provider{path: path, margin: margin}
}

// AccessToken implements the repository token contract. The freshest
// readable token wins; an expired one is only served when nothing fresher
// exists on disk, and then as ErrTokenExpired.
func (p *Provider) AccessToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	tf, err := Load(p.path)
	if err != nil {
		if p.cached != nil && !p.cached.IsExpired(p.margin) {
			return p.cached.Token, nil
		}
		return "", err
	}
	p.cached = tf

	if tf.IsExpired(p.margin) {
		return "", fmt.Errorf("%s: %w", p.path, ErrTokenExpired)
	}
	return tf.Token, nil
}
