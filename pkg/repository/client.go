// Package repository is the access layer for the remote document repository.
// It owns the authenticated connection, the object-type catalog, the
// per-resource concurrency-token cache, pagination, and every remote
// operation the navigator performs.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinaccel/reponav/internal/metrics"
	"github.com/clinaccel/reponav/pkg/models"
	"github.com/clinaccel/reponav/pkg/notify"
)

const defaultPageSize = 100

// Config holds client configuration.
type Config struct {
	// BaseURL is the service endpoint, e.g. https://viya.example.com.
	BaseURL string
	// Tokens supplies bearer tokens for the connection.
	Tokens TokenProvider
	// Notifier receives user-facing access-error notifications. Optional.
	Notifier notify.Notifier
	// Logger is used for diagnostics. Optional.
	Logger *zap.Logger
	// Timeout bounds each request. Defaults to 30s.
	Timeout time.Duration
	// PageSize is the children-listing page size. Defaults to 100.
	PageSize int
	// Transport overrides the underlying round tripper, mainly for tests.
	Transport http.RoundTripper
}

// Client is a session-scoped connection to the repository. One instance per
// navigator session; its catalog and token caches are owned by that session
// and never shared across connections.
type Client struct {
	baseURL    string
	httpClient *http.Client
	transport  *authTransport
	log        *zap.Logger
	notifier   notify.Notifier
	clientID   string
	pageSize   int
	authorized atomic.Bool

	typesMu   sync.RWMutex
	types     []models.ObjectType
	typesByID map[string]*models.ObjectType

	tokens *tokenCache
}

// New creates a client. Connect must be called before any remote operation.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrEmptyBaseURL
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("repository: token provider is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Nop()
	}

	transport := newAuthTransport(newRetryTransport(cfg.Transport), cfg.Tokens)
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		transport: transport,
		log:       cfg.Logger,
		notifier:  cfg.Notifier,
		clientID:  uuid.NewString(),
		pageSize:  cfg.PageSize,
		tokens:    newTokenCache(),
	}, nil
}

// Connect acquires the initial access token and marks the client authorized.
// Until it succeeds, listing operations return empty results.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.transport.refresh(ctx); err != nil {
		return fmt.Errorf("connect %s: %w", c.baseURL, err)
	}
	c.authorized.Store(true)
	c.log.Info("connected to repository", zap.String("baseURL", c.baseURL))
	return nil
}

// Authorized reports whether Connect has succeeded.
func (c *Client) Authorized() bool {
	return c.authorized.Load()
}

// ClientID is the identifier this session tags batch actions with.
func (c *Client) ClientID() string {
	return c.clientID
}

// do issues one request and converts non-2xx answers into *APIError. The
// caller owns the response body on success.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordRequest(op, 0, time.Since(start))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.RecordRequest(op, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		apiErr := parseError(resp)
		c.log.Debug("request failed",
			zap.String("operation", op),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%s: %w", op, apiErr)
	}
	return resp, nil
}

func decodeJSON[T any](resp *http.Response) (*T, error) {
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// ensureTypes fetches and caches the object-type catalog on first use. The
// catalog lives for the connection's lifetime.
func (c *Client) ensureTypes(ctx context.Context) error {
	c.typesMu.RLock()
	loaded := len(c.types) > 0
	c.typesMu.RUnlock()
	if loaded {
		return nil
	}

	header := http.Header{"Accept": []string{models.CollectionMediaType}}
	resp, err := c.do(ctx, "types", http.MethodGet, typesPath, nil, header)
	if err != nil {
		return err
	}
	catalog, err := decodeJSON[models.Collection[models.ObjectType]](resp)
	if err != nil {
		return err
	}
	if len(catalog.Items) == 0 {
		return ErrEmptyCatalog
	}

	byID := make(map[string]*models.ObjectType, len(catalog.Items))
	for i := range catalog.Items {
		byID[catalog.Items[i].ID] = &catalog.Items[i]
	}

	c.typesMu.Lock()
	c.types = catalog.Items
	c.typesByID = byID
	c.typesMu.Unlock()
	c.log.Debug("object-type catalog loaded", zap.Int("types", len(catalog.Items)))
	return nil
}

// ObjectType returns the catalog entry for a typeId, or nil when unknown.
func (c *Client) ObjectType(typeID string) *models.ObjectType {
	c.typesMu.RLock()
	defer c.typesMu.RUnlock()
	return c.typesByID[typeID]
}

// ObjectTypeName returns the display name for a typeId, or "" when unknown.
func (c *Client) ObjectTypeName(typeID string) string {
	if objectType := c.ObjectType(typeID); objectType != nil {
		return objectType.Name
	}
	return ""
}

// Token returns the most recently observed concurrency token for id, or an
// empty-etag token stamped with the current time when none was observed.
func (c *Client) Token(id string) ConcurrencyToken {
	return c.tokens.Get(id)
}

func (c *Client) notifyError(message string) {
	c.notifier.Notify(notify.LevelError, message)
}
