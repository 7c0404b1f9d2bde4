package repository

import (
	"net/http"
	"sync"
	"time"

	"github.com/clinaccel/reponav/internal/metrics"
)

// ConcurrencyToken is the optimistic-concurrency pair captured from response
// headers on every successful read or mutation.
type ConcurrencyToken struct {
	ETag         string
	LastModified string
}

// tokenCache holds the most recently observed concurrency token per resource
// id. Last writer wins; entries are evicted when an item is deleted.
type tokenCache struct {
	mu     sync.RWMutex
	tokens map[string]ConcurrencyToken
}

func newTokenCache() *tokenCache {
	return &tokenCache{tokens: make(map[string]ConcurrencyToken)}
}

// Get returns the cached token for id. When none was ever observed it
// returns an empty etag with the current timestamp, so mutating calls can
// proceed with best-effort concurrency semantics.
func (c *tokenCache) Get(id string) ConcurrencyToken {
	c.mu.RLock()
	token, ok := c.tokens[id]
	c.mu.RUnlock()
	if ok {
		return token
	}
	return ConcurrencyToken{LastModified: time.Now().UTC().Format(http.TimeFormat)}
}

// Update captures the token for id from a response header set.
func (c *tokenCache) Update(id string, header http.Header) {
	token := ConcurrencyToken{
		ETag:         header.Get("Etag"),
		LastModified: header.Get("Last-Modified"),
	}
	c.mu.Lock()
	c.tokens[id] = token
	size := len(c.tokens)
	c.mu.Unlock()
	metrics.SetTokenCacheSize(size)
}

// Evict drops the token for id.
func (c *tokenCache) Evict(id string) {
	c.mu.Lock()
	delete(c.tokens, id)
	size := len(c.tokens)
	c.mu.Unlock()
	metrics.SetTokenCacheSize(size)
}
