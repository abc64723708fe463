package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// HTTPEntry captures enough metadata to support conditional revalidation and
// to return content without hitting the network when valid.
type HTTPEntry struct {
	URL          string
	ContentType  string
	ETag         string
	LastModified string
	SavedAt      time.Time
	Body         []byte
}

// HTTPCache keeps fetched page bodies in memory keyed by sha256(url). Entries
// expire after TTL; nothing is written to disk. A nil *HTTPCache is a valid,
// always-missing cache.
type HTTPCache struct {
	TTL time.Duration

	once  sync.Once
	store *gocache.Cache
}

// NewHTTPCache returns a cache whose entries expire after ttl.
func NewHTTPCache(ttl time.Duration) *HTTPCache {
	return &HTTPCache{TTL: ttl}
}

func (c *HTTPCache) init() {
	c.once.Do(func() {
		c.store = newStore(c.TTL)
	})
}

func (c *HTTPCache) key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

// Load returns the cached entry for url if present.
func (c *HTTPCache) Load(_ context.Context, url string) (*HTTPEntry, bool) {
	if c == nil {
		return nil, false
	}
	c.init()
	v, ok := c.store.Get(c.key(url))
	if !ok {
		return nil, false
	}
	e, ok := v.(HTTPEntry)
	if !ok {
		return nil, false
	}
	e.Body = append([]byte(nil), e.Body...)
	return &e, true
}

// Save stores a new cache entry.
func (c *HTTPCache) Save(_ context.Context, url string, contentType string, etag string, lastModified string, body []byte) error {
	if c == nil {
		return nil
	}
	c.init()
	c.store.Set(c.key(url), HTTPEntry{
		URL:          url,
		ContentType:  contentType,
		ETag:         etag,
		LastModified: lastModified,
		SavedAt:      time.Now().UTC(),
		Body:         append([]byte(nil), body...),
	}, gocache.DefaultExpiration)
	return nil
}

// Flush drops every entry.
func (c *HTTPCache) Flush() {
	if c == nil {
		return
	}
	c.init()
	c.store.Flush()
}
