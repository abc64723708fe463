package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL applies when a cache is created without an explicit TTL.
const DefaultTTL = time.Hour

// LLMCache stores model responses keyed by a prompt digest and model name.
// Entries live in process memory only and expire after TTL. A nil *LLMCache
// is a valid, always-missing cache.
type LLMCache struct {
	TTL time.Duration

	once  sync.Once
	store *gocache.Cache
}

// NewLLMCache returns a cache whose entries expire after ttl.
func NewLLMCache(ttl time.Duration) *LLMCache {
	return &LLMCache{TTL: ttl}
}

func (c *LLMCache) init() {
	c.once.Do(func() {
		c.store = newStore(c.TTL)
	})
}

// KeyFrom builds a cache key from model and prompt digest.
func KeyFrom(model string, prompt string) string {
	h := sha256.Sum256([]byte(model + "\n\n" + prompt))
	return hex.EncodeToString(h[:])
}

// Get returns cached bytes if present.
func (c *LLMCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.init()
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

// Save writes bytes to cache.
func (c *LLMCache) Save(_ context.Context, key string, data []byte) error {
	if c == nil {
		return nil
	}
	c.init()
	c.store.Set(key, append([]byte(nil), data...), gocache.DefaultExpiration)
	return nil
}

// Len reports the number of live entries.
func (c *LLMCache) Len() int {
	if c == nil {
		return 0
	}
	c.init()
	return c.store.ItemCount()
}

func newStore(ttl time.Duration) *gocache.Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	cleanup := ttl / 2
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return gocache.New(ttl, cleanup)
}
