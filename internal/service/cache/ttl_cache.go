package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	v   []byte
	exp time.Time
}

// TTLCache is an in-process BytesCache.
type TTLCache struct {
	mu  sync.RWMutex
	m   map[string]entry
	now func() time.Time
}

func NewTTLCache() *TTLCache {
	return &TTLCache{m: make(map[string]entry), now: time.Now}
}

func (c *TTLCache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.exp.IsZero() && c.now().After(e.exp) {
		c.mu.Lock()
		if cur, ok := c.m[key]; ok && cur.exp.Equal(e.exp) {
			delete(c.m, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.v, true
}

func (c *TTLCache) set(key string, v []byte, ttl time.Duration) {
	var exp time.Time
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.m[key] = entry{v: v, exp: exp}
	c.mu.Unlock()
}

// GetBytes returns a copy of the cached value.
func (c *TTLCache) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := c.get(key)
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, true, nil
}

func (c *TTLCache) SetBytes(_ context.Context, key string, value []byte, ttl time.Duration) error {
	b := make([]byte, len(value))
	copy(b, value)
	c.set(key, b, ttl)
	return nil
}

var _ BytesCache = (*TTLCache)(nil)
