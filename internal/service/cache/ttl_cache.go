package cache

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultMaxEntries bounds a TTLCache unless overridden.
	DefaultMaxEntries = 10000
	sweepInterval     = time.Minute
)

type entry struct {
	v   []byte
	exp time.Time
}

// TTLCache is an in-process BytesCache with lazy expiry. Writes periodically
// sweep expired entries and never let the map exceed maxEntries.
type TTLCache struct {
	mu         sync.RWMutex
	m          map[string]entry
	now        func() time.Time
	maxEntries int
	lastSweep  time.Time
}

type TTLOption func(*TTLCache)

// WithMaxEntries caps stored entries; n <= 0 keeps the default.
func WithMaxEntries(n int) TTLOption {
	return func(c *TTLCache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

func NewTTLCache(opts ...TTLOption) *TTLCache {
	c := &TTLCache{m: make(map[string]entry), now: time.Now, maxEntries: DefaultMaxEntries}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *TTLCache) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if e.expired(c.now()) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return e.v, true, nil
}

func (c *TTLCache) SetBytes(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := c.now()
	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.m[key]; !exists {
		c.sweep(now)
		c.makeRoom()
	}
	c.m[key] = entry{v: value, exp: exp}
	return nil
}

// Len reports stored entries, expired or not.
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

func (e entry) expired(now time.Time) bool {
	return !e.exp.IsZero() && now.After(e.exp)
}

// sweep drops expired entries at most once per sweepInterval, or at once when full.
// Caller holds mu.
func (c *TTLCache) sweep(now time.Time) {
	if len(c.m) < c.maxEntries && now.Sub(c.lastSweep) < sweepInterval {
		return
	}
	c.lastSweep = now
	for k, e := range c.m {
		if e.expired(now) {
			delete(c.m, k)
		}
	}
}

// makeRoom evicts the entry closest to expiry until one slot is free.
// Caller holds mu.
func (c *TTLCache) makeRoom() {
	for len(c.m) >= c.maxEntries {
		var victim string
		var victimExp time.Time
		first := true
		for k, e := range c.m {
			if first || expiresBefore(e.exp, victimExp) {
				victim, victimExp, first = k, e.exp, false
			}
		}
		delete(c.m, victim)
	}
}

// expiresBefore orders expiries with zero (never) last.
func expiresBefore(a, b time.Time) bool {
	switch {
	case a.IsZero():
		return false
	case b.IsZero():
		return true
	default:
		return a.Before(b)
	}
}
