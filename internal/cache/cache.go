// Package cache stores reasoning-service responses keyed by model and prompt.
// An in-memory tier is always present; a redis tier can be layered underneath
// so entries survive restarts and are shared between replicas.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonathan/career-path/internal/observability"
)

// DefaultTTL is how long a response stays cached when Options.TTL is unset.
const DefaultTTL = 60 * time.Minute

// Store is a shared second-tier backend.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Options configures a ResponseCache.
type Options struct {
	TTL        time.Duration
	MaxEntries int   // 0 means unbounded
	L2         Store // optional
	Logger     observability.Logger
	Now        func() time.Time // for tests
}

// Stats summarizes cache contents.
type Stats struct {
	TotalEntries  int     `json:"total_entries"`
	ActiveEntries int     `json:"active_entries"`
	TotalHits     int     `json:"total_hits"`
	Misses        int64   `json:"misses"`
	TTLMinutes    float64 `json:"ttl_minutes"`
	SharedTier    bool    `json:"shared_tier"`
}

type entry struct {
	response string
	storedAt time.Time
	hits     int
}

// ResponseCache is safe for concurrent use.
type ResponseCache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	ttl        time.Duration
	maxEntries int
	l2         Store
	logger     observability.Logger
	now        func() time.Time
	misses     atomic.Int64
}

// New creates a ResponseCache.
func New(opts Options) *ResponseCache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = observability.NopLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ResponseCache{
		entries:    make(map[string]*entry),
		ttl:        opts.TTL,
		maxEntries: opts.MaxEntries,
		l2:         opts.L2,
		logger:     opts.Logger,
		now:        opts.Now,
	}
}

// Key returns the hex sha256 of "model:prompt".
func Key(model, prompt string) string {
	sum := sha256.Sum256([]byte(model + ":" + prompt))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached response for model and prompt. Expired entries are
// removed on access. A shared-tier hit repopulates memory.
func (c *ResponseCache) Get(ctx context.Context, model, prompt string) (string, bool) {
	key := Key(model, prompt)
	now := c.now()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		if now.Sub(e.storedAt) <= c.ttl {
			e.hits++
			response := e.response
			c.mu.Unlock()
			return response, true
		}
		delete(c.entries, key)
	}
	c.mu.Unlock()

	if c.l2 != nil {
		value, ok, err := c.l2.Get(ctx, key)
		if err != nil {
			c.logger.Debug("cache: shared tier get failed: %v", err)
		} else if ok {
			c.mu.Lock()
			c.storeLocked(key, value, now)
			c.entries[key].hits++
			c.mu.Unlock()
			return value, true
		}
	}

	c.misses.Add(1)
	return "", false
}

// Set stores response for model and prompt in every tier.
func (c *ResponseCache) Set(ctx context.Context, model, prompt, response string) {
	key := Key(model, prompt)

	c.mu.Lock()
	c.storeLocked(key, response, c.now())
	c.mu.Unlock()

	if c.l2 != nil {
		if err := c.l2.Set(ctx, key, response, c.ttl); err != nil {
			c.logger.Debug("cache: shared tier set failed: %v", err)
		}
	}
}

func (c *ResponseCache) storeLocked(key, response string, now time.Time) {
	if _, exists := c.entries[key]; !exists {
		c.evictLocked(now)
	}
	c.entries[key] = &entry{response: response, storedAt: now}
}

// evictLocked makes room for one entry: expired entries go first, then the oldest.
func (c *ResponseCache) evictLocked(now time.Time) {
	if c.maxEntries <= 0 || len(c.entries) < c.maxEntries {
		return
	}
	for key, e := range c.entries {
		if now.Sub(e.storedAt) > c.ttl {
			delete(c.entries, key)
		}
	}
	for len(c.entries) >= c.maxEntries {
		var oldestKey string
		var oldest time.Time
		for key, e := range c.entries {
			if oldestKey == "" || e.storedAt.Before(oldest) || (e.storedAt.Equal(oldest) && key < oldestKey) {
				oldestKey, oldest = key, e.storedAt
			}
		}
		delete(c.entries, oldestKey)
	}
}

// Stats returns current counters.
func (c *ResponseCache) Stats() Stats {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		TotalEntries: len(c.entries),
		Misses:       c.misses.Load(),
		TTLMinutes:   c.ttl.Minutes(),
		SharedTier:   c.l2 != nil,
	}
	for _, e := range c.entries {
		if now.Sub(e.storedAt) <= c.ttl {
			stats.ActiveEntries++
		}
		stats.TotalHits += e.hits
	}
	return stats
}

// CleanupExpired removes expired in-memory entries and returns how many were removed.
func (c *ResponseCache) CleanupExpired() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if now.Sub(e.storedAt) > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// clearer is implemented by shared tiers that can drop all of their keys.
type clearer interface {
	Clear(ctx context.Context) error
}

// Clear drops every in-memory entry and, when the shared tier supports it,
// every shared entry too. Without that support the shared tier expires on
// its own TTL.
func (c *ResponseCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.mu.Unlock()
	c.misses.Store(0)

	if l2, ok := c.l2.(clearer); ok {
		if err := l2.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear shared cache: %w", err)
		}
	}
	return nil
}

// StartCleanup removes expired entries every interval until ctx is done.
func (c *ResponseCache) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := c.CleanupExpired(); n > 0 {
					c.logger.Debug("cache: removed %d expired entries", n)
				}
			}
		}
	}()
}
