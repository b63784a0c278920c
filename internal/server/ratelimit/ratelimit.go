// Package ratelimit limits requests per client with a per-minute and a per-hour
// token bucket for each endpoint.
package ratelimit

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int // the binding window's limit (per-minute when set)
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
	Reason     string
}

// Stats reports one client's usage of one endpoint.
type Stats struct {
	RequestsLastMinute int `json:"requests_last_minute"`
	RequestsLastHour   int `json:"requests_last_hour"`
	MinuteLimit        int `json:"minute_limit"`
	HourLimit          int `json:"hour_limit"`
	MinuteRemaining    int `json:"minute_remaining"`
	HourRemaining      int `json:"hour_remaining"`
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled          bool
	DefaultPerMinute int
	DefaultPerHour   int
	CleanupInterval  time.Duration
	Whitelist        map[string]bool
	Blacklist        map[string]bool
	EndpointConfigs  []EndpointConfig
}

// window is one token bucket plus its nominal limit.
type window struct {
	limiter *rate.Limiter
	limit   int
	period  time.Duration
}

func newWindow(limit int, period time.Duration) *window {
	if limit <= 0 {
		return nil
	}
	return &window{
		limiter: rate.NewLimiter(rate.Every(period/time.Duration(limit)), limit),
		limit:   limit,
		period:  period,
	}
}

func (w *window) remaining(now time.Time) int {
	tokens := int(w.limiter.TokensAt(now))
	if tokens < 0 {
		return 0
	}
	return tokens
}

// resetAt is when the bucket will be full again.
func (w *window) resetAt(now time.Time) time.Time {
	missing := float64(w.limit) - w.limiter.TokensAt(now)
	if missing <= 0 {
		return now
	}
	perToken := w.period / time.Duration(w.limit)
	return now.Add(time.Duration(missing * float64(perToken)))
}

type clientBuckets struct {
	minute     *window
	hour       *window
	lastAccess time.Time
}

// Limiter manages rate limiting for multiple clients.
type Limiter struct {
	mu          sync.Mutex
	clients     map[string]*clientBuckets // clientID:method:path -> buckets
	config      *Config
	now         func() time.Time
	cleanupStop chan struct{}
	stopOnce    sync.Once
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:          true,
			DefaultPerMinute: 120,
			CleanupInterval:  5 * time.Minute,
			EndpointConfigs:  DefaultEndpointConfigs(DefaultPerMinute, DefaultPerHour),
		}
	}

	l := &Limiter{
		clients: make(map[string]*clientBuckets),
		config:  config,
		now:     time.Now,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupStop = make(chan struct{})
		go l.cleanup(config.CleanupInterval)
	}
	return l
}

func (l *Limiter) endpointFor(path, method string) EndpointConfig {
	if cfg := MatchEndpoint(path, method, l.config.EndpointConfigs); cfg != nil {
		return *cfg
	}
	return EndpointConfig{Path: path, Method: method, PerMinute: l.config.DefaultPerMinute, PerHour: l.config.DefaultPerHour}
}

func bucketKey(clientID string, ep EndpointConfig) string {
	return clientID + ":" + ep.Method + ":" + ep.Path
}

// bucketsLocked gets or creates the buckets for a client and endpoint.
func (l *Limiter) bucketsLocked(clientID string, ep EndpointConfig, now time.Time) *clientBuckets {
	key := bucketKey(clientID, ep)
	b, ok := l.clients[key]
	if !ok {
		b = &clientBuckets{
			minute: newWindow(ep.PerMinute, time.Minute),
			hour:   newWindow(ep.PerHour, time.Hour),
		}
		l.clients[key] = b
	}
	b.lastAccess = now
	return b
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
// A request consumes a token from both windows only when both have one.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false, Reason: "client is blocked"}
	}

	ep := l.endpointFor(endpoint, method)
	if ep.PerMinute <= 0 && ep.PerHour <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.bucketsLocked(clientID, ep, now)

	var reservations []*rate.Reservation
	for _, w := range []*window{b.minute, b.hour} {
		if w == nil {
			continue
		}
		r := w.limiter.ReserveN(now, 1)
		reservations = append(reservations, r)
		if delay := r.DelayFrom(now); delay > 0 {
			for _, taken := range reservations {
				taken.CancelAt(now)
			}
			return false, Info{
				Allowed:    false,
				Limit:      w.limit,
				Remaining:  0,
				ResetTime:  w.resetAt(now),
				RetryAfter: delay,
				Reason:     fmt.Sprintf("Rate limit exceeded: %d requests per %s", w.limit, periodName(w.period)),
			}
		}
	}
	return true, l.infoLocked(b, now, true)
}

func (l *Limiter) infoLocked(b *clientBuckets, now time.Time, allowed bool) Info {
	binding := b.minute
	if binding == nil {
		binding = b.hour
	}
	return Info{
		Allowed:   allowed,
		Limit:     binding.limit,
		Remaining: binding.remaining(now),
		ResetTime: binding.resetAt(now),
	}
}

// Stats returns a client's usage of an endpoint without consuming anything.
func (l *Limiter) Stats(clientID, endpoint, method string) Stats {
	ep := l.endpointFor(endpoint, method)
	stats := Stats{MinuteLimit: ep.PerMinute, HourLimit: ep.PerHour, MinuteRemaining: ep.PerMinute, HourRemaining: ep.PerHour}

	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.clients[bucketKey(clientID, ep)]
	if !ok {
		return stats
	}
	now := l.now()
	if b.minute != nil {
		stats.MinuteRemaining = b.minute.remaining(now)
		stats.RequestsLastMinute = b.minute.limit - stats.MinuteRemaining
	}
	if b.hour != nil {
		stats.HourRemaining = b.hour.remaining(now)
		stats.RequestsLastHour = b.hour.limit - stats.HourRemaining
	}
	return stats
}

// Reset forgets a client's buckets, or every client's when clientID is empty.
func (l *Limiter) Reset(clientID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if clientID == "" {
		l.clients = make(map[string]*clientBuckets)
		return
	}
	prefix := clientID + ":"
	for key := range l.clients {
		if strings.HasPrefix(key, prefix) {
			delete(l.clients, key)
		}
	}
}

// cleanup removes old unused buckets to prevent memory leaks.
func (l *Limiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanupBuckets()
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupBuckets removes buckets that haven't been accessed in over an hour.
func (l *Limiter) cleanupBuckets() {
	cutoff := l.now().Add(-1 * time.Hour)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.clients {
		if b.lastAccess.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}

// Stop stops the cleanup goroutine.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}

func periodName(d time.Duration) string {
	if d >= time.Hour {
		return "hour"
	}
	return "minute"
}
