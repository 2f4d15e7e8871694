// Package keyring rotates API keys for cloud providers. Free-tier
// Gemini keys carry tight per-key RPM quotas; spreading requests over
// a ring of keys and pausing keys that report 429s keeps long
// ingestion runs moving.
package keyring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
	"github.com/glossa-labs/glossa-cli/internal/logger"
)

// Ensure Ring implements the interface.
var _ driven.KeyRing = (*Ring)(nil)

// Default configuration values.
const (
	DefaultRPM     = 60
	DefaultBackoff = 30 * time.Second
)

// Config holds configuration for the key ring.
type Config struct {
	// Keys are the API keys to rotate over. At least one is required.
	Keys []string

	// RPM is the per-key requests-per-minute budget (default: 60).
	RPM int

	// Backoff is how long a key rests after a 429 without a
	// Retry-After hint (default: 30s).
	Backoff time.Duration
}

// entry is one key with its limiter and cooldown state.
type entry struct {
	key      string
	limiter  *rate.Limiter
	pausedTo time.Time
}

// Ring rotates keys round-robin, skipping keys that are cooling down
// after a rate limit and pacing each key with a token bucket.
type Ring struct {
	mu      sync.Mutex
	entries []*entry
	next    int
	backoff time.Duration
}

// New creates a key ring. Empty keys are dropped; an all-empty list
// yields a ring that returns domain.ErrNoAPIKeys from Next.
func New(cfg Config) *Ring {
	if cfg.RPM <= 0 {
		cfg.RPM = DefaultRPM
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}

	perKey := rate.Limit(float64(cfg.RPM) / 60.0)
	entries := make([]*entry, 0, len(cfg.Keys))
	for _, k := range cfg.Keys {
		if k == "" {
			continue
		}
		entries = append(entries, &entry{
			key:     k,
			limiter: rate.NewLimiter(perKey, 1),
		})
	}

	return &Ring{
		entries: entries,
		backoff: cfg.Backoff,
	}
}

// Next returns the next key that is not cooling down, waiting on its
// limiter for a slot. When every key is paused, Next sleeps until the
// earliest cooldown expires, then retries.
func (r *Ring) Next(ctx context.Context) (string, error) {
	if r.Len() == 0 {
		return "", domain.ErrNoAPIKeys
	}

	for {
		e, wait := r.pick()
		if e != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("wait for key slot: %w", err)
			}
			return e.key, nil
		}

		// Every key is paused. Sleep until the earliest one wakes.
		logger.Debug("keyring: all %d keys rate limited, waiting %s", r.Len(), wait.Round(time.Second))
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}
}

// pick returns the next available entry, advancing the round-robin
// cursor. When all entries are paused it returns nil and the wait
// until the earliest cooldown ends.
func (r *Ring) pick() (*entry, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	minWait := time.Duration(-1)
	for range r.entries {
		e := r.entries[r.next]
		r.next = (r.next + 1) % len(r.entries)
		if now.After(e.pausedTo) {
			return e, 0
		}
		if w := e.pausedTo.Sub(now); minWait < 0 || w < minWait {
			minWait = w
		}
	}
	return nil, minWait
}

// ReportRateLimited pauses a key after a 429. retryAfter is in
// seconds; zero applies the configured backoff.
func (r *Ring) ReportRateLimited(key string, retryAfter int) {
	pause := r.backoff
	if retryAfter > 0 {
		pause = time.Duration(retryAfter) * time.Second
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.key == key {
			e.pausedTo = time.Now().Add(pause)
			logger.Debug("keyring: key ...%s paused for %s", tail(key), pause)
			return
		}
	}
}

// Len returns the number of keys in the ring.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// tail returns the last four characters of a key for logging.
func tail(key string) string {
	if len(key) <= 4 {
		return key
	}
	return key[len(key)-4:]
}
