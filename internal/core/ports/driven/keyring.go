package driven

import "context"

// KeyRing hands out API keys for cloud providers. Implementations
// rotate across multiple keys and hold callers back while every key
// is rate limited.
type KeyRing interface {
	// Next blocks until a key is available under the rate limit, then
	// returns it. Returns an error when the context is cancelled or
	// no keys are configured.
	Next(ctx context.Context) (string, error)

	// ReportRateLimited records a 429 for the given key so the ring
	// backs off before handing it out again. retryAfter is in
	// seconds; zero applies the default backoff.
	ReportRateLimited(key string, retryAfter int)

	// Len returns the number of keys in the ring.
	Len() int
}
