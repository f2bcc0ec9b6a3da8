package track

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"

	"pricewatch"
)

// Ensure HostLimiter implements pricewatch.HostLimiter at compile time.
var _ pricewatch.HostLimiter = (*HostLimiter)(nil)

// HostLimiter provides per-host rate limiting using token buckets. Each
// retailer host gets its own limiter, so fetches against different retailers
// proceed concurrently while fetches against one retailer stay polite.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewHostLimiter creates a HostLimiter allowing rps requests per second to
// each host, with a burst of 1 (no bursting).
func NewHostLimiter(rps float64) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows a request to rawURL's host.
// Returns an error if the context is canceled before the wait completes.
func (l *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	key := hostKey(rawURL)

	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(l.rps), 1)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()

	return limiter.Wait(ctx)
}

// hostKey buckets URLs by host, falling back to the raw string when the URL
// does not parse.
func hostKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
