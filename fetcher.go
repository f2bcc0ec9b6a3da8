package pricewatch

import "context"

// Fetcher retrieves listing pages.
// Implementations may use browser automation to handle JavaScript-rendered
// listings.
type Fetcher interface {
	// Fetch retrieves the page at url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (*Page, error)

	// Close releases fetcher resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// HostLimiter provides per-host rate limiting between consecutive fetches.
// Politeness is a policy of the fetch layer, not of resolution.
type HostLimiter interface {
	// Wait blocks until the rate limit allows a request to the URL's host.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, url string) error
}
