package mock

import (
	"context"

	"pricewatch"
)

var _ pricewatch.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of pricewatch.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*pricewatch.Page, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*pricewatch.Page, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ pricewatch.HostLimiter = (*HostLimiter)(nil)

// HostLimiter is a mock implementation of pricewatch.HostLimiter.
type HostLimiter struct {
	WaitFn func(ctx context.Context, url string) error
}

func (l *HostLimiter) Wait(ctx context.Context, url string) error {
	return l.WaitFn(ctx, url)
}
