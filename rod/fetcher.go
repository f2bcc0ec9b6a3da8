// Package rod provides a browser-automation implementation of
// pricewatch.Fetcher for retailers that only render prices with JavaScript
// enabled.
package rod

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/stealth"

	"pricewatch"
)

// DefaultFetchTimeout bounds one rendered fetch, including navigation and
// the scroll settle delays.
const DefaultFetchTimeout = 60 * time.Second

// Default settle delays after each scroll step. Several tracked retailers
// lazy-load the offer block and only attach the price once the viewport
// has moved.
const (
	DefaultFirstSettle  = 2 * time.Second
	DefaultSecondSettle = 3 * time.Second
)

// scrollStepPixels is how far each scroll step moves the viewport.
const scrollStepPixels = 500

// Ensure Fetcher implements pricewatch.Fetcher at compile time.
var _ pricewatch.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered listing pages using Chrome browser automation.
// Every page is opened with stealth scripting injected so the retailer sees
// an ordinary desktop browser. Fetcher is safe for concurrent use by
// multiple goroutines.
type Fetcher struct {
	manager      *BrowserManager
	timeout      time.Duration
	firstSettle  time.Duration
	secondSettle time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout bounds each Fetch call.
// Defaults to DefaultFetchTimeout (60s) if not specified.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithSettleDelays overrides the waits after the two scroll steps. Mostly
// useful in tests; real retailers need the defaults.
func WithSettleDelays(first, second time.Duration) Option {
	return func(f *Fetcher) {
		f.firstSettle = first
		f.secondSettle = second
	}
}

// NewFetcher creates a new Fetcher backed by a managed headless Chrome
// browser. Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		firstSettle:  DefaultFirstSettle,
		secondSettle: DefaultSecondSettle,
	}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager()
	if err != nil {
		return nil, err
	}
	f.manager = manager

	return f, nil
}

// Fetch navigates to the URL, waits for the load event, scrolls twice to
// trigger lazy-loaded offer blocks, and returns the rendered page.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*pricewatch.Page, error) {
	// Check context before starting
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	browser := f.manager.Browser()
	if browser == nil {
		return nil, pricewatch.Errorf(pricewatch.EUNAVAILABLE, "browser is closed")
	}

	// Create a new page with stealth scripting pre-injected
	page, err := stealth.Page(browser)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	// Set context for all subsequent operations
	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return nil, err
	}
	if err := page.WaitLoad(); err != nil {
		return nil, err
	}

	if err := f.scroll(ctx, page, f.firstSettle); err != nil {
		return nil, err
	}
	if err := f.scroll(ctx, page, f.secondSettle); err != nil {
		return nil, err
	}

	html, err := page.HTML()
	if err != nil {
		return nil, err
	}
	f.manager.IncrementPageCount()

	return &pricewatch.Page{
		URL:       url,
		HTML:      html,
		FetchedAt: time.Now(),
	}, nil
}

// scroll moves the viewport one step and waits for lazy content to settle.
func (f *Fetcher) scroll(ctx context.Context, page *rod.Page, settle time.Duration) error {
	if _, err := page.Eval(`(step) => window.scrollBy(0, step)`, scrollStepPixels); err != nil {
		return err
	}
	if settle <= 0 {
		return nil
	}

	timer := time.NewTimer(settle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
