//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pricewatch"
	"pricewatch/rod"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Fetcher implements pricewatch.Fetcher.
var _ pricewatch.Fetcher = (*rod.Fetcher)(nil)

// fastOpts keeps the scroll settles out of test runtime.
func fastOpts() []rod.Option {
	return []rod.Option{rod.WithSettleDelays(50*time.Millisecond, 50*time.Millisecond)}
}

func TestFetcher_Fetch_ContextCancellation(t *testing.T) {
	t.Parallel()

	// Server that delays response
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Don't respond - let context timeout
		select {}
	}))
	defer srv.Close()

	fetcher, err := rod.NewFetcher(fastOpts()...)
	require.NoError(t, err)
	defer fetcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err = fetcher.Fetch(ctx, srv.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetcher_Fetch_ReturnsRenderedPrice(t *testing.T) {
	t.Parallel()

	// Serve a listing that only shows its price via JavaScript
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Gold Oil 1L</title></head>
<body>
<div id="price">Loading...</div>
<script>
document.getElementById('price').textContent = '₹499.00';
</script>
</body>
</html>`))
	}))
	defer srv.Close()

	fetcher, err := rod.NewFetcher(fastOpts()...)
	require.NoError(t, err)
	defer fetcher.Close()

	page, err := fetcher.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, srv.URL, page.URL)
	assert.Contains(t, page.HTML, "₹499.00")
	assert.NotContains(t, page.HTML, "Loading...")
}

func TestFetcher_Fetch_ScrollTriggersLazyContent(t *testing.T) {
	t.Parallel()

	// Serve a listing whose offer block only attaches after a scroll event,
	// the pattern that made scrolling part of the fetch contract.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Lazy Listing</title></head>
<body style="height:5000px">
<div id="offer"></div>
<script>
window.addEventListener('scroll', function () {
	document.getElementById('offer').textContent = 'lazy-price-block';
}, { once: true });
</script>
</body>
</html>`))
	}))
	defer srv.Close()

	fetcher, err := rod.NewFetcher(fastOpts()...)
	require.NoError(t, err)
	defer fetcher.Close()

	page, err := fetcher.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Contains(t, page.HTML, "lazy-price-block")
}

func TestFetcher_Fetch_TimeoutTriggersOnSlowPage(t *testing.T) {
	t.Parallel()

	// Server that delays longer than the fetch timeout
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>delayed</body></html>`))
	}))
	defer srv.Close()

	// Use a short timeout for testing (100ms, shorter than server delay)
	fetcher, err := rod.NewFetcher(rod.WithFetchTimeout(100 * time.Millisecond))
	require.NoError(t, err)
	defer fetcher.Close()

	_, err = fetcher.Fetch(context.Background(), srv.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetcher_Close_Idempotent(t *testing.T) {
	t.Parallel()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)

	// First close should succeed
	err = fetcher.Close()
	require.NoError(t, err)

	// Second close should also succeed (not panic or error)
	err = fetcher.Close()
	require.NoError(t, err)
}

func TestFetcher_Fetch_AfterClose_ReturnsError(t *testing.T) {
	t.Parallel()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)

	err = fetcher.Close()
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), "https://amazon.example/dp/B00TEST")

	require.Error(t, err)
	assert.Equal(t, pricewatch.EUNAVAILABLE, pricewatch.ErrorCode(err))
}
