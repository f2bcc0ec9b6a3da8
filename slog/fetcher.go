// Package slog provides logging decorators for pipeline collaborators.
package slog

import (
	"context"
	"log/slog"
	"time"

	"pricewatch"
)

// Ensure LoggingFetcher implements pricewatch.Fetcher.
var _ pricewatch.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging of every page fetch.
type LoggingFetcher struct {
	next   pricewatch.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next pricewatch.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (page *pricewatch.Page, err error) {
	defer func(begin time.Time) {
		bytes := 0
		if page != nil {
			bytes = len(page.HTML)
		}
		f.logger.Debug("fetch",
			"url", url,
			"bytes", bytes,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
