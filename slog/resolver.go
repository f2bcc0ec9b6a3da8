package slog

import (
	"log/slog"
	"time"

	"pricewatch"
)

// Ensure LoggingResolver implements pricewatch.Resolver.
var _ pricewatch.Resolver = (*LoggingResolver)(nil)

// LoggingResolver wraps a Resolver with debug logging of every resolution.
type LoggingResolver struct {
	next   pricewatch.Resolver
	logger *slog.Logger
}

// NewLoggingResolver creates a new LoggingResolver.
func NewLoggingResolver(next pricewatch.Resolver, logger *slog.Logger) *LoggingResolver {
	return &LoggingResolver{next: next, logger: logger}
}

// Resolve delegates to the wrapped resolver and logs the outcome.
func (r *LoggingResolver) Resolve(page *pricewatch.Page) (price pricewatch.ResolvedPrice) {
	defer func(begin time.Time) {
		url := ""
		if page != nil {
			url = page.URL
		}
		r.logger.Debug("resolve",
			"url", url,
			"status", string(price.Status),
			"price", price.Display(),
			"duration", time.Since(begin),
		)
	}(time.Now())
	return r.next.Resolve(page)
}
