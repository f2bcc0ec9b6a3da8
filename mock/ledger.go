package mock

import (
	"context"

	"pricewatch"
)

var _ pricewatch.LedgerSink = (*LedgerSink)(nil)

// LedgerSink is a mock implementation of pricewatch.LedgerSink.
type LedgerSink struct {
	PublishFn func(ctx context.Context, grid *pricewatch.Grid) error
}

func (s *LedgerSink) Publish(ctx context.Context, grid *pricewatch.Grid) error {
	return s.PublishFn(ctx, grid)
}
