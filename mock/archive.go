package mock

import (
	"context"

	"pricewatch"
)

var _ pricewatch.Converter = (*Converter)(nil)

// Converter is a mock implementation of pricewatch.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ pricewatch.Archiver = (*Archiver)(nil)

// Archiver is a mock implementation of pricewatch.Archiver.
type Archiver struct {
	ArchiveFn func(ctx context.Context, record *pricewatch.PriceRecord, page *pricewatch.Page) error
}

func (a *Archiver) Archive(ctx context.Context, record *pricewatch.PriceRecord, page *pricewatch.Page) error {
	return a.ArchiveFn(ctx, record, page)
}
