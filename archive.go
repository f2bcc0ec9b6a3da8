package pricewatch

import "context"

// Converter converts HTML content to markdown format.
type Converter interface {
	// Convert converts HTML content to markdown.
	// Returns an error if the conversion fails.
	Convert(html string) (markdown string, err error)
}

// Archiver stores snapshots of pages the pipeline could not extract a
// price from, for later review. Implementations are best-effort; the
// pipeline treats archiving failures as non-fatal.
type Archiver interface {
	// Archive stores a snapshot of the fetched page for the given record.
	// A nil page or a page with no HTML is silently ignored.
	Archive(ctx context.Context, record *PriceRecord, page *Page) error
}
