package resolve

import "pricewatch"

// Strategy is one self-contained price extraction technique. Strategies are
// tried in a fixed priority order; each returns at most one candidate, and
// nil means "inconclusive, try the next strategy", never a failure.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string

	// Extract locates a raw price candidate in the document.
	Extract(doc *Document) *pricewatch.PriceCandidate
}
