package resolve

import (
	"regexp"

	"pricewatch"
)

var _ Strategy = (*Pattern)(nil)

// pricePattern matches the currency symbol followed by optional whitespace
// and a run of digits and commas with at most one decimal part.
var pricePattern = regexp.MustCompile(pricewatch.CurrencySymbol + `\s*[0-9][0-9,]*(?:\.[0-9]+)?`)

// Pattern scans the document's visible text for the first currency-amount
// match. First match means leftmost in document order: an unrelated on-page
// amount (a promotional banner, a bundle price) can win, which is a known
// precision limit of this catch-all. It must run last.
type Pattern struct{}

// NewPattern creates a new Pattern strategy.
func NewPattern() *Pattern {
	return &Pattern{}
}

// Name returns the strategy's identifier.
func (p *Pattern) Name() string {
	return "pattern"
}

// Extract returns the leftmost currency-amount match in the visible text.
func (p *Pattern) Extract(doc *Document) *pricewatch.PriceCandidate {
	match := pricePattern.FindString(doc.VisibleText())
	if match == "" {
		return nil
	}
	return &pricewatch.PriceCandidate{Value: match, Source: p.Name()}
}
