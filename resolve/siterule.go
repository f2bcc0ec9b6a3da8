package resolve

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricewatch"
)

var _ Strategy = (*SiteRules)(nil)

// SiteRules applies retailer-specific selectors, keyed by URL substring
// match. Within the matched rule, selectors are evaluated in declared order
// and the first one that locates a node wins, so legacy layout fallbacks
// belong after the current layout's selector.
type SiteRules struct {
	rules []pricewatch.SiteRule
}

// NewSiteRules creates a SiteRules strategy over the given rule set. The
// rules are shared read-only and never mutated.
func NewSiteRules(rules []pricewatch.SiteRule) *SiteRules {
	return &SiteRules{rules: rules}
}

// Name returns the strategy's identifier.
func (s *SiteRules) Name() string {
	return "rules"
}

// Extract selects the first rule matching the document URL and evaluates
// its selectors. No matching rule means no candidate: falling through to
// some default rule is the generic pattern strategy's job, not this one's.
func (s *SiteRules) Extract(doc *Document) *pricewatch.PriceCandidate {
	rule, ok := pricewatch.MatchRule(s.rules, doc.URL)
	if !ok {
		return nil
	}

	for _, sel := range rule.Selectors {
		if value := applySelector(doc, sel); value != "" {
			return &pricewatch.PriceCandidate{
				Value:  value,
				Source: "rule/" + rule.Name,
			}
		}
	}
	return nil
}

// applySelector returns the value of the first node in document order that
// satisfies the selector: its text content, or the named attribute when
// Attr is set. Contains filters nodes by their text content.
func applySelector(doc *Document, sel pricewatch.Selector) string {
	var value string
	doc.Find(sel.Query).EachWithBreak(func(_ int, node *goquery.Selection) bool {
		text := strings.TrimSpace(node.Text())
		if sel.Contains != "" && !strings.Contains(text, sel.Contains) {
			return true
		}

		v := text
		if sel.Attr != "" {
			attr, ok := node.Attr(sel.Attr)
			if !ok {
				return true
			}
			v = strings.TrimSpace(attr)
		}
		if v == "" {
			return true
		}

		value = v
		return false
	})
	return value
}
