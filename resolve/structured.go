package resolve

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricewatch"
)

var _ Strategy = (*StructuredData)(nil)

// metaPriceProperties are the meta tag properties checked after the
// structured-data blocks. Both names appear in the wild and both must be
// checked.
var metaPriceProperties = []string{
	"product:price:amount",
	"og:price:amount",
}

// StructuredData extracts prices from schema.org JSON-LD blocks and price
// meta tags. Machine-readable metadata is the most reliable signal when
// present, so this strategy runs first.
type StructuredData struct{}

// NewStructuredData creates a new StructuredData strategy.
func NewStructuredData() *StructuredData {
	return &StructuredData{}
}

// Name returns the strategy's identifier.
func (s *StructuredData) Name() string {
	return "structured"
}

// Extract scans JSON-LD blocks in document order, then the price meta tags,
// and returns the first non-empty value. A block that fails to parse is
// skipped without ending the scan; malformed structured data is common.
func (s *StructuredData) Extract(doc *Document) *pricewatch.PriceCandidate {
	var value string

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		value = priceFromJSONLD(sel.Text())
		return value == ""
	})

	if value == "" {
		for _, prop := range metaPriceProperties {
			content, ok := doc.Find(`meta[property="` + prop + `"]`).First().Attr("content")
			if ok && strings.TrimSpace(content) != "" {
				value = strings.TrimSpace(content)
				break
			}
		}
	}

	if value == "" {
		return nil
	}
	return &pricewatch.PriceCandidate{Value: value, Source: s.Name()}
}

// priceFromJSONLD pulls a price out of one JSON-LD payload. Returns ""
// when the payload is malformed or carries no price.
func priceFromJSONLD(raw string) string {
	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return ""
	}

	// A top-level sequence wraps the product object; take its first element.
	if list, ok := data.([]any); ok {
		if len(list) == 0 {
			return ""
		}
		data = list[0]
	}

	obj, ok := data.(map[string]any)
	if !ok {
		return ""
	}

	if offers, ok := obj["offers"]; ok {
		// Offers may be a single object or a sequence of offer objects.
		if list, ok := offers.([]any); ok {
			if len(list) == 0 {
				offers = nil
			} else {
				offers = list[0]
			}
		}
		if offer, ok := offers.(map[string]any); ok {
			if v := priceField(offer["price"]); v != "" {
				return v
			}
			if v := priceField(offer["lowPrice"]); v != "" {
				return v
			}
		}
	}

	return priceField(obj["price"])
}

// priceField renders a JSON price value, which sites emit as either a
// string or a number.
func priceField(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	}
	return ""
}
