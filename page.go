package pricewatch

import (
	"strings"
	"time"
)

// Page is a fetched listing page. The HTML is the rendered markup as the
// fetcher saw it; resolution parses it and derives the title itself.
type Page struct {
	URL       string
	HTML      string
	FetchedAt time.Time
}

// Validate returns an error if the page contains invalid fields.
func (p *Page) Validate() error {
	if p.URL == "" {
		return Errorf(EINVALID, "page URL required")
	}
	return nil
}

// Fetchable reports whether a catalog link can be fetched at all. Links
// that are empty or lack an http scheme prefix resolve to
// StatusNotAvailable without a fetch being attempted.
func Fetchable(link string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(link)), "http")
}
