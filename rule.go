package pricewatch

import "strings"

// Selector describes one way of locating a price node on a retailer page.
// Query is a CSS selector. Contains, when set, keeps only matched nodes
// whose text contains the given substring. Attr, when set, reads the named
// attribute instead of the node text (some sites keep the price in a form
// input's value).
type Selector struct {
	Query    string `json:"query"`
	Contains string `json:"contains,omitempty"`
	Attr     string `json:"attr,omitempty"`
}

// Validate returns an error if the selector contains invalid fields.
func (s *Selector) Validate() error {
	if s.Query == "" {
		return Errorf(EINVALID, "selector query required")
	}
	return nil
}

// SiteRule maps a retailer, identified by a URL substring, to an ordered
// list of selectors for its price element. Selectors are tried in declared
// order and the first match wins; by convention the newest site layout is
// declared first and legacy fallbacks after, so a partial site redesign is
// a configuration change rather than a code change.
//
// Rules are loaded once at startup, shared read-only across concurrent
// resolutions, and never mutated.
type SiteRule struct {
	Name      string     `json:"name"`
	Match     string     `json:"match"`
	Selectors []Selector `json:"selectors"`
}

// Validate returns an error if the rule contains invalid fields.
func (r *SiteRule) Validate() error {
	if r.Name == "" {
		return Errorf(EINVALID, "rule name required")
	}
	if r.Match == "" {
		return Errorf(EINVALID, "rule %q: match substring required", r.Name)
	}
	if len(r.Selectors) == 0 {
		return Errorf(EINVALID, "rule %q: at least one selector required", r.Name)
	}
	for i := range r.Selectors {
		if err := r.Selectors[i].Validate(); err != nil {
			return Errorf(EINVALID, "rule %q: selector %d: %s", r.Name, i, ErrorMessage(err))
		}
	}
	return nil
}

// MatchRule returns the first rule in declaration order whose Match is a
// case-insensitive substring of the URL. Declaration order is the only
// tiebreak: the scheme cannot express "most specific rule wins", so
// operators declare specific rules before general ones.
func MatchRule(rules []SiteRule, url string) (SiteRule, bool) {
	u := strings.ToLower(url)
	for _, r := range rules {
		if r.Match != "" && strings.Contains(u, strings.ToLower(r.Match)) {
			return r, true
		}
	}
	return SiteRule{}, false
}

// DefaultRules returns the built-in rule set for the retailers the tracker
// started with. Snapdeal often renders "Rs." instead of the rupee symbol
// and Meesho keeps the price in a plain h4, which is why both need rules at
// all; the amazon and flipkart entries carry one legacy selector each from
// earlier layouts.
func DefaultRules() []SiteRule {
	return []SiteRule{
		{
			Name:  "snapdeal",
			Match: "snapdeal",
			Selectors: []Selector{
				{Query: "span.payBlkBig"},
				{Query: ".pdp-final-price"},
			},
		},
		{
			Name:  "meesho",
			Match: "meesho",
			Selectors: []Selector{
				{Query: "h4", Contains: CurrencySymbol},
			},
		},
		{
			Name:  "amazon",
			Match: "amazon",
			Selectors: []Selector{
				{Query: "span.a-price span.a-offscreen"},
				{Query: "#priceblock_ourprice"},
				{Query: "input#attach-base-product-price", Attr: "value"},
			},
		},
		{
			Name:  "flipkart",
			Match: "flipkart",
			Selectors: []Selector{
				{Query: "div.Nx9bqj"},
				{Query: "div._30jeq3"},
			},
		},
	}
}
