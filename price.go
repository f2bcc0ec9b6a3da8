package pricewatch

import "strconv"

// CurrencySymbol prefixes every resolved amount rendered for display.
// All tracked retailers list prices in Indian rupees.
const CurrencySymbol = "₹"

// Status classifies the outcome of resolving one (product, retailer)
// listing. The set is closed; callers must handle every value.
type Status string

// Status values. StatusBlocked requires a bot-interstitial signal in the
// page title; a page with no price and no such signal is StatusOutOfStock.
// The two never collapse into each other.
const (
	StatusOK           Status = "ok"
	StatusNotAvailable Status = "not_available"
	StatusOutOfStock   Status = "out_of_stock"
	StatusBlocked      Status = "blocked"
	StatusParseError   Status = "parse_error"
	StatusNetworkError Status = "network_error"
)

// ResolvedPrice is the sole output of price resolution. Amount is
// meaningful only when Status is StatusOK.
type ResolvedPrice struct {
	Status Status  `json:"status"`
	Amount float64 `json:"amount,omitempty"`
}

// Resolved returns a successful price with the given amount.
func Resolved(amount float64) ResolvedPrice {
	return ResolvedPrice{Status: StatusOK, Amount: amount}
}

// Failed returns a price in the given failure state.
func Failed(status Status) ResolvedPrice {
	return ResolvedPrice{Status: status}
}

// Ok reports whether the price carries a usable amount.
func (p ResolvedPrice) Ok() bool {
	return p.Status == StatusOK
}

// Display renders the ledger cell text for the price.
func (p ResolvedPrice) Display() string {
	switch p.Status {
	case StatusOK:
		return CurrencySymbol + FormatAmount(p.Amount)
	case StatusNotAvailable:
		return "Not Available"
	case StatusOutOfStock:
		return "Out of Stock"
	case StatusBlocked:
		return "Blocked by Website"
	case StatusParseError:
		return "Parse Error"
	case StatusNetworkError:
		return "Network Error"
	}
	return string(p.Status)
}

// FormatAmount renders an amount with exactly two decimal places, the
// canonical rendering of a normalized price.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// PriceCandidate is a raw price string produced by one extraction strategy
// before normalization. Source records provenance (e.g. "structured",
// "rule/snapdeal", "pattern") so logs can say where a value came from.
type PriceCandidate struct {
	Value  string
	Source string
}

// Resolver resolves the price on a fetched listing page. Resolution is a
// pure, synchronous computation over already-fetched content; failures are
// values, never errors. Implementations must be safe for concurrent use.
type Resolver interface {
	Resolve(page *Page) ResolvedPrice
}
