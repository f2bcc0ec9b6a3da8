package resolve

import (
	"strconv"

	"pricewatch"
)

// Normalize converts a raw price string into a canonical decimal amount.
// Every character that is not an ASCII digit or a decimal point is dropped,
// which removes currency symbols, thousands separators, whitespace and
// surrounding text. Inputs that keep no digits are rejected. Inputs that
// keep more than one decimal point are rejected rather than truncated:
// they are garbled concatenations, not prices.
//
// Normalize is idempotent over its own canonical rendering:
// Normalize(pricewatch.FormatAmount(x)) returns x again.
func Normalize(raw string) (float64, error) {
	if raw == "" {
		return 0, pricewatch.Errorf(pricewatch.EINVALID, "empty price string")
	}

	stripped := make([]byte, 0, len(raw))
	digits, dots := 0, 0
	for i := 0; i < len(raw); i++ {
		switch c := raw[i]; {
		case c >= '0' && c <= '9':
			digits++
			stripped = append(stripped, c)
		case c == '.':
			dots++
			stripped = append(stripped, c)
		}
	}

	if digits == 0 {
		return 0, pricewatch.Errorf(pricewatch.EINVALID, "no digits in price string %q", raw)
	}
	if dots > 1 {
		return 0, pricewatch.Errorf(pricewatch.EINVALID, "price string %q has %d decimal points", raw, dots)
	}

	amount, err := strconv.ParseFloat(string(stripped), 64)
	if err != nil {
		return 0, pricewatch.Errorf(pricewatch.EINVALID, "failed to parse price string %q: %v", raw, err)
	}
	return amount, nil
}
