package pricewatch

import "context"

// LastCheckedHeader is the header of the timestamp column appended after
// the retailer columns.
const LastCheckedHeader = "Last Checked"

// TimestampLayout renders the shared run timestamp written into the
// Last Checked column, e.g. "07 Mar 2026 04:15 PM".
const TimestampLayout = "02 Jan 2006 03:04 PM"

// Grid is one complete ledger snapshot: a header row plus one row per
// product. Sinks replace their destination with it wholesale; there is no
// incremental update.
type Grid struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Validate returns an error if the grid is not rectangular.
func (g *Grid) Validate() error {
	if len(g.Header) == 0 {
		return Errorf(EINVALID, "grid header required")
	}
	for i, row := range g.Rows {
		if len(row) != len(g.Header) {
			return Errorf(EINVALID, "grid row %d has %d cells, header has %d", i, len(row), len(g.Header))
		}
	}
	return nil
}

// RGB is a color with components in the 0..1 range, matching the sheet
// API's color encoding.
type RGB struct {
	R float64 `json:"red"`
	G float64 `json:"green"`
	B float64 `json:"blue"`
}

// FormatRegion is a static visual style applied to an A1-notation range by
// sinks that support formatting. Formatting is cosmetic and not part of the
// pipeline's contract.
type FormatRegion struct {
	Range      string `json:"range"`
	Background *RGB   `json:"background,omitempty"`
	TextColor  *RGB   `json:"textColor,omitempty"`
	Bold       bool   `json:"bold,omitempty"`
}

// DefaultFormatRegions returns the two regions the sheet sink applies after
// every publish: header row styling and leading-column shading.
func DefaultFormatRegions() []FormatRegion {
	return []FormatRegion{
		{
			Range:      "A1:Z1",
			Background: &RGB{R: 0.0, G: 0.2, B: 0.6},
			TextColor:  &RGB{R: 1.0, G: 1.0, B: 1.0},
			Bold:       true,
		},
		{
			Range:      "A2:C100",
			Background: &RGB{R: 0.95, G: 0.95, B: 0.95},
		},
	}
}

// LedgerSink publishes a grid, replacing prior contents wholesale.
type LedgerSink interface {
	Publish(ctx context.Context, grid *Grid) error
}
