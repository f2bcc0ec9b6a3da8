package fs

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"pricewatch"
)

// Ensure LedgerSink implements pricewatch.LedgerSink at compile time.
var _ pricewatch.LedgerSink = (*LedgerSink)(nil)

// LedgerSink publishes grids to a CSV file with atomic replace semantics.
// The grid is written to a temp file in the target directory and renamed
// over the destination, so a concurrent reader never sees a half-written
// grid.
type LedgerSink struct {
	path string
}

// NewLedgerSink creates a LedgerSink writing to path.
func NewLedgerSink(path string) *LedgerSink {
	return &LedgerSink{path: path}
}

// Publish replaces the CSV file contents with the grid.
func (s *LedgerSink) Publish(ctx context.Context, grid *pricewatch.Grid) error {
	if err := grid.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	records := make([][]string, 0, len(grid.Rows)+1)
	records = append(records, grid.Header)
	records = append(records, grid.Rows...)

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), s.path)
}
