// Package fs provides file-based catalog sources, the CSV ledger sink, and
// the failure snapshot archive.
package fs

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"pricewatch"
)

// Ensure CatalogSource implements pricewatch.CatalogSource at compile time.
var _ pricewatch.CatalogSource = (*CatalogSource)(nil)

// CatalogSource loads a catalog from a CSV export. The first row is the
// header: three identity columns followed by one column per retailer.
type CatalogSource struct {
	path string
}

// NewCatalogSource creates a CatalogSource reading the CSV file at path.
func NewCatalogSource(path string) *CatalogSource {
	return &CatalogSource{path: path}
}

// Load reads and validates the catalog.
func (s *CatalogSource) Load(ctx context.Context) (*pricewatch.Catalog, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Row width is validated against the header, not the csv package's
	// first-row heuristic, so short rows can be padded with empty links.
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, pricewatch.Errorf(pricewatch.EINVALID, "parse catalog %s: %s", s.path, err)
	}
	if len(rows) == 0 {
		return nil, pricewatch.Errorf(pricewatch.EINVALID, "catalog %s is empty", s.path)
	}

	catalog, err := pricewatch.NewCatalog(rows[0], rows[1:])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return catalog, nil
}
