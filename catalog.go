package pricewatch

import (
	"context"
	"strings"
)

// NumPrefixColumns is the fixed width of the catalog's identity prefix:
// brand, product name, pack size. Every column after the prefix is a
// retailer link column.
const NumPrefixColumns = 3

// Product is one catalog row. Links holds one listing URL per retailer,
// aligned index-for-index with Catalog.Retailers; an empty string means the
// product has no listing at that retailer.
type Product struct {
	Brand    string   `json:"brand"`
	Name     string   `json:"name"`
	PackSize string   `json:"packSize"`
	Links    []string `json:"links"`
}

// Catalog is the full set of tracked products and the retailers they are
// tracked at. PrefixHeaders carries the catalog's own header text for the
// three identity columns so the published grid preserves it.
type Catalog struct {
	PrefixHeaders []string   `json:"prefixHeaders"`
	Retailers     []string   `json:"retailers"`
	Products      []*Product `json:"products"`
}

// NewCatalog assembles a catalog from a header row and data rows, the
// tabular shape shared by CSV exports and spreadsheets. The header must
// carry the identity prefix plus at least one retailer column. Cells are
// trimmed, blank rows are skipped, and rows shorter than the header are
// padded with empty links; rows wider than the header are rejected.
func NewCatalog(header []string, rows [][]string) (*Catalog, error) {
	if len(header) < NumPrefixColumns+1 {
		return nil, Errorf(EINVALID, "catalog header requires %d prefix columns and at least one retailer, got %d columns", NumPrefixColumns, len(header))
	}

	catalog := &Catalog{
		PrefixHeaders: trimRow(header[:NumPrefixColumns]),
		Retailers:     trimRow(header[NumPrefixColumns:]),
	}

	for i, row := range rows {
		row = trimRow(row)
		if isBlankRow(row) {
			continue
		}
		if len(row) > len(header) {
			return nil, Errorf(EINVALID, "catalog row %d has %d columns, header has %d", i+1, len(row), len(header))
		}

		padded := make([]string, len(header))
		copy(padded, row)

		catalog.Products = append(catalog.Products, &Product{
			Brand:    padded[0],
			Name:     padded[1],
			PackSize: padded[2],
			Links:    padded[NumPrefixColumns:],
		})
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

func trimRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.TrimSpace(cell)
	}
	return out
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// Validate returns an error if the catalog shape is inconsistent.
func (c *Catalog) Validate() error {
	if len(c.PrefixHeaders) != NumPrefixColumns {
		return Errorf(EINVALID, "catalog requires %d prefix columns, got %d", NumPrefixColumns, len(c.PrefixHeaders))
	}
	if len(c.Retailers) == 0 {
		return Errorf(EINVALID, "catalog requires at least one retailer column")
	}
	for i, p := range c.Products {
		if p.Name == "" {
			return Errorf(EINVALID, "product %d: name required", i)
		}
		if len(p.Links) != len(c.Retailers) {
			return Errorf(EINVALID, "product %q: %d links for %d retailers", p.Name, len(p.Links), len(c.Retailers))
		}
	}
	return nil
}

// CatalogSource supplies the product catalog.
// Implementations read spreadsheets or CSV exports; rows keep their source
// order.
type CatalogSource interface {
	Load(ctx context.Context) (*Catalog, error)
}
