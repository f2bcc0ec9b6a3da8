package mock

import (
	"context"

	"pricewatch"
)

var _ pricewatch.CatalogSource = (*CatalogSource)(nil)

// CatalogSource is a mock implementation of pricewatch.CatalogSource.
type CatalogSource struct {
	LoadFn func(ctx context.Context) (*pricewatch.Catalog, error)
}

func (s *CatalogSource) Load(ctx context.Context) (*pricewatch.Catalog, error) {
	return s.LoadFn(ctx)
}
