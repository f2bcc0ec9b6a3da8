package mock

import "pricewatch"

var _ pricewatch.Resolver = (*Resolver)(nil)

// Resolver is a mock implementation of pricewatch.Resolver.
type Resolver struct {
	ResolveFn func(page *pricewatch.Page) pricewatch.ResolvedPrice
}

func (r *Resolver) Resolve(page *pricewatch.Page) pricewatch.ResolvedPrice {
	return r.ResolveFn(page)
}
