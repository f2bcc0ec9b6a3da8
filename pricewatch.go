// Package pricewatch tracks retail prices for a product catalog across
// e-commerce sites. It fetches listing pages, resolves a price per listing
// through an ordered chain of extraction strategies, and publishes the
// resulting grid wholesale to ledger sinks such as a spreadsheet webhook or
// a CSV file, keeping a local history of every observation.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, rod/, yaml/).
package pricewatch
