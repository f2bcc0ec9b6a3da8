package pricewatch

import (
	"context"
	"time"
)

// Run summarizes one complete pipeline execution.
type Run struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`
	Products    int       `json:"products"`
	Cells       int       `json:"cells"`
	Resolved    int       `json:"resolved"`
	Failed      int       `json:"failed"`
}

// PriceRecord is one (product, retailer) observation within a run.
// PageHash is a content hash of the fetched HTML, empty when nothing was
// fetched.
type PriceRecord struct {
	ID       string        `json:"id"`
	RunID    string        `json:"runId"`
	Brand    string        `json:"brand"`
	Product  string        `json:"product"`
	PackSize string        `json:"packSize"`
	Retailer string        `json:"retailer"`
	URL      string        `json:"url"`
	Price    ResolvedPrice `json:"price"`
	PageHash string        `json:"pageHash,omitempty"`

	CheckedAt time.Time `json:"checkedAt"`
}

// Validate returns an error if the record contains invalid fields.
func (r *PriceRecord) Validate() error {
	if r.Product == "" {
		return Errorf(EINVALID, "record product required")
	}
	if r.Retailer == "" {
		return Errorf(EINVALID, "record retailer required")
	}
	return nil
}

// RecordFilter represents a filter for FindRecords.
type RecordFilter struct {
	Product  *string `json:"product"`
	Retailer *string `json:"retailer"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// HistoryService records runs and their observations and answers queries
// over past observations.
type HistoryService interface {
	// CreateRun stores a completed run together with its records in one
	// transaction. Blank IDs are assigned by the service.
	CreateRun(ctx context.Context, run *Run, records []*PriceRecord) error

	// FindRecords retrieves records matching the filter, newest first,
	// along with the total match count before paging.
	FindRecords(ctx context.Context, filter RecordFilter) ([]*PriceRecord, int, error)

	// FindRuns retrieves the most recent runs, newest first.
	FindRuns(ctx context.Context, limit int) ([]*Run, error)
}
