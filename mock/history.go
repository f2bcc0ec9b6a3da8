package mock

import (
	"context"

	"pricewatch"
)

var _ pricewatch.HistoryService = (*HistoryService)(nil)

// HistoryService is a mock implementation of pricewatch.HistoryService.
type HistoryService struct {
	CreateRunFn   func(ctx context.Context, run *pricewatch.Run, records []*pricewatch.PriceRecord) error
	FindRecordsFn func(ctx context.Context, filter pricewatch.RecordFilter) ([]*pricewatch.PriceRecord, int, error)
	FindRunsFn    func(ctx context.Context, limit int) ([]*pricewatch.Run, error)
}

func (s *HistoryService) CreateRun(ctx context.Context, run *pricewatch.Run, records []*pricewatch.PriceRecord) error {
	return s.CreateRunFn(ctx, run, records)
}

func (s *HistoryService) FindRecords(ctx context.Context, filter pricewatch.RecordFilter) ([]*pricewatch.PriceRecord, int, error) {
	return s.FindRecordsFn(ctx, filter)
}

func (s *HistoryService) FindRuns(ctx context.Context, limit int) ([]*pricewatch.Run, error) {
	return s.FindRunsFn(ctx, limit)
}
