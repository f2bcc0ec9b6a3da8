package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pricewatch"
)

// Compile-time interface verification.
var _ pricewatch.HistoryService = (*HistoryService)(nil)

// HistoryService implements pricewatch.HistoryService using SQLite.
type HistoryService struct {
	db *DB
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(db *DB) *HistoryService {
	return &HistoryService{db: db}
}

// CreateRun stores a run and its records in one transaction. Blank IDs are
// assigned, a blank record RunID is pointed at the run, and a blank record
// CheckedAt inherits the run's completion time.
func (s *HistoryService) CreateRun(ctx context.Context, run *pricewatch.Run, records []*pricewatch.PriceRecord) error {
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return err
		}
	}

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if run.StartedAt.IsZero() {
		run.StartedAt = now
	}
	if run.CompletedAt.IsZero() {
		run.CompletedAt = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, completed_at, products, cells, resolved, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.Format(time.RFC3339), run.CompletedAt.Format(time.RFC3339),
		run.Products, run.Cells, run.Resolved, run.Failed)
	if err != nil {
		return err
	}

	for _, rec := range records {
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		rec.RunID = run.ID
		if rec.CheckedAt.IsZero() {
			rec.CheckedAt = run.CompletedAt
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO price_records (id, run_id, brand, product, pack_size, retailer, url, status, amount, page_hash, checked_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, rec.ID, rec.RunID, rec.Brand, rec.Product, rec.PackSize, rec.Retailer, rec.URL,
			string(rec.Price.Status), rec.Price.Amount, rec.PageHash, rec.CheckedAt.Format(time.RFC3339))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindRecords retrieves records matching the filter, newest first, along
// with the total match count before paging. Product matches as a substring
// so "oil" finds every tracked oil; retailer matches exactly.
func (s *HistoryService) FindRecords(ctx context.Context, filter pricewatch.RecordFilter) ([]*pricewatch.PriceRecord, int, error) {
	var where strings.Builder
	var args []any

	where.WriteString(" FROM price_records WHERE 1=1")
	if filter.Product != nil {
		where.WriteString(" AND product LIKE ?")
		args = append(args, "%"+*filter.Product+"%")
	}
	if filter.Retailer != nil {
		where.WriteString(" AND retailer = ?")
		args = append(args, *filter.Retailer)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*)"+where.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	var query strings.Builder
	query.WriteString("SELECT id, run_id, brand, product, pack_size, retailer, url, status, amount, page_hash, checked_at")
	query.WriteString(where.String())
	query.WriteString(" ORDER BY checked_at DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*pricewatch.PriceRecord
	for rows.Next() {
		var rec pricewatch.PriceRecord
		var status string
		var checkedAt string

		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Brand, &rec.Product, &rec.PackSize,
			&rec.Retailer, &rec.URL, &status, &rec.Price.Amount, &rec.PageHash, &checkedAt); err != nil {
			return nil, 0, err
		}

		rec.Price.Status = pricewatch.Status(status)
		rec.CheckedAt, err = parseRFC3339(checkedAt, "checked_at")
		if err != nil {
			return nil, 0, err
		}

		records = append(records, &rec)
	}

	return records, total, rows.Err()
}

// FindRuns retrieves the most recent runs, newest first.
func (s *HistoryService) FindRuns(ctx context.Context, limit int) ([]*pricewatch.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, started_at, completed_at, products, cells, resolved, failed FROM runs ORDER BY started_at DESC")
	appendPagination(&query, &args, limit, 0)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*pricewatch.Run
	for rows.Next() {
		var run pricewatch.Run
		var startedAt, completedAt string

		if err := rows.Scan(&run.ID, &startedAt, &completedAt,
			&run.Products, &run.Cells, &run.Resolved, &run.Failed); err != nil {
			return nil, err
		}

		if run.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
			return nil, err
		}
		if run.CompletedAt, err = parseRFC3339(completedAt, "completed_at"); err != nil {
			return nil, err
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// parseRFC3339 parses an RFC3339 formatted timestamp string.
// Returns an error if parsing fails with a descriptive message including the field name.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// appendPagination appends LIMIT and OFFSET clauses to a query builder if values are > 0.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}
