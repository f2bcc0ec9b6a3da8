// Package track orchestrates price tracking runs. It coordinates catalog
// loading, fetching, price resolution, ledger publication, and history
// recording.
package track

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"pricewatch"
)

// DefaultConcurrency bounds parallel fetches when Tracker.Concurrency is
// unset. Kept low; retailer sites throttle aggressive clients.
const DefaultConcurrency = 4

// Tracker runs the price tracking pipeline over a catalog.
type Tracker struct {
	Catalog  pricewatch.CatalogSource
	Fetcher  pricewatch.Fetcher
	Resolver pricewatch.Resolver

	// Optional collaborators. A nil Limiter fetches unthrottled; a nil
	// History or Archiver skips recording or snapshots.
	Limiter  pricewatch.HostLimiter
	Sinks    []pricewatch.LedgerSink
	History  pricewatch.HistoryService
	Archiver pricewatch.Archiver

	Logger *slog.Logger

	Concurrency int
	RetryDelays []time.Duration

	// FetchTimeout bounds the whole retried fetch of one cell. Zero leaves
	// only the fetcher's own timeout.
	FetchTimeout time.Duration
}

// Result holds the outcome of a tracking run.
type Result struct {
	Run  *pricewatch.Run
	Grid *pricewatch.Grid
}

// ProgressEvent reports progress during a run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	Brand     string
	Product   string
	Retailer  string
	URL       string
	Price     pricewatch.ResolvedPrice
	Elapsed   time.Duration
	Err       error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting run progress. It is invoked from
// the goroutine that called Run.
type ProgressFunc func(event ProgressEvent)

// cellRef identifies one linked (product, retailer) cell to check.
type cellRef struct {
	row      int
	col      int
	product  *pricewatch.Product
	retailer string
	url      string
}

// cellResult holds the outcome of checking a single cell.
type cellResult struct {
	row      int
	col      int
	url      string
	price    pricewatch.ResolvedPrice
	pageHash string
	elapsed  time.Duration
	err      error
}

// Run executes one tracking pass: load the catalog, check every linked
// (product, retailer) cell, assemble the ledger grid, publish it to every
// sink, and record the run. Cells without a fetchable link resolve to
// not_available without touching the Fetcher. Fetch and resolve failures
// never fail the run; they land in the grid as their display text.
//
// Sink and history errors are collected so one sink cannot starve another,
// and returned joined alongside the completed Result. A canceled context
// aborts before anything is published.
func (t *Tracker) Run(ctx context.Context, progress ProgressFunc) (*Result, error) {
	catalog, err := t.Catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	startedAt := time.Now()

	// Every row keeps a full slice of cells so output order is
	// deterministic regardless of completion order.
	results := make([][]cellResult, len(catalog.Products))
	var work []cellRef
	for i, p := range catalog.Products {
		results[i] = make([]cellResult, len(catalog.Retailers))
		for j, link := range p.Links {
			if !pricewatch.Fetchable(link) {
				results[i][j] = cellResult{
					row:   i,
					col:   j,
					url:   link,
					price: pricewatch.Failed(pricewatch.StatusNotAvailable),
				}
				continue
			}
			work = append(work, cellRef{
				row:      i,
				col:      j,
				product:  p,
				retailer: catalog.Retailers[j],
				url:      link,
			})
		}
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: len(work)})
	}

	concurrency := t.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	resultCh := make(chan cellResult, len(work))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for _, ref := range work {
			g.Go(func() error {
				resultCh <- t.checkCell(gctx, ref, startedAt)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	completed := 0
	resolved := 0
	for res := range resultCh {
		completed++
		results[res.row][res.col] = res
		if res.price.Ok() {
			resolved++
		}

		if progress != nil {
			typ := ProgressCompleted
			if res.err != nil {
				typ = ProgressFailed
			}
			p := catalog.Products[res.row]
			progress(ProgressEvent{
				Type:      typ,
				Completed: completed,
				Total:     len(work),
				Brand:     p.Brand,
				Product:   p.Name,
				Retailer:  catalog.Retailers[res.col],
				URL:       res.url,
				Price:     res.price,
				Elapsed:   res.elapsed,
				Err:       res.err,
			})
		}
	}

	// A canceled run must not replace the ledger with failure cells.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	grid, err := buildGrid(catalog, results, startedAt)
	if err != nil {
		return nil, err
	}

	run := &pricewatch.Run{
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
		Products:    len(catalog.Products),
		Cells:       len(catalog.Products) * len(catalog.Retailers),
		Resolved:    resolved,
		Failed:      len(work) - resolved,
	}

	var errs []error
	for _, sink := range t.Sinks {
		if err := sink.Publish(ctx, grid); err != nil {
			t.logger().Error("publish ledger", "sink", fmt.Sprintf("%T", sink), "error", err)
			errs = append(errs, fmt.Errorf("publish %T: %w", sink, err))
		}
	}

	if t.History != nil {
		records := buildRecords(catalog, results, startedAt)
		if err := t.History.CreateRun(ctx, run, records); err != nil {
			t.logger().Error("record run", "error", err)
			errs = append(errs, fmt.Errorf("record run: %w", err))
		}
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: len(work), Total: len(work)})
	}

	return &Result{Run: run, Grid: grid}, errors.Join(errs...)
}

// checkCell rate-limits, fetches with retries, and resolves one cell. A
// fetch failure resolves to network_error; a fetched page that yields no
// price is archived when an Archiver is configured.
func (t *Tracker) checkCell(ctx context.Context, ref cellRef, checkedAt time.Time) (result cellResult) {
	result = cellResult{row: ref.row, col: ref.col, url: ref.url}
	begin := time.Now()
	defer func() {
		result.elapsed = time.Since(begin)
	}()

	if t.Limiter != nil {
		if err := t.Limiter.Wait(ctx, ref.url); err != nil {
			result.price = pricewatch.Failed(pricewatch.StatusNetworkError)
			result.err = err
			return result
		}
	}

	page, err := t.fetch(ctx, ref.url)
	if err != nil {
		result.price = pricewatch.Failed(pricewatch.StatusNetworkError)
		result.err = err
		return result
	}

	result.pageHash = pageHash(page.HTML)
	result.price = t.Resolver.Resolve(page)

	if !result.price.Ok() && t.Archiver != nil {
		rec := &pricewatch.PriceRecord{
			Brand:     ref.product.Brand,
			Product:   ref.product.Name,
			PackSize:  ref.product.PackSize,
			Retailer:  ref.retailer,
			URL:       ref.url,
			Price:     result.price,
			PageHash:  result.pageHash,
			CheckedAt: checkedAt,
		}
		if err := t.Archiver.Archive(ctx, rec, page); err != nil {
			t.logger().Error("archive snapshot",
				"product", ref.product.Name,
				"retailer", ref.retailer,
				"error", err,
			)
		}
	}

	return result
}

// fetch retrieves a page with retries, bounded by FetchTimeout when set.
func (t *Tracker) fetch(ctx context.Context, url string) (*pricewatch.Page, error) {
	if t.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.FetchTimeout)
		defer cancel()
	}

	delays := t.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	logFn := func(format string, args ...any) {
		t.logger().Debug(fmt.Sprintf(format, args...))
	}
	return FetchWithRetryDelays(ctx, url, t.Fetcher.Fetch, logFn, delays)
}

func (t *Tracker) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}

// buildGrid assembles the ledger snapshot: prefix cells, one display cell
// per retailer, and the shared run timestamp.
func buildGrid(catalog *pricewatch.Catalog, results [][]cellResult, startedAt time.Time) (*pricewatch.Grid, error) {
	header := make([]string, 0, len(catalog.PrefixHeaders)+len(catalog.Retailers)+1)
	header = append(header, catalog.PrefixHeaders...)
	header = append(header, catalog.Retailers...)
	header = append(header, pricewatch.LastCheckedHeader)

	stamp := startedAt.Format(pricewatch.TimestampLayout)

	grid := &pricewatch.Grid{Header: header, Rows: make([][]string, 0, len(catalog.Products))}
	for i, p := range catalog.Products {
		row := make([]string, 0, len(header))
		row = append(row, p.Brand, p.Name, p.PackSize)
		for j := range catalog.Retailers {
			row = append(row, results[i][j].price.Display())
		}
		row = append(row, stamp)
		grid.Rows = append(grid.Rows, row)
	}

	if err := grid.Validate(); err != nil {
		return nil, err
	}
	return grid, nil
}

// buildRecords flattens the cell matrix into history records, one per cell,
// all stamped with the run's shared timestamp.
func buildRecords(catalog *pricewatch.Catalog, results [][]cellResult, checkedAt time.Time) []*pricewatch.PriceRecord {
	records := make([]*pricewatch.PriceRecord, 0, len(catalog.Products)*len(catalog.Retailers))
	for i, p := range catalog.Products {
		for j, retailer := range catalog.Retailers {
			res := results[i][j]
			records = append(records, &pricewatch.PriceRecord{
				Brand:     p.Brand,
				Product:   p.Name,
				PackSize:  p.PackSize,
				Retailer:  retailer,
				URL:       res.url,
				Price:     res.price,
				PageHash:  res.pageHash,
				CheckedAt: checkedAt,
			})
		}
	}
	return records
}

// pageHash fingerprints fetched HTML so history can tell whether a listing
// changed between runs.
func pageHash(html string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(html))
}
