package main

import (
	"fmt"
	"time"

	"pricewatch"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	if c.Product == "" {
		return c.printRuns(deps)
	}
	return c.printRecords(deps)
}

func (c *HistoryCmd) printRecords(deps *Dependencies) error {
	filter := pricewatch.RecordFilter{Product: &c.Product, Limit: c.Limit}
	if c.Retailer != "" {
		filter.Retailer = &c.Retailer
	}

	records, total, err := deps.History.FindRecords(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}
	if total == 0 {
		fmt.Fprintf(deps.Stdout, "No observations match %q.\n", c.Product)
		return nil
	}

	fmt.Fprintf(deps.Stdout, "%d observations (showing %d):\n", total, len(records))
	for _, record := range records {
		fmt.Fprintf(deps.Stdout, "  %s  %-12s %-14s %s %s %s\n",
			record.CheckedAt.Format(pricewatch.TimestampLayout),
			record.Retailer, record.Price.Display(),
			record.Brand, record.Product, record.PackSize)
	}
	return nil
}

func (c *HistoryCmd) printRuns(deps *Dependencies) error {
	runs, err := deps.History.FindRuns(deps.Ctx, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded yet.")
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(deps.Stdout, "%s  %d products, %d listings: %d resolved, %d failed (%s)\n",
			run.StartedAt.Format(pricewatch.TimestampLayout),
			run.Products, run.Cells, run.Resolved, run.Failed,
			run.CompletedAt.Sub(run.StartedAt).Round(time.Second))
	}
	return nil
}
