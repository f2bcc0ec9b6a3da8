package main

import (
	"fmt"
	"time"

	"pricewatch"
	"pricewatch/track"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	progress := func(event track.ProgressEvent) {
		switch event.Type {
		case track.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Checking %d listings\n", event.Total)
		case track.ProgressCompleted:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s @ %s: %s (%s)\n",
				event.Completed, event.Total, event.Product, event.Retailer,
				event.Price.Display(), event.Elapsed.Round(time.Millisecond))
		case track.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s @ %s: %v (%s)\n",
				event.Product, event.Retailer, event.Err, track.TruncateURL(event.URL, 48))
		case track.ProgressFinished:
			// Summary printed after the run completes
		}
	}

	result, err := deps.Tracker.Run(deps.Ctx, progress)
	if result == nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	run := result.Run
	fmt.Fprintf(deps.Stdout, "Checked %d products (%d listings): %d resolved, %d failed in %s\n",
		run.Products, run.Cells, run.Resolved, run.Failed,
		run.CompletedAt.Sub(run.StartedAt).Round(time.Second))

	if err != nil {
		fmt.Fprintf(deps.Stderr, "error publishing: %v\n", err)
		return err
	}
	return nil
}
