package main

import (
	"fmt"

	"pricewatch"
	"pricewatch/track"
)

// Run executes the watch command.
func (c *WatchCmd) Run(deps *Dependencies) error {
	scheduler, err := track.NewScheduler(deps.Tracker, c.Schedule, deps.Logger)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	if err := scheduler.Start(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Watching %s on schedule %q. Press Ctrl-C to stop.\n", c.Catalog, scheduler.Schedule())

	<-deps.Ctx.Done()
	scheduler.Stop()
	return nil
}
