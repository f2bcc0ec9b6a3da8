package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"pricewatch"
	"pricewatch/track"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Tracker *track.Tracker
	History pricewatch.HistoryService
	Rules   []pricewatch.SiteRule
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Run     RunCmd     `cmd:"" help:"Check catalog prices once"`
	Watch   WatchCmd   `cmd:"" help:"Check catalog prices on a cron schedule"`
	Rules   RulesCmd   `cmd:"" help:"Show the active site rules"`
	History HistoryCmd `cmd:"" help:"Show recorded runs and observations"`
}

// RunFlags are the tracking flags shared by the run and watch commands.
type RunFlags struct {
	Rules       string        `name:"rules" env:"PRICEWATCH_RULES" help:"Site rule file (YAML), falls back to the built-in rules"`
	Engine      string        `enum:"browser,http" default:"browser" help:"Fetch engine: browser or http"`
	SheetURL    string        `name:"sheet-url" env:"PRICEWATCH_SHEET_URL" help:"Spreadsheet webhook URL to publish the ledger to"`
	SheetSecret string        `name:"sheet-secret" env:"PRICEWATCH_SHEET_SECRET" help:"HMAC secret for signing ledger publishes"`
	CSVOut      string        `name:"csv-out" help:"Write the ledger to a CSV file"`
	ArchiveDir  string        `name:"archive-dir" help:"Save failed listing pages as markdown under this directory"`
	Concurrency int           `short:"c" default:"4" help:"Concurrent fetch limit"`
	RPS         float64       `name:"rps" default:"1" help:"Requests per second allowed per host"`
	Timeout     time.Duration `default:"90s" help:"Fetch budget per listing, including retries"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	Catalog  string `arg:"" help:"Catalog file (.csv or .xlsx)"`
	RunFlags `embed:""`
}

// WatchCmd is the "watch" subcommand.
type WatchCmd struct {
	Catalog  string `arg:"" help:"Catalog file (.csv or .xlsx)"`
	RunFlags `embed:""`
	Schedule string `default:"0 */12 * * *" help:"Cron schedule (five fields)"`
}

// RulesCmd is the "rules" subcommand.
type RulesCmd struct {
	Rules string `name:"rules" env:"PRICEWATCH_RULES" help:"Site rule file (YAML), falls back to the built-in rules"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Product  string `arg:"" optional:"" help:"Product name substring; omit to list recent runs"`
	Retailer string `help:"Only show observations from this retailer"`
	Limit    int    `default:"20" help:"Maximum rows to show"`
}
