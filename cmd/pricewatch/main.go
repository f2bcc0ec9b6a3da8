package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"pricewatch"
	"pricewatch/fs"
	"pricewatch/htmltomarkdown"
	pwhttp "pricewatch/http"
	"pricewatch/resolve"
	"pricewatch/rod"
	pwslog "pricewatch/slog"
	"pricewatch/sqlite"
	"pricewatch/track"
	"pricewatch/xlsx"
	"pricewatch/yaml"
)

func main() {
	// A missing .env file is fine; real environment variables win.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by the history service.
	DB *sqlite.DB

	// History service for end-to-end testing, set once the database is open.
	HistoryService pricewatch.HistoryService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pricewatch"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'pricewatch --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	// Wire command-specific dependencies based on command
	if cmd == "run" || cmd == "watch" {
		catalogPath, flags := cli.Run.Catalog, cli.Run.RunFlags
		if cmd == "watch" {
			catalogPath, flags = cli.Watch.Catalog, cli.Watch.RunFlags
		}

		rules, err := loadRules(flags.Rules)
		if err != nil {
			return err
		}

		fetcher, err := newFetcher(flags)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for the browser engine")
			return fmt.Errorf("failed to start fetcher: %w", err)
		}
		defer fetcher.Close()

		if err := m.openDB(stderr); err != nil {
			return err
		}
		defer m.Close()

		var sinks []pricewatch.LedgerSink
		if flags.SheetURL != "" {
			sinks = append(sinks, pwhttp.NewSheetSink(flags.SheetURL, pwhttp.WithSecret(flags.SheetSecret)))
		}
		if flags.CSVOut != "" {
			sinks = append(sinks, fs.NewLedgerSink(flags.CSVOut))
		}
		if len(sinks) == 0 {
			logger.Warn("no ledger sink configured, prices go to history only")
		}

		var archiver pricewatch.Archiver
		if flags.ArchiveDir != "" {
			archiver = fs.NewArchiver(flags.ArchiveDir, htmltomarkdown.NewConverter())
		}

		deps.Tracker = &track.Tracker{
			Catalog:      newCatalogSource(catalogPath),
			Fetcher:      pwslog.NewLoggingFetcher(fetcher, logger),
			Resolver:     pwslog.NewLoggingResolver(resolve.NewPipeline(rules, resolve.WithLogger(logger)), logger),
			Limiter:      track.NewHostLimiter(flags.RPS),
			Sinks:        sinks,
			History:      m.HistoryService,
			Archiver:     archiver,
			Logger:       logger,
			Concurrency:  flags.Concurrency,
			FetchTimeout: flags.Timeout,
		}
	}

	if cmd == "history" {
		if err := m.openDB(stderr); err != nil {
			return err
		}
		defer m.Close()
		deps.History = m.HistoryService
	}

	if cmd == "rules" {
		rules, err := loadRules(cli.Rules.Rules)
		if err != nil {
			return err
		}
		deps.Rules = rules
	}

	return kongCtx.Run(deps)
}

func (m *Main) openDB(stderr io.Writer) error {
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set PRICEWATCH_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	m.HistoryService = sqlite.NewHistoryService(m.DB)
	return nil
}

// loadRules reads the rule file when one is given and falls back to the
// built-in rule set otherwise.
func loadRules(path string) ([]pricewatch.SiteRule, error) {
	if path == "" {
		return pricewatch.DefaultRules(), nil
	}
	return yaml.Load(path)
}

func newFetcher(flags RunFlags) (pricewatch.Fetcher, error) {
	if flags.Engine == "http" {
		return pwhttp.NewFetcher(), nil
	}
	return rod.NewFetcher()
}

func newCatalogSource(path string) pricewatch.CatalogSource {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return xlsx.NewCatalogSource(path)
	}
	return fs.NewCatalogSource(path)
}

func defaultDBPath() string {
	if path := os.Getenv("PRICEWATCH_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "pricewatch.db"
	}
	dir := filepath.Join(home, ".pricewatch")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "pricewatch.db")
}
