package track

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"pricewatch"
)

// DefaultSchedule runs the tracker every 12 hours.
const DefaultSchedule = "0 */12 * * *"

// Scheduler runs a Tracker on a cron schedule. The first run starts
// immediately at Start; subsequent runs follow the schedule. A run that
// would overlap one still in progress is skipped, not queued.
type Scheduler struct {
	tracker *Tracker
	logger  *slog.Logger
	spec    string
	cron    *cron.Cron
	running atomic.Bool
}

// NewScheduler creates a Scheduler running tracker per the standard 5-field
// cron spec. An empty spec uses DefaultSchedule.
func NewScheduler(tracker *Tracker, spec string, logger *slog.Logger) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, pricewatch.Errorf(pricewatch.EINVALID, "invalid schedule %q: %s", spec, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		tracker: tracker,
		logger:  logger,
		spec:    spec,
		cron:    cron.New(),
	}, nil
}

// Schedule returns the cron spec the scheduler runs on.
func (s *Scheduler) Schedule() string {
	return s.spec
}

// Start begins scheduled runs and returns immediately. The context is
// carried into every run; cancel it to abort a run in progress.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.runOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule runs: %w", err)
	}

	go s.runOnce(ctx)
	s.cron.Start()

	s.logger.Info("scheduler started", "schedule", s.spec)
	return nil
}

// Stop stops scheduling new runs and waits for a scheduled run in progress
// to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("previous run still in progress, skipping")
		return
	}
	defer s.running.Store(false)

	begin := time.Now()
	result, err := s.tracker.Run(ctx, nil)
	if err != nil {
		if result == nil {
			s.logger.Error("run failed", "error", err)
			return
		}
		s.logger.Error("run completed with errors", "error", err)
	}

	s.logger.Info("run complete",
		"products", result.Run.Products,
		"cells", result.Run.Cells,
		"resolved", result.Run.Resolved,
		"failed", result.Run.Failed,
		"duration", time.Since(begin),
	)
}
