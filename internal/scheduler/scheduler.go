package scheduler

import (
	"context"
	"crypto/rand"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/unarx/internal/log"
	"github.com/slok/unarx/internal/model"
	"github.com/slok/unarx/internal/progress"
)

// ArchiveRunner runs all the trials of a single archive.
type ArchiveRunner interface {
	Run(ctx context.Context, target model.ArchiveTarget, candidates []string) model.ArchiveResult
}

//go:generate mockery --case underscore --output schedulermock --outpkg schedulermock --name ArchiveRunner

// SchedulerConfig is the configuration for the scheduler.
type SchedulerConfig struct {
	Runner ArchiveRunner
	// Concurrency is the maximum number of archives processed at the same time.
	Concurrency int
	Reporter    progress.Reporter
	Logger      log.Logger
	TimeNow     func() time.Time
	NewRunID    func() string
}

func (c *SchedulerConfig) defaults() error {
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}
	if c.Concurrency == 0 {
		c.Concurrency = runtime.NumCPU()
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if c.Reporter == nil {
		c.Reporter = progress.Noop
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "scheduler.Scheduler"})
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	if c.NewRunID == nil {
		c.NewRunID = func() string {
			return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
		}
	}
	return nil
}

// Scheduler runs the archive trials with bounded concurrency. Archives are admitted in
// submission order and each one is isolated from the others.
type Scheduler struct {
	runner      ArchiveRunner
	concurrency int
	reporter    progress.Reporter
	logger      log.Logger
	timeNow     func() time.Time
	newRunID    func() string
}

// NewScheduler returns a new scheduler.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Scheduler{
		runner:      cfg.Runner,
		concurrency: cfg.Concurrency,
		reporter:    cfg.Reporter,
		logger:      cfg.Logger,
		timeNow:     cfg.TimeNow,
		newRunID:    cfg.NewRunID,
	}, nil
}

// Run runs all the targets and returns their results in submission order. It only
// fails when the run can't start, a failing archive never aborts the others.
func (s *Scheduler) Run(ctx context.Context, targets []model.ArchiveTarget, candidates []string) (*model.RunSummary, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("no archive targets: %w", model.ErrSetup)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no password candidates: %w", model.ErrSetup)
	}

	runID := s.newRunID()
	ctx = s.logger.SetValuesOnCtx(ctx, log.Kv{"run-id": runID})
	logger := s.logger.WithCtxValues(ctx)

	start := s.timeNow()
	workers := min(s.concurrency, len(targets))
	logger.Infof("Processing %d archives with %d candidates (%d workers)", len(targets), len(candidates), workers)

	// FIFO admission: workers pull the next pending target when they are free.
	queue := make(chan int, len(targets))
	for i := range targets {
		queue <- i
	}
	close(queue)

	results := make([]model.ArchiveResult, len(targets))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				results[i] = s.runTarget(ctx, logger, targets[i], candidates)
			}
		}()
	}
	wg.Wait()

	summary := &model.RunSummary{
		RunID:   runID,
		Results: results,
		Elapsed: s.timeNow().Sub(start),
	}

	counts := summary.CountByStatus()
	logger.Infof("Run finished in %s: %d solved, %d exhausted, %d skipped, %d failed",
		summary.Elapsed, counts[model.ArchiveStatusSolved], counts[model.ArchiveStatusExhausted],
		counts[model.ArchiveStatusSkipped], counts[model.ArchiveStatusFailed])

	return summary, nil
}

// runTarget runs one archive isolating any panic into a failed result.
func (s *Scheduler) runTarget(ctx context.Context, logger log.Logger, target model.ArchiveTarget, candidates []string) (res model.ArchiveResult) {
	start := s.timeNow()
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Archive %s panicked: %v", target.ID(), r)
			res = model.ArchiveResult{
				Target:  target,
				Status:  model.ArchiveStatusFailed,
				Reason:  fmt.Sprintf("unexpected error: %v", r),
				Elapsed: s.timeNow().Sub(start),
			}
			s.reporter.Report(model.ProgressEvent{
				ArchiveID: target.ID(),
				Stage:     model.ProgressStageFailed,
				Total:     len(candidates),
				Reason:    res.Reason,
				Elapsed:   res.Elapsed,
			})
		}
	}()

	return s.runner.Run(ctx, target, candidates)
}
