package trial

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/unarx/internal/classify"
	"github.com/slok/unarx/internal/conventions"
	"github.com/slok/unarx/internal/extract"
	"github.com/slok/unarx/internal/log"
	"github.com/slok/unarx/internal/model"
	"github.com/slok/unarx/internal/progress"
)

// Cleaner knows how to inspect and cleanup an archive output dir.
type Cleaner interface {
	CleanupIfPresent(outputDir string) error
	Snapshot(outputDir string) (model.DirSnapshot, error)
}

// SequencerConfig is the configuration for the trial sequencer.
type SequencerConfig struct {
	Extractor extract.Extractor
	Cleaner   Cleaner
	Reporter  progress.Reporter
	// BatchSize is the number of candidates tried between progress reports.
	BatchSize int
	// Timeout of each attempt, zero or negative means no limit.
	Timeout time.Duration
	// MaxConsecutiveFatal abandons an archive after this many fatal outcomes in a row.
	// Zero disables it and fatal outcomes only skip the candidate.
	MaxConsecutiveFatal int
	Logger              log.Logger
	// TimeNow is used to measure elapsed times.
	TimeNow func() time.Time
}

func (c *SequencerConfig) defaults() error {
	if c.Extractor == nil {
		return fmt.Errorf("extractor is required")
	}
	if c.Cleaner == nil {
		return fmt.Errorf("cleaner is required")
	}
	if c.Reporter == nil {
		c.Reporter = progress.Noop
	}
	if c.BatchSize == 0 {
		c.BatchSize = conventions.DefaultBatchSize
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.MaxConsecutiveFatal < 0 {
		return fmt.Errorf("max consecutive fatal can't be negative")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "trial.Sequencer"})
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	return nil
}

// Sequencer tries the candidates one by one against a single archive until one
// unlocks it or the list is exhausted.
type Sequencer struct {
	extractor           extract.Extractor
	cleaner             Cleaner
	reporter            progress.Reporter
	batchSize           int
	timeout             time.Duration
	maxConsecutiveFatal int
	logger              log.Logger
	timeNow             func() time.Time
}

// NewSequencer returns a new trial sequencer.
func NewSequencer(cfg SequencerConfig) (*Sequencer, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Sequencer{
		extractor:           cfg.Extractor,
		cleaner:             cfg.Cleaner,
		reporter:            cfg.Reporter,
		batchSize:           cfg.BatchSize,
		timeout:             cfg.Timeout,
		maxConsecutiveFatal: cfg.MaxConsecutiveFatal,
		logger:              cfg.Logger,
		timeNow:             cfg.TimeNow,
	}, nil
}

// Run runs the trials of one archive. It never returns an error, unexpected problems
// end the archive as failed.
func (s *Sequencer) Run(ctx context.Context, target model.ArchiveTarget, candidates []string) model.ArchiveResult {
	start := s.timeNow()
	ctx = s.logger.SetValuesOnCtx(ctx, log.Kv{"archive": target.ID()})
	logger := s.logger.WithCtxValues(ctx)

	res, err := s.run(ctx, logger, target, candidates)
	res.Target = target
	res.Elapsed = s.timeNow().Sub(start)
	if err != nil {
		res.Status = model.ArchiveStatusFailed
		res.Reason = err.Error()
		logger.Errorf("Archive failed: %v", err)
	}

	ev := model.ProgressEvent{
		ArchiveID: target.ID(),
		Tried:     res.Attempts,
		Total:     len(candidates),
		Password:  res.Password,
		Reason:    res.Reason,
		Elapsed:   res.Elapsed,
	}
	switch res.Status {
	case model.ArchiveStatusSkipped:
		ev.Stage = model.ProgressStageSkipped
	case model.ArchiveStatusSolved:
		ev.Stage = model.ProgressStageSolved
	case model.ArchiveStatusExhausted:
		ev.Stage = model.ProgressStageExhausted
	default:
		ev.Stage = model.ProgressStageFailed
	}
	s.reporter.Report(ev)

	return res
}

func (s *Sequencer) run(ctx context.Context, logger log.Logger, target model.ArchiveTarget, candidates []string) (model.ArchiveResult, error) {
	if err := target.Validate(); err != nil {
		return model.ArchiveResult{}, fmt.Errorf("invalid archive target: %w", err)
	}

	// A previous run already extracted this archive, never touch it.
	snap, err := s.cleaner.Snapshot(target.OutputDir)
	if err != nil {
		return model.ArchiveResult{}, fmt.Errorf("could not check output dir: %w", err)
	}
	if snap.NonEmpty() {
		logger.Infof("Output dir %s already exists, skipping", target.OutputDir)
		return model.ArchiveResult{Status: model.ArchiveStatusSkipped}, nil
	}

	// Empty leftovers are stale.
	if err := s.cleaner.CleanupIfPresent(target.OutputDir); err != nil {
		return model.ArchiveResult{}, err
	}

	s.reporter.Report(model.ProgressEvent{
		ArchiveID: target.ID(),
		Stage:     model.ProgressStageStarted,
		Total:     len(candidates),
	})
	logger.Debugf("Trying %d candidates", len(candidates))

	attempts := 0
	consecutiveFatal := 0
	for batchStart := 0; batchStart < len(candidates); batchStart += s.batchSize {
		batchEnd := min(batchStart+s.batchSize, len(candidates))

		for _, password := range candidates[batchStart:batchEnd] {
			if err := ctx.Err(); err != nil {
				return model.ArchiveResult{Attempts: attempts}, fmt.Errorf("run cancelled: %w", err)
			}

			outcome, err := s.attempt(ctx, target, password)
			attempts++
			if err != nil {
				// The tool is already gone, drop what it wrote before stopping.
				if cerr := s.cleaner.CleanupIfPresent(target.OutputDir); cerr != nil {
					err = fmt.Errorf("%w (cleanup failed: %w)", err, cerr)
				}
				return model.ArchiveResult{Attempts: attempts}, err
			}

			if outcome.IsSuccess() {
				logger.Infof("Archive unlocked after %d attempts", attempts)
				return model.ArchiveResult{
					Status:   model.ArchiveStatusSolved,
					Password: outcome.Password,
					Attempts: attempts,
				}, nil
			}

			// Anything but a success leaves no output behind.
			if err := s.cleaner.CleanupIfPresent(target.OutputDir); err != nil {
				return model.ArchiveResult{Attempts: attempts}, err
			}

			switch outcome.Kind {
			case model.OutcomeFatalError:
				consecutiveFatal++
				logger.Warningf("Attempt %d failed: %s", attempts, outcome.Detail)
				if s.maxConsecutiveFatal > 0 && consecutiveFatal >= s.maxConsecutiveFatal {
					return model.ArchiveResult{Attempts: attempts},
						fmt.Errorf("%d consecutive fatal errors, last: %s", consecutiveFatal, outcome.Detail)
				}
			case model.OutcomeTransientError:
				consecutiveFatal = 0
				logger.Debugf("Attempt %d transient error: %s", attempts, outcome.Detail)
			default:
				consecutiveFatal = 0
			}
		}

		s.reporter.Report(model.ProgressEvent{
			ArchiveID: target.ID(),
			Stage:     model.ProgressStageBatchProgress,
			Tried:     attempts,
			Total:     len(candidates),
		})
	}

	logger.Infof("No candidate matched after %d attempts", attempts)
	return model.ArchiveResult{Status: model.ArchiveStatusExhausted, Attempts: attempts}, nil
}

// attempt runs a single candidate and classifies the outcome. Errors returned are
// only the ones that must stop the archive.
func (s *Sequencer) attempt(ctx context.Context, target model.ArchiveTarget, password string) (model.TrialOutcome, error) {
	raw, err := s.extractor.Attempt(ctx, model.AttemptRequest{
		Target:   target,
		Password: password,
		Timeout:  s.timeout,
	})
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return model.TrialOutcome{}, fmt.Errorf("run cancelled: %w", err)
		}
		// The tool could not even run, this only affects this candidate.
		return model.TrialOutcome{Kind: model.OutcomeFatalError, Detail: err.Error()}, nil
	}

	snap, err := s.cleaner.Snapshot(target.OutputDir)
	if err != nil {
		return model.TrialOutcome{}, fmt.Errorf("could not inspect output dir: %w", err)
	}

	return classify.Classify(*raw, password, snap), nil
}
