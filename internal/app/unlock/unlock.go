package unlock

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/slok/unarx/internal/cleanup"
	"github.com/slok/unarx/internal/discovery"
	"github.com/slok/unarx/internal/extract"
	"github.com/slok/unarx/internal/log"
	"github.com/slok/unarx/internal/model"
	"github.com/slok/unarx/internal/progress"
	"github.com/slok/unarx/internal/scheduler"
	"github.com/slok/unarx/internal/storage"
	"github.com/slok/unarx/internal/trial"
)

// TargetFinder discovers the archives of a run.
type TargetFinder interface {
	FindFile(ctx context.Context, path string) (*model.ArchiveTarget, error)
	FindDir(ctx context.Context, dir string) ([]model.ArchiveTarget, error)
}

// ServiceConfig is the configuration for the unlock service.
type ServiceConfig struct {
	Candidates storage.CandidateRepository
	Extractor  extract.Extractor
	Finder     TargetFinder
	Cleaner    trial.Cleaner
	Reporter   progress.Reporter
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Candidates == nil {
		return fmt.Errorf("candidates repository is required")
	}
	if c.Extractor == nil {
		return fmt.Errorf("extractor is required")
	}
	if c.Reporter == nil {
		c.Reporter = progress.Noop
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Unlock"})

	if c.Finder == nil {
		f, err := discovery.NewFinder(discovery.FinderConfig{Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create finder: %w", err)
		}
		c.Finder = f
	}
	if c.Cleaner == nil {
		m, err := cleanup.NewManager(cleanup.ManagerConfig{Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create cleanup manager: %w", err)
		}
		c.Cleaner = m
	}

	return nil
}

// Service runs the password trials of a set of archives.
type Service struct {
	candidates storage.CandidateRepository
	extractor  extract.Extractor
	finder     TargetFinder
	cleaner    trial.Cleaner
	reporter   progress.Reporter
	logger     log.Logger
}

// NewService creates a new unlock service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		candidates: cfg.Candidates,
		extractor:  cfg.Extractor,
		finder:     cfg.Finder,
		cleaner:    cfg.Cleaner,
		reporter:   cfg.Reporter,
		logger:     cfg.Logger,
	}, nil
}

// Request represents the unlock request parameters.
type Request struct {
	// ArchiveFile is a single archive to unlock, exclusive with ArchiveDir.
	ArchiveFile string
	// ArchiveDir is a directory scanned recursively for archives, exclusive with ArchiveFile.
	ArchiveDir   string
	WordlistPath string
	// BatchSize is the number of candidates tried between progress reports (0 uses the default).
	BatchSize int
	// Timeout of each attempt, zero means no limit.
	Timeout time.Duration
	// Concurrency is the number of archives processed at the same time (0 uses the CPU count).
	Concurrency         int
	MaxConsecutiveFatal int
}

func (r Request) validate() error {
	if r.ArchiveFile == "" && r.ArchiveDir == "" {
		return fmt.Errorf("an archive file or an archive directory is required")
	}
	if r.ArchiveFile != "" && r.ArchiveDir != "" {
		return fmt.Errorf("archive file and archive directory can't be used at the same time")
	}
	if r.WordlistPath == "" {
		return fmt.Errorf("wordlist is required")
	}
	if r.BatchSize < 0 {
		return fmt.Errorf("batch size must be positive, got: %d", r.BatchSize)
	}
	if r.Timeout < 0 {
		return fmt.Errorf("timeout can't be negative")
	}
	if r.Concurrency < 0 {
		return fmt.Errorf("concurrency must be positive, got: %d", r.Concurrency)
	}
	if r.MaxConsecutiveFatal < 0 {
		return fmt.Errorf("max consecutive fatal can't be negative")
	}
	return nil
}

// Run unlocks the requested archives. Only setup problems return an error (all of
// them wrap model.ErrSetup), problems of single archives are part of the summary.
func (s *Service) Run(ctx context.Context, req Request) (*model.RunSummary, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid request: %w: %w", model.ErrSetup, model.ErrNotValid, err)
	}

	candidates, err := s.candidates.ListCandidates(ctx, req.WordlistPath)
	if err != nil {
		return nil, fmt.Errorf("%w: could not load wordlist: %w", model.ErrSetup, err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: wordlist %q has no candidates: %w", model.ErrSetup, req.WordlistPath, model.ErrNotValid)
	}
	s.logger.Debugf("Loaded %d candidates from %s", len(candidates), req.WordlistPath)

	targets, err := s.findTargets(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrSetup, err)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no supported archives found in %q: %w", model.ErrSetup, req.ArchiveDir, model.ErrNotFound)
	}
	s.logger.Infof("Found %d archives", len(targets))

	seq, err := trial.NewSequencer(trial.SequencerConfig{
		Extractor:           s.extractor,
		Cleaner:             s.cleaner,
		Reporter:            s.reporter,
		BatchSize:           req.BatchSize,
		Timeout:             req.Timeout,
		MaxConsecutiveFatal: req.MaxConsecutiveFatal,
		Logger:              s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: could not create trial sequencer: %w", model.ErrSetup, err)
	}

	var runner scheduler.ArchiveRunner = seq
	if owners := sharedOutputOwners(targets); len(owners) > 0 {
		for src, owner := range owners {
			s.logger.Warningf("Archive %s extracts to the same output dir as %s, it will not be tried", src, owner)
		}
		runner = sharedOutputRunner{runner: seq, owners: owners, reporter: s.reporter}
	}

	sched, err := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Runner:      runner,
		Concurrency: req.Concurrency,
		Reporter:    s.reporter,
		Logger:      s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: could not create scheduler: %w", model.ErrSetup, err)
	}

	summary, err := sched.Run(ctx, targets, candidates)
	if err != nil {
		return nil, fmt.Errorf("could not run trials: %w", err)
	}

	return summary, nil
}

func (s *Service) findTargets(ctx context.Context, req Request) ([]model.ArchiveTarget, error) {
	if req.ArchiveFile != "" {
		target, err := s.finder.FindFile(ctx, req.ArchiveFile)
		if err != nil {
			return nil, fmt.Errorf("could not find archive: %w", err)
		}
		return []model.ArchiveTarget{*target}, nil
	}

	targets, err := s.finder.FindDir(ctx, req.ArchiveDir)
	if err != nil {
		return nil, fmt.Errorf("could not find archives: %w", err)
	}
	return targets, nil
}

// sharedOutputOwners returns, by source path, the archives whose output dir is already
// used by a previous archive of the run, with the ID of that archive.
func sharedOutputOwners(targets []model.ArchiveTarget) map[string]string {
	owners := map[string]string{}
	firstByDir := map[string]model.ArchiveTarget{}
	for _, t := range targets {
		key := filepath.Clean(t.OutputDir)
		if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
			key = strings.ToLower(key)
		}

		first, ok := firstByDir[key]
		if !ok {
			firstByDir[key] = t
			continue
		}
		owners[t.SourcePath] = first.ID()
	}

	return owners
}

// sharedOutputRunner fails the archives that would extract over the output of another
// archive, the rest are run normally.
type sharedOutputRunner struct {
	runner   scheduler.ArchiveRunner
	owners   map[string]string
	reporter progress.Reporter
}

func (r sharedOutputRunner) Run(ctx context.Context, target model.ArchiveTarget, candidates []string) model.ArchiveResult {
	owner, ok := r.owners[target.SourcePath]
	if !ok {
		return r.runner.Run(ctx, target, candidates)
	}

	res := model.ArchiveResult{
		Target: target,
		Status: model.ArchiveStatusFailed,
		Reason: fmt.Sprintf("output dir %s shared with %s", target.OutputDir, owner),
	}
	r.reporter.Report(model.ProgressEvent{
		ArchiveID: target.ID(),
		Stage:     model.ProgressStageFailed,
		Total:     len(candidates),
		Reason:    res.Reason,
	})

	return res
}
