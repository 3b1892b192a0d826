package lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/slok/unarx/internal/app/doctor"
	"github.com/slok/unarx/internal/app/unlock"
	"github.com/slok/unarx/internal/extract"
	"github.com/slok/unarx/internal/extract/command"
	"github.com/slok/unarx/internal/extract/fake"
	"github.com/slok/unarx/internal/log"
	"github.com/slok/unarx/internal/model"
	"github.com/slok/unarx/internal/progress"
	"github.com/slok/unarx/internal/storage"
	storageio "github.com/slok/unarx/internal/storage/io"
)

// Config configures the SDK client.
//
// All fields are optional and have sensible defaults. An empty Config{} runs the
// platform default extraction tools.
type Config struct {
	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger

	// Extractor selects the extractor implementation.
	// Default: [ExtractorCommand].
	Extractor ExtractorType

	// Tools replaces the extraction tool of the given formats.
	// Only used when Extractor is [ExtractorCommand].
	Tools map[Format]Tool

	// ToolEnv are environment variables set on the extraction tools.
	// Default: LC_ALL=C so the tool messages can be classified.
	ToolEnv map[string]string

	// FakeArchives are the archives known by the fake extractor, by archive path.
	// Only used when Extractor is [ExtractorFake].
	FakeArchives map[string]FakeArchive

	// OnProgress receives the progress events of the archives.
	// It's called concurrently and must not block.
	OnProgress func(ev ProgressEvent)
}

func (c *Config) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}

	if c.Extractor == "" {
		c.Extractor = ExtractorCommand
	}

	if c.ToolEnv == nil {
		c.ToolEnv = map[string]string{"LC_ALL": "C"}
	}

	return nil
}

// Client is the main SDK entry point to unlock archives programmatically.
//
// Create a Client with [New]. A Client is safe for concurrent use.
type Client struct {
	logger    log.Logger
	tools     model.ToolSet
	extractor extract.Extractor
	reporter  progress.Reporter
}

// New creates a new SDK client.
func New(cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	tools := command.DefaultTools()
	for f, t := range toInternalTools(cfg.Tools) {
		tools[f] = t
	}

	var (
		ext extract.Extractor
		err error
	)
	switch cfg.Extractor {
	case ExtractorCommand:
		ext, err = command.NewExtractor(command.ExtractorConfig{
			Tools:  tools,
			Env:    cfg.ToolEnv,
			Logger: cfg.Logger,
		})
	case ExtractorFake:
		archives := make(map[string]fake.Archive, len(cfg.FakeArchives))
		for path, a := range cfg.FakeArchives {
			archives[path] = fake.Archive{Password: a.Password, Behavior: fake.Behavior(a.Behavior)}
		}
		ext, err = fake.NewExtractor(fake.ExtractorConfig{
			Archives: archives,
			Logger:   cfg.Logger,
		})
	default:
		return nil, fmt.Errorf("unsupported extractor type: %s: %w", cfg.Extractor, ErrNotValid)
	}
	if err != nil {
		return nil, mapError(fmt.Errorf("could not create extractor: %w", err))
	}

	var reporter progress.Reporter = progress.Noop
	if cfg.OnProgress != nil {
		onProgress := cfg.OnProgress
		reporter = progress.ReporterFunc(func(ev model.ProgressEvent) {
			onProgress(fromInternalProgressEvent(ev))
		})
	}

	return &Client{
		logger:    cfg.Logger,
		tools:     tools,
		extractor: ext,
		reporter:  reporter,
	}, nil
}

// UnlockOpts are the options of an unlock run.
type UnlockOpts struct {
	// ArchiveFile is a single archive to unlock, exclusive with ArchiveDir.
	ArchiveFile string
	// ArchiveDir is scanned recursively for RAR, 7Z and ZIP archives.
	ArchiveDir string

	// WordlistPath is a newline delimited passwords file, exclusive with Passwords.
	WordlistPath string
	// Passwords are the password candidates, in trial order.
	Passwords []string

	// BatchSize is the number of passwords tried between progress events.
	// Default: 100.
	BatchSize int
	// Timeout of each attempt. Default: no timeout.
	Timeout time.Duration
	// Concurrency is the number of archives processed at the same time.
	// Default: number of CPUs.
	Concurrency int
	// MaxConsecutiveFatal abandons an archive after this many unexpected tool
	// failures in a row. Default: disabled.
	MaxConsecutiveFatal int
}

// Unlock tries the passwords on the archives, the matching ones are extracted next
// to the archive in a directory named after it.
//
// The call blocks until every archive is finished. Cancelling the context kills the
// running tools and ends the pending archives as failed.
func (c *Client) Unlock(ctx context.Context, opts UnlockOpts) (*RunSummary, error) {
	var (
		repo     storage.CandidateRepository
		wordlist string
	)
	switch {
	case opts.WordlistPath != "" && len(opts.Passwords) > 0:
		return nil, fmt.Errorf("wordlist and passwords can't be used at the same time: %w", ErrNotValid)
	case opts.WordlistPath != "":
		abs, err := filepath.Abs(opts.WordlistPath)
		if err != nil {
			return nil, fmt.Errorf("could not resolve wordlist path: %w", err)
		}
		repo = storageio.NewWordlistRepository(os.DirFS(filepath.Dir(abs)))
		wordlist = filepath.Base(abs)
	default:
		repo = staticCandidates(opts.Passwords)
		wordlist = "passwords"
	}

	svc, err := unlock.NewService(unlock.ServiceConfig{
		Candidates: repo,
		Extractor:  c.extractor,
		Reporter:   c.reporter,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create unlock service: %w", err)
	}

	summary, err := svc.Run(ctx, unlock.Request{
		ArchiveFile:         opts.ArchiveFile,
		ArchiveDir:          opts.ArchiveDir,
		WordlistPath:        wordlist,
		BatchSize:           opts.BatchSize,
		Timeout:             opts.Timeout,
		Concurrency:         opts.Concurrency,
		MaxConsecutiveFatal: opts.MaxConsecutiveFatal,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalRunSummary(*summary), nil
}

// Doctor runs the preflight checks of the configured extraction tools.
//
// Returns a slice of [CheckResult] describing each check's outcome, one per
// archive format.
func (c *Client) Doctor(ctx context.Context) ([]CheckResult, error) {
	svc, err := doctor.NewService(doctor.ServiceConfig{
		Tools:  c.tools,
		Logger: c.logger,
	})
	if err != nil {
		return nil, mapError(fmt.Errorf("could not create doctor service: %w", err))
	}

	results, err := svc.Run(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalCheckResults(results), nil
}

type staticCandidates []string

func (s staticCandidates) ListCandidates(_ context.Context, _ string) ([]string, error) {
	return append([]string{}, s...), nil
}
