package fake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/slok/unarx/internal/log"
	"github.com/slok/unarx/internal/model"
)

// Behavior is how the fake tool behaves when an archive is attempted.
type Behavior string

const (
	// BehaviorNormal extracts on the right password and fails with a wrong password error otherwise.
	BehaviorNormal Behavior = "normal"
	// BehaviorEmptySuccess exits correctly creating an empty output dir.
	BehaviorEmptySuccess Behavior = "empty-success"
	// BehaviorHang blocks until the timeout (or forever without timeout).
	BehaviorHang Behavior = "hang"
	// BehaviorPartialWrongPassword writes partial files and reports a CRC error.
	BehaviorPartialWrongPassword Behavior = "partial-wrong-password"
	// BehaviorBroken fails with an unknown error.
	BehaviorBroken Behavior = "broken"
)

// Archive is an archive known by the fake tool.
type Archive struct {
	Password string
	Behavior Behavior
}

// ExtractorConfig is the configuration for the fake extractor.
type ExtractorConfig struct {
	// Archives by source path. Unknown archives fail as broken.
	Archives map[string]Archive
	Logger   log.Logger
}

func (c *ExtractorConfig) defaults() error {
	if c.Archives == nil {
		c.Archives = map[string]Archive{}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "extract.Fake"})
	return nil
}

// Extractor is a fake implementation of the extract.Extractor interface.
// It simulates the extraction tools writing into the real output dir, and records
// every attempt.
type Extractor struct {
	archives map[string]Archive
	attempts map[string][]string
	mu       sync.Mutex
	logger   log.Logger
}

// NewExtractor creates a new fake extractor.
func NewExtractor(cfg ExtractorConfig) (*Extractor, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Extractor{
		archives: cfg.Archives,
		attempts: map[string][]string{},
		logger:   cfg.Logger,
	}, nil
}

// Attempt simulates an extraction attempt.
func (e *Extractor) Attempt(ctx context.Context, req model.AttemptRequest) (*model.RawResult, error) {
	e.mu.Lock()
	e.attempts[req.Target.SourcePath] = append(e.attempts[req.Target.SourcePath], req.Password)
	archive, ok := e.archives[req.Target.SourcePath]
	e.mu.Unlock()

	if !ok {
		archive = Archive{Behavior: BehaviorBroken}
	}

	e.logger.Debugf("Fake attempt on %s with %q (%s)", req.Target.SourcePath, req.Password, archive.Behavior)

	switch archive.Behavior {
	case BehaviorHang:
		return e.hang(ctx, req.Timeout)

	case BehaviorEmptySuccess:
		if err := os.MkdirAll(req.Target.OutputDir, 0o755); err != nil {
			return nil, err
		}
		return &model.RawResult{Stdout: "Everything is Ok"}, nil

	case BehaviorBroken:
		return &model.RawResult{ExitCode: 2, Stderr: "ERROR: Cannot open the file as archive"}, nil

	case BehaviorPartialWrongPassword:
		if req.Password == archive.Password {
			return e.extract(req)
		}
		if err := writeFile(req.Target.OutputDir, "partial.bin"); err != nil {
			return nil, err
		}
		return &model.RawResult{ExitCode: 2, Stderr: "ERROR: CRC Failed in encrypted file. Wrong password?"}, nil
	}

	if req.Password == archive.Password {
		return e.extract(req)
	}

	return &model.RawResult{ExitCode: 2, Stderr: "ERROR: Wrong password : data.txt"}, nil
}

// Attempts returns the passwords attempted on an archive, in order.
func (e *Extractor) Attempts(sourcePath string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]string(nil), e.attempts[sourcePath]...)
}

func (e *Extractor) extract(req model.AttemptRequest) (*model.RawResult, error) {
	if err := writeFile(req.Target.OutputDir, "data.txt"); err != nil {
		return nil, err
	}
	return &model.RawResult{Stdout: "Everything is Ok"}, nil
}

func (e *Extractor) hang(ctx context.Context, timeout time.Duration) (*model.RawResult, error) {
	var timeoutC <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	select {
	case <-timeoutC:
		return &model.RawResult{ExitCode: -1, TimedOut: true}, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("attempt cancelled: %w", ctx.Err())
	}
}

func writeFile(dir, name string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644)
}
