package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"time"

	"github.com/slok/unarx/internal/log"
	"github.com/slok/unarx/internal/model"
)

const (
	// maxCapturedOutput is the amount of bytes kept from each output stream.
	maxCapturedOutput = 64 * 1024
	// pipeWaitDelay bounds the wait for output pipes once the process is gone.
	pipeWaitDelay = 2 * time.Second
)

// ExtractorConfig is the configuration for the command extractor.
type ExtractorConfig struct {
	Tools model.ToolSet
	// Env are environment variables set on the tool processes on top of the
	// current process environment.
	Env    map[string]string
	Logger log.Logger
}

func (c *ExtractorConfig) defaults() error {
	if c.Tools == nil {
		c.Tools = DefaultTools()
	}
	if err := c.Tools.Validate(); err != nil {
		return fmt.Errorf("invalid tools: %w", err)
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "extract.Command"})
	return nil
}

// Extractor runs the external extraction tools as child processes.
type Extractor struct {
	tools  model.ToolSet
	env    []string
	logger log.Logger
}

// NewExtractor returns a new command extractor.
func NewExtractor(cfg ExtractorConfig) (*Extractor, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var env []string
	if len(cfg.Env) > 0 {
		env = os.Environ()
		keys := make([]string, 0, len(cfg.Env))
		for k := range cfg.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			env = append(env, k+"="+cfg.Env[k])
		}
	}

	return &Extractor{
		tools:  cfg.Tools,
		env:    env,
		logger: cfg.Logger,
	}, nil
}

// Attempt runs the tool of the archive format with the password. The tool runs in its
// own process group so a timeout or cancellation kills its whole process tree.
func (e *Extractor) Attempt(ctx context.Context, req model.AttemptRequest) (*model.RawResult, error) {
	tool, ok := e.tools[req.Target.Format]
	if !ok {
		return nil, fmt.Errorf("no tool for %q format: %w", req.Target.Format, model.ErrNotValid)
	}

	args := tool.Render(req.Target.SourcePath, req.Password, req.Target.OutputDir)
	cmd := exec.Command(tool.Binary, args...)
	cmd.Env = e.env
	cmd.WaitDelay = pipeWaitDelay
	setProcessGroup(cmd)

	stdout := newTailBuffer(maxCapturedOutput)
	stderr := newTailBuffer(maxCapturedOutput)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("could not start %q: %w", tool.Binary, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var timeoutC <-chan time.Time
	if req.Timeout > 0 {
		timer := time.NewTimer(req.Timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	timedOut := false
	var waitErr error
	select {
	case waitErr = <-done:
	case <-timeoutC:
		timedOut = true
		e.logger.Debugf("Attempt timed out after %s, killing process tree %d", req.Timeout, cmd.Process.Pid)
		if err := killProcessTree(cmd); err != nil {
			e.logger.Warningf("Could not kill process tree %d: %v", cmd.Process.Pid, err)
		}
		waitErr = <-done
	case <-ctx.Done():
		if err := killProcessTree(cmd); err != nil {
			e.logger.Warningf("Could not kill process tree %d: %v", cmd.Process.Pid, err)
		}
		<-done
		return nil, fmt.Errorf("attempt cancelled: %w", ctx.Err())
	}

	exitCode := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(waitErr, &exitErr):
			exitCode = exitErr.ExitCode()
		case timedOut:
			exitCode = -1
		case errors.Is(waitErr, exec.ErrWaitDelay):
			// The tool exited fine but a leftover child kept the output pipes open.
			e.logger.Warningf("Output pipes of %q still open after exit", tool.Binary)
			_ = killProcessTree(cmd)
		default:
			return nil, fmt.Errorf("could not wait for %q: %w", tool.Binary, waitErr)
		}
	}
	if timedOut && exitCode == 0 {
		exitCode = -1
	}

	return &model.RawResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
		TimedOut: timedOut,
	}, nil
}

// tailBuffer keeps the last max bytes written, tools print the relevant errors last.
type tailBuffer struct {
	buf bytes.Buffer
	max int
}

func newTailBuffer(max int) *tailBuffer { return &tailBuffer{max: max} }

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if n >= t.max {
		t.buf.Reset()
		t.buf.Write(p[n-t.max:])
		return n, nil
	}

	if over := t.buf.Len() + n - t.max; over > 0 {
		t.buf.Next(over)
	}
	t.buf.Write(p)
	return n, nil
}

func (t *tailBuffer) String() string { return t.buf.String() }
