package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/slok/unarx/internal/log"
	"github.com/slok/unarx/internal/model"
)

// Reporter receives the progress events of the trials. Implementations must not block.
type Reporter interface {
	Report(ev model.ProgressEvent)
}

//go:generate mockery --case underscore --output progressmock --outpkg progressmock --name Reporter

// Noop is a reporter that discards all the events.
const Noop = noop(0)

type noop int

func (noop) Report(model.ProgressEvent) {}

// ReporterFunc is a helper to create reporters from functions. The function must not block.
type ReporterFunc func(ev model.ProgressEvent)

// Report satisfies Reporter interface.
func (r ReporterFunc) Report(ev model.ProgressEvent) { r(ev) }

// TerminalReporterConfig is the configuration for the terminal reporter.
type TerminalReporterConfig struct {
	Out     io.Writer
	NoColor bool
	Logger  log.Logger
}

func (c *TerminalReporterConfig) defaults() error {
	if c.Out == nil {
		return fmt.Errorf("out is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "progress.TerminalReporter"})
	return nil
}

// TerminalReporter renders one human readable line per event. Events are queued and
// rendered by a background goroutine so reporting never blocks the trials.
type TerminalReporter struct {
	out    io.Writer
	styles styles
	logger log.Logger

	mu      sync.Mutex
	queue   []model.ProgressEvent
	closed  bool
	notify  chan struct{}
	stopped chan struct{}
}

// NewTerminalReporter returns a new running terminal reporter, it must be closed.
func NewTerminalReporter(cfg TerminalReporterConfig) (*TerminalReporter, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	r := &TerminalReporter{
		out:     cfg.Out,
		styles:  newStyles(lipgloss.NewRenderer(cfg.Out), cfg.NoColor),
		logger:  cfg.Logger,
		notify:  make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	go r.run()

	return r, nil
}

// Report queues the event for rendering. Events reported after Close are dropped.
func (r *TerminalReporter) Report(ev model.ProgressEvent) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.queue = append(r.queue, ev)
	r.mu.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Close stops accepting events and waits until the queued ones are rendered.
func (r *TerminalReporter) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.stopped
		return
	}
	r.closed = true
	r.mu.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}
	<-r.stopped
}

func (r *TerminalReporter) run() {
	defer close(r.stopped)

	for range r.notify {
		r.mu.Lock()
		events := r.queue
		r.queue = nil
		closed := r.closed
		r.mu.Unlock()

		for _, ev := range events {
			if _, err := fmt.Fprintln(r.out, r.styles.render(ev)); err != nil {
				r.logger.Warningf("Could not render progress: %v", err)
			}
		}

		if closed {
			return
		}
	}
}

type styles struct {
	info    lipgloss.Style
	dim     lipgloss.Style
	success lipgloss.Style
	skipped lipgloss.Style
	failed  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, noColor bool) styles {
	if noColor {
		plain := r.NewStyle()
		return styles{info: plain, dim: plain, success: plain, skipped: plain, failed: plain}
	}

	return styles{
		info:    r.NewStyle().Foreground(lipgloss.Color("39")),
		dim:     r.NewStyle().Foreground(lipgloss.Color("244")),
		success: r.NewStyle().Bold(true).Foreground(lipgloss.Color("46")),
		skipped: r.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		failed:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	}
}

func (s styles) render(ev model.ProgressEvent) string {
	switch ev.Stage {
	case model.ProgressStageStarted:
		return s.info.Render(fmt.Sprintf("Processing %s (%d passwords)", ev.ArchiveID, ev.Total))
	case model.ProgressStageBatchProgress:
		return s.dim.Render(fmt.Sprintf("Processing %s - %d/%d passwords (%d%%)", ev.ArchiveID, ev.Tried, ev.Total, percent(ev.Tried, ev.Total)))
	case model.ProgressStageSkipped:
		return fmt.Sprintf("%s %s (output directory already exists)", s.skipped.Render("SKIPPED"), ev.ArchiveID)
	case model.ProgressStageSolved:
		return fmt.Sprintf("%s %s (password: %s)", s.success.Render("SUCCESS"), ev.ArchiveID, ev.Password)
	case model.ProgressStageExhausted:
		return fmt.Sprintf("%s %s (no password matched after %d attempts)", s.failed.Render("FAILED"), ev.ArchiveID, ev.Tried)
	case model.ProgressStageFailed:
		return fmt.Sprintf("%s %s (%s)", s.failed.Render("ERROR"), ev.ArchiveID, ev.Reason)
	}

	return fmt.Sprintf("%s %s", ev.Stage, ev.ArchiveID)
}

func percent(done, total int) int {
	if total <= 0 {
		return 100
	}
	return done * 100 / total
}
