package progress_test

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/unarx/internal/model"
	"github.com/slok/unarx/internal/progress"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestTerminalReporterRender(t *testing.T) {
	tests := map[string]struct {
		event   model.ProgressEvent
		expLine string
	}{
		"Started events should show the candidate count.": {
			event:   model.ProgressEvent{ArchiveID: "a.rar", Stage: model.ProgressStageStarted, Total: 300},
			expLine: "Processing a.rar (300 passwords)",
		},

		"Batch events should show the progress.": {
			event:   model.ProgressEvent{ArchiveID: "a.rar", Stage: model.ProgressStageBatchProgress, Tried: 100, Total: 300},
			expLine: "Processing a.rar - 100/300 passwords (33%)",
		},

		"Skipped events should be rendered.": {
			event:   model.ProgressEvent{ArchiveID: "a.rar", Stage: model.ProgressStageSkipped},
			expLine: "SKIPPED a.rar (output directory already exists)",
		},

		"Solved events should show the password.": {
			event:   model.ProgressEvent{ArchiveID: "a.rar", Stage: model.ProgressStageSolved, Password: "secret"},
			expLine: "SUCCESS a.rar (password: secret)",
		},

		"Exhausted events should be rendered.": {
			event:   model.ProgressEvent{ArchiveID: "a.rar", Stage: model.ProgressStageExhausted, Tried: 2, Total: 2},
			expLine: "FAILED a.rar (no password matched after 2 attempts)",
		},

		"Failed events should show the reason.": {
			event:   model.ProgressEvent{ArchiveID: "a.rar", Stage: model.ProgressStageFailed, Reason: "permission denied"},
			expLine: "ERROR a.rar (permission denied)",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			out := &syncBuffer{}
			r, err := progress.NewTerminalReporter(progress.TerminalReporterConfig{Out: out, NoColor: true})
			require.NoError(t, err)

			r.Report(test.event)
			r.Close()

			assert.Equal(t, test.expLine+"\n", out.String())
		})
	}
}

func TestTerminalReporterConcurrentReports(t *testing.T) {
	out := &syncBuffer{}
	r, err := progress.NewTerminalReporter(progress.TerminalReporterConfig{Out: out, NoColor: true})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Report(model.ProgressEvent{ArchiveID: fmt.Sprintf("a%d.rar", i), Stage: model.ProgressStageBatchProgress, Tried: j, Total: 50})
			}
		}(i)
	}
	wg.Wait()
	r.Close()

	// Events after close are dropped.
	r.Report(model.ProgressEvent{ArchiveID: "late.rar", Stage: model.ProgressStageSolved})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 500)
	assert.NotContains(t, out.String(), "late.rar")
}

func TestNewTerminalReporterInvalid(t *testing.T) {
	_, err := progress.NewTerminalReporter(progress.TerminalReporterConfig{})
	assert.Error(t, err)
}

func TestReporterFunc(t *testing.T) {
	var got []model.ProgressEvent
	var r progress.Reporter = progress.ReporterFunc(func(ev model.ProgressEvent) {
		got = append(got, ev)
	})

	r.Report(model.ProgressEvent{ArchiveID: "a.zip", Stage: model.ProgressStageStarted})

	assert.Equal(t, []model.ProgressEvent{{ArchiveID: "a.zip", Stage: model.ProgressStageStarted}}, got)
}
