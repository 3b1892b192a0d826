package trial_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/unarx/internal/cleanup"
	"github.com/slok/unarx/internal/extract/extractmock"
	"github.com/slok/unarx/internal/extract/fake"
	"github.com/slok/unarx/internal/log"
	"github.com/slok/unarx/internal/model"
	"github.com/slok/unarx/internal/trial"
)

type recordReporter struct {
	mu     sync.Mutex
	events []model.ProgressEvent
}

func (r *recordReporter) Report(ev model.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordReporter) stages() []model.ProgressStage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var s []model.ProgressStage
	for _, ev := range r.events {
		s = append(s, ev.Stage)
	}
	return s
}

func newTarget(dir string) model.ArchiveTarget {
	return model.ArchiveTarget{
		SourcePath: filepath.Join(dir, "a.rar"),
		OutputDir:  filepath.Join(dir, "a"),
		Format:     model.FormatRAR,
	}
}

func TestSequencerRun(t *testing.T) {
	tests := map[string]struct {
		archive     fake.Archive
		candidates  []string
		batchSize   int
		timeout     time.Duration
		setup       func(t *testing.T, target model.ArchiveTarget)
		expResult   model.ArchiveResult
		expAttempts []string
		expStages   []model.ProgressStage
		expOutput   bool
	}{
		"The matching candidate should solve the archive and stop the trials.": {
			archive:     fake.Archive{Password: "secret", Behavior: fake.BehaviorNormal},
			candidates:  []string{"wrong1", "secret", "wrong2"},
			expResult:   model.ArchiveResult{Status: model.ArchiveStatusSolved, Password: "secret", Attempts: 2},
			expAttempts: []string{"wrong1", "secret"},
			expStages:   []model.ProgressStage{model.ProgressStageStarted, model.ProgressStageSolved},
			expOutput:   true,
		},

		"Without a matching candidate the archive should be exhausted and leave nothing behind.": {
			archive:     fake.Archive{Password: "secret", Behavior: fake.BehaviorNormal},
			candidates:  []string{"a", "b"},
			expResult:   model.ArchiveResult{Status: model.ArchiveStatusExhausted, Attempts: 2},
			expAttempts: []string{"a", "b"},
			expStages:   []model.ProgressStage{model.ProgressStageStarted, model.ProgressStageBatchProgress, model.ProgressStageExhausted},
		},

		"An empty output with a successful exit should never be a success.": {
			archive:     fake.Archive{Behavior: fake.BehaviorEmptySuccess},
			candidates:  []string{"a", "b"},
			expResult:   model.ArchiveResult{Status: model.ArchiveStatusExhausted, Attempts: 2},
			expAttempts: []string{"a", "b"},
			expStages:   []model.ProgressStage{model.ProgressStageStarted, model.ProgressStageBatchProgress, model.ProgressStageExhausted},
		},

		"A hanging tool should time out and the next candidate should be tried.": {
			archive:     fake.Archive{Behavior: fake.BehaviorHang},
			candidates:  []string{"a", "b"},
			timeout:     50 * time.Millisecond,
			expResult:   model.ArchiveResult{Status: model.ArchiveStatusExhausted, Attempts: 2},
			expAttempts: []string{"a", "b"},
			expStages:   []model.ProgressStage{model.ProgressStageStarted, model.ProgressStageBatchProgress, model.ProgressStageExhausted},
		},

		"Partial output of wrong passwords should be removed before the next attempt.": {
			archive:     fake.Archive{Password: "secret", Behavior: fake.BehaviorPartialWrongPassword},
			candidates:  []string{"a", "b", "secret"},
			expResult:   model.ArchiveResult{Status: model.ArchiveStatusSolved, Password: "secret", Attempts: 3},
			expAttempts: []string{"a", "b", "secret"},
			expStages:   []model.ProgressStage{model.ProgressStageStarted, model.ProgressStageSolved},
			expOutput:   true,
		},

		"Fatal errors should not stop the trials by default.": {
			archive:     fake.Archive{Behavior: fake.BehaviorBroken},
			candidates:  []string{"a", "b", "c"},
			expResult:   model.ArchiveResult{Status: model.ArchiveStatusExhausted, Attempts: 3},
			expAttempts: []string{"a", "b", "c"},
			expStages:   []model.ProgressStage{model.ProgressStageStarted, model.ProgressStageBatchProgress, model.ProgressStageExhausted},
		},

		"Progress should be reported after each batch.": {
			archive:     fake.Archive{Password: "secret", Behavior: fake.BehaviorNormal},
			candidates:  []string{"a", "b", "c", "d", "e"},
			batchSize:   2,
			expResult:   model.ArchiveResult{Status: model.ArchiveStatusExhausted, Attempts: 5},
			expAttempts: []string{"a", "b", "c", "d", "e"},
			expStages: []model.ProgressStage{
				model.ProgressStageStarted,
				model.ProgressStageBatchProgress,
				model.ProgressStageBatchProgress,
				model.ProgressStageBatchProgress,
				model.ProgressStageExhausted,
			},
		},

		"An already extracted archive should be skipped without attempts.": {
			archive:    fake.Archive{Password: "secret", Behavior: fake.BehaviorNormal},
			candidates: []string{"secret"},
			setup: func(t *testing.T, target model.ArchiveTarget) {
				require.NoError(t, os.MkdirAll(target.OutputDir, 0o755))
				require.NoError(t, os.WriteFile(filepath.Join(target.OutputDir, "prev.txt"), []byte("prev"), 0o644))
			},
			expResult: model.ArchiveResult{Status: model.ArchiveStatusSkipped},
			expStages: []model.ProgressStage{model.ProgressStageSkipped},
			expOutput: true,
		},

		"An empty stale output dir should be removed and the archive tried.": {
			archive:    fake.Archive{Password: "secret", Behavior: fake.BehaviorNormal},
			candidates: []string{"x", "secret"},
			setup: func(t *testing.T, target model.ArchiveTarget) {
				require.NoError(t, os.MkdirAll(target.OutputDir, 0o755))
			},
			expResult:   model.ArchiveResult{Status: model.ArchiveStatusSolved, Password: "secret", Attempts: 2},
			expAttempts: []string{"x", "secret"},
			expStages:   []model.ProgressStage{model.ProgressStageStarted, model.ProgressStageSolved},
			expOutput:   true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			target := newTarget(t.TempDir())
			if test.setup != nil {
				test.setup(t, target)
			}

			ext, err := fake.NewExtractor(fake.ExtractorConfig{
				Archives: map[string]fake.Archive{target.SourcePath: test.archive},
			})
			require.NoError(err)
			cleaner, err := cleanup.NewManager(cleanup.ManagerConfig{})
			require.NoError(err)
			reporter := &recordReporter{}

			seq, err := trial.NewSequencer(trial.SequencerConfig{
				Extractor: ext,
				Cleaner:   cleaner,
				Reporter:  reporter,
				BatchSize: test.batchSize,
				Timeout:   test.timeout,
				Logger:    log.Noop,
			})
			require.NoError(err)

			res := seq.Run(context.TODO(), target, test.candidates)

			test.expResult.Target = target
			res.Elapsed = 0
			assert.Equal(test.expResult, res)
			assert.Equal(test.expAttempts, ext.Attempts(target.SourcePath))
			assert.Equal(test.expStages, reporter.stages())
			if test.expOutput {
				assert.DirExists(target.OutputDir)
			} else {
				assert.NoDirExists(target.OutputDir)
			}
		})
	}
}

func TestSequencerRunSkippedTwice(t *testing.T) {
	require := require.New(t)

	target := newTarget(t.TempDir())
	ext, err := fake.NewExtractor(fake.ExtractorConfig{
		Archives: map[string]fake.Archive{target.SourcePath: {Password: "secret"}},
	})
	require.NoError(err)
	cleaner, err := cleanup.NewManager(cleanup.ManagerConfig{})
	require.NoError(err)
	seq, err := trial.NewSequencer(trial.SequencerConfig{Extractor: ext, Cleaner: cleaner})
	require.NoError(err)

	res := seq.Run(context.TODO(), target, []string{"secret"})
	require.Equal(model.ArchiveStatusSolved, res.Status)

	for i := 0; i < 2; i++ {
		res = seq.Run(context.TODO(), target, []string{"secret"})
		assert.Equal(t, model.ArchiveStatusSkipped, res.Status)
		assert.Equal(t, 0, res.Attempts)
	}
	assert.Equal(t, []string{"secret"}, ext.Attempts(target.SourcePath))
}

func writePartialOutput(dir string) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		panic(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "partial.bin"), []byte("x"), 0o644); err != nil {
		panic(err)
	}
}

type failingCleaner struct{}

func (failingCleaner) CleanupIfPresent(string) error { return fmt.Errorf("permission denied") }

func (failingCleaner) Snapshot(string) (model.DirSnapshot, error) { return model.DirSnapshot{}, nil }

func TestSequencerRunErrors(t *testing.T) {
	tests := map[string]struct {
		mock                func(m *extractmock.Extractor)
		cleaner             trial.Cleaner
		ctx                 func() context.Context
		maxConsecutiveFatal int
		expStatus           model.ArchiveStatus
		expAttempts         int
	}{
		"Extractor start errors should be fatal for the candidate only.": {
			mock: func(m *extractmock.Extractor) {
				m.On("Attempt", mock.Anything, mock.Anything).Once().Return(nil, fmt.Errorf("exec: \"7z\": executable file not found"))
				m.On("Attempt", mock.Anything, mock.Anything).Once().Return(&model.RawResult{ExitCode: 2, Stderr: "Wrong password"}, nil)
			},
			expStatus:   model.ArchiveStatusExhausted,
			expAttempts: 2,
		},

		"Consecutive fatal errors should abandon the archive when configured.": {
			mock: func(m *extractmock.Extractor) {
				m.On("Attempt", mock.Anything, mock.Anything).Twice().Return(&model.RawResult{ExitCode: 2, Stderr: "Cannot open the file as archive"}, nil)
			},
			maxConsecutiveFatal: 2,
			expStatus:           model.ArchiveStatusFailed,
			expAttempts:         2,
		},

		"Cleanup errors should fail the archive.": {
			mock:        func(m *extractmock.Extractor) {},
			cleaner:     failingCleaner{},
			expStatus:   model.ArchiveStatusFailed,
			expAttempts: 0,
		},

		"A run cancelled in the middle of an attempt should not leave output behind.": {
			mock: func(m *extractmock.Extractor) {
				m.On("Attempt", mock.Anything, mock.Anything).Once().Run(func(args mock.Arguments) {
					req := args.Get(1).(model.AttemptRequest)
					writePartialOutput(req.Target.OutputDir)
				}).Return(nil, context.Canceled)
			},
			expStatus:   model.ArchiveStatusFailed,
			expAttempts: 1,
		},

		"A cancelled context should fail the archive.": {
			mock: func(m *extractmock.Extractor) {},
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			expStatus:   model.ArchiveStatusFailed,
			expAttempts: 0,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mExt := extractmock.NewExtractor(t)
			test.mock(mExt)

			cleaner := test.cleaner
			if cleaner == nil {
				m, err := cleanup.NewManager(cleanup.ManagerConfig{})
				require.NoError(err)
				cleaner = m
			}
			ctx := context.Background()
			if test.ctx != nil {
				ctx = test.ctx()
			}

			seq, err := trial.NewSequencer(trial.SequencerConfig{
				Extractor:           mExt,
				Cleaner:             cleaner,
				MaxConsecutiveFatal: test.maxConsecutiveFatal,
			})
			require.NoError(err)

			target := newTarget(t.TempDir())
			res := seq.Run(ctx, target, []string{"a", "b", "c"}[:max(test.expAttempts, 1)])
			assert.Equal(test.expStatus, res.Status)
			assert.Equal(test.expAttempts, res.Attempts)
			if test.expStatus == model.ArchiveStatusFailed {
				assert.NotEmpty(res.Reason)
				assert.NoDirExists(target.OutputDir)
			}
		})
	}
}

func TestSequencerRunAttemptsInOrder(t *testing.T) {
	require := require.New(t)

	target := newTarget(t.TempDir())
	mExt := extractmock.NewExtractor(t)
	var calls []string
	mExt.On("Attempt", mock.Anything, mock.Anything).Return(func(_ context.Context, req model.AttemptRequest) (*model.RawResult, error) {
		calls = append(calls, req.Password)
		assert.Equal(t, target, req.Target)
		assert.Equal(t, 2*time.Second, req.Timeout)
		return &model.RawResult{ExitCode: 2, Stderr: "Wrong password"}, nil
	})

	cleaner, err := cleanup.NewManager(cleanup.ManagerConfig{})
	require.NoError(err)
	seq, err := trial.NewSequencer(trial.SequencerConfig{Extractor: mExt, Cleaner: cleaner, BatchSize: 3, Timeout: 2 * time.Second})
	require.NoError(err)

	candidates := []string{"1", "2", "3", "4", "5", "6", "7"}
	res := seq.Run(context.TODO(), target, candidates)
	assert.Equal(t, model.ArchiveStatusExhausted, res.Status)
	assert.Equal(t, candidates, calls)
}

func TestNewSequencerInvalid(t *testing.T) {
	cleaner, _ := cleanup.NewManager(cleanup.ManagerConfig{})
	ext, _ := fake.NewExtractor(fake.ExtractorConfig{})

	tests := map[string]trial.SequencerConfig{
		"Missing extractor should fail.":         {Cleaner: cleaner},
		"Missing cleaner should fail.":           {Extractor: ext},
		"Negative batch size should fail.":       {Extractor: ext, Cleaner: cleaner, BatchSize: -1},
		"Negative max fatal errors should fail.": {Extractor: ext, Cleaner: cleaner, MaxConsecutiveFatal: -1},
	}

	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := trial.NewSequencer(cfg)
			assert.Error(t, err)
		})
	}
}
