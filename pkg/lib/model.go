package lib

import (
	"errors"
	"time"

	"github.com/slok/unarx/internal/model"
)

// ExtractorType identifies the extractor implementation.
type ExtractorType string

const (
	// ExtractorCommand runs the external extraction tools as child processes.
	ExtractorCommand ExtractorType = "command"

	// ExtractorFake uses an in-memory simulation of the tools (no real archives).
	// Use this for unit testing without the tools installed.
	ExtractorFake ExtractorType = "fake"
)

// Format is an archive format.
type Format string

const (
	FormatRAR Format = "rar"
	Format7Z  Format = "7z"
	FormatZIP Format = "zip"
)

// Tool is an external extraction tool invocation. Args must contain the
// "{archive}", "{password}" and "{output}" placeholders.
type Tool struct {
	Binary string
	Args   []string
}

// FakeBehavior is how the fake extractor behaves with an archive.
type FakeBehavior string

const (
	// FakeBehaviorNormal extracts with the right password only.
	FakeBehaviorNormal FakeBehavior = "normal"
	// FakeBehaviorEmptySuccess exits correctly without extracting anything.
	FakeBehaviorEmptySuccess FakeBehavior = "empty-success"
	// FakeBehaviorHang blocks until the attempt timeout.
	FakeBehaviorHang FakeBehavior = "hang"
	// FakeBehaviorPartialWrongPassword writes partial files on wrong passwords.
	FakeBehaviorPartialWrongPassword FakeBehavior = "partial-wrong-password"
	// FakeBehaviorBroken always fails with an unknown error.
	FakeBehaviorBroken FakeBehavior = "broken"
)

// FakeArchive is an archive known by the fake extractor.
type FakeArchive struct {
	Password string
	Behavior FakeBehavior
}

// ArchiveStatus is the final disposition of an archive.
type ArchiveStatus string

const (
	// ArchiveStatusSolved means a password unlocked and extracted the archive.
	ArchiveStatusSolved ArchiveStatus = "solved"
	// ArchiveStatusExhausted means no password unlocked the archive.
	ArchiveStatusExhausted ArchiveStatus = "exhausted"
	// ArchiveStatusSkipped means the archive was already extracted.
	ArchiveStatusSkipped ArchiveStatus = "skipped"
	// ArchiveStatusFailed means the trials stopped because of an unexpected error.
	ArchiveStatusFailed ArchiveStatus = "failed"
)

// ArchiveResult is the result of the trials of one archive.
type ArchiveResult struct {
	// Archive is the archive file path.
	Archive string
	// OutputDir is where the archive is (or would be) extracted.
	OutputDir string
	Format    Format
	Status    ArchiveStatus
	// Password is set only when solved.
	Password string
	// Reason is set only when failed.
	Reason   string
	Attempts int
	Elapsed  time.Duration
}

// RunSummary is the result of an unlock run, results are in archive discovery order.
type RunSummary struct {
	RunID   string
	Results []ArchiveResult
	Elapsed time.Duration
}

// ProgressStage is the stage reported by a progress event.
type ProgressStage string

const (
	ProgressStageStarted       ProgressStage = "started"
	ProgressStageBatchProgress ProgressStage = "batch-progress"
	ProgressStageSkipped       ProgressStage = "skipped"
	ProgressStageSolved        ProgressStage = "solved"
	ProgressStageFailed        ProgressStage = "failed"
	ProgressStageExhausted     ProgressStage = "exhausted"
)

// ProgressEvent is a progress notification of an archive.
type ProgressEvent struct {
	// Archive is the archive file name.
	Archive  string
	Stage    ProgressStage
	Tried    int
	Total    int
	Password string
	Reason   string
	Elapsed  time.Duration
}

// CheckStatus is the status of a preflight check.
type CheckStatus string

const (
	CheckStatusOK      CheckStatus = "ok"
	CheckStatusWarning CheckStatus = "warning"
	CheckStatusError   CheckStatus = "error"
)

// CheckResult is the result of a single preflight check.
type CheckResult struct {
	ID      string
	Message string
	Status  CheckStatus
}

var (
	// ErrNotFound is returned when a resource (wordlist, archive...) is not found.
	ErrNotFound = errors.New("not found")
	// ErrNotValid is returned when the options or a resource are not valid.
	ErrNotValid = errors.New("not valid")
	// ErrSetup is returned when the run could not be prepared.
	ErrSetup = errors.New("setup failed")
)

func toInternalTools(tools map[Format]Tool) model.ToolSet {
	ts := make(model.ToolSet, len(tools))
	for f, t := range tools {
		ts[model.Format(f)] = model.Tool{Binary: t.Binary, Args: append([]string(nil), t.Args...)}
	}
	return ts
}

func fromInternalRunSummary(s model.RunSummary) *RunSummary {
	res := &RunSummary{
		RunID:   s.RunID,
		Elapsed: s.Elapsed,
		Results: make([]ArchiveResult, len(s.Results)),
	}
	for i, r := range s.Results {
		res.Results[i] = ArchiveResult{
			Archive:   r.Target.SourcePath,
			OutputDir: r.Target.OutputDir,
			Format:    Format(r.Target.Format),
			Status:    ArchiveStatus(r.Status),
			Password:  r.Password,
			Reason:    r.Reason,
			Attempts:  r.Attempts,
			Elapsed:   r.Elapsed,
		}
	}
	return res
}

func fromInternalProgressEvent(ev model.ProgressEvent) ProgressEvent {
	return ProgressEvent{
		Archive:  ev.ArchiveID,
		Stage:    ProgressStage(ev.Stage),
		Tried:    ev.Tried,
		Total:    ev.Total,
		Password: ev.Password,
		Reason:   ev.Reason,
		Elapsed:  ev.Elapsed,
	}
}

func fromInternalCheckResults(rs []model.CheckResult) []CheckResult {
	result := make([]CheckResult, len(rs))
	for i, r := range rs {
		result[i] = CheckResult{
			ID:      r.ID,
			Message: r.Message,
			Status:  CheckStatus(r.Status),
		}
	}
	return result
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	var sentinels []error
	for internal, public := range map[error]error{
		model.ErrSetup:    ErrSetup,
		model.ErrNotFound: ErrNotFound,
		model.ErrNotValid: ErrNotValid,
	} {
		if errors.Is(err, internal) {
			sentinels = append(sentinels, public)
		}
	}
	if len(sentinels) == 0 {
		return err
	}

	return &mappedError{original: err, sentinels: sentinels}
}

type mappedError struct {
	original  error
	sentinels []error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	for _, s := range e.sentinels {
		if target == s {
			return true
		}
	}
	return false
}

func (e *mappedError) Unwrap() error { return e.original }
