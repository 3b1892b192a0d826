package model

import "time"

// ProgressStage is the stage of an archive reported by a progress event.
type ProgressStage string

const (
	ProgressStageStarted       ProgressStage = "started"
	ProgressStageBatchProgress ProgressStage = "batch-progress"
	ProgressStageSkipped       ProgressStage = "skipped"
	ProgressStageSolved        ProgressStage = "solved"
	ProgressStageFailed        ProgressStage = "failed"
	ProgressStageExhausted     ProgressStage = "exhausted"
)

// IsTerminal returns true if the stage is the last one of an archive.
func (p ProgressStage) IsTerminal() bool {
	switch p {
	case ProgressStageSkipped, ProgressStageSolved, ProgressStageFailed, ProgressStageExhausted:
		return true
	}
	return false
}

// ProgressEvent is a progress notification of an archive trial sequence.
type ProgressEvent struct {
	ArchiveID string
	Stage     ProgressStage
	Tried     int
	Total     int
	Password  string
	Reason    string
	Elapsed   time.Duration
}
