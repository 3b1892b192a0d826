package model

import "time"

// OutcomeKind is the classification of a single password attempt.
type OutcomeKind string

const (
	OutcomeSuccess        OutcomeKind = "success"
	OutcomeWrongPassword  OutcomeKind = "wrong-password"
	OutcomeAmbiguous      OutcomeKind = "ambiguous"
	OutcomeTransientError OutcomeKind = "transient-error"
	OutcomeFatalError     OutcomeKind = "fatal-error"
	OutcomeTimeout        OutcomeKind = "timeout"
)

// TrialOutcome is the classified result of one (archive, password) attempt.
type TrialOutcome struct {
	Kind     OutcomeKind
	Password string // Set on success.
	Detail   string // Set on transient and fatal errors.
}

// IsSuccess returns true if the outcome unlocked the archive.
func (t TrialOutcome) IsSuccess() bool { return t.Kind == OutcomeSuccess }

// AttemptRequest is a single extraction attempt of an archive with a password.
type AttemptRequest struct {
	Target   ArchiveTarget
	Password string
	// Timeout of the attempt, zero or negative means no limit.
	Timeout time.Duration
}

// RawResult is what the extraction tool reported for an attempt.
type RawResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

// Failed returns true if the tool exited with a failure.
func (r RawResult) Failed() bool { return r.ExitCode != 0 }

// DirSnapshot is the state of an output directory after an attempt.
type DirSnapshot struct {
	Exists  bool
	Entries int
}

// NonEmpty returns true if the directory exists and has at least one entry.
func (d DirSnapshot) NonEmpty() bool { return d.Exists && d.Entries > 0 }
