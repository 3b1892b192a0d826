package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Format is the archive format tag, it selects the extraction tool.
type Format string

const (
	// FormatRAR is a RAR archive.
	FormatRAR Format = "rar"
	// Format7Z is a 7-Zip archive.
	Format7Z Format = "7z"
	// FormatZIP is a ZIP archive.
	FormatZIP Format = "zip"
)

// SupportedFormats are the archive formats the application knows how to unlock.
var SupportedFormats = []Format{FormatRAR, Format7Z, FormatZIP}

// FormatFromPath returns the archive format based on the file extension (case insensitive).
func FormatFromPath(path string) (Format, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, f := range SupportedFormats {
		if string(f) == ext {
			return f, true
		}
	}

	return "", false
}

// FormatFromString parses an archive format name (case insensitive).
func FormatFromString(s string) (Format, error) {
	for _, f := range SupportedFormats {
		if strings.EqualFold(string(f), s) {
			return f, nil
		}
	}

	return "", fmt.Errorf("unknown format %q: %w", s, ErrNotValid)
}

// ArchiveTarget is one input archive plus its derived output location.
type ArchiveTarget struct {
	SourcePath string
	OutputDir  string
	Format     Format
}

// ID returns the identity used to report the archive.
func (a ArchiveTarget) ID() string { return filepath.Base(a.SourcePath) }

// Validate validates the target.
func (a ArchiveTarget) Validate() error {
	if a.SourcePath == "" {
		return fmt.Errorf("source path is required")
	}
	if a.OutputDir == "" {
		return fmt.Errorf("output dir is required")
	}
	if filepath.Clean(a.OutputDir) == filepath.Clean(a.SourcePath) {
		return fmt.Errorf("output dir can't be the archive itself")
	}
	switch a.Format {
	case FormatRAR, Format7Z, FormatZIP:
	default:
		return fmt.Errorf("unsupported format %q", a.Format)
	}

	return nil
}

// ArchiveStatus is the final disposition of an archive.
type ArchiveStatus string

const (
	// ArchiveStatusSolved means a candidate unlocked the archive.
	ArchiveStatusSolved ArchiveStatus = "solved"
	// ArchiveStatusExhausted means all the candidates were tried without success.
	ArchiveStatusExhausted ArchiveStatus = "exhausted"
	// ArchiveStatusSkipped means the archive had already been extracted before the run.
	ArchiveStatusSkipped ArchiveStatus = "skipped"
	// ArchiveStatusFailed means the archive trials stopped because of an unexpected error.
	ArchiveStatusFailed ArchiveStatus = "failed"
)

// ArchiveResult is the finalized result of the trials of one archive.
type ArchiveResult struct {
	Target   ArchiveTarget
	Status   ArchiveStatus
	Password string // Only set when solved.
	Reason   string // Only set when failed.
	Attempts int
	Elapsed  time.Duration
}

// RunSummary is the result of a whole run.
type RunSummary struct {
	RunID   string
	Results []ArchiveResult
	Elapsed time.Duration
}

// CountByStatus counts the archive results by status.
func (r RunSummary) CountByStatus() map[ArchiveStatus]int {
	counts := map[ArchiveStatus]int{}
	for _, res := range r.Results {
		counts[res.Status]++
	}
	return counts
}
