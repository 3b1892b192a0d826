package printer

import (
	"encoding/json"
	"io"

	"github.com/slok/unarx/internal/model"
)

// JSONPrinter prints run information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// summaryOutput represents the run summary output.
type summaryOutput struct {
	RunID     string         `json:"run_id"`
	ElapsedMS int64          `json:"elapsed_ms"`
	Counts    map[string]int `json:"counts"`
	Results   []resultOutput `json:"results"`
}

// resultOutput represents a single archive result.
type resultOutput struct {
	Archive   string `json:"archive"`
	OutputDir string `json:"output_dir"`
	Format    string `json:"format"`
	Status    string `json:"status"`
	Password  string `json:"password,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Attempts  int    `json:"attempts"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

// checkOutput represents a preflight check result.
type checkOutput struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintSummary prints the run summary in JSON format.
func (j *JSONPrinter) PrintSummary(summary model.RunSummary) error {
	counts := map[string]int{}
	for _, s := range []model.ArchiveStatus{model.ArchiveStatusSolved, model.ArchiveStatusExhausted, model.ArchiveStatusSkipped, model.ArchiveStatusFailed} {
		counts[string(s)] = 0
	}
	for s, n := range summary.CountByStatus() {
		counts[string(s)] = n
	}

	output := summaryOutput{
		RunID:     summary.RunID,
		ElapsedMS: summary.Elapsed.Milliseconds(),
		Counts:    counts,
		Results:   make([]resultOutput, 0, len(summary.Results)),
	}
	for _, r := range summary.Results {
		output.Results = append(output.Results, resultOutput{
			Archive:   r.Target.SourcePath,
			OutputDir: r.Target.OutputDir,
			Format:    string(r.Target.Format),
			Status:    string(r.Status),
			Password:  r.Password,
			Reason:    r.Reason,
			Attempts:  r.Attempts,
			ElapsedMS: r.Elapsed.Milliseconds(),
		})
	}

	return j.encode(output)
}

// PrintChecks prints preflight check results in JSON format.
func (j *JSONPrinter) PrintChecks(results []model.CheckResult) error {
	items := make([]checkOutput, len(results))
	for i, r := range results {
		items[i] = checkOutput{
			ID:      r.ID,
			Status:  string(r.Status),
			Message: r.Message,
		}
	}

	return j.encode(items)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
