package printer

import "github.com/slok/unarx/internal/model"

// Printer knows how to print run information in different formats.
type Printer interface {
	PrintSummary(summary model.RunSummary) error
	PrintChecks(results []model.CheckResult) error
	PrintMessage(msg string) error
}
