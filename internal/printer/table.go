package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/slok/unarx/internal/model"
)

// TablePrinter prints run information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintSummary prints the disposition of every archive followed by the totals.
func (t *TablePrinter) PrintSummary(summary model.RunSummary) error {
	if len(summary.Results) > 0 {
		tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)

		// Print header.
		fmt.Fprintln(tw, "ARCHIVE\tSTATUS\tPASSWORD\tATTEMPTS\tELAPSED\tREASON")

		// Print rows.
		for _, r := range summary.Results {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.Target.SourcePath,
				r.Status,
				orDash(r.Password),
				humanize.Comma(int64(r.Attempts)),
				FormatElapsed(r.Elapsed),
				orDash(r.Reason),
			)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	counts := summary.CountByStatus()
	fmt.Fprintf(t.writer, "\n%d solved, %d exhausted, %d skipped, %d failed\n",
		counts[model.ArchiveStatusSolved],
		counts[model.ArchiveStatusExhausted],
		counts[model.ArchiveStatusSkipped],
		counts[model.ArchiveStatusFailed],
	)
	fmt.Fprintf(t.writer, "Completed in %s\n", HumanDuration(summary.Elapsed))

	return nil
}

// PrintChecks prints preflight check results and their totals.
func (t *TablePrinter) PrintChecks(results []model.CheckResult) error {
	for _, r := range results {
		fmt.Fprintf(t.writer, "  %s %-20s %s\n", statusIcon(r.Status), r.ID, r.Message)
	}

	fmt.Fprintln(t.writer)
	_, warnings, errors := model.CountByStatus(results)
	if errors == 0 && warnings == 0 {
		fmt.Fprintln(t.writer, "All checks passed!")
		return nil
	}

	var summary []string
	if errors > 0 {
		summary = append(summary, fmt.Sprintf("%d error(s)", errors))
	}
	if warnings > 0 {
		summary = append(summary, fmt.Sprintf("%d warning(s)", warnings))
	}
	fmt.Fprintln(t.writer, strings.Join(summary, ", "))

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func statusIcon(status model.CheckStatus) string {
	switch status {
	case model.CheckStatusOK:
		return "OK"
	case model.CheckStatusWarning:
		return "!!"
	case model.CheckStatusError:
		return "XX"
	default:
		return "??"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
