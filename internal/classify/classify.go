// Package classify maps what an extraction tool reported to a trial outcome.
//
// Tools are unreliable: some exit with a failure after writing the whole archive,
// others exit fine without writing anything. The output directory contents are the
// ground truth, the exit code is only a hint.
package classify

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/slok/unarx/internal/model"
)

// WrongPasswordSignatures are the lower-cased error texts tools print on a bad password.
var WrongPasswordSignatures = []string{
	"wrong password",
	"incorrect password",
	"crc failed",
}

// TransientSignatures are the lower-cased error texts of conditions that may go away
// on the next attempt.
var TransientSignatures = []string{
	"being used by another process",
	"resource temporarily unavailable",
	"too many open files",
	"device or resource busy",
	"cannot lock",
}

// Classify returns the outcome of an attempt. It is pure: snap must be taken by the
// caller after the tool finished.
func Classify(raw model.RawResult, password string, snap model.DirSnapshot) model.TrialOutcome {
	if raw.TimedOut {
		return model.TrialOutcome{Kind: model.OutcomeTimeout}
	}

	text := strings.ToLower(errorText(raw))
	if matchesAny(text, WrongPasswordSignatures) {
		return model.TrialOutcome{Kind: model.OutcomeWrongPassword}
	}

	if raw.Failed() && !snap.NonEmpty() {
		detail := failureDetail(raw)
		if matchesAny(text, TransientSignatures) {
			return model.TrialOutcome{Kind: model.OutcomeTransientError, Detail: detail}
		}
		return model.TrialOutcome{Kind: model.OutcomeFatalError, Detail: detail}
	}

	if snap.NonEmpty() {
		return model.TrialOutcome{Kind: model.OutcomeSuccess, Password: password}
	}

	return model.TrialOutcome{Kind: model.OutcomeAmbiguous}
}

// errorText is what the tool reported as an error. Stdout is only used when the tool
// printed nothing on stderr, it also lists the extracted file names.
func errorText(raw model.RawResult) string {
	if strings.TrimSpace(raw.Stderr) != "" {
		return raw.Stderr
	}
	return raw.Stdout
}

func matchesAny(text string, signatures []string) bool {
	for _, s := range signatures {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// maxDetailLen is in runes.
const maxDetailLen = 200

func failureDetail(raw model.RawResult) string {
	detail := strings.TrimSpace(errorText(raw))
	if detail == "" {
		return "exit code " + strconv.Itoa(raw.ExitCode)
	}

	// Keep the last line, tools print the real error at the end.
	if i := strings.LastIndex(detail, "\n"); i >= 0 {
		detail = strings.TrimSpace(detail[i+1:])
	}
	if utf8.RuneCountInString(detail) > maxDetailLen {
		detail = string([]rune(detail)[:maxDetailLen])
	}

	return detail
}
