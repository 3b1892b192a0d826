package printer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slok/unarx/internal/printer"
)

func TestHumanDuration(t *testing.T) {
	tests := map[string]struct {
		d        time.Duration
		expected string
	}{
		"zero":       {d: 0, expected: "less than a second"},
		"sub second": {d: 300 * time.Millisecond, expected: "less than a second"},
		"1 second":   {d: 1500 * time.Millisecond, expected: "1 second"},
		"45 seconds": {d: 45 * time.Second, expected: "45 seconds"},
		"1 minute":   {d: 90 * time.Second, expected: "1 minute"},
		"12 minutes": {d: 12 * time.Minute, expected: "12 minutes"},
		"3 hours":    {d: 3 * time.Hour, expected: "3 hours"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expected, printer.HumanDuration(test.d))
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := map[string]struct {
		d        time.Duration
		expected string
	}{
		"milliseconds": {d: 350*time.Millisecond + 400*time.Microsecond, expected: "350ms"},
		"seconds":      {d: 12*time.Second + 420*time.Millisecond, expected: "12.4s"},
		"minutes":      {d: 3*time.Minute + 5*time.Second + 300*time.Millisecond, expected: "3m5s"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expected, printer.FormatElapsed(test.d))
		})
	}
}
