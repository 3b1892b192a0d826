package model

import (
	"fmt"
	"strings"
)

// Tool argument placeholders.
const (
	ToolArgArchive  = "{archive}"
	ToolArgPassword = "{password}"
	ToolArgOutput   = "{output}"
)

// Tool is an external extraction tool invocation template.
type Tool struct {
	Binary string
	// Args may contain the ToolArg placeholders, they are replaced on each attempt.
	Args []string
}

// Validate validates the tool.
func (t Tool) Validate() error {
	if t.Binary == "" {
		return fmt.Errorf("binary is required")
	}

	joined := strings.Join(t.Args, " ")
	for _, p := range []string{ToolArgArchive, ToolArgPassword, ToolArgOutput} {
		if !strings.Contains(joined, p) {
			return fmt.Errorf("args are missing the %s placeholder", p)
		}
	}

	return nil
}

// Render returns the tool arguments for a specific attempt.
func (t Tool) Render(archive, password, output string) []string {
	r := strings.NewReplacer(
		ToolArgArchive, archive,
		ToolArgPassword, password,
		ToolArgOutput, output,
	)

	args := make([]string, 0, len(t.Args))
	for _, a := range t.Args {
		args = append(args, r.Replace(a))
	}
	return args
}

// ToolSet maps each archive format to the tool that extracts it.
type ToolSet map[Format]Tool

// Validate validates that all supported formats have a valid tool.
func (t ToolSet) Validate() error {
	for _, f := range SupportedFormats {
		tool, ok := t[f]
		if !ok {
			return fmt.Errorf("missing tool for %q format", f)
		}
		if err := tool.Validate(); err != nil {
			return fmt.Errorf("invalid %q tool: %w", f, err)
		}
	}
	return nil
}
