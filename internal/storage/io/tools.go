package io

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/slok/unarx/internal/model"
	"github.com/slok/unarx/internal/storage"
)

// ToolsYAMLRepository loads the extraction tools configuration from YAML files.
type ToolsYAMLRepository struct {
	fs fs.FS
}

// NewToolsYAMLRepository creates a new YAML tools repository.
func NewToolsYAMLRepository(filesystem fs.FS) *ToolsYAMLRepository {
	return &ToolsYAMLRepository{fs: filesystem}
}

// GetTools loads the tools configuration file and applies it over the base tools.
// Formats missing from the file keep the base tool, and a tool without args keeps
// the base tool args with the configured binary.
func (r *ToolsYAMLRepository) GetTools(ctx context.Context, path string, base model.ToolSet) (model.ToolSet, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("tools config file %q: %w", path, model.ErrNotFound)
		}
		return nil, fmt.Errorf("reading tools config file: %w", err)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var cfg ToolsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid tools configuration: %w", err)
	}

	tools := cfg.toModel(base)
	if err := tools.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tools configuration: %w: %w", model.ErrNotValid, err)
	}

	return tools, nil
}

// ToolsConfig represents the YAML structure of the tools configuration, keyed by
// archive format (rar, 7z, zip).
type ToolsConfig map[string]ToolConfig

// ToolConfig represents the YAML structure of a single tool.
type ToolConfig struct {
	Binary string   `yaml:"binary"`
	Args   []string `yaml:"args"`
}

func (c ToolsConfig) validate() error {
	for k, t := range c {
		if _, err := model.FormatFromString(k); err != nil {
			return fmt.Errorf("unknown archive format %q", k)
		}
		if t.Binary == "" && len(t.Args) == 0 {
			return fmt.Errorf("%q tool requires a binary or args", k)
		}
	}
	return nil
}

func (c ToolsConfig) toModel(base model.ToolSet) model.ToolSet {
	tools := make(model.ToolSet, len(base))
	for f, t := range base {
		tools[f] = model.Tool{Binary: t.Binary, Args: append([]string(nil), t.Args...)}
	}

	for k, tc := range c {
		f, _ := model.FormatFromString(k)
		t := tools[f]
		if tc.Binary != "" {
			t.Binary = tc.Binary
		}
		if len(tc.Args) > 0 {
			t.Args = append([]string(nil), tc.Args...)
		}
		tools[f] = t
	}

	return tools
}

var _ storage.ToolsRepository = &ToolsYAMLRepository{}
