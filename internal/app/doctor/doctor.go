package doctor

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/slok/unarx/internal/log"
	"github.com/slok/unarx/internal/model"
)

// ServiceConfig is the configuration for the doctor service.
type ServiceConfig struct {
	Tools model.ToolSet
	// LookPath resolves tool binaries, defaults to exec.LookPath.
	LookPath func(file string) (string, error)
	Logger   log.Logger
}

func (c *ServiceConfig) defaults() error {
	if len(c.Tools) == 0 {
		return fmt.Errorf("tools are required")
	}
	if c.LookPath == nil {
		c.LookPath = exec.LookPath
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Doctor"})
	return nil
}

// Service runs the preflight checks of the extraction tools.
type Service struct {
	tools    model.ToolSet
	lookPath func(file string) (string, error)
	logger   log.Logger
}

// NewService creates a new doctor service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		tools:    cfg.Tools,
		lookPath: cfg.LookPath,
		logger:   cfg.Logger,
	}, nil
}

// Run checks every supported format has a valid tool whose binary is available.
// Results are returned in the supported formats order.
func (s *Service) Run(ctx context.Context) ([]model.CheckResult, error) {
	results := make([]model.CheckResult, 0, len(model.SupportedFormats))
	found := map[string]string{}

	for _, f := range model.SupportedFormats {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		id := string(f) + "_tool"
		tool, ok := s.tools[f]
		if !ok {
			results = append(results, model.CheckResult{ID: id, Status: model.CheckStatusError, Message: "no tool configured"})
			continue
		}
		if err := tool.Validate(); err != nil {
			results = append(results, model.CheckResult{ID: id, Status: model.CheckStatusError, Message: fmt.Sprintf("invalid tool: %s", err)})
			continue
		}

		path, ok := found[tool.Binary]
		if !ok {
			p, err := s.lookPath(tool.Binary)
			if err != nil {
				s.logger.Debugf("Binary %q lookup failed: %s", tool.Binary, err)
				results = append(results, model.CheckResult{ID: id, Status: model.CheckStatusError, Message: fmt.Sprintf("%s not found", tool.Binary)})
				continue
			}
			found[tool.Binary] = p
			path = p
		}

		results = append(results, model.CheckResult{ID: id, Status: model.CheckStatusOK, Message: fmt.Sprintf("found at %s", path)})
	}

	return results, nil
}
