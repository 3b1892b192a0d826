package cleanup

import (
	"fmt"

	"github.com/slok/unarx/internal/log"
	"github.com/slok/unarx/internal/model"
	"github.com/slok/unarx/internal/utils/file"
)

// ManagerConfig is the configuration for the cleanup manager.
type ManagerConfig struct {
	Logger log.Logger
}

func (c *ManagerConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "cleanup.Manager"})
	return nil
}

// Manager removes the partial extraction artifacts of failed attempts.
type Manager struct {
	logger log.Logger
}

// NewManager returns a new cleanup manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Manager{logger: cfg.Logger}, nil
}

// CleanupIfPresent recursively removes the output dir if it exists.
func (m *Manager) CleanupIfPresent(outputDir string) error {
	removed, err := file.RemoveAllIfPresent(outputDir)
	if err != nil {
		return fmt.Errorf("could not cleanup output dir: %w", err)
	}

	if removed {
		m.logger.Debugf("Removed partial output %s", outputDir)
	}

	return nil
}

// Snapshot returns the state of the output dir.
func (m *Manager) Snapshot(outputDir string) (model.DirSnapshot, error) {
	// We only care about emptiness.
	exists, entries, err := file.DirState(outputDir, 1)
	if err != nil {
		return model.DirSnapshot{}, err
	}

	return model.DirSnapshot{Exists: exists, Entries: entries}, nil
}

// IsSolved returns true when the output dir already holds a previous extraction.
func (m *Manager) IsSolved(outputDir string) (bool, error) {
	snap, err := m.Snapshot(outputDir)
	if err != nil {
		return false, err
	}

	return snap.NonEmpty(), nil
}
