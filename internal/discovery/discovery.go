package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/slok/unarx/internal/conventions"
	"github.com/slok/unarx/internal/log"
	"github.com/slok/unarx/internal/model"
)

// FinderConfig is the configuration for the archive finder.
type FinderConfig struct {
	Logger log.Logger
}

func (c *FinderConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "discovery.Finder"})
	return nil
}

// Finder discovers the archives to unlock.
type Finder struct {
	logger log.Logger
}

// NewFinder returns a new archive finder.
func NewFinder(cfg FinderConfig) (*Finder, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Finder{logger: cfg.Logger}, nil
}

// FindFile returns the target of a single archive file.
func (f *Finder) FindFile(ctx context.Context, path string) (*model.ArchiveTarget, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("archive file %q: %w", path, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not stat archive file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("archive %q is not a regular file: %w", path, model.ErrNotValid)
	}

	target, ok := newTarget(path)
	if !ok {
		return nil, fmt.Errorf("archive %q has an unsupported extension: %w", path, model.ErrNotValid)
	}

	return &target, nil
}

// FindDir walks the directory recursively and returns the targets of every regular
// file with a supported archive extension, in lexical walk order.
func (f *Finder) FindDir(ctx context.Context, dir string) ([]model.ArchiveTarget, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("archive directory %q: %w", dir, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not stat archive directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%q is not a directory: %w", dir, model.ErrNotValid)
	}

	targets := []model.ArchiveTarget{}
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.Type().IsRegular() {
			return nil
		}

		target, ok := newTarget(path)
		if !ok {
			return nil
		}
		f.logger.Debugf("Archive found: %s", path)
		targets = append(targets, target)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not walk archive directory: %w", err)
	}

	return targets, nil
}

func newTarget(path string) (model.ArchiveTarget, bool) {
	format, ok := model.FormatFromPath(path)
	if !ok {
		return model.ArchiveTarget{}, false
	}

	return model.ArchiveTarget{
		SourcePath: path,
		OutputDir:  conventions.OutputDir(path),
		Format:     format,
	}, true
}
