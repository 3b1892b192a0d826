package storage

import (
	"context"

	"github.com/slok/unarx/internal/model"
)

// CandidateRepository is the source of the password candidates.
type CandidateRepository interface {
	// ListCandidates returns the candidates in trial order. A missing source returns
	// an error wrapping model.ErrNotFound.
	ListCandidates(ctx context.Context, path string) ([]string, error)
}

//go:generate mockery --case underscore --output storagemock --outpkg storagemock --name CandidateRepository

// ToolsRepository is the source of the extraction tools configuration.
type ToolsRepository interface {
	// GetTools returns the base tools with the stored configuration applied. A missing
	// configuration returns an error wrapping model.ErrNotFound.
	GetTools(ctx context.Context, path string, base model.ToolSet) (model.ToolSet, error)
}

//go:generate mockery --case underscore --output storagemock --outpkg storagemock --name ToolsRepository
