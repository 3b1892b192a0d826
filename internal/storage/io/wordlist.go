package io

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/slok/unarx/internal/model"
	"github.com/slok/unarx/internal/storage"
)

// WordlistRepository loads password candidates from newline delimited files.
type WordlistRepository struct {
	fs fs.FS
}

// NewWordlistRepository creates a new wordlist repository.
func NewWordlistRepository(filesystem fs.FS) *WordlistRepository {
	return &WordlistRepository{fs: filesystem}
}

// ListCandidates returns the candidates of the wordlist in file order. Lines are
// split on "\n" or "\r\n" and kept verbatim, blank (or whitespace only) lines are
// dropped.
func (r *WordlistRepository) ListCandidates(ctx context.Context, path string) ([]string, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("wordlist %q: %w", path, model.ErrNotFound)
		}
		return nil, fmt.Errorf("reading wordlist: %w", err)
	}

	candidates := []string{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		candidates = append(candidates, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading wordlist lines: %w", err)
	}

	return candidates, nil
}

var _ storage.CandidateRepository = &WordlistRepository{}
