package extract

import (
	"context"

	"github.com/slok/unarx/internal/model"
)

// Extractor runs a single extraction attempt of an archive with a password.
//
// Implementations must honor the request timeout killing everything they spawned,
// the result then has TimedOut set. Partial files written into the output dir are
// left in place. An error is only returned when the attempt could not be made at
// all (e.g. missing binary, cancelled context).
type Extractor interface {
	Attempt(ctx context.Context, req model.AttemptRequest) (*model.RawResult, error)
}

//go:generate mockery --case underscore --output extractmock --outpkg extractmock --name Extractor
