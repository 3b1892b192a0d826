package io_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/unarx/internal/model"
	"github.com/slok/unarx/internal/storage/io"
)

func TestWordlistRepositoryListCandidates(t *testing.T) {
	tests := map[string]struct {
		data          string
		missing       bool
		expCandidates []string
		expErr        error
	}{
		"Unix line endings should be split.": {
			data:          "one\ntwo\nthree\n",
			expCandidates: []string{"one", "two", "three"},
		},

		"Windows line endings should be split.": {
			data:          "one\r\ntwo\r\nthree",
			expCandidates: []string{"one", "two", "three"},
		},

		"Blank lines should be dropped.": {
			data:          "\none\n   \n\t\ntwo\n\n",
			expCandidates: []string{"one", "two"},
		},

		"Candidates should be kept verbatim.": {
			data:          "  spaced  \npass word\n",
			expCandidates: []string{"  spaced  ", "pass word"},
		},

		"Duplicates should be kept in order.": {
			data:          "a\nb\na\n",
			expCandidates: []string{"a", "b", "a"},
		},

		"An empty file should return no candidates.": {
			data:          "",
			expCandidates: []string{},
		},

		"A missing file should return not found.": {
			missing: true,
			expErr:  model.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			fs := fstest.MapFS{}
			if !test.missing {
				fs["wordlist.txt"] = &fstest.MapFile{Data: []byte(test.data)}
			}

			repo := io.NewWordlistRepository(fs)
			got, err := repo.ListCandidates(context.TODO(), "wordlist.txt")

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}
			require.NoError(err)
			assert.Equal(test.expCandidates, got)
		})
	}
}
