package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/unarx/internal/utils/file"
)

func TestDirState(t *testing.T) {
	tests := map[string]struct {
		setup      func(t *testing.T, path string)
		max        int
		expExists  bool
		expEntries int
	}{
		"A missing path should not exist.": {
			setup:     func(t *testing.T, path string) {},
			expExists: false,
		},

		"An empty dir should exist without entries.": {
			setup: func(t *testing.T, path string) {
				require.NoError(t, os.Mkdir(path, 0o755))
			},
			expExists: true,
		},

		"A dir with files should count them.": {
			setup: func(t *testing.T, path string) {
				require.NoError(t, os.MkdirAll(filepath.Join(path, "sub"), 0o755))
				require.NoError(t, os.WriteFile(filepath.Join(path, "a.txt"), []byte("a"), 0o644))
			},
			expExists:  true,
			expEntries: 2,
		},

		"Counting should stop at max entries.": {
			setup: func(t *testing.T, path string) {
				require.NoError(t, os.Mkdir(path, 0o755))
				for _, n := range []string{"a", "b", "c"} {
					require.NoError(t, os.WriteFile(filepath.Join(path, n), []byte(n), 0o644))
				}
			},
			max:        1,
			expExists:  true,
			expEntries: 1,
		},

		"A regular file should be reported as a non empty path.": {
			setup: func(t *testing.T, path string) {
				require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
			},
			expExists:  true,
			expEntries: 1,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out")
			test.setup(t, path)

			exists, entries, err := file.DirState(path, test.max)
			require.NoError(t, err)
			assert.Equal(t, test.expExists, exists)
			assert.Equal(t, test.expEntries, entries)
		})
	}
}

func TestRemoveAllIfPresent(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "out")
	require.NoError(os.MkdirAll(filepath.Join(path, "nested"), 0o755))
	require.NoError(os.WriteFile(filepath.Join(path, "nested", "f"), []byte("f"), 0o644))

	removed, err := file.RemoveAllIfPresent(path)
	require.NoError(err)
	assert.True(removed)
	assert.NoDirExists(path)

	// Second call is a no-op.
	removed, err = file.RemoveAllIfPresent(path)
	require.NoError(err)
	assert.False(removed)
}
