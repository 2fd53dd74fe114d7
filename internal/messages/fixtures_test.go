package messages

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for fixtures:
// - Every source under testdata/fixtures produces a sidecar byte-identical
//   to the .json file next to it
// - A source without a .json file is skipped and writes no sidecar

func TestFixtures(t *testing.T) {
	t.Parallel()

	sources, err := filepath.Glob(filepath.Join("testdata", "fixtures", "*.*"))
	require.NoError(t, err)

	found := 0
	for _, src := range sources {
		if filepath.Ext(src) == ".json" {
			continue
		}
		found++

		t.Run(filepath.Base(src), func(t *testing.T) {
			t.Parallel()

			content, err := os.ReadFile(src)
			require.NoError(t, err)
			golden, err := os.ReadFile(strings.TrimSuffix(src, filepath.Ext(src)) + ".json")
			noGolden := errors.Is(err, fs.ErrNotExist)
			if !noGolden {
				require.NoError(t, err)
			}

			root := t.TempDir()
			out := filepath.Join(root, "out")
			path := filepath.Join(root, filepath.Base(src))
			res, err := runSource(t, Options{WorkingDir: root, MessagesDir: out}, path, string(content))
			require.NoError(t, err)

			if noGolden {
				assert.True(t, res.Skipped)
				assert.Empty(t, res.OutputPath)
				assert.NoDirExists(t, out)
				return
			}
			require.NotEmpty(t, res.OutputPath)

			written, err := os.ReadFile(res.OutputPath)
			require.NoError(t, err)
			assert.Equal(t, string(golden), string(written))
		})
	}
	assert.NotZero(t, found)
}
