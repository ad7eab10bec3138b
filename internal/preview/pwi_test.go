package preview

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msageha/aslrun/internal/fsl"
)

// anyShape reports a fixed shape for every path.
type anyShape struct{}

func (anyShape) Shape(string) ([]int, error) {
	return []int{4, 4, 4}, nil
}

// fakeTool is a stand-in for asl_file that creates the --mean output.
func fakeTool(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "asl_file")
	script := `#!/bin/sh
for a in "$@"; do
  case "$a" in
    --mean=*) : > "${a#--mean=}" ;;
  esac
done
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func countPreviewDirs(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(os.TempDir())
	require.NoError(t, err)
	n := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "aslrun-pwi-") {
			n++
		}
	}
	return n
}

func TestPWI_Success(t *testing.T) {
	tool := fakeTool(t)
	acc := acceptedSession(t, 8, true)
	before := countPreviewDirs(t)

	e := &fsl.Executor{
		Out:     devNull(t),
		Resolve: func(string) string { return tool },
	}
	dest := filepath.Join(t.TempDir(), "pwi.nii.gz")
	shape, err := PWI(context.Background(), e, anyShape{}, acc, dest)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 4, 4}, shape)

	_, err = os.Stat(dest)
	assert.NoError(t, err, "destination image should exist")
	assert.Equal(t, before, countPreviewDirs(t), "workspace should be removed")
}

func TestPWI_NoDestination(t *testing.T) {
	tool := fakeTool(t)
	acc := acceptedSession(t, 8, true)

	e := &fsl.Executor{
		Out:     devNull(t),
		Resolve: func(string) string { return tool },
	}
	shape, err := PWI(context.Background(), e, anyShape{}, acc, "")
	require.NoError(t, err)
	assert.Equal(t, []int{4, 4, 4}, shape)
}

func TestPWI_CommandFailureCleansUp(t *testing.T) {
	acc := acceptedSession(t, 8, true)
	before := countPreviewDirs(t)

	e := &fsl.Executor{
		Out:     devNull(t),
		Resolve: func(string) string { return "false" },
	}
	_, err := PWI(context.Background(), e, anyShape{}, acc, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate perfusion-weighted image")
	assert.Equal(t, before, countPreviewDirs(t), "workspace should be removed on failure")
}

func devNull(t *testing.T) *os.File {
	t.Helper()
	f, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}
