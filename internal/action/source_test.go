package action

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLines(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/opt/smnp/actions.txt",
		[]byte("a public 1.3.6.1 1\r\nb public 1.3.6.1 2\n\nc public 1.3.6.1 3\n"), 0o644))

	lines, err := ReadLines(fs, "/opt/smnp/actions.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"a public 1.3.6.1 1",
		"b public 1.3.6.1 2",
		"",
		"c public 1.3.6.1 3",
	}, lines)
}

func TestReadLinesEmptyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "actions.txt", nil, 0o644))

	lines, err := ReadLines(fs, "actions.txt")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestReadLinesMissingFile(t *testing.T) {
	_, err := ReadLines(afero.NewMemMapFs(), "/nowhere/actions.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "/nowhere/actions.txt")
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(nil))
	assert.Nil(t, SplitLines([]byte{0xEF, 0xBB, 0xBF}))
	assert.Equal(t, []string{"x"}, SplitLines([]byte("\xEF\xBB\xBFx")))
	assert.Equal(t, []string{"a", "b"}, SplitLines([]byte("a\rb\r")))
	assert.Equal(t, []string{"a", ""}, SplitLines([]byte("a\n\n")))
	assert.Equal(t, []string{""}, SplitLines([]byte("\n")))
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, DefaultFileName, filepath.Base(path))
	assert.True(t, filepath.IsAbs(path))
}
