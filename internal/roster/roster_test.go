package roster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_TrimsAndSkipsNoise(t *testing.T) {
	path := writeList(t, "alva\n  birk  \n\n# a comment\ncasper\n")

	entries, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alva", "birk", "casper"}, entries)
}

func TestLoad_MissingFileDegradesToEmpty(t *testing.T) {
	entries, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoad_EmptyFile(t *testing.T) {
	entries, err := Load(writeList(t, ""))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
