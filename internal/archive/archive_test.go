package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirArchiverWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logging")
	a := &DirArchiver{Dir: dir}

	payload := []byte(`[{"doomer": "500k"}]`)
	require.NoError(t, a.Write("20230101-120000-hey_jase", payload))

	got, err := os.ReadFile(filepath.Join(dir, "20230101-120000-hey_jase.json"))
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDirArchiverWriteTwice(t *testing.T) {
	a := &DirArchiver{Dir: t.TempDir()}

	require.NoError(t, a.Write("round-1", []byte("one")))
	require.NoError(t, a.Write("round-2", []byte("two")))

	entries, err := os.ReadDir(a.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
