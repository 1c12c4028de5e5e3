package relocate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestMove(t *testing.T) {
	t.Run("creates destination directory", func(t *testing.T) {
		root := t.TempDir()
		src := filepath.Join(root, "a.torrent")
		writeFile(t, src, "payload")

		dstDir := filepath.Join(root, "loaded", "nested")
		dst, err := Move(src, dstDir)
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(dstDir, "a.torrent"), dst)
		assert.NoFileExists(t, src)

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		root := t.TempDir()
		dstDir := filepath.Join(root, "loaded")
		require.NoError(t, os.MkdirAll(dstDir, 0o755))
		writeFile(t, filepath.Join(dstDir, "a.torrent"), "old")

		src := filepath.Join(root, "a.torrent")
		writeFile(t, src, "new")

		dst, err := Move(src, dstDir)
		require.NoError(t, err)

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("missing source", func(t *testing.T) {
		root := t.TempDir()
		_, err := Move(filepath.Join(root, "missing.torrent"), filepath.Join(root, "loaded"))
		assert.Error(t, err)
		assert.NoDirExists(t, filepath.Join(root, "loaded"))
	})

	t.Run("directory source", func(t *testing.T) {
		root := t.TempDir()
		_, err := Move(root, filepath.Join(root, "loaded"))
		assert.ErrorIs(t, err, ErrNotRegular)
	})
}

func TestCopyFile(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src.torrent")
	writeFile(t, src, "bytes")

	dst := filepath.Join(root, "dst.torrent")
	require.NoError(t, copyFile(src, dst, 0o600))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "bytes", string(data))
	assert.FileExists(t, src)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
