// Package relocate moves ingested torrent files into the archive directory.
package relocate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/s0up4200/seedkeeper/pathutil"
)

// ErrNotRegular is returned when the source is not a regular file
var ErrNotRegular = errors.New("source is not a regular file")

// Move moves src into dstDir, keeping its file name, and returns the new path.
// dstDir is created if missing and an existing file of the same name is
// replaced. Moves across filesystems fall back to copy and remove.
func Move(src, dstDir string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s: %w", src, ErrNotRegular)
	}

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dstDir, err)
	}

	dst := filepath.Join(dstDir, pathutil.FileName(src))

	err = os.Rename(src, dst)
	if err == nil {
		return dst, nil
	}
	if !isCrossDevice(err) {
		return "", fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
	}

	if err := copyFile(src, dst, info.Mode().Perm()); err != nil {
		return "", err
	}
	if err := os.Remove(src); err != nil {
		return dst, fmt.Errorf("failed to remove %s after copy: %w", src, err)
	}
	return dst, nil
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".relocate-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", filepath.Dir(dst), err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", tmpName, dst, err)
	}
	return nil
}
