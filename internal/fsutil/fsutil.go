// Package fsutil implements the filesystem conventions twintail writes
// output under: atomic tmp-and-rename writes so a crash or Ctrl-C never
// leaves a half-written bundle or suitemaster file on disk, and a small
// directory scanner for the encrypt/decrypt CLI commands' path arguments.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sergeii/twintail/internal/twerrors"
)

// WriteFileAtomic writes data to path by first writing to a sibling
// temporary file in the same directory, then renaming it into place.
// Renames within a single filesystem are atomic, so a concurrent reader
// (or a process killed mid-write) never observes a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return twerrors.New(twerrors.KindIO, "fsutil.WriteFileAtomic", err)
	}

	tmp, err := os.CreateTemp(dir, ".twintail-*.tmp")
	if err != nil {
		return twerrors.New(twerrors.KindIO, "fsutil.WriteFileAtomic", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return twerrors.New(twerrors.KindIO, "fsutil.WriteFileAtomic", err)
	}
	if err := tmp.Close(); err != nil {
		return twerrors.New(twerrors.KindIO, "fsutil.WriteFileAtomic", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return twerrors.New(twerrors.KindIO, "fsutil.WriteFileAtomic", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return twerrors.New(twerrors.KindIO, "fsutil.WriteFileAtomic", err)
	}
	return nil
}

// ScanPath lists the regular files under root. When recursive is false
// only root's immediate entries are returned, matching a CLI user's
// expectation that a bare directory argument doesn't silently walk an
// entire asset tree.
func ScanPath(root string, recursive bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, twerrors.New(twerrors.KindIO, "fsutil.ScanPath", err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	if !recursive {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, twerrors.New(twerrors.KindIO, "fsutil.ScanPath", err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				files = append(files, filepath.Join(root, e.Name()))
			}
		}
		return files, nil
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, twerrors.New(twerrors.KindIO, "fsutil.ScanPath", err)
	}
	return files, nil
}

// EnsureSpace returns an error if available space under dir is less than
// needed bytes, so a large batch fetch fails fast instead of partway
// through a write.
func EnsureSpace(dir string, needed uint64) error {
	var stat statfsResult
	if err := getStatfs(dir, &stat); err != nil {
		return twerrors.New(twerrors.KindIO, "fsutil.EnsureSpace", err)
	}
	if stat.availableBytes < needed {
		return twerrors.New(twerrors.KindIO, "fsutil.EnsureSpace",
			fmt.Errorf("not enough space: need %d bytes, have %d available", needed, stat.availableBytes))
	}
	return nil
}
