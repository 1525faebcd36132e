package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sergeii/twintail/internal/fsutil"
)

func TestWriteFileAtomicCreatesFileWithContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.bin")

	err := fsutil.WriteFileAtomic(path, []byte("payload"), 0o644)
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestWriteFileAtomicOverwritesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	err := fsutil.WriteFileAtomic(path, []byte("new"), 0o644)
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestScanPathNonRecursiveIgnoresSubdirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("b"), 0o644))

	files, err := fsutil.ScanPath(dir, false)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestScanPathRecursiveWalksSubdirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("b"), 0o644))

	files, err := fsutil.ScanPath(dir, true)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestScanPathOnSingleFileReturnsThatFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	files, err := fsutil.ScanPath(path, false)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestEnsureSpaceAcceptsZeroRequirement(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, fsutil.EnsureSpace(dir, 0))
}
