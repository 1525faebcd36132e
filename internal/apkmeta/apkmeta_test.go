package apkmeta_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sergeii/twintail/internal/apkmeta"
)

func writeTestAPK(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("res/raw/6350e2ec327334c8a9b7f494f344a761.bin")
	require.NoError(t, err)
	_, err = w.Write([]byte("build 4.1.2 hash ab12cd34-ef56-7890-ab12-cd34ef567890 trailer"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}

func TestExtractFromAPK(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.apk")
	writeTestAPK(t, path)

	info, err := apkmeta.Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "4.1.2", info.AppVersion)
	assert.Equal(t, "ab12cd34-ef56-7890-ab12-cd34ef567890", info.AppHash)
}

func TestExtractFailsWithoutCandidateResource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.apk")

	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	_, err = zw.Create("AndroidManifest.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = apkmeta.Extract(path)
	assert.Error(t, err)
}
