package manifest_test

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sergeii/twintail/internal/manifest"
	"github.com/sergeii/twintail/internal/sekai"
)

func TestChangedDetectsNewAndModifiedBundles(t *testing.T) {
	prev := sekai.AssetbundleInfo{Bundles: map[string]sekai.Bundle{
		"a": {BundleName: "a", Hash: "h1"},
		"b": {BundleName: "b", Hash: "h2"},
	}}
	next := sekai.AssetbundleInfo{Bundles: map[string]sekai.Bundle{
		"a": {BundleName: "a", Hash: "h1"},        // unchanged
		"b": {BundleName: "b", Hash: "h2-new"},    // changed
		"c": {BundleName: "c", Hash: "h3"},        // new
	}}

	changed := manifest.Changed(prev, next)
	assert.ElementsMatch(t, []string{"b", "c"}, changed)
}

func TestVerifyLocalPassesWhenHashesMatch(t *testing.T) {
	dir := t.TempDir()
	data := []byte("bundle contents")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), data, 0o644))

	sum := sha256.Sum256(data)
	info := sekai.AssetbundleInfo{Bundles: map[string]sekai.Bundle{
		"a": {Hash: hex.EncodeToString(sum[:])},
	}}

	err := manifest.VerifyLocal(dir, info, []string{"a"})
	assert.NoError(t, err)
}

func TestVerifyLocalFailsOnMismatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte("wrong"), 0o644))

	info := sekai.AssetbundleInfo{Bundles: map[string]sekai.Bundle{
		"a": {Hash: "deadbeef"},
	}}

	err := manifest.VerifyLocal(dir, info, []string{"a"})
	assert.Error(t, err)
}
