// Package manifest compares assetbundle manifests across fetches, so a
// re-run of "fetch ab --info" only downloads bundles whose hash actually
// changed, and verifies what's already on disk still matches what the
// manifest expects.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/sergeii/twintail/internal/sekai"
	"github.com/sergeii/twintail/internal/twerrors"
)

// Changed returns the names of bundles in next whose hash differs from
// (or is entirely absent from) prev, grounded in the original client's
// get_assetbundles_differences comparison.
func Changed(prev, next sekai.AssetbundleInfo) []string {
	var changed []string
	for name, bundle := range next.Bundles {
		old, ok := prev.Bundles[name]
		if !ok || old.Hash != bundle.Hash {
			changed = append(changed, name)
		}
	}
	return changed
}

// VerifyLocal checks that every bundle name's file already on disk under
// dir hashes to the digest the manifest expects, running the SHA-256 scan
// across bundles concurrently since a full asset tree can hold tens of
// thousands of files. All comparisons must succeed for VerifyLocal to
// return nil; it returns the first hash mismatch or read failure, after
// the remaining checks have run.
func VerifyLocal(dir string, info sekai.AssetbundleInfo, names []string) error {
	g := new(errgroup.Group)
	g.SetLimit(16)

	for _, name := range names {
		name := name
		bundle, ok := info.Bundles[name]
		if !ok {
			continue
		}
		g.Go(func() error {
			data, err := os.ReadFile(dir + "/" + name)
			if err != nil {
				return twerrors.New(twerrors.KindIO, "manifest.VerifyLocal", err)
			}
			sum := sha256.Sum256(data)
			if hex.EncodeToString(sum[:]) != bundle.Hash && bundle.Hash != "" {
				return twerrors.New(twerrors.KindProtocol, "manifest.VerifyLocal",
					errHashMismatch(name))
			}
			return nil
		})
	}
	return g.Wait()
}

type mismatchError struct{ name string }

func (e mismatchError) Error() string {
	return "manifest: local file for " + e.name + " does not match the manifest hash"
}

func errHashMismatch(name string) error {
	return mismatchError{name: name}
}
