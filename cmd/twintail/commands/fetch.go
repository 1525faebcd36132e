// Package commands implements the leaf CLI commands: everything under
// fetch, encrypt, decrypt and app-info.
package commands

import (
	"context"
	"crypto/md5" //nolint:gosec // MD5 is the CDN's own integrity digest, not used for anything cryptographic
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/sergeii/twintail/cmd/twintail/commander"
	"github.com/sergeii/twintail/internal/assetbundle"
	"github.com/sergeii/twintail/internal/cryptoprim"
	"github.com/sergeii/twintail/internal/fsutil"
	"github.com/sergeii/twintail/internal/handshake"
	"github.com/sergeii/twintail/internal/manifest"
	"github.com/sergeii/twintail/internal/pipeline"
	"github.com/sergeii/twintail/internal/progressui"
	"github.com/sergeii/twintail/internal/region"
	"github.com/sergeii/twintail/internal/sekai"
	"github.com/sergeii/twintail/internal/suitemaster"
	"github.com/sergeii/twintail/internal/twerrors"
)

type FetchCmd struct {
	Ab     FetchAbCmd     `cmd:"" help:"Download assetbundles."`
	AbInfo FetchAbInfoCmd `cmd:"" name:"ab-info" help:"Download the assetbundle manifest and write it to a JSON file."`
	Suite  FetchSuiteCmd  `cmd:"" help:"Download and decrypt suitemaster gameplay data."`
	Save   FetchSaveCmd   `cmd:"" help:"Recover save data via an account-inherit transfer."`
}

type FetchAbInfoCmd struct {
	Out string `arg:"" type:"path" help:"File to write the manifest JSON to."`
}

func (c FetchAbInfoCmd) Run(ctx context.Context, g *commander.Globals) error {
	client, creds, err := newClient(ctx, g)
	if err != nil {
		return err
	}
	resolver := handshake.NewResolver(client, g.Logger)
	sess, _, err := resolver.Authenticate(ctx, creds.AppVersion)
	if err != nil {
		return err
	}
	info, err := resolver.ResolveAssetInfo(ctx, &sess, creds.AppVersion, creds.AppHash)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return twerrors.New(twerrors.KindCodec, "fetch ab-info", err)
	}
	return fsutil.WriteFileAtomic(c.Out, data, 0o644)
}

type FetchAbCmd struct {
	OutDir   string `arg:"" type:"path" help:"Directory to write decoded bundles to."`
	Filter   string `help:"Only fetch bundles whose name matches this regular expression."`
	Encrypt  bool   `help:"Write bundles still in their obfuscated on-disk form."`
	Info     string `type:"path" help:"Path to a previously saved ab-info manifest, to fetch only changed bundles."`
	NoUpdate bool   `help:"With --info, skip diffing and fetch every bundle in the given manifest as-is."`
}

func (c FetchAbCmd) Run(ctx context.Context, g *commander.Globals) error {
	if c.NoUpdate && c.Info == "" {
		return twerrors.New(twerrors.KindConfig, "fetch ab", fmt.Errorf("--no-update requires --info"))
	}
	var filter *regexp.Regexp
	if c.Filter != "" {
		re, err := regexp.Compile(c.Filter)
		if err != nil {
			return twerrors.New(twerrors.KindConfig, "fetch ab", fmt.Errorf("malformed regex filter: %w", err))
		}
		filter = re
	}

	client, creds, err := newClient(ctx, g)
	if err != nil {
		return err
	}
	resolver := handshake.NewResolver(client, g.Logger)
	sess, _, err := resolver.Authenticate(ctx, creds.AppVersion)
	if err != nil {
		return err
	}

	var wanted map[string]sekai.Bundle
	switch {
	case c.Info != "" && c.NoUpdate:
		// Replace the server manifest with the user-supplied one outright
		// and fetch everything it lists.
		user, err := loadManifest(c.Info)
		if err != nil {
			return err
		}
		sess.HostHash = user.HostHash
		wanted = user.Bundles
	case c.Info != "":
		info, err := resolver.ResolveAssetInfo(ctx, &sess, creds.AppVersion, creds.AppHash)
		if err != nil {
			return err
		}
		prev, err := loadManifest(c.Info)
		if err != nil {
			return err
		}
		wanted = map[string]sekai.Bundle{}
		for _, name := range manifest.Changed(prev, info) {
			wanted[name] = info.Bundles[name]
		}
	default:
		info, err := resolver.ResolveAssetInfo(ctx, &sess, creds.AppVersion, creds.AppHash)
		if err != nil {
			return err
		}
		wanted = info.Bundles
	}

	var needed uint64
	for _, bundle := range wanted {
		if bundle.FileSize > 0 {
			needed += uint64(bundle.FileSize)
		}
	}
	if err := fsutil.EnsureSpace(c.OutDir, needed); err != nil {
		return err
	}

	var jobs []pipeline.Job
	for name, bundle := range wanted {
		if filter != nil && !filter.MatchString(name) {
			continue
		}
		name, bundle := name, bundle
		jobs = append(jobs, pipeline.Job{
			ID: name,
			Do: func(ctx context.Context) error {
				raw, err := client.GetAssetbundle(ctx, sess.HostHash, bundle.BundleName, bundle.Hash)
				if err != nil {
					return err
				}
				if bundle.Hash != "" {
					if err := verifyMD5(raw, bundle.Hash); err != nil {
						return err
					}
				}
				if !c.Encrypt {
					raw, err = assetbundle.Decode(raw)
					if err != nil {
						return err
					}
				}
				return fsutil.WriteFileAtomic(filepath.Join(c.OutDir, name), raw, 0o644)
			},
		})
	}

	sink := progressSink(g, "fetch ab")
	summary := pipeline.Run(ctx, jobs, pipeline.Config{
		Concurrency: g.Concurrency, RetryBudget: g.Retry, Sink: sink, Logger: g.Logger,
	})
	return summaryToError(summary)
}

// verifyMD5 checks raw's MD5 digest against the hex digest the manifest
// recorded for it, reporting HashMismatch (retryable, consumes budget) on
// a mismatch. This runs over the ciphertext exactly as received from the
// CDN, before any bundle transform.
func verifyMD5(raw []byte, expected string) error {
	sum := md5.Sum(raw) //nolint:gosec // integrity check against the CDN's own digest, not a security boundary
	got := hex.EncodeToString(sum[:])
	if got != expected {
		return twerrors.New(twerrors.KindNetwork, "fetch ab",
			fmt.Errorf("HashMismatch: expected %s, got %s", expected, got))
	}
	return nil
}

type FetchSuiteCmd struct {
	OutDir string `arg:"" type:"path" help:"Directory to write decrypted suitemaster JSON files to."`
}

func (c FetchSuiteCmd) Run(ctx context.Context, g *commander.Globals) error {
	client, creds, err := newClient(ctx, g)
	if err != nil {
		return err
	}
	r, err := g.ParsedRegion()
	if err != nil {
		return twerrors.New(twerrors.KindConfig, "fetch suite", err)
	}

	resolver := handshake.NewResolver(client, g.Logger)
	_, auth, err := resolver.Authenticate(ctx, creds.AppVersion)
	if err != nil {
		return err
	}

	suiteKey := r.Keys().SuiteKey
	jobs := make([]pipeline.Job, 0, len(auth.SuiteMasterSplitPath))
	for _, splitPath := range auth.SuiteMasterSplitPath {
		splitPath := splitPath
		jobs = append(jobs, pipeline.Job{
			ID: splitPath,
			Do: func(ctx context.Context) error {
				raw, err := client.GetSuitemasterFile(ctx, splitPath)
				if err != nil {
					return err
				}
				f, err := suitemaster.Decrypt(raw, suiteKey)
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(f.Value, "", "  ")
				if err != nil {
					return twerrors.New(twerrors.KindCodec, "fetch suite", err)
				}
				return fsutil.WriteFileAtomic(filepath.Join(c.OutDir, f.Key+".json"), data, 0o644)
			},
		})
	}

	sink := progressSink(g, "fetch suite")
	summary := pipeline.Run(ctx, jobs, pipeline.Config{
		Concurrency: g.Concurrency, RetryBudget: g.Retry, Sink: sink, Logger: g.Logger,
	})
	return summaryToError(summary)
}

type FetchSaveCmd struct {
	ID       string `required:"" help:"Account inherit ID."`
	Password string `required:"" help:"Account inherit password."`
	Out      string `arg:"" type:"path" help:"File to write the recovered save-data JSON to."`
}

func (c FetchSaveCmd) Run(ctx context.Context, g *commander.Globals) error {
	client, _, err := newClient(ctx, g)
	if err != nil {
		return err
	}
	r, err := g.ParsedRegion()
	if err != nil {
		return twerrors.New(twerrors.KindConfig, "fetch save", err)
	}
	saveKey := r.Keys().SaveKey

	inherit, err := client.GetUserInherit(ctx, c.ID, c.Password, true, saveKey)
	if err != nil {
		return err
	}
	if inherit.Credential == "" {
		return twerrors.New(twerrors.KindProtocol, "fetch save", fmt.Errorf("server returned no credential"))
	}

	claims, err := cryptoprim.VerifyAndExtractSave(inherit.Credential, saveKey)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(claims, "", "  ")
	if err != nil {
		return twerrors.New(twerrors.KindCodec, "fetch save", err)
	}
	return fsutil.WriteFileAtomic(c.Out, data, 0o600)
}

// newClient resolves app credentials (from flags or, failing that, does
// not attempt network/APK auto-resolution here — callers that need it use
// the app-info command first) and builds a client bound to g's region.
func newClient(_ context.Context, g *commander.Globals) (*sekai.Client, region.AppCredentials, error) {
	r, err := g.ParsedRegion()
	if err != nil {
		return nil, region.AppCredentials{}, twerrors.New(twerrors.KindConfig, "newClient", err)
	}
	platform, err := g.ParsedPlatform()
	if err != nil {
		return nil, region.AppCredentials{}, twerrors.New(twerrors.KindConfig, "newClient", err)
	}
	if g.AppVersion == "" || g.AppHash == "" {
		return nil, region.AppCredentials{}, twerrors.New(twerrors.KindConfig, "newClient",
			fmt.Errorf("--app-version and --app-hash are required (resolve them with app-info)"))
	}
	creds := region.AppCredentials{AppVersion: g.AppVersion, AppHash: g.AppHash, Platform: platform}
	return sekai.New(r, creds, g.Logger), creds, nil
}

func loadManifest(path string) (sekai.AssetbundleInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sekai.AssetbundleInfo{}, twerrors.New(twerrors.KindIO, "fetch ab", err)
	}
	var info sekai.AssetbundleInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return sekai.AssetbundleInfo{}, twerrors.New(twerrors.KindCodec, "fetch ab", err)
	}
	return info, nil
}

func progressSink(g *commander.Globals, label string) pipeline.ProgressSink {
	if g.Quiet {
		return pipeline.NopSink{}
	}
	return progressui.New(os.Stderr, label)
}

func summaryToError(s pipeline.Summary) error {
	if s.Cancelled {
		return twerrors.New(twerrors.KindCancelled, "pipeline", fmt.Errorf("batch cancelled"))
	}
	if s.Failed > 0 {
		return twerrors.New(twerrors.KindNetwork, "pipeline", fmt.Errorf("%d of %d jobs failed", s.Failed, s.Total))
	}
	return nil
}

