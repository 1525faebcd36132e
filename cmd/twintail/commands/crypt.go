package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sergeii/twintail/cmd/twintail/commander"
	"github.com/sergeii/twintail/internal/assetbundle"
	"github.com/sergeii/twintail/internal/fsutil"
	"github.com/sergeii/twintail/internal/pipeline"
	"github.com/sergeii/twintail/internal/suitemaster"
	"github.com/sergeii/twintail/internal/twerrors"
)

type EncryptCmd struct {
	Ab    EncryptAbCmd    `cmd:"" help:"Obfuscate plain Unity bundles into the on-disk format."`
	Suite EncryptSuiteCmd `cmd:"" help:"Encrypt plain suitemaster JSON files."`
}

type DecryptCmd struct {
	Ab    DecryptAbCmd    `cmd:"" help:"Deobfuscate on-disk bundles into plain Unity bundles."`
	Suite DecryptSuiteCmd `cmd:"" help:"Decrypt suitemaster files into plain JSON."`
}

type EncryptAbCmd struct {
	In        string `arg:"" type:"path" help:"File or directory of plain bundles."`
	Out       string `arg:"" type:"path" help:"Output directory."`
	Recursive bool   `help:"Recurse into subdirectories."`
}

func (c EncryptAbCmd) Run(ctx context.Context, g *commander.Globals) error {
	return cryptoWalk(ctx, g, "encrypt ab", c.In, c.Out, c.Recursive, func(data []byte) ([]byte, error) {
		return assetbundle.Encode(data), nil
	})
}

type DecryptAbCmd struct {
	In        string `arg:"" type:"path" help:"File or directory of obfuscated bundles."`
	Out       string `arg:"" type:"path" help:"Output directory."`
	Recursive bool   `help:"Recurse into subdirectories."`
}

func (c DecryptAbCmd) Run(ctx context.Context, g *commander.Globals) error {
	return cryptoWalk(ctx, g, "decrypt ab", c.In, c.Out, c.Recursive, assetbundle.Decode)
}

type EncryptSuiteCmd struct {
	In        string `arg:"" type:"path" help:"File or directory of plain suitemaster JSON files."`
	Out       string `arg:"" type:"path" help:"Output directory."`
	Recursive bool   `help:"Recurse into subdirectories."`
}

func (c EncryptSuiteCmd) Run(ctx context.Context, g *commander.Globals) error {
	r, err := g.ParsedRegion()
	if err != nil {
		return twerrors.New(twerrors.KindConfig, "encrypt suite", err)
	}
	key := r.Keys().SuiteKey

	files, err := fsutil.ScanPath(c.In, c.Recursive)
	if err != nil {
		return err
	}

	jobs := make([]pipeline.Job, 0, len(files))
	for i, path := range files {
		i, path := i, path
		jobs = append(jobs, pipeline.Job{
			ID: path,
			Do: func(ctx context.Context) error {
				raw, err := os.ReadFile(path)
				if err != nil {
					return twerrors.New(twerrors.KindIO, "encrypt suite", err)
				}
				var value any
				if err := json.Unmarshal(raw, &value); err != nil {
					return twerrors.New(twerrors.KindCodec, "encrypt suite", err)
				}
				blob, _, err := suitemaster.Encrypt(value, key)
				if err != nil {
					return err
				}
				name := suitemaster.DeriveFilename(blob, i)
				return fsutil.WriteFileAtomic(filepath.Join(c.Out, name), blob, 0o644)
			},
		})
	}

	sink := progressSink(g, "encrypt suite")
	summary := pipeline.Run(ctx, jobs, pipeline.Config{
		Concurrency: g.Concurrency, RetryBudget: g.Retry, Sink: sink, Logger: g.Logger,
	})
	return summaryToError(summary)
}

type DecryptSuiteCmd struct {
	In        string `arg:"" type:"path" help:"File or directory of encrypted suitemaster files."`
	Out       string `arg:"" type:"path" help:"Output directory."`
	Recursive bool   `help:"Recurse into subdirectories."`
}

func (c DecryptSuiteCmd) Run(ctx context.Context, g *commander.Globals) error {
	r, err := g.ParsedRegion()
	if err != nil {
		return twerrors.New(twerrors.KindConfig, "decrypt suite", err)
	}
	key := r.Keys().SuiteKey

	files, err := fsutil.ScanPath(c.In, c.Recursive)
	if err != nil {
		return err
	}

	jobs := make([]pipeline.Job, 0, len(files))
	for _, path := range files {
		path := path
		jobs = append(jobs, pipeline.Job{
			ID: path,
			Do: func(ctx context.Context) error {
				raw, err := os.ReadFile(path)
				if err != nil {
					return twerrors.New(twerrors.KindIO, "decrypt suite", err)
				}
				f, err := suitemaster.Decrypt(raw, key)
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(f.Value, "", "  ")
				if err != nil {
					return twerrors.New(twerrors.KindCodec, "decrypt suite", err)
				}
				out := filepath.Join(c.Out, f.Key+".json")
				return fsutil.WriteFileAtomic(out, data, 0o644)
			},
		})
	}

	sink := progressSink(g, "decrypt suite")
	summary := pipeline.Run(ctx, jobs, pipeline.Config{
		Concurrency: g.Concurrency, RetryBudget: g.Retry, Sink: sink, Logger: g.Logger,
	})
	return summaryToError(summary)
}

// cryptoWalk applies transform to every file under in (recursing if
// requested), writing results under out with the same relative name.
// Shared by the assetbundle encrypt/decrypt commands, which differ only
// in which direction the obfuscation runs.
func cryptoWalk(
	ctx context.Context, g *commander.Globals, label, in, out string, recursive bool,
	transform func([]byte) ([]byte, error),
) error {
	files, err := fsutil.ScanPath(in, recursive)
	if err != nil {
		return err
	}

	jobs := make([]pipeline.Job, 0, len(files))
	for _, path := range files {
		path := path
		jobs = append(jobs, pipeline.Job{
			ID: path,
			Do: func(ctx context.Context) error {
				raw, err := os.ReadFile(path)
				if err != nil {
					return twerrors.New(twerrors.KindIO, label, err)
				}
				transformed, err := transform(raw)
				if err != nil {
					return err
				}
				rel, err := filepath.Rel(in, path)
				if err != nil || rel == "." {
					rel = filepath.Base(path)
				}
				return fsutil.WriteFileAtomic(filepath.Join(out, rel), transformed, 0o644)
			},
		})
	}

	sink := progressSink(g, label)
	summary := pipeline.Run(ctx, jobs, pipeline.Config{
		Concurrency: g.Concurrency, RetryBudget: g.Retry, Sink: sink, Logger: g.Logger,
	})
	if summary.Failed > 0 {
		return twerrors.New(twerrors.KindCodec, label, fmt.Errorf("%d of %d files failed", summary.Failed, summary.Total))
	}
	return nil
}
