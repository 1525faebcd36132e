// Command twintail mirrors, encrypts and decrypts the asset pipeline of a
// live-service mobile game across its Japan and Global server regions.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/sergeii/twintail/cmd/twintail/commander"
	"github.com/sergeii/twintail/cmd/twintail/commands"
)

type cli struct {
	commander.Globals

	Fetch   commands.FetchCmd   `cmd:"" help:"Fetch assets, manifests or save data from the game server."`
	Encrypt commands.EncryptCmd `cmd:"" help:"Encrypt local files into the game's on-disk formats."`
	Decrypt commands.DecryptCmd `cmd:"" help:"Decrypt the game's on-disk formats into plain Unity bundles or JSON."`
	AppInfo commands.AppInfoCmd `cmd:"" name:"app-info" help:"Resolve app version/hash metadata from an APK."`
	Version commander.VersionCmd `cmd:"" help:"Print the twintail version."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var c cli
	kctx := kong.Parse(&c,
		kong.Name("twintail"),
		kong.Description("Mirror, encrypt and decrypt the game's asset pipeline."),
		kong.UsageOnError(),
	)

	err := kctx.Run(ctx, &c.Globals)
	if err != nil {
		kctx.Errorf("%v", err)
	}
	os.Exit(commander.ExitCode(err))
}
