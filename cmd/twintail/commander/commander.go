// Package commander defines the kong CLI shell: shared flags, the
// top-level command tree, and the exit-code mapping between the error
// taxonomy in internal/twerrors and the process's exit status.
package commander

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sergeii/twintail/internal/logging"
	"github.com/sergeii/twintail/internal/region"
	"github.com/sergeii/twintail/internal/twerrors"
)

// Globals holds the flags every subcommand shares: which server to speak
// to and how to present the client, plus process-wide logging knobs.
type Globals struct {
	Region      string `enum:"japan,global" default:"japan" help:"Server region to target."`
	Platform    string `enum:"android,ios" default:"android" help:"Client platform to present."`
	AppVersion  string `help:"App version header value; required by fetch commands and not resolved automatically (read it from an APK with app-info)."`
	AppHash     string `help:"App hash header value; required by fetch commands and not resolved automatically (read it from an APK with app-info)."`
	Concurrency int    `default:"8" help:"Number of concurrent fetch workers."`
	Retry       int    `default:"3" help:"Per-job retry budget."`
	Quiet       bool   `short:"q" help:"Suppress progress output."`

	LogLevel  string `default:"info" help:"Log level (debug, info, warn, error)."`
	LogOutput string `enum:"console,stderr,json" default:"console" help:"Log output format."`

	Logger *zerolog.Logger `kong:"-"`
}

func (g *Globals) AfterApply() error {
	logger, _, err := logging.Provide(logging.Config{Output: g.LogOutput, Level: g.LogLevel})
	if err != nil {
		return err
	}
	g.Logger = logger
	return nil
}

func (g *Globals) ParsedRegion() (region.Region, error) {
	return region.ParseRegion(g.Region)
}

func (g *Globals) ParsedPlatform() (region.Platform, error) {
	return region.ParsePlatform(g.Platform)
}

type VersionCmd struct{}

func (VersionCmd) Run(_ *Globals) error {
	fmt.Println("twintail (development build)")
	return nil
}

// ExitCode maps a returned error to the process exit status the CLI
// surface documents: 0 success, 1 generic failure, 2 usage/config error,
// 3 version mismatch, 130 cancellation (SIGINT convention).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch twerrors.KindOf(err) {
	case twerrors.KindCancelled:
		return 130
	case twerrors.KindVersionMismatch:
		return 3
	case twerrors.KindConfig:
		return 2
	default:
		return 1
	}
}
