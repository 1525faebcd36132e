// Package logging configures the process-wide zerolog logger the way every
// twintail subcommand expects it: leveled, structured, console-rendered by
// default with a JSON escape hatch for scripted invocations.
package logging

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/sergeii/twintail/pkg/logging"
)

var (
	ErrInvalidLogOutput = errors.New("logging: unknown output format")
	ErrInvalidLogLevel  = errors.New("logging: unknown level")
)

type Config struct {
	Output string
	Level  string
}

// Provide resolves cfg into a ready-to-use logger and its parsed level.
func Provide(cfg Config) (*zerolog.Logger, zerolog.Level, error) {
	var output io.Writer

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMicro
	zerolog.DurationFieldUnit = time.Millisecond
	zerolog.CallerMarshalFunc = logging.ShortCallerFormatter

	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, lvl, ErrInvalidLogLevel
	}

	switch cfg.Output {
	case "console", "":
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	case "stderr":
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339, NoColor: true}
	case "json":
		output = os.Stderr
	default:
		return nil, lvl, ErrInvalidLogOutput
	}

	logger := zerolog.New(output).Level(lvl).With().Timestamp().Caller().Logger()
	return &logger, lvl, nil
}
