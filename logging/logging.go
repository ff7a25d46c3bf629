// Package logging provides structured diagnostics using zerolog.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level written.
	Level Level
	// Output defaults to os.Stderr so diagnostics stay out of relayed stdout.
	Output io.Writer
	// Pretty enables human-readable console output.
	Pretty bool
	// TimeFormat defaults to time.Kitchen.
	TimeFormat string
}

// DefaultConfig returns the configuration used by the CLI: warnings and
// above, pretty-printed to stderr.
func DefaultConfig() Config {
	return Config{
		Level:      WarnLevel,
		Output:     os.Stderr,
		Pretty:     true,
		TimeFormat: time.Kitchen,
	}
}

// Init replaces the global logger.
func Init(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.Kitchen
	}

	var output io.Writer = cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: cfg.TimeFormat,
		}
	}

	Logger = zerolog.New(output).
		Level(cfg.Level).
		With().
		Timestamp().
		Logger()
}

// ParseLevel parses a level name case-insensitively, falling back to
// WarnLevel for anything it does not recognise.
func ParseLevel(level string) Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DebugLevel
	case "INFO":
		return InfoLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	default:
		return WarnLevel
	}
}

func Debug() *zerolog.Event {
	return Logger.Debug()
}

func Info() *zerolog.Event {
	return Logger.Info()
}

func Warn() *zerolog.Event {
	return Logger.Warn()
}

func init() {
	Init(DefaultConfig())
}
