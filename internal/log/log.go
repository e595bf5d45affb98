// Package log holds the zerolog loggers used across zecsend.
package log

import (
	"fmt"
	"io"
	"os"

	"github.com/Klingon-tech/zecsend/pkg/tx"
	"github.com/rs/zerolog"
)

// Logger is the root logger. Component loggers derive from it.
var Logger zerolog.Logger

// Component loggers.
var (
	Tx      zerolog.Logger // pkg/tx build and sign events
	Gateway zerolog.Logger
	Wallet  zerolog.Logger
	Storage zerolog.Logger
	Send    zerolog.Logger
	CLI     zerolog.Logger
)

// Options configures Init.
type Options struct {
	Level   string
	JSON    bool
	File    string // also append JSON lines here when set
	Network string // added to every entry when set
}

func init() {
	// Command output owns stdout.
	setRoot(New(os.Stderr, "info", false))
}

// Init replaces the root logger according to opts.
func Init(opts Options) error {
	var out io.Writer = os.Stderr
	if !opts.JSON {
		out = consoleWriter(os.Stderr)
	}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = zerolog.MultiLevelWriter(out, f)
	}

	ctx := zerolog.New(out).Level(ParseLevel(opts.Level)).With().Timestamp()
	if opts.Network != "" {
		ctx = ctx.Str("network", opts.Network)
	}
	setRoot(ctx.Logger())
	return nil
}

// New returns a logger writing to w, colored unless jsonOutput is set.
func New(w io.Writer, level string, jsonOutput bool) zerolog.Logger {
	if !jsonOutput {
		w = consoleWriter(w)
	}
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
}

// ParseLevel maps a level name to a zerolog level. Unknown names mean info.
func ParseLevel(level string) zerolog.Level {
	if level == "off" {
		return zerolog.Disabled
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// ValidLevel reports whether ParseLevel knows level.
func ValidLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "error", "disabled", "off":
		return true
	}
	return false
}

func setRoot(l zerolog.Logger) {
	Logger = l
	component := func(name string) zerolog.Logger {
		return Logger.With().Str("component", name).Logger()
	}
	Tx = component("tx")
	Gateway = component("gateway")
	Wallet = component("wallet")
	Storage = component("storage")
	Send = component("send")
	CLI = component("cli")

	tx.SetLogger(Tx)
}
