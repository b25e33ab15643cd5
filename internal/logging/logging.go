// Package logging sets up the zerolog console logger shared by the command
// line tools and adapts it to the key-value Logger interfaces of the library
// packages.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const (
	EnvLogLevel   = "TDSBACKUP_LOG_LEVEL"
	EnvLogNoColor = "TDSBACKUP_LOG_NOCOLOR"
)

// Options tune New. The zero value logs at info level, in color when the
// output is a terminal.
type Options struct {
	// App is attached to every record when set
	App string

	// Level overrides EnvLogLevel when set ("debug", "info", "warn", ...)
	Level string

	// NoColor disables colored output
	NoColor bool
}

// New returns a console logger writing to w.
func New(w io.Writer, opts Options) zerolog.Logger {
	level := zerolog.InfoLevel
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		level = lvl
	}
	if lvl, ok := parseLevel(opts.Level); ok {
		level = lvl
	}

	noColor := opts.NoColor || !isTerminal(w)
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok && v {
		noColor = true
	}

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}

	ctx := zerolog.New(output).Level(level).With().Timestamp()
	if opts.App != "" {
		ctx = ctx.Str("app", opts.App)
	}
	return ctx.Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
