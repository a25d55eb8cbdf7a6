// Package logging builds the zerolog logger shared by the CLI, TUI and sync workers.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Options struct {
	Level  string
	Format string // console | json
}

// New returns a logger writing to w. Callers pass stderr so stdout stays machine-readable.
func New(opts Options, w io.Writer) (zerolog.Logger, error) {
	lvl := strings.ToLower(strings.TrimSpace(opts.Level))
	if lvl == "" {
		lvl = "warn"
	}
	level, err := zerolog.ParseLevel(lvl)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level '%s': %w", opts.Level, err)
	}

	out := w
	if strings.ToLower(opts.Format) != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
