// Package logger builds the run-scoped logger. Each run gets one logger
// instance which is passed explicitly to every component; there is no
// process-wide log state.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the run logger.
type Options struct {
	// Verbose lowers the level to debug.
	Verbose bool
	// FilePath, when set, tees structured JSON entries to a log file in
	// addition to the console.
	FilePath string
	// RunID is stamped on every entry.
	RunID string
}

// New builds the logger and returns a release function that closes the log
// file. The release function is safe to call when no file is open.
func New(opts Options) (zerolog.Logger, func(), error) {
	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}

	var writer io.Writer = console
	release := func() {}

	if opts.FilePath != "" {
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		writer = zerolog.MultiLevelWriter(console, f)
		release = func() { f.Close() }
	}

	log := zerolog.New(writer).Level(level).With().Timestamp().Str("run_id", opts.RunID).Logger()
	return log, release, nil
}
