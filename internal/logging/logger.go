// Package logging builds the per-run logger: one log file per run, named by
// the run start time, mirrored to the console.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// FileNameLayout is the time layout used to name log files.
const FileNameLayout = "01_02_2006_15_04_05"

// Logger aliases zerolog.Logger so that callers depend on this package only.
type Logger = zerolog.Logger

// RunLog owns the log file of a single run. Call Close when done.
type RunLog struct {
	Logger
	file *os.File
	path string
}

// FileName returns the log file name for a run started at t.
func FileName(t time.Time) string {
	return t.Format(FileNameLayout) + ".log"
}

// Open creates <dir>/<start>.log and returns a logger writing JSON lines to
// it and human-readable lines to console. A nil console disables the mirror.
func Open(dir string, start time.Time, level string, console io.Writer) (*RunLog, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName(start))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	var out io.Writer = f
	if console != nil {
		out = zerolog.MultiLevelWriter(f, zerolog.ConsoleWriter{Out: console, TimeFormat: time.TimeOnly})
	}

	logger := zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return &RunLog{Logger: logger, file: f, path: path}, nil
}

// Path returns the log file path.
func (l *RunLog) Path() string {
	return l.path
}

// Close closes the log file.
func (l *RunLog) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return zerolog.Nop()
}
