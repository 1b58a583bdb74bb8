// Package logging configures the process-wide structured logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Options controls logger construction.
type Options struct {
	Level    string // debug, info, warn, error
	FilePath string // optional log file, rotated by size
	MaxSize  int64  // rotation threshold in bytes
	Backups  int    // rotated files kept
	Console  bool   // also write to stderr
}

// DefaultOptions returns the default logging options.
func DefaultOptions() Options {
	return Options{
		Level:   "info",
		MaxSize: 50 << 20,
		Backups: 3,
		Console: true,
	}
}

// ParseLevel converts a string log level to slog.Level. Unknown values
// fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup builds a JSON slog logger from opts and installs it as the
// default. The returned closer is nil when no file output is configured.
func Setup(opts Options) (io.Closer, error) {
	var writers []io.Writer
	var closer io.Closer

	// Logs go to stderr; stdout carries the filter's output.
	if opts.Console {
		writers = append(writers, os.Stderr)
	}

	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0755); err != nil {
			return nil, err
		}
		fw, err := newRotatingWriter(opts.FilePath, opts.MaxSize, opts.Backups)
		if err != nil {
			return nil, err
		}
		writers = append(writers, fw)
		closer = fw
	}

	if len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	out := writers[0]
	if len(writers) > 1 {
		out = io.MultiWriter(writers...)
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	})
	slog.SetDefault(slog.New(handler))

	return closer, nil
}
