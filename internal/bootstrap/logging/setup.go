package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New builds a logger from opts. When File is set, output goes to a rotating file and
// the returned closer must be called on shutdown.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		out    io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if file := strings.TrimSpace(opts.File); file != "" {
		rotating := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		out = rotating
		closer = rotating
	}

	return slog.New(newHandler(out, opts.Format, level)), closer, nil
}

func newHandler(out io.Writer, format string, level slog.Level) slog.Handler {
	handlerOpts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return slog.NewJSONHandler(out, handlerOpts)
	}
	return slog.NewTextHandler(out, handlerOpts)
}

func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", raw)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
