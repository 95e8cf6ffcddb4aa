// Package logging builds the application logger. The terminal belongs to
// the UI, so records go to a rotating file or nowhere.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"quran-tui/internal/config"
)

// New creates a *slog.Logger from cfg and installs it as the default.
//
// Format "json" writes JSON records, anything else text records with
// source positions. An empty File discards output.
func New(cfg config.Log) (*slog.Logger, io.Closer) {
	var out io.Writer = io.Discard
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		f := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		out, closer = f, f
	}
	logger := NewWriter(cfg, out)
	slog.SetDefault(logger)
	return logger, closer
}

// NewWriter builds a logger writing to w.
func NewWriter(cfg config.Log, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: strings.EqualFold(cfg.Format, "text"),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
