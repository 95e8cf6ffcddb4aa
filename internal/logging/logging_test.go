package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quran-tui/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNewWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(config.Log{Level: "warn", Format: "json"}, &buf)

	logger.Info("dropped")
	logger.Warn("page fallback", "page", 999)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "page fallback", rec["msg"])
	assert.EqualValues(t, 999, rec["page"])
}

func TestNewWriter_TextHasSource(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(config.Log{Level: "debug", Format: "text"}, &buf)

	logger.Debug("verse clamped")
	assert.Contains(t, buf.String(), "source=")
	assert.Contains(t, buf.String(), "verse clamped")
}

func TestNew_File(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "quran-tui.log")
	logger, closer := New(config.Log{Level: "info", Format: "json", File: path})
	logger.Info("index loaded", "verses", 6236)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "index loaded")
	assert.Same(t, logger, slog.Default())
}

func TestNew_DiscardsWithoutFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger, closer := New(config.Log{Level: "debug"})
	logger.Debug("nothing to see")
	assert.NoError(t, closer.Close())
}
