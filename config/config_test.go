package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/folio/layout"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 390.0, cfg.Viewport.Width)
	assert.Equal(t, 844.0, cfg.Viewport.Height)
	assert.Equal(t, 52.0, cfg.Chrome)
	assert.Equal(t, 792, cfg.Capacity())
	assert.Equal(t, FontRange{Min: 12, Max: 24, Step: 2}, cfg.FontRange)
	assert.Equal(t, 40.0, cfg.SwipeThreshold)
	assert.Equal(t, layout.DefaultStyle(), cfg.Style)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg := Default()
	data := []byte(`
viewport:
  height: 700
style:
  font-size: 18
declarations: "line-height: 1.6"
logging:
  level: debug
`)
	require.NoError(t, Parse(data, cfg))

	assert.Equal(t, 390.0, cfg.Viewport.Width, "width keeps its default")
	assert.Equal(t, 700.0, cfg.Viewport.Height)
	assert.Equal(t, 648, cfg.Capacity())
	assert.Equal(t, 18.0, cfg.Style.FontSize)
	assert.Equal(t, layout.DefaultPadding, cfg.Style.Padding)
	assert.Equal(t, "debug", cfg.Logging.Level)

	style, err := cfg.ResolveStyle()
	require.NoError(t, err)
	assert.InDelta(t, 1.6, style.LineHeight, 1e-9)
	assert.Equal(t, 18.0, style.FontSize)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero step", func(c *Config) { c.FontRange.Step = 0 }, ErrInvalidFontRange},
		{"inverted range", func(c *Config) { c.FontRange.Min, c.FontRange.Max = 24, 12 }, ErrInvalidFontRange},
		{"viewport under chrome", func(c *Config) { c.Viewport.Height = 40 }, ErrInvalidViewport},
		{"zero width", func(c *Config) { c.Viewport.Width = 0 }, ErrInvalidViewport},
		{"zero font size", func(c *Config) { c.Style.FontSize = 0 }, ErrInvalidStyle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestResolveStyleClampsFontSize(t *testing.T) {
	cfg := Default()
	cfg.Declarations = "font-size: 40px"
	style, err := cfg.ResolveStyle()
	require.NoError(t, err)
	assert.Equal(t, 24.0, style.FontSize)

	cfg.Declarations = "font-size: ;;"
	_, err = cfg.ResolveStyle()
	assert.Error(t, err)
}

func TestResolveStyleUsesViewportWidth(t *testing.T) {
	cfg := Default()
	cfg.Style.Width = 0
	cfg.Viewport.Width = 500
	style, err := cfg.ResolveStyle()
	require.NoError(t, err)
	assert.Equal(t, 500.0, style.Width)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "folio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("swipe-threshold: 60\nsource: book.txt\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 60.0, cfg.SwipeThreshold)
	assert.Equal(t, "book.txt", cfg.Source)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "an explicit path must exist")

	require.NoError(t, os.WriteFile(path, []byte("font-range: {min: 0, max: 10, step: 1}\n"), 0o600))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrInvalidFontRange)
}

func TestLoadDefaultFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("warn", &buf)
	logger.Info().Msg("hidden")
	logger.Warn().Str("source", "book.txt").Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "book.txt")

	buf.Reset()
	bogus := NewLogger("bogus", &buf)
	bogus.Info().Msg("info by default")
	assert.Contains(t, buf.String(), "info by default")
}

func TestOpenLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.log")
	var console bytes.Buffer

	logger, closeFn, err := LoggingConfig{Level: "debug", File: path}.OpenLogger(&console)
	require.NoError(t, err)
	logger.Debug().Int("pages", 3).Msg("paginated")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "paginated", entry["message"])
	assert.EqualValues(t, 3, entry["pages"])
	assert.Contains(t, console.String(), "paginated")
}
