package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-annotator/internal/settings"
	"image-annotator/internal/shape"
	"image-annotator/pkg/colorutil"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, settings.Defaults(), cfg.Settings())
}

func TestOverrides(t *testing.T) {
	path := writeFile(t, `
[tool]
type = "star"
fill = true
fill_color = "#22c55e"
stroke_width = 40.0

[zoom]
max = 4.0

[sample]
width = 640
height = 480
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	s := cfg.Settings()
	assert.Equal(t, shape.Star, s.Type)
	assert.True(t, s.Style.Fill)
	assert.Equal(t, colorutil.Green, s.Style.FillColor)
	assert.Equal(t, colorutil.Red, s.Style.StrokeColor, "unset keys keep defaults")
	assert.Equal(t, shape.MaxStrokeWidth, s.Style.StrokeWidth)

	assert.Equal(t, 4.0, cfg.ZoomLimits().Max)
	assert.Equal(t, 0.1, cfg.ZoomLimits().Min)
	assert.Equal(t, Sample{Width: 640, Height: 480}, cfg.Sample)
	assert.Equal(t, colorutil.DefaultPalette(), cfg.Palette)
}

func TestInvalidValuesAreRejected(t *testing.T) {
	_, err := Load(writeFile(t, "[tool]\ntype = \"hexagon\"\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "[tool]\nfill_color = \"#12\"\n"))
	assert.Error(t, err)
}

func TestNormalizeRepairsRanges(t *testing.T) {
	cfg, err := Load(writeFile(t, "[zoom]\nmin = 5.0\nmax = 2.0\nstep = 0.5\n"))
	require.NoError(t, err)
	assert.Equal(t, Default().Zoom, cfg.Zoom)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Tool.Type = shape.Arrow
	cfg.Palette = []colorutil.Color{colorutil.Black, colorutil.Pink}

	require.NoError(t, Save(path, cfg))
	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		in    string
		level slog.Level
		on    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"WARN", slog.LevelWarn, true},
		{"", slog.LevelInfo, true},
		{"off", 0, false},
	}
	for _, tt := range tests {
		level, on := Config{Log: Log{Level: tt.in}}.LogLevel()
		assert.Equal(t, tt.on, on, tt.in)
		if tt.on {
			assert.Equal(t, tt.level, level, tt.in)
		}
	}
}
