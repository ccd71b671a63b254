// Package config loads the optional TOML file with the annotator's defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"image-annotator/internal/logging"
	"image-annotator/internal/render"
	"image-annotator/internal/settings"
	"image-annotator/internal/shape"
	"image-annotator/pkg/colorutil"
)

const (
	appDir   = "image-annotator"
	fileName = "config.toml"
)

// Config is the file layout.
type Config struct {
	Tool    Tool              `toml:"tool"`
	Palette []colorutil.Color `toml:"palette"`
	Zoom    Zoom              `toml:"zoom"`
	Sample  Sample            `toml:"sample"`
	Log     Log               `toml:"log"`
}

// Tool holds the settings a new session starts with.
type Tool struct {
	Type        shape.Type      `toml:"type"`
	Fill        bool            `toml:"fill"`
	FillColor   colorutil.Color `toml:"fill_color"`
	StrokeColor colorutil.Color `toml:"stroke_color"`
	StrokeWidth float64         `toml:"stroke_width"`
}

// Zoom bounds the canvas zoom and sets the wheel step factor.
type Zoom struct {
	Min  float64 `toml:"min"`
	Max  float64 `toml:"max"`
	Step float64 `toml:"step"`
}

// Sample sizes the generated sample image.
type Sample struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Log selects the stderr log level: debug, info, warn, error or off.
type Log struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	d := settings.Defaults()
	z := render.DefaultZoomLimits()
	return Config{
		Tool: Tool{
			Type:        d.Type,
			Fill:        d.Style.Fill,
			FillColor:   d.Style.FillColor,
			StrokeColor: d.Style.StrokeColor,
			StrokeWidth: d.Style.StrokeWidth,
		},
		Palette: colorutil.DefaultPalette(),
		Zoom:    Zoom{Min: z.Min, Max: z.Max, Step: 1.1},
		Sample:  Sample{Width: 1200, Height: 800},
		Log:     Log{Level: "info"},
	}
}

// DefaultPath returns <UserConfigDir>/image-annotator/config.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, appDir, fileName)
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("load config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		logging.Logger().Warn("unknown config key", "key", key.String(), "file", path)
	}

	return cfg.normalized(), nil
}

// Save writes cfg to path, creating the directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("save config %s: %w", path, err)
	}
	return f.Close()
}

// normalized repairs out-of-range values instead of rejecting the file.
func (c Config) normalized() Config {
	def := Default()

	c.Tool.StrokeWidth = shape.ClampStrokeWidth(c.Tool.StrokeWidth)
	if len(c.Palette) == 0 {
		c.Palette = def.Palette
	}
	if c.Zoom.Min <= 0 || c.Zoom.Max <= 0 || c.Zoom.Min > c.Zoom.Max {
		c.Zoom.Min, c.Zoom.Max = def.Zoom.Min, def.Zoom.Max
	}
	if c.Zoom.Step <= 1 {
		c.Zoom.Step = def.Zoom.Step
	}
	if c.Sample.Width <= 0 || c.Sample.Height <= 0 {
		c.Sample = def.Sample
	}
	return c
}

// Settings returns the tool defaults as session settings.
func (c Config) Settings() settings.Settings {
	return settings.Settings{
		Type: c.Tool.Type,
		Style: shape.Style{
			Fill:        c.Tool.Fill,
			FillColor:   c.Tool.FillColor,
			StrokeColor: c.Tool.StrokeColor,
			StrokeWidth: c.Tool.StrokeWidth,
		}.Clamped(),
	}
}

// ZoomLimits returns the configured zoom range.
func (c Config) ZoomLimits() render.ZoomLimits {
	return render.ZoomLimits{Min: c.Zoom.Min, Max: c.Zoom.Max}
}

// LogLevel parses Log.Level. The second result is false for "off".
func (c Config) LogLevel() (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "off", "none":
		return 0, false
	case "debug":
		return slog.LevelDebug, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, true
	}
}
