// Package prefs provides JSON-based application preferences.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"image-annotator/internal/settings"
	"image-annotator/internal/shape"
	"image-annotator/pkg/colorutil"
)

const prefsFile = "preferences.json"

// Keys used by the annotator window.
const (
	KeyLastDir         = "lastDirectory"
	KeyToolType        = "tool.type"
	KeyToolFill        = "tool.fill"
	KeyToolFillColor   = "tool.fillColor"
	KeyToolStrokeColor = "tool.strokeColor"
	KeyToolStrokeWidth = "tool.strokeWidth"
)

// Prefs stores application preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
}

// Load reads preferences from ~/.config/image-annotator/preferences.json.
// Returns a Prefs with defaults if the file doesn't exist.
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return LoadFrom(filepath.Join(configDir, "image-annotator", prefsFile))
}

// LoadFrom reads preferences from path. A missing or unreadable file gives
// empty preferences that will be written to path on Save.
func LoadFrom(path string) *Prefs {
	p := &Prefs{
		values: make(map[string]interface{}),
		path:   path,
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, &p.values)
	return p
}

// Path returns the file the preferences are saved to.
func (p *Prefs) Path() string {
	return p.path
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// FloatWithFallback returns a float64 preference, or fallback if not set.
func (p *Prefs) FloatWithFallback(key string, fallback float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return fallback
}

// SetFloat stores a float64 preference.
func (p *Prefs) SetFloat(key string, val float64) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// String returns a string preference, or "" if not set.
func (p *Prefs) String(key string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// SetString stores a string preference.
func (p *Prefs) SetString(key string, val string) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Bool returns a bool preference, or fallback if not set.
func (p *Prefs) Bool(key string, fallback bool) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}

// SetBool stores a bool preference.
func (p *Prefs) SetBool(key string, val bool) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// LastDir returns the directory of the last opened image.
func (p *Prefs) LastDir() string {
	return p.String(KeyLastDir)
}

// SetLastDir remembers the directory of the last opened image.
func (p *Prefs) SetLastDir(dir string) {
	p.SetString(KeyLastDir, dir)
}

// ToolSettings returns the remembered tool settings layered over fallback.
// Values that no longer parse are ignored.
func (p *Prefs) ToolSettings(fallback settings.Settings) settings.Settings {
	s := fallback
	if t, err := shape.ParseType(p.String(KeyToolType)); err == nil {
		s.Type = t
	}
	s.Style.Fill = p.Bool(KeyToolFill, s.Style.Fill)
	if c, err := colorutil.ParseHex(p.String(KeyToolFillColor)); err == nil {
		s.Style.FillColor = c
	}
	if c, err := colorutil.ParseHex(p.String(KeyToolStrokeColor)); err == nil {
		s.Style.StrokeColor = c
	}
	s.Style.StrokeWidth = p.FloatWithFallback(KeyToolStrokeWidth, s.Style.StrokeWidth)
	return s.Clamped()
}

// SetToolSettings remembers s for the next run.
func (p *Prefs) SetToolSettings(s settings.Settings) {
	p.SetString(KeyToolType, s.Type.String())
	p.SetBool(KeyToolFill, s.Style.Fill)
	p.SetString(KeyToolFillColor, s.Style.FillColor.Hex())
	p.SetString(KeyToolStrokeColor, s.Style.StrokeColor.Hex())
	p.SetFloat(KeyToolStrokeWidth, s.Style.StrokeWidth)
}
