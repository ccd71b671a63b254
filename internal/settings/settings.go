// Package settings holds the current drawing tool settings: the shape type
// for the next gesture and the style applied to new shapes.
package settings

import (
	"image-annotator/internal/logging"
	"image-annotator/internal/shape"
	"image-annotator/internal/store"
	"image-annotator/pkg/colorutil"
)

// Settings is the tool state shown in the shapes panel.
type Settings struct {
	Type  shape.Type  `toml:"type"`
	Style shape.Style `toml:"style"`
}

// Defaults returns the settings a fresh session starts with.
func Defaults() Settings {
	return Settings{
		Type: shape.Rectangle,
		Style: shape.Style{
			Fill:        false,
			FillColor:   colorutil.Blue,
			StrokeColor: colorutil.Red,
			StrokeWidth: 3,
		},
	}
}

// Clamped returns s with its stroke width forced into range.
func (s Settings) Clamped() Settings {
	s.Style = s.Style.Clamped()
	return s
}

// Patch carries independently optional settings fields.
type Patch struct {
	Type *shape.Type
	shape.StylePatch
}

// Target receives style changes for the selected shape.
type Target interface {
	Selected() (string, bool)
	Update(id string, p store.Patch) bool
}

// Model owns the current settings and restyles the selected shape when the
// style changes.
type Model struct {
	current Settings
	target  Target
}

// NewModel creates a model starting at defaults. target may be nil.
func NewModel(defaults Settings, target Target) *Model {
	return &Model{current: defaults.Clamped(), target: target}
}

// Current returns the active settings.
func (m *Model) Current() Settings {
	return m.current
}

// Set merges p into the settings and returns the result. Style fields are
// also applied to the selected shape, if any. A type change only affects
// shapes drawn afterwards.
func (m *Model) Set(p Patch) Settings {
	if p.Type != nil && p.Type.Valid() {
		m.current.Type = *p.Type
	}
	m.current.Style = p.StylePatch.Apply(m.current.Style)

	if p.StylePatch.IsEmpty() || m.target == nil {
		return m.current
	}
	if id, ok := m.target.Selected(); ok {
		m.target.Update(id, store.Patch{StylePatch: m.clampedStyle(p.StylePatch)})
		logging.Logger().Debug("restyled selected shape", "id", id)
	}
	return m.current
}

// clampedStyle returns p with the stroke width replaced by its clamped value
// so the selected shape and the settings agree.
func (m *Model) clampedStyle(p shape.StylePatch) shape.StylePatch {
	if p.StrokeWidth != nil {
		w := m.current.Style.StrokeWidth
		p.StrokeWidth = &w
	}
	return p
}

// Reset replaces the settings without touching any shape.
func (m *Model) Reset(defaults Settings) {
	m.current = defaults.Clamped()
}
