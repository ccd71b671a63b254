// Package shape defines the overlay shapes drawn on top of the background
// image and the pure geometry used to measure, hit-test and constrain them.
package shape

import (
	"fmt"
	"math"
	"strings"

	"image-annotator/pkg/colorutil"
	"image-annotator/pkg/geometry"
)

// Type identifies the kind of overlay. The set is closed; every switch over
// Type in this module handles all six values.
type Type int

const (
	Rectangle Type = iota
	Circle
	Triangle
	Line
	Arrow
	Star
)

// Types returns all shape types in panel order.
func Types() []Type {
	return []Type{Rectangle, Circle, Triangle, Line, Arrow, Star}
}

func (t Type) String() string {
	switch t {
	case Rectangle:
		return "rectangle"
	case Circle:
		return "circle"
	case Triangle:
		return "triangle"
	case Line:
		return "line"
	case Arrow:
		return "arrow"
	case Star:
		return "star"
	default:
		return fmt.Sprintf("shape(%d)", int(t))
	}
}

// Label returns the capitalized name shown on buttons and layer rows.
func (t Type) Label() string {
	s := t.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// Valid reports whether t is one of the known shape types.
func (t Type) Valid() bool {
	return t >= Rectangle && t <= Star
}

// ParseType is the inverse of Type.String.
func ParseType(s string) (Type, error) {
	for _, t := range Types() {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown shape type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown shape type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Stroke width limits in image pixels.
const (
	MinStrokeWidth = 1.0
	MaxStrokeWidth = 20.0
)

// ClampStrokeWidth forces w into [MinStrokeWidth, MaxStrokeWidth].
func ClampStrokeWidth(w float64) float64 {
	if math.IsNaN(w) || w < MinStrokeWidth {
		return MinStrokeWidth
	}
	if w > MaxStrokeWidth {
		return MaxStrokeWidth
	}
	return w
}

// Style is the visual state of an overlay. It is a value: each overlay owns
// its own copy.
type Style struct {
	Fill        bool            `json:"fill" toml:"fill"`
	FillColor   colorutil.Color `json:"fillColor" toml:"fill_color"`
	StrokeColor colorutil.Color `json:"strokeColor" toml:"stroke_color"`
	StrokeWidth float64         `json:"strokeWidth" toml:"stroke_width"`
}

// Clamped returns s with its stroke width forced into range.
func (s Style) Clamped() Style {
	s.StrokeWidth = ClampStrokeWidth(s.StrokeWidth)
	return s
}

// StylePatch carries independently optional style fields. Nil fields are
// left untouched by Apply.
type StylePatch struct {
	Fill        *bool
	FillColor   *colorutil.Color
	StrokeColor *colorutil.Color
	StrokeWidth *float64
}

// IsEmpty reports whether the patch changes nothing.
func (p StylePatch) IsEmpty() bool {
	return p.Fill == nil && p.FillColor == nil && p.StrokeColor == nil && p.StrokeWidth == nil
}

// Apply merges the patch into s. The stroke width is clamped.
func (p StylePatch) Apply(s Style) Style {
	if p.Fill != nil {
		s.Fill = *p.Fill
	}
	if p.FillColor != nil {
		s.FillColor = *p.FillColor
	}
	if p.StrokeColor != nil {
		s.StrokeColor = *p.StrokeColor
	}
	if p.StrokeWidth != nil {
		s.StrokeWidth = *p.StrokeWidth
	}
	return s.Clamped()
}

// Geometry is the drag that produced a shape, in image coordinates. Box
// shapes derive their extent from the normalized Start/End rectangle and
// their orientation from the drag direction; lines and arrows run from
// Start to End.
type Geometry struct {
	Start geometry.Point2D `json:"start"`
	End   geometry.Point2D `json:"end"`
}

// Box returns the normalized rectangle spanned by Start and End.
func (g Geometry) Box() geometry.Rect {
	return geometry.RectFromPoints(g.Start, g.End)
}

// Translate moves both points by d.
func (g Geometry) Translate(d geometry.Point2D) Geometry {
	return Geometry{Start: g.Start.Add(d), End: g.End.Add(d)}
}

// Flipped reports whether the drag went upward, which turns triangles and
// stars upside down.
func (g Geometry) Flipped() bool {
	return g.End.Y < g.Start.Y
}

// Overlay is a single shape layered over the background image.
type Overlay struct {
	ID   string `json:"id"`
	Type Type   `json:"type"`
	Geometry
	Style
}
