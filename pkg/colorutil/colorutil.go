// Package colorutil provides shared color utilities for the annotator.
package colorutil

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ErrInvalidHex is returned for strings that are not #rgb or #rrggbb colors.
var ErrInvalidHex = errors.New("invalid hex color")

// Color is a non-premultiplied RGBA color that round-trips through the
// "#rrggbb" notation used by the panel and the config file.
type Color struct {
	R, G, B, A uint8
}

var _ color.Color = Color{}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// Common colors used throughout the application.
var (
	Black       = RGB(0x00, 0x00, 0x00)
	White       = RGB(0xff, 0xff, 0xff)
	Red         = RGB(0xef, 0x44, 0x44)
	Orange      = RGB(0xf9, 0x73, 0x16)
	Yellow      = RGB(0xea, 0xb3, 0x08)
	Green       = RGB(0x22, 0xc5, 0x5e)
	Cyan        = RGB(0x06, 0xb6, 0xd4)
	Blue        = RGB(0x3b, 0x82, 0xf6)
	Violet      = RGB(0x8b, 0x5c, 0xf6)
	Pink        = RGB(0xec, 0x48, 0x99)
	Transparent = Color{}
)

// DefaultPalette is the swatch row offered by the shapes panel.
func DefaultPalette() []Color {
	return []Color{White, Black, Red, Orange, Yellow, Green, Cyan, Blue, Violet, Pink}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// NRGBA returns the color as a standard library value.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// FromColor converts any color.Color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// Hex formats the color as "#rrggbb", or "#rrggbbaa" when not opaque.
func (c Color) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return c.Hex()
}

// ParseHex parses "#rgb", "#rrggbb" or "#rrggbbaa". The leading '#' is optional.
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]}) + "ff"
	case 6:
		h += "ff"
	case 8:
	default:
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// MustParseHex is ParseHex for compile-time constants.
func MustParseHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Contrast returns black or white, whichever reads better on top of c.
func Contrast(c Color) Color {
	// Rec. 601 luma
	luma := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	if luma > 140 {
		return Black
	}
	return White
}
