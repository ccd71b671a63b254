package panels

import (
	"image/color"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"image-annotator/pkg/colorutil"
)

const swatchSize = 22

// Swatch is a small tappable color square. A transparent fill is drawn as
// an empty box with only its border.
type Swatch struct {
	widget.BaseWidget

	rect     *fynecanvas.Rectangle
	fill     colorutil.Color
	border   colorutil.Color
	selected bool

	OnTapped func(c colorutil.Color)
}

var _ fyne.Tappable = (*Swatch)(nil)

// NewSwatch creates a swatch showing c.
func NewSwatch(c colorutil.Color, tapped func(colorutil.Color)) *Swatch {
	s := &Swatch{
		rect:     fynecanvas.NewRectangle(c.NRGBA()),
		fill:     c,
		border:   colorutil.Contrast(c),
		OnTapped: tapped,
	}
	s.rect.CornerRadius = 3
	s.rect.SetMinSize(fyne.NewSize(swatchSize, swatchSize))
	s.ExtendBaseWidget(s)
	s.apply()
	return s
}

// Color returns the swatch color.
func (s *Swatch) Color() colorutil.Color {
	return s.fill
}

// SetColors changes the fill and border colors.
func (s *Swatch) SetColors(fill, border colorutil.Color) {
	s.fill, s.border = fill, border
	s.apply()
}

// SetSelected highlights the swatch with the theme's primary color.
func (s *Swatch) SetSelected(selected bool) {
	if s.selected == selected {
		return
	}
	s.selected = selected
	s.apply()
}

func (s *Swatch) apply() {
	s.rect.FillColor = s.fill.NRGBA()
	if s.fill.A == 0 {
		s.rect.FillColor = color.Transparent
	}
	s.rect.StrokeColor = s.border.NRGBA()
	s.rect.StrokeWidth = 1
	if s.selected {
		s.rect.StrokeColor = theme.PrimaryColor()
		s.rect.StrokeWidth = 3
	}
	s.rect.Refresh()
}

// Tapped implements fyne.Tappable.
func (s *Swatch) Tapped(*fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.fill)
	}
}

// CreateRenderer implements fyne.Widget.
func (s *Swatch) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.rect)
}
