// Package render composites the background image and the overlays into a
// raster for display.
package render

import (
	"math"

	"image-annotator/pkg/geometry"
)

// ZoomLimits bounds the viewport scale.
type ZoomLimits struct {
	Min float64 `toml:"min"`
	Max float64 `toml:"max"`
}

// DefaultZoomLimits matches the canvas zoom range.
func DefaultZoomLimits() ZoomLimits {
	return ZoomLimits{Min: 0.1, Max: 8}
}

// Clamp forces scale into the limits.
func (z ZoomLimits) Clamp(scale float64) float64 {
	if math.IsNaN(scale) || scale <= 0 {
		return 1
	}
	return math.Max(z.Min, math.Min(z.Max, scale))
}

// Viewport maps image pixels to screen pixels:
//
//	screen = image*Scale + Offset
//
// It is the only place where the two coordinate spaces meet.
type Viewport struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// IdentityViewport shows the image at 1:1 anchored at the origin.
func IdentityViewport() Viewport {
	return Viewport{Scale: 1}
}

func (v Viewport) scale() float64 {
	if v.Scale <= 0 {
		return 1
	}
	return v.Scale
}

// Transform returns the image-to-screen transform.
func (v Viewport) Transform() geometry.AffineTransform {
	s := v.scale()
	return geometry.Translation(v.OffsetX, v.OffsetY).Compose(geometry.Scale(s, s))
}

// ImageToScreen converts an image point to screen space.
func (v Viewport) ImageToScreen(p geometry.Point2D) geometry.Point2D {
	return v.Transform().Apply(p)
}

// ScreenToImage converts a screen point to image space.
func (v Viewport) ScreenToImage(p geometry.Point2D) geometry.Point2D {
	inv, ok := v.Transform().Inverse()
	if !ok {
		return p
	}
	return inv.Apply(p)
}

// ImageRectToScreen converts a rectangle to screen space.
func (v Viewport) ImageRectToScreen(r geometry.Rect) geometry.Rect {
	return geometry.RectFromPoints(v.ImageToScreen(r.TopLeft()), v.ImageToScreen(r.BottomRight()))
}

// ZoomAt returns the viewport scaled to scale (clamped) while keeping the
// image point under the screen anchor in place.
func (v Viewport) ZoomAt(scale float64, anchor geometry.Point2D, limits ZoomLimits) Viewport {
	fixed := v.ScreenToImage(anchor)
	s := limits.Clamp(scale)
	return Viewport{
		Scale:   s,
		OffsetX: anchor.X - fixed.X*s,
		OffsetY: anchor.Y - fixed.Y*s,
	}
}

// Pan shifts the viewport by a screen-space delta.
func (v Viewport) Pan(dx, dy float64) Viewport {
	v.OffsetX += dx
	v.OffsetY += dy
	return v
}

// Fit returns the viewport that shows the whole image centered in the view,
// never enlarging past 1:1.
func Fit(img, view geometry.Size, limits ZoomLimits) Viewport {
	if img.Width <= 0 || img.Height <= 0 || view.Width <= 0 || view.Height <= 0 {
		return IdentityViewport()
	}
	s := math.Min(1, math.Min(view.Width/img.Width, view.Height/img.Height))
	s = limits.Clamp(s)
	return Viewport{
		Scale:   s,
		OffsetX: (view.Width - img.Width*s) / 2,
		OffsetY: (view.Height - img.Height*s) / 2,
	}
}
