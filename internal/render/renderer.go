package render

import (
	"image"
	"image/color"
	"reflect"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"image-annotator/internal/logging"
	"image-annotator/internal/shape"
	"image-annotator/pkg/colorutil"
	"image-annotator/pkg/geometry"
)

// Backdrop fills the canvas behind the image.
var Backdrop = color.RGBA{R: 40, G: 40, B: 40, A: 255}

// Selection decoration, in screen pixels.
var (
	SelectionColor = colorutil.Blue
	HandleColor    = colorutil.White
)

const (
	selectionPad    = 4.0
	selectionWidth  = 1.5
	handleSize      = 8.0
	handleLineWidth = 1.0
	miterLimit      = 4.0
)

var selectionDashes = []float64{6, 4}

// Frame is an immutable description of what to draw. Shapes are in z-order.
//
// Viewport was computed for ViewSize. When Fitted is set the viewport is the
// fit of Background within ViewSize, so a painter that already knows a newer
// view size can refit with Resized.
type Frame struct {
	Viewport    Viewport
	Background  image.Image
	Shapes      []shape.Overlay
	SelectedID  string
	Provisional *shape.Overlay

	ViewSize geometry.Size
	Fitted   bool
	Zoom     ZoomLimits
}

// Resized returns the frame as it would look in a view of the given size.
// Only fitted frames with a background change; a user-chosen viewport is
// kept as is.
func (f Frame) Resized(view geometry.Size) Frame {
	if !f.Fitted || f.Background == nil || view == f.ViewSize {
		return f
	}
	b := f.Background.Bounds()
	f.Viewport = Fit(geometry.NewSize(float64(b.Dx()), float64(b.Dy())), view, f.Zoom)
	f.ViewSize = view
	return f
}

// Renderer draws frames. Its only state is the transformed background,
// reused while the image, viewport and target size stay the same.
type Renderer struct {
	cacheSrc    image.Image
	cacheView   Viewport
	cacheBounds image.Rectangle
	cacheLayer  *image.RGBA
}

// NewRenderer creates a renderer with an empty cache.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render draws f into dst: backdrop, background, shapes, selection box and
// finally the provisional shape. Equal frames produce equal pixels.
func (r *Renderer) Render(dst *image.RGBA, f Frame) {
	b := dst.Bounds()
	if b.Empty() {
		return
	}

	draw.Draw(dst, b, image.NewUniform(Backdrop), image.Point{}, draw.Src)

	if f.Background != nil {
		draw.Draw(dst, b, r.background(f.Background, f.Viewport, b), b.Min, draw.Over)
	}

	p := newPainter(dst, f.Viewport)
	var selected *shape.Overlay
	for i := range f.Shapes {
		p.shape(f.Shapes[i])
		if f.SelectedID != "" && f.Shapes[i].ID == f.SelectedID {
			selected = &f.Shapes[i]
		}
	}
	if selected != nil {
		p.selection(*selected)
	}
	if f.Provisional != nil {
		p.shape(*f.Provisional)
	}
}

// background returns the image transformed into dst space, rebuilding the
// cached layer when any input changed.
func (r *Renderer) background(src image.Image, vp Viewport, b image.Rectangle) *image.RGBA {
	if r.cacheLayer != nil && sameImage(r.cacheSrc, src) && r.cacheView == vp && r.cacheBounds == b {
		return r.cacheLayer
	}

	layer := image.NewRGBA(b)
	s := vp.scale()
	s2d := f64.Aff3{
		s, 0, vp.OffsetX + float64(b.Min.X),
		0, s, vp.OffsetY + float64(b.Min.Y),
	}
	draw.ApproxBiLinear.Transform(layer, s2d, src, src.Bounds(), draw.Src, nil)

	r.cacheSrc, r.cacheView, r.cacheBounds, r.cacheLayer = src, vp, b, layer
	logging.Logger().Debug("background layer rebuilt", "scale", s, "width", b.Dx(), "height", b.Dy())
	return layer
}

// sameImage compares images by identity without panicking on
// non-comparable dynamic types.
func sameImage(a, b image.Image) bool {
	if a == nil || b == nil {
		return false
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

// painter rasterizes overlays in screen space with rasterx.
type painter struct {
	dasher *rasterx.Dasher
	vp     Viewport
	view   geometry.Rect
}

// newPainter works in screen space relative to dst. The scanner places its
// origin at dst.Bounds().Min, the same offset the background layer gets.
func newPainter(dst *image.RGBA, vp Viewport) *painter {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	return &painter{
		dasher: rasterx.NewDasher(w, h, scanner),
		vp:     vp,
		view:   geometry.NewRect(0, 0, float64(w), float64(h)),
	}
}

// visible reports whether any part of o, stroke included, lands on the target.
func (p *painter) visible(o shape.Overlay) bool {
	box := p.vp.ImageRectToScreen(shape.Extent(o))
	return box.Expand(o.StrokeWidth*p.vp.scale()/2 + 1).Intersects(p.view)
}

func (p *painter) screen(pt geometry.Point2D) fixed.Point26_6 {
	s := p.vp.ImageToScreen(pt)
	return rasterx.ToFixedP(s.X, s.Y)
}

func (p *painter) polygon(path *rasterx.Path, pts []geometry.Point2D, closed bool) {
	if len(pts) == 0 {
		return
	}
	path.Start(p.screen(pts[0]))
	for _, pt := range pts[1:] {
		path.Line(p.screen(pt))
	}
	path.Stop(closed)
}

// outline builds the screen-space path of o. The second result reports
// whether the path encloses an area that can be filled.
func (p *painter) outline(o shape.Overlay) (rasterx.Path, bool) {
	var path rasterx.Path

	switch o.Type {
	case shape.Rectangle, shape.Triangle, shape.Star:
		p.polygon(&path, shape.Vertices(o), true)
		return path, true
	case shape.Circle:
		box := p.vp.ImageRectToScreen(o.Box())
		c := box.Center()
		rasterx.AddEllipse(c.X, c.Y, box.Width/2, box.Height/2, 0, &path)
		return path, true
	case shape.Line:
		p.polygon(&path, []geometry.Point2D{o.Start, o.End}, false)
		return path, false
	case shape.Arrow:
		end := o.End
		if head := shape.ArrowHead(o); len(head) == 3 {
			end = head[1].Add(head[2]).Scale(0.5)
		}
		p.polygon(&path, []geometry.Point2D{o.Start, end}, false)
		return path, false
	default:
		return path, false
	}
}

func (p *painter) fill(path rasterx.Path, c color.Color) {
	f := &p.dasher.Filler
	f.Clear()
	path.AddTo(f)
	f.SetColor(c)
	f.Draw()
	f.Clear()
}

func (p *painter) stroke(path rasterx.Path, width float64, c color.Color, dashes []float64) {
	d := p.dasher
	d.SetStroke(toFixed(width), toFixed(miterLimit), rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.Round, dashes, 0)
	d.Clear()
	path.AddTo(d)
	d.SetColor(c)
	d.Draw()
	d.Clear()
}

// shape draws one overlay: fill first, then the stroke on top.
func (p *painter) shape(o shape.Overlay) {
	if shape.IsDegenerate(o.Type, o.Geometry) || !p.visible(o) {
		return
	}
	path, closed := p.outline(o)
	if closed && o.Fill {
		p.fill(path, o.FillColor.NRGBA())
	}
	p.stroke(path, o.StrokeWidth*p.vp.scale(), o.StrokeColor.NRGBA(), nil)

	if o.Type == shape.Arrow {
		var head rasterx.Path
		p.polygon(&head, shape.ArrowHead(o), true)
		p.fill(head, o.StrokeColor.NRGBA())
	}
}

// selection draws a dashed box around o with square handles at the corners.
func (p *painter) selection(o shape.Overlay) {
	box := p.vp.ImageRectToScreen(shape.BoundingBox(o))
	box = box.Expand(o.StrokeWidth*p.vp.scale()/2 + selectionPad)

	var outline rasterx.Path
	rasterx.AddRect(box.X, box.Y, box.X+box.Width, box.Y+box.Height, 0, &outline)
	p.stroke(outline, selectionWidth, SelectionColor.NRGBA(), selectionDashes)

	half := handleSize / 2
	for _, c := range box.Corners() {
		var handle rasterx.Path
		rasterx.AddRect(c.X-half, c.Y-half, c.X+half, c.Y+half, 0, &handle)
		p.fill(handle, HandleColor.NRGBA())
		p.stroke(handle, handleLineWidth, SelectionColor.NRGBA(), nil)
	}
}
