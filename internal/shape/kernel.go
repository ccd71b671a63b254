package shape

import (
	"math"

	"image-annotator/pkg/geometry"
)

// hitEpsilon absorbs float rounding on boundary points.
const hitEpsilon = 1e-9

// starInnerRatio is the inner/outer radius ratio of the five-pointed star.
const starInnerRatio = 0.382

// Arrow head proportions relative to the stroke width.
const (
	arrowHeadMin      = 10.0
	arrowHeadPerWidth = 3.0
	arrowHeadMaxFrac  = 0.6
)

// IsDegenerate reports whether the geometry encloses nothing for type t.
// Box shapes need a non-zero width and height; lines need distinct end points.
func IsDegenerate(t Type, g Geometry) bool {
	switch t {
	case Rectangle, Circle, Triangle, Star:
		b := g.Box()
		return b.Width == 0 || b.Height == 0
	case Line, Arrow:
		return g.Start == g.End
	default:
		return true
	}
}

// BoundingBox returns the axis-aligned box spanned by the overlay's drag.
// Stroke width and arrow heads are not included.
func BoundingBox(o Overlay) geometry.Rect {
	switch o.Type {
	case Rectangle, Circle, Triangle, Star, Line, Arrow:
		return o.Box()
	default:
		return geometry.Rect{}
	}
}

// Extent returns the box covering everything drawn for o apart from the
// stroke, which grows it by half the stroke width on each side. It differs
// from BoundingBox only for arrows, whose head can stick out past the drag.
func Extent(o Overlay) geometry.Rect {
	box := BoundingBox(o)
	if o.Type == Arrow {
		if head := ArrowHead(o); len(head) > 0 {
			box = box.Union(geometry.BoundingBox(head))
		}
	}
	return box
}

// Vertices returns the outline points of polygonal shapes in image
// coordinates. Circles have no vertices; lines and arrows return their two
// end points.
func Vertices(o Overlay) []geometry.Point2D {
	switch o.Type {
	case Rectangle:
		c := o.Box().Corners()
		return c[:]
	case Circle:
		return nil
	case Triangle:
		return triangleVertices(o.Geometry)
	case Star:
		return starVertices(o.Geometry)
	case Line, Arrow:
		return []geometry.Point2D{o.Start, o.End}
	default:
		return nil
	}
}

func triangleVertices(g Geometry) []geometry.Point2D {
	b := g.Box()
	cx := b.X + b.Width/2
	if g.Flipped() {
		return []geometry.Point2D{
			{X: b.X, Y: b.Y},
			{X: b.X + b.Width, Y: b.Y},
			{X: cx, Y: b.Y + b.Height},
		}
	}
	return []geometry.Point2D{
		{X: cx, Y: b.Y},
		{X: b.X + b.Width, Y: b.Y + b.Height},
		{X: b.X, Y: b.Y + b.Height},
	}
}

// unitStar returns the ten alternating outer/inner points of a star with the
// first point straight up (negative Y).
func unitStar(flip bool) []geometry.Point2D {
	pts := make([]geometry.Point2D, 10)
	for i := range pts {
		angle := -math.Pi/2 + float64(i)*math.Pi/5
		r := 1.0
		if i%2 == 1 {
			r = starInnerRatio
		}
		y := r * math.Sin(angle)
		if flip {
			y = -y
		}
		pts[i] = geometry.Point2D{X: r * math.Cos(angle), Y: y}
	}
	return pts
}

func starVertices(g Geometry) []geometry.Point2D {
	return geometry.FitToRect(unitStar(g.Flipped()), g.Box())
}

// ArrowHead returns the triangular head of an arrow: tip, left, right. The
// head grows with the stroke width but never exceeds most of the shaft.
func ArrowHead(o Overlay) []geometry.Point2D {
	d := o.End.Sub(o.Start)
	length := math.Hypot(d.X, d.Y)
	if length == 0 {
		return nil
	}
	ux, uy := d.X/length, d.Y/length

	headLen := math.Max(arrowHeadMin, arrowHeadPerWidth*o.StrokeWidth)
	headLen = math.Min(headLen, length*arrowHeadMaxFrac)
	half := headLen / 2

	base := geometry.Point2D{X: o.End.X - ux*headLen, Y: o.End.Y - uy*headLen}
	return []geometry.Point2D{
		o.End,
		{X: base.X - uy*half, Y: base.Y + ux*half},
		{X: base.X + uy*half, Y: base.Y - ux*half},
	}
}

// Centroid returns a point that lies inside every non-degenerate shape, so
// hit-testing it always succeeds.
func Centroid(o Overlay) geometry.Point2D {
	switch o.Type {
	case Rectangle, Circle:
		return o.Box().Center()
	case Triangle, Star:
		return geometry.Centroid(Vertices(o))
	case Line, Arrow:
		return o.Start.Add(o.End).Scale(0.5)
	default:
		return geometry.Point2D{}
	}
}

// HitTest reports whether p touches the overlay. Every test is closed and
// tolerant by half the stroke width, so a shape's drawn outline is always
// clickable.
func HitTest(o Overlay, p geometry.Point2D) bool {
	tol := o.StrokeWidth/2 + hitEpsilon

	switch o.Type {
	case Rectangle:
		return o.Box().Expand(tol).Contains(p)
	case Circle:
		return inEllipse(o.Box(), tol, p)
	case Triangle, Star:
		poly := Vertices(o)
		return geometry.PointInPolygon(p, poly) || geometry.DistanceToPolygonEdge(p, poly) <= tol
	case Line:
		return geometry.DistanceToSegment(p, o.Start, o.End) <= tol
	case Arrow:
		if geometry.DistanceToSegment(p, o.Start, o.End) <= tol {
			return true
		}
		head := ArrowHead(o)
		return len(head) == 3 && geometry.PointInPolygon(p, head)
	default:
		return false
	}
}

func inEllipse(box geometry.Rect, tol float64, p geometry.Point2D) bool {
	c := box.Center()
	rx := box.Width/2 + tol
	ry := box.Height/2 + tol
	dx := (p.X - c.X) / rx
	dy := (p.Y - c.Y) / ry
	return dx*dx+dy*dy <= 1+hitEpsilon
}

// ApplyConstraint returns the drag end point. Unconstrained drags keep end;
// constrained drags become square: both axes get the larger magnitude and
// keep their own direction. A zero delta counts as positive.
func ApplyConstraint(start, end geometry.Point2D, constrained bool) geometry.Point2D {
	if !constrained {
		return end
	}
	dx := end.X - start.X
	dy := end.Y - start.Y
	size := math.Max(math.Abs(dx), math.Abs(dy))
	return geometry.Point2D{
		X: start.X + sign(dx)*size,
		Y: start.Y + sign(dy)*size,
	}
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// Translate returns o moved by d.
func Translate(o Overlay, d geometry.Point2D) Overlay {
	o.Geometry = o.Geometry.Translate(d)
	return o
}
