package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// boundaryEpsilon absorbs floating-point noise when deciding whether a point
// lies exactly on an edge.
const boundaryEpsilon = 1e-9

func vec(p Point2D) r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// DistanceToSegment returns the shortest distance from p to the segment a-b.
// A zero-length segment degrades to the distance to a.
func DistanceToSegment(p, a, b Point2D) float64 {
	ab := r2.Sub(vec(b), vec(a))
	ap := r2.Sub(vec(p), vec(a))

	lenSq := r2.Dot(ab, ab)
	if lenSq == 0 {
		return r2.Norm(ap)
	}

	t := r2.Dot(ap, ab) / lenSq
	t = math.Max(0, math.Min(1, t))
	closest := r2.Add(vec(a), r2.Scale(t, ab))
	return r2.Norm(r2.Sub(vec(p), closest))
}

// DistanceToPolygonEdge returns the shortest distance from p to any edge of
// the closed polygon.
func DistanceToPolygonEdge(p Point2D, polygon []Point2D) float64 {
	n := len(polygon)
	if n == 0 {
		return math.Inf(1)
	}
	if n == 1 {
		return p.Distance(polygon[0])
	}

	best := math.Inf(1)
	for i := 0; i < n; i++ {
		d := DistanceToSegment(p, polygon[i], polygon[(i+1)%n])
		if d < best {
			best = d
		}
	}
	return best
}

// PointInPolygon tests if a point is inside a polygon using ray casting.
// Points on an edge or vertex count as inside, so the polygon behaves as a
// closed set.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}
	if DistanceToPolygonEdge(p, polygon) <= boundaryEpsilon {
		return true
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// FitToRect maps the points linearly so that their bounding box becomes r.
// Axes with zero extent collapse onto the rectangle's center line.
func FitToRect(points []Point2D, r Rect) []Point2D {
	src := BoundingBox(points)
	out := make([]Point2D, len(points))
	for i, p := range points {
		x := r.X + r.Width/2
		if src.Width > 0 {
			x = r.X + (p.X-src.X)/src.Width*r.Width
		}
		y := r.Y + r.Height/2
		if src.Height > 0 {
			y = r.Y + (p.Y-src.Y)/src.Height*r.Height
		}
		out[i] = Point2D{X: x, Y: y}
	}
	return out
}
