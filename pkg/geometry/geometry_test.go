package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectFromPointsNormalizes(t *testing.T) {
	r := RectFromPoints(NewPoint2D(110, 60), NewPoint2D(10, 10))
	assert.Equal(t, NewRect(10, 10, 100, 50), r)
}

func TestRectContainsIsClosed(t *testing.T) {
	r := NewRect(0, 0, 10, 10)
	assert.True(t, r.Contains(NewPoint2D(0, 0)))
	assert.True(t, r.Contains(NewPoint2D(10, 10)))
	assert.True(t, r.Contains(NewPoint2D(10, 5)))
	assert.False(t, r.Contains(NewPoint2D(10.001, 5)))
}

func TestRectExpandNeverNegative(t *testing.T) {
	r := NewRect(0, 0, 4, 10).Expand(-3)
	assert.Equal(t, 0.0, r.Width)
	assert.Equal(t, 4.0, r.Height)
	assert.Equal(t, 2.0, r.X)
}

func TestRectIntersects(t *testing.T) {
	r := NewRect(0, 0, 10, 10)
	assert.True(t, r.Intersects(NewRect(5, 5, 10, 10)))
	assert.True(t, r.Intersects(NewRect(-5, 4, 30, 0)), "flat rect crossing")
	assert.False(t, r.Intersects(NewRect(10, 0, 5, 5)), "touching edge")
	assert.False(t, r.Intersects(NewRect(20, 20, 5, 5)))
}

func TestRectUnion(t *testing.T) {
	u := NewRect(0, 0, 10, 0).Union(NewRect(8, -3, 4, 6))
	assert.Equal(t, NewRect(0, -3, 12, 6), u)
}

func TestAffineInverseRoundTrip(t *testing.T) {
	tr := Translation(12, -4).Compose(Scale(2.5, 2.5))
	inv, ok := tr.Inverse()
	require.True(t, ok)

	p := NewPoint2D(33, 71)
	back := inv.Apply(tr.Apply(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)

	_, ok = Scale(0, 1).Inverse()
	assert.False(t, ok)
}

func TestDistanceToSegment(t *testing.T) {
	a, b := NewPoint2D(0, 0), NewPoint2D(10, 0)

	tests := []struct {
		name string
		p    Point2D
		want float64
	}{
		{"above middle", NewPoint2D(5, 3), 3},
		{"past end", NewPoint2D(13, 4), 5},
		{"before start", NewPoint2D(-3, 0), 3},
		{"on segment", NewPoint2D(7, 0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DistanceToSegment(tt.p, a, b), 1e-9)
		})
	}

	assert.InDelta(t, 5, DistanceToSegment(NewPoint2D(3, 4), a, a), 1e-9)
}

func TestPointInPolygonBoundary(t *testing.T) {
	tri := []Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 5, Y: 10}}

	assert.True(t, PointInPolygon(NewPoint2D(5, 3), tri))
	assert.True(t, PointInPolygon(NewPoint2D(5, 0), tri), "edge point")
	assert.True(t, PointInPolygon(NewPoint2D(5, 10), tri), "vertex")
	assert.False(t, PointInPolygon(NewPoint2D(0, 10), tri))
	assert.False(t, PointInPolygon(NewPoint2D(1, 1), tri[:2]))
}

func TestFitToRect(t *testing.T) {
	pts := []Point2D{{X: -1, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	fitted := FitToRect(pts, NewRect(10, 20, 100, 50))
	assert.Equal(t, NewRect(10, 20, 100, 50), BoundingBox(fitted))
}
