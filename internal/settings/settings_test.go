package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-annotator/internal/shape"
	"image-annotator/internal/store"
	"image-annotator/pkg/colorutil"
	"image-annotator/pkg/geometry"
)

func ptr[T any](v T) *T { return &v }

func box() shape.Geometry {
	return shape.Geometry{Start: geometry.NewPoint2D(0, 0), End: geometry.NewPoint2D(20, 20)}
}

func TestStrokeWidthIsClamped(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 1},
		{-4, 1},
		{7, 7},
		{25, 20},
	}
	for _, tt := range tests {
		m := NewModel(Defaults(), nil)
		got := m.Set(Patch{StylePatch: shape.StylePatch{StrokeWidth: ptr(tt.in)}})
		assert.Equal(t, tt.want, got.Style.StrokeWidth)
		assert.Equal(t, tt.want, m.Current().Style.StrokeWidth)
	}
}

func TestFillColorRestylesOnlySelectedShape(t *testing.T) {
	st := store.New()
	first, err := st.Create(shape.Rectangle, Defaults().Style, box())
	require.NoError(t, err)
	second, err := st.Create(shape.Circle, Defaults().Style, box())
	require.NoError(t, err)
	require.True(t, st.Select(second))

	m := NewModel(Defaults(), st)
	m.Set(Patch{StylePatch: shape.StylePatch{FillColor: ptr(colorutil.Green), StrokeWidth: ptr(50.0)}})

	o1, _ := st.Get(first)
	o2, _ := st.Get(second)
	assert.Equal(t, Defaults().Style.FillColor, o1.FillColor)
	assert.Equal(t, colorutil.Green, o2.FillColor)
	assert.Equal(t, shape.MaxStrokeWidth, o2.StrokeWidth)
	assert.Equal(t, Defaults().Style.StrokeColor, o2.StrokeColor)
}

func TestNoSelectionLeavesShapesAlone(t *testing.T) {
	st := store.New()
	id, err := st.Create(shape.Line, Defaults().Style, box())
	require.NoError(t, err)

	m := NewModel(Defaults(), st)
	got := m.Set(Patch{StylePatch: shape.StylePatch{StrokeColor: ptr(colorutil.Pink)}})
	assert.Equal(t, colorutil.Pink, got.Style.StrokeColor)

	o, _ := st.Get(id)
	assert.Equal(t, Defaults().Style.StrokeColor, o.StrokeColor)
}

func TestTypeChangeNeverAltersShapes(t *testing.T) {
	st := store.New()
	id, err := st.Create(shape.Rectangle, Defaults().Style, box())
	require.NoError(t, err)
	st.Select(id)

	m := NewModel(Defaults(), st)
	got := m.Set(Patch{Type: ptr(shape.Star)})
	assert.Equal(t, shape.Star, got.Type)

	o, _ := st.Get(id)
	assert.Equal(t, shape.Rectangle, o.Type)
	assert.Equal(t, Defaults().Style, o.Style)
}

func TestReset(t *testing.T) {
	m := NewModel(Defaults(), nil)
	m.Set(Patch{Type: ptr(shape.Arrow), StylePatch: shape.StylePatch{Fill: ptr(true)}})

	m.Reset(Defaults())
	assert.Equal(t, Defaults(), m.Current())
}
