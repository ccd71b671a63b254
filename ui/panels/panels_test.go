package panels

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-annotator/internal/editor"
	imgpkg "image-annotator/internal/image"
	"image-annotator/internal/shape"
	"image-annotator/pkg/colorutil"
	"image-annotator/pkg/geometry"
)

func newSession() *editor.Session {
	n := 0
	opts := editor.DefaultOptions()
	opts.IDGenerator = func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}
	return editor.NewSession(opts)
}

func drag(s *editor.Session, x0, y0, x1, y1 float64) {
	s.PointerDown(editor.PointerEvent{Position: geometry.NewPoint2D(x0, y0)})
	s.PointerMove(editor.PointerEvent{Position: geometry.NewPoint2D(x1, y1)})
	s.PointerUp(editor.PointerEvent{Position: geometry.NewPoint2D(x1, y1)})
}

func newPanel(t *testing.T) (*editor.Session, *ShapesPanel) {
	t.Helper()
	test.NewApp()
	s := newSession()
	w := test.NewWindow(nil)
	t.Cleanup(w.Close)
	sp := NewShapesPanel(s, w, nil)
	w.SetContent(sp.Container())
	return s, sp
}

func TestShapeButtonsSetType(t *testing.T) {
	s, sp := newPanel(t)
	require.Len(t, sp.typeButtons, len(shape.Types()))
	assert.Equal(t, widget.HighImportance, sp.typeButtons[shape.Rectangle].Importance)

	test.Tap(sp.typeButtons[shape.Star])
	assert.Equal(t, shape.Star, s.Settings().Type)
	assert.Equal(t, widget.HighImportance, sp.typeButtons[shape.Star].Importance)
	assert.Equal(t, widget.MediumImportance, sp.typeButtons[shape.Rectangle].Importance)
}

func TestFillControlsFollowToggle(t *testing.T) {
	s, sp := newPanel(t)
	assert.False(t, sp.fillBox.Visible())

	test.Tap(sp.fillCheck)
	assert.True(t, s.Settings().Style.Fill)
	assert.True(t, sp.fillBox.Visible())

	test.Tap(sp.fillSwatch[5])
	assert.Equal(t, colorutil.DefaultPalette()[5], s.Settings().Style.FillColor)
	assert.True(t, sp.fillSwatch[5].selected)
}

func TestStrokeSwatchRestylesSelection(t *testing.T) {
	s, sp := newPanel(t)
	drag(s, 10, 10, 80, 60)
	id := s.SelectedID()
	require.NotEmpty(t, id)

	test.Tap(sp.strokeSwatch[1])
	o, ok := s.Shape(id)
	require.True(t, ok)
	assert.Equal(t, colorutil.Black, o.StrokeColor)

	sp.widthSlider.SetValue(12)
	o, _ = s.Shape(id)
	assert.Equal(t, 12.0, o.StrokeWidth)
	assert.Equal(t, "Width: 12 px", sp.widthLabel.Text)
}

func TestLayerListTopmostFirst(t *testing.T) {
	s, sp := newPanel(t)
	drag(s, 10, 10, 80, 60)
	drag(s, 100, 100, 160, 150)

	require.Len(t, sp.layerRows, 2)
	assert.Equal(t, "s2", sp.layerRows[0].ID)
	assert.Equal(t, "s1", sp.layerRows[1].ID)
	assert.Equal(t, "Layers (2)", sp.countLabel.Text)

	sp.layers.Select(1)
	assert.Equal(t, "s1", s.SelectedID())

	s.OnRemoveShape("s1")
	require.Len(t, sp.layerRows, 1)
	assert.Empty(t, s.SelectedID())

	s.ClearShapes()
	assert.Empty(t, sp.layerRows)
}

func TestLayerFill(t *testing.T) {
	st := shape.Style{FillColor: colorutil.Green}
	assert.Equal(t, colorutil.Transparent, layerFill(st))
	st.Fill = true
	assert.Equal(t, colorutil.Green, layerFill(st))
}

type dirMemory struct{ dir string }

func (m *dirMemory) LastDir() string       { return m.dir }
func (m *dirMemory) SetLastDir(dir string) { m.dir = dir }

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func newZone(t *testing.T) (*UploadZone, *dirMemory, *[]*imgpkg.Layer) {
	t.Helper()
	test.NewApp()
	w := test.NewWindow(nil)
	t.Cleanup(w.Close)
	mem := &dirMemory{}
	var got []*imgpkg.Layer
	uz := NewUploadZone(w, mem, func(l *imgpkg.Layer) { got = append(got, l) })
	w.SetContent(uz.Container())
	return uz, mem, &got
}

func TestUploadZoneLoadFile(t *testing.T) {
	uz, mem, got := newZone(t)
	dir := t.TempDir()
	path := writePNG(t, dir, "photo.png")

	var uploaded string
	uz.SetOnUploaded(func(p string) { uploaded = p })
	uz.LoadFile(path)

	require.Len(t, *got, 1)
	assert.Equal(t, 4, (*got)[0].Width())
	assert.Equal(t, dir, mem.dir)
	assert.Equal(t, path, uploaded)
	assert.False(t, uz.loading)
	assert.False(t, uz.openBtn.Disabled())
}

func TestUploadZoneDropTakesFirstImage(t *testing.T) {
	uz, _, got := newZone(t)
	dir := t.TempDir()
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("hi"), 0o644))
	png1 := writePNG(t, dir, "a.png")
	png2 := writePNG(t, dir, "b.png")

	uz.Drop([]fyne.URI{storage.NewFileURI(text), storage.NewFileURI(png1), storage.NewFileURI(png2)})
	require.Len(t, *got, 1)
	assert.Equal(t, "a.png", (*got)[0].Name)

	uz.Drop([]fyne.URI{storage.NewFileURI(text)})
	assert.Len(t, *got, 1, "non-image drops are rejected")
}

func TestUploadZoneBadFileKeepsState(t *testing.T) {
	uz, mem, got := newZone(t)
	dir := t.TempDir()
	bad := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0o644))

	uz.LoadFile(bad)
	assert.Empty(t, *got)
	assert.Empty(t, mem.dir)
	assert.Equal(t, "Could not load broken.png", uz.current.Text)
}

func TestUploadZoneSample(t *testing.T) {
	uz, _, got := newZone(t)
	uz.SetSampleSize(64, 48)
	uz.UseSample()
	require.Len(t, *got, 1)
	assert.Equal(t, 64, (*got)[0].Width())
	assert.Equal(t, 48, (*got)[0].Height())
}
