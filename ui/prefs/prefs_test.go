package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-annotator/internal/settings"
	"image-annotator/internal/shape"
	"image-annotator/pkg/colorutil"
)

func TestMissingFileIsEmpty(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), "none.json"))
	assert.Equal(t, "", p.LastDir())
	assert.Equal(t, 2.5, p.FloatWithFallback("x", 2.5))
	assert.True(t, p.Bool("b", true))
	assert.Equal(t, settings.Defaults(), p.ToolSettings(settings.Defaults()))
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", prefsFile)
	p := LoadFrom(path)
	p.SetLastDir("/tmp/photos")

	s := settings.Defaults()
	s.Type = shape.Arrow
	s.Style.Fill = true
	s.Style.FillColor = colorutil.Green
	s.Style.StrokeColor = colorutil.RGB(0x12, 0x34, 0x56)
	s.Style.StrokeWidth = 7
	p.SetToolSettings(s)
	require.NoError(t, p.Save())

	back := LoadFrom(path)
	assert.Equal(t, path, back.Path())
	assert.Equal(t, "/tmp/photos", back.LastDir())
	assert.Equal(t, s, back.ToolSettings(settings.Defaults()))
}

func TestBadValuesFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)
	require.NoError(t, os.WriteFile(path, []byte(`{
  "tool.type": "hexagon",
  "tool.fillColor": "nope",
  "tool.strokeWidth": 99,
  "tool.fill": "yes"
}`), 0o644))

	got := LoadFrom(path).ToolSettings(settings.Defaults())
	want := settings.Defaults()
	want.Style.StrokeWidth = shape.MaxStrokeWidth
	assert.Equal(t, want, got)
}

func TestCorruptFileIsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	p := LoadFrom(path)
	assert.Equal(t, "", p.LastDir())
}
