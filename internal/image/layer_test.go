package image

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func checker(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
			}
		}
	}
	return img
}

func TestDecodeFormats(t *testing.T) {
	src := checker(6, 4)

	var pngBuf, bmpBuf, tiffBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, src))
	require.NoError(t, bmp.Encode(&bmpBuf, src))
	require.NoError(t, tiff.Encode(&tiffBuf, src, nil))

	tests := []struct {
		format string
		data   []byte
	}{
		{"png", pngBuf.Bytes()},
		{"bmp", bmpBuf.Bytes()},
		{"tiff", tiffBuf.Bytes()},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			layer, err := Decode(bytes.NewReader(tt.data), "board."+tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.format, layer.Format)
			assert.Equal(t, 6, layer.Width())
			assert.Equal(t, 4, layer.Height())
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(strings.NewReader("definitely not an image"), "x.png")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.PNG")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, checker(3, 3)))
	require.NoError(t, f.Close())

	layer, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "photo.PNG", layer.Name)
	assert.Equal(t, "photo.PNG (3x3 png)", layer.String())

	_, err = Load(filepath.Join(dir, "notes.txt"))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestSupportedFormats(t *testing.T) {
	assert.True(t, IsSupportedFormat("a/b/scan.TIF"))
	assert.True(t, IsSupportedFormat("pic.webp"))
	assert.False(t, IsSupportedFormat("doc.pdf"))
	assert.False(t, IsSupportedFormat("noext"))

	first, ok := FirstSupported([]string{"readme.md", "one.jpg", "two.png"})
	require.True(t, ok)
	assert.Equal(t, "one.jpg", first)
	_, ok = FirstSupported([]string{"readme.md"})
	assert.False(t, ok)

	assert.Contains(t, FileFilter(), "*.webp")
}

func TestSample(t *testing.T) {
	s := Sample(320, 200)
	assert.Equal(t, 320, s.Width())
	assert.Equal(t, 200, s.Height())

	_, _, _, a := s.Image.At(10, 10).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	assert.NotEqual(t, s.Image.At(10, 10), s.Image.At(10, 190), "sky and ground differ")

	def := Sample(0, 0)
	assert.Equal(t, 1200, def.Width())
}
