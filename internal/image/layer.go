// Package image decodes the background images that shapes are drawn over.
package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"image-annotator/pkg/geometry"
)

// MaxPixels bounds the decoded image area.
const MaxPixels = 80_000_000

// ErrUnsupported is returned for files whose extension is not an image type.
var ErrUnsupported = errors.New("unsupported image format")

// ErrTooLarge is returned for images above MaxPixels.
var ErrTooLarge = errors.New("image too large")

// Layer is a decoded background image.
type Layer struct {
	Name   string      // File name shown in the status bar
	Format string      // Decoder name, e.g. "png"
	Image  image.Image // Decoded pixels
}

// Load reads and decodes the image at path.
func Load(path string) (*Layer, error) {
	if !IsSupportedFormat(path) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	return Decode(file, filepath.Base(path))
}

// Decode reads an image from r. name is kept for display only.
func Decode(r io.Reader, name string) (*Layer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("failed to decode image: empty %dx%d", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%dx%d: %w", cfg.Width, cfg.Height, ErrTooLarge)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return &Layer{Name: name, Format: format, Image: img}, nil
}

// Width returns the image width in pixels.
func (l *Layer) Width() int {
	if l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (l *Layer) Height() int {
	if l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dy()
}

// Size returns the image dimensions.
func (l *Layer) Size() geometry.Size {
	return geometry.Size{
		Width:  float64(l.Width()),
		Height: float64(l.Height()),
	}
}

// String describes the layer for the status bar.
func (l *Layer) String() string {
	return fmt.Sprintf("%s (%dx%d %s)", l.Name, l.Width(), l.Height(), l.Format)
}

// SupportedFormats returns the list of supported image extensions.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".tif", ".webp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	return slices.Contains(SupportedFormats(), strings.ToLower(filepath.Ext(path)))
}

// FileFilter returns a file filter string for use in file dialogs.
func FileFilter() string {
	return "Image Files (*" + strings.Join(SupportedFormats(), ", *") + ")"
}

// FirstSupported returns the first path with a supported extension.
func FirstSupported(paths []string) (string, bool) {
	for _, p := range paths {
		if IsSupportedFormat(p) {
			return p, true
		}
	}
	return "", false
}

// Sample returns a generated landscape to annotate when no file is at hand.
func Sample(width, height int) *Layer {
	if width <= 0 || height <= 0 {
		width, height = 1200, 800
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	horizon := float64(height) * 0.62
	sunX, sunY := float64(width)*0.72, float64(height)*0.3
	sunR := float64(min(width, height)) * 0.09

	for y := 0; y < height; y++ {
		fy := float64(y)
		for x := 0; x < width; x++ {
			fx := float64(x)
			var c color.RGBA
			switch {
			case math.Hypot(fx-sunX, fy-sunY) <= sunR:
				c = color.RGBA{R: 253, G: 224, B: 71, A: 255}
			case fy < horizon-hill(fx, float64(width), float64(height)):
				t := fy / horizon
				c = lerp(color.RGBA{R: 56, G: 132, B: 220, A: 255}, color.RGBA{R: 186, G: 222, B: 250, A: 255}, t)
			case fy < horizon:
				c = color.RGBA{R: 74, G: 124, B: 89, A: 255}
			default:
				t := (fy - horizon) / (float64(height) - horizon)
				c = lerp(color.RGBA{R: 96, G: 165, B: 100, A: 255}, color.RGBA{R: 52, G: 98, B: 60, A: 255}, t)
			}
			img.SetRGBA(x, y, c)
		}
	}

	return &Layer{Name: "sample", Format: "generated", Image: img}
}

// hill is the height of the ridge above the horizon at column x.
func hill(x, w, h float64) float64 {
	return h * (0.08 + 0.05*math.Sin(x/w*math.Pi*3) + 0.03*math.Sin(x/w*math.Pi*7+1))
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	mix := func(p, q uint8) uint8 {
		return uint8(math.Round(float64(p) + (float64(q)-float64(p))*t))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}
