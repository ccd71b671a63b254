// Package app holds application-wide resources: the window theme and the
// watcher that notices when the open image changes on disk.
package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"image-annotator/pkg/colorutil"
)

// AnnotatorTheme is the dark theme used by the annotator window.
type AnnotatorTheme struct{}

var _ fyne.Theme = (*AnnotatorTheme)(nil)

func (t *AnnotatorTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return colorutil.Blue.NRGBA()
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0x60}
	case theme.ColorNameBackground:
		return color.NRGBA{R: 0x1f, G: 0x1f, B: 0x23, A: 0xff}
	case theme.ColorNameScrollBar:
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	default:
		// Canvas backdrop and shapes assume dark chrome.
		return theme.DefaultTheme().Color(name, theme.VariantDark)
	}
}

func (t *AnnotatorTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *AnnotatorTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *AnnotatorTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameScrollBar:
		return 12
	case theme.SizeNameInlineIcon:
		return 22 // shape buttons
	default:
		return theme.DefaultTheme().Size(name)
	}
}
