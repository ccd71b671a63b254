// Package panels provides the side panels of the annotator window.
package panels

import (
	"fmt"
	"image/color"
	"slices"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"image-annotator/internal/editor"
	"image-annotator/internal/settings"
	"image-annotator/internal/shape"
	"image-annotator/pkg/colorutil"
)

const tips = "Click and drag on the image to draw.\n" +
	"Hold Shift for squares and circles.\n" +
	"Drag a selected shape to move it.\n" +
	"Select a layer to delete it."

// ShapesPanel holds the drawing tools and the layer list.
type ShapesPanel struct {
	session   *editor.Session
	window    fyne.Window
	container fyne.CanvasObject

	typeButtons  map[shape.Type]*widget.Button
	fillCheck    *widget.Check
	fillBox      *fyne.Container
	fillSwatch   []*Swatch
	strokeSwatch []*Swatch
	widthSlider  *widget.Slider
	widthLabel   *widget.Label

	layers     *widget.List
	layerRows  []shape.Overlay // topmost first
	countLabel *widget.Label

	// Set while widgets are updated from session state so their change
	// callbacks do not feed back into the session.
	syncing bool
}

// NewShapesPanel creates the panel for session. The palette seeds the fill
// and stroke swatch rows.
func NewShapesPanel(session *editor.Session, window fyne.Window, palette []colorutil.Color) *ShapesPanel {
	sp := &ShapesPanel{
		session:     session,
		window:      window,
		typeButtons: make(map[shape.Type]*widget.Button),
	}
	if len(palette) == 0 {
		palette = colorutil.DefaultPalette()
	}

	// Shape type buttons
	typeGrid := container.NewGridWithColumns(3)
	for _, t := range shape.Types() {
		btn := widget.NewButton(t.Label(), func() {
			sp.set(settings.Patch{Type: &t})
		})
		sp.typeButtons[t] = btn
		typeGrid.Add(btn)
	}

	// Fill
	sp.fillCheck = widget.NewCheck("Fill", func(on bool) {
		sp.set(settings.Patch{StylePatch: shape.StylePatch{Fill: &on}})
	})
	fillRow := container.NewGridWrap(fyne.NewSize(swatchSize, swatchSize))
	for _, c := range palette {
		sw := NewSwatch(c, sp.setFillColor)
		sp.fillSwatch = append(sp.fillSwatch, sw)
		fillRow.Add(sw)
	}
	fillCustom := widget.NewButton("Custom fill...", func() {
		sp.pickColor("Fill color", sp.setFillColor)
	})
	sp.fillBox = container.NewVBox(fillRow, fillCustom)

	// Stroke
	strokeRow := container.NewGridWrap(fyne.NewSize(swatchSize, swatchSize))
	for _, c := range palette {
		sw := NewSwatch(c, sp.setStrokeColor)
		sp.strokeSwatch = append(sp.strokeSwatch, sw)
		strokeRow.Add(sw)
	}
	strokeCustom := widget.NewButton("Custom stroke...", func() {
		sp.pickColor("Stroke color", sp.setStrokeColor)
	})

	sp.widthLabel = widget.NewLabel("")
	sp.widthSlider = widget.NewSlider(shape.MinStrokeWidth, shape.MaxStrokeWidth)
	sp.widthSlider.Step = 1
	sp.widthSlider.OnChanged = func(v float64) {
		sp.widthLabel.SetText(fmt.Sprintf("Width: %.0f px", v))
		sp.set(settings.Patch{StylePatch: shape.StylePatch{StrokeWidth: &v}})
	}

	// Layer list
	sp.countLabel = widget.NewLabel("")
	sp.layers = widget.NewList(
		func() int {
			return len(sp.layerRows)
		},
		func() fyne.CanvasObject {
			del := widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)
			del.Importance = widget.LowImportance
			return container.NewHBox(
				NewSwatch(colorutil.Transparent, nil),
				widget.NewLabel("Rectangle"),
				layout.NewSpacer(),
				del,
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(sp.layerRows) {
				return
			}
			o := sp.layerRows[id]
			row := obj.(*fyne.Container)
			row.Objects[0].(*Swatch).SetColors(layerFill(o.Style), o.StrokeColor)
			row.Objects[1].(*widget.Label).SetText(o.Type.Label())
			row.Objects[3].(*widget.Button).OnTapped = func() {
				sp.session.OnRemoveShape(o.ID)
			}
		},
	)
	sp.layers.OnSelected = func(id widget.ListItemID) {
		if sp.syncing || id >= len(sp.layerRows) {
			return
		}
		sp.session.OnSelectShape(sp.layerRows[id].ID)
	}
	sp.layers.OnUnselected = func(id widget.ListItemID) {
		if sp.syncing || id >= len(sp.layerRows) {
			return
		}
		if sp.session.SelectedID() == sp.layerRows[id].ID {
			sp.session.OnSelectShape("")
		}
	}

	tipsLabel := widget.NewLabel(tips)
	tipsLabel.Wrapping = fyne.TextWrapWord
	tipsLabel.TextStyle = fyne.TextStyle{Italic: true}

	tools := container.NewVBox(
		widget.NewLabelWithStyle("Shape", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		typeGrid,
		widget.NewSeparator(),
		sp.fillCheck,
		sp.fillBox,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Stroke", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		strokeRow,
		strokeCustom,
		sp.widthLabel,
		sp.widthSlider,
		widget.NewSeparator(),
		sp.countLabel,
	)

	sp.container = container.NewBorder(tools, tipsLabel, nil, nil, sp.layers)

	session.On(editor.EventSettingsChanged, func(data interface{}) {
		if s, ok := data.(settings.Settings); ok {
			sp.syncSettings(s)
		}
	})
	session.On(editor.EventShapesChanged, func(data interface{}) {
		if shapes, ok := data.([]shape.Overlay); ok {
			sp.syncLayers(shapes)
		}
	})
	session.On(editor.EventSelectionChanged, func(data interface{}) {
		id, _ := data.(string)
		sp.syncSelection(id)
	})

	sp.syncSettings(session.Settings())
	sp.syncLayers(slices.Collect(session.Shapes()))
	return sp
}

// Container returns the panel container.
func (sp *ShapesPanel) Container() fyne.CanvasObject {
	return sp.container
}

func (sp *ShapesPanel) set(p settings.Patch) {
	if sp.syncing {
		return
	}
	sp.session.OnSettingsChange(p)
}

func (sp *ShapesPanel) setFillColor(c colorutil.Color) {
	sp.set(settings.Patch{StylePatch: shape.StylePatch{FillColor: &c}})
}

func (sp *ShapesPanel) setStrokeColor(c colorutil.Color) {
	sp.set(settings.Patch{StylePatch: shape.StylePatch{StrokeColor: &c}})
}

func (sp *ShapesPanel) pickColor(title string, apply func(colorutil.Color)) {
	picker := dialog.NewColorPicker(title, "Pick a color", func(c color.Color) {
		apply(colorutil.FromColor(c))
	}, sp.window)
	picker.Advanced = true
	picker.Show()
}

// syncSettings reflects s in the tool widgets.
func (sp *ShapesPanel) syncSettings(s settings.Settings) {
	sp.syncing = true
	defer func() { sp.syncing = false }()

	for t, btn := range sp.typeButtons {
		if t == s.Type {
			btn.Importance = widget.HighImportance
		} else {
			btn.Importance = widget.MediumImportance
		}
		btn.Refresh()
	}

	sp.fillCheck.SetChecked(s.Style.Fill)
	if s.Style.Fill {
		sp.fillBox.Show()
	} else {
		sp.fillBox.Hide()
	}
	for _, sw := range sp.fillSwatch {
		sw.SetSelected(sw.Color() == s.Style.FillColor)
	}
	for _, sw := range sp.strokeSwatch {
		sw.SetSelected(sw.Color() == s.Style.StrokeColor)
	}

	sp.widthSlider.SetValue(s.Style.StrokeWidth)
	sp.widthLabel.SetText(fmt.Sprintf("Width: %.0f px", s.Style.StrokeWidth))
}

// syncLayers rebuilds the layer rows from a bottom-to-top snapshot.
func (sp *ShapesPanel) syncLayers(shapes []shape.Overlay) {
	sp.layerRows = slices.Clone(shapes)
	slices.Reverse(sp.layerRows)
	sp.countLabel.SetText(fmt.Sprintf("Layers (%d)", len(sp.layerRows)))
	sp.layers.Refresh()
	sp.syncSelection(sp.session.SelectedID())
}

// syncSelection highlights the row of the selected shape.
func (sp *ShapesPanel) syncSelection(id string) {
	sp.syncing = true
	defer func() { sp.syncing = false }()

	idx := slices.IndexFunc(sp.layerRows, func(o shape.Overlay) bool {
		return o.ID == id
	})
	if idx < 0 {
		sp.layers.UnselectAll()
		return
	}
	sp.layers.Select(idx)
	sp.layers.ScrollTo(idx)
}

// layerFill is the swatch fill of a layer row: the fill color when the
// shape is filled, otherwise transparent.
func layerFill(s shape.Style) colorutil.Color {
	if s.Fill {
		return s.FillColor
	}
	return colorutil.Transparent
}
