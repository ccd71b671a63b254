// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"path/filepath"
	"slices"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"image-annotator/internal/app"
	"image-annotator/internal/config"
	"image-annotator/internal/editor"
	imgpkg "image-annotator/internal/image"
	"image-annotator/internal/logging"
	"image-annotator/internal/settings"
	"image-annotator/internal/shape"
	"image-annotator/internal/version"
	"image-annotator/ui/canvas"
	"image-annotator/ui/panels"
	"image-annotator/ui/prefs"
)

const title = "Image Annotator"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app     fyne.App
	session *editor.Session
	cfg     config.Config
	prefs   *prefs.Prefs
	watcher *app.FileWatcher // nil when the platform has no file notifications

	canvas      *canvas.AnnotationCanvas
	shapesPanel *panels.ShapesPanel
	uploadZone  *panels.UploadZone
	statusBar   *widget.Label
	zoomLabel   *widget.Label
	reloadBtn   *widget.Button

	imagePath string
}

// New creates the main window around session.
func New(fyneApp fyne.App, session *editor.Session, cfg config.Config, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(title)

	mw := &MainWindow{
		Window:  win,
		app:     fyneApp,
		session: session,
		cfg:     cfg,
		prefs:   p,
	}

	if w, err := app.NewFileWatcher(app.DefaultDebounce); err != nil {
		logging.Logger().Warn("file watcher unavailable", "error", err)
	} else {
		mw.watcher = w
		w.OnChange(mw.onImageChangedOnDisk)
	}

	mw.restoreToolSettings()
	mw.setupUI()
	mw.setupMenus()
	mw.setupKeys()
	mw.setupEventHandlers()

	win.Resize(fyne.NewSize(1280, 820))
	win.SetOnClosed(mw.onClosed)
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewAnnotationCanvas(mw.session)
	mw.canvas.SetZoomStep(mw.cfg.Zoom.Step)

	mw.shapesPanel = panels.NewShapesPanel(mw.session, mw.Window, mw.cfg.Palette)
	mw.uploadZone = panels.NewUploadZone(mw.Window, mw.prefs, mw.onImage)
	mw.uploadZone.SetSampleSize(mw.cfg.Sample.Width, mw.cfg.Sample.Height)
	mw.uploadZone.SetOnUploaded(mw.onUploaded)

	mw.statusBar = widget.NewLabel("Ready")
	mw.zoomLabel = widget.NewLabel("100%")
	mw.reloadBtn = widget.NewButtonWithIcon("Reload image", theme.ViewRefreshIcon(), mw.onReloadImage)
	mw.reloadBtn.Hide()

	sidePanel := container.NewBorder(
		container.NewVBox(mw.uploadZone.Container(), widget.NewSeparator()),
		nil, nil, nil,
		mw.shapesPanel.Container(),
	)

	canvasArea := container.NewBorder(
		mw.createToolbar(), // top
		nil,                // bottom
		nil,                // left
		nil,                // right
		mw.canvas,          // center
	)

	split := container.NewHSplit(sidePanel, canvasArea)
	split.SetOffset(0.25) // Side panel takes 25% of width

	status := container.NewBorder(nil, nil, nil, mw.reloadBtn, mw.statusBar)
	content := container.NewBorder(
		nil,                         // top
		container.NewPadded(status), // bottom
		nil,                         // left
		nil,                         // right
		split,                       // center
	)

	mw.SetContent(content)
}

// createToolbar creates the toolbar with zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	zoomOutBtn := widget.NewButton("-", mw.canvas.ZoomOut)
	zoomInBtn := widget.NewButton("+", mw.canvas.ZoomIn)
	fitBtn := widget.NewButton("Fit", mw.canvas.FitToView)
	actualBtn := widget.NewButton("1:1", mw.canvas.ActualSize)
	clearBtn := widget.NewButtonWithIcon("Clear shapes", theme.DeleteIcon(), mw.onClearShapes)

	return container.NewHBox(
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
		fitBtn,
		actualBtn,
		mw.zoomLabel,
		widget.NewSeparator(),
		clearBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.uploadZone.ShowOpenDialog),
		fyne.NewMenuItem("Use Sample Image", mw.uploadZone.UseSample),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear Shapes", mw.onClearShapes),
		fyne.NewMenuItem("Reset", mw.onReset),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Delete Selected Shape", mw.onDeleteSelected),
		fyne.NewMenuItem("Bring to Front", func() {
			if id := mw.session.SelectedID(); id != "" {
				mw.session.BringToFront(id)
			}
		}),
		fyne.NewMenuItem("Deselect", func() { mw.session.OnSelectShape("") }),
	)

	shapeItems := make([]*fyne.MenuItem, 0, len(shape.Types()))
	for _, t := range shape.Types() {
		shapeItems = append(shapeItems, fyne.NewMenuItem(t.Label(), func() {
			mw.session.OnSettingsChange(settings.Patch{Type: &t})
		}))
	}
	shapeMenu := fyne.NewMenu("Shape", shapeItems...)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Fit to Window", mw.canvas.FitToView),
		fyne.NewMenuItem("Actual Size", mw.canvas.ActualSize),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, shapeMenu, viewMenu, helpMenu))
}

// setupKeys tracks Shift for constrained drawing and binds Escape and Delete.
func (mw *MainWindow) setupKeys() {
	c := mw.Canvas()
	if dc, ok := c.(desktop.Canvas); ok {
		dc.SetOnKeyDown(func(ev *fyne.KeyEvent) {
			if isShift(ev.Name) {
				mw.canvas.SetShift(true)
			}
		})
		dc.SetOnKeyUp(func(ev *fyne.KeyEvent) {
			if isShift(ev.Name) {
				mw.canvas.SetShift(false)
			}
		})
	}

	c.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyEscape:
			mw.session.Cancel()
		case fyne.KeyDelete, fyne.KeyBackspace:
			mw.onDeleteSelected()
		case fyne.KeyPlus, fyne.KeyEqual:
			mw.canvas.ZoomIn()
		case fyne.KeyMinus:
			mw.canvas.ZoomOut()
		}
	})

	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { mw.uploadZone.ShowOpenDialog() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.Key0, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { mw.canvas.FitToView() })
}

func isShift(k fyne.KeyName) bool {
	return k == desktop.KeyShiftLeft || k == desktop.KeyShiftRight
}

// setupEventHandlers registers for session events.
func (mw *MainWindow) setupEventHandlers() {
	mw.session.On(editor.EventShapesChanged, func(data interface{}) {
		if shapes, ok := data.([]shape.Overlay); ok {
			mw.updateStatus(fmt.Sprintf("%d shape(s)", len(shapes)))
		}
	})

	mw.session.On(editor.EventSelectionChanged, func(data interface{}) {
		id, _ := data.(string)
		if o, ok := mw.session.Shape(id); ok {
			mw.updateStatus(fmt.Sprintf("Selected %s", o.Type.Label()))
		}
	})

	mw.session.On(editor.EventSettingsChanged, func(data interface{}) {
		if s, ok := data.(settings.Settings); ok {
			mw.prefs.SetToolSettings(s)
		}
	})

	mw.session.On(editor.EventBackgroundChanged, func(data interface{}) {
		if data == nil {
			mw.SetTitle(title)
		}
	})

	mw.session.On(editor.EventFrameChanged, func(interface{}) {
		mw.zoomLabel.SetText(fmt.Sprintf("%.0f%%", mw.session.Viewport().Scale*100))
	})
}

// restoreToolSettings applies the tool settings remembered from the last run.
func (mw *MainWindow) restoreToolSettings() {
	s := mw.prefs.ToolSettings(mw.session.Settings())
	mw.session.OnSettingsChange(settings.Patch{
		Type: &s.Type,
		StylePatch: shape.StylePatch{
			Fill:        &s.Style.Fill,
			FillColor:   &s.Style.FillColor,
			StrokeColor: &s.Style.StrokeColor,
			StrokeWidth: &s.Style.StrokeWidth,
		},
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// Image source handlers

// onImage is called for every decoded image, file or sample. Files also
// get onUploaded afterwards.
func (mw *MainWindow) onImage(layer *imgpkg.Layer) {
	mw.imagePath = ""
	mw.reloadBtn.Hide()
	if mw.watcher != nil {
		mw.watcher.Unwatch()
	}

	mw.canvas.SyncViewSize()
	mw.session.SetBackgroundImage(layer.Image)
	mw.SetTitle(title + " - " + layer.Name)
	mw.updateStatus("Loaded " + layer.String())
}

func (mw *MainWindow) onUploaded(path string) {
	mw.imagePath = path
	if mw.watcher == nil {
		return
	}
	if err := mw.watcher.Watch(path); err != nil {
		logging.Logger().Warn("cannot watch image file", "path", path, "error", err)
	}
}

// onImageChangedOnDisk runs on the watcher goroutine, so it only updates
// widgets and leaves the reload itself to the button.
func (mw *MainWindow) onImageChangedOnDisk(path string) {
	mw.updateStatus(filepath.Base(path) + " changed on disk")
	mw.reloadBtn.Show()
}

// OpenFile loads the image at path as if it had been picked in the dialog.
func (mw *MainWindow) OpenFile(path string) {
	mw.uploadZone.LoadFile(path)
}

func (mw *MainWindow) onReloadImage() {
	mw.reloadBtn.Hide()
	if mw.imagePath == "" {
		return
	}
	mw.uploadZone.LoadFile(mw.imagePath)
}

// Menu action handlers

func (mw *MainWindow) onClearShapes() {
	if len(slices.Collect(mw.session.Shapes())) == 0 {
		return
	}
	dialog.ShowConfirm("Clear Shapes", "Remove all shapes from the image?", func(ok bool) {
		if ok {
			mw.session.ClearShapes()
		}
	}, mw.Window)
}

func (mw *MainWindow) onDeleteSelected() {
	if id := mw.session.SelectedID(); id != "" {
		mw.session.OnRemoveShape(id)
	}
}

func (mw *MainWindow) onReset() {
	dialog.ShowConfirm("Reset", "Remove the image and all shapes and restore the default tool?", func(ok bool) {
		if !ok {
			return
		}
		mw.imagePath = ""
		mw.reloadBtn.Hide()
		if mw.watcher != nil {
			mw.watcher.Unwatch()
		}
		mw.uploadZone.Clear()
		mw.session.Reset()
		mw.updateStatus("Ready")
	}, mw.Window)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+title,
		fmt.Sprintf("%s v%s\n\n"+
			"Draw shapes over an image.\n\n"+
			"Supported formats: %s",
			title, version.String(), imgpkg.FileFilter()),
		mw.Window)
}

// onClosed persists preferences and stops the file watcher.
func (mw *MainWindow) onClosed() {
	if err := mw.prefs.Save(); err != nil {
		logging.Logger().Warn("failed to save preferences", "path", mw.prefs.Path(), "error", err)
	}
	if mw.watcher != nil {
		_ = mw.watcher.Close()
	}
}
