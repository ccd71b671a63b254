package panels

import (
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	imgpkg "image-annotator/internal/image"
	"image-annotator/internal/logging"
)

// DirMemory remembers the directory of the last opened file.
type DirMemory interface {
	LastDir() string
	SetLastDir(dir string)
}

// UploadZone picks the background image: from an open dialog, from files
// dropped on the window, or the generated sample.
type UploadZone struct {
	window    fyne.Window
	dirs      DirMemory
	container fyne.CanvasObject

	sampleW, sampleH int

	openBtn    *widget.Button
	sampleBtn  *widget.Button
	progress   *widget.ProgressBarInfinite
	current    *widget.Label
	loading    bool
	onImage    func(*imgpkg.Layer)
	onUploaded func(path string)
}

// NewUploadZone creates the zone. onImage receives each decoded layer.
func NewUploadZone(window fyne.Window, dirs DirMemory, onImage func(*imgpkg.Layer)) *UploadZone {
	uz := &UploadZone{
		window:  window,
		dirs:    dirs,
		onImage: onImage,
	}

	uz.openBtn = widget.NewButtonWithIcon("Open image...", theme.FolderOpenIcon(), uz.ShowOpenDialog)
	uz.openBtn.Importance = widget.HighImportance
	uz.sampleBtn = widget.NewButton("Use sample image", uz.UseSample)

	uz.progress = widget.NewProgressBarInfinite()
	uz.progress.Hide()
	uz.progress.Stop()

	uz.current = widget.NewLabel("No image. Drop a file on the window or open one.")
	uz.current.Wrapping = fyne.TextWrapWord

	uz.container = container.NewVBox(
		widget.NewLabelWithStyle("Image", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewGridWithColumns(2, uz.openBtn, uz.sampleBtn),
		uz.progress,
		uz.current,
	)

	window.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		uz.Drop(uris)
	})
	return uz
}

// Container returns the zone container.
func (uz *UploadZone) Container() fyne.CanvasObject {
	return uz.container
}

// SetSampleSize sets the size of the generated sample image.
func (uz *UploadZone) SetSampleSize(w, h int) {
	uz.sampleW, uz.sampleH = w, h
}

// SetOnUploaded registers a callback for each file loaded successfully.
func (uz *UploadZone) SetOnUploaded(f func(path string)) {
	uz.onUploaded = f
}

// ShowOpenDialog asks for an image file and loads it.
func (uz *UploadZone) ShowOpenDialog() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, uz.window)
			return
		}
		if reader == nil {
			return
		}
		reader.Close()
		uz.LoadFile(reader.URI().Path())
	}, uz.window)

	fd.SetFilter(storage.NewExtensionFileFilter(imgpkg.SupportedFormats()))
	if loc := uz.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// Drop loads the first dropped file with a supported image extension.
func (uz *UploadZone) Drop(uris []fyne.URI) {
	paths := make([]string, 0, len(uris))
	for _, u := range uris {
		if u.Scheme() == "file" {
			paths = append(paths, u.Path())
		}
	}
	path, ok := imgpkg.FirstSupported(paths)
	if !ok {
		if len(paths) > 0 {
			dialog.ShowError(fmt.Errorf("%s: %w", filepath.Base(paths[0]), imgpkg.ErrUnsupported), uz.window)
		}
		return
	}
	uz.LoadFile(path)
}

// LoadFile decodes path and hands the layer on. Errors are shown in a
// dialog and leave the current image in place.
func (uz *UploadZone) LoadFile(path string) {
	if uz.loading {
		return
	}
	uz.setLoading(true, "Loading "+filepath.Base(path)+"...")
	layer, err := imgpkg.Load(path)
	uz.setLoading(false, "")

	if err != nil {
		logging.Logger().Warn("image load failed", "path", path, "error", err)
		uz.current.SetText("Could not load " + filepath.Base(path))
		dialog.ShowError(err, uz.window)
		return
	}

	if uz.dirs != nil {
		uz.dirs.SetLastDir(filepath.Dir(path))
	}
	uz.show(layer)
	if uz.onUploaded != nil {
		uz.onUploaded(path)
	}
}

// UseSample loads the generated sample image.
func (uz *UploadZone) UseSample() {
	uz.show(imgpkg.Sample(uz.sampleW, uz.sampleH))
}

func (uz *UploadZone) show(layer *imgpkg.Layer) {
	uz.current.SetText(layer.String())
	if uz.onImage != nil {
		uz.onImage(layer)
	}
}

// Clear forgets the current image label after a session reset.
func (uz *UploadZone) Clear() {
	uz.current.SetText("No image. Drop a file on the window or open one.")
}

func (uz *UploadZone) setLoading(on bool, text string) {
	uz.loading = on
	if on {
		uz.openBtn.Disable()
		uz.sampleBtn.Disable()
		uz.current.SetText(text)
		uz.progress.Show()
		uz.progress.Start()
		return
	}
	uz.progress.Stop()
	uz.progress.Hide()
	uz.openBtn.Enable()
	uz.sampleBtn.Enable()
}

// lastDir returns the remembered directory as a ListableURI, or nil.
func (uz *UploadZone) lastDir() fyne.ListableURI {
	if uz.dirs == nil {
		return nil
	}
	path := uz.dirs.LastDir()
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}
