// Package canvas provides the annotation canvas: the background image with
// its overlays, driven by mouse gestures.
package canvas

import (
	"image"
	"sync"
	"sync/atomic"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"image-annotator/internal/editor"
	"image-annotator/internal/render"
	"image-annotator/pkg/geometry"
)

const defaultZoomStep = 1.1

// AnnotationCanvas shows the session's current frame and forwards pointer
// input to it. Wheel zooms around the cursor; the secondary button pans.
type AnnotationCanvas struct {
	widget.BaseWidget

	session  *editor.Session
	raster   *fynecanvas.Raster
	zoomStep float64

	// Paint goroutine state.
	paintMu  sync.Mutex
	renderer *render.Renderer
	viewSize atomic.Pointer[fyne.Size]

	// Event goroutine state.
	shift     bool
	lastPos   fyne.Position
	pressed   bool
	panning   bool
	panOrigin fyne.Position
}

var (
	_ desktop.Mouseable  = (*AnnotationCanvas)(nil)
	_ desktop.Cursorable = (*AnnotationCanvas)(nil)
	_ fyne.Draggable     = (*AnnotationCanvas)(nil)
	_ fyne.Scrollable    = (*AnnotationCanvas)(nil)
)

// NewAnnotationCanvas creates a canvas bound to session.
func NewAnnotationCanvas(session *editor.Session) *AnnotationCanvas {
	ac := &AnnotationCanvas{
		session:  session,
		renderer: render.NewRenderer(),
		zoomStep: defaultZoomStep,
	}
	ac.raster = fynecanvas.NewRaster(ac.draw)
	ac.raster.ScaleMode = fynecanvas.ImageScalePixels
	ac.raster.SetMinSize(fyne.NewSize(400, 300))

	session.On(editor.EventFrameChanged, func(interface{}) {
		ac.raster.Refresh()
	})

	ac.ExtendBaseWidget(ac)
	return ac
}

// SetZoomStep sets the factor applied per wheel notch.
func (ac *AnnotationCanvas) SetZoomStep(step float64) {
	if step > 1 {
		ac.zoomStep = step
	}
}

// SyncViewSize passes the last laid-out size to the session. Layout can run
// on the paint goroutine, so it only records the size and every session
// call made from the event side syncs first.
func (ac *AnnotationCanvas) SyncViewSize() {
	if size := ac.viewSize.Load(); size != nil {
		ac.session.SetViewSize(geometry.NewSize(float64(size.Width), float64(size.Height)))
	}
}

// SetShift records the Shift key state for drags that started without it.
func (ac *AnnotationCanvas) SetShift(down bool) {
	if ac.shift == down {
		return
	}
	ac.shift = down
	if ac.pressed {
		ac.SyncViewSize()
		ac.session.PointerMove(ac.event(ac.lastPos, editor.ButtonPrimary))
	}
}

// ZoomIn zooms around the center of the view.
func (ac *AnnotationCanvas) ZoomIn() {
	ac.SyncViewSize()
	ac.session.ZoomAt(ac.zoomStep, ac.center())
}

// ZoomOut zooms out around the center of the view.
func (ac *AnnotationCanvas) ZoomOut() {
	ac.SyncViewSize()
	ac.session.ZoomAt(1/ac.zoomStep, ac.center())
}

// FitToView shows the whole image in the current view.
func (ac *AnnotationCanvas) FitToView() {
	ac.SyncViewSize()
	ac.session.FitToView()
}

// ActualSize shows the image at 1:1 in the current view.
func (ac *AnnotationCanvas) ActualSize() {
	ac.SyncViewSize()
	ac.session.ActualSize()
}

func (ac *AnnotationCanvas) center() geometry.Point2D {
	size := ac.viewSize.Load()
	if size == nil {
		return geometry.Point2D{}
	}
	return geometry.NewPoint2D(float64(size.Width)/2, float64(size.Height)/2)
}

func (ac *AnnotationCanvas) event(pos fyne.Position, b editor.Button) editor.PointerEvent {
	return editor.PointerEvent{
		Position: geometry.NewPoint2D(float64(pos.X), float64(pos.Y)),
		Shift:    ac.shift,
		Button:   b,
	}
}

func button(b desktop.MouseButton) editor.Button {
	switch b {
	case desktop.MouseButtonSecondary:
		return editor.ButtonSecondary
	case desktop.MouseButtonTertiary:
		return editor.ButtonTertiary
	default:
		return editor.ButtonPrimary
	}
}

// MouseDown implements desktop.Mouseable.
func (ac *AnnotationCanvas) MouseDown(ev *desktop.MouseEvent) {
	ac.SyncViewSize()
	ac.shift = ev.Modifier&fyne.KeyModifierShift != 0
	ac.lastPos = ev.Position

	switch b := button(ev.Button); b {
	case editor.ButtonPrimary:
		ac.pressed = true
		ac.session.PointerDown(ac.event(ev.Position, b))
	case editor.ButtonSecondary:
		ac.panning = true
		ac.panOrigin = ev.Position
	default:
		ac.session.PointerDown(ac.event(ev.Position, b))
	}
}

// MouseUp implements desktop.Mouseable.
func (ac *AnnotationCanvas) MouseUp(ev *desktop.MouseEvent) {
	ac.SyncViewSize()
	ac.shift = ev.Modifier&fyne.KeyModifierShift != 0
	switch b := button(ev.Button); b {
	case editor.ButtonPrimary:
		ac.release(ev.Position)
	case editor.ButtonSecondary:
		ac.panning = false
	default:
		ac.session.PointerUp(ac.event(ev.Position, b))
	}
}

func (ac *AnnotationCanvas) release(pos fyne.Position) {
	if !ac.pressed {
		return
	}
	ac.pressed = false
	ac.lastPos = pos
	ac.session.PointerUp(ac.event(pos, editor.ButtonPrimary))
}

// Dragged implements fyne.Draggable.
func (ac *AnnotationCanvas) Dragged(ev *fyne.DragEvent) {
	ac.SyncViewSize()
	if ac.panning {
		ac.session.Pan(float64(ev.Position.X-ac.panOrigin.X), float64(ev.Position.Y-ac.panOrigin.Y))
		ac.panOrigin = ev.Position
		return
	}
	if !ac.pressed {
		return
	}
	ac.lastPos = ev.Position
	ac.session.PointerMove(ac.event(ev.Position, editor.ButtonPrimary))
}

// DragEnd implements fyne.Draggable. A release outside the widget arrives
// here without a matching MouseUp.
func (ac *AnnotationCanvas) DragEnd() {
	ac.SyncViewSize()
	ac.panning = false
	ac.release(ac.lastPos)
}

// Scrolled implements fyne.Scrollable.
func (ac *AnnotationCanvas) Scrolled(ev *fyne.ScrollEvent) {
	ac.SyncViewSize()
	anchor := geometry.NewPoint2D(float64(ev.Position.X), float64(ev.Position.Y))
	switch {
	case ev.Scrolled.DY > 0:
		ac.session.ZoomAt(ac.zoomStep, anchor)
	case ev.Scrolled.DY < 0:
		ac.session.ZoomAt(1/ac.zoomStep, anchor)
	}
}

// Cursor implements desktop.Cursorable.
func (ac *AnnotationCanvas) Cursor() desktop.Cursor {
	return desktop.CrosshairCursor
}

// draw is the raster callback. It runs on the paint goroutine and only
// touches the published frame and the atomic view size. A resize the
// session has not seen yet is refitted here.
func (ac *AnnotationCanvas) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	f := ac.session.Frame()
	if f == nil {
		return out
	}

	frame := *f
	if size := ac.viewSize.Load(); size != nil && size.Width > 0 {
		frame = frame.Resized(geometry.NewSize(float64(size.Width), float64(size.Height)))

		// The raster is in device pixels, the viewport in canvas units.
		ratio := float64(w) / float64(size.Width)
		frame.Viewport = render.Viewport{
			Scale:   frame.Viewport.Scale * ratio,
			OffsetX: frame.Viewport.OffsetX * ratio,
			OffsetY: frame.Viewport.OffsetY * ratio,
		}
	}

	ac.paintMu.Lock()
	ac.renderer.Render(out, frame)
	ac.paintMu.Unlock()
	return out
}

// CreateRenderer implements fyne.Widget.
func (ac *AnnotationCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &annotationCanvasRenderer{canvas: ac}
}

type annotationCanvasRenderer struct {
	canvas *AnnotationCanvas
}

// Layout may run off the event goroutine, so it records the size for draw
// and SyncViewSize without touching the session.
func (r *annotationCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.viewSize.Store(&size)
	r.canvas.raster.Resize(size)
}

func (r *annotationCanvasRenderer) MinSize() fyne.Size {
	return r.canvas.raster.MinSize()
}

func (r *annotationCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *annotationCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster}
}

func (r *annotationCanvasRenderer) Destroy() {}
