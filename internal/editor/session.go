package editor

import (
	"image"
	"iter"
	"reflect"
	"sync/atomic"

	"image-annotator/internal/logging"
	"image-annotator/internal/render"
	"image-annotator/internal/settings"
	"image-annotator/internal/shape"
	"image-annotator/internal/store"
	"image-annotator/pkg/geometry"
)

// EventType identifies session events.
type EventType int

const (
	// EventShapesChanged carries a []shape.Overlay snapshot.
	EventShapesChanged EventType = iota
	// EventSelectionChanged carries the selected id, empty for none.
	EventSelectionChanged
	// EventSettingsChanged carries the new settings.Settings.
	EventSettingsChanged
	// EventBackgroundChanged carries the image.Image, possibly nil.
	EventBackgroundChanged
	// EventFrameChanged carries the *render.Frame to draw.
	EventFrameChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Options configures a session.
type Options struct {
	Defaults    settings.Settings
	Zoom        render.ZoomLimits
	IDGenerator func() string
}

// DefaultOptions returns the built-in session options.
func DefaultOptions() Options {
	return Options{
		Defaults: settings.Defaults(),
		Zoom:     render.DefaultZoomLimits(),
	}
}

// Session is one editing context: the shapes, the tool settings, the
// background image and the viewport. It is driven from a single goroutine;
// only Frame may be called from elsewhere.
type Session struct {
	store      *store.Store
	settings   *settings.Model
	controller *Controller

	defaults   settings.Settings
	zoom       render.ZoomLimits
	viewport   render.Viewport
	viewSize   geometry.Size
	userZoomed bool
	background image.Image

	shapesSnap []shape.Overlay
	frame      atomic.Pointer[render.Frame]

	listeners map[EventType][]EventListener
}

// NewSession creates an empty session.
func NewSession(opts Options) *Session {
	if opts.Zoom.Max <= 0 || opts.Zoom.Min <= 0 || opts.Zoom.Min > opts.Zoom.Max {
		opts.Zoom = render.DefaultZoomLimits()
	}

	st := store.New()
	st.SetIDGenerator(opts.IDGenerator)
	sm := settings.NewModel(opts.Defaults, st)

	s := &Session{
		store:      st,
		settings:   sm,
		controller: NewController(st, sm),
		defaults:   opts.Defaults,
		zoom:       opts.Zoom,
		viewport:   render.IdentityViewport(),
		listeners:  make(map[EventType][]EventListener),
	}
	s.publish()
	return s
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	for _, listener := range s.listeners[event] {
		listener(data)
	}
}

// Settings returns the current tool settings.
func (s *Session) Settings() settings.Settings {
	return s.settings.Current()
}

// Shapes yields the overlays bottom to top.
func (s *Session) Shapes() iter.Seq[shape.Overlay] {
	return s.store.List()
}

// Shape returns the overlay with the given id.
func (s *Session) Shape(id string) (shape.Overlay, bool) {
	return s.store.Get(id)
}

// SelectedID returns the selected overlay id, or "" when nothing is selected.
func (s *Session) SelectedID() string {
	id, _ := s.store.Selected()
	return id
}

// State returns the controller's gesture state.
func (s *Session) State() State {
	return s.controller.State()
}

// Background returns the current background image, possibly nil.
func (s *Session) Background() image.Image {
	return s.background
}

// Frame returns the most recently published frame. Safe for concurrent use.
func (s *Session) Frame() *render.Frame {
	return s.frame.Load()
}

// OnSettingsChange applies a panel settings change. Style fields also
// restyle the selected shape.
func (s *Session) OnSettingsChange(p settings.Patch) {
	_, hadSelection := s.store.Selected()
	cur := s.settings.Set(p)

	s.Emit(EventSettingsChanged, cur)
	if hadSelection && !p.StylePatch.IsEmpty() {
		s.apply(ChangeShapes | ChangeFrame)
		return
	}
	s.apply(0)
}

// OnSelectShape selects the shape with the given id; an empty id clears the
// selection. Unknown ids are ignored.
func (s *Session) OnSelectShape(id string) {
	if s.SelectedID() == id {
		return
	}
	changed := s.controller.Cancel()

	if id == "" {
		s.store.Deselect()
	} else if !s.store.Select(id) {
		logging.Logger().Warn("select of unknown shape", "id", id)
		s.apply(changed)
		return
	}
	s.apply(changed | ChangeSelection | ChangeFrame)
}

// OnRemoveShape deletes the shape with the given id.
func (s *Session) OnRemoveShape(id string) {
	changed := s.controller.Cancel()

	wasSelected := s.SelectedID() == id
	if !s.store.Remove(id) {
		s.apply(changed)
		return
	}
	changed |= ChangeShapes | ChangeFrame
	if wasSelected {
		changed |= ChangeSelection
	}
	s.apply(changed)
}

// BringToFront moves the shape to the top of the z-order.
func (s *Session) BringToFront(id string) {
	if s.store.ReorderToFront(id) {
		s.apply(ChangeShapes | ChangeFrame)
	}
}

// SetBackgroundImage replaces the background. Setting the same image again
// does nothing.
func (s *Session) SetBackgroundImage(img image.Image) {
	if sameImage(s.background, img) {
		return
	}
	s.background = img
	s.userZoomed = false
	s.fit()

	if img != nil {
		b := img.Bounds()
		logging.Logger().Info("background image set", "width", b.Dx(), "height", b.Dy())
	}
	s.Emit(EventBackgroundChanged, img)
	s.apply(ChangeFrame)
}

// ClearShapes removes every overlay and the selection.
func (s *Session) ClearShapes() {
	s.controller.Cancel()
	s.store.Clear()
	s.apply(ChangeShapes | ChangeSelection | ChangeFrame)
}

// Reset returns the session to its initial state: no background, no shapes,
// default settings and viewport.
func (s *Session) Reset() {
	s.controller.Cancel()
	s.store.Clear()
	s.settings.Reset(s.defaults)
	s.background = nil
	s.viewport = render.IdentityViewport()
	s.userZoomed = false

	logging.Logger().Info("session reset")
	s.Emit(EventBackgroundChanged, nil)
	s.Emit(EventSettingsChanged, s.settings.Current())
	s.apply(ChangeShapes | ChangeSelection | ChangeFrame)
}

// PointerDown forwards a screen-space press to the controller.
func (s *Session) PointerDown(ev PointerEvent) {
	s.apply(s.controller.Down(s.toImage(ev)))
}

// PointerMove forwards a screen-space move to the controller.
func (s *Session) PointerMove(ev PointerEvent) {
	s.apply(s.controller.Move(s.toImage(ev)))
}

// PointerUp forwards a screen-space release to the controller.
func (s *Session) PointerUp(ev PointerEvent) {
	s.apply(s.controller.Up(s.toImage(ev)))
}

// Cancel abandons the gesture in progress.
func (s *Session) Cancel() {
	s.apply(s.controller.Cancel())
}

func (s *Session) toImage(ev PointerEvent) PointerEvent {
	ev.Position = s.viewport.ScreenToImage(ev.Position)
	return ev
}

// Viewport returns the current screen/image mapping.
func (s *Session) Viewport() render.Viewport {
	return s.viewport
}

// SetViewSize records the canvas size. Until the user zooms, the background
// is kept fitted to the view.
func (s *Session) SetViewSize(size geometry.Size) {
	if s.viewSize == size {
		return
	}
	s.viewSize = size
	if !s.userZoomed {
		s.fit()
		s.apply(ChangeFrame)
	}
}

// ZoomAt multiplies the zoom by factor around a screen-space anchor.
func (s *Session) ZoomAt(factor float64, anchor geometry.Point2D) {
	s.viewport = s.viewport.ZoomAt(s.viewport.Scale*factor, anchor, s.zoom)
	s.userZoomed = true
	s.apply(ChangeFrame)
}

// Pan shifts the view by a screen-space delta.
func (s *Session) Pan(dx, dy float64) {
	s.viewport = s.viewport.Pan(dx, dy)
	s.userZoomed = true
	s.apply(ChangeFrame)
}

// FitToView shows the whole background centered in the canvas.
func (s *Session) FitToView() {
	s.userZoomed = false
	s.fit()
	s.apply(ChangeFrame)
}

// ActualSize shows the background at 1:1, centered.
func (s *Session) ActualSize() {
	if s.background == nil {
		s.viewport = render.IdentityViewport()
	} else {
		b := s.background.Bounds()
		s.viewport = render.Viewport{
			Scale:   1,
			OffsetX: (s.viewSize.Width - float64(b.Dx())) / 2,
			OffsetY: (s.viewSize.Height - float64(b.Dy())) / 2,
		}
	}
	s.userZoomed = true
	s.apply(ChangeFrame)
}

func (s *Session) fit() {
	if s.background == nil {
		s.viewport = render.IdentityViewport()
		return
	}
	b := s.background.Bounds()
	s.viewport = render.Fit(geometry.NewSize(float64(b.Dx()), float64(b.Dy())), s.viewSize, s.zoom)
}

// apply emits the events named by changed and republishes the frame.
func (s *Session) apply(changed Change) {
	if changed&(ChangeShapes|ChangeDragged) != 0 {
		s.shapesSnap = nil
	}
	if changed == 0 {
		return
	}
	f := s.publish()

	if changed.Has(ChangeShapes) {
		s.Emit(EventShapesChanged, f.Shapes)
	}
	if changed.Has(ChangeSelection) {
		s.Emit(EventSelectionChanged, f.SelectedID)
	}
	s.Emit(EventFrameChanged, f)
}

// publish builds an immutable frame from the current state. The shapes
// slice is shared between frames until the shapes change.
func (s *Session) publish() *render.Frame {
	if s.shapesSnap == nil {
		s.shapesSnap = s.store.Snapshot()
	}
	f := &render.Frame{
		Viewport:   s.viewport,
		Background: s.background,
		Shapes:     s.shapesSnap,
		SelectedID: s.SelectedID(),
		ViewSize:   s.viewSize,
		Fitted:     !s.userZoomed,
		Zoom:       s.zoom,
	}
	if p, ok := s.controller.Provisional(); ok {
		f.Provisional = &p
	}
	s.frame.Store(f)
	return f
}

func sameImage(a, b image.Image) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
