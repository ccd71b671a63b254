// Package editor turns pointer gestures into shape edits and owns the
// per-session editing state.
package editor

import (
	"image-annotator/internal/logging"
	"image-annotator/internal/settings"
	"image-annotator/internal/shape"
	"image-annotator/internal/store"
	"image-annotator/pkg/geometry"
)

// State is the controller's gesture state.
type State int

const (
	Idle State = iota
	Drawing
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonTertiary
)

// PointerEvent is a pointer sample. The session receives Position in screen
// space and hands the controller image-space events.
type PointerEvent struct {
	Position geometry.Point2D
	Shift    bool
	Button   Button
}

// Change reports what a controller step modified.
type Change uint8

const (
	ChangeShapes Change = 1 << iota
	ChangeSelection
	ChangeFrame
	// ChangeDragged marks a shape moved mid-drag. The frame picks it up at
	// once; listeners hear about it when the drag ends.
	ChangeDragged
)

// Has reports whether c includes all bits of other.
func (c Change) Has(other Change) bool {
	return c&other == other
}

// Controller is the pointer state machine. The shape being drawn lives here
// until pointer-up and never enters the store mid-gesture.
type Controller struct {
	store    *store.Store
	settings *settings.Model

	state       State
	provisional shape.Overlay

	dragID     string
	dragOrigin shape.Geometry
	dragGrab   geometry.Point2D
	dragMoved  bool
}

// NewController creates an idle controller.
func NewController(st *store.Store, sm *settings.Model) *Controller {
	return &Controller{store: st, settings: sm}
}

// State returns the current gesture state.
func (c *Controller) State() State {
	return c.state
}

// Provisional returns the shape being drawn, if any.
func (c *Controller) Provisional() (shape.Overlay, bool) {
	if c.state != Drawing {
		return shape.Overlay{}, false
	}
	return c.provisional, true
}

// Down starts a gesture: pressing on a shape selects it and starts moving
// it, pressing on empty space clears the selection and starts drawing.
func (c *Controller) Down(ev PointerEvent) Change {
	if ev.Button != ButtonPrimary || c.state != Idle {
		return 0
	}

	prev, hadSelection := c.store.Selected()

	if id, ok := c.store.TopmostAt(ev.Position); ok {
		o, _ := c.store.Get(id)
		c.store.Select(id)
		c.state = Dragging
		c.dragID = id
		c.dragOrigin = o.Geometry
		c.dragGrab = ev.Position
		c.dragMoved = false
		logging.Logger().Debug("drag started", "id", id)

		if !hadSelection || prev != id {
			return ChangeSelection | ChangeFrame
		}
		return ChangeFrame
	}

	c.store.Deselect()
	cur := c.settings.Current()
	c.state = Drawing
	c.provisional = shape.Overlay{
		Type:     cur.Type,
		Geometry: shape.Geometry{Start: ev.Position, End: ev.Position},
		Style:    cur.Style,
	}
	logging.Logger().Debug("drawing started", "type", cur.Type.String())

	if hadSelection {
		return ChangeSelection | ChangeFrame
	}
	return ChangeFrame
}

// Move updates the gesture in progress in constant time.
func (c *Controller) Move(ev PointerEvent) Change {
	switch c.state {
	case Drawing:
		c.provisional.End = shape.ApplyConstraint(c.provisional.Start, ev.Position, ev.Shift)
		return ChangeFrame
	case Dragging:
		g := c.dragOrigin.Translate(ev.Position.Sub(c.dragGrab))
		if !c.store.Update(c.dragID, store.Patch{Start: &g.Start, End: &g.End}) {
			changed := ChangeFrame
			if c.dragMoved {
				changed |= ChangeShapes
			}
			c.reset()
			return changed
		}
		c.dragMoved = true
		return ChangeDragged | ChangeFrame
	default:
		return 0
	}
}

// Up finishes the gesture. A drawn shape is committed and selected unless
// its geometry is degenerate, in which case it is dropped.
func (c *Controller) Up(ev PointerEvent) Change {
	if ev.Button != ButtonPrimary {
		return 0
	}

	switch c.state {
	case Drawing:
		o := c.provisional
		o.End = shape.ApplyConstraint(o.Start, ev.Position, ev.Shift)
		c.reset()

		id, err := c.store.Create(o.Type, o.Style, o.Geometry)
		if err != nil {
			logging.Logger().Debug("drawing discarded", "error", err)
			return ChangeFrame
		}
		c.store.Select(id)
		return ChangeShapes | ChangeSelection | ChangeFrame
	case Dragging:
		logging.Logger().Debug("drag finished", "id", c.dragID, "moved", c.dragMoved)
		changed := ChangeFrame
		if c.dragMoved {
			changed |= ChangeShapes
		}
		c.reset()
		return changed
	default:
		return 0
	}
}

// Cancel abandons the gesture. A shape being drawn is discarded and a shape
// being moved returns to where it started.
func (c *Controller) Cancel() Change {
	switch c.state {
	case Drawing:
		c.reset()
		return ChangeFrame
	case Dragging:
		changed := ChangeFrame
		if c.dragMoved {
			origin := c.dragOrigin
			c.store.Update(c.dragID, store.Patch{Start: &origin.Start, End: &origin.End})
			changed |= ChangeShapes
		}
		c.reset()
		return changed
	default:
		return 0
	}
}

func (c *Controller) reset() {
	c.state = Idle
	c.provisional = shape.Overlay{}
	c.dragID = ""
	c.dragOrigin = shape.Geometry{}
	c.dragMoved = false
}
