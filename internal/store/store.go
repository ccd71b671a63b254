// Package store holds the ordered set of overlays and the current selection.
package store

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/google/uuid"

	"image-annotator/internal/logging"
	"image-annotator/internal/shape"
	"image-annotator/pkg/geometry"
)

// ErrDegenerate is returned by Create for geometry that encloses nothing.
var ErrDegenerate = errors.New("degenerate shape geometry")

// maxIDAttempts bounds the retries when the id generator collides.
const maxIDAttempts = 8

// Patch carries independently optional geometry and style fields for Update.
type Patch struct {
	shape.StylePatch
	Start *geometry.Point2D
	End   *geometry.Point2D
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.StylePatch.IsEmpty() && p.Start == nil && p.End == nil
}

// Store keeps overlays in z-order (first is bottom) with an id index.
// It is not safe for concurrent use; the editor session serializes access.
type Store struct {
	overlays []shape.Overlay
	index    map[string]int

	selected string

	newID func() string
}

// New creates an empty store that assigns random UUIDs.
func New() *Store {
	return &Store{
		overlays: make([]shape.Overlay, 0),
		index:    make(map[string]int),
		newID:    uuid.NewString,
	}
}

// SetIDGenerator replaces the id source. A nil generator restores UUIDs.
func (s *Store) SetIDGenerator(gen func() string) {
	if gen == nil {
		gen = uuid.NewString
	}
	s.newID = gen
}

// Create appends a new overlay on top of the others and returns its id.
func (s *Store) Create(t shape.Type, style shape.Style, g shape.Geometry) (string, error) {
	if shape.IsDegenerate(t, g) {
		return "", fmt.Errorf("create %s: %w", t, ErrDegenerate)
	}

	id, err := s.uniqueID()
	if err != nil {
		return "", err
	}

	s.index[id] = len(s.overlays)
	s.overlays = append(s.overlays, shape.Overlay{
		ID:       id,
		Type:     t,
		Geometry: g,
		Style:    style.Clamped(),
	})
	logging.Logger().Debug("shape created", "id", id, "type", t.String())
	return id, nil
}

func (s *Store) uniqueID() (string, error) {
	for range maxIDAttempts {
		id := s.newID()
		if id == "" {
			continue
		}
		if _, taken := s.index[id]; !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("no unique shape id after %d attempts", maxIDAttempts)
}

// Update merges the non-nil fields of p into the overlay. Returns false for
// an unknown id, and for a geometry change that would leave the shape
// degenerate; the overlay is then left untouched.
func (s *Store) Update(id string, p Patch) bool {
	i, ok := s.index[id]
	if !ok {
		logging.Logger().Warn("update of unknown shape", "id", id)
		return false
	}

	o := &s.overlays[i]
	g := o.Geometry
	if p.Start != nil {
		g.Start = *p.Start
	}
	if p.End != nil {
		g.End = *p.End
	}
	if shape.IsDegenerate(o.Type, g) {
		logging.Logger().Warn("update rejected", "id", id, "error", ErrDegenerate)
		return false
	}

	o.Geometry = g
	if !p.StylePatch.IsEmpty() {
		o.Style = p.StylePatch.Apply(o.Style)
	}
	return true
}

// Remove deletes the overlay and clears the selection if it pointed at it.
func (s *Store) Remove(id string) bool {
	i, ok := s.index[id]
	if !ok {
		logging.Logger().Warn("remove of unknown shape", "id", id)
		return false
	}

	s.overlays = append(s.overlays[:i], s.overlays[i+1:]...)
	delete(s.index, id)
	s.reindex(i)

	if s.selected == id {
		s.selected = ""
	}
	logging.Logger().Debug("shape removed", "id", id)
	return true
}

// ReorderToFront moves the overlay to the top of the z-order.
func (s *Store) ReorderToFront(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	if i == len(s.overlays)-1 {
		return true
	}

	o := s.overlays[i]
	s.overlays = append(s.overlays[:i], s.overlays[i+1:]...)
	s.overlays = append(s.overlays, o)
	s.reindex(i)
	return true
}

// reindex refreshes the index for every overlay at or above position from.
func (s *Store) reindex(from int) {
	for i := from; i < len(s.overlays); i++ {
		s.index[s.overlays[i].ID] = i
	}
}

// List yields copies of the overlays bottom to top. The sequence is lazy and
// can be ranged over more than once. Each range works on the overlays as
// they were when it started, so the store may be changed inside the loop.
func (s *Store) List() iter.Seq[shape.Overlay] {
	return func(yield func(shape.Overlay) bool) {
		for _, o := range slices.Clone(s.overlays) {
			if !yield(o) {
				return
			}
		}
	}
}

// Snapshot returns a copy of all overlays in z-order.
func (s *Store) Snapshot() []shape.Overlay {
	out := make([]shape.Overlay, len(s.overlays))
	copy(out, s.overlays)
	return out
}

// Len returns the number of overlays.
func (s *Store) Len() int {
	return len(s.overlays)
}

// Get returns a copy of the overlay with the given id.
func (s *Store) Get(id string) (shape.Overlay, bool) {
	i, ok := s.index[id]
	if !ok {
		return shape.Overlay{}, false
	}
	return s.overlays[i], true
}

// Select makes id the single selected overlay. Unknown ids leave the
// selection unchanged.
func (s *Store) Select(id string) bool {
	if _, ok := s.index[id]; !ok {
		return false
	}
	s.selected = id
	return true
}

// Deselect clears the selection.
func (s *Store) Deselect() {
	s.selected = ""
}

// Selected returns the selected id, if any.
func (s *Store) Selected() (string, bool) {
	return s.selected, s.selected != ""
}

// TopmostAt returns the id of the highest overlay under p.
func (s *Store) TopmostAt(p geometry.Point2D) (string, bool) {
	for i := len(s.overlays) - 1; i >= 0; i-- {
		if shape.HitTest(s.overlays[i], p) {
			return s.overlays[i].ID, true
		}
	}
	return "", false
}

// Clear removes every overlay and the selection.
func (s *Store) Clear() {
	s.overlays = s.overlays[:0]
	clear(s.index)
	s.selected = ""
}
