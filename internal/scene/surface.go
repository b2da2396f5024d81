// Package scene models the editable surface: an ordered list of text and
// image objects over a background colour and optional background image.
package scene

import (
	"image"
	"image/color"
)

// EventKind identifies a change notification queued by a Surface.
type EventKind int

const (
	SelectionCreated EventKind = iota
	SelectionUpdated
	SelectionCleared
	ObjectModified
)

func (k EventKind) String() string {
	switch k {
	case SelectionCreated:
		return "selection:created"
	case SelectionUpdated:
		return "selection:updated"
	case SelectionCleared:
		return "selection:cleared"
	case ObjectModified:
		return "object:modified"
	}
	return "unknown"
}

// Event is a change notification. Target is a snapshot of the object taken
// when the event was queued and is nil for SelectionCleared.
type Event struct {
	Kind   EventKind
	Target *Object
}

// Surface owns the objects of one editor. It is not safe for concurrent use;
// all mutation happens on the goroutine that drives the editor.
type Surface struct {
	width, height   int
	background      color.RGBA
	backgroundImage image.Image
	objects         []*Object
	active          *Object
	disposed        bool
	nextID          int
	events          []Event
}

// New creates a surface of the given size with a white background.
func New(width, height int) *Surface {
	return &Surface{
		width:      width,
		height:     height,
		background: color.RGBA{255, 255, 255, 255},
		nextID:     1,
	}
}

// Dispose releases the objects. Calling it more than once is harmless.
func (s *Surface) Dispose() {
	if s == nil || s.disposed {
		return
	}
	s.disposed = true
	s.objects = nil
	s.active = nil
	s.backgroundImage = nil
	s.events = nil
}

// Disposed reports whether Dispose has been called.
func (s *Surface) Disposed() bool { return s == nil || s.disposed }

func (s *Surface) Width() int  { return s.width }
func (s *Surface) Height() int { return s.height }

// SetDimensions resizes the surface. Objects keep their positions.
func (s *Surface) SetDimensions(width, height int) {
	if s.Disposed() || width <= 0 || height <= 0 {
		return
	}
	s.width, s.height = width, height
}

func (s *Surface) Background() color.RGBA { return s.background }

// SetBackground sets the background colour layer.
func (s *Surface) SetBackground(c color.RGBA) {
	if s.Disposed() {
		return
	}
	s.background = c
}

func (s *Surface) BackgroundImage() image.Image { return s.backgroundImage }

// SetBackgroundImage sets the image layer painted above the background colour.
// A nil image removes it.
func (s *Surface) SetBackgroundImage(img image.Image) {
	if s.Disposed() {
		return
	}
	s.backgroundImage = img
}

// Add appends o to the top of the stack and assigns its ID.
func (s *Surface) Add(o *Object) *Object {
	if s.Disposed() || o == nil {
		return nil
	}
	o.ID = s.nextID
	s.nextID++
	s.objects = append(s.objects, o)
	return o
}

// Remove deletes o. Removing the active object clears the selection.
func (s *Surface) Remove(o *Object) bool {
	if s.Disposed() || o == nil {
		return false
	}
	for i, existing := range s.objects {
		if existing != o {
			continue
		}
		if s.active == o {
			s.Discard()
		}
		s.objects = append(s.objects[:i], s.objects[i+1:]...)
		return true
	}
	return false
}

// Objects returns the objects bottom to top.
func (s *Surface) Objects() []*Object {
	out := make([]*Object, len(s.objects))
	copy(out, s.objects)
	return out
}

// Object finds an object by ID.
func (s *Surface) Object(id int) *Object {
	for _, o := range s.objects {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// Active returns the selected object, if any.
func (s *Surface) Active() *Object {
	if s.Disposed() {
		return nil
	}
	return s.active
}

// SetActive selects o and queues SelectionCreated when nothing was selected
// or SelectionUpdated when the selection moved. Reselecting is a no-op.
func (s *Surface) SetActive(o *Object) {
	if s.Disposed() || o == nil || s.active == o {
		return
	}
	if s.Object(o.ID) != o {
		return
	}
	kind := SelectionUpdated
	if s.active == nil {
		kind = SelectionCreated
	}
	s.active = o
	s.emit(kind, o)
}

// Discard clears the selection and queues SelectionCleared.
func (s *Surface) Discard() {
	if s.Disposed() || s.active == nil {
		return
	}
	s.active = nil
	s.emit(SelectionCleared, nil)
}

// Modified queues ObjectModified for o.
func (s *Surface) Modified(o *Object) {
	if s.Disposed() || o == nil {
		return
	}
	s.emit(ObjectModified, o)
}

// ObjectAt returns the topmost object under the point.
func (s *Surface) ObjectAt(x, y float64) *Object {
	for i := len(s.objects) - 1; i >= 0; i-- {
		if s.objects[i].Contains(x, y) {
			return s.objects[i]
		}
	}
	return nil
}

// TakeEvents returns and clears the queued notifications.
func (s *Surface) TakeEvents() []Event {
	ev := s.events
	s.events = nil
	return ev
}

func (s *Surface) emit(kind EventKind, o *Object) {
	s.events = append(s.events, Event{Kind: kind, Target: o.Clone()})
}
