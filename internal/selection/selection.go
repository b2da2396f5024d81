// Package selection derives the editor controls' view of the active object
// from surface change notifications.
package selection

import (
	"github.com/example/memeshot/internal/scene"
)

// Mode is what kind of object, if any, is selected.
type Mode int

const (
	NoSelection Mode = iota
	TextSelected
	ImageSelected
)

func (m Mode) String() string {
	switch m {
	case TextSelected:
		return "text"
	case ImageSelected:
		return "image"
	}
	return "none"
}

const (
	// DefaultFontFamily matches the family given to new text objects.
	DefaultFontFamily = scene.DefaultFontFamily
	// DefaultFill matches the fill given to new text objects.
	DefaultFill = "#ffffff"
)

// State mirrors the properties shown by the editor controls.
type State struct {
	Mode          Mode
	ActiveID      int
	FontFamily    string
	Fill          string
	TextSelected  bool
	ImageSelected bool
	Filter        string
	FlipX, FlipY  bool
}

// Initial is the state with nothing selected.
func Initial() State {
	return State{Mode: NoSelection, FontFamily: DefaultFontFamily, Fill: DefaultFill}
}

// Reduce returns the state that follows ev. It never mutates its inputs.
func Reduce(st State, ev scene.Event) State {
	switch ev.Kind {
	case scene.SelectionCreated, scene.SelectionUpdated:
		if ev.Target == nil {
			return Initial()
		}
		return enter(ev.Target)
	case scene.SelectionCleared:
		return Initial()
	case scene.ObjectModified:
		if ev.Target == nil || ev.Target.ID != st.ActiveID || st.Mode == NoSelection {
			return st
		}
		return enter(ev.Target)
	}
	return st
}

// ReduceAll folds events into st in order.
func ReduceAll(st State, events []scene.Event) State {
	for _, ev := range events {
		st = Reduce(st, ev)
	}
	return st
}

func enter(o *scene.Object) State {
	switch o.Kind {
	case scene.KindText:
		return State{
			Mode:         TextSelected,
			ActiveID:     o.ID,
			FontFamily:   o.FontFamily,
			Fill:         scene.Hex(o.Fill),
			TextSelected: true,
		}
	case scene.KindImage:
		st := Initial()
		st.Mode = ImageSelected
		st.ActiveID = o.ID
		st.ImageSelected = true
		st.Filter = o.Filter
		st.FlipX, st.FlipY = o.FlipX, o.FlipY
		return st
	}
	return Initial()
}
