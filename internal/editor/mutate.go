package editor

import (
	"fmt"
	"strings"

	"github.com/example/memeshot/internal/filter"
	"github.com/example/memeshot/internal/render"
	"github.com/example/memeshot/internal/scene"
)

// Axis selects the mirror direction for Flip.
type Axis int

const (
	// Horizontal mirrors left to right.
	Horizontal Axis = iota
	// Vertical mirrors top to bottom.
	Vertical
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// ParseAxis accepts "horizontal", "vertical", "x", "y", "h" or "v".
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h", "x":
		return Horizontal, nil
	case "vertical", "v", "y":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("unknown flip axis %q", s)
}

// Flip mirrors the selected image. Anything else is logged and ignored.
func (e *Editor) Flip(axis Axis) error {
	o, err := e.activeOf(scene.KindImage)
	if err != nil {
		return warn("flip", err)
	}
	if axis == Vertical {
		o.FlipY = !o.FlipY
	} else {
		o.FlipX = !o.FlipX
	}
	e.modified(o)
	return nil
}

// CycleFilter moves the selected image on to the next filter and returns its
// name.
func (e *Editor) CycleFilter() (string, error) {
	o, err := e.activeOf(scene.KindImage)
	if err != nil {
		return "", warn("filter", err)
	}
	next := filter.Next(o.Filter)
	if err := o.SetFilter(next); err != nil {
		return "", err
	}
	e.modified(o)
	return o.Filter, nil
}

// SetFilter applies the named filter to the selected image.
func (e *Editor) SetFilter(name string) error {
	o, err := e.activeOf(scene.KindImage)
	if err != nil {
		return warn("filter", err)
	}
	if err := o.SetFilter(name); err != nil {
		return err
	}
	e.modified(o)
	return nil
}

// SetShadow toggles the drop shadow of the selected image.
func (e *Editor) SetShadow(on bool) error {
	o, err := e.activeOf(scene.KindImage)
	if err != nil {
		return err
	}
	if on && o.Shadow == nil {
		sh := render.DefaultShadowOptions()
		o.Shadow = &sh
	} else if !on {
		o.Shadow = nil
	}
	e.modified(o)
	return nil
}

// SetText replaces the caption of the selected text object.
func (e *Editor) SetText(s string) error {
	o, err := e.activeOf(scene.KindText)
	if err != nil {
		return err
	}
	o.Text = s
	e.modified(o)
	return nil
}

// SetTextColor changes the fill of the selected text object.
func (e *Editor) SetTextColor(hex string) error {
	c, err := scene.ParseHex(hex)
	if err != nil {
		return fmt.Errorf("text colour: %w", err)
	}
	o, err := e.activeOf(scene.KindText)
	if err != nil {
		return err
	}
	o.Fill = c
	e.modified(o)
	return nil
}

// SetFontFamily changes the family of the selected text object.
func (e *Editor) SetFontFamily(name string) error {
	if !scene.HasFontFamily(name) {
		return fmt.Errorf("unknown font family %q", name)
	}
	o, err := e.activeOf(scene.KindText)
	if err != nil {
		return err
	}
	o.FontFamily = name
	e.modified(o)
	return nil
}

// Move shifts the selected object by dx, dy surface pixels.
func (e *Editor) Move(dx, dy float64) error {
	o, err := e.active()
	if err != nil {
		return err
	}
	o.Left += dx
	o.Top += dy
	e.modified(o)
	return nil
}

// Rotate turns the selected object by deg degrees clockwise.
func (e *Editor) Rotate(deg float64) error {
	o, err := e.active()
	if err != nil {
		return err
	}
	o.Angle += deg
	e.modified(o)
	return nil
}

// ScaleBy multiplies the scale of the selected object by f.
func (e *Editor) ScaleBy(f float64) error {
	if f <= 0 {
		return fmt.Errorf("scale factor %v must be positive", f)
	}
	o, err := e.active()
	if err != nil {
		return err
	}
	o.ScaleX *= f
	o.ScaleY *= f
	e.modified(o)
	return nil
}

// DeleteSelected removes the selected object.
func (e *Editor) DeleteSelected() error {
	o, err := e.active()
	if err != nil {
		return err
	}
	e.surface.Remove(o)
	e.sync()
	return nil
}

// Select makes the object with id active.
func (e *Editor) Select(id int) error {
	if !e.Mounted() {
		return ErrNoSurface
	}
	o := e.surface.Object(id)
	if o == nil {
		return fmt.Errorf("select %d: no such object", id)
	}
	e.surface.SetActive(o)
	e.sync()
	return nil
}

// SelectAt selects the topmost object under x, y, or clears the selection
// when there is none. It reports whether an object was hit.
func (e *Editor) SelectAt(x, y float64) bool {
	if !e.Mounted() {
		return false
	}
	o := e.surface.ObjectAt(x, y)
	if o == nil {
		e.surface.Discard()
	} else {
		e.surface.SetActive(o)
	}
	e.sync()
	return o != nil
}

// Deselect clears the selection.
func (e *Editor) Deselect() {
	if !e.Mounted() {
		return
	}
	e.surface.Discard()
	e.sync()
}

func (e *Editor) modified(o *scene.Object) {
	e.surface.Modified(o)
	e.sync()
}
