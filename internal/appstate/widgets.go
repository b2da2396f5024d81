package appstate

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"

	"github.com/example/memeshot/internal/theme"
)

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

// shortcutList is a helper to easily satisfy the KeyboardShortcuts interface.
type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// Button represents an interactive UI element.
// Activate performs the button's action when clicked.
type Button interface {
	Draw(dst *image.RGBA, th *theme.Theme, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// ActionButton is a toolbar button that triggers a named action.
type ActionButton struct {
	label   string
	action  string
	rect    image.Rectangle
	trigger func(string)
}

var _ Button = (*ActionButton)(nil)

func (b *ActionButton) Draw(dst *image.RGBA, th *theme.Theme, state ButtonState) {
	bg, fg := th.ButtonBackground, th.ButtonText
	switch state {
	case StateHover:
		bg = th.ButtonBackgroundHover
	case StatePressed:
		bg = th.ButtonActive
	}
	draw.Draw(dst, b.rect, &image.Uniform{bg}, image.Point{}, draw.Src)
	drawRect(dst, b.rect, th.ButtonBorder)
	drawLabel(dst, b.label, b.rect.Min.X+4, b.rect.Min.Y+16, fg)
}

func (b *ActionButton) Rect() image.Rectangle { return b.rect }

func (b *ActionButton) SetRect(r image.Rectangle) { b.rect = r }

func (b *ActionButton) Activate() {
	if b.trigger != nil {
		b.trigger(b.action)
	}
}

// Shortcut is a clickable hint in the bottom bar.
type Shortcut struct {
	label  string
	action func()
	rect   image.Rectangle
}

var _ Button = (*Shortcut)(nil)

func (s *Shortcut) Draw(dst *image.RGBA, th *theme.Theme, state ButtonState) {
	col := th.StatusBackground
	switch state {
	case StateHover:
		col = th.ButtonBackgroundHover
	case StatePressed:
		col = th.ButtonBackgroundPress
	}
	draw.Draw(dst, s.rect, &image.Uniform{col}, image.Point{}, draw.Src)
	drawRect(dst, s.rect, th.ButtonBorder)
	drawLabel(dst, s.label, s.rect.Min.X+2, s.rect.Min.Y+14, th.StatusText)
}

func (s *Shortcut) Rect() image.Rectangle { return s.rect }

func (s *Shortcut) SetRect(r image.Rectangle) { s.rect = r }

func (s *Shortcut) Activate() {
	if s.action != nil {
		s.action()
	}
}

// PaletteColor is a named swatch colour.
type PaletteColor struct {
	Name  string
	Color color.RGBA
}

// palette is the set of swatches offered for text and background colour.
var palette = []PaletteColor{
	{"White", color.RGBA{255, 255, 255, 255}},
	{"Black", color.RGBA{0, 0, 0, 255}},
	{"Red", color.RGBA{229, 57, 53, 255}},
	{"Orange", color.RGBA{251, 140, 0, 255}},
	{"Yellow", color.RGBA{255, 235, 59, 255}},
	{"Lime", color.RGBA{124, 179, 66, 255}},
	{"Cyan", color.RGBA{0, 188, 212, 255}},
	{"Blue", color.RGBA{30, 136, 229, 255}},
	{"Purple", color.RGBA{142, 36, 170, 255}},
	{"Pink", color.RGBA{236, 64, 122, 255}},
	{"Gray", color.RGBA{117, 117, 117, 255}},
	{"Navy", color.RGBA{26, 35, 126, 255}},
}

// Palette returns a copy of the swatch colours.
func Palette() []PaletteColor {
	out := make([]PaletteColor, len(palette))
	copy(out, palette)
	return out
}

type swatchView struct {
	rect     image.Rectangle
	color    color.RGBA
	selected bool
	hover    bool
}

func drawSwatch(dst *image.RGBA, th *theme.Theme, s swatchView) {
	draw.Draw(dst, s.rect, &image.Uniform{s.color}, image.Point{}, draw.Src)
	border := th.ButtonBorder
	if s.hover {
		border = th.Selection
	}
	drawRect(dst, s.rect, border)
	if s.selected {
		drawRect(dst, s.rect.Inset(-2), th.ButtonActive)
	}
}

func measureLabel(s string) int {
	d := &font.Drawer{Face: basicfont.Face7x13}
	return d.MeasureString(s).Ceil()
}

func drawLabel(dst *image.RGBA, s string, x, y int, col color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: basicfont.Face7x13, Dot: fixed.P(x, y)}
	d.DrawString(s)
}

// drawRect outlines rect one pixel wide, clipped to dst.
func drawRect(dst *image.RGBA, rect image.Rectangle, col color.Color) {
	u := &image.Uniform{col}
	edges := []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+1),
		image.Rect(rect.Min.X, rect.Max.Y-1, rect.Max.X, rect.Max.Y),
		image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+1, rect.Max.Y),
		image.Rect(rect.Max.X-1, rect.Min.Y, rect.Max.X, rect.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), u, image.Point{}, draw.Src)
	}
}

// drawDashedRect outlines rect with alternating dashes of c1 and c2.
func drawDashedRect(dst *image.RGBA, rect image.Rectangle, dash int, c1, c2 color.Color) {
	if dash < 1 {
		dash = 1
	}
	pick := func(i int) color.Color {
		if (i/dash)%2 == 0 {
			return c1
		}
		return c2
	}
	b := dst.Bounds()
	set := func(x, y int, c color.Color) {
		if image.Pt(x, y).In(b) {
			dst.Set(x, y, c)
		}
	}
	for x := rect.Min.X; x < rect.Max.X; x++ {
		i := x - rect.Min.X
		set(x, rect.Min.Y, pick(i))
		set(x, rect.Max.Y-1, pick(i))
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		i := y - rect.Min.Y
		set(rect.Min.X, y, pick(i))
		set(rect.Max.X-1, y, pick(i))
	}
}
