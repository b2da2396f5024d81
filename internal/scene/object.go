package scene

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/fogleman/gg"

	"github.com/example/memeshot/internal/filter"
	"github.com/example/memeshot/internal/render"
)

// Kind tags what an Object draws.
type Kind int

const (
	KindText Kind = iota
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	}
	return "unknown"
}

// LineSpacing is the multiple of the font height between text baselines.
const LineSpacing = 1.16

// Object is a text box or image placed on a Surface. Left and Top locate the
// centre of the object in surface pixels.
type Object struct {
	ID          int
	Kind        Kind
	Left, Top   float64
	ScaleX      float64
	ScaleY      float64
	Angle       float64 // degrees clockwise
	Fill        color.RGBA
	Stroke      color.RGBA
	StrokeWidth float64

	Text       string
	FontFamily string
	FontSize   float64
	Width      float64 // wrap width for text, 0 disables wrapping

	Image  image.Image
	FlipX  bool
	FlipY  bool
	Filter string
	Shadow *render.ShadowOptions

	filtered image.Image
}

// NewText returns a text object at the origin with unit scale.
func NewText(text string) *Object {
	return &Object{
		Kind:       KindText,
		ScaleX:     1,
		ScaleY:     1,
		Fill:       color.RGBA{A: 255},
		Text:       text,
		FontFamily: DefaultFontFamily,
		FontSize:   40,
	}
}

// NewImage returns an image object at the origin with unit scale.
func NewImage(img image.Image) *Object {
	return &Object{
		Kind:   KindImage,
		ScaleX: 1,
		ScaleY: 1,
		Image:  img,
		Filter: filter.None,
	}
}

// Clone returns a shallow copy. Image data is shared and never mutated.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	c := *o
	if o.Shadow != nil {
		sh := *o.Shadow
		c.Shadow = &sh
	}
	return &c
}

// SetFilter applies the named filter to the source image and caches the
// result. Text objects are left untouched.
func (o *Object) SetFilter(name string) error {
	if o.Kind != KindImage || o.Image == nil {
		return nil
	}
	f, ok := filter.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown filter %q", name)
	}
	o.Filter = f.Name()
	if o.Filter == filter.None {
		o.filtered = nil
		return nil
	}
	o.filtered = f.Apply(o.Image)
	return nil
}

// Pixels returns the image as it should be drawn, after filtering.
func (o *Object) Pixels() image.Image {
	if o.filtered != nil {
		return o.filtered
	}
	return o.Image
}

// NaturalSize is the unscaled size of the object in surface pixels.
func (o *Object) NaturalSize() (w, h float64) {
	switch o.Kind {
	case KindImage:
		if o.Image == nil {
			return 0, 0
		}
		b := o.Image.Bounds()
		return float64(b.Dx()), float64(b.Dy())
	case KindText:
		lines, lineH, widest := o.layoutText(1)
		w = widest
		if o.Width > 0 {
			w = o.Width
		}
		return w, float64(len(lines)) * lineH
	}
	return 0, 0
}

// Bounds is the axis-aligned box around the transformed object.
func (o *Object) Bounds() image.Rectangle {
	w, h := o.NaturalSize()
	hw, hh := w*math.Abs(o.ScaleX)/2, h*math.Abs(o.ScaleY)/2
	rad := gg.Radians(o.Angle)
	cos, sin := math.Cos(rad), math.Sin(rad)
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range [][2]float64{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}} {
		x := o.Left + c[0]*cos - c[1]*sin
		y := o.Top + c[0]*sin + c[1]*cos
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
}

// Contains reports whether the surface point (x, y) falls on the object.
func (o *Object) Contains(x, y float64) bool {
	w, h := o.NaturalSize()
	dx, dy := x-o.Left, y-o.Top
	rad := -gg.Radians(o.Angle)
	lx := dx*math.Cos(rad) - dy*math.Sin(rad)
	ly := dx*math.Sin(rad) + dy*math.Cos(rad)
	return math.Abs(lx) <= w*math.Abs(o.ScaleX)/2 && math.Abs(ly) <= h*math.Abs(o.ScaleY)/2
}

// layoutText wraps the text for a face scaled by factor and returns the lines,
// the line advance and the widest line, all in scaled pixels.
func (o *Object) layoutText(factor float64) (lines []string, lineH, widest float64) {
	faceMu.Lock()
	defer faceMu.Unlock()
	face, err := Face(o.FontFamily, o.FontSize*factor)
	if err != nil {
		return nil, 0, 0
	}
	dc := gg.NewContext(1, 1)
	dc.SetFontFace(face)
	return o.wrap(dc, factor)
}

// wrap lays out the text with the face already set on dc. Callers hold faceMu.
func (o *Object) wrap(dc *gg.Context, factor float64) (lines []string, lineH, widest float64) {
	for _, para := range strings.Split(o.Text, "\n") {
		if o.Width > 0 {
			wrapped := dc.WordWrap(para, o.Width*factor)
			if len(wrapped) == 0 {
				wrapped = []string{""}
			}
			lines = append(lines, wrapped...)
			continue
		}
		lines = append(lines, para)
	}
	for _, l := range lines {
		w, _ := dc.MeasureString(l)
		widest = math.Max(widest, w)
	}
	return lines, dc.FontHeight() * LineSpacing, widest
}
