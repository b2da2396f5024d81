package scene

import (
	"image"
	"math"
	"sync"

	"github.com/fogleman/gg"

	"github.com/example/memeshot/internal/layout"
	"github.com/example/memeshot/internal/render"
)

// faceMu serialises use of font faces, which cache glyphs internally.
var faceMu sync.Mutex

// strokeSteps is how many offset copies approximate a text outline.
const strokeSteps = 16

// Render rasterises the whole surface, background included, at multiplier
// times its pixel size.
func (s *Surface) Render(multiplier float64) *image.RGBA {
	if multiplier <= 0 {
		multiplier = 1
	}
	w := int(math.Round(float64(s.width) * multiplier))
	h := int(math.Round(float64(s.height) * multiplier))
	dc := gg.NewContext(max(w, 1), max(h, 1))
	dc.SetColor(s.background)
	dc.Clear()
	if s.Disposed() {
		return dc.Image().(*image.RGBA)
	}
	dc.Scale(multiplier, multiplier)

	if bg := s.backgroundImage; bg != nil {
		b := bg.Bounds()
		scale, ox, oy := layout.Cover(b.Dx(), b.Dy(), s.width, s.height)
		dc.Push()
		dc.Translate(ox, oy)
		dc.Scale(scale, scale)
		dc.DrawImage(bg, -b.Min.X, -b.Min.Y)
		dc.Pop()
	}

	for _, o := range s.objects {
		switch o.Kind {
		case KindImage:
			drawImageObject(dc, o)
		case KindText:
			drawTextObject(dc, o, multiplier)
		}
	}
	return dc.Image().(*image.RGBA)
}

func drawImageObject(dc *gg.Context, o *Object) {
	pix := o.Pixels()
	if pix == nil {
		return
	}
	b := pix.Bounds()
	at := b.Min.Mul(-1)
	if o.Shadow != nil {
		res := render.ApplyShadow(pix, *o.Shadow)
		pix = res.Image
		at = res.Offset.Mul(-1)
	}
	sx, sy := o.ScaleX, o.ScaleY
	if o.FlipX {
		sx = -sx
	}
	if o.FlipY {
		sy = -sy
	}
	dc.Push()
	dc.Translate(o.Left, o.Top)
	dc.Rotate(gg.Radians(o.Angle))
	dc.Scale(sx, sy)
	dc.Translate(-float64(b.Dx())/2, -float64(b.Dy())/2)
	dc.DrawImage(pix, at.X, at.Y)
	dc.Pop()
}

// drawTextObject renders glyphs at their final pixel size instead of scaling
// rasterised glyphs, so exports stay sharp.
func drawTextObject(dc *gg.Context, o *Object, multiplier float64) {
	if o.ScaleY == 0 || o.ScaleX == 0 {
		return
	}
	factor := math.Abs(o.ScaleY) * multiplier
	faceMu.Lock()
	defer faceMu.Unlock()
	face, err := Face(o.FontFamily, o.FontSize*factor)
	if err != nil {
		return
	}
	dc.Push()
	defer dc.Pop()
	dc.Identity()
	dc.Translate(o.Left*multiplier, o.Top*multiplier)
	dc.Rotate(gg.Radians(o.Angle))
	dc.Scale(o.ScaleX/o.ScaleY, 1)
	dc.SetFontFace(face)

	lines, lineH, _ := o.wrap(dc, factor)
	top := -float64(len(lines)) * lineH / 2
	stroke := o.StrokeWidth * factor
	for i, line := range lines {
		y := top + (float64(i)+0.5)*lineH
		if stroke > 0 && o.Stroke.A > 0 {
			dc.SetColor(o.Stroke)
			for k := 0; k < strokeSteps; k++ {
				a := 2 * math.Pi * float64(k) / strokeSteps
				dc.DrawStringAnchored(line, stroke*math.Cos(a), y+stroke*math.Sin(a), 0.5, 0.5)
			}
		}
		dc.SetColor(o.Fill)
		dc.DrawStringAnchored(line, 0, y, 0.5, 0.5)
	}
}
