package render

import (
	"image"
	"image/color"
	"image/draw"
)

// ShadowOptions configures the drop shadow drawn behind a sticker.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
	Color   color.RGBA
}

// ShadowResult captures the output of ApplyShadow.
type ShadowResult struct {
	// Image is the composited image that includes the blurred shadow.
	Image *image.RGBA
	// Offset is where the top-left corner of the source content landed inside
	// Image. Callers subtract it to keep the content anchored in place.
	Offset image.Point
}

// DefaultShadowOptions returns the soft black shadow used for stickers.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius:  8,
		Offset:  image.Pt(6, 6),
		Opacity: 0.45,
		Color:   color.RGBA{A: 255},
	}
}

// ApplyShadow composites img over a blurred silhouette of its alpha channel.
// The result always has a zero origin.
func ApplyShadow(img image.Image, opts ShadowOptions) ShadowResult {
	if img == nil {
		return ShadowResult{}
	}
	src := toRGBA(img)
	if src.Bounds().Empty() || opts.Opacity <= 0 {
		return ShadowResult{Image: src}
	}
	opacity := min(opts.Opacity, 1)
	radius := max(opts.Radius, 0)

	srcBounds := src.Bounds()
	padded := srcBounds.Inset(-radius)
	shadowBounds := padded.Add(opts.Offset)
	composite := srcBounds.Union(shadowBounds)
	if composite.Dx() <= 0 || composite.Dy() <= 0 {
		return ShadowResult{Image: src}
	}

	mask := image.NewGray(padded.Sub(padded.Min))
	for y := srcBounds.Min.Y; y < srcBounds.Max.Y; y++ {
		for x := srcBounds.Min.X; x < srcBounds.Max.X; x++ {
			if a := src.RGBAAt(x, y).A; a != 0 {
				mask.SetGray(x-padded.Min.X, y-padded.Min.Y, color.Gray{Y: a})
			}
		}
	}
	blurred := blurGray(mask, radius)

	dst := image.NewRGBA(composite.Sub(composite.Min))
	tint := opts.Color
	tint.A = uint8(float64(tint.A)*opacity + 0.5)
	if tint.A > 0 {
		origin := shadowBounds.Min.Sub(composite.Min)
		draw.DrawMask(dst, blurred.Bounds().Add(origin), image.NewUniform(tint), image.Point{}, blurred, image.Point{}, draw.Over)
	}
	shift := srcBounds.Min.Sub(composite.Min)
	draw.Draw(dst, srcBounds.Add(shift), src, srcBounds.Min, draw.Over)
	return ShadowResult{Image: dst, Offset: shift}
}
