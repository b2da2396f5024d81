package render

import (
	"image"
	"image/draw"
)

// Blur returns a box-blurred copy of img. The result has zero-based bounds
// matching the size of img. A radius of zero or less returns an unblurred copy.
func Blur(img image.Image, radius int) *image.RGBA {
	src := toRGBA(img)
	out := image.NewRGBA(src.Bounds())
	b := src.Bounds()
	if radius <= 0 {
		for y := 0; y < b.Dy(); y++ {
			copy(out.Pix[y*out.Stride:y*out.Stride+4*b.Dx()], src.Pix[y*src.Stride:])
		}
		return out
	}
	for c := 0; c < 4; c++ {
		boxBlur(src.Pix[c:], out.Pix[c:], b.Dx(), b.Dy(), src.Stride, 4, radius)
	}
	return out
}

func blurGray(src *image.Gray, radius int) *image.Gray {
	out := image.NewGray(src.Bounds())
	if radius <= 0 {
		copy(out.Pix, src.Pix)
		return out
	}
	b := src.Bounds()
	boxBlur(src.Pix, out.Pix, b.Dx(), b.Dy(), src.Stride, 1, radius)
	return out
}

// boxBlur runs a separable box filter over one interleaved channel. step is
// the distance in bytes between horizontally adjacent samples.
func boxBlur(src, dst []byte, w, h, stride, step, radius int) {
	tmp := make([]int, w*h)
	prefix := make([]int, max(w, h)+1)

	for y := 0; y < h; y++ {
		row := y * stride
		for x := 0; x < w; x++ {
			prefix[x+1] = prefix[x] + int(src[row+x*step])
		}
		for x := 0; x < w; x++ {
			x0 := max(x-radius, 0)
			x1 := min(x+radius, w-1)
			tmp[y*w+x] = (prefix[x1+1] - prefix[x0]) / (x1 - x0 + 1)
		}
	}

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			prefix[y+1] = prefix[y] + tmp[y*w+x]
		}
		for y := 0; y < h; y++ {
			y0 := max(y-radius, 0)
			y1 := min(y+radius, h-1)
			dst[y*stride+x*step] = uint8((prefix[y1+1] - prefix[y0]) / (y1 - y0 + 1))
		}
	}
}

func toRGBA(img image.Image) *image.RGBA {
	// sub-images share a wider parent's Pix, so only a tightly packed
	// zero-origin image can be used as is
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
