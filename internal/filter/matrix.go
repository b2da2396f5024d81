package filter

import (
	"image"
	"image/color"
	"math"

	"github.com/example/memeshot/internal/render"
)

// ColorMatrix is a 4x5 colour transform stored row-major:
// [R_r, R_g, R_b, R_a, R_offset, G_r, ...]. Offsets are in the 0..1 range.
type ColorMatrix [20]float64

// Identity returns the matrix that leaves colours untouched.
func Identity() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Brightness shifts every colour channel by b in [-1, 1].
func Brightness(b float64) ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, b,
		0, 1, 0, 0, b,
		0, 0, 1, 0, b,
		0, 0, 0, 1, 0,
	}
}

// Contrast scales channels around mid-grey. c=1 is unchanged, 0 is flat grey.
func Contrast(c float64) ColorMatrix {
	t := (1.0 - c) / 2.0
	return ColorMatrix{
		c, 0, 0, 0, t,
		0, c, 0, 0, t,
		0, 0, c, 0, t,
		0, 0, 0, 1, 0,
	}
}

// Saturation mixes towards luma. s=1 is unchanged, 0 is greyscale.
func Saturation(s float64) ColorMatrix {
	sr := (1 - s) * 0.299
	sg := (1 - s) * 0.587
	sb := (1 - s) * 0.114
	return ColorMatrix{
		sr + s, sg, sb, 0, 0,
		sr, sg + s, sb, 0, 0,
		sr, sg, sb + s, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Sepia returns the classic warm-brown tone matrix.
func Sepia() ColorMatrix {
	return ColorMatrix{
		0.393, 0.769, 0.189, 0, 0,
		0.349, 0.686, 0.168, 0, 0,
		0.272, 0.534, 0.131, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Invert flips every colour channel.
func Invert() ColorMatrix {
	return ColorMatrix{
		-1, 0, 0, 0, 1,
		0, -1, 0, 0, 1,
		0, 0, -1, 0, 1,
		0, 0, 0, 1, 0,
	}
}

// Vintage is a faded sepia with lifted blacks.
func Vintage() ColorMatrix {
	return Sepia().Mul(Contrast(0.85)).Mul(Brightness(0.04))
}

// Mul returns the transform that applies n first and then m.
func (m ColorMatrix) Mul(n ColorMatrix) ColorMatrix {
	var out ColorMatrix
	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[row*5+k] * n[k*5+col]
			}
			if col == 4 {
				sum += m[row*5+4]
			}
			out[row*5+col] = sum
		}
	}
	return out
}

// Apply transforms img on the CPU and returns a new zero-origin image.
func (m ColorMatrix) Apply(img image.Image) *image.RGBA {
	src := render.Blur(img, 0)
	b := src.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := src.RGBAAt(x, y)
			if c.A == 0 {
				continue
			}
			src.SetRGBA(x, y, m.transform(c))
		}
	}
	return src
}

func (m ColorMatrix) transform(c color.RGBA) color.RGBA {
	a := float64(c.A) / 255
	// unpremultiply
	r := float64(c.R) / 255 / a
	g := float64(c.G) / 255 / a
	b := float64(c.B) / 255 / a

	nr := m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4]
	ng := m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9]
	nb := m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14]
	na := clamp01(m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19])

	return color.RGBA{
		R: to8(clamp01(nr) * na),
		G: to8(clamp01(ng) * na),
		B: to8(clamp01(nb) * na),
		A: to8(na),
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func to8(v float64) uint8 {
	return uint8(v*255 + 0.5)
}
