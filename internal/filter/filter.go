// Package filter holds the named image filters that can be applied to image
// objects and the fixed order they cycle through.
package filter

import (
	"fmt"
	"image"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/example/memeshot/internal/render"
)

// None is the identity filter name.
const None = "none"

// Filter transforms an image into a new zero-origin image.
type Filter interface {
	Name() string
	Apply(img image.Image) *image.RGBA
}

type matrixFilter struct {
	name   string
	matrix ColorMatrix
}

func (f matrixFilter) Name() string                      { return f.name }
func (f matrixFilter) Apply(img image.Image) *image.RGBA { return f.matrix.Apply(img) }

type blurFilter struct {
	name   string
	radius int
}

func (f blurFilter) Name() string                      { return f.name }
func (f blurFilter) Apply(img image.Image) *image.RGBA { return render.Blur(img, f.radius) }

var order = []Filter{
	matrixFilter{name: None, matrix: Identity()},
	matrixFilter{name: "grayscale", matrix: Saturation(0)},
	matrixFilter{name: "sepia", matrix: Sepia()},
	matrixFilter{name: "invert", matrix: Invert()},
	matrixFilter{name: "vintage", matrix: Vintage()},
	matrixFilter{name: "brightness", matrix: Brightness(0.15)},
	matrixFilter{name: "contrast", matrix: Contrast(1.4)},
	matrixFilter{name: "saturate", matrix: Saturation(1.8)},
	blurFilter{name: "blur", radius: 3},
}

// Names lists the filters in cycling order.
func Names() []string {
	out := make([]string, len(order))
	for i, f := range order {
		out[i] = f.Name()
	}
	return out
}

// Len reports how many filters are in the cycle.
func Len() int { return len(order) }

// Lookup finds a filter by case-insensitive name. An empty name is None.
func Lookup(name string) (Filter, bool) {
	idx := indexOf(name)
	if idx < 0 {
		return nil, false
	}
	return order[idx], true
}

// Next returns the filter after current, wrapping at the end of the list.
// Unknown names restart the cycle at the first real filter.
func Next(current string) string {
	idx := indexOf(current)
	if idx < 0 {
		return order[1%len(order)].Name()
	}
	return order[(idx+1)%len(order)].Name()
}

// Apply runs the named filter over img.
func Apply(name string, img image.Image) (*image.RGBA, error) {
	f, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown filter %q", name)
	}
	return f.Apply(img), nil
}

// DisplayName returns the title-cased label used by the UI.
func DisplayName(name string) string {
	return cases.Title(language.English).String(normalize(name))
}

func indexOf(name string) int {
	name = normalize(name)
	for i, f := range order {
		if f.Name() == name {
			return i
		}
	}
	return -1
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return None
	}
	return name
}
