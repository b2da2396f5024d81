package scene

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
)

// DefaultFontFamily is used when an object names an unknown family.
const DefaultFontFamily = "sans-bold"

var fontSources = map[string][]byte{
	"sans":             goregular.TTF,
	"sans-bold":        gobold.TTF,
	"sans-italic":      goitalic.TTF,
	"sans-bold-italic": gobolditalic.TTF,
	"mono":             gomono.TTF,
	"smallcaps":        gosmallcaps.TTF,
}

var (
	fontsOnce sync.Once
	fonts     map[string]*truetype.Font
	faceCache sync.Map // map[faceKey]font.Face
)

type faceKey struct {
	family string
	size   float64
}

func loadFonts() {
	fonts = make(map[string]*truetype.Font, len(fontSources))
	for name, data := range fontSources {
		f, err := truetype.Parse(data)
		if err != nil {
			log.Printf("parse font %s: %v", name, err)
			continue
		}
		fonts[name] = f
	}
}

// FontFamilies lists the available font family names.
func FontFamilies() []string {
	out := make([]string, 0, len(fontSources))
	for name := range fontSources {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// HasFontFamily reports whether family is a known font family.
func HasFontFamily(family string) bool {
	_, ok := fontSources[strings.ToLower(strings.TrimSpace(family))]
	return ok
}

// Face returns a cached face for family at size points (72 DPI). Cached
// faces are shared, so callers draw with them under faceMu.
func Face(family string, size float64) (font.Face, error) {
	f, family, size, err := resolveFont(family, size)
	if err != nil {
		return nil, err
	}
	// quarter-point buckets keep the cache bounded while zooming
	size = math.Round(size*4) / 4
	key := faceKey{family: family, size: size}
	if face, ok := faceCache.Load(key); ok {
		return face.(font.Face), nil
	}
	actual, _ := faceCache.LoadOrStore(key, newFace(f, size))
	return actual.(font.Face), nil
}

// NewFace returns a face owned by the caller. A truetype face keeps glyph
// buffers, so a goroutine other than the renderer needs its own.
func NewFace(family string, size float64) (font.Face, error) {
	f, _, size, err := resolveFont(family, size)
	if err != nil {
		return nil, err
	}
	return newFace(f, size), nil
}

func resolveFont(family string, size float64) (*truetype.Font, string, float64, error) {
	fontsOnce.Do(loadFonts)
	family = strings.ToLower(strings.TrimSpace(family))
	f, ok := fonts[family]
	if !ok {
		f, ok = fonts[DefaultFontFamily]
		if !ok {
			return nil, "", 0, fmt.Errorf("font family %q unavailable", family)
		}
		family = DefaultFontFamily
	}
	if size <= 0 {
		size = 1
	}
	return f, family, size, nil
}

func newFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
}
