// Package layout decides the surface size for a given viewport width.
package layout

import "math"

const (
	// DefaultSize is the side length of the surface when nothing else applies.
	DefaultSize = 500
	// DesktopThreshold is the viewport width above which the desktop rule applies.
	DesktopThreshold = 768
	// MobileFraction is the share of a narrow viewport the surface may fill.
	MobileFraction = 0.9
)

// Size is a surface size in pixels.
type Size struct {
	Width  int
	Height int
}

// Adjust returns the surface size for viewportWidth. bgWidth and bgHeight are
// the background image dimensions, or zero when no background image is set.
//
// Wide viewports keep the height at DefaultSize and follow the background
// aspect ratio. Narrow viewports get a square of min(viewport*0.9, DefaultSize).
func Adjust(viewportWidth, bgWidth, bgHeight int) Size {
	if viewportWidth > DesktopThreshold {
		if bgWidth > 0 && bgHeight > 0 {
			return Size{Width: bgWidth * DefaultSize / bgHeight, Height: DefaultSize}
		}
		return Size{Width: DefaultSize, Height: DefaultSize}
	}
	side := int(math.Min(float64(viewportWidth)*MobileFraction, DefaultSize))
	if side < 1 {
		side = 1
	}
	return Size{Width: side, Height: side}
}

// Cover returns the uniform scale and offset that make a src-sized image cover
// a dst-sized area, centred.
func Cover(srcW, srcH, dstW, dstH int) (scale, offX, offY float64) {
	if srcW <= 0 || srcH <= 0 {
		return 1, 0, 0
	}
	scale = math.Max(float64(dstW)/float64(srcW), float64(dstH)/float64(srcH))
	offX = (float64(dstW) - float64(srcW)*scale) / 2
	offY = (float64(dstH) - float64(srcH)*scale) / 2
	return scale, offX, offY
}

// Fit returns the uniform scale that makes a src-sized image fit inside
// fraction of a dst-sized area.
func Fit(srcW, srcH, dstW, dstH int, fraction float64) float64 {
	if srcW <= 0 || srcH <= 0 {
		return 1
	}
	return math.Min(float64(dstW)*fraction/float64(srcW), float64(dstH)*fraction/float64(srcH))
}
