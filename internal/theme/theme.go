package theme

import (
	"image/color"
)

// Theme defines the colours of the editor window chrome.
type Theme struct {
	Name string

	// Window
	Background color.RGBA // behind the surface
	Foreground color.RGBA

	// Toolbar and status line
	ToolbarBackground color.RGBA
	StatusBackground  color.RGBA
	StatusText        color.RGBA

	// Buttons
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonBackgroundPress color.RGBA
	ButtonActive          color.RGBA // toggled tools such as text editing
	ButtonText            color.RGBA
	ButtonBorder          color.RGBA

	// Surface
	SurfaceBorder color.RGBA
	Selection     color.RGBA
}

// Default returns the built-in light theme.
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Background:            color.RGBA{226, 226, 230, 255},
		Foreground:            color.RGBA{20, 20, 24, 255},
		ToolbarBackground:     color.RGBA{210, 210, 216, 255},
		StatusBackground:      color.RGBA{200, 200, 206, 255},
		StatusText:            color.RGBA{20, 20, 24, 255},
		ButtonBackground:      color.RGBA{240, 240, 244, 255},
		ButtonBackgroundHover: color.RGBA{225, 225, 232, 255},
		ButtonBackgroundPress: color.RGBA{190, 190, 200, 255},
		ButtonActive:          color.RGBA{255, 214, 102, 255},
		ButtonText:            color.RGBA{20, 20, 24, 255},
		ButtonBorder:          color.RGBA{120, 120, 130, 255},
		SurfaceBorder:         color.RGBA{90, 90, 100, 255},
		Selection:             color.RGBA{30, 136, 229, 255},
	}
}
