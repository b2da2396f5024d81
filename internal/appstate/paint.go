package appstate

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/example/memeshot/internal/scene"
	"github.com/example/memeshot/internal/theme"
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

const messageFontSize = 28

// messageFace belongs to the paint goroutine; the event loop renders
// captions with the shared faces in scene.
var (
	messageFaceOnce sync.Once
	messageFace     font.Face
	messageFaceErr  error
)

// paintState is a copy of everything a frame shows. The paint goroutine
// reads it while the event loop keeps mutating the editor.
type paintState struct {
	width, height int
	toolbarWidth  int
	theme         *theme.Theme

	frame     *image.RGBA
	frameRect image.Rectangle
	selection image.Rectangle

	buttons       []ActionButton
	buttonStates  []ButtonState
	swatches      []swatchView
	shortcuts     []Shortcut
	hoverShortcut int

	status       string
	editing      bool
	message      string
	messageUntil time.Time
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	composeFrame(ctx, b.RGBA(), st)
	if ctx.Err() != nil {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

// composeFrame draws st into dst, stopping early once ctx is cancelled.
func composeFrame(ctx context.Context, dst *image.RGBA, st paintState) {
	th := st.theme
	if th == nil {
		th = theme.Default()
	}
	draw.Draw(dst, dst.Bounds(), &image.Uniform{th.Background}, image.Point{}, draw.Src)
	if ctx.Err() != nil {
		return
	}

	if st.frame != nil {
		draw.Draw(dst, st.frameRect, st.frame, st.frame.Bounds().Min, draw.Src)
		drawRect(dst, st.frameRect.Inset(-1), th.SurfaceBorder)
		if !st.selection.Empty() {
			drawDashedRect(dst, st.selection, 4, th.Selection, color.White)
		}
	}
	if ctx.Err() != nil {
		return
	}

	toolbar := image.Rect(0, 0, st.toolbarWidth, st.height)
	draw.Draw(dst, toolbar, &image.Uniform{th.ToolbarBackground}, image.Point{}, draw.Src)
	for i := range st.buttons {
		st.buttons[i].Draw(dst, th, st.buttonStates[i])
	}
	for _, sw := range st.swatches {
		drawSwatch(dst, th, sw)
	}

	title := image.Rect(0, 0, st.width, titleHeight)
	draw.Draw(dst, title, &image.Uniform{th.StatusBackground}, image.Point{}, draw.Src)
	drawLabel(dst, "memeshot", 4, 16, th.StatusText)
	drawLabel(dst, st.status, st.toolbarWidth+4, 16, th.StatusText)

	bottom := image.Rect(0, st.height-bottomHeight, st.width, st.height)
	draw.Draw(dst, bottom, &image.Uniform{th.StatusBackground}, image.Point{}, draw.Src)
	for i := range st.shortcuts {
		state := StateDefault
		if i == st.hoverShortcut {
			state = StateHover
		}
		st.shortcuts[i].Draw(dst, th, state)
	}
	if ctx.Err() != nil {
		return
	}

	if st.message != "" && time.Now().Before(st.messageUntil) {
		drawMessage(dst, th, st.message, st.width, st.height)
	}
}

func drawMessage(dst *image.RGBA, th *theme.Theme, msg string, width, height int) {
	messageFaceOnce.Do(func() {
		messageFace, messageFaceErr = scene.NewFace(scene.DefaultFontFamily, messageFontSize)
	})
	if messageFaceErr != nil {
		log.Printf("message font: %v", messageFaceErr)
		return
	}
	face := messageFace
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.Foreground), Face: face}
	wmsg := d.MeasureString(msg).Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	descent := face.Metrics().Descent.Ceil()
	px := (width - wmsg) / 2
	py := (height-ascent-descent)/2 + ascent
	rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
	bg := color.NRGBA{th.Background.R, th.Background.G, th.Background.B, 230}
	draw.Draw(dst, rect, &image.Uniform{bg}, image.Point{}, draw.Over)
	drawRect(dst, rect, th.ButtonBorder)
	drawRect(dst, rect.Inset(1), th.ButtonBorder)
	d.Dot = fixed.P(px, py)
	d.DrawString(msg)
}
