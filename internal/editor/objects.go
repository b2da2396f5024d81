package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/example/memeshot/internal/layout"
	"github.com/example/memeshot/internal/loader"
	"github.com/example/memeshot/internal/render"
	"github.com/example/memeshot/internal/scene"
)

var (
	defaultTextFill   = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	defaultTextStroke = color.RGBA{A: 0xff}
)

// AddText places the default caption in the middle of the surface and
// selects it.
func (e *Editor) AddText() (*scene.Object, error) {
	if !e.Mounted() {
		return nil, ErrNoSurface
	}
	o := scene.NewText(DefaultText)
	o.FontSize = DefaultFontSize
	o.FontFamily = scene.DefaultFontFamily
	o.Fill = defaultTextFill
	o.Stroke = defaultTextStroke
	o.StrokeWidth = DefaultStrokeWidth
	o.Width = float64(e.surface.Width()) * TextWidthFraction
	e.centre(o)
	e.surface.Add(o)
	e.surface.SetActive(o)
	e.sync()
	return o, nil
}

// AddImage places img as a sticker scaled to the sticker fit, centred and
// selected.
func (e *Editor) AddImage(img image.Image) (*scene.Object, error) {
	if !e.Mounted() {
		return nil, ErrNoSurface
	}
	if img == nil {
		return nil, errors.New("add image: nil image")
	}
	b := img.Bounds()
	o := scene.NewImage(img)
	s := layout.Fit(b.Dx(), b.Dy(), e.surface.Width(), e.surface.Height(), e.stickerFit)
	o.ScaleX, o.ScaleY = s, s
	if e.stickerShadow {
		sh := render.DefaultShadowOptions()
		o.Shadow = &sh
	}
	e.centre(o)
	e.surface.Add(o)
	e.surface.SetActive(o)
	e.sync()
	return o, nil
}

func (e *Editor) centre(o *scene.Object) {
	o.Left = float64(e.surface.Width()) / 2
	o.Top = float64(e.surface.Height()) / 2
}

// LoadSticker starts decoding src in the background. done receives the
// result on the loader goroutine; hand it back to the editor's goroutine and
// pass it to ApplySticker. A newer LoadSticker supersedes this one.
func (e *Editor) LoadSticker(ctx context.Context, src string, done func(loader.Result)) *loader.Ticket {
	t := e.tracker.Begin(ctx, loader.SlotSticker)
	e.loader.Start(t, src, done)
	return t
}

// ApplySticker adds a finished sticker load. Superseded or failed loads leave
// the surface unchanged.
func (e *Editor) ApplySticker(res loader.Result) (*scene.Object, error) {
	if err := e.tracker.Finish(res.Ticket); err != nil {
		return nil, err
	}
	if res.Err != nil {
		log.Printf("sticker: %v", res.Err)
		return nil, fmt.Errorf("sticker: %w", res.Err)
	}
	return e.AddImage(res.Image)
}

// AddSticker loads src and adds it, blocking until the load completes.
func (e *Editor) AddSticker(ctx context.Context, src string) (*scene.Object, error) {
	if !e.Mounted() {
		return nil, ErrNoSurface
	}
	res := e.loadSync(ctx, loader.SlotSticker, src)
	return e.ApplySticker(res)
}

// LoadBackground is the background counterpart of LoadSticker.
func (e *Editor) LoadBackground(ctx context.Context, src string, done func(loader.Result)) *loader.Ticket {
	t := e.tracker.Begin(ctx, loader.SlotBackground)
	e.loader.Start(t, src, done)
	return t
}

// ApplyBackground installs a finished background load.
func (e *Editor) ApplyBackground(res loader.Result) error {
	if err := e.tracker.Finish(res.Ticket); err != nil {
		return err
	}
	if res.Err != nil {
		log.Printf("background: %v", res.Err)
		return fmt.Errorf("background: %w", res.Err)
	}
	return e.SetBackgroundImage(res.Image)
}

// LoadBackgroundSync loads src and installs it as the background image.
func (e *Editor) LoadBackgroundSync(ctx context.Context, src string) error {
	if !e.Mounted() {
		return ErrNoSurface
	}
	return e.ApplyBackground(e.loadSync(ctx, loader.SlotBackground, src))
}

func (e *Editor) loadSync(ctx context.Context, slot loader.Slot, src string) loader.Result {
	t := e.tracker.Begin(ctx, slot)
	img, err := e.loader.Load(t.Context(), src)
	return loader.Result{Ticket: t, Source: src, Image: img, Err: err}
}

// SetBackgroundImage sets the image layer and resizes the surface for it.
// A nil image removes the layer.
func (e *Editor) SetBackgroundImage(img image.Image) error {
	if !e.Mounted() {
		return ErrNoSurface
	}
	e.surface.SetBackgroundImage(img)
	e.relayout()
	return nil
}

// SetBackgroundColor sets the colour layer from a hex string.
func (e *Editor) SetBackgroundColor(hex string) error {
	if !e.Mounted() {
		return ErrNoSurface
	}
	c, err := scene.ParseHex(hex)
	if err != nil {
		return fmt.Errorf("background colour: %w", err)
	}
	e.surface.SetBackground(c)
	return nil
}

// Resize records the viewport width and resizes the surface to match.
func (e *Editor) Resize(viewport int) layout.Size {
	e.viewport = viewport
	return e.relayout()
}

func (e *Editor) relayout() layout.Size {
	if !e.Mounted() {
		return layout.Size{}
	}
	var bw, bh int
	if bg := e.surface.BackgroundImage(); bg != nil {
		bw, bh = bg.Bounds().Dx(), bg.Bounds().Dy()
	}
	size := layout.Adjust(e.viewport, bw, bh)
	e.surface.SetDimensions(size.Width, size.Height)
	return size
}
