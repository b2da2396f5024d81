// Package editor owns the meme surface and exposes the operations the window,
// console and script runner perform on it. An Editor is not safe for
// concurrent use; drive it from one goroutine.
package editor

import (
	"errors"
	"image"
	"log"

	"github.com/example/memeshot/internal/export"
	"github.com/example/memeshot/internal/layout"
	"github.com/example/memeshot/internal/loader"
	"github.com/example/memeshot/internal/scene"
	"github.com/example/memeshot/internal/selection"
)

var (
	// ErrNoSurface is returned when no surface is mounted.
	ErrNoSurface = errors.New("no surface mounted")
	// ErrNoSelection is returned when an operation needs an active object.
	ErrNoSelection = errors.New("no object selected")
	// ErrWrongKind is returned when the active object does not support the operation.
	ErrWrongKind = errors.New("selected object does not support this operation")
)

const (
	DefaultText        = "Your text here"
	DefaultFontSize    = 40
	DefaultStrokeWidth = 2
	// TextWidthFraction is the share of the surface width a new text box wraps at.
	TextWidthFraction = 0.8
	// DefaultStickerFit is the share of the surface a new sticker may cover.
	DefaultStickerFit = 0.5
	// DefaultViewport is assumed until the first Resize.
	DefaultViewport = 1024
)

// Editor holds one surface and the selection state derived from it.
type Editor struct {
	surface *scene.Surface
	state   selection.State

	loader  *loader.Loader
	tracker *loader.Tracker

	viewport      int
	stickerFit    float64
	stickerShadow bool
	exportOpts    export.Options
}

// Option modifies an Editor during creation.
type Option func(*Editor)

// WithLoader sets the image loader used for stickers and backgrounds.
func WithLoader(l *loader.Loader) Option { return func(e *Editor) { e.loader = l } }

// WithViewport sets the initial viewport width used by the layout rule.
func WithViewport(w int) Option { return func(e *Editor) { e.viewport = w } }

// WithStickerFit sets the share of the surface a new sticker may cover,
// clamped to [0.5, 0.8].
func WithStickerFit(f float64) Option { return func(e *Editor) { e.stickerFit = f } }

// WithStickerShadow gives new stickers a drop shadow.
func WithStickerShadow(on bool) Option { return func(e *Editor) { e.stickerShadow = on } }

// WithExportOptions sets the export multipliers and quality.
func WithExportOptions(o export.Options) Option { return func(e *Editor) { e.exportOpts = o } }

// New creates an Editor. Call Mount before using it.
func New(opts ...Option) *Editor {
	e := &Editor{
		state:      selection.Initial(),
		tracker:    loader.NewTracker(),
		viewport:   DefaultViewport,
		stickerFit: DefaultStickerFit,
		exportOpts: export.DefaultOptions(),
	}
	for _, o := range opts {
		o(e)
	}
	if e.loader == nil {
		e.loader = loader.New()
	}
	e.stickerFit = min(max(e.stickerFit, 0.5), 0.8)
	return e
}

// Mount creates the surface with the given size, or the layout size for the
// current viewport when either side is not positive. A previously mounted
// surface is disposed first.
func (e *Editor) Mount(w, h int) *scene.Surface {
	e.Unmount()
	if w <= 0 || h <= 0 {
		size := layout.Adjust(e.viewport, 0, 0)
		w, h = size.Width, size.Height
	}
	e.surface = scene.New(w, h)
	e.state = selection.Initial()
	return e.surface
}

// Unmount disposes the surface and cancels pending loads. It is safe to call
// repeatedly.
func (e *Editor) Unmount() {
	e.tracker.CancelAll()
	if e.surface != nil {
		e.surface.Dispose()
		e.surface = nil
	}
	e.state = selection.Initial()
}

// Mounted reports whether a live surface exists.
func (e *Editor) Mounted() bool { return e.surface != nil && !e.surface.Disposed() }

// Surface returns the mounted surface or nil.
func (e *Editor) Surface() *scene.Surface {
	if !e.Mounted() {
		return nil
	}
	return e.surface
}

// State returns the derived selection state.
func (e *Editor) State() selection.State { return e.state }

// Viewport returns the viewport width last passed to Resize.
func (e *Editor) Viewport() int { return e.viewport }

// Objects lists the surface objects bottom to top.
func (e *Editor) Objects() []*scene.Object {
	if !e.Mounted() {
		return nil
	}
	return e.surface.Objects()
}

// Render rasterises the surface at multiplier.
func (e *Editor) Render(multiplier float64) *image.RGBA {
	if !e.Mounted() {
		return nil
	}
	return e.surface.Render(multiplier)
}

// sync feeds queued surface notifications through the selection reducer.
func (e *Editor) sync() {
	if e.surface == nil {
		return
	}
	e.state = selection.ReduceAll(e.state, e.surface.TakeEvents())
}

// active returns the active object or the reason there is none.
func (e *Editor) active() (*scene.Object, error) {
	if !e.Mounted() {
		return nil, ErrNoSurface
	}
	o := e.surface.Active()
	if o == nil {
		return nil, ErrNoSelection
	}
	return o, nil
}

func (e *Editor) activeOf(kind scene.Kind) (*scene.Object, error) {
	o, err := e.active()
	if err != nil {
		return nil, err
	}
	if o.Kind != kind {
		return nil, ErrWrongKind
	}
	return o, nil
}

func warn(op string, err error) error {
	if err != nil && !errors.Is(err, ErrNoSurface) {
		log.Printf("%s: %v", op, err)
	}
	return err
}
