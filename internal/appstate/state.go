package appstate

import (
	"context"
	"log"
	"sync"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/memeshot/internal/editor"
	"github.com/example/memeshot/internal/layout"
	"github.com/example/memeshot/internal/notify"
	"github.com/example/memeshot/internal/theme"
)

// AppState holds the configuration of the editor window.
type AppState struct {
	editor     *editor.Editor
	theme      *theme.Theme
	notifier   *notify.Notifier
	background string
	sticker    string
	saveDir    string

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithEditor sets the editor the window drives.
func WithEditor(ed *editor.Editor) Option { return func(a *AppState) { a.editor = ed } }

// WithBackground loads src as the background once the surface is mounted.
func WithBackground(src string) Option { return func(a *AppState) { a.background = src } }

// WithStickerSource sets where the sticker tool loads its image from.
func WithStickerSource(src string) Option { return func(a *AppState) { a.sticker = src } }

// WithSaveDir sets the directory exports are written to.
func WithSaveDir(dir string) Option { return func(a *AppState) { a.saveDir = dir } }

// WithTheme sets the window colours.
func WithTheme(th *theme.Theme) Option { return func(a *AppState) { a.theme = th } }

// WithNotifier sets the desktop notifier used after exports and copies.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.notifier = n } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{}
	for _, o := range opts {
		o(a)
	}
	if a.editor == nil {
		a.editor = editor.New()
	}
	if a.theme == nil {
		a.theme = theme.Default()
	}
	return a
}

// Editor returns the editor the window drives.
func (a *AppState) Editor() *editor.Editor { return a.editor }

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

// Main opens the editor window on s and processes its events until the
// window closes or the quit action runs.
func (a *AppState) Main(s screen.Screen) {
	var w screen.Window
	c := newController(a, func(ev any) { w.Send(ev) })

	// Keep the viewport above the mobile breakpoint so the surface opens at
	// full size.
	initial := layout.Adjust(max(a.editor.Viewport(), layout.DesktopThreshold+1), 0, 0)
	width := c.toolbarWidth + max(initial.Width, layout.DesktopThreshold+1) + 2*margin
	height := titleHeight + initial.Height + bottomHeight + 2*margin

	var err error
	w, err = s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "memeshot"})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer a.notifyClose()

	// Loads post back through w, so mount only once it exists.
	c.mount()
	defer c.unmount()

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	defer close(paintCh)

	c.resize(width, height)

	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case loadDone:
			c.applyLoad(e)
			w.Send(paint.Event{})
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
		case size.Event:
			c.resize(e.WidthPx, e.HeightPx)
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := c.snapshot()
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			if c.handleMouse(e) {
				w.Send(paint.Event{})
			}
		case key.Event:
			if c.handleKey(e) {
				w.Send(paint.Event{})
			}
		case error:
			log.Printf("window: %v", e)
		}
		if c.quit {
			return
		}
	}
}
