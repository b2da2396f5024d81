package appstate

import (
	"context"
	"fmt"
	"image"
	"log"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/memeshot/internal/clipboard"
	"github.com/example/memeshot/internal/editor"
	"github.com/example/memeshot/internal/export"
	"github.com/example/memeshot/internal/filter"
	"github.com/example/memeshot/internal/loader"
	"github.com/example/memeshot/internal/notify"
	"github.com/example/memeshot/internal/scene"
	"github.com/example/memeshot/internal/selection"
	"github.com/example/memeshot/internal/theme"
)

const (
	titleHeight  = 24
	bottomHeight = 24
	buttonHeight = 24
	swatchSize   = 16
	margin       = 12

	messageDuration = 2 * time.Second
	nudge           = 5
	rotateStep      = 15
	scaleStep       = 1.1
)

// Clipboard access is replaced in tests.
var (
	writeClipboardImage = clipboard.WriteImage
	readClipboardImage  = clipboard.ReadImage
	readClipboardText   = clipboard.ReadText
)

// loadDone carries a finished image load back to the event loop.
type loadDone struct {
	slot loader.Slot
	res  loader.Result
}

type tool struct {
	label  string
	action string
}

var tools = []tool{
	{"T:Text", "text"},
	{"S:Sticker", "sticker"},
	{"B:Bg paste", "background"},
	{"K:Bg colour", "bgcolor"},
	{"F:Flip", "flip"},
	{"V:Flip vert", "flipv"},
	{"G:Filter", "filter"},
	{"H:Shadow", "shadow"},
	{"O:Font", "font"},
	{"^S:PNG", "png"},
	{"^P:PDF", "pdf"},
	{"^C:Copy", "copy"},
	{"^V:Paste", "paste"},
}

// controller applies window input to the editor. It is owned by the event
// loop goroutine.
type controller struct {
	ed       *editor.Editor
	th       *theme.Theme
	notifier *notify.Notifier

	stickerSrc string
	background string
	saveDir    string

	post func(any)
	now  func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	actions map[string]func()
	keys    map[KeyShortcut]string

	width, height int
	toolbarWidth  int
	buttons       []*ActionButton
	swatches      []image.Rectangle
	hoverTool     int
	hoverSwatch   int
	hoverShortcut int

	colorIdx int
	editing  bool
	editOrig string
	dragging bool
	dragLast [2]float64

	message      string
	messageUntil time.Time

	frame *image.RGBA
	dirty bool
	quit  bool
}

func newController(a *AppState, post func(any)) *controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &controller{
		ed:            a.editor,
		th:            a.theme,
		notifier:      a.notifier,
		stickerSrc:    a.sticker,
		background:    a.background,
		saveDir:       a.saveDir,
		post:          post,
		now:           time.Now,
		ctx:           ctx,
		cancel:        cancel,
		hoverTool:     -1,
		hoverSwatch:   -1,
		hoverShortcut: -1,
		dirty:         true,
	}
	if c.th == nil {
		c.th = theme.Default()
	}
	if c.post == nil {
		c.post = func(any) {}
	}

	c.toolbarWidth = 48
	for _, t := range tools {
		c.toolbarWidth = max(c.toolbarWidth, measureLabel(t.label)+8)
	}
	for _, t := range tools {
		c.buttons = append(c.buttons, &ActionButton{label: t.label, action: t.action, trigger: c.trigger})
	}
	c.registerActions()
	return c
}

func (c *controller) register(name string, keys KeyboardShortcuts, fn func()) {
	c.actions[name] = fn
	if keys == nil {
		return
	}
	for _, sc := range keys.KeyboardShortcuts() {
		c.keys[sc] = name
	}
}

func (c *controller) unregister(name string) {
	delete(c.actions, name)
	for sc, n := range c.keys {
		if n == name {
			delete(c.keys, sc)
		}
	}
}

func (c *controller) registerActions() {
	c.actions = map[string]func(){}
	c.keys = map[KeyShortcut]string{}

	c.register("text", shortcutList{{Rune: 't'}}, func() {
		if _, err := c.ed.AddText(); err == nil {
			c.flash("text added, press Enter to edit")
		}
	})
	c.register("sticker", shortcutList{{Rune: 's'}}, func() {
		c.ed.LoadSticker(c.ctx, c.stickerSrc, c.deliver(loader.SlotSticker))
		c.flash("loading sticker")
	})
	c.register("background", shortcutList{{Rune: 'b'}}, c.pasteBackground)
	c.register("bgcolor", shortcutList{{Rune: 'k'}}, func() {
		c.ed.SetBackgroundColor(scene.Hex(palette[c.colorIdx].Color))
	})
	c.register("flip", shortcutList{{Rune: 'f'}}, func() { c.ed.Flip(editor.Horizontal) })
	c.register("flipv", shortcutList{{Rune: 'v'}}, func() { c.ed.Flip(editor.Vertical) })
	c.register("filter", shortcutList{{Rune: 'g'}}, func() {
		if name, err := c.ed.CycleFilter(); err == nil {
			c.flash("filter: " + filter.DisplayName(name))
		}
	})
	c.register("shadow", shortcutList{{Rune: 'h'}}, func() {
		if o := c.active(); o != nil {
			c.ed.SetShadow(o.Shadow == nil)
		}
	})
	c.register("font", shortcutList{{Rune: 'o'}}, c.cycleFont)
	c.register("edit", shortcutList{{Code: key.CodeReturnEnter}}, c.startEditing)
	c.register("deselect", shortcutList{{Code: key.CodeEscape}}, c.ed.Deselect)
	c.register("png", shortcutList{{Rune: 's', Modifiers: key.ModControl}}, func() { c.export(export.FormatPNG) })
	c.register("pdf", shortcutList{{Rune: 'p', Modifiers: key.ModControl}}, func() { c.export(export.FormatPDF) })
	c.register("copy", shortcutList{{Rune: 'c', Modifiers: key.ModControl}}, c.copyImage)
	c.register("paste", shortcutList{{Rune: 'v', Modifiers: key.ModControl}}, c.paste)
	c.register("bigger", shortcutList{{Rune: '+'}, {Rune: '='}}, func() { c.ed.ScaleBy(scaleStep) })
	c.register("smaller", shortcutList{{Rune: '-'}}, func() { c.ed.ScaleBy(1 / scaleStep) })
	c.register("rotl", shortcutList{{Rune: '['}}, func() { c.ed.Rotate(-rotateStep) })
	c.register("rotr", shortcutList{{Rune: ']'}}, func() { c.ed.Rotate(rotateStep) })
	c.register("left", shortcutList{{Code: key.CodeLeftArrow}}, func() { c.ed.Move(-nudge, 0) })
	c.register("right", shortcutList{{Code: key.CodeRightArrow}}, func() { c.ed.Move(nudge, 0) })
	c.register("up", shortcutList{{Code: key.CodeUpArrow}}, func() { c.ed.Move(0, -nudge) })
	c.register("down", shortcutList{{Code: key.CodeDownArrow}}, func() { c.ed.Move(0, nudge) })
	c.register("quit", shortcutList{{Rune: 'q'}, {Rune: 'q', Modifiers: key.ModControl}}, func() { c.quit = true })
}

// mount creates the surface, binds the delete key and starts the initial
// background load.
func (c *controller) mount() {
	c.ed.Mount(0, 0)
	c.register("delete", shortcutList{{Code: key.CodeDeleteForward}, {Code: key.CodeDeleteBackspace}}, func() {
		c.ed.DeleteSelected()
	})
	if c.background != "" {
		c.ed.LoadBackground(c.ctx, c.background, c.deliver(loader.SlotBackground))
	}
	c.dirty = true
}

// unmount unbinds the delete key, cancels loads and disposes the surface.
func (c *controller) unmount() {
	c.unregister("delete")
	c.cancel()
	c.ed.Unmount()
}

func (c *controller) deliver(slot loader.Slot) func(loader.Result) {
	return func(res loader.Result) { c.post(loadDone{slot: slot, res: res}) }
}

// applyLoad installs a finished load if it is still the latest request.
func (c *controller) applyLoad(ev loadDone) {
	var err error
	switch ev.slot {
	case loader.SlotSticker:
		_, err = c.ed.ApplySticker(ev.res)
	case loader.SlotBackground:
		err = c.ed.ApplyBackground(ev.res)
	}
	switch {
	case err == nil:
		c.dirty = true
	case ev.res.Err != nil:
		c.flash(fmt.Sprintf("could not load %s", ev.res.Source))
	}
}

func (c *controller) trigger(name string) {
	if fn, ok := c.actions[name]; ok {
		fn()
		c.dirty = true
	}
}

func (c *controller) flash(msg string) {
	c.message = msg
	c.messageUntil = c.now().Add(messageDuration)
	log.Print(msg)
}

func (c *controller) active() *scene.Object {
	if s := c.ed.Surface(); s != nil {
		return s.Active()
	}
	return nil
}

func (c *controller) cycleFont() {
	st := c.ed.State()
	if st.Mode != selection.TextSelected {
		return
	}
	families := scene.FontFamilies()
	i := slices.Index(families, st.FontFamily)
	next := families[(i+1)%len(families)]
	if err := c.ed.SetFontFamily(next); err == nil {
		c.flash("font: " + next)
	}
}

func (c *controller) startEditing() {
	o := c.active()
	if o == nil || o.Kind != scene.KindText {
		return
	}
	c.editing = true
	c.editOrig = o.Text
	c.ed.SetText("")
	c.flash("type the caption, Enter to finish")
}

// editKey handles a key press while a caption is being typed.
func (c *controller) editKey(e key.Event) {
	o := c.active()
	if o == nil || o.Kind != scene.KindText {
		c.editing = false
		return
	}
	text := o.Text
	switch e.Code {
	case key.CodeReturnEnter:
		c.editing = false
		if strings.TrimSpace(text) == "" {
			c.ed.SetText(c.editOrig)
		}
		return
	case key.CodeEscape:
		c.editing = false
		c.ed.SetText(c.editOrig)
		return
	case key.CodeDeleteBackspace:
		if _, size := utf8.DecodeLastRuneInString(text); size > 0 {
			c.ed.SetText(text[:len(text)-size])
		}
		return
	}
	if e.Modifiers&key.ModControl != 0 {
		if e.Rune == 'v' || e.Rune == 'V' {
			c.paste()
		}
		return
	}
	if e.Rune > 0 && unicode.IsPrint(e.Rune) {
		c.ed.SetText(text + string(e.Rune))
	}
}

func (c *controller) export(f export.Format) {
	path, err := c.ed.ExportFile(c.saveDir, f)
	if err != nil {
		log.Printf("export %s: %v", f, err)
		c.flash(fmt.Sprintf("%s export failed", strings.ToUpper(string(f))))
		return
	}
	c.flash("saved " + path)
	c.notifier.Export(path, c.ed.Render(1))
}

func (c *controller) copyImage() {
	img := c.ed.Render(1)
	if img == nil {
		return
	}
	if err := writeClipboardImage(img); err != nil {
		log.Printf("copy: %v", err)
		c.flash("copy failed")
		return
	}
	c.flash("meme copied to clipboard")
	c.notifier.Copy("meme")
}

// paste inserts clipboard text into the caption being edited, or a clipboard
// image as a sticker.
func (c *controller) paste() {
	if o := c.active(); o != nil && o.Kind == scene.KindText {
		if text, err := readClipboardText(); err == nil {
			if c.editing {
				text = o.Text + text
			}
			c.ed.SetText(text)
			return
		}
	}
	img, err := readClipboardImage()
	if err != nil {
		log.Printf("paste: %v", err)
		c.flash("nothing to paste")
		return
	}
	if _, err := c.ed.AddImage(img); err == nil {
		c.flash("pasted sticker")
	}
}

// pasteBackground uses a clipboard image as the background, or loads a
// copied path or URL.
func (c *controller) pasteBackground() {
	if img, err := readClipboardImage(); err == nil {
		c.ed.SetBackgroundImage(img)
		return
	}
	src, err := readClipboardText()
	if err != nil || strings.TrimSpace(src) == "" {
		c.flash("copy an image, path or URL first")
		return
	}
	c.ed.LoadBackground(c.ctx, strings.TrimSpace(src), c.deliver(loader.SlotBackground))
	c.flash("loading background")
}

// lookup finds the action bound to a key press.
func (c *controller) lookup(e key.Event) (string, bool) {
	if e.Code != key.CodeUnknown {
		if name, ok := c.keys[KeyShortcut{Code: e.Code, Modifiers: e.Modifiers}]; ok {
			return name, true
		}
	}
	if e.Rune > 0 {
		mods := e.Modifiers &^ key.ModShift
		name, ok := c.keys[KeyShortcut{Rune: unicode.ToLower(e.Rune), Modifiers: mods}]
		return name, ok
	}
	return "", false
}

// handleKey reports whether the window needs repainting.
func (c *controller) handleKey(e key.Event) bool {
	if e.Direction != key.DirPress {
		return false
	}
	if c.editing {
		c.editKey(e)
		c.dirty = true
		return true
	}
	name, ok := c.lookup(e)
	if !ok {
		return false
	}
	c.trigger(name)
	return true
}

// resize lays out the window chrome and tells the editor how much room the
// surface has.
func (c *controller) resize(width, height int) {
	c.width, c.height = width, height
	c.ed.Resize(width - c.toolbarWidth)

	y := titleHeight
	for _, b := range c.buttons {
		b.SetRect(image.Rect(0, y, c.toolbarWidth, y+buttonHeight))
		y += buttonHeight
	}
	y += 6
	cols := max(1, (c.toolbarWidth-4)/(swatchSize+4))
	c.swatches = c.swatches[:0]
	for i := range palette {
		x := 4 + (i%cols)*(swatchSize+4)
		sy := y + (i/cols)*(swatchSize+4)
		c.swatches = append(c.swatches, image.Rect(x, sy, x+swatchSize, sy+swatchSize))
	}
	c.dirty = true
}

// surfaceRect is where the surface is drawn and the scale it is drawn at.
func (c *controller) surfaceRect() (image.Rectangle, float64) {
	s := c.ed.Surface()
	if s == nil {
		return image.Rectangle{}, 1
	}
	area := image.Rect(c.toolbarWidth, titleHeight, c.width, c.height-bottomHeight)
	sw, sh := float64(s.Width()), float64(s.Height())
	scale := 1.0
	if aw, ah := float64(area.Dx()-2*margin), float64(area.Dy()-2*margin); aw > 0 && ah > 0 {
		scale = min(1, aw/sw, ah/sh)
	}
	w, h := int(sw*scale), int(sh*scale)
	x := area.Min.X + (area.Dx()-w)/2
	y := area.Min.Y + (area.Dy()-h)/2
	return image.Rect(x, y, x+w, y+h), scale
}

func (c *controller) toSurface(x, y float32) (float64, float64) {
	r, scale := c.surfaceRect()
	return (float64(x) - float64(r.Min.X)) / scale, (float64(y) - float64(r.Min.Y)) / scale
}

func (c *controller) shortcuts() []Shortcut {
	var list []Shortcut
	add := func(label, action string) {
		list = append(list, Shortcut{label: label, action: func() { c.trigger(action) }})
	}
	if c.editing {
		list = append(list,
			Shortcut{label: "Enter:done", action: func() { c.editKey(key.Event{Code: key.CodeReturnEnter}) }},
			Shortcut{label: "Esc:cancel", action: func() { c.editKey(key.Event{Code: key.CodeEscape}) }},
		)
	} else {
		add("Enter:edit text", "edit")
		add("Del:delete", "delete")
		add("Esc:deselect", "deselect")
		add("[ ]:rotate", "rotr")
		add("+/-:scale", "bigger")
		add("Q:quit", "quit")
	}
	x := c.toolbarWidth + 4
	y := c.height - bottomHeight + 16
	for i := range list {
		w := measureLabel(list[i].label)
		list[i].SetRect(image.Rect(x-2, y-14, x+w+2, y+4))
		x = list[i].rect.Max.X + 8
	}
	return list
}

// handleMouse reports whether the window needs repainting.
func (c *controller) handleMouse(e mouse.Event) bool {
	p := image.Pt(int(e.X), int(e.Y))
	press := e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress

	if press && c.message != "" && c.now().Before(c.messageUntil) {
		c.messageUntil = time.Time{}
		return true
	}

	if p.Y >= c.height-bottomHeight {
		c.hoverShortcut = -1
		for i, sc := range c.shortcuts() {
			if p.In(sc.rect) {
				c.hoverShortcut = i
				if press {
					sc.Activate()
					c.dirty = true
				}
				break
			}
		}
		return true
	}

	if p.X < c.toolbarWidth && p.Y >= titleHeight {
		c.hoverTool, c.hoverSwatch = -1, -1
		for i, b := range c.buttons {
			if p.In(b.Rect()) {
				c.hoverTool = i
				if press {
					b.Activate()
				}
				return true
			}
		}
		for i, r := range c.swatches {
			if p.In(r) {
				c.hoverSwatch = i
				if press || (e.Button == mouse.ButtonRight && e.Direction == mouse.DirPress) {
					c.pickColour(i, e.Button == mouse.ButtonRight)
				}
				return true
			}
		}
		return e.Direction == mouse.DirNone
	}

	c.hoverTool, c.hoverSwatch, c.hoverShortcut = -1, -1, -1
	sx, sy := c.toSurface(e.X, e.Y)
	switch {
	case press:
		if c.editing {
			c.editing = false
		}
		c.dragging = c.ed.SelectAt(sx, sy)
		c.dragLast = [2]float64{sx, sy}
		c.dirty = true
		return true
	case e.Direction == mouse.DirRelease:
		c.dragging = false
		return false
	case c.dragging:
		c.ed.Move(sx-c.dragLast[0], sy-c.dragLast[1])
		c.dragLast = [2]float64{sx, sy}
		c.dirty = true
		return true
	}
	return false
}

// pickColour applies swatch i to the selected caption, or to the background
// when nothing textual is selected or background is forced.
func (c *controller) pickColour(i int, background bool) {
	c.colorIdx = i
	hex := scene.Hex(palette[i].Color)
	if !background && c.ed.State().Mode == selection.TextSelected {
		c.ed.SetTextColor(hex)
	} else {
		c.ed.SetBackgroundColor(hex)
	}
	c.dirty = true
}

func statusLine(st selection.State, width, height int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%dx%d", width, height)
	switch st.Mode {
	case selection.TextSelected:
		fmt.Fprintf(&sb, "  text #%d  %s  %s", st.ActiveID, st.FontFamily, st.Fill)
	case selection.ImageSelected:
		fmt.Fprintf(&sb, "  image #%d  %s", st.ActiveID, filter.DisplayName(st.Filter))
		if st.FlipX {
			sb.WriteString("  flipped")
		}
		if st.FlipY {
			sb.WriteString("  upside down")
		}
	default:
		sb.WriteString("  nothing selected")
	}
	return sb.String()
}

// snapshot captures everything drawFrame needs so painting never touches
// the editor.
func (c *controller) snapshot() paintState {
	rect, scale := c.surfaceRect()
	if c.dirty || c.frame == nil || c.frame.Bounds().Size() != rect.Size() {
		c.frame = c.ed.Render(scale)
		c.dirty = false
	}
	st := paintState{
		width:        c.width,
		height:       c.height,
		toolbarWidth: c.toolbarWidth,
		theme:        c.th,
		frame:        c.frame,
		frameRect:    rect,
		editing:      c.editing,
		message:      c.message,
		messageUntil: c.messageUntil,
	}
	if s := c.ed.Surface(); s != nil {
		st.status = statusLine(c.ed.State(), s.Width(), s.Height())
		if o := s.Active(); o != nil {
			b := o.Bounds()
			st.selection = image.Rect(
				rect.Min.X+int(float64(b.Min.X)*scale), rect.Min.Y+int(float64(b.Min.Y)*scale),
				rect.Min.X+int(float64(b.Max.X)*scale), rect.Min.Y+int(float64(b.Max.Y)*scale),
			)
		}
	}
	for i, b := range c.buttons {
		state := StateDefault
		if i == c.hoverTool {
			state = StateHover
		}
		if b.action == "text" && c.editing {
			state = StatePressed
		}
		st.buttons = append(st.buttons, *b)
		st.buttonStates = append(st.buttonStates, state)
	}
	for i, r := range c.swatches {
		st.swatches = append(st.swatches, swatchView{rect: r, color: palette[i].Color, selected: i == c.colorIdx, hover: i == c.hoverSwatch})
	}
	st.shortcuts = c.shortcuts()
	st.hoverShortcut = c.hoverShortcut
	return st
}
