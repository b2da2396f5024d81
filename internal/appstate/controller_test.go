package appstate

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/memeshot/internal/clipboard"
	"github.com/example/memeshot/internal/editor"
	"github.com/example/memeshot/internal/export"
	"github.com/example/memeshot/internal/loader"
	"github.com/example/memeshot/internal/scene"
	"github.com/example/memeshot/internal/selection"
	"github.com/example/memeshot/internal/theme"
)

func newTestController(t *testing.T, post func(any), opts ...Option) *controller {
	t.Helper()
	ed := editor.New(editor.WithLoader(loader.New(loader.WithSVGSize(32))))
	a := New(append([]Option{WithEditor(ed)}, opts...)...)
	c := newController(a, post)
	c.mount()
	t.Cleanup(c.unmount)
	c.resize(c.toolbarWidth+800, 600)
	return c
}

func press(r rune, code key.Code, mods key.Modifiers) key.Event {
	return key.Event{Rune: r, Code: code, Modifiers: mods, Direction: key.DirPress}
}

func stubClipboard(t *testing.T, img image.Image, text string) {
	t.Helper()
	oldImg, oldText := readClipboardImage, readClipboardText
	t.Cleanup(func() { readClipboardImage, readClipboardText = oldImg, oldText })
	readClipboardImage = func() (image.Image, error) {
		if img == nil {
			return nil, clipboard.ErrNoImage
		}
		return img, nil
	}
	readClipboardText = func() (string, error) {
		if text == "" {
			return "", clipboard.ErrNoText
		}
		return text, nil
	}
}

func TestDeleteBindingFollowsMount(t *testing.T) {
	c := newTestController(t, nil)
	if got := c.keys[KeyShortcut{Code: key.CodeDeleteForward}]; got != "delete" {
		t.Fatalf("delete key bound to %q while mounted", got)
	}
	c.unmount()
	if _, ok := c.keys[KeyShortcut{Code: key.CodeDeleteForward}]; ok {
		t.Fatal("delete key still bound after unmount")
	}
	if _, ok := c.actions["delete"]; ok {
		t.Fatal("delete action still registered after unmount")
	}
	if c.ed.Mounted() {
		t.Fatal("surface should be disposed")
	}
}

func TestKeyLookupIgnoresShift(t *testing.T) {
	c := newTestController(t, nil)
	if !c.handleKey(press('T', key.CodeT, key.ModShift)) {
		t.Fatal("shift+T not handled")
	}
	if n := len(c.ed.Objects()); n != 1 {
		t.Fatalf("expected one text object, got %d", n)
	}
	if c.handleKey(key.Event{Rune: 't', Code: key.CodeT, Direction: key.DirRelease}) {
		t.Fatal("key release should be ignored")
	}
}

func TestDeleteKeyRemovesSelection(t *testing.T) {
	c := newTestController(t, nil)
	c.ed.AddText()
	c.handleKey(press(0, key.CodeDeleteForward, 0))
	if n := len(c.ed.Objects()); n != 0 {
		t.Fatalf("expected no objects, got %d", n)
	}
	if c.ed.State().Mode != selection.NoSelection {
		t.Fatalf("unexpected state %+v", c.ed.State())
	}
}

func TestTextEditing(t *testing.T) {
	c := newTestController(t, nil)
	o, _ := c.ed.AddText()
	c.handleKey(press('\r', key.CodeReturnEnter, 0))
	if !c.editing {
		t.Fatal("Enter should start editing")
	}
	for _, r := range "hix" {
		c.handleKey(press(r, key.CodeUnknown, 0))
	}
	c.handleKey(press(0, key.CodeDeleteBackspace, 0))
	c.handleKey(press('\r', key.CodeReturnEnter, 0))
	if c.editing {
		t.Fatal("Enter should finish editing")
	}
	if o.Text != "hi" {
		t.Fatalf("text = %q", o.Text)
	}
}

func TestTextEditingEscapeRestores(t *testing.T) {
	c := newTestController(t, nil)
	o, _ := c.ed.AddText()
	c.startEditing()
	c.handleKey(press('x', key.CodeX, 0))
	c.handleKey(press(0, key.CodeEscape, 0))
	if o.Text != editor.DefaultText {
		t.Fatalf("text = %q", o.Text)
	}
}

func TestEmptyCaptionRestoresOriginal(t *testing.T) {
	c := newTestController(t, nil)
	o, _ := c.ed.AddText()
	c.startEditing()
	c.handleKey(press('\r', key.CodeReturnEnter, 0))
	if o.Text != editor.DefaultText {
		t.Fatalf("text = %q", o.Text)
	}
}

func TestPickColourTargetsSelection(t *testing.T) {
	c := newTestController(t, nil)
	c.pickColour(2, false)
	if got := scene.Hex(c.ed.Surface().Background()); got != scene.Hex(palette[2].Color) {
		t.Fatalf("background = %s", got)
	}

	o, _ := c.ed.AddText()
	c.pickColour(4, false)
	if o.Fill != palette[4].Color {
		t.Fatalf("fill = %v", o.Fill)
	}
	if got := c.ed.State().Fill; got != scene.Hex(palette[4].Color) {
		t.Fatalf("state fill = %s", got)
	}
	c.pickColour(1, true)
	if got := scene.Hex(c.ed.Surface().Background()); got != scene.Hex(palette[1].Color) {
		t.Fatalf("forced background = %s", got)
	}
	if o.Fill != palette[4].Color {
		t.Fatal("forcing the background must not recolour text")
	}
}

func TestSwatchClick(t *testing.T) {
	c := newTestController(t, nil)
	r := c.swatches[3]
	c.handleMouse(mouse.Event{
		X: float32(r.Min.X + 2), Y: float32(r.Min.Y + 2),
		Button: mouse.ButtonLeft, Direction: mouse.DirPress,
	})
	if c.colorIdx != 3 {
		t.Fatalf("colorIdx = %d", c.colorIdx)
	}
}

func TestToolbarClickTriggersAction(t *testing.T) {
	c := newTestController(t, nil)
	r := c.buttons[0].Rect()
	c.handleMouse(mouse.Event{
		X: float32(r.Min.X + 2), Y: float32(r.Min.Y + 2),
		Button: mouse.ButtonLeft, Direction: mouse.DirPress,
	})
	if n := len(c.ed.Objects()); n != 1 {
		t.Fatalf("expected text added, got %d objects", n)
	}
}

func TestDragMovesSelection(t *testing.T) {
	c := newTestController(t, nil)
	o, _ := c.ed.AddText()
	c.ed.Deselect()
	rect, scale := c.surfaceRect()
	if scale != 1 {
		t.Fatalf("scale = %v", scale)
	}
	x := float32(rect.Min.X) + float32(o.Left)
	y := float32(rect.Min.Y) + float32(o.Top)
	startLeft, startTop := o.Left, o.Top

	c.handleMouse(mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	if c.ed.State().ActiveID != o.ID {
		t.Fatalf("press should select the caption, state %+v", c.ed.State())
	}
	c.handleMouse(mouse.Event{X: x + 10, Y: y + 5})
	c.handleMouse(mouse.Event{X: x + 10, Y: y + 5, Button: mouse.ButtonLeft, Direction: mouse.DirRelease})
	c.handleMouse(mouse.Event{X: x + 50, Y: y + 50})

	if o.Left != startLeft+10 || o.Top != startTop+5 {
		t.Fatalf("moved to %v,%v", o.Left, o.Top)
	}
}

func TestClickOnEmptySurfaceDeselects(t *testing.T) {
	c := newTestController(t, nil)
	c.ed.AddText()
	rect, _ := c.surfaceRect()
	c.handleMouse(mouse.Event{X: float32(rect.Min.X + 2), Y: float32(rect.Min.Y + 2), Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	if c.ed.State().Mode != selection.NoSelection {
		t.Fatalf("unexpected state %+v", c.ed.State())
	}
}

func TestExportWritesToSaveDir(t *testing.T) {
	dir := t.TempDir()
	c := newTestController(t, nil, WithSaveDir(dir))
	c.handleKey(press('s', key.CodeS, key.ModControl))
	if _, err := os.Stat(filepath.Join(dir, export.PNGName)); err != nil {
		t.Fatalf("png not written: %v", err)
	}
	if !strings.HasPrefix(c.message, "saved ") {
		t.Fatalf("message = %q", c.message)
	}
}

func TestCopyWritesClipboard(t *testing.T) {
	c := newTestController(t, nil)
	var got image.Image
	old := writeClipboardImage
	t.Cleanup(func() { writeClipboardImage = old })
	writeClipboardImage = func(img image.Image) error {
		got = img
		return nil
	}
	c.trigger("copy")
	if got == nil || got.Bounds().Dx() != 500 {
		t.Fatalf("clipboard image = %v", got)
	}
}

func TestCopyFailureIsReported(t *testing.T) {
	c := newTestController(t, nil)
	old := writeClipboardImage
	t.Cleanup(func() { writeClipboardImage = old })
	writeClipboardImage = func(image.Image) error { return errors.New("no display") }
	c.trigger("copy")
	if c.message != "copy failed" {
		t.Fatalf("message = %q", c.message)
	}
}

func TestPasteImageAddsSticker(t *testing.T) {
	stubClipboard(t, image.NewRGBA(image.Rect(0, 0, 100, 100)), "")
	c := newTestController(t, nil)
	c.trigger("paste")
	objs := c.ed.Objects()
	if len(objs) != 1 || objs[0].Kind != scene.KindImage {
		t.Fatalf("expected one image, got %d objects", len(objs))
	}
}

func TestPasteTextReplacesCaption(t *testing.T) {
	stubClipboard(t, nil, "hello")
	c := newTestController(t, nil)
	o, _ := c.ed.AddText()
	c.trigger("paste")
	if o.Text != "hello" {
		t.Fatalf("text = %q", o.Text)
	}
}

func TestPasteBackgroundImage(t *testing.T) {
	stubClipboard(t, image.NewRGBA(image.Rect(0, 0, 800, 400)), "")
	c := newTestController(t, nil)
	c.trigger("background")
	s := c.ed.Surface()
	if s.BackgroundImage() == nil {
		t.Fatal("background image not set")
	}
	if s.Width() != 1000 || s.Height() != 500 {
		t.Fatalf("surface %dx%d", s.Width(), s.Height())
	}
}

func TestStickerLoadsAsynchronously(t *testing.T) {
	events := make(chan any, 1)
	c := newTestController(t, func(ev any) { events <- ev }, WithStickerSource(loader.BuiltinScheme+"chillguy"))
	c.trigger("sticker")
	select {
	case ev := <-events:
		done, ok := ev.(loadDone)
		if !ok {
			t.Fatalf("unexpected event %T", ev)
		}
		c.applyLoad(done)
	case <-time.After(5 * time.Second):
		t.Fatal("sticker load did not finish")
	}
	if st := c.ed.State(); st.Mode != selection.ImageSelected {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestFailedStickerLoadFlashes(t *testing.T) {
	events := make(chan any, 1)
	c := newTestController(t, func(ev any) { events <- ev }, WithStickerSource(filepath.Join(t.TempDir(), "missing.png")))
	c.trigger("sticker")
	done := (<-events).(loadDone)
	c.applyLoad(done)
	if !strings.HasPrefix(c.message, "could not load") {
		t.Fatalf("message = %q", c.message)
	}
	if len(c.ed.Objects()) != 0 {
		t.Fatal("failed load must not add objects")
	}
}

func TestFlipAndFilterKeys(t *testing.T) {
	c := newTestController(t, nil)
	o, _ := c.ed.AddImage(image.NewRGBA(image.Rect(0, 0, 10, 10)))
	c.handleKey(press('f', key.CodeF, 0))
	c.handleKey(press('v', key.CodeV, 0))
	if !o.FlipX || !o.FlipY {
		t.Fatalf("flip = %v,%v", o.FlipX, o.FlipY)
	}
	c.handleKey(press('g', key.CodeG, 0))
	if o.Filter == "" || !strings.HasPrefix(c.message, "filter: ") {
		t.Fatalf("filter %q message %q", o.Filter, c.message)
	}
}

func TestStatusLine(t *testing.T) {
	if got := statusLine(selection.Initial(), 500, 500); got != "500x500  nothing selected" {
		t.Fatalf("status = %q", got)
	}
	st := selection.State{Mode: selection.ImageSelected, ActiveID: 3, FlipX: true}
	if got := statusLine(st, 10, 20); !strings.Contains(got, "image #3") || !strings.Contains(got, "flipped") {
		t.Fatalf("status = %q", got)
	}
}

func TestComposeFrameDrawsSurface(t *testing.T) {
	c := newTestController(t, nil)
	c.ed.AddText()
	st := c.snapshot()
	if st.frame == nil || st.selection.Empty() {
		t.Fatalf("snapshot missing frame or selection: %+v", st.frameRect)
	}
	dst := image.NewRGBA(image.Rect(0, 0, st.width, st.height))
	composeFrame(context.Background(), dst, st)
	p := st.frameRect.Min.Add(image.Pt(1, 1))
	if dst.RGBAAt(p.X, p.Y) != st.frame.RGBAAt(1, 1) {
		t.Fatalf("surface pixel %v != frame pixel %v", dst.RGBAAt(p.X, p.Y), st.frame.RGBAAt(1, 1))
	}
}

func TestComposeFrameStopsWhenCancelled(t *testing.T) {
	c := newTestController(t, nil)
	st := c.snapshot()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dst := image.NewRGBA(image.Rect(0, 0, st.width, st.height))
	composeFrame(ctx, dst, st)
	p := st.frameRect.Min.Add(image.Pt(1, 1))
	if dst.RGBAAt(p.X, p.Y) != c.th.Background {
		t.Fatal("cancelled frame should stop after the backdrop")
	}
}

func TestMessageDrawsAlongsideCaptionRender(t *testing.T) {
	surf := scene.New(200, 100)
	o := scene.NewText("twenty eight")
	o.FontSize = messageFontSize
	surf.Add(o)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			surf.Render(1)
		}
	}()
	th := theme.Default()
	dst := image.NewRGBA(image.Rect(0, 0, 300, 120))
	for i := 0; i < 20; i++ {
		drawMessage(dst, th, "saved meme.png", 300, 120)
	}
	<-done

	if dst.RGBAAt(150, 60) == (color.RGBA{}) {
		t.Fatal("message was not drawn")
	}
}
