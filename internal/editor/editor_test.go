package editor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/example/memeshot/internal/filter"
	"github.com/example/memeshot/internal/loader"
	"github.com/example/memeshot/internal/scene"
	"github.com/example/memeshot/internal/selection"
)

func mounted(t *testing.T, opts ...Option) *Editor {
	t.Helper()
	e := New(opts...)
	e.Mount(0, 0)
	t.Cleanup(e.Unmount)
	return e
}

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	return img
}

func TestMountUsesDefaultSize(t *testing.T) {
	e := mounted(t)
	s := e.Surface()
	if s.Width() != 500 || s.Height() != 500 {
		t.Fatalf("unexpected size %dx%d", s.Width(), s.Height())
	}
	if e.State() != selection.Initial() {
		t.Fatalf("unexpected state %+v", e.State())
	}
}

func TestMountTwiceDisposesPrevious(t *testing.T) {
	e := mounted(t)
	first := e.Surface()
	second := e.Mount(300, 200)
	if !first.Disposed() {
		t.Fatal("previous surface should be disposed")
	}
	if second.Width() != 300 || second.Height() != 200 {
		t.Fatalf("unexpected size %dx%d", second.Width(), second.Height())
	}
}

func TestUnmountedMutatorsAreNoops(t *testing.T) {
	e := New()
	e.Mount(0, 0)
	e.Unmount()
	e.Unmount()
	if e.Mounted() || e.Surface() != nil {
		t.Fatal("expected no surface")
	}
	if _, err := e.AddText(); !errors.Is(err, ErrNoSurface) {
		t.Fatalf("AddText = %v", err)
	}
	if err := e.Flip(Horizontal); !errors.Is(err, ErrNoSurface) {
		t.Fatalf("Flip = %v", err)
	}
	if _, err := e.CycleFilter(); !errors.Is(err, ErrNoSurface) {
		t.Fatalf("CycleFilter = %v", err)
	}
	if err := e.ExportPNG(&bytes.Buffer{}); !errors.Is(err, ErrNoSurface) {
		t.Fatalf("ExportPNG = %v", err)
	}
	if e.SelectAt(1, 1) {
		t.Fatal("SelectAt hit without a surface")
	}
	e.Deselect()
}

func TestAddTextDefaults(t *testing.T) {
	e := mounted(t)
	o, err := e.AddText()
	if err != nil {
		t.Fatalf("AddText: %v", err)
	}
	if o.Text != DefaultText || o.FontSize != DefaultFontSize || o.FontFamily != "sans-bold" {
		t.Fatalf("unexpected text object %+v", o)
	}
	if scene.Hex(o.Fill) != "#ffffff" || scene.Hex(o.Stroke) != "#000000" || o.StrokeWidth != 2 {
		t.Fatalf("unexpected colours %+v", o)
	}
	if o.Left != 250 || o.Top != 250 || o.Width != 400 {
		t.Fatalf("unexpected placement %+v", o)
	}
	st := e.State()
	if st.Mode != selection.TextSelected || st.ActiveID != o.ID {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestActiveObjectIsMostRecentlyAdded(t *testing.T) {
	e := mounted(t)
	var last *scene.Object
	for i := 0; i < 5; i++ {
		var err error
		if i%2 == 0 {
			last, err = e.AddText()
		} else {
			last, err = e.AddImage(solid(10, 10))
		}
		if err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
		if e.Surface().Active() != last || e.State().ActiveID != last.ID {
			t.Fatalf("step %d: active object is not the newest", i)
		}
	}
	if err := e.DeleteSelected(); err != nil {
		t.Fatalf("DeleteSelected: %v", err)
	}
	if e.Surface().Active() != nil || e.State() != selection.Initial() {
		t.Fatalf("selection should be cleared, got %+v", e.State())
	}
	if len(e.Objects()) != 4 {
		t.Fatalf("expected 4 objects, got %d", len(e.Objects()))
	}
	if err := e.DeleteSelected(); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("second delete = %v", err)
	}
}

func TestAddImageFitsSticker(t *testing.T) {
	e := mounted(t)
	o, err := e.AddImage(solid(100, 50))
	if err != nil {
		t.Fatalf("AddImage: %v", err)
	}
	if o.ScaleX != 2.5 || o.ScaleY != 2.5 {
		t.Fatalf("unexpected scale %v,%v", o.ScaleX, o.ScaleY)
	}
	if o.Left != 250 || o.Top != 250 {
		t.Fatalf("sticker not centred: %v,%v", o.Left, o.Top)
	}

	wide := mounted(t, WithStickerFit(2))
	o, _ = wide.AddImage(solid(100, 100))
	if o.ScaleX != 4 {
		t.Fatalf("fit should clamp to 0.8, scale %v", o.ScaleX)
	}
}

func TestFlipIsAnInvolution(t *testing.T) {
	e := mounted(t)
	if _, err := e.AddImage(solid(4, 4)); err != nil {
		t.Fatalf("AddImage: %v", err)
	}
	for _, axis := range []Axis{Horizontal, Vertical} {
		before := e.State()
		if err := e.Flip(axis); err != nil {
			t.Fatalf("Flip(%v): %v", axis, err)
		}
		if e.State() == before {
			t.Fatalf("Flip(%v) did not change state", axis)
		}
		if err := e.Flip(axis); err != nil {
			t.Fatalf("Flip(%v): %v", axis, err)
		}
		if e.State() != before {
			t.Fatalf("double Flip(%v) = %+v, want %+v", axis, e.State(), before)
		}
	}
}

func TestFlipIgnoresText(t *testing.T) {
	e := mounted(t)
	o, _ := e.AddText()
	if err := e.Flip(Horizontal); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("Flip on text = %v", err)
	}
	if o.FlipX {
		t.Fatal("text should not be flipped")
	}
	e.Deselect()
	if err := e.Flip(Vertical); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("Flip without selection = %v", err)
	}
}

func TestCycleFilterReturnsToStart(t *testing.T) {
	e := mounted(t)
	o, _ := e.AddImage(solid(6, 6))
	start := o.Filter
	seen := map[string]bool{}
	for i := 0; i < filter.Len(); i++ {
		name, err := e.CycleFilter()
		if err != nil {
			t.Fatalf("CycleFilter: %v", err)
		}
		if e.State().Filter != name {
			t.Fatalf("state filter %q, object filter %q", e.State().Filter, name)
		}
		seen[name] = true
	}
	if o.Filter != start {
		t.Fatalf("after %d cycles filter = %q, want %q", filter.Len(), o.Filter, start)
	}
	if len(seen) != filter.Len() {
		t.Fatalf("visited %d filters, want %d", len(seen), filter.Len())
	}
}

func TestCycleFilterLeavesTextAlone(t *testing.T) {
	e := mounted(t)
	e.AddText()
	if _, err := e.CycleFilter(); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("CycleFilter on text = %v", err)
	}
}

func TestSetFilterRejectsUnknown(t *testing.T) {
	e := mounted(t)
	o, _ := e.AddImage(solid(3, 3))
	if err := e.SetFilter("sepia"); err != nil {
		t.Fatalf("SetFilter: %v", err)
	}
	if err := e.SetFilter("posterize"); err == nil {
		t.Fatal("expected error for unknown filter")
	}
	if o.Filter != "sepia" {
		t.Fatalf("filter changed to %q", o.Filter)
	}
}

func TestResizeToMobileIsSquare(t *testing.T) {
	e := mounted(t)
	if err := e.SetBackgroundImage(solid(800, 400)); err != nil {
		t.Fatalf("SetBackgroundImage: %v", err)
	}
	if s := e.Surface(); s.Width() != 1000 || s.Height() != 500 {
		t.Fatalf("desktop size %dx%d", s.Width(), s.Height())
	}
	for _, tc := range []struct{ viewport, side int }{{700, 500}, {500, 450}, {100, 90}} {
		size := e.Resize(tc.viewport)
		if size.Width != tc.side || size.Height != tc.side {
			t.Fatalf("Resize(%d) = %+v, want side %d", tc.viewport, size, tc.side)
		}
		if s := e.Surface(); s.Width() != tc.side || s.Height() != tc.side {
			t.Fatalf("surface not resized for %d", tc.viewport)
		}
	}
}

func TestDesktopBackgroundWidth(t *testing.T) {
	e := mounted(t)
	img := solid(1200, 400)
	if err := e.SetBackgroundImage(img); err != nil {
		t.Fatalf("SetBackgroundImage: %v", err)
	}
	want := 1200 * 500 / 400
	if s := e.Surface(); s.Width() != want || s.Height() != 500 {
		t.Fatalf("surface %dx%d, want %dx500", s.Width(), s.Height(), want)
	}
}

func TestBackgroundColourAndImageAreIndependent(t *testing.T) {
	e := mounted(t)
	if err := e.SetBackgroundColor("#102030"); err != nil {
		t.Fatalf("SetBackgroundColor: %v", err)
	}
	e.SetBackgroundImage(solid(10, 10))
	if scene.Hex(e.Surface().Background()) != "#102030" {
		t.Fatal("background image cleared the colour")
	}
	e.SetBackgroundColor("#000")
	if e.Surface().BackgroundImage() == nil {
		t.Fatal("background colour cleared the image")
	}
	if err := e.SetBackgroundColor("teal"); err == nil {
		t.Fatal("expected error for invalid hex")
	}
	if scene.Hex(e.Surface().Background()) != "#000000" {
		t.Fatal("invalid colour changed the background")
	}
}

func TestDeselectResetsTextState(t *testing.T) {
	e := mounted(t)
	e.AddText()
	e.SetTextColor("#00ff00")
	e.SetFontFamily("mono")
	if st := e.State(); st.Fill != "#00ff00" || st.FontFamily != "mono" {
		t.Fatalf("state not synced: %+v", st)
	}
	e.Deselect()
	st := e.State()
	if st.FontFamily != selection.DefaultFontFamily || st.Fill != selection.DefaultFill || st.TextSelected {
		t.Fatalf("unexpected state after deselect %+v", st)
	}
}

func TestTextColourSurvivesReselect(t *testing.T) {
	e := mounted(t)
	text, _ := e.AddText()
	if err := e.SetTextColor("#ff0000"); err != nil {
		t.Fatalf("SetTextColor: %v", err)
	}
	e.Deselect()
	other, _ := e.AddText()
	if e.State().Fill != "#ffffff" {
		t.Fatalf("other text fill %q", e.State().Fill)
	}
	if err := e.Select(other.ID); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := e.Select(text.ID); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if e.State().Fill != "#ff0000" {
		t.Fatalf("fill = %q, want #ff0000", e.State().Fill)
	}
}

func TestTextMutatorsRejectInvalidInput(t *testing.T) {
	e := mounted(t)
	o, _ := e.AddText()
	if err := e.SetTextColor("#zzzzzz"); err == nil {
		t.Fatal("expected hex error")
	}
	if err := e.SetFontFamily("comic"); err == nil {
		t.Fatal("expected font error")
	}
	if scene.Hex(o.Fill) != "#ffffff" || o.FontFamily != "sans-bold" {
		t.Fatalf("object changed: %+v", o)
	}
	e.AddImage(solid(2, 2))
	if err := e.SetTextColor("#ff0000"); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("SetTextColor on image = %v", err)
	}
}

func TestSelectAtHitsTopmost(t *testing.T) {
	e := mounted(t)
	bottom, _ := e.AddImage(solid(100, 100))
	top, _ := e.AddImage(solid(10, 10))
	e.Deselect()
	if !e.SelectAt(250, 250) || e.State().ActiveID != top.ID {
		t.Fatalf("expected top object selected, got %+v", e.State())
	}
	if err := e.Move(0, 200); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if !e.SelectAt(250, 250) || e.State().ActiveID != bottom.ID {
		t.Fatalf("expected bottom object selected, got %+v", e.State())
	}
	if e.SelectAt(2, 2) || e.State().Mode != selection.NoSelection {
		t.Fatal("empty click should clear the selection")
	}
}

func TestAddStickerBuiltin(t *testing.T) {
	e := mounted(t, WithLoader(loader.New(loader.WithSVGSize(200))))
	o, err := e.AddSticker(context.Background(), "builtin:chillguy")
	if err != nil {
		t.Fatalf("AddSticker: %v", err)
	}
	if e.State().Mode != selection.ImageSelected || e.State().ActiveID != o.ID {
		t.Fatalf("sticker not selected: %+v", e.State())
	}
	w, h := o.NaturalSize()
	if longest := max(w*o.ScaleX, h*o.ScaleY); longest < 249 || longest > 251 {
		t.Fatalf("sticker longest side %v, want 250", longest)
	}
}

func TestAddStickerFailureLeavesState(t *testing.T) {
	e := mounted(t)
	e.AddText()
	before := e.State()
	_, err := e.AddSticker(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	if err == nil {
		t.Fatal("expected load error")
	}
	if e.State() != before || len(e.Objects()) != 1 {
		t.Fatalf("state changed after failed load: %+v", e.State())
	}
}

func TestSupersededStickerIsDiscarded(t *testing.T) {
	e := mounted(t, WithLoader(loader.New(loader.WithSVGSize(32))))
	results := make(chan loader.Result, 2)
	deliver := func(r loader.Result) { results <- r }
	first := e.LoadSticker(context.Background(), "builtin:chillguy", deliver)
	second := e.LoadSticker(context.Background(), "builtin:sunglasses", deliver)

	byTicket := map[*loader.Ticket]loader.Result{}
	for i := 0; i < 2; i++ {
		r := <-results
		byTicket[r.Ticket] = r
	}
	if _, err := e.ApplySticker(byTicket[first]); !errors.Is(err, loader.ErrSuperseded) {
		t.Fatalf("first ApplySticker = %v", err)
	}
	o, err := e.ApplySticker(byTicket[second])
	if err != nil {
		t.Fatalf("second ApplySticker: %v", err)
	}
	if objs := e.Objects(); len(objs) != 1 || objs[0] != o {
		t.Fatalf("expected only the newest sticker, got %d objects", len(objs))
	}
}

func TestExportPNGSupersamples(t *testing.T) {
	e := mounted(t)
	e.Mount(40, 30)
	e.AddText()
	var buf bytes.Buffer
	if err := e.ExportPNG(&buf); err != nil {
		t.Fatalf("ExportPNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 120 || img.Bounds().Dy() != 90 {
		t.Fatalf("unexpected size %v", img.Bounds())
	}
}

func TestExportFileUsesDefaultName(t *testing.T) {
	e := mounted(t)
	e.Mount(20, 20)
	dir := t.TempDir()
	path, err := e.ExportFile(dir, "pdf")
	if err != nil {
		t.Fatalf("ExportFile: %v", err)
	}
	if filepath.Base(path) != "meme.pdf" {
		t.Fatalf("unexpected path %s", path)
	}
}

func TestParseAxis(t *testing.T) {
	for in, want := range map[string]Axis{"horizontal": Horizontal, "X": Horizontal, "v": Vertical, "vertical": Vertical} {
		got, err := ParseAxis(in)
		if err != nil || got != want {
			t.Fatalf("ParseAxis(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseAxis("diagonal"); err == nil {
		t.Fatal("expected error")
	}
}
