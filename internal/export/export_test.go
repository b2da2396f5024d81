package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

type fakeSurface struct {
	w, h  int
	calls []float64
}

func (f *fakeSurface) Width() int  { return f.w }
func (f *fakeSurface) Height() int { return f.h }

func (f *fakeSurface) Render(m float64) *image.RGBA {
	f.calls = append(f.calls, m)
	img := image.NewRGBA(image.Rect(0, 0, int(float64(f.w)*m), int(float64(f.h)*m)))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	return img
}

func TestPNGUsesSupersampling(t *testing.T) {
	s := &fakeSurface{w: 40, h: 20}
	var buf bytes.Buffer
	if err := PNG(&buf, s, DefaultOptions()); err != nil {
		t.Fatalf("PNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 120 || img.Bounds().Dy() != 60 {
		t.Fatalf("unexpected size %v", img.Bounds())
	}
	if len(s.calls) != 1 || s.calls[0] != DefaultPNGMultiplier {
		t.Fatalf("unexpected render calls %v", s.calls)
	}
}

func TestPDFProducesSinglePageDocument(t *testing.T) {
	s := &fakeSurface{w: 50, h: 30}
	var buf bytes.Buffer
	if err := PDF(&buf, s, Options{}); err != nil {
		t.Fatalf("PDF: %v", err)
	}
	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("missing pdf header: %q", out[:8])
	}
	if n := bytes.Count(out, []byte("/Type /Page\n")); n != 1 {
		t.Fatalf("expected one page object, found %d", n)
	}
	if !bytes.Contains(out, []byte("/DCTDecode")) {
		t.Fatal("expected an embedded JPEG")
	}
	if len(s.calls) != 1 || s.calls[0] != DefaultPDFMultiplier {
		t.Fatalf("unexpected render calls %v", s.calls)
	}
}

func TestPDFPageMatchesWideSurface(t *testing.T) {
	var buf bytes.Buffer
	if err := PDF(&buf, &fakeSurface{w: 889, h: 500}, Options{}); err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("/MediaBox [0 0 889.00 500.00]")) {
		t.Fatal("page is not sized to the surface")
	}
}

func TestWriteFileCreatesDirectories(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	path := filepath.Join(dir, PNGName)
	if err := WriteFile(path, FormatFor(path), &fakeSurface{w: 2, h: 2}, DefaultOptions()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}
}

func TestFormatFor(t *testing.T) {
	if FormatFor("x/meme.pdf") != FormatPDF || FormatFor("OUT.PDF") != FormatPDF || FormatFor("meme.png") != FormatPNG || FormatFor("meme") != FormatPNG {
		t.Fatal("unexpected format detection")
	}
	if DefaultName(FormatPDF) != "meme.pdf" || DefaultName(FormatPNG) != "meme.png" {
		t.Fatal("unexpected default names")
	}
}
