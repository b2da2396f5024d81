package loader

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestLoadDataURL(t *testing.T) {
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 3, 2))
	img, err := New().Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
}

func TestLoadFileAndFileURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bg.png")
	if err := os.WriteFile(path, pngBytes(t, 4, 4), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	l := New()
	for _, src := range []string{path, "file://" + path} {
		if _, err := l.Load(context.Background(), src); err != nil {
			t.Fatalf("Load(%q): %v", src, err)
		}
	}
}

func TestLoadBuiltinSticker(t *testing.T) {
	img, err := New(WithSVGSize(100)).Load(context.Background(), "builtin:chillguy")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b := img.Bounds()
	if max(b.Dx(), b.Dy()) != 100 {
		t.Fatalf("expected longer side 100, got %v", b)
	}
}

func TestLoadHTTP(t *testing.T) {
	body := pngBytes(t, 5, 5)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	l := New(WithHTTPClient(srv.Client()))
	if _, err := l.Load(context.Background(), srv.URL+"/chillguy.png"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := l.Load(context.Background(), srv.URL+"/missing.png"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestLoadHTTPRejectsOversizedBody(t *testing.T) {
	body := pngBytes(t, 5, 5)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	original := maxBodyBytes
	maxBodyBytes = int64(len(body) - 1)
	t.Cleanup(func() { maxBodyBytes = original })

	_, err := New(WithHTTPClient(srv.Client())).Load(context.Background(), srv.URL+"/big.png")
	if err == nil || !strings.Contains(err.Error(), "larger than") {
		t.Fatalf("expected size error, got %v", err)
	}
}

func TestLoadUndecodable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := New().Load(context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), "decode "+path) {
		t.Fatalf("expected decode error with context, got %v", err)
	}
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Load(ctx, "builtin:chillguy")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTrackerLastRequestWins(t *testing.T) {
	tr := NewTracker()
	first := tr.Begin(context.Background(), SlotBackground)
	second := tr.Begin(context.Background(), SlotBackground)
	other := tr.Begin(context.Background(), SlotSticker)

	if first.Context().Err() == nil {
		t.Fatal("superseded ticket should be cancelled")
	}
	if tr.Current(first) || !tr.Current(second) || !tr.Current(other) {
		t.Fatal("unexpected current tickets")
	}
	if err := tr.Finish(second); err != nil {
		t.Fatalf("Finish(second): %v", err)
	}
	if err := tr.Finish(first); !errors.Is(err, ErrSuperseded) {
		t.Fatalf("Finish(first) = %v, want ErrSuperseded", err)
	}
	tr.CancelAll()
	if err := tr.Finish(other); !errors.Is(err, ErrSuperseded) {
		t.Fatalf("Finish after CancelAll = %v", err)
	}
}

func TestStartDeliversResult(t *testing.T) {
	tr := NewTracker()
	tk := tr.Begin(context.Background(), SlotSticker)
	ch := make(chan Result, 1)
	New(WithSVGSize(32)).Start(tk, "builtin:sunglasses", func(r Result) { ch <- r })
	res := <-ch
	if res.Err != nil {
		t.Fatalf("Start: %v", res.Err)
	}
	if res.Ticket != tk || res.Source != "builtin:sunglasses" {
		t.Fatalf("unexpected result %+v", res)
	}
}
