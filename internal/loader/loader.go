// Package loader decodes background and sticker images from URLs, files,
// data URLs and the embedded sticker set.
package loader

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	// registered decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/example/memeshot/assets"
)

// BuiltinScheme prefixes the names of embedded stickers, e.g. builtin:chillguy.
const BuiltinScheme = "builtin:"

const defaultSVGSize = 512

// maxBodyBytes caps http downloads; replaced in tests.
var maxBodyBytes int64 = 32 << 20

// Loader fetches and decodes images.
type Loader struct {
	client  *http.Client
	svgSize int
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for http and https sources.
func WithHTTPClient(c *http.Client) Option { return func(l *Loader) { l.client = c } }

// WithSVGSize sets the pixel length of the longer side of rasterised SVGs.
func WithSVGSize(n int) Option { return func(l *Loader) { l.svgSize = n } }

// New creates a Loader with the provided options.
func New(opts ...Option) *Loader {
	l := &Loader{
		client:  &http.Client{Timeout: 30 * time.Second},
		svgSize: defaultSVGSize,
	}
	for _, o := range opts {
		o(l)
	}
	if l.svgSize <= 0 {
		l.svgSize = defaultSVGSize
	}
	return l
}

// Load reads src and decodes it. src may be an http(s) URL, a file:// URL,
// a data: URL, a builtin: sticker name or a local path.
func (l *Loader) Load(ctx context.Context, src string) (image.Image, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("load: empty source")
	}
	data, hint, err := l.fetch(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", describe(src), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := l.decode(data, hint)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", describe(src), err)
	}
	return img, nil
}

func (l *Loader) fetch(ctx context.Context, src string) ([]byte, string, error) {
	lower := strings.ToLower(src)
	switch {
	case strings.HasPrefix(lower, BuiltinScheme):
		data, err := assets.StickerSVG(src[len(BuiltinScheme):])
		return data, "image/svg+xml", err
	case strings.HasPrefix(lower, "data:"):
		return parseDataURL(src)
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return l.fetchHTTP(ctx, src)
	case strings.HasPrefix(lower, "file://"):
		u, err := url.Parse(src)
		if err != nil {
			return nil, "", err
		}
		return readFile(u.Path)
	}
	return readFile(src)
}

func (l *Loader) fetchHTTP(ctx context.Context, src string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(data)) > maxBodyBytes {
		return nil, "", fmt.Errorf("image larger than %d bytes", maxBodyBytes)
	}
	hint := resp.Header.Get("Content-Type")
	if strings.HasSuffix(strings.ToLower(req.URL.Path), ".svg") {
		hint = "image/svg+xml"
	}
	return data, hint, nil
}

func readFile(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	hint := ""
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		hint = "image/svg+xml"
	}
	return data, hint, nil
}

// parseDataURL handles data:[<mediatype>][;base64],<data>.
func parseDataURL(src string) ([]byte, string, error) {
	meta, payload, ok := strings.Cut(src[len("data:"):], ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data url")
	}
	mediatype, params, _ := strings.Cut(meta, ";")
	if strings.Contains(params, "base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("data url: %w", err)
		}
		return data, mediatype, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("data url: %w", err)
	}
	return []byte(text), mediatype, nil
}

func (l *Loader) decode(data []byte, hint string) (image.Image, error) {
	if strings.HasPrefix(strings.ToLower(hint), "image/svg") || looksLikeSVG(data) {
		return rasteriseSVG(data, l.svgSize)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

func looksLikeSVG(data []byte) bool {
	head := bytes.TrimSpace(data)
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.HasPrefix(head, []byte("<svg")) ||
		(bytes.HasPrefix(head, []byte("<?xml")) && bytes.Contains(head, []byte("<svg")))
}

// rasteriseSVG renders an SVG document so its longer side is size pixels.
func rasteriseSVG(data []byte, size int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		return nil, fmt.Errorf("svg has no usable viewBox")
	}
	scale := float64(size) / max(vw, vh)
	w, h := int(vw*scale+0.5), int(vh*scale+0.5)
	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.Draw(raster, 1.0)
	return img, nil
}

// describe shortens data URLs for error messages.
func describe(src string) string {
	if strings.HasPrefix(strings.ToLower(src), "data:") {
		if i := strings.IndexByte(src, ','); i > 0 {
			return src[:i] + ",..."
		}
	}
	return src
}
