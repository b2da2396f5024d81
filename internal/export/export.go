// Package export encodes a rendered surface as PNG or as a single-page PDF.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	// PNGName is the default file name for PNG exports.
	PNGName = "meme.png"
	// PDFName is the default file name for PDF exports.
	PDFName = "meme.pdf"

	DefaultPNGMultiplier = 3
	DefaultPDFMultiplier = 2
	DefaultJPEGQuality   = 92
)

// Renderer rasterises a surface at a multiplier of its pixel size.
type Renderer interface {
	Width() int
	Height() int
	Render(multiplier float64) *image.RGBA
}

// Options controls supersampling and compression.
type Options struct {
	PNGMultiplier float64
	PDFMultiplier float64
	JPEGQuality   int
	Title         string
}

// DefaultOptions returns the standard export settings.
func DefaultOptions() Options {
	return Options{
		PNGMultiplier: DefaultPNGMultiplier,
		PDFMultiplier: DefaultPDFMultiplier,
		JPEGQuality:   DefaultJPEGQuality,
		Title:         "meme",
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.PNGMultiplier <= 0 {
		o.PNGMultiplier = d.PNGMultiplier
	}
	if o.PDFMultiplier <= 0 {
		o.PDFMultiplier = d.PDFMultiplier
	}
	if o.JPEGQuality <= 0 || o.JPEGQuality > 100 {
		o.JPEGQuality = d.JPEGQuality
	}
	if o.Title == "" {
		o.Title = d.Title
	}
	return o
}

// PNG writes the surface as a lossless PNG at the PNG multiplier.
func PNG(w io.Writer, r Renderer, opts Options) error {
	opts = opts.normalized()
	img := r.Render(opts.PNGMultiplier)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// PDF writes a one-page PDF whose page matches the surface size in points,
// with the surface embedded as a JPEG rendered at the PDF multiplier.
func PDF(w io.Writer, r Renderer, opts Options) error {
	opts = opts.normalized()
	img := r.Render(opts.PDFMultiplier)

	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, img, &jpeg.Options{Quality: opts.JPEGQuality}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}

	pw, ph := float64(r.Width()), float64(r.Height())
	// "L" would swap the custom width and height, so the page is always
	// declared portrait with the surface's own proportions.
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pw, Ht: ph},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(opts.Title, true)
	pdf.SetCreator("memeshot", true)
	pdf.AddPage()

	imgOpts := gofpdf.ImageOptions{ImageType: "JPG", ReadDpi: false}
	pdf.RegisterImageOptionsReader("surface", imgOpts, &jpg)
	pdf.ImageOptions("surface", 0, 0, pw, ph, false, imgOpts, 0, "")
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// Format names an export encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// FormatFor picks the format from a file extension, defaulting to PNG.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return FormatPDF
	}
	return FormatPNG
}

// DefaultName returns the fixed file name for a format.
func DefaultName(f Format) string {
	if f == FormatPDF {
		return PDFName
	}
	return PNGName
}

// WriteFile encodes the surface to path in format f.
func WriteFile(path string, f Format, r Renderer, opts Options) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	var encErr error
	if f == FormatPDF {
		encErr = PDF(out, r, opts)
	} else {
		encErr = PNG(out, r, opts)
	}
	if encErr != nil {
		if cerr := out.Close(); cerr != nil {
			return fmt.Errorf("%w (closing file: %v)", encErr, cerr)
		}
		return encErr
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
