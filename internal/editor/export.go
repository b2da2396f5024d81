package editor

import (
	"io"
	"path/filepath"

	"github.com/example/memeshot/internal/export"
)

// ExportOptions returns the export settings in use.
func (e *Editor) ExportOptions() export.Options { return e.exportOpts }

// ExportPNG writes the surface, background included, as a supersampled PNG.
func (e *Editor) ExportPNG(w io.Writer) error {
	if !e.Mounted() {
		return ErrNoSurface
	}
	return export.PNG(w, e.surface, e.exportOpts)
}

// ExportPDF writes the surface as a single-page PDF.
func (e *Editor) ExportPDF(w io.Writer) error {
	if !e.Mounted() {
		return ErrNoSurface
	}
	return export.PDF(w, e.surface, e.exportOpts)
}

// ExportFile writes the surface into dir under the default name for f and
// returns the path written.
func (e *Editor) ExportFile(dir string, f export.Format) (string, error) {
	return e.ExportPath(filepath.Join(dir, export.DefaultName(f)))
}

// ExportPath writes the surface to path, choosing the format from its
// extension.
func (e *Editor) ExportPath(path string) (string, error) {
	if !e.Mounted() {
		return "", ErrNoSurface
	}
	if err := export.WriteFile(path, export.FormatFor(path), e.surface, e.exportOpts); err != nil {
		return "", err
	}
	return path, nil
}
