// Package clipboard copies rendered memes to the system clipboard and reads
// images or text back for pasting.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"strings"
)

var (
	ErrNoDisplay   = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
	ErrNoImage     = errors.New("clipboard does not contain image data")
	ErrNoText      = errors.New("clipboard does not contain text data")
	ErrUnsupported = errors.New("clipboard is not supported on this platform")
)

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

func encodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, errors.New("clipboard: nil image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("clipboard encode: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("clipboard decode: %w", err)
	}
	return img, nil
}

// cleanText drops the NUL terminator some X11 clients append to STRING data.
func cleanText(data []byte) (string, error) {
	s := strings.TrimRight(string(data), "\x00")
	if s == "" {
		return "", ErrNoText
	}
	return s, nil
}
