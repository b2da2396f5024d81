package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

// Embedded sticker artwork for memeshot.
//
//go:embed stickers/*.svg
var embeddedStickers embed.FS

var (
	loadStickersOnce sync.Once
	loadStickersErr  error

	stickerData = map[string][]byte{}
)

func loadStickers() {
	entries, err := fs.ReadDir(embeddedStickers, "stickers")
	if err != nil {
		loadStickersErr = err
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".svg") {
			continue
		}
		data, err := embeddedStickers.ReadFile(path.Join("stickers", name))
		if err != nil {
			loadStickersErr = err
			return
		}
		stickerData[strings.TrimSuffix(name, ".svg")] = data
	}
}

func ensureStickers() error {
	loadStickersOnce.Do(loadStickers)
	return loadStickersErr
}

// StickerSVG returns a copy of the SVG bytes for the named sticker.
func StickerSVG(name string) ([]byte, error) {
	if err := ensureStickers(); err != nil {
		return nil, err
	}
	data, ok := stickerData[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("sticker %q not embedded", name)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// StickerNames lists the embedded stickers in sorted order.
func StickerNames() []string {
	if err := ensureStickers(); err != nil {
		return nil
	}
	names := make([]string, 0, len(stickerData))
	for name := range stickerData {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
