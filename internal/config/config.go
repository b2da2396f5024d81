package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/example/memeshot/internal/export"
	"github.com/example/memeshot/internal/loader"
	"github.com/example/memeshot/internal/theme"
)

// StickerPath is appended to AppURL to locate the sticker asset.
const StickerPath = "/chillguy.png"

// DefaultSticker is used when neither Sticker nor AppURL is configured.
const DefaultSticker = loader.BuiltinScheme + "chillguy"

// Notify holds notification settings.
type Notify struct {
	Export bool
	Copy   bool
}

// Config holds the application configuration.
type Config struct {
	Theme   string
	SaveDir string
	AppURL  string
	Sticker string

	PNGMultiplier float64
	PDFMultiplier float64
	PDFQuality    int
	StickerFit    float64

	Notify Notify
	Themes map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme:  "", // empty lets the environment or built-in default decide
		Themes: make(map[string]*theme.Theme),
	}
}

// StickerSource resolves where the sticker button loads its image from.
// An explicit sticker wins, then AppURL plus StickerPath, then the embedded
// asset.
func (c *Config) StickerSource() string {
	if s := strings.TrimSpace(c.Sticker); s != "" {
		return s
	}
	if base := strings.TrimRight(strings.TrimSpace(c.AppURL), "/"); base != "" {
		return base + StickerPath
	}
	return DefaultSticker
}

// ExportOptions converts the export keys into encoder settings. Zero values
// fall back to the encoder defaults.
func (c *Config) ExportOptions() export.Options {
	return export.Options{
		PNGMultiplier: c.PNGMultiplier,
		PDFMultiplier: c.PDFMultiplier,
		JPEGQuality:   c.PDFQuality,
	}
}

// ApplyEnv overlays MEMESHOT_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv("MEMESHOT_APP_URL")); v != "" {
		c.AppURL = v
	}
	if v := strings.TrimSpace(getenv("MEMESHOT_THEME")); v != "" {
		c.Theme = v
	}
	if v := strings.TrimSpace(getenv("MEMESHOT_SAVE_DIR")); v != "" {
		c.SaveDir = v
	}
	if v, err := strconv.ParseBool(strings.TrimSpace(getenv("MEMESHOT_NOTIFY_EXPORT"))); err == nil {
		c.Notify.Export = v
	}
	if v, err := strconv.ParseBool(strings.TrimSpace(getenv("MEMESHOT_NOTIFY_COPY"))); err == nil {
		c.Notify.Copy = v
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	root := []struct {
		key, value string
	}{
		{"theme", c.Theme},
		{"save_dir", c.SaveDir},
		{"app_url", c.AppURL},
		{"sticker", c.Sticker},
		{"png_multiplier", formatFloat(c.PNGMultiplier)},
		{"pdf_multiplier", formatFloat(c.PDFMultiplier)},
		{"pdf_quality", formatInt(c.PDFQuality)},
		{"sticker_fit", formatFloat(c.StickerFit)},
	}
	for _, kv := range root {
		if kv.value != "" {
			fmt.Fprintf(&sb, "%s = %s\n", kv.key, kv.value)
		}
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		_ = theme.Write(&sb, c.Themes[name])
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatFloat(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatInt(i int) string {
	if i == 0 {
		return ""
	}
	return strconv.Itoa(i)
}
