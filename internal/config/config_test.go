package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/memeshot/internal/export"
)

func TestParse(t *testing.T) {
	input := `
theme = my_custom_theme
save_dir = /tmp/memes
app_url = https://memes.example.com/
png_multiplier = 4
pdf_quality = 80
sticker_fit = 0.7

[notify]
export = true
copy = false

[theme.my_custom_theme]
Background = #111111
Selection: #FF00FF
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Theme != "my_custom_theme" {
		t.Errorf("Expected theme 'my_custom_theme', got '%s'", cfg.Theme)
	}
	if cfg.SaveDir != "/tmp/memes" {
		t.Errorf("Expected save_dir '/tmp/memes', got '%s'", cfg.SaveDir)
	}
	if cfg.PNGMultiplier != 4 || cfg.PDFQuality != 80 || cfg.StickerFit != 0.7 {
		t.Errorf("unexpected export keys %+v", cfg)
	}
	if !cfg.Notify.Export || cfg.Notify.Copy {
		t.Errorf("unexpected notify %+v", cfg.Notify)
	}

	th, ok := cfg.Themes["my_custom_theme"]
	if !ok {
		t.Fatal("Expected theme 'my_custom_theme' to be loaded")
	}
	if th.Background.R != 0x11 || th.Selection.G != 0 || th.Selection.B != 0xFF {
		t.Errorf("Unexpected theme colours: %+v", th)
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	for _, input := range []string{
		"png_multiplier = lots\n",
		"sticker_fit = -1\n",
		"pdf_quality = 101\n",
		"[notify]\nexport = maybe\n",
		"[theme.x]\nBackground = blue\n",
	} {
		if _, err := Parse(strings.NewReader(input)); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestCircular(t *testing.T) {
	input := `theme = dark
save_dir = /home/user/memes
sticker = builtin:sunglasses
pdf_multiplier = 2.5

[notify]
export = true
copy = true

[theme.custom]
Name = custom
Background = #000000
Foreground = #FFFFFF
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	cfg2, err := Parse(strings.NewReader(cfg.String()))
	if err != nil {
		t.Fatalf("Circular parse failed: %v", err)
	}

	if cfg.Theme != cfg2.Theme || cfg.SaveDir != cfg2.SaveDir || cfg.Sticker != cfg2.Sticker {
		t.Errorf("root mismatch: %+v vs %+v", cfg, cfg2)
	}
	if cfg.PDFMultiplier != cfg2.PDFMultiplier {
		t.Errorf("PDFMultiplier mismatch: %v vs %v", cfg.PDFMultiplier, cfg2.PDFMultiplier)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}

	t1 := cfg.Themes["custom"]
	t2 := cfg2.Themes["custom"]
	if t1 == nil || t2 == nil {
		t.Fatalf("Custom theme missing in one config")
	}
	if *t1 != *t2 {
		t.Errorf("Theme mismatch: %+v vs %+v", t1, t2)
	}
}

func TestStickerSource(t *testing.T) {
	cfg := New()
	if got := cfg.StickerSource(); got != "builtin:chillguy" {
		t.Fatalf("default sticker = %q", got)
	}
	cfg.AppURL = "http://localhost:3000/"
	if got := cfg.StickerSource(); got != "http://localhost:3000/chillguy.png" {
		t.Fatalf("app url sticker = %q", got)
	}
	cfg.Sticker = "/tmp/me.png"
	if got := cfg.StickerSource(); got != "/tmp/me.png" {
		t.Fatalf("explicit sticker = %q", got)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"MEMESHOT_APP_URL":       "https://cdn.example.com",
		"MEMESHOT_THEME":         "dark",
		"MEMESHOT_NOTIFY_EXPORT": "true",
		"MEMESHOT_NOTIFY_COPY":   "nonsense",
	}
	cfg := New()
	cfg.Notify.Copy = true
	cfg.ApplyEnv(func(k string) string { return env[k] })
	if cfg.AppURL != "https://cdn.example.com" || cfg.Theme != "dark" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if !cfg.Notify.Export || !cfg.Notify.Copy {
		t.Fatalf("unexpected notify %+v", cfg.Notify)
	}
}

func TestExportOptions(t *testing.T) {
	cfg := New()
	cfg.PNGMultiplier = 5
	got := cfg.ExportOptions()
	if got.PNGMultiplier != 5 || got.PDFMultiplier != 0 {
		t.Fatalf("unexpected options %+v", got)
	}
	var _ export.Options = got
}

func TestLoaderSearchOrder(t *testing.T) {
	home := t.TempDir()
	work := t.TempDir()
	l := &Loader{Version: "dev", HomeDir: home, WorkDir: work}

	if l.GetConfigPath() != "" {
		t.Fatal("expected no config")
	}
	cfg, err := l.Load()
	if err != nil || cfg.Theme != "" {
		t.Fatalf("Load without file = %+v, %v", cfg, err)
	}

	cfg.Theme = "impact"
	path, err := l.Save(cfg)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path != filepath.Join(home, ".config", "memeshot", "config.rc") {
		t.Fatalf("saved to %s", path)
	}

	local := filepath.Join(work, ".memeshotrc")
	if err := os.WriteFile(local, []byte("theme = light\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if l.GetConfigPath() != local {
		t.Fatalf("dev build should prefer %s", local)
	}
	l.Version = "1.0.0"
	loaded, err := l.Load()
	if err != nil || loaded.Theme != "impact" {
		t.Fatalf("release build Load = %+v, %v", loaded, err)
	}
}
