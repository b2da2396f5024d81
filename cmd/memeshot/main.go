package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/memeshot/internal/config"
	"github.com/example/memeshot/internal/editor"
	"github.com/example/memeshot/internal/notify"
	"github.com/example/memeshot/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs           *flag.FlagSet
	program      string
	notifier     *notify.Notifier
	config       *config.Config
	exportAlerts bool
	copyAlerts   bool
	themeName    string
	activeTheme  *theme.Theme
	stdout       io.Writer
	stderr       io.Writer
}

func (r *root) Program() string {
	return r.program
}

func (r *root) subcommand(name string) *root {
	program := strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	return &root{
		program:      program,
		notifier:     r.notifier,
		config:       r.config,
		exportAlerts: r.exportAlerts,
		copyAlerts:   r.copyAlerts,
		themeName:    r.themeName,
		activeTheme:  r.activeTheme,
		stdout:       r.stdout,
		stderr:       r.stderr,
	}
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	prefs := notify.LoadPreferences(os.Getenv)
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}
	cfg.ApplyEnv(os.Getenv)

	r := &root{
		fs:       flag.NewFlagSet("memeshot", flag.ExitOnError),
		program:  "memeshot",
		notifier: notify.New(prefs),
		config:   cfg,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	r.fs.BoolVar(&r.exportAlerts, "notify-export", cfg.Notify.Export, "show a desktop notification after exporting a meme")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")

	// Precedence: CLI > Env > Config > Default. ApplyEnv already folded the
	// environment into cfg.Theme.
	r.fs.StringVar(&r.themeName, "theme", "", "color theme for the editor window ("+strings.Join(theme.Names(), ", ")+")")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventExport, r.exportAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}
	r.activeTheme = r.resolveTheme()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "edit":
		cmd, err = parseEditCmd(subArgs, r)
	case "render":
		cmd, err = parseRenderCmd(subArgs, r)
	case "console":
		cmd, err = parseConsoleCmd(subArgs, r)
	case "filters":
		cmd, err = parseFiltersCmd(subArgs, r)
	case "fonts":
		cmd, err = parseFontsCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

// resolveTheme picks the window theme from the -theme flag or the config,
// preferring themes defined inline in the config file.
func (r *root) resolveTheme() *theme.Theme {
	name := r.themeName
	if name == "" && r.config != nil {
		name = r.config.Theme
	}
	if r.config != nil {
		if t, ok := r.config.Themes[name]; ok {
			return t
		}
	}
	t, err := theme.NewLoader().Load(name)
	if err != nil {
		if name != "" && !strings.EqualFold(name, "default") {
			fmt.Fprintf(r.errOut(), "warning: failed to load theme '%s': %v. using default.\n", name, err)
		}
		return theme.Default()
	}
	return t
}

// newEditor builds an editor configured from the loaded config.
func (r *root) newEditor(opts ...editor.Option) *editor.Editor {
	cfg := r.config
	if cfg == nil {
		cfg = config.New()
	}
	base := []editor.Option{
		editor.WithExportOptions(cfg.ExportOptions()),
		editor.WithStickerFit(cfg.StickerFit),
	}
	return editor.New(append(base, opts...)...)
}

func (r *root) stickerSource() string {
	if r.config == nil {
		return config.DefaultSticker
	}
	return r.config.StickerSource()
}

func (r *root) saveDir() string {
	if r.config != nil && r.config.SaveDir != "" {
		return r.config.SaveDir
	}
	return "."
}

func (r *root) out() io.Writer {
	if r.stdout == nil {
		return os.Stdout
	}
	return r.stdout
}

func (r *root) errOut() io.Writer {
	if r.stderr == nil {
		return os.Stderr
	}
	return r.stderr
}

func (r *root) notifyExport(path string, ed *editor.Editor) {
	if r == nil || r.notifier == nil {
		return
	}
	if img := ed.Render(1); img != nil {
		r.notifier.Export(path, img)
		return
	}
	r.notifier.Export(path, nil)
}

// checkBackgroundFile accepts URLs and embedded names as they are, but
// limits local files to the JPEG and PNG images the editor is built around.
func checkBackgroundFile(src string) error {
	if src == "" || strings.Contains(src, ":") && !filepath.IsAbs(src) && filepath.VolumeName(src) == "" {
		return nil
	}
	switch strings.ToLower(filepath.Ext(src)) {
	case ".jpg", ".jpeg", ".png":
		return nil
	}
	return fmt.Errorf("background %s: only .jpg, .jpeg and .png files are accepted", src)
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
