package main

import (
	"flag"

	"github.com/example/memeshot/internal/appstate"
	"github.com/example/memeshot/internal/editor"
)

// runWindow is replaced in tests.
var runWindow = func(a *appstate.AppState) { a.Run() }

type editCmd struct {
	*root
	fs         *flag.FlagSet
	background string
	sticker    string
	saveDir    string
	viewport   int
	shadow     bool
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	cmd := &editCmd{root: r.subcommand("edit"), fs: fs}
	fs.Usage = usageFunc(cmd)
	fs.StringVar(&cmd.background, "background", "", "background image (.jpg, .jpeg or .png file, or URL) to open with")
	fs.StringVar(&cmd.sticker, "sticker", r.stickerSource(), "image the sticker tool adds")
	fs.StringVar(&cmd.saveDir, "save-dir", r.saveDir(), "directory exports are written to")
	fs.IntVar(&cmd.viewport, "viewport", editor.DefaultViewport, "viewport width the layout starts from")
	fs.BoolVar(&cmd.shadow, "shadow", false, "give new stickers a drop shadow")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() == 1 && cmd.background == "" {
		cmd.background = fs.Arg(0)
	} else if fs.NArg() > 0 {
		return nil, &UsageError{of: cmd}
	}
	if err := checkBackgroundFile(cmd.background); err != nil {
		return nil, err
	}
	return cmd, nil
}

func (e *editCmd) Run() error {
	ed := e.newEditor(editor.WithViewport(e.viewport), editor.WithStickerShadow(e.shadow))
	st := appstate.New(
		appstate.WithEditor(ed),
		appstate.WithBackground(e.background),
		appstate.WithStickerSource(e.sticker),
		appstate.WithSaveDir(e.saveDir),
		appstate.WithTheme(e.activeTheme),
		appstate.WithNotifier(e.notifier),
	)
	runWindow(st)
	return nil
}
