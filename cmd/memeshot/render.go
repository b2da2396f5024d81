package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/example/memeshot/internal/editor"
	"github.com/example/memeshot/internal/export"
)

type renderCmd struct {
	*root
	fs *flag.FlagSet

	script     string
	output     string
	viewport   int
	background string
	bgColor    string
	text       string
	textColor  string
	font       string
	sticker    string
	flip       string
	filter     string
	shadow     bool
}

func (c *renderCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseRenderCmd(args []string, r *root) (*renderCmd, error) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	cmd := &renderCmd{root: r.subcommand("render"), fs: fs}
	fs.Usage = usageFunc(cmd)
	fs.StringVar(&cmd.script, "script", "", "YAML script describing the meme")
	fs.StringVar(&cmd.output, "output", "", "output file; .pdf selects PDF, anything else PNG (default "+export.PNGName+" in the save directory)")
	fs.IntVar(&cmd.viewport, "viewport", editor.DefaultViewport, "viewport width used to size the surface")
	fs.StringVar(&cmd.background, "background", "", "background image (.jpg, .jpeg or .png file, or URL)")
	fs.StringVar(&cmd.bgColor, "bg-color", "", "background colour as #rrggbb")
	fs.StringVar(&cmd.text, "text", "", "caption to add")
	fs.StringVar(&cmd.textColor, "text-color", "", "caption colour as #rrggbb")
	fs.StringVar(&cmd.font, "font", "", "caption font family (see fonts)")
	fs.StringVar(&cmd.sticker, "sticker", "", "sticker image to add, \"default\" for the configured sticker")
	fs.StringVar(&cmd.flip, "flip", "", "flip the sticker: horizontal, vertical or both")
	fs.StringVar(&cmd.filter, "filter", "", "sticker filter (see filters)")
	fs.BoolVar(&cmd.shadow, "shadow", false, "give the sticker a drop shadow")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: cmd}
	}
	if cmd.script != "" && cmd.usesStepFlags() {
		return nil, fmt.Errorf("-script cannot be combined with -text, -sticker or other step flags")
	}
	if err := checkBackgroundFile(cmd.background); err != nil {
		return nil, err
	}
	return cmd, nil
}

func (c *renderCmd) usesStepFlags() bool {
	return c.background != "" || c.bgColor != "" || c.text != "" || c.textColor != "" ||
		c.font != "" || c.sticker != "" || c.flip != "" || c.filter != "" || c.shadow
}

// buildScript turns the step flags into the script they stand for.
func (c *renderCmd) buildScript() (*renderScript, error) {
	sc := &renderScript{
		Viewport:        c.viewport,
		Background:      c.background,
		BackgroundColor: c.bgColor,
	}
	if c.text != "" || c.textColor != "" || c.font != "" {
		text := c.text
		if text == "" {
			text = editor.DefaultText
		}
		sc.Steps = append(sc.Steps, renderStep{Text: &text, Color: c.textColor, Font: c.font})
	}
	if c.sticker != "" || c.flip != "" || c.filter != "" || c.shadow {
		src := c.sticker
		if src == "" || src == "default" {
			src = c.stickerSource()
		}
		step := renderStep{Sticker: src, Filter: c.filter, Shadow: c.shadow}
		switch strings.ToLower(c.flip) {
		case "":
		case "both":
			step.Flip = stringList{"horizontal", "vertical"}
		default:
			step.Flip = stringList{c.flip}
		}
		sc.Steps = append(sc.Steps, step)
	}
	return sc, nil
}

func (c *renderCmd) Run() error {
	var (
		sc  *renderScript
		err error
	)
	if c.script != "" {
		sc, err = loadScript(c.script)
	} else {
		sc, err = c.buildScript()
	}
	if err != nil {
		return err
	}
	if sc.Viewport == 0 {
		sc.Viewport = c.viewport
	}

	ed := c.newEditor(editor.WithViewport(sc.Viewport))
	defer ed.Unmount()
	if err := sc.apply(context.Background(), ed); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	var path string
	if c.output != "" {
		path, err = ed.ExportPath(c.output)
	} else {
		path, err = ed.ExportFile(c.saveDir(), export.FormatPNG)
	}
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	fmt.Fprintf(c.out(), "wrote %s\n", path)
	c.notifyExport(path, ed)
	return nil
}
