package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/example/memeshot/internal/clipboard"
	"github.com/example/memeshot/internal/editor"
	"github.com/example/memeshot/internal/export"
	"github.com/example/memeshot/internal/filter"
	"github.com/example/memeshot/internal/scene"
	"github.com/example/memeshot/internal/selection"
)

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteImage

// session runs console commands against a headless editor.
type session struct {
	ed       *editor.Editor
	ctx      context.Context
	sticker  string
	saveDir  string
	onExport func(path string)
	onCopy   func()
}

type sessionCommand struct {
	usage string
	run   func(s *session, args string) (string, error)
}

var sessionCommands map[string]sessionCommand

func init() {
	sessionCommands = map[string]sessionCommand{
		"help":       {"help", (*session).help},
		"text":       {"text [caption]", (*session).text},
		"sticker":    {"sticker [path|url]", (*session).addSticker},
		"background": {"background <path|url|none>", (*session).background},
		"bgcolor":    {"bgcolor <#rrggbb>", (*session).bgColor},
		"color":      {"color <#rrggbb>", (*session).color},
		"font":       {"font <family>", (*session).font},
		"flip":       {"flip [horizontal|vertical]", (*session).flip},
		"filter":     {"filter [name]", (*session).filter},
		"shadow":     {"shadow [on|off]", (*session).shadow},
		"select":     {"select <id>", (*session).selectObject},
		"deselect":   {"deselect", (*session).deselect},
		"delete":     {"delete", (*session).deleteObject},
		"move":       {"move <dx> <dy>", (*session).move},
		"rotate":     {"rotate <degrees>", (*session).rotate},
		"scale":      {"scale <factor>", (*session).scale},
		"resize":     {"resize <viewport width>", (*session).resize},
		"png":        {"png [path]", (*session).png},
		"pdf":        {"pdf [path]", (*session).pdf},
		"copy":       {"copy", (*session).copyImage},
		"list":       {"list", (*session).list},
	}
}

// errQuit is returned by exec for quit and exit.
var errQuit = errors.New("quit")

// exec runs one command line and returns the text to show for it.
func (s *session) exec(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}
	name, args, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	if name == "quit" || name == "exit" {
		return "", errQuit
	}
	cmd, ok := sessionCommands[name]
	if !ok {
		return "", fmt.Errorf("unknown command %q, try help", name)
	}
	out, err := cmd.run(s, strings.TrimSpace(args))
	return out, describe(err)
}

// describe turns editor sentinels into console wording.
func describe(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, editor.ErrNoSelection):
		return errors.New("nothing selected")
	case errors.Is(err, editor.ErrWrongKind):
		return errors.New("not supported for the selected object")
	case errors.Is(err, editor.ErrNoSurface):
		return errors.New("no surface")
	}
	return err
}

func (s *session) help(string) (string, error) {
	names := make([]string, 0, len(sessionCommands))
	for n := range sessionCommands {
		names = append(names, n)
	}
	sort.Strings(names)
	var sb strings.Builder
	for _, n := range names {
		fmt.Fprintf(&sb, "  %s\n", sessionCommands[n].usage)
	}
	sb.WriteString("  quit")
	return sb.String(), nil
}

func (s *session) text(args string) (string, error) {
	o, err := s.ed.AddText()
	if err != nil {
		return "", err
	}
	if args != "" {
		if err := s.ed.SetText(args); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("added text #%d", o.ID), nil
}

func (s *session) addSticker(args string) (string, error) {
	src := args
	if src == "" {
		src = s.sticker
	}
	o, err := s.ed.AddSticker(s.ctx, src)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("added sticker #%d", o.ID), nil
}

func (s *session) background(args string) (string, error) {
	switch {
	case args == "":
		return "", errors.New("background wants a path, URL or none")
	case strings.EqualFold(args, "none"):
		if err := s.ed.SetBackgroundImage(nil); err != nil {
			return "", err
		}
		return "background image removed", nil
	}
	if err := checkBackgroundFile(args); err != nil {
		return "", err
	}
	if err := s.ed.LoadBackgroundSync(s.ctx, args); err != nil {
		return "", err
	}
	return s.sizeLine(), nil
}

func (s *session) bgColor(args string) (string, error) {
	return "", s.ed.SetBackgroundColor(args)
}

func (s *session) color(args string) (string, error) {
	return "", s.ed.SetTextColor(args)
}

func (s *session) font(args string) (string, error) {
	return "", s.ed.SetFontFamily(args)
}

func (s *session) flip(args string) (string, error) {
	axis := editor.Horizontal
	if args != "" {
		var err error
		if axis, err = editor.ParseAxis(args); err != nil {
			return "", err
		}
	}
	return "", s.ed.Flip(axis)
}

func (s *session) filter(args string) (string, error) {
	if args == "" {
		name, err := s.ed.CycleFilter()
		if err != nil {
			return "", err
		}
		return "filter: " + filter.DisplayName(name), nil
	}
	return "", s.ed.SetFilter(args)
}

func (s *session) shadow(args string) (string, error) {
	on := true
	if args != "" {
		v, err := parseSwitch(args)
		if err != nil {
			return "", err
		}
		on = v
	}
	return "", s.ed.SetShadow(on)
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	return strconv.ParseBool(s)
}

func (s *session) selectObject(args string) (string, error) {
	id, err := strconv.Atoi(args)
	if err != nil {
		return "", fmt.Errorf("select wants an object id: %w", err)
	}
	return "", s.ed.Select(id)
}

func (s *session) deselect(string) (string, error) {
	s.ed.Deselect()
	return "", nil
}

func (s *session) deleteObject(string) (string, error) {
	return "", s.ed.DeleteSelected()
}

func parseFloats(args string, n int) ([]float64, error) {
	fields := strings.Fields(args)
	if len(fields) != n {
		return nil, fmt.Errorf("want %d numbers, got %q", n, args)
	}
	out := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *session) move(args string) (string, error) {
	v, err := parseFloats(args, 2)
	if err != nil {
		return "", err
	}
	return "", s.ed.Move(v[0], v[1])
}

func (s *session) rotate(args string) (string, error) {
	v, err := parseFloats(args, 1)
	if err != nil {
		return "", err
	}
	return "", s.ed.Rotate(v[0])
}

func (s *session) scale(args string) (string, error) {
	v, err := parseFloats(args, 1)
	if err != nil {
		return "", err
	}
	return "", s.ed.ScaleBy(v[0])
}

func (s *session) resize(args string) (string, error) {
	w, err := strconv.Atoi(args)
	if err != nil || w <= 0 {
		return "", fmt.Errorf("resize wants a positive viewport width, got %q", args)
	}
	s.ed.Resize(w)
	return s.sizeLine(), nil
}

func (s *session) sizeLine() string {
	if surf := s.ed.Surface(); surf != nil {
		return fmt.Sprintf("surface %dx%d", surf.Width(), surf.Height())
	}
	return "no surface"
}

func (s *session) png(args string) (string, error) {
	return s.export(args, export.FormatPNG)
}

func (s *session) pdf(args string) (string, error) {
	return s.export(args, export.FormatPDF)
}

func (s *session) export(path string, f export.Format) (string, error) {
	var err error
	if path == "" {
		path, err = s.ed.ExportFile(s.saveDir, f)
	} else {
		if export.FormatFor(path) != f {
			path += "." + string(f)
		}
		path, err = s.ed.ExportPath(path)
	}
	if err != nil {
		return "", err
	}
	if s.onExport != nil {
		s.onExport(path)
	}
	return "wrote " + filepath.Clean(path), nil
}

func (s *session) copyImage(string) (string, error) {
	img := s.ed.Render(1)
	if img == nil {
		return "", editor.ErrNoSurface
	}
	if err := copyToClipboard(img); err != nil {
		return "", fmt.Errorf("copy: %w", err)
	}
	if s.onCopy != nil {
		s.onCopy()
	}
	return "copied to clipboard", nil
}

func (s *session) list(string) (string, error) {
	objs := s.ed.Objects()
	if len(objs) == 0 {
		return "no objects", nil
	}
	active := s.ed.State().ActiveID
	var sb strings.Builder
	for i, o := range objs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		mark := " "
		if o.ID == active && s.ed.State().Mode != selection.NoSelection {
			mark = "*"
		}
		fmt.Fprintf(&sb, "%s #%d %s at %.0f,%.0f", mark, o.ID, o.Kind, o.Left, o.Top)
		switch o.Kind {
		case scene.KindText:
			fmt.Fprintf(&sb, " %q %s %s", o.Text, o.FontFamily, scene.Hex(o.Fill))
		case scene.KindImage:
			if o.Filter != "" {
				fmt.Fprintf(&sb, " %s", o.Filter)
			}
			if o.FlipX {
				sb.WriteString(" flipped")
			}
			if o.FlipY {
				sb.WriteString(" upside-down")
			}
		}
	}
	return sb.String(), nil
}

// status summarises the surface and selection for the status bar.
func (s *session) status() string {
	surf := s.ed.Surface()
	if surf == nil {
		return "no surface"
	}
	parts := []string{fmt.Sprintf("%dx%d", surf.Width(), surf.Height())}
	st := s.ed.State()
	switch st.Mode {
	case selection.TextSelected:
		parts = append(parts, fmt.Sprintf("text #%d", st.ActiveID), st.FontFamily, st.Fill)
	case selection.ImageSelected:
		parts = append(parts, fmt.Sprintf("image #%d", st.ActiveID), filter.DisplayName(st.Filter))
	default:
		parts = append(parts, "nothing selected")
	}
	parts = append(parts, fmt.Sprintf("%d objects", len(s.ed.Objects())))
	return strings.Join(parts, "  ")
}
