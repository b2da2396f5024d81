package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/example/memeshot/internal/editor"
)

// renderScript describes a meme to build without a window.
type renderScript struct {
	Viewport        int          `yaml:"viewport"`
	Background      string       `yaml:"background"`
	BackgroundColor string       `yaml:"background_color"`
	Steps           []renderStep `yaml:"steps"`
}

// renderStep adds at most one object and then adjusts the selection.
type renderStep struct {
	Text    *string    `yaml:"text"`
	Sticker string     `yaml:"sticker"`
	Color   string     `yaml:"color"`
	Font    string     `yaml:"font"`
	Move    []float64  `yaml:"move"`
	Rotate  float64    `yaml:"rotate"`
	Scale   float64    `yaml:"scale"`
	Flip    stringList `yaml:"flip"`
	Filter  string     `yaml:"filter"`
	Shadow  bool       `yaml:"shadow"`
}

// stringList accepts either a scalar or a sequence.
type stringList []string

func (s *stringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*s = stringList{node.Value}
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*s = list
	return nil
}

func loadScript(path string) (*renderScript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sc, err := parseScript(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

func parseScript(r io.Reader) (*renderScript, error) {
	var sc renderScript
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil && err != io.EOF {
		return nil, err
	}
	return &sc, nil
}

// apply mounts a fresh surface on ed and runs the script against it.
func (sc *renderScript) apply(ctx context.Context, ed *editor.Editor) error {
	if sc.Viewport > 0 {
		ed.Resize(sc.Viewport)
	}
	ed.Mount(0, 0)
	if sc.BackgroundColor != "" {
		if err := ed.SetBackgroundColor(sc.BackgroundColor); err != nil {
			return err
		}
	}
	if sc.Background != "" {
		if err := ed.LoadBackgroundSync(ctx, sc.Background); err != nil {
			return fmt.Errorf("background: %w", err)
		}
	}
	for i, st := range sc.Steps {
		if err := st.apply(ctx, ed); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (st renderStep) apply(ctx context.Context, ed *editor.Editor) error {
	switch {
	case st.Text != nil && st.Sticker != "":
		return fmt.Errorf("text and sticker in one step")
	case st.Text != nil:
		if _, err := ed.AddText(); err != nil {
			return err
		}
		if err := ed.SetText(*st.Text); err != nil {
			return err
		}
	case st.Sticker != "":
		if _, err := ed.AddSticker(ctx, st.Sticker); err != nil {
			return err
		}
	}
	if st.Color != "" {
		if err := ed.SetTextColor(st.Color); err != nil {
			return err
		}
	}
	if st.Font != "" {
		if err := ed.SetFontFamily(st.Font); err != nil {
			return err
		}
	}
	for _, f := range st.Flip {
		axis, err := editor.ParseAxis(f)
		if err != nil {
			return err
		}
		if err := ed.Flip(axis); err != nil {
			return err
		}
	}
	if st.Filter != "" {
		if err := ed.SetFilter(st.Filter); err != nil {
			return err
		}
	}
	if st.Shadow {
		if err := ed.SetShadow(true); err != nil {
			return err
		}
	}
	if st.Scale != 0 {
		if err := ed.ScaleBy(st.Scale); err != nil {
			return err
		}
	}
	if st.Rotate != 0 {
		if err := ed.Rotate(st.Rotate); err != nil {
			return err
		}
	}
	switch len(st.Move) {
	case 0:
	case 2:
		if err := ed.Move(st.Move[0], st.Move[1]); err != nil {
			return err
		}
	default:
		return fmt.Errorf("move wants [dx, dy], got %v", st.Move)
	}
	return nil
}
