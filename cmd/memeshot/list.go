package main

import (
	"flag"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/example/memeshot/internal/filter"
	"github.com/example/memeshot/internal/scene"
)

// listCmd prints one of the fixed catalogues the editor offers.
type listCmd struct {
	*root
	fs    *flag.FlagSet
	name  string
	names bool
	items func() []listItem
}

type listItem struct {
	Name  string
	Label string
}

func (l *listCmd) FlagSet() *flag.FlagSet {
	return l.fs
}

func parseListCmd(name string, args []string, r *root, items func() []listItem) (*listCmd, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	cmd := &listCmd{root: r.subcommand(name), fs: fs, name: name, items: items}
	fs.Usage = usageFunc(cmd)
	fs.BoolVar(&cmd.names, "names", false, "print only the names accepted by other commands")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func parseFiltersCmd(args []string, r *root) (*listCmd, error) {
	return parseListCmd("filters", args, r, filterItems)
}

func parseFontsCmd(args []string, r *root) (*listCmd, error) {
	return parseListCmd("fonts", args, r, fontItems)
}

// filterItems lists filters in the order the filter button cycles them.
func filterItems() []listItem {
	var out []listItem
	for _, n := range filter.Names() {
		out = append(out, listItem{Name: n, Label: filter.DisplayName(n)})
	}
	return out
}

func fontItems() []listItem {
	title := cases.Title(language.English)
	var out []listItem
	for _, n := range scene.FontFamilies() {
		label := title.String(strings.ReplaceAll(n, "-", " "))
		if n == scene.DefaultFontFamily {
			label += " (default)"
		}
		out = append(out, listItem{Name: n, Label: label})
	}
	return out
}

func (l *listCmd) Run() error {
	items := l.items()
	width := 0
	for _, it := range items {
		width = max(width, len(it.Name))
	}
	for _, it := range items {
		if l.names {
			fmt.Fprintln(l.out(), it.Name)
			continue
		}
		fmt.Fprintf(l.out(), "%-*s  %s\n", width, it.Name, it.Label)
	}
	return nil
}
