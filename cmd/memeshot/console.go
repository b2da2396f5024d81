package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	atotto "github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/example/memeshot/internal/editor"
)

// readConsoleClipboard is replaced in tests.
var readConsoleClipboard = atotto.ReadAll

// consoleHistory is how many output lines the console keeps.
const consoleHistory = 200

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5A4FCF")).
			Padding(0, 1)
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5A4FCF"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E53935"))
	echoStyle   = lipgloss.NewStyle().Faint(true)
)

// commandList collects repeated -e flags.
type commandList []string

func (c *commandList) String() string { return strings.Join(*c, "; ") }

func (c *commandList) Set(v string) error {
	*c = append(*c, v)
	return nil
}

type consoleCmd struct {
	*root
	fs         *flag.FlagSet
	execs      commandList
	background string
	sticker    string
	saveDir    string
	viewport   int
	logFile    string
}

func (c *consoleCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseConsoleCmd(args []string, r *root) (*consoleCmd, error) {
	fs := flag.NewFlagSet("console", flag.ExitOnError)
	cmd := &consoleCmd{root: r.subcommand("console"), fs: fs}
	fs.Usage = usageFunc(cmd)
	fs.Var(&cmd.execs, "e", "run a console command and exit (may be specified multiple times)")
	fs.StringVar(&cmd.background, "background", "", "background image to start from")
	fs.StringVar(&cmd.sticker, "sticker", r.stickerSource(), "image the sticker command adds by default")
	fs.StringVar(&cmd.saveDir, "save-dir", r.saveDir(), "directory png and pdf write to when no path is given")
	fs.IntVar(&cmd.viewport, "viewport", editor.DefaultViewport, "viewport width used to size the surface")
	fs.StringVar(&cmd.logFile, "log", "", "append log output to this file while the console is open")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *consoleCmd) newSession(ctx context.Context) *session {
	ed := c.newEditor(editor.WithViewport(c.viewport))
	ed.Mount(0, 0)
	return &session{
		ed:       ed,
		ctx:      ctx,
		sticker:  c.sticker,
		saveDir:  c.saveDir,
		onExport: func(path string) { c.notifyExport(path, ed) },
		onCopy: func() {
			if c.notifier != nil {
				c.notifier.Copy("meme")
			}
		},
	}
}

func (c *consoleCmd) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := c.newSession(ctx)
	defer s.ed.Unmount()

	if c.background != "" {
		if _, err := s.background(c.background); err != nil {
			return err
		}
	}

	if len(c.execs) > 0 {
		for _, line := range c.execs {
			out, err := s.exec(line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("%s: %w", line, err)
			}
			if out != "" {
				fmt.Fprintln(c.out(), out)
			}
		}
		return nil
	}

	// Log lines would tear the alternate screen.
	if c.logFile != "" {
		f, err := tea.LogToFile(c.logFile, "memeshot")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}
	defer log.SetOutput(os.Stderr)

	p := tea.NewProgram(newConsoleModel(s), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type consoleModel struct {
	s      *session
	input  string
	lines  []string
	width  int
	height int
}

func newConsoleModel(s *session) consoleModel {
	return consoleModel{s: s, lines: []string{"memeshot console, type help for commands"}}
}

func (m consoleModel) Init() tea.Cmd {
	return nil
}

func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input)
			m.input = ""
			if line == "" {
				return m, nil
			}
			m.push(echoStyle.Render("> " + line))
			out, err := m.s.exec(line)
			if errors.Is(err, errQuit) {
				return m, tea.Quit
			}
			if err != nil {
				m.push(errorStyle.Render("error: " + err.Error()))
			} else if out != "" {
				m.push(strings.Split(out, "\n")...)
			}
		case tea.KeyBackspace:
			if r := []rune(m.input); len(r) > 0 {
				m.input = string(r[:len(r)-1])
			}
		case tea.KeyCtrlU:
			m.input = ""
		case tea.KeyCtrlV:
			text, err := readConsoleClipboard()
			if err != nil {
				m.push(errorStyle.Render("paste: " + err.Error()))
				break
			}
			// Only the first line; the prompt runs one command at a time.
			first, _, _ := strings.Cut(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
			m.input += first
		case tea.KeySpace:
			m.input += " "
		case tea.KeyRunes:
			m.input += string(msg.Runes)
		}
	}
	return m, nil
}

func (m *consoleModel) push(lines ...string) {
	m.lines = append(m.lines, lines...)
	if over := len(m.lines) - consoleHistory; over > 0 {
		m.lines = append([]string(nil), m.lines[over:]...)
	}
}

func (m consoleModel) View() string {
	lines := m.lines
	if m.height > 2 && len(lines) > m.height-2 {
		lines = lines[len(lines)-(m.height-2):]
	}
	status := statusStyle
	if m.width > 0 {
		status = status.Width(m.width)
	}
	var sb strings.Builder
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n")
	sb.WriteString(status.Render(m.s.status()))
	sb.WriteString("\n")
	sb.WriteString(promptStyle.Render("> "))
	sb.WriteString(m.input)
	sb.WriteString("█")
	return sb.String()
}
