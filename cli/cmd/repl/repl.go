package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/opdef/lang"
	"github.com/ardnew/opdef/log"
)

const (
	defPrompt  = "➜ "
	contPrompt = "… "
)

func helpMessage() string {
	return `
: Commands (lines beginning with ':'):

  :help        Print this cruft
  :list        List definitions parsed this session
  :show NAME   Print a parsed definition's source text
  :reset       Forget definitions parsed this session
  :clear       Clear screen
  :quit        Exit REPL

Usage:
  Type a definition to parse it; its parsed form or diagnostic is printed
  Incomplete input continues on the next line (unbalanced braces, open lists)
  Use Up/Down arrows for history navigation
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	contPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// formatEcho formats the input echo line with prompt and input styled.
func formatEcho(prompt, input string) string {
	return promptStyle.Render(prompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc    func() context.Context
	input      textinput.Model
	logger     log.Logger
	history    *History
	historyIdx int
	pending    []string // accumulated lines of an incomplete definition
	defs       []lang.Node
	width      int
	quitting   bool
}

// Run starts the REPL. Definitions from preloaded, when non-nil, seed the
// session so :list and :show work immediately.
func Run(
	ctx context.Context,
	preloaded *lang.AST,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var defs []lang.Node
	if preloaded != nil {
		defs = preloaded.Definitions
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("cache_dir", cacheDir),
		slog.Int("preloaded", len(defs)),
	)

	history := NewHistory(filepath.Join(cacheDir, baseHistory))
	if err := history.Load(); err != nil {
		fmt.Printf("Warning: could not load history: %v\n", err)
	}

	m := newModel(ctx, defs, history, logger)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	defs []lang.Node,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(defPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		defs:       defs,
		width:      defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(defPrompt) - 2

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case len(m.pending) > 0:
		b.WriteString(hintStyle.Render(
			fmt.Sprintf("%d pending line(s); finish the definition or press Ctrl+C",
				len(m.pending)),
		))
		b.WriteString("\n")

	case strings.TrimSpace(m.input.Value()) == "":
		b.WriteString(hintStyle.Render(
			"Type a definition or :help for commands",
		))
		b.WriteString("\n")

	default:
		b.WriteString("\n")
	}

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" && len(m.pending) == 0 {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.pending = nil
		m.historyIdx = m.history.Len()
		m.setPrompt()

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		return m.executeInput()

	case tea.KeyUp:
		return m.historyPrev()

	case tea.KeyDown:
		return m.historyNext()
	}

	var cmd tea.Cmd

	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) executeInput() (model, tea.Cmd) {
	line := m.input.Value()
	m.input.SetValue("")

	if len(m.pending) == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
		input := strings.TrimSpace(line)
		_ = m.history.Write(input)
		m.historyIdx = m.history.Len()

		return m.executeCommand(input)
	}

	if len(m.pending) == 0 && strings.TrimSpace(line) == "" {
		return m, nil
	}

	prompt := defPrompt
	if len(m.pending) > 0 {
		prompt = contPrompt
	}

	echoCmd := tea.Println(formatEcho(prompt, line))

	m.pending = append(m.pending, line)
	text := strings.Join(m.pending, "\n")

	m.logger.TraceContext(m.ctxFunc(), "repl input",
		slog.String("line", line),
		slog.Int("pending", len(m.pending)),
	)

	ast, err := lang.ParseString(text, lang.WithLogger(m.logger))
	if err != nil {
		if incomplete(err) {
			m.setPrompt()

			return m, echoCmd
		}

		m.pending = nil
		m.setPrompt()
		_ = m.history.Write(text)
		m.historyIdx = m.history.Len()

		return m, tea.Sequence(
			echoCmd,
			tea.Println(errorStyle.Render("error: "+err.Error())),
		)
	}

	m.pending = nil
	m.setPrompt()
	_ = m.history.Write(text)
	m.historyIdx = m.history.Len()
	m.defs = append(m.defs, ast.Definitions...)

	lines := make([]string, len(ast.Definitions))
	for i, def := range ast.Definitions {
		lines[i] = fmt.Sprintf("✔ %s %s",
			lang.DefKindName(def), lang.DefName(def))
	}

	return m, tea.Sequence(
		echoCmd,
		tea.Println(resultStyle.Render(strings.Join(lines, "\n"))),
	)
}

// incomplete reports whether a parse failure looks like truncated input
// rather than a malformed definition, so the REPL keeps reading lines. That
// covers an unterminated block and any error raised at end of input.
func incomplete(err error) bool {
	var syntax *lang.SyntaxError
	if !errors.As(err, &syntax) {
		return false
	}

	return syntax.Message == "unterminated block" || syntax.Token == ""
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(strings.TrimPrefix(input, ":"))
	if len(parts) == 0 {
		return m, nil
	}

	echoCmd := tea.Println(formatEcho(defPrompt, input))

	cmd := parts[0]
	args := parts[1:]

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", cmd),
		slog.Any("args", args),
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echoCmd, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echoCmd, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echoCmd, tea.Println(m.listDefinitions()))

	case "s", "show":
		if len(args) == 0 {
			return m, tea.Sequence(echoCmd, tea.Println(
				errorStyle.Render("usage: :show NAME"),
			))
		}

		return m, tea.Sequence(echoCmd, tea.Println(m.showDefinition(args[0])))

	case "r", "reset":
		m.defs = nil

		return m, tea.Sequence(echoCmd, tea.Println(
			hintStyle.Render("definitions forgotten"),
		))

	case "c", "clear":
		return m, tea.ClearScreen

	default:
		return m, tea.Sequence(echoCmd, tea.Println(
			errorStyle.Render("Unknown command: "+cmd+" (try ':help')"),
		))
	}
}

func (m model) listDefinitions() string {
	if len(m.defs) == 0 {
		return hintStyle.Render("no definitions parsed yet")
	}

	var b strings.Builder

	for _, def := range m.defs {
		fmt.Fprintf(&b, "  %-6s %s\n",
			hintStyle.Render(lang.DefKindName(def)), lang.DefName(def))
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m model) showDefinition(name string) string {
	names := make([]string, 0, len(m.defs))

	for _, def := range m.defs {
		if lang.DefName(def) == name {
			return def.Text()
		}

		names = append(names, lang.DefName(def))
	}

	matches := fuzzy.Find(name, names)

	var b strings.Builder

	b.WriteString(errorStyle.Render("not found: " + name))

	if len(matches) > 0 {
		b.WriteString(hintStyle.Render("\ndid you mean:"))

		for i, match := range matches {
			if i >= 5 {
				break
			}

			b.WriteString(hintStyle.Render("\n  " + match.Str))
		}
	}

	return b.String()
}

func (m *model) setPrompt() {
	if len(m.pending) > 0 {
		m.input.Prompt = contPromptStyle.Render(contPrompt)
	} else {
		m.input.Prompt = promptStyle.Render(defPrompt)
	}
}

func (m model) historyPrev() (model, tea.Cmd) {
	if m.historyIdx > 0 {
		m.historyIdx--

		if entry, ok := m.history.Get(m.historyIdx); ok {
			line := strings.ReplaceAll(entry, "\n", " ")
			m.input.SetValue(line)
			m.input.SetCursor(len(line))
		}
	}

	return m, nil
}

func (m model) historyNext() (model, tea.Cmd) {
	if m.historyIdx < m.history.Len()-1 {
		m.historyIdx++

		if entry, ok := m.history.Get(m.historyIdx); ok {
			line := strings.ReplaceAll(entry, "\n", " ")
			m.input.SetValue(line)
			m.input.SetCursor(len(line))
		}
	} else {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
	}

	return m, nil
}
