package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/prex/engine"
	"github.com/ardnew/prex/lang"
	"github.com/ardnew/prex/log"
)

// inputMode selects how a submitted line is interpreted.
type inputMode int

const (
	modeTemplate inputMode = iota // render as a NORMAL document
	modeExpr                      // evaluate one expression
	modeCommand                   // ":" session command
)

var prompts = map[inputMode]string{
	modeTemplate: "» ",
	modeExpr:     "= ",
}

const helpMessage = `
Commands:

  :help          Print this help
  :vars          List variables and globals
  :deps          List documents included so far
  :mode [name]   Switch input mode (template, expr); toggles without a name
  :edit          Edit and render a multi-line template in $EDITOR
  :clear         Clear screen
  :quit          Exit

Template mode renders each line as a document: <$ x $>, <@ x = 1 @>.
Expression mode prints the value of each line.
All input shares one environment, so bindings persist between lines.

Keys:
  Esc            Toggle mode (or cancel completion)
  Tab/Shift-Tab  Cycle completion candidates
  Up/Down        History
  Ctrl+C, Ctrl+D Exit on an empty line`

// commandNames lists the session commands, sorted.
var commandNames = []string{"clear", "deps", "edit", "help", "mode", "quit", "vars"}

var (
	promptStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	exprPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// editDoneMsg reports the result of an :edit session.
type editDoneMsg struct {
	cmd *editCommand
	err error
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctx        context.Context
	engine     *engine.Engine
	logger     log.Logger
	input      textinput.Model
	history    *History
	historyIdx int
	matches    fuzzy.Matches
	wordStart  int
	wordEnd    int
	suggIdx    int
	tabActive  bool
	preTabText string
	preTabPos  int
	lastEdit   string // template from the previous :edit
	width      int
	mode       inputMode
	quitting   bool
}

// Run starts an interactive session rendering input with eng. History is
// kept in cacheDir when it is not empty.
func Run(
	ctx context.Context,
	eng *engine.Engine,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if eng == nil {
		return ErrNoEngine
	}

	var historyPath string
	if cacheDir != "" {
		historyPath = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", historyPath),
			slog.Any("error", err))
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("history", historyPath),
		slog.Int("entries", history.Len()))

	_, err = tea.NewProgram(
		newModel(ctx, eng, history, logger),
		tea.WithContext(ctx),
	).Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	eng *engine.Engine,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompts[modeTemplate])
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctx:        ctx,
		engine:     eng,
		logger:     logger,
		input:      ti,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeTemplate,
	}
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(m.input.Prompt) - 1

		return m, nil

	case editDoneMsg:
		m.lastEdit = msg.cmd.edited

		return m, m.printResult(msg.cmd.output, msg.err)
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
	b.WriteString(m.hintLine())
	b.WriteString("\n")

	return b.String()
}

// hintLine is the line below the prompt: history position, a signature, the
// completion bar, or usage.
func (m model) hintLine() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeExpr {
			return hintStyle.Render("Type an expression, :help for commands")
		}

		return hintStyle.Render("Type a template line, :help for commands")
	}

	if len(m.matches) > 0 {
		return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)
	}

	if call := detectFunctionCall(input, m.input.Position()); call.inCall {
		if params, ok := signature(call.name); ok {
			return renderSignatureHint(call.name, params, call.argIndex)
		}
	}

	return ""
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		m.refreshMatches(false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive && len(m.matches) > 0 {
			m.tabActive = false
			m.refreshMatches(true)

			return m, nil
		}

		return m.execute()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.recall(m.historyIdx - 1), nil

	case tea.KeyDown:
		return m.recall(m.historyIdx + 1), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabPos)
			m.refreshMatches(false)

			return m, nil
		}

		return m.switchMode(1 - m.mode), nil
	}

	// Space ends tab-cycling and keeps the chosen candidate.
	typing := msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace
	if !typing || msg.String() == " " {
		m.tabActive = false
	}

	var cmd tea.Cmd

	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refreshMatches(typing)

	return m, cmd
}

// cycle moves the tab selection by step. A sole candidate is accepted
// immediately.
func (m model) cycle(step int) model {
	switch n := len(m.matches); {
	case n == 0:
		return m

	case n == 1:
		m.replaceWord(m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m

	case !m.tabActive:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabPos = m.input.Position()
		m.suggIdx = 0

		if step < 0 {
			m.suggIdx = n - 1
		}

	default:
		m.suggIdx = (m.suggIdx + step + n) % n
	}

	m.replaceWord(m.matches[m.suggIdx].Str)

	return m
}

// replaceWord replaces the current word with text and moves the cursor past
// it.
func (m *model) replaceWord(text string) {
	input := m.input.Value()

	m.input.SetValue(input[:m.wordStart] + text + input[m.wordEnd:])
	m.input.SetCursor(m.wordStart + len(text))
	m.wordEnd = m.wordStart + len(text)
}

// refreshMatches recomputes completion candidates. With autoConfirm, a word
// that already equals its sole candidate is accepted.
func (m *model) refreshMatches(autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if autoConfirm && len(m.matches) == 1 &&
		m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.matches = nil
	}
}

// recall shows history entry i, switching to its mode. Moving past the
// newest entry clears the input.
func (m model) recall(i int) model {
	if i < 0 {
		return m
	}

	m.tabActive = false

	entry, err := m.history.Entry(i)
	if err != nil {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		m.refreshMatches(false)

		return m
	}

	m.historyIdx = i

	if entry.Mode != modeCommand && entry.Mode != m.mode {
		m = m.switchMode(entry.Mode)
	}

	line := entry.Line
	if entry.Mode == modeCommand {
		line = ":" + line
	}

	m.input.SetValue(line)
	m.input.SetCursor(len(line))
	m.refreshMatches(false)

	return m
}

// switchMode changes the input mode and its prompt.
func (m model) switchMode(mode inputMode) model {
	m.mode = mode

	style := promptStyle
	if mode == modeExpr {
		style = exprPromptStyle
	}

	m.input.Prompt = style.Render(prompts[mode])
	m.refreshMatches(false)

	return m
}

// execute submits the current line.
func (m model) execute() (model, tea.Cmd) {
	line := m.input.Value()
	if strings.TrimSpace(line) == "" {
		return m, nil
	}

	m.input.SetValue("")
	m.matches = nil
	m.tabActive = false

	echo := tea.Println(m.input.Prompt + inputStyle.Render(line))

	if cmd, ok := strings.CutPrefix(line, ":"); ok {
		m.remember(strings.TrimSpace(cmd), modeCommand)

		next, run := m.command(cmd)

		return next, tea.Sequence(echo, run)
	}

	m.remember(line, m.mode)

	var (
		out string
		err error
	)

	if m.mode == modeExpr {
		out, err = m.evaluate(line)
	} else {
		out, err = m.render(line)
	}

	return m, tea.Sequence(echo, m.printResult(out, err))
}

func (m *model) remember(line string, mode inputMode) {
	if err := m.history.Add(line, mode); err != nil {
		m.logger.WarnContext(m.ctx, "could not save history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()
}

// render processes line as a NORMAL document with the session engine.
func (m model) render(line string) (string, error) {
	var out strings.Builder

	err := m.engine.ProcessReader(
		m.ctx, &out, strings.NewReader(line), "<repl>", engine.Normal,
	)

	m.logger.TraceContext(m.ctx, "repl render",
		slog.Int("length", out.Len()),
		slog.Bool("ok", err == nil))

	return out.String(), err
}

// evaluate evaluates line as an expression over the session environment.
func (m model) evaluate(line string) (string, error) {
	v, err := lang.Eval(line, m.engine.Env())
	if err != nil {
		return "", err
	}

	m.logger.TraceContext(m.ctx, "repl eval",
		slog.String("type", fmt.Sprintf("%T", v)))

	if s, ok := v.(string); ok {
		return strconv.Quote(s), nil
	}

	return lang.Stringify(v), nil
}

func (m model) printResult(out string, err error) tea.Cmd {
	var cmds []tea.Cmd

	if out != "" {
		cmds = append(cmds, tea.Println(resultStyle.Render(out)))
	}

	if err != nil {
		cmds = append(cmds, tea.Println(errorStyle.Render("error: "+describe(err))))
	}

	return tea.Sequence(cmds...)
}

// describe formats err, naming the failing fragment of an execution fault.
func describe(err error) string {
	var fault *engine.Fault
	if errors.As(err, &fault) {
		return fmt.Sprintf("%v\n  in: %s", fault.Err, fault.Fragment)
	}

	return err.Error()
}

// command runs the session command named by the first word of line.
func (m model) command(line string) (model, tea.Cmd) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return m, tea.Println(helpMessage)
	}

	m.logger.TraceContext(m.ctx, "repl command",
		slog.String("command", fields[0]),
		slog.Any("args", fields[1:]))

	switch fields[0] {
	case "help":
		return m, tea.Println(helpMessage)
	case "vars":
		return m.listVars()
	case "deps":
		return m.listDeps()
	case "mode":
		return m.setMode(fields[1:])
	case "edit":
		return m.edit()
	case "clear":
		return m, tea.ClearScreen
	case "quit":
		m.quitting = true

		return m, tea.Quit
	}

	return m, tea.Println(errorStyle.Render(
		"unknown command: " + fields[0] + " (try :help)"))
}

func (m model) listVars() (model, tea.Cmd) {
	env := m.engine.Env()

	var b strings.Builder

	for _, layer := range []struct {
		title string
		vars  map[string]any
	}{
		{"variables", env.Vars()},
		{"globals", env.Globals()},
	} {
		if len(layer.vars) == 0 {
			continue
		}

		b.WriteString(hintStyle.Render(layer.title) + "\n")

		for _, name := range slices.Sorted(maps.Keys(layer.vars)) {
			fmt.Fprintf(&b, "  %s = %s\n", name, preview(layer.vars[name]))
		}
	}

	if b.Len() == 0 {
		b.WriteString(hintStyle.Render("no bindings"))
	}

	return m, tea.Println(strings.TrimRight(b.String(), "\n"))
}

func (m model) listDeps() (model, tea.Cmd) {
	deps := m.engine.Dependencies()
	if len(deps) == 0 {
		return m, tea.Println(hintStyle.Render("no includes"))
	}

	var b strings.Builder

	for i, d := range deps {
		fmt.Fprintf(&b, "  %d. %s", i+1, d.Path)

		if len(d.Vars) > 0 {
			b.WriteString(" " + hintStyle.Render(preview(d.Vars)))
		}

		b.WriteString("\n")
	}

	return m, tea.Println(strings.TrimRight(b.String(), "\n"))
}

func (m model) setMode(args []string) (model, tea.Cmd) {
	if len(args) == 0 {
		return m.switchMode(1 - m.mode), nil
	}

	switch strings.ToLower(args[0]) {
	case "template", "t":
		return m.switchMode(modeTemplate), nil
	case "expr", "expression", "x":
		return m.switchMode(modeExpr), nil
	}

	return m, tea.Println(errorStyle.Render("unknown mode: " + args[0]))
}

func (m model) edit() (model, tea.Cmd) {
	cmd := &editCommand{
		ctx:    m.ctx,
		engine: m.engine,
		logger: m.logger,
		source: m.lastEdit,
	}

	return m, tea.Exec(cmd, func(err error) tea.Msg {
		return editDoneMsg{cmd: cmd, err: err}
	})
}

// preview renders v on one line, shortened to 60 runes.
func preview(v any) string {
	s := strings.ReplaceAll(fmt.Sprintf("%v", v), "\n", `\n`)
	if r := []rune(s); len(r) > 60 {
		return string(r[:57]) + "..."
	}

	return s
}
