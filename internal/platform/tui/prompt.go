package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tetrlang/internal/engine"
	"github.com/vovakirdan/tetrlang/internal/tetrlang"
)

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	caretStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

const promptExample = "2,,,,-1,-2,,,-3::Jr[;Tr[;S[r_r;Z[_r;"

// PromptModel asks for a Tetrlang program.
type PromptModel struct {
	input     textinput.Model
	err       error
	errText   string // program the error refers to
	submitted string
	quitting  bool
}

// NewPromptModel creates a prompt limited to maxLength characters (0 = unlimited)
// and prefilled with value.
func NewPromptModel(value string, maxLength int) PromptModel {
	ti := textinput.New()
	ti.Prompt = "tetr> "
	ti.Placeholder = promptExample
	ti.CharLimit = maxLength
	ti.Width = 60
	ti.SetValue(value)
	ti.Focus()

	return PromptModel{input: ti}
}

// Init initializes the prompt.
func (m PromptModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the prompt.
func (m PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			program := strings.TrimSpace(m.input.Value())
			if program == "" {
				return m, nil
			}
			m.submitted = program
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-len(m.input.Prompt)-2, 10)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Submitted returns the program entered by the user, if any.
func (m PromptModel) Submitted() (string, bool) {
	return m.submitted, m.submitted != ""
}

// WithError returns the prompt showing err for program and waiting for a
// new submission.
func (m PromptModel) WithError(program string, err error) PromptModel {
	m.err = err
	m.errText = program
	m.submitted = ""
	m.input.SetValue(program)
	m.input.CursorEnd()

	var perr *tetrlang.Error
	if errors.As(err, &perr) && perr.Pos >= 0 {
		m.input.SetCursor(perr.Pos)
	}
	return m
}

// Reset clears the last submission and error and prefills the input.
func (m PromptModel) Reset(value string) PromptModel {
	m.err = nil
	m.errText = ""
	m.submitted = ""
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m
}

// IsQuitting returns true if the user wants to leave.
func (m PromptModel) IsQuitting() bool {
	return m.quitting
}

// View renders the prompt.
func (m PromptModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("TETRLANG"))
	b.WriteString("\n\n")
	b.WriteString("Enter a program: board : order : operations\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(ErrorCaret(m.errText, m.err, len(m.input.Prompt)))
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter run • esc quit"))
	return b.String()
}

// ErrorCaret returns a line pointing at the character a compile error refers
// to, indented by offset columns. It is empty for errors without a position.
func ErrorCaret(program string, err error, offset int) string {
	var perr *tetrlang.Error
	if !errors.As(err, &perr) || perr.Pos < 0 {
		return ""
	}
	col := offset + min(perr.Pos, len([]rune(program)))
	return strings.Repeat(" ", col) + caretStyle.Render("^") + "\n"
}

// compileError reports whether err is a problem with the program rather than
// with the system.
func compileError(err error) bool {
	var perr *tetrlang.Error
	return errors.As(err, &perr) || errors.Is(err, engine.ErrLimitExceeded)
}
