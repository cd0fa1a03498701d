package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tetrlang/internal/engine"
	"github.com/vovakirdan/tetrlang/internal/render"
)

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	outcomeStyle = map[engine.Outcome]lipgloss.Style{
		engine.OutcomeCompleted:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		engine.OutcomeGameOver:       lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		engine.OutcomeOperationError: lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
	}
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
)

// ReplayModel is the Bubble Tea model that plays the frames of a simulation.
// Each frame stays on screen for its own delay.
type ReplayModel struct {
	program  string
	result   engine.Result
	frames   []render.Frame
	cursor   int
	paused   bool
	gen      int
	keys     ReplayKeyMap
	help     help.Model
	embedded bool // quit returns to the caller instead of ending the program
	back     bool
	quitting bool
}

// NewReplayModel renders every state of res and prepares playback.
// Frames with no delay are skipped unless nothing else is left.
func NewReplayModel(ctx context.Context, program string, res engine.Result, r *render.Renderer) (ReplayModel, error) {
	frames, err := r.RenderAll(ctx, res.States)
	if err != nil {
		return ReplayModel{}, err
	}
	if playable := render.Playable(frames); len(playable) > 0 {
		frames = playable
	}
	return newReplayModel(program, res, frames), nil
}

func newReplayModel(program string, res engine.Result, frames []render.Frame) ReplayModel {
	return ReplayModel{
		program: program,
		result:  res,
		frames:  frames,
		keys:    DefaultReplayKeyMap(),
		help:    help.New(),
	}
}

// Init starts playback.
func (m ReplayModel) Init() tea.Cmd {
	return m.schedule()
}

// schedule arms the timer of the current frame.
func (m ReplayModel) schedule() tea.Cmd {
	if m.paused || m.AtEnd() {
		return nil
	}
	return advanceCmd(m.frames[m.cursor].Delay, m.gen)
}

// Update handles messages and updates the model state.
func (m ReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case AdvanceMsg:
		if msg.Gen != m.gen || m.paused || m.AtEnd() {
			return m, nil
		}
		m.cursor++
		return m, m.schedule()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m ReplayModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Quit):
		if m.embedded {
			m.back = true
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Pause):
		if m.AtEnd() {
			return m.restart()
		}
		m.paused = !m.paused
		m.gen++
		return m, m.schedule()

	case key.Matches(msg, m.keys.Prev):
		return m.seek(m.cursor - 1), nil

	case key.Matches(msg, m.keys.Next):
		return m.seek(m.cursor + 1), nil

	case key.Matches(msg, m.keys.First):
		return m.seek(0), nil

	case key.Matches(msg, m.keys.Last):
		return m.seek(len(m.frames) - 1), nil

	case key.Matches(msg, m.keys.Restart):
		return m.restart()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	return m, nil
}

// seek pauses playback on frame i.
func (m ReplayModel) seek(i int) ReplayModel {
	m.cursor = min(max(i, 0), len(m.frames)-1)
	m.paused = true
	m.gen++
	return m
}

func (m ReplayModel) restart() (tea.Model, tea.Cmd) {
	m.cursor = 0
	m.paused = false
	m.gen++
	return m, m.schedule()
}

// Cursor returns the index of the displayed frame.
func (m ReplayModel) Cursor() int {
	return m.cursor
}

// Frame returns the displayed frame.
func (m ReplayModel) Frame() render.Frame {
	return m.frames[m.cursor]
}

// Len returns the number of playable frames.
func (m ReplayModel) Len() int {
	return len(m.frames)
}

// Paused reports whether playback is stopped by the user.
func (m ReplayModel) Paused() bool {
	return m.paused
}

// AtEnd reports whether the last frame is displayed.
func (m ReplayModel) AtEnd() bool {
	return m.cursor >= len(m.frames)-1
}

// IsQuitting returns true if the user wants to quit entirely.
func (m ReplayModel) IsQuitting() bool {
	return m.quitting
}

// BackToPrompt returns true if the user left an embedded replay.
func (m ReplayModel) BackToPrompt() bool {
	return m.back
}

// View renders the current frame with a status and help line.
func (m ReplayModel) View() string {
	if m.quitting {
		return ""
	}

	f := m.Frame()
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.program))
	b.WriteString("\n")
	b.WriteString(RenderScreen(f.Screen))
	b.WriteString("\n\n")

	state := "playing"
	switch {
	case m.AtEnd():
		state = "end"
	case m.paused:
		state = "paused"
	}
	b.WriteString(statusStyle.Render(fmt.Sprintf("frame %d/%d  state %d  %-6s  %s",
		m.cursor+1, len(m.frames), f.Index, f.Tag, state)))
	b.WriteString("\n")

	if m.AtEnd() {
		line := m.result.Outcome.String()
		if m.result.Reason != "" {
			line += ": " + m.result.Reason
		}
		b.WriteString(outcomeStyle[m.result.Outcome].Render(line))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// RunReplay plays a simulation in the terminal until the user quits.
func RunReplay(ctx context.Context, program string, res engine.Result, r *render.Renderer) error {
	model, err := NewReplayModel(ctx, program, res, r)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
