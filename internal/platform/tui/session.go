package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tetrlang/internal/engine"
	"github.com/vovakirdan/tetrlang/internal/render"
	"github.com/vovakirdan/tetrlang/internal/storage"
)

// SessionOptions holds what a session needs to run programs.
type SessionOptions struct {
	Limits   engine.Limits
	Renderer *render.Renderer
	Store    *storage.Store // nil disables run history
	Logger   *log.Logger
	Source   string // recorded with each saved run
}

// SessionModel manages the session flow: prompt -> replay -> prompt.
// This is the top-level model used for SSH sessions and interactive play.
type SessionModel struct {
	opts     SessionOptions
	user     string
	initial  string
	prompt   PromptModel
	replay   *ReplayModel
	running  bool
	gen      int // last replay timer generation handed out
	width    int
	height   int
	quitting bool
}

// playedMsg carries a finished simulation back to the session.
type playedMsg struct {
	program string
	replay  ReplayModel
	err     error
}

// NewSessionModel creates a session. A non-empty program is played right away.
func NewSessionModel(opts SessionOptions, user, program string) SessionModel {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return SessionModel{
		opts:    opts,
		user:    user,
		initial: program,
		prompt:  NewPromptModel(program, opts.Limits.MaxProgramLength),
		running: program != "",
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	if m.initial != "" {
		return tea.Batch(m.prompt.Init(), m.play(m.initial))
	}
	return m.prompt.Init()
}

// play simulates program off the update loop and renders its frames.
func (m SessionModel) play(program string) tea.Cmd {
	opts, user := m.opts, m.user
	return func() tea.Msg {
		res, err := engine.Play(program, opts.Limits)
		if err != nil {
			if !compileError(err) {
				opts.Logger.Error("simulation failed", "user", user, "error", err)
			}
			return playedMsg{program: program, err: err}
		}

		opts.Logger.Info("simulated", "user", user, "states", len(res.States), "outcome", res.Outcome)
		if res.Outcome == engine.OutcomeGameOver {
			opts.Logger.Warn("game over", "user", user, "reason", res.Reason)
		}
		if opts.Store != nil {
			if _, err := opts.Store.SaveRun(storage.NewRun(program, opts.Source, res)); err != nil {
				opts.Logger.Warn("could not save run", "error", err)
			}
		}

		replay, err := NewReplayModel(context.Background(), program, res, opts.Renderer)
		if err != nil {
			return playedMsg{program: program, err: err}
		}
		replay.embedded = true
		return playedMsg{program: program, replay: replay}
	}
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case playedMsg:
		m.running = false
		if msg.err != nil {
			m.prompt = m.prompt.WithError(msg.program, msg.err)
			return m, nil
		}
		replay := msg.replay
		// timers of earlier replays may still be in flight
		m.gen++
		replay.gen = m.gen
		if m.width > 0 {
			replay.help.Width = m.width
		}
		m.replay = &replay
		return m, m.replay.Init()
	}

	if m.replay != nil {
		return m.updateReplay(msg)
	}
	return m.updatePrompt(msg)
}

// updateReplay handles updates while a replay is shown.
func (m SessionModel) updateReplay(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.replay.Update(msg)
	if replay, ok := newModel.(ReplayModel); ok {
		m.replay = &replay
		m.gen = max(m.gen, replay.gen)
	}

	if m.replay.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.replay.BackToPrompt() {
		program := m.replay.program
		m.replay = nil
		m.prompt = m.prompt.Reset(program)
		return m, m.prompt.Init()
	}

	return m, cmd
}

// updatePrompt handles updates while the prompt is shown.
func (m SessionModel) updatePrompt(msg tea.Msg) (tea.Model, tea.Cmd) {
	newPrompt, cmd := m.prompt.Update(msg)
	if prompt, ok := newPrompt.(PromptModel); ok {
		m.prompt = prompt
	}

	if m.prompt.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if program, ok := m.prompt.Submitted(); ok && !m.running {
		m.running = true
		return m, tea.Batch(cmd, m.play(program))
	}

	return m, cmd
}

// Replaying reports whether a replay is on screen.
func (m SessionModel) Replaying() bool {
	return m.replay != nil
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	if m.replay != nil {
		return m.replay.View()
	}
	if m.running {
		return m.prompt.View() + "\n" + statusStyle.Render("simulating...")
	}
	return m.prompt.View()
}

// RunSession starts an interactive session in the local terminal.
func RunSession(ctx context.Context, opts SessionOptions, program string) error {
	p := tea.NewProgram(
		NewSessionModel(opts, "local", program),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
