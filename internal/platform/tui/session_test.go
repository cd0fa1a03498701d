package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tetrlang/internal/config"
	"github.com/vovakirdan/tetrlang/internal/engine"
	"github.com/vovakirdan/tetrlang/internal/logging"
	"github.com/vovakirdan/tetrlang/internal/render"
	"github.com/vovakirdan/tetrlang/internal/storage"
)

func sessionOptions(t *testing.T, withStore bool) SessionOptions {
	t.Helper()
	opts := SessionOptions{
		Limits:   engine.DefaultLimits(),
		Renderer: render.New(config.Default().Render),
		Logger:   logging.Discard(),
		Source:   "test",
	}
	if withStore {
		store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
		if err != nil {
			t.Fatalf("Open() failed: %v", err)
		}
		t.Cleanup(func() { store.Close() })
		opts.Store = store
	}
	return opts
}

func updateSession(t *testing.T, m SessionModel, msg tea.Msg) (SessionModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	sm, ok := next.(SessionModel)
	if !ok {
		t.Fatalf("Update() returned %T, want SessionModel", next)
	}
	return sm, cmd
}

func TestSessionPlaysSubmittedProgram(t *testing.T) {
	opts := sessionOptions(t, true)
	m := NewSessionModel(opts, "alice", "")
	if m.Replaying() {
		t.Fatal("session without a program starts in replay")
	}

	m.prompt.input.SetValue(replayProgram)
	m, cmd := updateSession(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || !m.running {
		t.Fatal("enter did not start a simulation")
	}
	if !strings.Contains(m.View(), "simulating") {
		t.Error("View() does not show the running simulation")
	}

	// the batch above contains the play command; run it directly
	m, _ = updateSession(t, m, m.play(replayProgram)())
	if !m.Replaying() {
		t.Fatal("session did not switch to the replay")
	}

	runs, err := opts.Store.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Program != replayProgram || runs[0].Source != "test" {
		t.Errorf("runs = %+v, want one test run of %q", runs, replayProgram)
	}

	m, _ = updateSession(t, m, runeKey("q"))
	if m.Replaying() || m.quitting {
		t.Fatal("q did not return to the prompt")
	}
	if got := m.prompt.input.Value(); got != replayProgram {
		t.Errorf("prompt value = %q, want the last program", got)
	}
	if _, ok := m.prompt.Submitted(); ok {
		t.Error("prompt still holds the old submission")
	}
}

func TestSessionShowsCompileError(t *testing.T) {
	m := NewSessionModel(sessionOptions(t, false), "bob", "1,2a::")
	if m.Init() == nil {
		t.Fatal("Init() = nil, want the initial simulation")
	}

	m, _ = updateSession(t, m, m.play("1,2a::")())
	if m.Replaying() {
		t.Fatal("invalid program started a replay")
	}
	view := m.View()
	if !strings.Contains(view, "INVALID_COLUMN") {
		t.Errorf("View() = %q, want the error code", view)
	}
	if !strings.Contains(view, "^") {
		t.Error("View() does not point at the error")
	}
}

func TestSessionIgnoresTimersOfEarlierReplays(t *testing.T) {
	m := NewSessionModel(sessionOptions(t, false), "dave", "")
	played := m.play(replayProgram)()

	m, first := updateSession(t, m, played)
	if first == nil {
		t.Fatal("replay did not arm its timer")
	}
	msg := first()
	stale, ok := msg.(AdvanceMsg)
	if !ok {
		t.Fatalf("timer sent %T, want AdvanceMsg", msg)
	}

	m, _ = updateSession(t, m, runeKey("q"))
	if m.Replaying() {
		t.Fatal("q did not return to the prompt")
	}

	m, _ = updateSession(t, m, played)
	if !m.Replaying() {
		t.Fatal("second run did not start a replay")
	}
	m, cmd := updateSession(t, m, stale)
	if got := m.replay.Cursor(); got != 0 {
		t.Errorf("timer of the first replay moved the second to frame %d", got)
	}
	if cmd != nil {
		t.Error("timer of the first replay armed another timer")
	}

	m, _ = updateSession(t, m, AdvanceMsg{Gen: m.replay.gen})
	if got := m.replay.Cursor(); got != 1 {
		t.Errorf("Cursor = %d after the current timer, want 1", got)
	}
}

func TestSessionQuit(t *testing.T) {
	m := NewSessionModel(sessionOptions(t, false), "carol", "")
	m, cmd := updateSession(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.quitting || cmd == nil {
		t.Error("esc at the prompt did not quit")
	}

	m = NewSessionModel(sessionOptions(t, false), "carol", "")
	m, _ = updateSession(t, m, m.play(replayProgram)())
	m, _ = updateSession(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if !m.quitting {
		t.Error("ctrl+c during replay did not quit")
	}
}

func TestSessionProgram(t *testing.T) {
	tests := []struct {
		command []string
		want    string
	}{
		{nil, ""},
		{[]string{":T:;"}, ":T:;"},
		{[]string{"0-2,", ":T:", ";"}, "0-2,:T:;"},
		{[]string{"  :T:; "}, ":T:;"},
	}

	for _, tt := range tests {
		if got := SessionProgram(tt.command); got != tt.want {
			t.Errorf("SessionProgram(%q) = %q, want %q", tt.command, got, tt.want)
		}
	}
}

func TestErrorCaret(t *testing.T) {
	_, err := engine.Play("1,2a::", engine.DefaultLimits())
	if got := ErrorCaret("1,2a::", err, 2); !strings.HasPrefix(got, "     ^") {
		t.Errorf("ErrorCaret() = %q, want caret at column 5", got)
	}

	_, err = engine.Play(":IJ:r;r;r", engine.DefaultLimits())
	if got := ErrorCaret(":IJ:r;r;r", err, 0); got != "" {
		t.Errorf("ErrorCaret() = %q for an error without position", got)
	}
}
