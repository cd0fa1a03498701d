// Package tui provides the Bubble Tea front ends for tetr: the frame replay
// viewer, the run history table, the program prompt and the SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// AdvanceMsg moves the replay to the next frame. Gen identifies the timer
// that sent it so stale timers are ignored after a seek or pause.
type AdvanceMsg struct {
	Gen int
}

// advanceCmd fires an AdvanceMsg after the frame delay.
func advanceCmd(delay time.Duration, gen int) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return AdvanceMsg{Gen: gen}
	})
}
