package engine

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/vovakirdan/tetrlang/internal/tetrlang"
)

// ErrLimitExceeded is returned when a program is larger than the configured limits.
var ErrLimitExceeded = errors.New("engine: limit exceeded")

// Limits bounds the size of programs accepted by Play. Zero fields are unlimited.
type Limits struct {
	MaxProgramLength int `yaml:"max_program_length" json:"max_program_length"`
	MaxOperations    int `yaml:"max_operations" json:"max_operations"`
	MaxBoardRows     int `yaml:"max_board_rows" json:"max_board_rows"`
}

// DefaultLimits matches what the chat front end historically accepted.
func DefaultLimits() Limits {
	return Limits{
		MaxProgramLength: 256,
		MaxOperations:    100,
		MaxBoardRows:     GridHeight,
	}
}

// CheckSource validates the raw program text.
func (l Limits) CheckSource(text string) error {
	if n := utf8.RuneCountInString(text); l.MaxProgramLength > 0 && n > l.MaxProgramLength {
		return fmt.Errorf("%w: program is %d characters, max %d", ErrLimitExceeded, n, l.MaxProgramLength)
	}
	return nil
}

// Check validates a compiled program.
func (l Limits) Check(c *tetrlang.Compiled) error {
	if l.MaxOperations > 0 && len(c.Operations) > l.MaxOperations {
		return fmt.Errorf("%w: %d operations, max %d", ErrLimitExceeded, len(c.Operations), l.MaxOperations)
	}
	if l.MaxBoardRows > 0 && len(c.Board) > l.MaxBoardRows {
		return fmt.Errorf("%w: %d board rows, max %d", ErrLimitExceeded, len(c.Board), l.MaxBoardRows)
	}
	return nil
}

// Summary aggregates the locks of a simulation.
type Summary struct {
	Operations    int `json:"operations"`
	Locks         int `json:"locks"`
	Lines         int `json:"lines"`
	Spins         int `json:"spins"`
	PerfectClears int `json:"perfect_clears"`
	MaxCombo      int `json:"max_combo"`
	MaxB2B        int `json:"max_b2b"`
}

func (s *Summary) record(locked State) {
	s.Locks++
	s.Lines += locked.Lines()
	if locked.Spin != SpinNone {
		s.Spins++
	}
	if locked.PerfectClear() {
		s.PerfectClears++
	}
	s.MaxCombo = max(s.MaxCombo, locked.Combo)
	s.MaxB2B = max(s.MaxB2B, locked.B2B)
}

// Result is the full state sequence of a simulation and how it ended.
type Result struct {
	States  []State `json:"states"`
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
	Summary Summary `json:"summary"`
}

// Last returns the final state.
func (r Result) Last() State {
	return r.States[len(r.States)-1]
}

// Completed reports whether every operation ran.
func (r Result) Completed() bool {
	return r.Outcome == OutcomeCompleted
}

// Simulate folds a compiled program into its state sequence: init, spawn,
// then the expansion of every operation. GameOver and OperationError end the
// sequence early and are not errors; an error means the machine met an op it
// does not know.
func Simulate(c *tetrlang.Compiled) (Result, error) {
	initial := Init(c)
	spawned, ok := initial.spawn(initial.Grid)
	res := Result{States: []State{initial, spawned}}
	if !ok {
		res.Outcome = OutcomeGameOver
		res.Reason = fmt.Sprintf("%s does not fit at spawn", spawned.Piece)
		return res, nil
	}

	for i, operation := range c.Operations {
		for _, op := range operation.Elemental() {
			t, err := Apply(res.Last(), op)
			if err != nil {
				return Result{}, fmt.Errorf("engine: operation %d: %w", i+1, err)
			}
			res.States = append(res.States, t.States...)
			if _, isLock := op.(tetrlang.Lock); isLock && t.Outcome != OutcomeOperationError {
				res.Summary.record(t.States[0])
			}
			if t.Terminal() {
				res.Outcome = t.Outcome
				res.Reason = fmt.Sprintf("operation %d: %s", i+1, t.Reason)
				return res, nil
			}
		}
		res.Summary.Operations++
	}
	return res, nil
}

// Play compiles text, enforces limits and simulates it. Compile failures are
// returned as *tetrlang.Error, limit violations wrap ErrLimitExceeded.
func Play(text string, limits Limits) (Result, error) {
	if err := limits.CheckSource(text); err != nil {
		return Result{}, err
	}
	c, err := tetrlang.Compile(text)
	if err != nil {
		return Result{}, err
	}
	if err := limits.Check(c); err != nil {
		return Result{}, err
	}
	return Simulate(c)
}
