package engine

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/vovakirdan/tetrlang/internal/tetrlang"
)

// ErrUnknownOperation reports an op the machine has no rule for. The parser
// never produces one, so it always indicates a bug in the caller.
var ErrUnknownOperation = errors.New("engine: unknown operation")

// Outcome is how a transition or a whole simulation ended.
type Outcome uint8

const (
	// OutcomeCompleted means play can continue (for a transition) or that every
	// operation ran (for a simulation).
	OutcomeCompleted Outcome = iota
	// OutcomeGameOver means a piece could not be placed at spawn.
	OutcomeGameOver
	// OutcomeOperationError means the program asked for something impossible,
	// such as locking with no active piece.
	OutcomeOperationError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeGameOver:
		return "game_over"
	case OutcomeOperationError:
		return "operation_error"
	default:
		return "completed"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	for _, out := range []Outcome{OutcomeCompleted, OutcomeGameOver, OutcomeOperationError} {
		if out.String() == string(text) {
			*o = out
			return nil
		}
	}
	return fmt.Errorf("engine: unknown outcome %q", text)
}

// Transition is the result of applying one elemental op. When Outcome is not
// OutcomeCompleted, the last state is the one the game ended on.
type Transition struct {
	States  []State
	Outcome Outcome
	Reason  string
}

// Terminal reports whether the transition ended the game.
func (t Transition) Terminal() bool {
	return t.Outcome != OutcomeCompleted
}

func proceed(s State) Transition {
	return Transition{States: []State{s}}
}

func gameOver(states []State, format string, args ...any) Transition {
	return Transition{States: states, Outcome: OutcomeGameOver, Reason: fmt.Sprintf(format, args...)}
}

var (
	lockTag = TagOf(tetrlang.Lock{})
	holdTag = TagOf(tetrlang.Hold{})
	down    = Point{X: 0, Y: -1}
)

// Apply runs one elemental op against s. The returned error is reserved for
// ops outside the machine's vocabulary; game-ending situations are reported
// through Transition.Outcome.
func Apply(s State, op tetrlang.Op) (Transition, error) {
	switch op := op.(type) {
	case tetrlang.Move:
		if op.Kind > tetrlang.MoveSoftDrop {
			return Transition{}, fmt.Errorf("%w: move kind %d", ErrUnknownOperation, op.Kind)
		}
		if op.Kind.Repeated() {
			return Transition{States: slices.Collect(s.repeat(op))}, nil
		}
		dx, dy := op.Kind.Delta()
		next, _ := s.step(Point{X: dx, Y: dy}, moveKey(op.Kind), TagOf(op), TagOf(op), true)
		return proceed(next), nil

	case tetrlang.Rotate:
		if op.Kind > tetrlang.RotateCounterClockwise {
			return Transition{}, fmt.Errorf("%w: rotate kind %d", ErrUnknownOperation, op.Kind)
		}
		return proceed(s.rotate(op)), nil

	case tetrlang.Hold:
		return s.hold(), nil

	case tetrlang.Lock:
		return s.lock(), nil

	default:
		return Transition{}, fmt.Errorf("%w: %T", ErrUnknownOperation, op)
	}
}

func moveKey(kind tetrlang.MoveKind) Key {
	switch kind.Step() {
	case tetrlang.MoveLeft:
		return KeyLeft
	case tetrlang.MoveRight:
		return KeyRight
	default:
		return KeyDown
	}
}

func rotateKey(kind tetrlang.RotateKind) Key {
	switch kind {
	case tetrlang.RotateClockwise:
		return KeyUp
	case tetrlang.RotateFlip:
		return KeyA
	case tetrlang.RotateCounterClockwise:
		return KeyZ
	default:
		return KeyNone
	}
}

// step translates the piece by d. A successful step is tagged tag and keeps
// the key down unless single; a rejected step, or one with no piece, only
// releases the key under rejectTag. moved reports whether the piece moved.
func (s State) step(d Point, key Key, tag, rejectTag Tag, single bool) (next State, moved bool) {
	if s.Piece == tetrlang.PieceNone {
		return s.withTag(rejectTag).withKey(key, true), false
	}
	pos := s.Position.Add(d)
	if !Fits(s.Grid, s.Piece, s.Rotation, pos) {
		return s.withTag(rejectTag).withKey(key, true), false
	}
	return s.withTag(tag).withKey(key, single).withPosition(pos).withSpin(SpinNone), true
}

// slide yields one state per successful step and then the released state.
func (s State) slide(d Point, key Key, tag, rejectTag Tag) iter.Seq[State] {
	return func(yield func(State) bool) {
		cur := s
		for {
			next, moved := cur.step(d, key, tag, rejectTag, false)
			if !yield(next) || !moved {
				return
			}
			cur = next
		}
	}
}

// repeat expands '[', ']' and '_' into their single steps.
func (s State) repeat(m tetrlang.Move) iter.Seq[State] {
	dx, dy := m.Kind.Delta()
	single := tetrlang.Move{Kind: m.Kind.Step()}
	return s.slide(Point{X: dx, Y: dy}, moveKey(m.Kind), TagOf(m), TagOf(single))
}

// dropped is the final state of the lock drop.
func (s State) dropped() State {
	last := s
	for next := range s.slide(down, KeySpace, lockTag, lockTag) {
		last = next
	}
	return last
}

func (s State) rotate(r tetrlang.Rotate) State {
	next := s.withTag(TagOf(r)).withKey(rotateKey(r.Kind), true)
	if s.Piece == tetrlang.PieceNone || r.Kind == tetrlang.RotateNoop {
		return next
	}

	to := NextRotation(s.Rotation, r.Kind)
	pos, ok := KickTest(s.Grid, s.Piece, s.Position, s.Rotation, to)
	if !ok {
		return next
	}
	next = next.withRotation(to, pos)
	return next.withSpin(classifySpin(next.Grid, next.Piece, to, pos))
}

var (
	orthogonal = []Point{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}
	corners    = []Point{{-1, 1}, {1, 1}, {-1, -1}, {1, -1}}
)

// classifySpin labels a rotation that left the piece at pos. A piece that
// cannot move in any direction is a full spin; a T with at most one open
// corner around its center is a mini spin.
func classifySpin(g Grid, p tetrlang.Piece, rot Rotation, pos Point) Spin {
	immobile := true
	for _, d := range orthogonal {
		if Fits(g, p, rot, pos.Add(d)) {
			immobile = false
			break
		}
	}
	if immobile {
		return SpinFull
	}
	if p != tetrlang.PieceT {
		return SpinNone
	}

	open := 0
	for _, d := range corners {
		c := pos.Add(d)
		if g.Fillable(c.X, c.Y) {
			open++
		}
	}
	if open <= 1 {
		return SpinMini
	}
	return SpinNone
}

func (s State) hold() Transition {
	next := s.withTag(holdTag).withKey(KeyShift, true)
	if !s.CanHold || s.Piece == tetrlang.PieceNone || (s.Hold == tetrlang.PieceNone && len(s.Next) == 0) {
		return proceed(next)
	}

	incoming, queue := s.Hold, s.Next
	if incoming == tetrlang.PieceNone {
		incoming, queue = s.Next[0], s.Next[1:]
	}
	next.Hold = s.Piece
	next.CanHold = false
	next = next.withNext(queue).withPiece(incoming).withSpin(SpinNone)
	if next.Conflict() {
		return gameOver([]State{next}, "held %s does not fit at spawn", incoming)
	}
	return proceed(next)
}

// spawn draws the next piece onto g. ok is false when the piece collides.
func (s State) spawn(g Grid) (next State, ok bool) {
	next = s.withTag(TagSpawn)
	next.Grid = g
	next.CanHold = true

	piece, queue := tetrlang.PieceNone, s.Next
	if len(queue) > 0 {
		piece, queue = queue[0], queue[1:]
	}
	next = next.withNext(queue).withPiece(piece).withSpin(SpinNone)
	return next, !next.Conflict()
}

// lock drops the piece, stamps it, clears lines, updates combo and
// back-to-back, then spawns. It emits the locked state and the spawn state.
func (s State) lock() Transition {
	dropped := s.dropped()
	if dropped.Piece == tetrlang.PieceNone {
		return Transition{
			States:  []State{dropped},
			Outcome: OutcomeOperationError,
			Reason:  "no piece to lock",
		}
	}

	stamped := Stamp(dropped.Grid, dropped.Piece, dropped.Rotation, dropped.Position)
	cleared, lines := stamped.ClearLines()

	locked := dropped
	locked.Grid = stamped
	locked.ClearingLines = lines
	locked.Piece = tetrlang.PieceNone

	if len(lines) == 0 {
		locked.Combo = 0
	} else {
		locked.Combo++
		if len(lines) >= 4 || locked.Spin != SpinNone || locked.PerfectClear() {
			locked.B2B++
		} else {
			locked.B2B = 0
		}
	}

	spawned, ok := locked.spawn(cleared)
	if !ok {
		return gameOver([]State{locked, spawned}, "%s does not fit at spawn", spawned.Piece)
	}
	return Transition{States: []State{locked, spawned}}
}
