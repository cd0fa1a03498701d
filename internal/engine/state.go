package engine

import (
	"fmt"
	"slices"

	"github.com/vovakirdan/tetrlang/internal/tetrlang"
)

// Key is the input key shown as pressed in a state.
type Key uint8

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyDown
	KeyUp
	KeySpace
	KeyShift
	KeyA
	KeyZ
)

var keyNames = map[Key]string{
	KeyNone:  "",
	KeyLeft:  "LEFT",
	KeyRight: "RIGHT",
	KeyDown:  "DOWN",
	KeyUp:    "UP",
	KeySpace: "SPACE",
	KeyShift: "SHIFT",
	KeyA:     "A",
	KeyZ:     "Z",
}

func (k Key) String() string { return keyNames[k] }

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Key) UnmarshalText(text []byte) error {
	for key, name := range keyNames {
		if name == string(text) {
			*k = key
			return nil
		}
	}
	return fmt.Errorf("engine: unknown key %q", text)
}

// Spin classifies the last successful rotation.
type Spin uint8

const (
	SpinNone Spin = iota
	SpinFull
	SpinMini
)

func (s Spin) String() string {
	switch s {
	case SpinFull:
		return "full"
	case SpinMini:
		return "mini"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Spin) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Spin) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none", "":
		*s = SpinNone
	case "full":
		*s = SpinFull
	case "mini":
		*s = SpinMini
	default:
		return fmt.Errorf("engine: unknown spin %q", text)
	}
	return nil
}

// Tag names the elemental operation that produced a state.
type Tag string

const (
	TagInit  Tag = "init"
	TagSpawn Tag = "spawn"
)

// TagOf returns the tag for an elemental op: its DSL symbol.
func TagOf(op tetrlang.Op) Tag {
	return Tag(string(op.Symbol()))
}

// State is an immutable snapshot of the game. Transitions never modify a
// State; they derive new ones through the with* helpers. Next and
// ClearingLines are shared between snapshots and must not be written to.
type State struct {
	Grid     Grid             `json:"-"`
	Piece    tetrlang.Piece   `json:"piece"`
	Position Point            `json:"position"`
	Rotation Rotation         `json:"rotation"`
	Hold     tetrlang.Piece   `json:"hold"`
	CanHold  bool             `json:"can_hold"`
	Next     []tetrlang.Piece `json:"next"`

	Key   Key  `json:"key"`
	KeyUp bool `json:"key_up"`

	ClearingLines []int          `json:"clearing_lines,omitempty"`
	Spin          Spin           `json:"spin"`
	SpinPiece     tetrlang.Piece `json:"spin_piece"`
	Combo         int            `json:"combo"`
	B2B           int            `json:"b2b"`

	Tag Tag `json:"tag"`
}

// Init builds the state before the first spawn.
func Init(c *tetrlang.Compiled) State {
	return State{
		Grid:     BoardToGrid(c.Board),
		Position: SpawnPosition,
		Rotation: North,
		Hold:     c.Holding(),
		CanHold:  true,
		Next:     c.Queue(),
		KeyUp:    true,
		Tag:      TagInit,
	}
}

func (s State) withTag(t Tag) State {
	s.Tag = t
	if t != TagOf(tetrlang.Lock{}) {
		s.ClearingLines = nil
	}
	return s
}

func (s State) withKey(k Key, up bool) State {
	s.Key = k
	s.KeyUp = up
	return s
}

func (s State) withPosition(p Point) State {
	s.Position = p
	return s
}

func (s State) withRotation(r Rotation, p Point) State {
	s.Rotation = r
	s.Position = p
	return s
}

func (s State) withSpin(spin Spin) State {
	s.Spin = spin
	if spin == SpinNone {
		s.SpinPiece = tetrlang.PieceNone
	} else {
		s.SpinPiece = s.Piece
	}
	return s
}

// withPiece puts p in play at the spawn position.
func (s State) withPiece(p tetrlang.Piece) State {
	s.Piece = p
	s.Position = SpawnPosition
	s.Rotation = North
	return s
}

func (s State) withNext(next []tetrlang.Piece) State {
	s.Next = next
	return s
}

// Cells returns the absolute cells of the active piece.
func (s State) Cells() []Point {
	return Cells(s.Piece, s.Rotation, s.Position)
}

// Conflict reports whether the active piece overlaps the grid or its edges.
func (s State) Conflict() bool {
	return s.Piece != tetrlang.PieceNone && !Fits(s.Grid, s.Piece, s.Rotation, s.Position)
}

// Ghost returns the resting position of a hard drop, without changing the state.
func (s State) Ghost() (Point, bool) {
	if s.Piece == tetrlang.PieceNone {
		return Point{}, false
	}
	return s.dropped().Position, true
}

// Lines is the number of rows cleared by this state's lock.
func (s State) Lines() int {
	return len(s.ClearingLines)
}

// PerfectClear reports whether the lock cleared at least one row and left
// every other row empty.
func (s State) PerfectClear() bool {
	if len(s.ClearingLines) == 0 {
		return false
	}
	for y := range GridHeight {
		if !slices.Contains(s.ClearingLines, y) && !s.Grid.RowEmpty(y) {
			return false
		}
	}
	return true
}

// Preview returns up to n pieces of the next queue.
func (s State) Preview(n int) []tetrlang.Piece {
	if n > len(s.Next) {
		n = len(s.Next)
	}
	return s.Next[:n]
}

// StateView is a State with its grid encoded as rows, for JSON output.
type StateView struct {
	State
	Grid []string `json:"grid"`
}

// View returns the state with its grid encoded by Grid.Rows.
func (s State) View() StateView {
	return StateView{State: s, Grid: s.Grid.Rows()}
}
