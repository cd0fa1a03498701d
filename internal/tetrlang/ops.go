package tetrlang

import "fmt"

// Op is an elemental operation: Move, Rotate, Hold or Lock.
// The set is closed; consumers switch on the concrete type.
type Op interface {
	// Symbol returns the DSL character of the op.
	Symbol() rune
	isOp()
}

// MoveKind enumerates translation tokens.
type MoveKind uint8

const (
	MoveLeft      MoveKind = iota // '<'
	MoveRight                     // '>'
	MoveLeftSide                  // '[' slide to the left wall
	MoveRightSide                 // ']' slide to the right wall
	MoveFall                      // '.' one row down
	MoveSoftDrop                  // '_' fall to the floor without locking
)

// RotateKind enumerates rotation tokens.
type RotateKind uint8

const (
	RotateNoop             RotateKind = iota // 'o'
	RotateClockwise                          // 'r'
	RotateFlip                               // 'a'
	RotateCounterClockwise                   // 'z'
)

// Move translates the active piece.
type Move struct{ Kind MoveKind }

// Rotate turns the active piece.
type Rotate struct{ Kind RotateKind }

// Hold swaps the active piece with the hold slot.
type Hold struct{}

// Lock drops and locks the active piece.
type Lock struct{}

func (Move) isOp()   {}
func (Rotate) isOp() {}
func (Hold) isOp()   {}
func (Lock) isOp()   {}

var moveSymbols = map[MoveKind]rune{
	MoveLeft:      '<',
	MoveRight:     '>',
	MoveLeftSide:  '[',
	MoveRightSide: ']',
	MoveFall:      '.',
	MoveSoftDrop:  '_',
}

var rotateSymbols = map[RotateKind]rune{
	RotateNoop:             'o',
	RotateClockwise:        'r',
	RotateFlip:             'a',
	RotateCounterClockwise: 'z',
}

// Symbol implements Op.
func (m Move) Symbol() rune { return moveSymbols[m.Kind] }

// Symbol implements Op.
func (r Rotate) Symbol() rune { return rotateSymbols[r.Kind] }

// Symbol implements Op.
func (Hold) Symbol() rune { return HoldMarker }

// Symbol implements Op.
func (Lock) Symbol() rune { return LockMarker }

// Repeated reports whether the move slides until blocked.
func (k MoveKind) Repeated() bool {
	return k == MoveLeftSide || k == MoveRightSide || k == MoveSoftDrop
}

// Step returns the single-cell move a repeated move is built from.
func (k MoveKind) Step() MoveKind {
	switch k {
	case MoveLeftSide:
		return MoveLeft
	case MoveRightSide:
		return MoveRight
	case MoveSoftDrop:
		return MoveFall
	default:
		return k
	}
}

// Delta returns the (dx, dy) of one step; y grows upward.
func (k MoveKind) Delta() (dx, dy int) {
	switch k.Step() {
	case MoveLeft:
		return -1, 0
	case MoveRight:
		return 1, 0
	default:
		return 0, -1
	}
}

// ParseOp maps a token character to its op. Hold and lock markers are
// structural and never parsed as tokens.
func ParseOp(r rune) (Op, bool) {
	for kind, sym := range moveSymbols {
		if sym == r {
			return Move{Kind: kind}, true
		}
	}
	for kind, sym := range rotateSymbols {
		if sym == r {
			return Rotate{Kind: kind}, true
		}
	}
	return nil, false
}

// FormatOps renders ops back to their DSL characters.
func FormatOps(ops []Op) string {
	out := make([]rune, len(ops))
	for i, op := range ops {
		out[i] = op.Symbol()
	}
	return string(out)
}

// ParseOps is the inverse of FormatOps; it accepts hold and lock markers too.
func ParseOps(s string) ([]Op, error) {
	ops := make([]Op, 0, len(s))
	for _, r := range s {
		switch r {
		case HoldMarker:
			ops = append(ops, Hold{})
		case LockMarker:
			ops = append(ops, Lock{})
		default:
			op, ok := ParseOp(r)
			if !ok {
				return nil, fmt.Errorf("tetrlang: invalid op %q", r)
			}
			ops = append(ops, op)
		}
	}
	return ops, nil
}
