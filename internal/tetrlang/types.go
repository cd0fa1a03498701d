// Package tetrlang compiles Tetrlang source text into a structured program.
// It has no dependency on the rules engine; the engine consumes Compiled.
package tetrlang

import "fmt"

// Width is the fixed number of columns of every board row.
const Width = 10

// DSL punctuation.
const (
	SectionSeparator = ':'
	RowSeparator     = ','
	Connector        = '-'
	HoldMarker       = '|'
	LockMarker       = ';'
)

// Piece identifies a tetromino. The zero value means no piece.
type Piece uint8

const (
	PieceNone Piece = iota
	PieceI
	PieceJ
	PieceL
	PieceO
	PieceS
	PieceZ
	PieceT
)

// Pieces lists every real piece in DSL order.
var Pieces = []Piece{PieceI, PieceJ, PieceL, PieceO, PieceS, PieceZ, PieceT}

// ParsePiece maps a DSL letter to a piece.
func ParsePiece(r rune) (Piece, bool) {
	switch r {
	case 'I':
		return PieceI, true
	case 'J':
		return PieceJ, true
	case 'L':
		return PieceL, true
	case 'O':
		return PieceO, true
	case 'S':
		return PieceS, true
	case 'Z':
		return PieceZ, true
	case 'T':
		return PieceT, true
	default:
		return PieceNone, false
	}
}

// String returns the DSL letter, or "-" for no piece.
func (p Piece) String() string {
	switch p {
	case PieceI:
		return "I"
	case PieceJ:
		return "J"
	case PieceL:
		return "L"
	case PieceO:
		return "O"
	case PieceS:
		return "S"
	case PieceZ:
		return "Z"
	case PieceT:
		return "T"
	default:
		return "-"
	}
}

// MarshalText encodes the piece as its letter; no piece encodes as empty.
func (p Piece) MarshalText() ([]byte, error) {
	if p == PieceNone {
		return []byte{}, nil
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a piece letter.
func (p *Piece) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = PieceNone
		return nil
	}
	piece, ok := ParsePiece(rune(text[0]))
	if !ok || len(text) != 1 {
		return fmt.Errorf("tetrlang: invalid piece %q", text)
	}
	*p = piece
	return nil
}

// Row is one board row; true marks garbage, false a hole.
type Row [Width]bool

// Board holds rows bottom-first.
type Board []Row

// Order is the piece order section: an optional held piece and the queue.
type Order struct {
	Holding Piece   `json:"holding,omitempty" yaml:"holding,omitempty"`
	Next    []Piece `json:"next" yaml:"next"`
}

// Operation is one lock-terminated group of tokens.
type Operation struct {
	Hold  bool  `json:"hold,omitempty" yaml:"hold,omitempty"`
	Piece Piece `json:"piece,omitempty" yaml:"piece,omitempty"` // only set when the program has no Order
	Ops   []Op
}

// Elemental expands the operation into the op sequence fed to the engine:
// an optional hold, the tokens, then the implicit lock.
func (o Operation) Elemental() []Op {
	ops := make([]Op, 0, len(o.Ops)+2)
	if o.Hold {
		ops = append(ops, Hold{})
	}
	ops = append(ops, o.Ops...)
	return append(ops, Lock{})
}

// Compiled is a fully validated program.
type Compiled struct {
	Board      Board       `json:"board" yaml:"board"`
	Order      *Order      `json:"order,omitempty" yaml:"order,omitempty"`
	Operations []Operation `json:"operations" yaml:"operations"`
}

// Queue returns the initial next queue: the order's queue when present,
// otherwise the explicit piece of each operation.
func (c *Compiled) Queue() []Piece {
	if c.Order != nil {
		return append([]Piece(nil), c.Order.Next...)
	}
	queue := make([]Piece, 0, len(c.Operations))
	for _, op := range c.Operations {
		if op.Piece != PieceNone {
			queue = append(queue, op.Piece)
		}
	}
	return queue
}

// Holding returns the initially held piece, if any.
func (c *Compiled) Holding() Piece {
	if c.Order == nil {
		return PieceNone
	}
	return c.Order.Holding
}

// MarshalText renders the row as ten characters, 'G' for garbage and '.' for a hole.
func (r Row) MarshalText() ([]byte, error) {
	out := make([]byte, Width)
	for x, filled := range r {
		if filled {
			out[x] = 'G'
		} else {
			out[x] = '.'
		}
	}
	return out, nil
}

// UnmarshalText is the inverse of MarshalText.
func (r *Row) UnmarshalText(text []byte) error {
	if len(text) != Width {
		return fmt.Errorf("tetrlang: row %q must have %d cells", text, Width)
	}
	for x, c := range text {
		switch c {
		case 'G':
			r[x] = true
		case '.':
			r[x] = false
		default:
			return fmt.Errorf("tetrlang: invalid row cell %q", c)
		}
	}
	return nil
}
