package engine

import (
	"fmt"

	"github.com/vovakirdan/tetrlang/internal/tetrlang"
)

// Point is a grid coordinate or offset; y grows upward.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Rotation is one of the four SRS orientation states.
type Rotation uint8

const (
	North Rotation = iota // spawn state "0"
	East                  // "R"
	South                 // "2"
	West                  // "L"
)

// MarshalText implements encoding.TextMarshaler.
func (r Rotation) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rotation) UnmarshalText(text []byte) error {
	for _, rot := range []Rotation{North, East, South, West} {
		if rot.String() == string(text) {
			*r = rot
			return nil
		}
	}
	return fmt.Errorf("engine: unknown rotation %q", text)
}

func (r Rotation) String() string {
	switch r {
	case North:
		return "0"
	case East:
		return "R"
	case South:
		return "2"
	case West:
		return "L"
	default:
		return "?"
	}
}

// NextRotation applies a rotation token to the current state.
func NextRotation(current Rotation, kind tetrlang.RotateKind) Rotation {
	var turn Rotation
	switch kind {
	case tetrlang.RotateClockwise:
		turn = 1
	case tetrlang.RotateFlip:
		turn = 2
	case tetrlang.RotateCounterClockwise:
		turn = 3
	}
	return (current + turn) % 4
}

// SpawnPosition is where every new or swapped-in piece appears, just above
// the visible field.
var SpawnPosition = Point{X: 4, Y: 21}

// shapes holds the SRS cells of each piece per rotation, relative to the
// piece position.
var shapes = map[tetrlang.Piece][4][4]Point{
	tetrlang.PieceT: {
		{{-1, 0}, {0, 0}, {1, 0}, {0, 1}},
		{{0, 1}, {0, 0}, {0, -1}, {1, 0}},
		{{-1, 0}, {0, 0}, {1, 0}, {0, -1}},
		{{0, 1}, {0, 0}, {0, -1}, {-1, 0}},
	},
	tetrlang.PieceJ: {
		{{-1, 1}, {-1, 0}, {0, 0}, {1, 0}},
		{{1, 1}, {0, 1}, {0, 0}, {0, -1}},
		{{-1, 0}, {0, 0}, {1, 0}, {1, -1}},
		{{0, 1}, {0, 0}, {0, -1}, {-1, -1}},
	},
	tetrlang.PieceL: {
		{{1, 1}, {-1, 0}, {0, 0}, {1, 0}},
		{{0, 1}, {0, 0}, {0, -1}, {1, -1}},
		{{-1, 0}, {0, 0}, {1, 0}, {-1, -1}},
		{{-1, 1}, {0, 1}, {0, 0}, {0, -1}},
	},
	tetrlang.PieceS: {
		{{0, 1}, {1, 1}, {-1, 0}, {0, 0}},
		{{0, 1}, {0, 0}, {1, 0}, {1, -1}},
		{{0, 0}, {1, 0}, {-1, -1}, {0, -1}},
		{{-1, 1}, {-1, 0}, {0, 0}, {0, -1}},
	},
	tetrlang.PieceZ: {
		{{-1, 1}, {0, 1}, {0, 0}, {1, 0}},
		{{1, 1}, {0, 0}, {1, 0}, {0, -1}},
		{{-1, 0}, {0, 0}, {0, -1}, {1, -1}},
		{{0, 1}, {-1, 0}, {0, 0}, {-1, -1}},
	},
	tetrlang.PieceI: {
		{{-1, 0}, {0, 0}, {1, 0}, {2, 0}},
		{{1, 1}, {1, 0}, {1, -1}, {1, -2}},
		{{-1, -1}, {0, -1}, {1, -1}, {2, -1}},
		{{0, 1}, {0, 0}, {0, -1}, {0, -2}},
	},
	tetrlang.PieceO: {
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
	},
}

// Cells returns the absolute cells of a piece at pos in the given rotation.
// PieceNone occupies no cells.
func Cells(p tetrlang.Piece, rot Rotation, pos Point) []Point {
	shape, ok := shapes[p]
	if !ok {
		return nil
	}
	cells := make([]Point, 0, 4)
	for _, c := range shape[rot%4] {
		cells = append(cells, pos.Add(c))
	}
	return cells
}

// Fits reports whether every cell of the piece is fillable.
func Fits(g Grid, p tetrlang.Piece, rot Rotation, pos Point) bool {
	for _, c := range Cells(p, rot, pos) {
		if !g.Fillable(c.X, c.Y) {
			return false
		}
	}
	return true
}

// Stamp returns a copy of g with the piece written into it. Cells outside
// the grid are skipped.
func Stamp(g Grid, p tetrlang.Piece, rot Rotation, pos Point) Grid {
	for _, c := range Cells(p, rot, pos) {
		if InBounds(c.X, c.Y) {
			g[c.Y][c.X] = PieceCell(p)
		}
	}
	return g
}
