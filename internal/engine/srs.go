package engine

import "github.com/vovakirdan/tetrlang/internal/tetrlang"

// kickTable maps [from][to] to the trial offsets, tried in order.
type kickTable [4][4][]Point

// SRS wall kicks for J, L, S, T and Z; 180 degree entries follow SRS+.
var jlstzKicks = kickTable{
	North: {
		East:  {{0, 0}, {-1, 0}, {-1, 1}, {0, -2}, {-1, -2}},
		South: {{0, 0}, {0, 1}, {1, 1}, {-1, 1}, {1, 0}, {-1, 0}},
		West:  {{0, 0}, {1, 0}, {1, 1}, {0, -2}, {1, -2}},
	},
	East: {
		North: {{0, 0}, {1, 0}, {1, -1}, {0, 2}, {1, 2}},
		South: {{0, 0}, {1, 0}, {1, -1}, {0, 2}, {1, 2}},
		West:  {{0, 0}, {1, 0}, {1, 2}, {1, 1}, {0, 2}, {0, 1}},
	},
	South: {
		North: {{0, 0}, {0, -1}, {-1, -1}, {1, -1}, {-1, 0}, {1, 0}},
		East:  {{0, 0}, {-1, 0}, {-1, 1}, {0, -2}, {-1, -2}},
		West:  {{0, 0}, {1, 0}, {1, 1}, {0, -2}, {1, -2}},
	},
	West: {
		North: {{0, 0}, {-1, 0}, {-1, -1}, {0, 2}, {-1, 2}},
		East:  {{0, 0}, {-1, 0}, {-1, 2}, {-1, 1}, {0, 2}, {0, 1}},
		South: {{0, 0}, {-1, 0}, {-1, -1}, {0, 2}, {-1, 2}},
	},
}

// SRS wall kicks for I.
var iKicks = kickTable{
	North: {
		East:  {{0, 0}, {-2, 0}, {1, 0}, {-2, -1}, {1, 2}},
		South: {{0, 0}, {0, 1}},
		West:  {{0, 0}, {-1, 0}, {2, 0}, {-1, 2}, {2, -1}},
	},
	East: {
		North: {{0, 0}, {2, 0}, {-1, 0}, {2, 1}, {-1, -2}},
		South: {{0, 0}, {-1, 0}, {2, 0}, {-1, 2}, {2, -1}},
		West:  {{0, 0}, {1, 0}},
	},
	South: {
		North: {{0, 0}, {0, -1}},
		East:  {{0, 0}, {1, 0}, {-2, 0}, {1, -2}, {-2, 1}},
		West:  {{0, 0}, {2, 0}, {-1, 0}, {2, 1}, {-1, -2}},
	},
	West: {
		North: {{0, 0}, {1, 0}, {-2, 0}, {1, -2}, {-2, 1}},
		East:  {{0, 0}, {-1, 0}},
		South: {{0, 0}, {-2, 0}, {1, 0}, {-2, -1}, {1, 2}},
	},
}

var noKick = []Point{{0, 0}}

// Kicks returns the ordered trial offsets for rotating p from one state to another.
func Kicks(p tetrlang.Piece, from, to Rotation) []Point {
	from, to = from%4, to%4
	if from == to {
		return noKick
	}
	switch p {
	case tetrlang.PieceO:
		return noKick
	case tetrlang.PieceI:
		return iKicks[from][to]
	default:
		return jlstzKicks[from][to]
	}
}

// KickTest tries each kick offset in order and returns the first position
// where the piece fits in rotation to.
func KickTest(g Grid, p tetrlang.Piece, pos Point, from, to Rotation) (Point, bool) {
	for _, k := range Kicks(p, from, to) {
		candidate := pos.Add(k)
		if Fits(g, p, to, candidate) {
			return candidate, true
		}
	}
	return Point{}, false
}
