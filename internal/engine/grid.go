// Package engine simulates a compiled Tetrlang program: SRS geometry, the
// playfield, the rules state machine and the session driver that folds a
// program into an ordered sequence of immutable states.
package engine

import (
	"strings"

	"github.com/vovakirdan/tetrlang/internal/tetrlang"
)

// Playfield dimensions.
const (
	GridWidth     = tetrlang.Width
	GridHeight    = 40
	DisplayHeight = 20 // rows normally visible, counted from the bottom
)

// Cell is one playfield square: empty, a locked piece, or garbage.
type Cell uint8

const (
	CellEmpty   Cell = 0
	CellGarbage Cell = 8
)

// PieceCell returns the cell a locked piece leaves behind.
func PieceCell(p tetrlang.Piece) Cell {
	return Cell(p)
}

// Piece returns the piece that filled the cell, or PieceNone for empty and garbage cells.
func (c Cell) Piece() tetrlang.Piece {
	if c == CellEmpty || c == CellGarbage {
		return tetrlang.PieceNone
	}
	return tetrlang.Piece(c)
}

// Grid is the playfield, row 0 at the bottom. It is a value type:
// assigning or passing a Grid copies every cell.
type Grid [GridHeight][GridWidth]Cell

// BoardToGrid places the board rows, bottom first, into an empty grid.
// Rows past the grid height are dropped.
func BoardToGrid(board tetrlang.Board) Grid {
	var g Grid
	for y, row := range board {
		if y >= GridHeight {
			break
		}
		for x, filled := range row {
			if filled {
				g[y][x] = CellGarbage
			}
		}
	}
	return g
}

// InBounds reports whether (x, y) lies on the grid.
func InBounds(x, y int) bool {
	return x >= 0 && x < GridWidth && y >= 0 && y < GridHeight
}

// At returns the cell at (x, y); out-of-bounds reads as garbage.
func (g Grid) At(x, y int) Cell {
	if !InBounds(x, y) {
		return CellGarbage
	}
	return g[y][x]
}

// Fillable reports whether (x, y) is in bounds and empty.
func (g Grid) Fillable(x, y int) bool {
	return InBounds(x, y) && g[y][x] == CellEmpty
}

// RowFull reports whether every cell of row y is occupied.
func (g Grid) RowFull(y int) bool {
	for _, c := range g[y] {
		if c == CellEmpty {
			return false
		}
	}
	return true
}

// RowEmpty reports whether row y has no occupied cell.
func (g Grid) RowEmpty(y int) bool {
	for _, c := range g[y] {
		if c != CellEmpty {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the whole grid is empty.
func (g Grid) IsEmpty() bool {
	return g == Grid{}
}

// ClearLines removes full rows and pads empty rows at the top. The returned
// indices are ascending and refer to the rows before clearing.
func (g Grid) ClearLines() (Grid, []int) {
	var out Grid
	var cleared []int
	next := 0
	for y := range GridHeight {
		if g.RowFull(y) {
			cleared = append(cleared, y)
			continue
		}
		out[next] = g[y]
		next++
	}
	return out, cleared
}

// Rows encodes the occupied part of the grid bottom-first: '.' for empty,
// 'G' for garbage and the piece letter for locked pieces.
func (g Grid) Rows() []string {
	top := 0
	for y := range GridHeight {
		if !g.RowEmpty(y) {
			top = y + 1
		}
	}
	rows := make([]string, top)
	var sb strings.Builder
	for y := range top {
		sb.Reset()
		for x := range GridWidth {
			switch c := g[y][x]; c {
			case CellEmpty:
				sb.WriteByte('.')
			case CellGarbage:
				sb.WriteByte('G')
			default:
				sb.WriteString(c.Piece().String())
			}
		}
		rows[y] = sb.String()
	}
	return rows
}
