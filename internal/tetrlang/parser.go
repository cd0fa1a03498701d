package tetrlang

// Compile parses Tetrlang source of the form board:order:operations.
// On failure it returns a *Error and no program.
func Compile(src string) (*Compiled, error) {
	text := []rune(src)

	var seps []int
	for i, r := range text {
		if r == SectionSeparator {
			seps = append(seps, i)
		}
	}
	if len(seps) != 2 {
		return nil, errorAt(CodeMalformedProgram, -1, 0,
			"program must have exactly 3 sections separated by %q, got %d", SectionSeparator, len(seps)+1)
	}

	p := &parser{text: text}
	board, err := p.board(0, seps[0])
	if err != nil {
		return nil, err
	}
	order, err := p.order(seps[0]+1, seps[1])
	if err != nil {
		return nil, err
	}
	ops, err := p.operations(seps[1]+1, len(text), order != nil)
	if err != nil {
		return nil, err
	}

	if order != nil && len(order.Next) < len(ops) {
		return nil, errorAt(CodeQueueTooShort, -1, 0,
			"next queue has %d pieces but there are %d operations", len(order.Next), len(ops))
	}

	return &Compiled{Board: board, Order: order, Operations: ops}, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and fixtures.
func MustCompile(src string) *Compiled {
	c, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return c
}

// parser walks one source text; every method takes absolute [start, end) offsets
// so errors can point back into the original program.
type parser struct {
	text []rune
}

// board parses comma-separated rows. An empty row repeats the previous one.
func (p *parser) board(start, end int) (Board, error) {
	if start == end {
		return Board{}, nil
	}

	var board Board
	rowStart := start
	for i := start; i <= end; i++ {
		if i < end && p.text[i] != RowSeparator {
			continue
		}
		if rowStart == i {
			if len(board) == 0 {
				return nil, errorAt(CodeEmptyFirstRow, rowStart, 0, "first row cannot be empty")
			}
			board = append(board, board[len(board)-1])
		} else {
			row, err := p.row(rowStart, i)
			if err != nil {
				return nil, err
			}
			board = append(board, row)
		}
		rowStart = i + 1
	}
	return board, nil
}

// row parses one hole pattern: single columns, "a-b" ranges, a leading
// "-b" (0..b) and a trailing "a-" (a..9).
func (p *parser) row(start, end int) (Row, error) {
	row := Row{true, true, true, true, true, true, true, true, true, true}
	holes := func(from, to int) {
		for x := from; x <= to; x++ {
			row[x] = false
		}
	}

	for i := start; i < end; {
		c := p.text[i]
		switch {
		case c == Connector:
			if i != start {
				return row, errorAt(CodeInvalidRange, i, c, "dangling %q in row", Connector)
			}
			if i+1 >= end || !isColumn(p.text[i+1]) {
				return row, p.rangeEndError(i+1, end)
			}
			holes(0, column(p.text[i+1]))
			i += 2

		case isColumn(c):
			from := column(c)
			if i+1 >= end || p.text[i+1] != Connector {
				holes(from, from)
				i++
				continue
			}
			if i+2 == end {
				holes(from, Width-1)
				i += 2
				continue
			}
			if !isColumn(p.text[i+2]) {
				return row, p.rangeEndError(i+2, end)
			}
			to := column(p.text[i+2])
			if to < from {
				return row, errorAt(CodeInvalidRange, i, c, "range %c-%c runs backwards", c, p.text[i+2])
			}
			holes(from, to)
			i += 3

		default:
			return row, errorAt(CodeInvalidColumn, i, c, "invalid column character %q", c)
		}
	}
	return row, nil
}

func (p *parser) rangeEndError(pos, end int) *Error {
	if pos >= end {
		return errorAt(CodeInvalidRange, pos, 0, "range is missing its end column")
	}
	return errorAt(CodeInvalidRange, pos, p.text[pos], "range must end with a column, got %q", p.text[pos])
}

// order parses "[hold]|next" or "next". An empty section means no order.
func (p *parser) order(start, end int) (*Order, error) {
	if start == end {
		return nil, nil
	}

	sep := -1
	for i := start; i < end; i++ {
		if p.text[i] != HoldMarker {
			continue
		}
		if sep >= 0 {
			return nil, errorAt(CodeMalformedOrder, i, HoldMarker, "order has more than one %q", HoldMarker)
		}
		sep = i
	}

	order := &Order{Next: []Piece{}}
	nextStart := start
	if sep >= 0 {
		switch sep - start {
		case 0:
		case 1:
			piece, err := p.piece(start)
			if err != nil {
				return nil, err
			}
			order.Holding = piece
		default:
			return nil, errorAt(CodeMalformedOrder, start, p.text[start],
				"holding must be a single piece, got %q", string(p.text[start:sep]))
		}
		nextStart = sep + 1
	}

	for i := nextStart; i < end; i++ {
		piece, err := p.piece(i)
		if err != nil {
			return nil, err
		}
		order.Next = append(order.Next, piece)
	}
	return order, nil
}

// operations parses lock-separated operations; a trailing lock is optional.
func (p *parser) operations(start, end int, hasOrder bool) ([]Operation, error) {
	if end > start && p.text[end-1] == LockMarker {
		end--
	}
	ops := []Operation{}
	if start == end {
		return ops, nil
	}

	opStart := start
	for i := start; i <= end; i++ {
		if i < end && p.text[i] != LockMarker {
			continue
		}
		op, err := p.operation(opStart, i, hasOrder)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		opStart = i + 1
	}
	return ops, nil
}

func (p *parser) operation(start, end int, hasOrder bool) (Operation, error) {
	op := Operation{Ops: []Op{}}
	i := start
	if i < end && p.text[i] == HoldMarker {
		op.Hold = true
		i++
	}

	if !hasOrder {
		if i >= end {
			return op, errorAt(CodeInvalidPiece, i, 0, "operation needs a piece when no order is given")
		}
		piece, err := p.piece(i)
		if err != nil {
			return op, err
		}
		op.Piece = piece
		i++
	}

	for ; i < end; i++ {
		token, ok := ParseOp(p.text[i])
		if !ok {
			return op, errorAt(CodeInvalidToken, i, p.text[i], "invalid operation %q", p.text[i])
		}
		op.Ops = append(op.Ops, token)
	}
	return op, nil
}

func (p *parser) piece(pos int) (Piece, error) {
	piece, ok := ParsePiece(p.text[pos])
	if !ok {
		return PieceNone, errorAt(CodeInvalidPiece, pos, p.text[pos], "invalid piece %q", p.text[pos])
	}
	return piece, nil
}

func isColumn(r rune) bool {
	return r >= '0' && r <= '9'
}

func column(r rune) int {
	return int(r - '0')
}
