// Package render draws simulation states as text frames and computes how
// long each frame stays on screen.
package render

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/tetrlang/internal/config"
	"github.com/vovakirdan/tetrlang/internal/core"
	"github.com/vovakirdan/tetrlang/internal/engine"
	"github.com/vovakirdan/tetrlang/internal/tetrlang"
)

// Glyphs. Every playfield cell is two columns wide.
const (
	glyphBlock = "██"
	glyphGhost = "░░"
	glyphFlash = "▓▓"
	glyphEmpty = " ."
)

// Layout, in screen columns.
const (
	sideWidth  = 14
	boardX     = sideWidth + 1
	boardWidth = engine.GridWidth*2 + 2
	nextX      = boardX + boardWidth + 1
	nextWidth  = 10
	nextStride = 3
	holdHeight = 4
	overlayY   = holdHeight + 1
)

// PieceColors maps each tetromino to its guideline color.
var PieceColors = map[tetrlang.Piece]core.Color{
	tetrlang.PieceI: core.ColorCyan,
	tetrlang.PieceJ: core.ColorBlue,
	tetrlang.PieceL: core.ColorOrange,
	tetrlang.PieceO: core.ColorYellow,
	tetrlang.PieceS: core.ColorGreen,
	tetrlang.PieceZ: core.ColorRed,
	tetrlang.PieceT: core.ColorMagenta,
}

// Frame is one rendered state.
type Frame struct {
	Index  int
	Tag    engine.Tag
	Delay  time.Duration // zero means the frame is skipped during playback
	Screen *core.Screen
}

// String returns the frame as plain text.
func (f Frame) String() string {
	return f.Screen.String()
}

// Renderer turns states into frames. It holds no mutable state and is safe
// for concurrent use.
type Renderer struct {
	cfg     config.RenderConfig
	visible int
	board   core.Rect
	hold    core.Rect
	next    core.Rect
	width   int
	height  int
}

// New creates a renderer from the render configuration.
func New(cfg config.RenderConfig) *Renderer {
	cfg.NextCount = min(max(cfg.NextCount, 0), config.MaxNextCount)
	cfg.BufferRows = min(max(cfg.BufferRows, 0), engine.GridHeight-engine.DisplayHeight)

	r := &Renderer{cfg: cfg, visible: engine.DisplayHeight + cfg.BufferRows}
	r.board = core.Rect{X: boardX, Y: 0, W: boardWidth, H: r.visible + 2}
	r.hold = core.Rect{X: 0, Y: 0, W: sideWidth, H: holdHeight}
	r.width = r.board.Right()
	if cfg.NextCount > 0 {
		r.next = core.Rect{X: nextX, Y: 0, W: nextWidth, H: cfg.NextCount*nextStride + 1}
		r.width = r.next.Right()
	}
	r.height = max(r.board.H, r.next.H)
	return r
}

// Size returns the frame dimensions in characters.
func (r *Renderer) Size() (width, height int) {
	return r.width, r.height
}

// Frame renders a single state. last marks the final state of a simulation,
// which is held on screen longer.
func (r *Renderer) Frame(s engine.State, index int, last bool) Frame {
	scr := core.NewScreen(r.width, r.height)
	r.Draw(scr, s)
	return Frame{
		Index:  index,
		Tag:    s.Tag,
		Delay:  r.Delay(s.Tag, last),
		Screen: scr,
	}
}

// RenderAll renders every state in parallel. The frames keep the order of states.
func (r *Renderer) RenderAll(ctx context.Context, states []engine.State) ([]Frame, error) {
	frames := make([]Frame, len(states))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, s := range states {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			frames[i] = r.Frame(s, i, i == len(states)-1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("render: cannot render frames: %w", err)
	}
	return frames, nil
}

// Delay returns how long a state with the given tag stays on screen.
// Tags without a configured ratio use 1.0. Non-zero delays are raised to the
// frame floor; zero stays zero so the frame is skipped.
func (r *Renderer) Delay(tag engine.Tag, last bool) time.Duration {
	ratio, ok := r.cfg.Delays[string(tag)]
	if !ok {
		ratio = 1
	}
	if last {
		ratio = r.cfg.EndRatio
	}
	base := r.cfg.BaseDelay().Milliseconds()
	ms := int64(math.Ceil(ratio * float64(base)))
	if ms <= 0 {
		return 0
	}
	return time.Duration(max(ms, int64(r.cfg.FrameFloorMS))) * time.Millisecond
}

// Playable drops the frames with no delay.
func Playable(frames []Frame) []Frame {
	return slices.DeleteFunc(slices.Clone(frames), func(f Frame) bool { return f.Delay == 0 })
}

// Draw renders a state into scr, which must be at least Size() large.
func (r *Renderer) Draw(scr *core.Screen, s engine.State) {
	scr.Clear()
	r.drawBoard(scr, s)
	r.drawHold(scr, s)
	r.drawNext(scr, s)
	r.drawOverlays(scr, s)
	r.drawKey(scr, s)
}

func (r *Renderer) color(c core.Color) core.Color {
	if !r.cfg.Color {
		return core.ColorDefault
	}
	return c
}

// cellAt returns the screen position of grid cell (x, y), or false when the
// row is above the visible area.
func (r *Renderer) cellAt(x, y int) (int, int, bool) {
	if y < 0 || y >= r.visible || x < 0 || x >= engine.GridWidth {
		return 0, 0, false
	}
	return r.board.X + 1 + x*2, r.board.Y + r.visible - y, true
}

func (r *Renderer) drawBoard(scr *core.Screen, s engine.State) {
	scr.DrawBox(r.board, r.color(core.ColorWhite))

	for y := range r.visible {
		flash := slices.Contains(s.ClearingLines, y)
		for x := range engine.GridWidth {
			sx, sy, _ := r.cellAt(x, y)
			cell := s.Grid.At(x, y)
			switch {
			case flash:
				scr.DrawText(sx, sy, glyphFlash, r.color(core.ColorBrightWhite))
			case cell == engine.CellEmpty:
				scr.DrawText(sx, sy, glyphEmpty, r.color(core.ColorDarkGray))
			case cell == engine.CellGarbage:
				scr.DrawText(sx, sy, glyphBlock, r.color(core.ColorGray))
			default:
				scr.DrawText(sx, sy, glyphBlock, r.color(PieceColors[cell.Piece()]))
			}
		}
	}

	if s.Piece == tetrlang.PieceNone {
		return
	}
	color := r.color(PieceColors[s.Piece])
	if r.cfg.Ghost {
		if pos, ok := s.Ghost(); ok && pos != s.Position {
			for _, c := range engine.Cells(s.Piece, s.Rotation, pos) {
				if sx, sy, ok := r.cellAt(c.X, c.Y); ok && s.Grid.At(c.X, c.Y) == engine.CellEmpty {
					scr.DrawText(sx, sy, glyphGhost, color)
				}
			}
		}
	}
	for _, c := range s.Cells() {
		if sx, sy, ok := r.cellAt(c.X, c.Y); ok {
			scr.DrawText(sx, sy, glyphBlock, color)
		}
	}
}

// drawPiece draws a piece in spawn orientation centered in area, starting at row y.
func (r *Renderer) drawPiece(scr *core.Screen, area core.Rect, y int, p tetrlang.Piece, c core.Color) {
	cells := engine.Cells(p, engine.North, engine.Point{})
	if len(cells) == 0 {
		return
	}
	minX, maxX, maxY := cells[0].X, cells[0].X, cells[0].Y
	for _, cell := range cells[1:] {
		minX = min(minX, cell.X)
		maxX = max(maxX, cell.X)
		maxY = max(maxY, cell.Y)
	}
	x0 := area.X + (area.W-(maxX-minX+1)*2)/2
	for _, cell := range cells {
		scr.DrawText(x0+(cell.X-minX)*2, y+maxY-cell.Y, glyphBlock, c)
	}
}

func (r *Renderer) drawHold(scr *core.Screen, s engine.State) {
	scr.DrawBox(r.hold, r.color(core.ColorWhite))
	scr.DrawText(r.hold.X+2, r.hold.Y, "HOLD", r.color(core.ColorWhite))
	if s.Hold == tetrlang.PieceNone {
		return
	}
	c := PieceColors[s.Hold]
	if !s.CanHold {
		c = core.ColorDarkGray
	}
	inner := r.hold.Inner()
	r.drawPiece(scr, inner, inner.Y, s.Hold, r.color(c))
}

func (r *Renderer) drawNext(scr *core.Screen, s engine.State) {
	if r.cfg.NextCount == 0 {
		return
	}
	scr.DrawBox(r.next, r.color(core.ColorWhite))
	scr.DrawText(r.next.X+2, r.next.Y, "NEXT", r.color(core.ColorWhite))
	inner := r.next.Inner()
	for i, p := range s.Preview(r.cfg.NextCount) {
		r.drawPiece(scr, inner, inner.Y+i*nextStride, p, r.color(PieceColors[p]))
	}
}

func (r *Renderer) drawOverlays(scr *core.Screen, s engine.State) {
	area := core.Rect{X: 0, Y: overlayY, W: sideWidth, H: r.height - overlayY}
	for i, line := range Overlays(s) {
		scr.DrawTextCentered(area, area.Y+i, line, r.color(core.ColorBrightWhite))
	}
}

func (r *Renderer) drawKey(scr *core.Screen, s engine.State) {
	if s.Key == engine.KeyNone {
		return
	}
	c := core.ColorBrightWhite
	label := "[" + s.Key.String() + "]"
	if s.KeyUp {
		c = core.ColorDarkGray
		label = " " + s.Key.String() + " "
	}
	area := core.Rect{X: 0, Y: 0, W: sideWidth, H: r.height}
	scr.DrawTextCentered(area, r.height-2, label, r.color(c))
}

var clearNames = []string{"", "SINGLE", "DOUBLE", "TRIPLE", "QUAD"}

// Overlays returns the announcement lines for a state: spin, line clear,
// perfect clear, combo and back-to-back.
func Overlays(s engine.State) []string {
	var lines []string
	switch s.Spin {
	case engine.SpinFull:
		lines = append(lines, s.SpinPiece.String()+"-SPIN")
	case engine.SpinMini:
		lines = append(lines, "MINI "+s.SpinPiece.String()+"-SPIN")
	}
	if n := s.Lines(); n > 0 {
		if n < len(clearNames) {
			lines = append(lines, clearNames[n])
		} else {
			lines = append(lines, fmt.Sprintf("%d LINES", n))
		}
	}
	if s.PerfectClear() {
		lines = append(lines, "PERFECT CLEAR")
	}
	if s.Combo > 1 {
		lines = append(lines, fmt.Sprintf("COMBO %d", s.Combo))
	}
	if s.B2B > 1 {
		lines = append(lines, fmt.Sprintf("B2B x%d", s.B2B))
	}
	return lines
}
