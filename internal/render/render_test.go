package render

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/tetrlang/internal/config"
	"github.com/vovakirdan/tetrlang/internal/core"
	"github.com/vovakirdan/tetrlang/internal/engine"
	"github.com/vovakirdan/tetrlang/internal/tetrlang"
)

func newRenderer() *Renderer {
	return New(config.Default().Render)
}

func play(t *testing.T, src string) engine.Result {
	t.Helper()
	res, err := engine.Play(src, engine.DefaultLimits())
	if err != nil {
		t.Fatalf("Play(%q) failed: %v", src, err)
	}
	return res
}

func TestSize(t *testing.T) {
	tests := []struct {
		name          string
		modify        func(*config.RenderConfig)
		width, height int
	}{
		{"default", func(*config.RenderConfig) {}, 48, engine.DisplayHeight + 3 + 2},
		{"no buffer", func(c *config.RenderConfig) { c.BufferRows = 0 }, 48, engine.DisplayHeight + 2},
		{"no preview", func(c *config.RenderConfig) { c.NextCount = 0 }, 37, engine.DisplayHeight + 3 + 2},
		{"clamped preview", func(c *config.RenderConfig) { c.NextCount = 9 }, 48, engine.DisplayHeight + 3 + 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default().Render
			tt.modify(&cfg)
			w, h := New(cfg).Size()
			if w != tt.width || h != tt.height {
				t.Errorf("Size() = %dx%d, want %dx%d", w, h, tt.width, tt.height)
			}
		})
	}
}

func TestDelay(t *testing.T) {
	cfg := config.Default().Render
	cfg.BaseDelayMS = 200
	cfg.Delays = map[string]float64{"init": 0, "[": 0.05, ";": 2, "o": 0}
	cfg.EndRatio = 5
	r := New(cfg)

	tests := []struct {
		tag  engine.Tag
		last bool
		want time.Duration
	}{
		{engine.TagInit, false, 0},
		{engine.TagSpawn, false, 200 * time.Millisecond}, // missing ratio is 1.0
		{"[", false, 20 * time.Millisecond},              // 10ms raised to the floor
		{";", false, 400 * time.Millisecond},
		{"o", false, 0},
		{"o", true, time.Second},
		{engine.TagInit, true, time.Second},
	}

	for _, tt := range tests {
		if got := r.Delay(tt.tag, tt.last); got != tt.want {
			t.Errorf("Delay(%q, %v) = %v, want %v", tt.tag, tt.last, got, tt.want)
		}
	}
}

func TestDelayRoundsUp(t *testing.T) {
	cfg := config.Default().Render
	cfg.BaseDelayMS = 250
	cfg.Delays = map[string]float64{"r": 0.333}
	if got := New(cfg).Delay("r", false); got != 84*time.Millisecond {
		t.Errorf("Delay(r) = %v, want 84ms", got)
	}
}

func TestPlayable(t *testing.T) {
	frames := []Frame{{Index: 0}, {Index: 1, Delay: time.Second}, {Index: 2}, {Index: 3, Delay: 1}}
	got := Playable(frames)
	if len(got) != 2 || got[0].Index != 1 || got[1].Index != 3 {
		t.Errorf("Playable() = %+v, want frames 1 and 3", got)
	}
	if len(frames) != 4 || frames[0].Index != 0 {
		t.Error("Playable() modified its input")
	}
}

func TestOverlays(t *testing.T) {
	tests := []struct {
		name  string
		state engine.State
		want  []string
	}{
		{"nothing", engine.State{}, nil},
		{"t-spin double", engine.State{Spin: engine.SpinFull, SpinPiece: tetrlang.PieceT, ClearingLines: []int{0, 1}, Combo: 1, B2B: 1},
			[]string{"T-SPIN", "DOUBLE"}},
		{"mini", engine.State{Spin: engine.SpinMini, SpinPiece: tetrlang.PieceT}, []string{"MINI T-SPIN"}},
		{"combo and b2b", engine.State{ClearingLines: []int{0, 1, 2, 3}, Combo: 3, B2B: 2},
			[]string{"QUAD", "COMBO 3", "B2B x2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// rows above the cleared ones are non-empty so no perfect clear is reported
			tt.state.Grid[10][0] = engine.CellGarbage
			if got := Overlays(tt.state); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Overlays() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOverlaysPerfectClear(t *testing.T) {
	res := play(t, "8-,:O:]")
	var locked engine.State
	for _, s := range res.States {
		if s.Tag == ";" {
			locked = s
		}
	}
	got := Overlays(locked)
	if !reflect.DeepEqual(got, []string{"DOUBLE", "PERFECT CLEAR"}) {
		t.Errorf("Overlays() = %q", got)
	}
}

func TestFrameBoard(t *testing.T) {
	r := newRenderer()
	res := play(t, "0-2::")
	f := r.Frame(res.States[0], 0, false)

	_, h := r.Size()
	bottom := f.Screen.Row(h - 2)
	want := "│" + strings.Repeat(" .", 3) + strings.Repeat("██", 7) + "│"
	if !strings.Contains(bottom, want) {
		t.Errorf("bottom row = %q, want it to contain %q", bottom, want)
	}
	sx, sy, _ := r.cellAt(3, 0)
	if c := f.Screen.GetCell(sx, sy); c.Color != core.ColorGray {
		t.Errorf("garbage color = %v, want gray", c.Color)
	}
	if f.Tag != engine.TagInit || f.Delay != 0 {
		t.Errorf("init frame Tag/Delay = %q/%v", f.Tag, f.Delay)
	}
}

func TestFrameActivePieceAndGhost(t *testing.T) {
	r := newRenderer()
	res := play(t, ":T:")
	spawn := res.States[1]
	if spawn.Tag != engine.TagSpawn {
		t.Fatalf("state 1 tag = %q", spawn.Tag)
	}
	f := r.Frame(spawn, 1, false)

	// T at (4,21) covers x 3..5 on row 21.
	sx, sy, ok := r.cellAt(3, 21)
	if !ok {
		t.Fatal("spawn row is not visible")
	}
	if c := f.Screen.GetCell(sx, sy); c.Rune != '█' || c.Color != core.ColorMagenta {
		t.Errorf("active cell = %+v, want magenta block", c)
	}
	// ghost rests on the floor
	gx, gy, _ := r.cellAt(3, 0)
	if c := f.Screen.GetCell(gx, gy); c.Rune != '░' {
		t.Errorf("ghost cell = %+v, want ░", c)
	}

	cfg := config.Default().Render
	cfg.Ghost = false
	f = New(cfg).Frame(spawn, 1, false)
	if c := f.Screen.GetCell(gx, gy); c.Rune == '░' {
		t.Error("ghost drawn with ghost disabled")
	}
}

func TestFrameHoldDimmed(t *testing.T) {
	r := newRenderer()
	res := play(t, ":TIJ:|")
	var held engine.State
	for _, s := range res.States {
		if s.Tag == "|" {
			held = s
		}
	}
	if held.Hold != tetrlang.PieceT || held.CanHold {
		t.Fatalf("held state Hold/CanHold = %v/%v", held.Hold, held.CanHold)
	}
	f := r.Frame(held, 0, false)

	found := false
	inner := r.hold.Inner()
	for y := inner.Y; y < inner.Bottom(); y++ {
		for x := inner.X; x < inner.Right(); x++ {
			if c := f.Screen.GetCell(x, y); c.Rune == '█' {
				found = true
				if c.Color != core.ColorDarkGray {
					t.Errorf("hold cell color = %v, want dark gray", c.Color)
				}
			}
		}
	}
	if !found {
		t.Error("hold piece not drawn")
	}
	if !strings.Contains(f.Screen.Row(0), "HOLD") || !strings.Contains(f.Screen.Row(0), "NEXT") {
		t.Errorf("top row = %q, want HOLD and NEXT titles", f.Screen.Row(0))
	}
}

func TestFrameNextPreview(t *testing.T) {
	cfg := config.Default().Render
	cfg.NextCount = 2
	r := New(cfg)
	res := play(t, ":TIJL:")
	f := r.Frame(res.States[1], 1, false)

	// I then J: the first preview slot is cyan, the second blue.
	colors := map[core.Color]bool{}
	inner := r.next.Inner()
	for y := inner.Y; y < inner.Bottom(); y++ {
		for x := inner.X; x < inner.Right(); x++ {
			if c := f.Screen.GetCell(x, y); c.Rune == '█' {
				colors[c.Color] = true
			}
		}
	}
	if !colors[core.ColorCyan] || !colors[core.ColorBlue] || colors[core.ColorOrange] {
		t.Errorf("preview colors = %v, want I and J only", colors)
	}
}

func TestFrameWithoutColor(t *testing.T) {
	cfg := config.Default().Render
	cfg.Color = false
	r := New(cfg)
	res := play(t, "0-2:T:")
	f := r.Frame(res.States[1], 1, false)

	w, h := r.Size()
	for y := range h {
		for x := range w {
			if c := f.Screen.GetCell(x, y); c.Color != core.ColorDefault {
				t.Fatalf("cell (%d, %d) has color %v with color disabled", x, y, c.Color)
			}
		}
	}
}

func TestFrameKeyLabel(t *testing.T) {
	r := newRenderer()
	s := engine.State{Key: engine.KeyLeft}
	_, h := r.Size()

	f := r.Frame(s, 0, false)
	if row := f.Screen.Row(h - 2); !strings.Contains(row, "[LEFT]") {
		t.Errorf("pressed key row = %q, want [LEFT]", row)
	}

	s.KeyUp = true
	f = r.Frame(s, 0, false)
	if row := f.Screen.Row(h - 2); strings.Contains(row, "[") || !strings.Contains(row, "LEFT") {
		t.Errorf("released key row = %q, want plain LEFT", row)
	}
}

func TestFrameClearingFlash(t *testing.T) {
	r := newRenderer()
	res := play(t, "8-:O:]")
	var locked engine.State
	for _, s := range res.States {
		if s.Tag == ";" {
			locked = s
		}
	}
	if locked.Lines() != 1 {
		t.Fatalf("lock cleared %d lines, want 1", locked.Lines())
	}
	f := r.Frame(locked, 0, false)
	sx, sy, _ := r.cellAt(0, 0)
	if c := f.Screen.GetCell(sx, sy); c.Rune != '▓' {
		t.Errorf("clearing cell = %+v, want flash", c)
	}
}

func TestRenderAllKeepsOrder(t *testing.T) {
	r := newRenderer()
	res := play(t, "2,,,,-1,-2,,,-3::Jr[;Tr[;S[r_r;Z[_r;")

	frames, err := r.RenderAll(context.Background(), res.States)
	if err != nil {
		t.Fatalf("RenderAll() failed: %v", err)
	}
	if len(frames) != len(res.States) {
		t.Fatalf("len(frames) = %d, want %d", len(frames), len(res.States))
	}
	for i, f := range frames {
		if f.Index != i || f.Tag != res.States[i].Tag {
			t.Errorf("frame %d Index/Tag = %d/%q, want %d/%q", i, f.Index, f.Tag, i, res.States[i].Tag)
		}
		if want := r.Frame(res.States[i], i, i == len(frames)-1).String(); f.String() != want {
			t.Errorf("frame %d differs from a sequential render", i)
		}
	}
	if last := frames[len(frames)-1]; last.Delay != r.Delay(last.Tag, true) {
		t.Errorf("last frame Delay = %v, want end delay", last.Delay)
	}
}

func TestRenderAllCanceled(t *testing.T) {
	r := newRenderer()
	res := play(t, ":T:;")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.RenderAll(ctx, res.States); !errors.Is(err, context.Canceled) {
		t.Errorf("RenderAll() error = %v, want context.Canceled", err)
	}
}
