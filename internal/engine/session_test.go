package engine

import (
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/vovakirdan/tetrlang/internal/tetrlang"
)

func play(t *testing.T, src string) Result {
	t.Helper()
	res, err := Play(src, Limits{})
	if err != nil {
		t.Fatalf("Play(%q) failed: %v", src, err)
	}
	return res
}

// lockStates returns the locked state of every completed lock.
func lockStates(res Result) []State {
	var out []State
	for i, s := range res.States {
		if s.Tag == lockTag && i+1 < len(res.States) && res.States[i+1].Tag == TagSpawn {
			out = append(out, s)
		}
	}
	return out
}

func TestPlayExample(t *testing.T) {
	res, err := Play("2,,,,-1,-2,,,-3::Jr[;Tr[;S[r_r;Z[_r;", DefaultLimits())
	if err != nil {
		t.Fatalf("Play() failed: %v", err)
	}
	if !res.Completed() {
		t.Fatalf("Outcome = %v (%s), want completed", res.Outcome, res.Reason)
	}
	if len(res.States) < 2+4*2 {
		t.Errorf("len(States) = %d, want at least %d", len(res.States), 2+4*2)
	}
	if res.States[0].Tag != TagInit || res.States[1].Tag != TagSpawn {
		t.Errorf("first tags = %q, %q, want init, spawn", res.States[0].Tag, res.States[1].Tag)
	}
	if res.Summary.Locks != 4 || res.Summary.Operations != 4 {
		t.Errorf("Summary = %+v, want 4 locks and 4 operations", res.Summary)
	}
	if last := res.Last(); last.Piece != tetrlang.PieceNone || last.Tag != TagSpawn {
		t.Errorf("last state Piece/Tag = %v/%q, want none/spawn", last.Piece, last.Tag)
	}
}

func TestSimulateStatesAreOrdered(t *testing.T) {
	res := play(t, ":TI:[;]")
	var tags []string
	for _, s := range res.States {
		tags = append(tags, string(s.Tag))
	}
	want := "init spawn [ [ [ < ; spawn ] ] ] > ; spawn"
	if got := strings.Join(tags, " "); got != want {
		t.Errorf("tags = %q, want %q", got, want)
	}
}

func TestComboCounter(t *testing.T) {
	res := play(t, "8-,,,,,:OOO:];];]")
	locks := lockStates(res)
	if len(locks) != 3 {
		t.Fatalf("len(locks) = %d, want 3", len(locks))
	}
	for i, l := range locks {
		if l.Lines() != 2 {
			t.Errorf("lock %d cleared %d lines, want 2", i, l.Lines())
		}
		if l.Combo != i+1 {
			t.Errorf("lock %d Combo = %d, want %d", i, l.Combo, i+1)
		}
	}
	if res.Summary.MaxCombo != 3 {
		t.Errorf("MaxCombo = %d, want 3", res.Summary.MaxCombo)
	}
}

func TestComboResetsOnEmptyLock(t *testing.T) {
	res := play(t, "8-,,,:OOO:];>;]")
	locks := lockStates(res)
	want := []int{1, 0, 1}
	if len(locks) != len(want) {
		t.Fatalf("len(locks) = %d, want %d", len(locks), len(want))
	}
	for i, l := range locks {
		if l.Combo != want[i] {
			t.Errorf("lock %d Combo = %d, want %d", i, l.Combo, want[i])
		}
	}
}

func TestBackToBack(t *testing.T) {
	res := play(t, "9,,,,,,,,8-,,08-:IIO:r];r];]")
	if !res.Completed() {
		t.Fatalf("Outcome = %v (%s), want completed", res.Outcome, res.Reason)
	}
	locks := lockStates(res)
	if len(locks) != 3 {
		t.Fatalf("len(locks) = %d, want 3", len(locks))
	}

	tests := []struct {
		lines, combo, b2b int
	}{
		{4, 1, 1},
		{4, 2, 2},
		{2, 3, 0},
	}
	for i, tt := range tests {
		l := locks[i]
		if l.Lines() != tt.lines || l.Combo != tt.combo || l.B2B != tt.b2b {
			t.Errorf("lock %d lines/combo/b2b = %d/%d/%d, want %d/%d/%d",
				i, l.Lines(), l.Combo, l.B2B, tt.lines, tt.combo, tt.b2b)
		}
	}
	if res.Summary.MaxB2B != 2 || res.Summary.Lines != 10 {
		t.Errorf("Summary = %+v, want MaxB2B 2 and 10 lines", res.Summary)
	}
}

func TestPerfectClearLock(t *testing.T) {
	res := play(t, "8-,:O:]")
	locks := lockStates(res)
	if len(locks) != 1 {
		t.Fatalf("len(locks) = %d, want 1", len(locks))
	}
	l := locks[0]
	if !l.PerfectClear() {
		t.Errorf("PerfectClear() = false, lines %v", l.ClearingLines)
	}
	if l.B2B != 1 {
		t.Errorf("B2B = %d, want 1 after a perfect clear", l.B2B)
	}
	if !res.Last().Grid.IsEmpty() {
		t.Error("grid not empty after perfect clear")
	}
	if res.Summary.PerfectClears != 1 {
		t.Errorf("PerfectClears = %d, want 1", res.Summary.PerfectClears)
	}
}

func TestSpawnIntoFullBoard(t *testing.T) {
	res := play(t, "0"+strings.Repeat(",", 22)+":T:")
	if res.Outcome != OutcomeGameOver {
		t.Fatalf("Outcome = %v, want game over", res.Outcome)
	}
	if len(res.States) != 2 {
		t.Errorf("len(States) = %d, want init and spawn", len(res.States))
	}
	if res.Last().Piece != tetrlang.PieceT || res.Reason == "" {
		t.Errorf("last Piece = %v, Reason = %q", res.Last().Piece, res.Reason)
	}
}

func TestGameOverStopsSimulation(t *testing.T) {
	// Stack O pieces in the middle until one no longer fits at spawn.
	res := play(t, ":"+strings.Repeat("O", 15)+":"+strings.Repeat(";", 15))
	if res.Outcome != OutcomeGameOver {
		t.Fatalf("Outcome = %v, want game over", res.Outcome)
	}
	if res.Summary.Operations >= 15 {
		t.Errorf("Operations = %d, want fewer than 15", res.Summary.Operations)
	}
	if !strings.Contains(res.Reason, "operation") {
		t.Errorf("Reason = %q, want it to name the operation", res.Reason)
	}
}

func TestOperationError(t *testing.T) {
	// The hold draws I from the queue, so the second lock has no piece.
	res := play(t, ":TI:|;;")
	if res.Outcome != OutcomeOperationError {
		t.Fatalf("Outcome = %v, want operation error", res.Outcome)
	}
	if res.Summary.Locks != 1 {
		t.Errorf("Locks = %d, want 1", res.Summary.Locks)
	}
	last := res.Last()
	if last.Piece != tetrlang.PieceNone || last.Tag != lockTag {
		t.Errorf("last Piece/Tag = %v/%q, want none/;", last.Piece, last.Tag)
	}
}

func TestSimulateUnknownOperation(t *testing.T) {
	c := tetrlang.MustCompile(":T:")
	c.Operations = []tetrlang.Operation{{Ops: []tetrlang.Op{tetrlang.Move{Kind: 77}}}}

	_, err := Simulate(c)
	if !errors.Is(err, ErrUnknownOperation) {
		t.Errorf("Simulate() error = %v, want ErrUnknownOperation", err)
	}
}

func TestPlayErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		limits Limits
		want   error
	}{
		{name: "compile error", src: "x::", want: &tetrlang.Error{Code: tetrlang.CodeInvalidColumn}},
		{name: "too long", src: "::" + strings.Repeat("T", 300), limits: DefaultLimits(), want: ErrLimitExceeded},
		{name: "too many operations", src: "::T;T;T", limits: Limits{MaxOperations: 2}, want: ErrLimitExceeded},
		{name: "too many rows", src: "1,,,::", limits: Limits{MaxBoardRows: 3}, want: ErrLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Play(tt.src, tt.limits)
			if !errors.Is(err, tt.want) {
				t.Errorf("Play(%q) error = %v, want %v", tt.src, err, tt.want)
			}
		})
	}
}

func TestResultJSONRoundTrip(t *testing.T) {
	res := play(t, ":TIJ:|r;z;a_")
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}
	var got Result
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}

	// grids are not serialized
	want := res
	want.States = slices.Clone(res.States)
	for i := range want.States {
		want.States[i].Grid = Grid{}
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}
