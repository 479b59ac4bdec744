package engine

import (
	"testing"

	"github.com/hailam/chesscore/internal/board"
)

func TestInterpolate(t *testing.T) {
	tests := []struct {
		x, want int
	}{
		{-5, 10},  // below x1 clamps to y1
		{0, 10},   // at x1
		{50, 30},  // midpoint
		{100, 50}, // at x2
		{500, 50}, // above x2 clamps to y2
	}
	for _, tc := range tests {
		if got := interpolate(tc.x, 0, 10, 100, 50); got != tc.want {
			t.Errorf("interpolate(%d) = %d, want %d", tc.x, got, tc.want)
		}
	}
}

func TestMirrorTables(t *testing.T) {
	for pt := board.Pawn; pt <= board.King; pt++ {
		tb := &pieceTables[pt]
		for sq := board.A1; sq <= board.H8; sq++ {
			if tb.mg[board.White][sq] != tb.mg[board.Black][sq.Mirror()] {
				t.Fatalf("%s midgame table not mirrored at %s", pt, sq)
			}
			if tb.eg[board.White][sq] != tb.eg[board.Black][sq.Mirror()] {
				t.Fatalf("%s endgame table not mirrored at %s", pt, sq)
			}
		}
	}

	// The first row of the visual table is rank 8.
	if pieceTables[board.Pawn].mg[board.White][board.E2] != pawnMgTable[52] {
		t.Error("white e2 does not read the rank-2 row of the pawn table")
	}
}

func TestEvaluateStartIsBalanced(t *testing.T) {
	pos := board.NewPosition()
	if score := Evaluate(pos); score != 0 {
		t.Errorf("start position scores %d, want 0", score)
	}

	w, b := pos.MaterialTotals()
	if w != startMaterial || b != startMaterial {
		t.Errorf("material totals = %d/%d, want %d", w, b, startMaterial)
	}
}

func TestEvaluateColorSymmetry(t *testing.T) {
	pairs := [][2]string{
		{
			"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5Q2/PPPP1PPP/RNB1K1NR w KQkq - 4 4",
			"rnb1k1nr/pppp1ppp/5q2/2b1p3/4P3/2N5/PPPP1PPP/R1BQKBNR b KQkq - 4 4",
		},
		{
			"8/8/4k3/8/2R5/8/3K4/8 w - - 0 1",
			"8/3k4/8/2r5/8/4K3/8/8 b - - 0 1",
		},
	}

	for _, p := range pairs {
		a := Evaluate(mustFEN(t, p[0]))
		b := Evaluate(mustFEN(t, p[1]))
		if a != -b {
			t.Errorf("mirrored positions score %d and %d", a, b)
		}
	}
}

func TestEvaluateMaterial(t *testing.T) {
	// White is a rook up.
	pos := mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	if got := EvaluateMaterial(pos); got != RookValue {
		t.Errorf("EvaluateMaterial = %d, want %d", got, RookValue)
	}
	if Evaluate(pos) <= 0 {
		t.Error("a rook up should score positive for White")
	}
}

func TestEvaluateTerminal(t *testing.T) {
	if got := Evaluate(mustFEN(t, "R6k/6pp/8/8/8/8/8/K7 b - - 0 1")); got != MateScore {
		t.Errorf("black mated scores %d, want %d", got, MateScore)
	}
	if got := Evaluate(mustFEN(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")); got != 0 {
		t.Errorf("stalemate scores %d, want 0", got)
	}
}

func TestEvaluateRecomputesTotals(t *testing.T) {
	pos := board.NewPosition()
	pos.SetMaterialTotals(1, 2)
	first := Evaluate(pos)
	if second := Evaluate(pos); first != second {
		t.Errorf("repeated evaluation differs: %d vs %d", first, second)
	}
	if w, _ := pos.MaterialTotals(); w != startMaterial {
		t.Errorf("stale material total %d", w)
	}
}

func TestBishopPair(t *testing.T) {
	pos := mustFEN(t, "4k3/pppppppp/8/8/8/8/8/2B1KB2 w - - 0 1")
	m := takeCensus(pos)
	got := NewEvaluator().bishops(pos, &m, 0)
	want := bishopPairBase + (8-8)*bishopPairPerPawn
	if got != want {
		t.Errorf("bishop pair = %d, want %d", got, want)
	}

	// Two bishops on the same colour are not a pair.
	pos = mustFEN(t, "4k3/pppppppp/8/8/8/8/8/B1B1K3 w - - 0 1")
	m = takeCensus(pos)
	if got := NewEvaluator().bishops(pos, &m, 0); got != 0 {
		t.Errorf("same-coloured bishops scored %d", got)
	}
}

func TestTrappedBishop(t *testing.T) {
	tests := []struct {
		fen  string
		want int
	}{
		{"4k3/B1p5/1p6/8/8/8/8/4K3 w - - 0 1", trappedBishopValue},
		{"4k3/5p1B/6p1/8/8/8/8/4K3 w - - 0 1", trappedBishopValue},
		{"4k3/8/8/8/8/1P6/b1P5/4K3 b - - 0 1", -trappedBishopValue},
		{"4k3/8/8/8/8/6P1/5P1b/4K3 b - - 0 1", -trappedBishopValue},
		{"4k3/B7/1p6/8/8/8/8/4K3 w - - 0 1", 0},
	}
	for _, tc := range tests {
		if got := trappedBishops(mustFEN(t, tc.fen)); got != tc.want {
			t.Errorf("%s: trapped = %d, want %d", tc.fen, got, tc.want)
		}
	}
}

func TestTrappedBishopWithOppositeColours(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want int
	}{
		// Only the opposite-colour scaling applies, halving the balance.
		{"Free", "4k3/2p5/1p6/8/3B4/8/8/1b2K3 w - - 0 1", 0},
		{"Trapped", "4k3/B1p5/1p6/8/8/8/8/1b2K3 w - - 0 1", -trappedBishopValue - (-trappedBishopValue)/2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := mustFEN(t, tt.fen)
			m := takeCensus(pos)
			if got := NewEvaluator().bishops(pos, &m, 0); got != tt.want {
				t.Errorf("bishops = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTradeBonusFavorsSideAhead(t *testing.T) {
	// White up a rook: fewer black pieces left means a larger bonus.
	many := takeCensus(mustFEN(t, "r3k3/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w - - 0 1"))
	few := takeCensus(mustFEN(t, "4k3/pppppppp/8/8/8/8/PPPPPPPP/4K2R w - - 0 1"))

	e := NewEvaluator()
	if e.tradeBonus(&few) <= e.tradeBonus(&many) {
		t.Errorf("trade bonus with fewer pieces %d not above %d", e.tradeBonus(&few), e.tradeBonus(&many))
	}
	if even := takeCensus(board.NewPosition()); e.tradeBonus(&even) != 0 {
		t.Errorf("balanced material trade bonus = %d", e.tradeBonus(&even))
	}
}

func TestThreatBonus(t *testing.T) {
	// The white knight on c3 attacks the black queen on d5.
	pos := mustFEN(t, "4k3/8/8/3q4/8/2N5/8/4K3 w - - 0 1")
	m := takeCensus(pos)
	if got := NewEvaluator().threatBonus(pos, &m); got <= 0 {
		t.Errorf("threat bonus = %d, want positive", got)
	}
}
