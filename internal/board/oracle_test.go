package board

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/notnil/chess"
)

// oracleMoves lists the legal moves notnil/chess finds for fen in UCI form.
func oracleMoves(t *testing.T, fen string) []string {
	t.Helper()
	opt, err := chess.FEN(fen)
	if err != nil {
		t.Fatalf("oracle rejected FEN %q: %v", fen, err)
	}
	game := chess.NewGame(opt)

	var out []string
	for _, m := range game.ValidMoves() {
		out = append(out, m.String())
	}
	sort.Strings(out)
	return out
}

func sameMoveSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMoveGenerationMatchesOracle(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
		"n1n5/PPPk4/8/8/8/8/4Kppp/5N1N b - - 0 1",
	}

	for _, fen := range fens {
		pos := mustFEN(t, fen)
		got := uciStrings(pos.LegalMoves(pos.SideToMove()))
		want := oracleMoves(t, pos.ToFEN())
		if !sameMoveSets(got, want) {
			t.Errorf("%s\n got  %v\n want %v", fen, got, want)
		}
	}
}

func TestRandomPlayoutsMatchOracle(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for game := 0; game < 10; game++ {
		pos := NewPosition()
		for ply := 0; ply < 100 && !pos.GameOver(); ply++ {
			fen := pos.ToFEN()
			got := uciStrings(pos.LegalMoves(pos.SideToMove()))
			if want := oracleMoves(t, fen); !sameMoveSets(got, want) {
				t.Fatalf("game %d ply %d %s\n got  %v\n want %v", game, ply, fen, got, want)
			}

			moves := pos.LegalMoves(pos.SideToMove())
			if err := pos.Apply(moves[rng.Intn(len(moves))]); err != nil {
				t.Fatal(err)
			}
		}
	}
}
