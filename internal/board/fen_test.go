package board

import (
	"errors"
	"math/rand"
	"testing"
)

func TestFENRoundTripFixed(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
		"4k3/8/8/8/8/8/8/4K2R w K - 12 40",
	}

	for _, fen := range fens {
		pos := mustFEN(t, fen)
		if got := pos.ToFEN(); got != fen {
			t.Errorf("ToFEN mismatch:\n got  %s\n want %s", got, fen)
		}
	}
}

func TestFENOptionalCounters(t *testing.T) {
	pos := mustFEN(t, "8/8/8/8/8/8/8/K6k w - -")
	if pos.HalfMoveClock() != 0 || pos.FullMoveNumber() != 1 {
		t.Errorf("counters = %d/%d, want 0/1", pos.HalfMoveClock(), pos.FullMoveNumber())
	}
}

func TestFENEnPassantSynthesizesHistory(t *testing.T) {
	pos := mustFEN(t, "rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3")

	last := pos.LastMove()
	if !last.IsDoublePawnPush() || last.From != F7 || last.To != F5 {
		t.Fatalf("last move = %v, want f7f5", last)
	}

	var eps []string
	for _, m := range pos.LegalMoves(White) {
		if m.Kind == EnPassant {
			eps = append(eps, m.String())
		}
	}
	if len(eps) != 1 || eps[0] != "e5f6" {
		t.Errorf("en passant moves = %v, want [e5f6]", eps)
	}
}

func TestFENDropsContradictoryCastling(t *testing.T) {
	// The h1 rook is missing, so the K right cannot stand.
	pos := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K3 w KQkq - 0 1")
	if pos.CanCastle(White, KingSide) {
		t.Error("kept white kingside right without a rook on h1")
	}
	if !pos.CanCastle(White, QueenSide) || !pos.CanCastle(Black, KingSide) {
		t.Error("dropped a consistent castling right")
	}
}

func TestFENInvalid(t *testing.T) {
	bad := []string{
		"",
		"8/8/8/8/8/8/8/8 w - - 0 1", // no kings
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",           // seven ranks
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",  // bad digit
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",  // bad side
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkz - 0 1",  // bad castling
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e3 0 1", // no double push behind e3
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - -1 1", // negative clock
		"4k2R/8/8/8/8/8/8/4K3 w - - 0 1",                            // side not to move in check
		"P3k3/8/8/8/8/8/8/4K3 w - - 0 1",                            // pawn on back rank
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNRR w KQkq - 0 1", // rank overflow
	}

	for _, fen := range bad {
		if _, err := ParseFEN(fen); !errors.Is(err, ErrInvalidFEN) {
			t.Errorf("ParseFEN(%q) = %v, want ErrInvalidFEN", fen, err)
		}
	}
}

func TestFENRoundTripRandomPlayouts(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for game := 0; game < 25; game++ {
		pos := NewPosition()
		for ply := 0; ply < 150 && !pos.GameOver(); ply++ {
			moves := pos.LegalMoves(pos.SideToMove())
			if err := pos.Apply(moves[rng.Intn(len(moves))]); err != nil {
				t.Fatal(err)
			}

			fen := pos.ToFEN()
			back, err := ParseFEN(fen)
			if err != nil {
				t.Fatalf("game %d ply %d: ParseFEN(%q): %v", game, ply, fen, err)
			}
			if !back.Equal(pos) {
				t.Fatalf("game %d ply %d: round trip changed position\n%s\nvs\n%s", game, ply, pos, back)
			}
			if back.ToFEN() != fen {
				t.Fatalf("game %d ply %d: FEN %q re-encoded as %q", game, ply, fen, back.ToFEN())
			}
			got := uciStrings(back.LegalMoves(back.SideToMove()))
			want := uciStrings(pos.LegalMoves(pos.SideToMove()))
			if len(got) != len(want) {
				t.Fatalf("game %d ply %d: %d legal moves after round trip, want %d", game, ply, len(got), len(want))
			}
		}
	}
}

func TestPositionEqualIgnoresHistory(t *testing.T) {
	a := NewPosition()
	mustPlay(t, a, "g1f3", "g8f6", "f3g1", "f6g8")
	b := NewPosition()

	if !a.Equal(b) {
		t.Error("knight shuffle should return to an equal position")
	}
	mustPlay(t, b, "e2e4")
	if a.Equal(b) {
		t.Error("different positions compare equal")
	}
}
