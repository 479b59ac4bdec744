package board

import (
	"errors"
	"math/rand"
	"sort"
	"testing"
)

func mustFEN(t *testing.T, fen string) *Position {
	t.Helper()
	pos, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func mustPlay(t *testing.T, pos *Position, uci ...string) {
	t.Helper()
	for _, s := range uci {
		m, err := ParseUCI(s, pos)
		if err != nil {
			t.Fatalf("ParseUCI(%q): %v", s, err)
		}
		if err := pos.Apply(m); err != nil {
			t.Fatalf("Apply(%s): %v", s, err)
		}
	}
}

func uciStrings(moves []Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	sort.Strings(out)
	return out
}

func TestOpeningMoves(t *testing.T) {
	pos := NewPosition()
	moves := pos.LegalMoves(White)
	if len(moves) != 20 {
		t.Fatalf("got %d opening moves, want 20", len(moves))
	}

	pawns, knights := 0, 0
	for _, m := range moves {
		switch m.Piece.Kind {
		case Pawn:
			pawns++
		case Knight:
			knights++
		}
	}
	if pawns != 16 || knights != 4 {
		t.Errorf("pawn moves = %d, knight moves = %d, want 16 and 4", pawns, knights)
	}
}

func TestLoneKingMoves(t *testing.T) {
	// Kings far apart so only the white king on e4 matters.
	pos := mustFEN(t, "k7/8/8/8/4K3/8/8/8 w - - 0 1")

	sq, err := SquareAt(3, 4)
	if err != nil {
		t.Fatal(err)
	}
	if sq != E4 || pos.KingSquare(White) != E4 {
		t.Fatalf("king on %s, want e4", pos.KingSquare(White))
	}
	if n := len(pos.LegalMoves(White)); n != 8 {
		t.Errorf("king on e4 has %d moves, want 8", n)
	}
}

func TestNoEnPassantWithoutDoublePushNextToPawn(t *testing.T) {
	pos := NewPosition()
	mustPlay(t, pos, "e2e4", "d7d5")

	for _, m := range pos.LegalMoves(White) {
		if m.Kind == EnPassant {
			t.Errorf("unexpected en passant %s", m)
		}
	}
}

func TestEnPassantOnlyImmediately(t *testing.T) {
	pos := NewPosition()
	mustPlay(t, pos, "e2e4", "a7a6", "e4e5", "d7d5")

	var ep Move
	for _, m := range pos.LegalMoves(White) {
		if m.Kind == EnPassant {
			ep = m
		}
	}
	if ep.IsNone() || ep.String() != "e5d6" {
		t.Fatalf("expected en passant e5d6, got %v", ep)
	}

	// Spend a tempo each; the right expires.
	mustPlay(t, pos, "g1f3", "a6a5")
	for _, m := range pos.LegalMoves(White) {
		if m.Kind == EnPassant {
			t.Errorf("en passant %s still offered after an intervening move", m)
		}
	}
}

func TestEnPassantRemovesVictim(t *testing.T) {
	pos := NewPosition()
	mustPlay(t, pos, "e2e4", "a7a6", "e4e5", "d7d5", "e5d6")

	if _, ok := pos.PieceAt(D5); ok {
		t.Error("captured pawn still on d5")
	}
	victim := pos.LastMove().CapturedPiece
	if victim.Kind != Pawn || victim.Color != Black || victim.Square != D5 {
		t.Errorf("captured snapshot = %+v", victim)
	}
	if pos.Piece(pos.LastMove().Captured).Alive {
		t.Error("captured arena entry still alive")
	}
	if err := pos.Validate(); err != nil {
		t.Error(err)
	}
}

func TestCastleWithoutRightIsIllegal(t *testing.T) {
	pos := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w Qkq - 0 1")
	before := pos.Copy()

	m := NoMove
	m.Mover = pos.PieceIDAt(E1)
	m.Piece = pos.Piece(m.Mover)
	m.From, m.To, m.Kind = E1, G1, CastleKingside

	err := pos.Apply(m)
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("Apply = %v, want ErrIllegalMove", err)
	}
	if pos.board != before.board || pos.pieces != before.pieces || pos.castling != before.castling ||
		pos.sideToMove != before.sideToMove || len(pos.history) != len(before.history) {
		t.Error("position changed after rejected castle")
	}
}

func TestCastlingMovesRook(t *testing.T) {
	pos := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	mustPlay(t, pos, "e1g1", "e8c8")

	for sq, want := range map[Square]string{G1: "K", F1: "R", C8: "k", D8: "r"} {
		pc, ok := pos.PieceAt(sq)
		if !ok || pc.String() != want {
			t.Errorf("%s holds %v, want %s", sq, pc, want)
		}
	}
	for _, sq := range []Square{E1, H1, E8, A8} {
		if !pos.IsEmpty(sq) {
			t.Errorf("%s should be empty", sq)
		}
	}
	if pos.CanCastle(White, QueenSide) || pos.CanCastle(Black, KingSide) {
		t.Error("castling rights survived a king move")
	}
}

func TestCastlingThroughAttackedSquare(t *testing.T) {
	// Black rook on f8 covers f1.
	pos := mustFEN(t, "4kr2/8/8/8/8/8/8/R3K2R w KQ - 0 1")
	for _, m := range pos.LegalMoves(White) {
		if m.Kind == CastleKingside {
			t.Error("kingside castling through an attacked square generated")
		}
	}
	found := false
	for _, m := range pos.LegalMoves(White) {
		found = found || m.Kind == CastleQueenside
	}
	if !found {
		t.Error("queenside castling missing")
	}
}

func TestRookCaptureRevokesRight(t *testing.T) {
	pos := mustFEN(t, "r3k2r/8/8/8/8/8/6B1/R3K2R w KQkq - 0 1")
	mustPlay(t, pos, "g2a8")
	if pos.CanCastle(Black, QueenSide) {
		t.Error("black keeps queenside right after losing the a8 rook")
	}
	if !pos.CanCastle(Black, KingSide) {
		t.Error("black lost kingside right")
	}
}

func TestPromotionChoices(t *testing.T) {
	pos := mustFEN(t, "8/P6k/8/8/8/8/8/K7 w - - 0 1")
	var promos []PieceType
	for _, m := range pos.LegalMoves(White) {
		if m.IsPromotion() {
			promos = append(promos, m.Promotion)
		}
	}
	if len(promos) != 4 {
		t.Fatalf("got %d promotions, want 4", len(promos))
	}

	mustPlay(t, pos, "a7a8n")
	pc, _ := pos.PieceAt(A8)
	if pc.Kind != Knight || pc.Color != White {
		t.Errorf("a8 holds %v, want N", pc)
	}
	if pos.Count(White, Pawn) != 0 {
		t.Error("promoted pawn still counted as a pawn")
	}
}

func TestLegalMovesIdempotent(t *testing.T) {
	pos := mustFEN(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")

	first := uciStrings(pos.LegalMoves(White))
	second := uciStrings(pos.LegalMoves(White))
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("move %d differs: %s vs %s", i, first[i], second[i])
		}
	}

	// Mutating the returned slice must not leak into the cache.
	moves := pos.LegalMoves(White)
	moves[0] = NoMove
	if pos.LegalMoves(White)[0].IsNone() {
		t.Error("caller mutation changed cached legal moves")
	}
}

func TestRandomPlayoutsKeepKingSafe(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for game := 0; game < 20; game++ {
		pos := NewPosition()
		for ply := 0; ply < 120 && !pos.GameOver(); ply++ {
			moves := pos.LegalMoves(pos.SideToMove())
			m := moves[rng.Intn(len(moves))]
			if err := pos.Apply(m); err != nil {
				t.Fatalf("game %d ply %d: Apply(%s): %v", game, ply, m, err)
			}

			mover := pos.SideToMove().Other()
			if pos.InCheck(mover) {
				t.Fatalf("game %d ply %d: %s left own king in check\n%s", game, ply, m, pos)
			}
			if err := pos.Validate(); err != nil {
				t.Fatalf("game %d ply %d: %v", game, ply, err)
			}

			us := pos.SideToMove()
			for _, reply := range pos.LegalMoves(us) {
				next := pos.Successor(reply)
				if next.InCheck(us) {
					t.Fatalf("legal reply %s leaves %s in check\n%s", reply, us, pos)
				}
			}
		}
	}
}

func TestApplyRejectsBadInput(t *testing.T) {
	pos := NewPosition()
	before := pos.ToFEN()

	tests := []struct {
		name string
		move Move
		want error
	}{
		{"off board", Move{Mover: 12, From: E2, To: NoSquare, Captured: NoPieceID}, ErrOutOfBounds},
		{"empty origin", Move{Mover: 12, From: E4, To: E5, Captured: NoPieceID}, ErrIllegalMove},
		{"wrong side", Move{Mover: pos.PieceIDAt(E7), From: E7, To: E5, Captured: NoPieceID}, ErrIllegalMove},
		{"blocked", Move{Mover: pos.PieceIDAt(A1), From: A1, To: A3, Captured: NoPieceID}, ErrIllegalMove},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := pos.Apply(tc.move); !errors.Is(err, tc.want) {
				t.Errorf("Apply = %v, want %v", err, tc.want)
			}
			if pos.ToFEN() != before {
				t.Errorf("position changed: %s", pos.ToFEN())
			}
		})
	}
}

func TestSquareAtOutOfBounds(t *testing.T) {
	for _, c := range [][2]int{{-1, 0}, {0, 8}, {8, 8}} {
		if _, err := SquareAt(c[0], c[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("SquareAt(%d, %d) = %v, want ErrOutOfBounds", c[0], c[1], err)
		}
	}
}

func TestAttackQueriesRejectBadInput(t *testing.T) {
	pos := NewPosition()

	if KnightTargets(NoSquare) != Empty || KingTargets(NoSquare) != Empty {
		t.Error("leaper targets from an off-board square")
	}
	if PawnCaptureTargets(E4, NoColor) != Empty || PawnCaptureTargets(NoSquare, White) != Empty {
		t.Error("pawn targets for bad input")
	}
	if pos.IsSquareAttacked(E4, NoColor) || pos.IsSquareAttacked(NoSquare, White) {
		t.Error("IsSquareAttacked accepted bad input")
	}
	if pos.Attackers(F3, NoColor) != nil || pos.Attackers(NoSquare, White) != nil {
		t.Error("Attackers accepted bad input")
	}
	if pos.AttackMap(NoColor) != Empty {
		t.Error("AttackMap accepted NoColor")
	}
	if pos.LivingPieces(NoColor) != nil || pos.Count(NoColor, Pawn) != 0 {
		t.Error("roster queries accepted NoColor")
	}

	// Sanity check that the guards leave valid queries alone.
	if !pos.IsSquareAttacked(F3, White) || len(pos.Attackers(F3, White)) != 3 {
		t.Errorf("f3 attackers = %v", pos.Attackers(F3, White))
	}
}

func TestOrderCapturesFirst(t *testing.T) {
	// White queen d4 can take a rook on d7 or a pawn on g7.
	pos := mustFEN(t, "4k3/3r2p1/8/8/3Q4/8/8/4K3 w - - 0 1")
	moves := pos.LegalMoves(White)
	OrderCapturesFirst(moves)

	if moves[0].String() != "d4d7" || moves[1].String() != "d4g7" {
		t.Errorf("ordered moves start %s %s, want d4d7 d4g7", moves[0], moves[1])
	}
	for _, m := range moves[2:] {
		if m.IsCapture() {
			t.Errorf("capture %s after quiet moves", m)
		}
	}
}
