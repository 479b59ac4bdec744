package engine

import (
	"sort"

	"github.com/hailam/chesscore/internal/board"
)

// Move ordering priorities
const (
	CaptureBase   = 1000000 // Base score for captures
	PromotionBase = 900000  // Quiet promotions
	KillerScore1  = 800000  // First killer move
	KillerScore2  = 700000  // Second killer move
)

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) scores
// Higher score = search first
var mvvLva = [6][6]int{
	//       P    N    B    R    Q    K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11}, // Pawn victim
	/* N */ {25, 24, 24, 23, 22, 21}, // Knight victim
	/* B */ {35, 34, 34, 33, 32, 31}, // Bishop victim
	/* R */ {45, 44, 44, 43, 42, 41}, // Rook victim
	/* Q */ {55, 54, 54, 53, 52, 51}, // Queen victim
	/* K */ {0, 0, 0, 0, 0, 0}, // King can't be captured
}

// MoveOrderer orders moves at interior nodes: captures first by victim
// value, then promotions, then killer moves, then the rest in generation
// order. The root keeps generation order.
type MoveOrderer struct {
	// Killer moves (quiet moves that caused beta cutoffs)
	killers [MaxPly][2]board.Move
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer() *MoveOrderer {
	mo := &MoveOrderer{}
	mo.Clear()
	return mo
}

// Clear resets the killer table for a new search.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoMove
		mo.killers[i][1] = board.NoMove
	}
}

// Order sorts moves in place for the node at ply. The sort is stable so
// equally scored moves keep generation order.
func (mo *MoveOrderer) Order(moves []board.Move, ply int) {
	scored := make([]scoredMove, len(moves))
	for i, m := range moves {
		scored[i] = scoredMove{move: m, score: mo.scoreMove(m, ply)}
	}
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].score > scored[b].score
	})
	for i := range scored {
		moves[i] = scored[i].move
	}
}

type scoredMove struct {
	move  board.Move
	score int
}

// scoreMove returns the ordering score for a single move.
func (mo *MoveOrderer) scoreMove(m board.Move, ply int) int {
	if m.IsCapture() {
		return CaptureBase + mvvLva[m.CapturedPiece.Kind][m.Piece.Kind]*1000
	}

	if m.IsPromotion() {
		return PromotionBase + PieceValue(m.Promotion)
	}

	if ply < MaxPly {
		if m.SameAs(mo.killers[ply][0]) {
			return KillerScore1
		}
		if m.SameAs(mo.killers[ply][1]) {
			return KillerScore2
		}
	}

	return 0
}

// UpdateKillers records a quiet move that caused a beta cutoff.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if m.IsCapture() || m.IsPromotion() || ply >= MaxPly {
		return
	}
	if m.SameAs(mo.killers[ply][0]) {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}
