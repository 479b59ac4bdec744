package board

// Pre-computed target tables for leaping pieces. Built from fixed offsets;
// destinations that leave the board are discarded while the tables are built.
var (
	knightTargets [64]Bitboard
	kingTargets   [64]Bitboard
	pawnTargets   [2][64]Bitboard // [Color][Square] diagonal capture squares
)

type direction struct{ df, dr int }

var (
	knightOffsets = [8]direction{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingOffsets   = [8]direction{{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}}

	rookDirections   = []direction{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}
	bishopDirections = []direction{{1, 1}, {1, -1}, {-1, -1}, {-1, 1}}
	queenDirections  = append(append([]direction{}, rookDirections...), bishopDirections...)
)

func init() {
	for sq := A1; sq <= H8; sq++ {
		knightTargets[sq] = leaperTargets(sq, knightOffsets[:])
		kingTargets[sq] = leaperTargets(sq, kingOffsets[:])
		pawnTargets[White][sq] = leaperTargets(sq, []direction{{-1, 1}, {1, 1}})
		pawnTargets[Black][sq] = leaperTargets(sq, []direction{{-1, -1}, {1, -1}})
	}
}

func leaperTargets(sq Square, offsets []direction) Bitboard {
	var bb Bitboard
	for _, d := range offsets {
		if to, ok := sq.offset(d.df, d.dr); ok {
			bb = bb.Set(to)
		}
	}
	return bb
}

// KnightTargets returns the squares a knight on sq reaches. Off-board
// squares reach nothing.
func KnightTargets(sq Square) Bitboard {
	if !sq.IsValid() {
		return Empty
	}
	return knightTargets[sq]
}

// KingTargets returns the squares a king on sq reaches (castling excluded).
func KingTargets(sq Square) Bitboard {
	if !sq.IsValid() {
		return Empty
	}
	return kingTargets[sq]
}

// PawnCaptureTargets returns the diagonal squares a pawn of color c on sq attacks.
func PawnCaptureTargets(sq Square, c Color) Bitboard {
	if !sq.IsValid() || c > Black {
		return Empty
	}
	return pawnTargets[c][sq]
}

// slidingDirections returns the ray directions of a slider.
func slidingDirections(pt PieceType) []direction {
	switch pt {
	case Bishop:
		return bishopDirections
	case Rook:
		return rookDirections
	case Queen:
		return queenDirections
	default:
		return nil
	}
}

// rayAttacks casts rays from sq until each is blocked. The blocking square
// is included regardless of which side occupies it.
func (p *Position) rayAttacks(sq Square, dirs []direction) Bitboard {
	var bb Bitboard
	for _, d := range dirs {
		to, ok := sq.offset(d.df, d.dr)
		for ok {
			bb = bb.Set(to)
			if p.board[to] != NoPieceID {
				break
			}
			to, ok = to.offset(d.df, d.dr)
		}
	}
	return bb
}

// attacksOf returns every square the given living piece attacks. Attack
// reach is pseudo-legal: it ignores whether the piece is pinned.
func (p *Position) attacksOf(id PieceID) Bitboard {
	pc := &p.pieces[id]
	if !pc.Alive {
		return Empty
	}
	switch pc.Kind {
	case Pawn:
		return pawnTargets[pc.Color][pc.Square]
	case Knight:
		return knightTargets[pc.Square]
	case King:
		return kingTargets[pc.Square]
	case Bishop, Rook, Queen:
		return p.rayAttacks(pc.Square, slidingDirections(pc.Kind))
	default:
		return Empty
	}
}

// IsSquareAttacked reports whether any living piece of byColor attacks sq.
func (p *Position) IsSquareAttacked(sq Square, byColor Color) bool {
	if !sq.IsValid() || byColor > Black {
		return false
	}
	for _, id := range rosterIDs(byColor) {
		if p.attacksOf(id).IsSet(sq) {
			return true
		}
	}
	return false
}

// Attackers returns the ids of byColor's pieces that attack sq.
func (p *Position) Attackers(sq Square, byColor Color) []PieceID {
	var ids []PieceID
	if !sq.IsValid() || byColor > Black {
		return nil
	}
	for _, id := range rosterIDs(byColor) {
		if p.attacksOf(id).IsSet(sq) {
			ids = append(ids, id)
		}
	}
	return ids
}

// AttackMap returns the union of squares attacked by color.
func (p *Position) AttackMap(c Color) Bitboard {
	var bb Bitboard
	if c > Black {
		return bb
	}
	for _, id := range rosterIDs(c) {
		bb |= p.attacksOf(id)
	}
	return bb
}

// updateCheckers recomputes the check flag of both sides.
func (p *Position) updateCheckers() {
	for c := White; c <= Black; c++ {
		ksq := p.KingSquare(c)
		p.inCheck[c] = ksq != NoSquare && p.IsSquareAttacked(ksq, c.Other())
	}
}
