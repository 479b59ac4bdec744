package board

// Opening book keys, laid out the way Polyglot books index them: one key
// per (piece, square), four castling keys, eight en-passant file keys and
// a side-to-move key.
var (
	polyglotPieces     [12][64]uint64 // [kind index][square]
	polyglotCastling   [4]uint64      // [KQkq]
	polyglotEnPassant  [8]uint64      // [file]
	polyglotSideToMove uint64
)

func init() {
	var s uint64 = 0x37b4a4b3f0d1c0d0
	next := func() uint64 {
		s ^= s >> 12
		s ^= s << 25
		s ^= s >> 27
		return s * 0x2545F4914F6CDD1D
	}

	for kind := range polyglotPieces {
		for sq := range polyglotPieces[kind] {
			polyglotPieces[kind][sq] = next()
		}
	}
	for i := range polyglotCastling {
		polyglotCastling[i] = next()
	}
	for i := range polyglotEnPassant {
		polyglotEnPassant[i] = next()
	}
	polyglotSideToMove = next()
}

// polyglotKind orders pieces bp, wp, bn, wn, ... bk, wk.
func polyglotKind(pc Piece) int {
	k := 2 * int(pc.Kind)
	if pc.Color == White {
		k++
	}
	return k
}

// PolyglotHash returns the opening book key of the position. The en-passant
// file only contributes when a pawn of the side to move could capture.
func (p *Position) PolyglotHash() uint64 {
	var hash uint64

	for _, pc := range p.pieces {
		if pc.Alive {
			hash ^= polyglotPieces[polyglotKind(pc)][pc.Square]
		}
	}

	for i, right := range [4]bool{
		p.castling[White][KingSide], p.castling[White][QueenSide],
		p.castling[Black][KingSide], p.castling[Black][QueenSide],
	} {
		if right {
			hash ^= polyglotCastling[i]
		}
	}

	for _, m := range p.legal {
		if m.Kind == EnPassant {
			hash ^= polyglotEnPassant[m.To.File()]
			break
		}
	}

	if p.sideToMove == White {
		hash ^= polyglotSideToMove
	}

	return hash
}
