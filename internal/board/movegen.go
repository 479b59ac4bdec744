package board

import "sort"

// LegalMoves returns every legal move for color c in pos.
func LegalMoves(pos *Position, c Color) []Move {
	return pos.LegalMoves(c)
}

// LegalMoves generates all legal moves for color c. The returned slice is
// the caller's to reorder or modify.
func (p *Position) LegalMoves(c Color) []Move {
	if c > Black {
		return nil
	}
	if c == p.sideToMove && p.legal != nil {
		return append([]Move(nil), p.legal...)
	}
	moves := p.generateLegal(c)
	if c == p.sideToMove {
		p.legal = moves
		return append([]Move(nil), moves...)
	}
	return moves
}

// HasLegalMoves returns true if the side to move has at least one legal move.
func (p *Position) HasLegalMoves() bool {
	return !p.gameOver
}

// generateLegal filters pseudo-legal moves down to those that do not leave
// the mover's own king attacked, annotating moves that give check.
func (p *Position) generateLegal(c Color) []Move {
	pseudo := p.PseudoLegalMoves(c)
	legal := make([]Move, 0, len(pseudo))
	for _, m := range pseudo {
		if safe, check := p.probe(m); safe {
			m.GivesCheck = check
			legal = append(legal, m)
		}
	}
	return legal
}

// probe plays m on a scratch copy and reports whether the mover's king is
// safe afterwards and whether the enemy king is attacked.
func (p *Position) probe(m Move) (safe, givesCheck bool) {
	us := m.Piece.Color
	them := us.Other()

	scratch := *p
	scratch.applyRaw(m)

	if ksq := scratch.KingSquare(us); ksq != NoSquare && scratch.IsSquareAttacked(ksq, them) {
		return false, false
	}
	eksq := scratch.KingSquare(them)
	return true, eksq != NoSquare && scratch.IsSquareAttacked(eksq, us)
}

// PseudoLegalMoves generates moves that follow each piece's movement rule
// and board occupancy but may leave the mover's king in check.
func (p *Position) PseudoLegalMoves(c Color) []Move {
	if c > Black {
		return nil
	}
	moves := make([]Move, 0, 64)
	for _, id := range rosterIDs(c) {
		if !p.pieces[id].Alive {
			continue
		}
		moves = p.appendPieceMoves(moves, id)
	}
	return moves
}

func (p *Position) appendPieceMoves(moves []Move, id PieceID) []Move {
	pc := &p.pieces[id]
	switch pc.Kind {
	case Pawn:
		return p.appendPawnMoves(moves, id)
	case Knight:
		return p.appendTargets(moves, id, knightTargets[pc.Square])
	case Bishop, Rook, Queen:
		return p.appendSliderMoves(moves, id, slidingDirections(pc.Kind))
	case King:
		moves = p.appendTargets(moves, id, kingTargets[pc.Square])
		return p.appendCastling(moves, id)
	default:
		return moves
	}
}

// newMove builds a move with snapshots of the mover and the victim.
func (p *Position) newMove(id PieceID, to Square, captured PieceID, kind MoveKind, promo PieceType) Move {
	m := Move{
		Mover:     id,
		Piece:     p.pieces[id],
		From:      p.pieces[id].Square,
		To:        to,
		Captured:  captured,
		Kind:      kind,
		Promotion: promo,
	}
	if captured != NoPieceID {
		m.CapturedPiece = p.pieces[captured]
	}
	return m
}

// appendTargets adds moves to each target square that is empty or holds an
// enemy piece.
func (p *Position) appendTargets(moves []Move, id PieceID, targets Bitboard) []Move {
	us := p.pieces[id].Color
	for targets != 0 {
		to := targets.PopLSB()
		occ := p.board[to]
		if occ != NoPieceID && p.pieces[occ].Color == us {
			continue
		}
		moves = append(moves, p.newMove(id, to, occ, Normal, NoPieceType))
	}
	return moves
}

func (p *Position) appendSliderMoves(moves []Move, id PieceID, dirs []direction) []Move {
	pc := &p.pieces[id]
	for _, d := range dirs {
		to, ok := pc.Square.offset(d.df, d.dr)
		for ok {
			occ := p.board[to]
			if occ == NoPieceID {
				moves = append(moves, p.newMove(id, to, NoPieceID, Normal, NoPieceType))
				to, ok = to.offset(d.df, d.dr)
				continue
			}
			if p.pieces[occ].Color != pc.Color {
				moves = append(moves, p.newMove(id, to, occ, Normal, NoPieceType))
			}
			break
		}
	}
	return moves
}

// promotionPieces lists the promotion choices in the order they are generated.
var promotionPieces = [4]PieceType{Queen, Rook, Bishop, Knight}

func (p *Position) appendPawnMoves(moves []Move, id PieceID) []Move {
	pc := &p.pieces[id]
	us := pc.Color
	from := pc.Square

	dir, startRank, lastRank := 1, 1, 7
	if us == Black {
		dir, startRank, lastRank = -1, 6, 0
	}

	add := func(to Square, captured PieceID, kind MoveKind) {
		if to.Rank() == lastRank {
			for _, promo := range promotionPieces {
				moves = append(moves, p.newMove(id, to, captured, Promotion, promo))
			}
			return
		}
		moves = append(moves, p.newMove(id, to, captured, kind, NoPieceType))
	}

	// Advances
	if one, ok := from.offset(0, dir); ok && p.board[one] == NoPieceID {
		add(one, NoPieceID, Normal)
		if from.Rank() == startRank && !pc.HasMoved {
			if two, ok := one.offset(0, dir); ok && p.board[two] == NoPieceID {
				add(two, NoPieceID, Normal)
			}
		}
	}

	// Captures
	targets := pawnTargets[us][from]
	for targets != 0 {
		to := targets.PopLSB()
		occ := p.board[to]
		if occ != NoPieceID && p.pieces[occ].Color != us {
			add(to, occ, Normal)
		}
	}

	// En passant against the immediately preceding double advance
	last := p.LastMove()
	if last.IsDoublePawnPush() && last.Piece.Color != us &&
		last.To.Rank() == from.Rank() && abs(last.To.File()-from.File()) == 1 {
		victim := p.board[last.To]
		if victim == last.Mover && p.pieces[victim].Alive {
			if to, ok := last.To.offset(0, dir); ok && p.board[to] == NoPieceID {
				moves = append(moves, p.newMove(id, to, victim, EnPassant, NoPieceType))
			}
		}
	}

	return moves
}

func (p *Position) appendCastling(moves []Move, id PieceID) []Move {
	pc := &p.pieces[id]
	if pc.HasMoved || id != p.kings[pc.Color] {
		return moves
	}
	for side := KingSide; side <= QueenSide; side++ {
		if !p.castling[pc.Color][side] {
			continue
		}
		if p.checkCastle(pc.Color, side) == nil {
			g := &castleGeometries[pc.Color][side]
			moves = append(moves, p.newMove(id, g.kingTo, NoPieceID, castleKind(side), NoPieceType))
		}
	}
	return moves
}

// OrderCapturesFirst stably reorders moves so captures come first, sorted by
// victim value descending. Quiet moves keep their generation order.
func OrderCapturesFirst(moves []Move) {
	sort.SliceStable(moves, func(i, j int) bool {
		return captureRank(moves[i]) > captureRank(moves[j])
	})
}

func captureRank(m Move) int {
	if !m.IsCapture() {
		if m.IsPromotion() {
			return 1
		}
		return 0
	}
	return 2 + int(m.CapturedPiece.Kind)
}

// Perft counts the leaf nodes of the legal move tree to the given depth.
func (p *Position) Perft(depth int) int64 {
	if depth <= 0 {
		return 1
	}
	moves := p.LegalMoves(p.sideToMove)
	if depth == 1 {
		return int64(len(moves))
	}
	var nodes int64
	for _, m := range moves {
		nodes += p.Successor(m).Perft(depth - 1)
	}
	return nodes
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
