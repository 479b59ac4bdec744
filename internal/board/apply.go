package board

import "fmt"

// castleGeometry describes the squares involved in one castling option.
type castleGeometry struct {
	kingFrom, kingTo Square
	rookFrom, rookTo Square
	empty            []Square // must be unoccupied
	transit          []Square // king squares that must not be attacked
}

var castleGeometries = [2][2]castleGeometry{
	White: {
		KingSide:  {E1, G1, H1, F1, []Square{F1, G1}, []Square{E1, F1, G1}},
		QueenSide: {E1, C1, A1, D1, []Square{B1, C1, D1}, []Square{E1, D1, C1}},
	},
	Black: {
		KingSide:  {E8, G8, H8, F8, []Square{F8, G8}, []Square{E8, F8, G8}},
		QueenSide: {E8, C8, A8, D8, []Square{B8, C8, D8}, []Square{E8, D8, C8}},
	},
}

func castleKind(side CastleSide) MoveKind {
	if side == KingSide {
		return CastleKingside
	}
	return CastleQueenside
}

func castleSideOf(k MoveKind) CastleSide {
	if k == CastleKingside {
		return KingSide
	}
	return QueenSide
}

// checkCastle verifies every castling precondition for color c on side.
// It runs both when castling moves are generated and when one is applied.
func (p *Position) checkCastle(c Color, side CastleSide) error {
	g := &castleGeometries[c][side]

	if !p.castling[c][side] {
		return fmt.Errorf("%w: %s has no %s castling right", ErrIllegalMove, c, castleKind(side))
	}

	kid := p.board[g.kingFrom]
	if kid == NoPieceID || kid != p.kings[c] || p.pieces[kid].HasMoved {
		return fmt.Errorf("%w: %s king has moved", ErrIllegalMove, c)
	}

	rid := p.board[g.rookFrom]
	if rid == NoPieceID {
		return fmt.Errorf("%w: no rook on %s", ErrIllegalMove, g.rookFrom)
	}
	rook := p.pieces[rid]
	if rook.Kind != Rook || rook.Color != c || rook.HasMoved {
		return fmt.Errorf("%w: rook on %s cannot castle", ErrIllegalMove, g.rookFrom)
	}

	for _, sq := range g.empty {
		if p.board[sq] != NoPieceID {
			return fmt.Errorf("%w: %s is occupied", ErrIllegalMove, sq)
		}
	}

	them := c.Other()
	for _, sq := range g.transit {
		if p.IsSquareAttacked(sq, them) {
			return fmt.Errorf("%w: king passes through attacked square %s", ErrIllegalMove, sq)
		}
	}

	return nil
}

// Apply validates and applies m, the single entry point for changing a
// position. The move must be legal for the side to move; castling
// preconditions are re-checked here rather than trusted from generation.
// On error the position is left untouched.
func (p *Position) Apply(m Move) error {
	if !m.From.IsValid() || !m.To.IsValid() {
		return fmt.Errorf("%w: move %s -> %s", ErrOutOfBounds, m.From, m.To)
	}
	if p.gameOver {
		return fmt.Errorf("%w: game is over (%s)", ErrIllegalMove, p.Status())
	}

	id := p.board[m.From]
	if id == NoPieceID {
		return fmt.Errorf("%w: no piece on %s", ErrIllegalMove, m.From)
	}
	pc := p.pieces[id]
	if !pc.Alive || pc.Square != m.From || id != m.Mover {
		return fmt.Errorf("%w: mover no longer on %s", ErrIllegalMove, m.From)
	}
	if pc.Color != p.sideToMove {
		return fmt.Errorf("%w: %s to move", ErrIllegalMove, p.sideToMove)
	}

	if m.IsCastling() {
		if err := p.checkCastle(pc.Color, castleSideOf(m.Kind)); err != nil {
			return err
		}
	}

	for _, lm := range p.LegalMoves(p.sideToMove) {
		if lm.SameAs(m) {
			next := p.Copy()
			next.play(lm)
			*p = *next
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrIllegalMove, m)
}

// Resolve returns the legal move of the side to move that m identifies,
// with the generator's piece ids and annotations.
func (p *Position) Resolve(m Move) (Move, error) {
	if !m.From.IsValid() || !m.To.IsValid() {
		return NoMove, fmt.Errorf("%w: move %s -> %s", ErrOutOfBounds, m.From, m.To)
	}
	for _, lm := range p.LegalMoves(p.sideToMove) {
		if lm.SameAs(m) {
			return lm, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, m)
}

// Successor returns a copy of p with m applied. m must come from p's legal
// move generator; it is not re-validated.
func (p *Position) Successor(m Move) *Position {
	next := p.Copy()
	next.play(m)
	return next
}

// play applies a legal move and refreshes every derived field.
func (p *Position) play(m Move) {
	us := p.sideToMove
	them := us.Other()

	p.applyRaw(m)

	if m.Piece.Kind == Pawn || m.IsCapture() {
		p.halfMoveClock = 0
	} else {
		p.halfMoveClock++
	}
	if us == Black {
		p.fullMoveNumber++
	}

	p.updateCheckers()
	p.history = append(p.history, m)
	p.legal = p.generateLegal(them)
	p.gameOver = len(p.legal) == 0

	last := &p.history[len(p.history)-1]
	last.GivesCheck = p.inCheck[them]
	last.GivesCheckmate = p.gameOver && last.GivesCheck
}

// applyRaw moves pieces for m and flips the side to move. It performs no
// validation and leaves check flags, history and legal moves stale.
func (p *Position) applyRaw(m Move) {
	p.legal = nil
	us := m.Piece.Color

	if m.Captured != NoPieceID {
		victim := &p.pieces[m.Captured]
		p.board[victim.Square] = NoPieceID
		victim.Alive = false
		victim.Square = NoSquare
		p.revokeRookRight(m.CapturedPiece)
	}

	mover := &p.pieces[m.Mover]
	p.board[m.From] = NoPieceID
	p.board[m.To] = m.Mover
	mover.Square = m.To
	mover.HasMoved = true

	switch m.Kind {
	case Promotion:
		mover.Kind = m.Promotion
	case CastleKingside, CastleQueenside:
		g := &castleGeometries[us][castleSideOf(m.Kind)]
		rid := p.board[g.rookFrom]
		p.board[g.rookFrom] = NoPieceID
		p.board[g.rookTo] = rid
		p.pieces[rid].Square = g.rookTo
		p.pieces[rid].HasMoved = true
	}

	switch m.Piece.Kind {
	case King:
		p.castling[us] = [2]bool{}
	case Rook:
		p.revokeRookRight(m.Piece)
	}

	p.sideToMove = p.sideToMove.Other()
}

// revokeRookRight clears the castling right tied to a rook leaving (or being
// captured on) its original corner.
func (p *Position) revokeRookRight(rook Piece) {
	if rook.Kind != Rook || rook.Color > Black {
		return
	}
	for side := KingSide; side <= QueenSide; side++ {
		if castleGeometries[rook.Color][side].rookFrom == rook.Square {
			p.castling[rook.Color][side] = false
		}
	}
}
