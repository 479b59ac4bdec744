package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string and returns a Position.
// The half-move clock and full-move number fields are optional.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 || len(parts) > 6 {
		return nil, fmt.Errorf("%w: need 4 to 6 fields, got %d", ErrInvalidFEN, len(parts))
	}

	pos := newEmptyPosition()

	// Parse piece placement (field 0)
	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}
	for c := White; c <= Black; c++ {
		if n := pos.Count(c, King); n != 1 {
			return nil, fmt.Errorf("%w: %s has %d kings", ErrInvalidFEN, c, n)
		}
	}
	if pos.pawnOnBackRank() {
		return nil, fmt.Errorf("%w: pawns cannot be on rank 1 or 8", ErrInvalidFEN)
	}

	// Parse side to move (field 1)
	switch parts[1] {
	case "w":
		pos.sideToMove = White
	case "b":
		pos.sideToMove = Black
	default:
		return nil, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, parts[1])
	}

	// Parse castling rights (field 2)
	if err := parseCastlingRights(pos, parts[2]); err != nil {
		return nil, err
	}
	pos.deriveHasMoved()

	// Parse en passant square (field 3)
	if parts[3] != "-" {
		if err := pos.synthesizeDoublePush(parts[3]); err != nil {
			return nil, err
		}
	}

	// Parse half-move clock (field 4, optional)
	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil || hmc < 0 {
			return nil, fmt.Errorf("%w: half-move clock %q", ErrInvalidFEN, parts[4])
		}
		pos.halfMoveClock = hmc
	}

	// Parse full-move number (field 5, optional)
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil || fmn < 1 {
			return nil, fmt.Errorf("%w: full-move number %q", ErrInvalidFEN, parts[5])
		}
		pos.fullMoveNumber = fmn
	}

	// Update derived state
	pos.updateCheckers()
	if pos.inCheck[pos.sideToMove.Other()] {
		return nil, fmt.Errorf("%w: side not to move is in check", ErrInvalidFEN)
	}
	pos.legal = pos.generateLegal(pos.sideToMove)
	pos.gameOver = len(pos.legal) == 0

	return pos, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: need 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for j := 0; j < len(rankStr); j++ {
			c := rankStr[j]
			if file > 7 {
				return fmt.Errorf("%w: too many squares in rank %d", ErrInvalidFEN, rank+1)
			}

			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}

			kind, color, ok := pieceFromChar(c)
			if !ok {
				return fmt.Errorf("%w: piece character %q", ErrInvalidFEN, c)
			}
			if _, err := pos.addPiece(kind, color, NewSquare(file, rank)); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidFEN, err)
			}
			file++
		}

		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d squares", ErrInvalidFEN, rank+1, file)
		}
	}

	return nil
}

// parseCastlingRights parses the castling field. Rights whose king or rook
// is not on its original square are dropped.
func parseCastlingRights(pos *Position, castling string) error {
	if castling == "-" {
		return nil
	}

	for i := 0; i < len(castling); i++ {
		var c Color
		var side CastleSide
		switch castling[i] {
		case 'K':
			c, side = White, KingSide
		case 'Q':
			c, side = White, QueenSide
		case 'k':
			c, side = Black, KingSide
		case 'q':
			c, side = Black, QueenSide
		default:
			return fmt.Errorf("%w: castling character %q", ErrInvalidFEN, castling[i])
		}

		g := &castleGeometries[c][side]
		king, kok := pos.PieceAt(g.kingFrom)
		rook, rok := pos.PieceAt(g.rookFrom)
		if kok && rok && king.Kind == King && king.Color == c && rook.Kind == Rook && rook.Color == c {
			pos.castling[c][side] = true
		}
	}

	return nil
}

// deriveHasMoved reconstructs move-history flags that FEN does not carry:
// pawns off their start rank have moved, and kings and rooks have moved
// unless a castling right still depends on them.
func (p *Position) deriveHasMoved() {
	for id := range p.pieces {
		pc := &p.pieces[id]
		if !pc.Alive {
			continue
		}
		switch pc.Kind {
		case Pawn:
			start := 1
			if pc.Color == Black {
				start = 6
			}
			pc.HasMoved = pc.Square.Rank() != start
		case King:
			pc.HasMoved = !(p.castling[pc.Color][KingSide] || p.castling[pc.Color][QueenSide])
		case Rook:
			pc.HasMoved = true
			for side := KingSide; side <= QueenSide; side++ {
				if p.castling[pc.Color][side] && castleGeometries[pc.Color][side].rookFrom == pc.Square {
					pc.HasMoved = false
				}
			}
		}
	}
}

// synthesizeDoublePush records the double pawn advance implied by a FEN
// en-passant target, so en passant keeps depending on the previous move.
func (p *Position) synthesizeDoublePush(field string) error {
	target, err := ParseSquare(field)
	if err != nil {
		return fmt.Errorf("%w: en passant square %q", ErrInvalidFEN, field)
	}

	mover := p.sideToMove.Other()
	dir, wantRank := 1, 2
	if mover == Black {
		dir, wantRank = -1, 5
	}
	if target.Rank() != wantRank || !p.IsEmpty(target) {
		return fmt.Errorf("%w: en passant square %s", ErrInvalidFEN, target)
	}

	from, _ := target.offset(0, -dir)
	to, _ := target.offset(0, dir)
	id := p.board[to]
	if !p.IsEmpty(from) || id == NoPieceID || p.pieces[id].Kind != Pawn || p.pieces[id].Color != mover {
		return fmt.Errorf("%w: no pawn double advance behind %s", ErrInvalidFEN, target)
	}

	snapshot := p.pieces[id]
	snapshot.Square = from
	snapshot.HasMoved = false
	p.history = append(p.history, Move{
		Mover:     id,
		Piece:     snapshot,
		From:      from,
		To:        to,
		Captured:  NoPieceID,
		Kind:      Normal,
		Promotion: NoPieceType,
	})
	return nil
}

// enPassantTarget returns the square skipped by the previous double pawn
// advance, or NoSquare.
func (p *Position) enPassantTarget() Square {
	last := p.LastMove()
	if !last.IsDoublePawnPush() {
		return NoSquare
	}
	return NewSquare(last.To.File(), (last.From.Rank()+last.To.Rank())/2)
}

func (p *Position) castlingString() string {
	s := ""
	if p.castling[White][KingSide] {
		s += "K"
	}
	if p.castling[White][QueenSide] {
		s += "Q"
	}
	if p.castling[Black][KingSide] {
		s += "k"
	}
	if p.castling[Black][QueenSide] {
		s += "q"
	}
	if s == "" {
		return "-"
	}
	return s
}

// ToFEN returns the FEN representation of the position.
func (p *Position) ToFEN() string {
	var sb strings.Builder

	// Piece placement
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc, ok := p.PieceAt(NewSquare(file, rank))
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(pc.Char())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	// Side to move
	sb.WriteByte(' ')
	if p.sideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.castlingString())
	sb.WriteByte(' ')
	sb.WriteString(p.enPassantTarget().String())

	// Half-move clock and full-move number
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.halfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.fullMoveNumber))

	return sb.String()
}
