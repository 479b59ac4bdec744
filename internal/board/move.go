package board

import "fmt"

// MoveKind classifies the special handling a move needs when applied.
type MoveKind uint8

const (
	Normal MoveKind = iota
	EnPassant
	Promotion
	CastleKingside
	CastleQueenside
)

// String returns the move kind name.
func (k MoveKind) String() string {
	switch k {
	case Normal:
		return "Normal"
	case EnPassant:
		return "EnPassant"
	case Promotion:
		return "Promotion"
	case CastleKingside:
		return "CastleKingside"
	case CastleQueenside:
		return "CastleQueenside"
	default:
		return "Unknown"
	}
}

// Move is a value object describing one ply. Piece and CapturedPiece are
// snapshots taken before the move was applied, so a move kept in history
// stays valid evidence after the arena entries change.
type Move struct {
	Mover         PieceID
	Piece         Piece
	From          Square
	To            Square
	Captured      PieceID // NoPieceID when nothing is captured
	CapturedPiece Piece
	Kind          MoveKind
	Promotion     PieceType // NoPieceType unless Kind == Promotion

	GivesCheck     bool
	GivesCheckmate bool
}

// NoMove represents the absence of a move.
var NoMove = Move{Mover: NoPieceID, From: NoSquare, To: NoSquare, Captured: NoPieceID, Promotion: NoPieceType}

// IsNone reports whether m is NoMove.
func (m Move) IsNone() bool {
	return m.Mover == NoPieceID
}

// IsCapture returns true if this move captures a piece.
func (m Move) IsCapture() bool {
	return m.Captured != NoPieceID
}

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool {
	return m.Kind == CastleKingside || m.Kind == CastleQueenside
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Kind == Promotion
}

// IsDoublePawnPush reports whether the move advanced a pawn two ranks.
func (m Move) IsDoublePawnPush() bool {
	if m.IsNone() || m.Piece.Kind != Pawn {
		return false
	}
	d := m.To.Rank() - m.From.Rank()
	return d == 2 || d == -2
}

// SameAs compares the identifying parts of two moves, ignoring the check
// annotations that are only known after application.
func (m Move) SameAs(o Move) bool {
	return m.From == o.From && m.To == o.To && m.Kind == o.Kind && m.Promotion == o.Promotion
}

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m.IsNone() {
		return "0000"
	}

	s := m.From.String() + m.To.String()
	if m.IsPromotion() {
		s += string(m.Promotion.Letter() + 'a' - 'A')
	}
	return s
}

// ParseUCI maps a UCI format move string ("e2e4", "e7e8q") to the matching
// legal move in pos.
func ParseUCI(s string, pos *Position) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("%w: %q", ErrMalformedNotation, s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	promo := NoPieceType
	if len(s) == 5 {
		promo = PieceTypeFromLetter(s[4])
		switch promo {
		case Knight, Bishop, Rook, Queen:
		default:
			return NoMove, fmt.Errorf("%w: invalid promotion piece %q", ErrMalformedNotation, s[4])
		}
	}

	for _, m := range pos.LegalMoves(pos.SideToMove()) {
		if m.From == from && m.To == to && m.Promotion == promo {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %s is not legal", ErrIllegalMove, s)
}
