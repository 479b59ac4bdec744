package board

// Color represents the color of a piece or player.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// PieceType represents the kind of a chess piece.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

// PieceTypes lists every real piece kind, in value order.
var PieceTypes = [6]PieceType{Pawn, Knight, Bishop, Rook, Queen, King}

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Letter returns the upper-case notation letter for the piece type.
// Pawns have the letter 'P' even though algebraic notation omits it.
func (pt PieceType) Letter() byte {
	switch pt {
	case Pawn:
		return 'P'
	case Knight:
		return 'N'
	case Bishop:
		return 'B'
	case Rook:
		return 'R'
	case Queen:
		return 'Q'
	case King:
		return 'K'
	default:
		return ' '
	}
}

// PieceTypeFromLetter converts a notation letter (either case) to a piece type.
func PieceTypeFromLetter(c byte) PieceType {
	switch c {
	case 'P', 'p':
		return Pawn
	case 'N', 'n':
		return Knight
	case 'B', 'b':
		return Bishop
	case 'R', 'r':
		return Rook
	case 'Q', 'q':
		return Queen
	case 'K', 'k':
		return King
	default:
		return NoPieceType
	}
}

// IsSlider reports whether the piece type moves along rays.
func (pt PieceType) IsSlider() bool {
	switch pt {
	case Bishop, Rook, Queen:
		return true
	default:
		return false
	}
}

// PieceID addresses a piece in a position's arena. White's roster occupies
// ids 0-15 and Black's ids 16-31.
type PieceID int8

// NoPieceID marks an empty board cell or an absent capture.
const NoPieceID PieceID = -1

// RosterSize is the number of slots in each side's roster.
const RosterSize = 16

// Color returns the roster the id belongs to.
func (id PieceID) Color() Color {
	if id < 0 {
		return NoColor
	}
	return Color(id / RosterSize)
}

// Piece is one entry of a position's piece arena.
type Piece struct {
	Kind     PieceType
	Color    Color
	Alive    bool
	HasMoved bool
	Square   Square // NoSquare once captured
}

// Char returns the FEN character for the piece.
// Uppercase for white, lowercase for black.
func (p Piece) Char() byte {
	c := p.Kind.Letter()
	if p.Color == Black {
		c += 'a' - 'A'
	}
	return c
}

// String returns the FEN character for the piece.
func (p Piece) String() string {
	if !p.Alive {
		return " "
	}
	return string(p.Char())
}

// pieceFromChar converts a FEN character to a kind and color.
func pieceFromChar(c byte) (PieceType, Color, bool) {
	pt := PieceTypeFromLetter(c)
	if pt == NoPieceType {
		return NoPieceType, NoColor, false
	}
	if c >= 'a' && c <= 'z' {
		return pt, Black, true
	}
	return pt, White, true
}
