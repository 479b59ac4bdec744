package board

import (
	"fmt"
	"strings"
)

// Notation returns m in the algebraic subset used for move interchange:
// an optional piece letter, minimal disambiguation, "x" for captures,
// "0-0" / "0-0-0" for castling, "/Q" style promotion, an "e.p." suffix for
// en passant, and "+" or "#" for check and mate. Moves that are not legal
// in p render as "--".
func (p *Position) Notation(m Move) string {
	if m.IsNone() {
		return "--"
	}
	m, err := p.Resolve(m)
	if err != nil {
		return "--"
	}

	var sb strings.Builder
	switch m.Kind {
	case CastleKingside:
		sb.WriteString("0-0")
	case CastleQueenside:
		sb.WriteString("0-0-0")
	default:
		if m.Piece.Kind == Pawn {
			if m.IsCapture() {
				sb.WriteByte(byte('a' + m.From.File()))
			}
		} else {
			sb.WriteByte(m.Piece.Kind.Letter())
			sb.WriteString(p.disambiguation(m))
		}
		if m.IsCapture() {
			sb.WriteByte('x')
		}
		sb.WriteString(m.To.String())
		if m.IsPromotion() {
			sb.WriteByte('/')
			sb.WriteByte(m.Promotion.Letter())
		}
		if m.Kind == EnPassant {
			sb.WriteString("e.p.")
		}
	}

	check, mate := m.GivesCheck, m.GivesCheckmate
	if check && !mate {
		// Mate is only known after the reply set has been generated.
		mate = !p.Successor(m).HasLegalMoves()
	}
	switch {
	case mate:
		sb.WriteByte('#')
	case check:
		sb.WriteByte('+')
	}

	return sb.String()
}

// disambiguation returns the smallest origin hint that separates m from
// other pieces of the same kind able to reach the same square.
func (p *Position) disambiguation(m Move) string {
	sameFile, sameRank, others := false, false, false
	for _, o := range p.LegalMoves(m.Piece.Color) {
		if o.To != m.To || o.From == m.From || o.Piece.Kind != m.Piece.Kind {
			continue
		}
		others = true
		if o.From.File() == m.From.File() {
			sameFile = true
		}
		if o.From.Rank() == m.From.Rank() {
			sameRank = true
		}
	}

	switch {
	case !others:
		return ""
	case !sameFile:
		return string(rune('a' + m.From.File()))
	case !sameRank:
		return string(rune('1' + m.From.Rank()))
	default:
		return m.From.String()
	}
}

// MovesToNotation converts a line of moves starting at pos into notation.
// It stops at the first move that is not legal in its position.
func MovesToNotation(pos *Position, moves []Move) []string {
	out := make([]string, 0, len(moves))
	cur := pos
	for _, m := range moves {
		legal, err := cur.Resolve(m)
		if err != nil {
			break
		}
		out = append(out, cur.Notation(legal))
		cur = cur.Successor(legal)
	}
	return out
}

// notationQuery is the parsed form of a notation string.
type notationQuery struct {
	castle    MoveKind // Normal unless castling
	kind      PieceType
	fromFile  int // -1 when not given
	fromRank  int // -1 when not given
	to        Square
	capture   bool
	enPassant bool
	promotion PieceType
}

// ParseNotation maps s to the single legal move it denotes in pos for the
// side to move. "O-O" and "=Q" are accepted alongside "0-0" and "/Q". Text
// that cannot be parsed, matches no legal move, or matches more than one
// returns ErrMalformedNotation.
func ParseNotation(s string, pos *Position) (Move, error) {
	q, err := parseNotationText(s)
	if err != nil {
		return NoMove, err
	}

	var found []Move
	for _, m := range pos.LegalMoves(pos.SideToMove()) {
		if q.matches(m) {
			found = append(found, m)
		}
	}

	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return NoMove, fmt.Errorf("%w: %q matches no legal move", ErrMalformedNotation, s)
	default:
		return NoMove, fmt.Errorf("%w: %q is ambiguous (%d moves)", ErrMalformedNotation, s, len(found))
	}
}

func parseNotationText(s string) (notationQuery, error) {
	q := notationQuery{castle: Normal, kind: Pawn, fromFile: -1, fromRank: -1, promotion: NoPieceType}
	bad := func(why string) (notationQuery, error) {
		return q, fmt.Errorf("%w: %q: %s", ErrMalformedNotation, s, why)
	}

	t := strings.TrimSpace(s)
	t = strings.TrimRight(t, "+#!?")
	if strings.HasSuffix(t, "e.p.") {
		q.enPassant = true
		t = strings.TrimSpace(strings.TrimSuffix(t, "e.p."))
	}

	switch strings.ReplaceAll(t, "O", "0") {
	case "0-0":
		q.castle, q.kind = CastleKingside, King
		return q, nil
	case "0-0-0":
		q.castle, q.kind = CastleQueenside, King
		return q, nil
	}

	// Promotion suffix: "/Q", "=Q" or a bare trailing letter.
	if n := len(t); n >= 3 {
		if pt := PieceTypeFromLetter(t[n-1]); pt != NoPieceType && t[n-1] >= 'A' && t[n-1] <= 'Z' {
			q.promotion = pt
			t = t[:n-1]
			if c := t[len(t)-1]; c == '/' || c == '=' {
				t = t[:len(t)-1]
			}
			if pt == Pawn || pt == King {
				return bad("invalid promotion piece")
			}
		}
	}

	if len(t) < 2 {
		return bad("too short")
	}

	if c := t[0]; c >= 'A' && c <= 'Z' {
		q.kind = PieceTypeFromLetter(c)
		if q.kind == NoPieceType || q.kind == Pawn {
			return bad("unknown piece letter")
		}
		t = t[1:]
	}

	if len(t) < 2 {
		return bad("missing destination")
	}
	to, err := ParseSquare(t[len(t)-2:])
	if err != nil {
		return bad("bad destination square")
	}
	q.to = to

	for _, c := range []byte(t[:len(t)-2]) {
		switch {
		case c == 'x' || c == ':':
			q.capture = true
		case c >= 'a' && c <= 'h' && q.fromFile < 0 && !q.capture:
			q.fromFile = int(c - 'a')
		case c >= '1' && c <= '8' && q.fromRank < 0 && !q.capture:
			q.fromRank = int(c - '1')
		case c == '-':
		default:
			return bad(fmt.Sprintf("unexpected %q", c))
		}
	}

	if q.promotion != NoPieceType && q.kind != Pawn {
		return bad("only pawns promote")
	}
	return q, nil
}

func (q notationQuery) matches(m Move) bool {
	if q.castle != Normal {
		return m.Kind == q.castle
	}
	if m.IsCastling() || m.Piece.Kind != q.kind || m.To != q.to {
		return false
	}
	if q.fromFile >= 0 && m.From.File() != q.fromFile {
		return false
	}
	if q.fromRank >= 0 && m.From.Rank() != q.fromRank {
		return false
	}
	if q.capture && !m.IsCapture() {
		return false
	}
	if q.enPassant && m.Kind != EnPassant {
		return false
	}
	return m.Promotion == q.promotion
}
