package board

import (
	"fmt"
	"sort"
	"strings"
)

// CastleSide selects the king or queen side for castling.
type CastleSide uint8

const (
	KingSide CastleSide = iota
	QueenSide
)

// Status describes whether the game in a position is still running.
type Status uint8

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Checkmate:
		return "Checkmate"
	case Stalemate:
		return "Stalemate"
	default:
		return "Ongoing"
	}
}

// rosters lists the arena ids of each side's roster.
var rosters = func() (r [2][RosterSize]PieceID) {
	for c := White; c <= Black; c++ {
		for i := 0; i < RosterSize; i++ {
			r[c][i] = PieceID(int(c)*RosterSize + i)
		}
	}
	return r
}()

func rosterIDs(c Color) []PieceID {
	if c > Black {
		return nil
	}
	return rosters[c][:]
}

// Position represents a complete chess game state.
//
// Board cells and roster slots both address the same piece arena, so a
// capture or promotion mutates one arena entry that every view sees. All
// mutation goes through Apply (or Successor for generator-produced moves).
type Position struct {
	pieces [2 * RosterSize]Piece
	board  [64]PieceID
	kings  [2]PieceID

	sideToMove Color
	inCheck    [2]bool
	gameOver   bool
	castling   [2][2]bool // [Color][CastleSide]
	history    []Move
	playerOne  Color

	halfMoveClock  int
	fullMoveNumber int

	// Display-only material totals written by the evaluator.
	material [2]int

	// Legal moves of the side to move. Filled whenever the side to move
	// changes and never mutated in place.
	legal []Move
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, _ := ParseFEN(StartFEN)
	return pos
}

// newEmptyPosition returns a position with an empty board and unused rosters.
func newEmptyPosition() *Position {
	p := &Position{
		fullMoveNumber: 1,
		kings:          [2]PieceID{NoPieceID, NoPieceID},
	}
	for i := range p.board {
		p.board[i] = NoPieceID
	}
	for i := range p.pieces {
		p.pieces[i] = Piece{Kind: NoPieceType, Color: PieceID(i).Color(), Square: NoSquare}
	}
	return p
}

// addPiece places a new piece in the first unused slot of its roster.
func (p *Position) addPiece(kind PieceType, c Color, sq Square) (PieceID, error) {
	if p.board[sq] != NoPieceID {
		return NoPieceID, fmt.Errorf("square %s already occupied", sq)
	}
	for _, id := range rosterIDs(c) {
		if p.pieces[id].Kind != NoPieceType {
			continue
		}
		p.pieces[id] = Piece{Kind: kind, Color: c, Alive: true, Square: sq}
		p.board[sq] = id
		if kind == King {
			p.kings[c] = id
		}
		return id, nil
	}
	return NoPieceID, fmt.Errorf("%s roster is full", c)
}

// Copy creates a deep copy of the position.
func (p *Position) Copy() *Position {
	c := *p
	c.history = append([]Move(nil), p.history...)
	return &c
}

// SideToMove returns the color whose turn it is.
func (p *Position) SideToMove() Color {
	return p.sideToMove
}

// InCheck reports whether the king of color c is attacked.
func (p *Position) InCheck(c Color) bool {
	if c > Black {
		return false
	}
	return p.inCheck[c]
}

// GameOver returns true if the side to move has no legal moves.
func (p *Position) GameOver() bool {
	return p.gameOver
}

// Status distinguishes checkmate from stalemate once the game is over.
func (p *Position) Status() Status {
	switch {
	case !p.gameOver:
		return Ongoing
	case p.inCheck[p.sideToMove]:
		return Checkmate
	default:
		return Stalemate
	}
}

// CanCastle reports the castling right of color c on the given side. The
// right alone does not make castling legal right now.
func (p *Position) CanCastle(c Color, side CastleSide) bool {
	if c > Black || side > QueenSide {
		return false
	}
	return p.castling[c][side]
}

// History returns a copy of the applied moves, oldest first.
func (p *Position) History() []Move {
	return append([]Move(nil), p.history...)
}

// LastMove returns the most recently applied move, or NoMove.
func (p *Position) LastMove() Move {
	if len(p.history) == 0 {
		return NoMove
	}
	return p.history[len(p.history)-1]
}

// PlayerOneColor returns the color played by the first player.
func (p *Position) PlayerOneColor() Color {
	return p.playerOne
}

// SetPlayerOneColor records which color the first player plays. It does not
// affect the rules.
func (p *Position) SetPlayerOneColor(c Color) {
	if c <= Black {
		p.playerOne = c
	}
}

// HalfMoveClock returns the number of plies since the last pawn move or capture.
func (p *Position) HalfMoveClock() int {
	return p.halfMoveClock
}

// FullMoveNumber returns the full move counter, starting at 1.
func (p *Position) FullMoveNumber() int {
	return p.fullMoveNumber
}

// MaterialTotals returns the material totals last written by an evaluator.
// They are for display only.
func (p *Position) MaterialTotals() (white, black int) {
	return p.material[White], p.material[Black]
}

// SetMaterialTotals stores display-only material totals.
func (p *Position) SetMaterialTotals(white, black int) {
	p.material = [2]int{white, black}
}

// PieceAt returns the piece on sq and whether the square is occupied.
func (p *Position) PieceAt(sq Square) (Piece, bool) {
	if !sq.IsValid() {
		return Piece{}, false
	}
	id := p.board[sq]
	if id == NoPieceID {
		return Piece{}, false
	}
	return p.pieces[id], true
}

// PieceIDAt returns the arena id of the piece on sq, or NoPieceID.
func (p *Position) PieceIDAt(sq Square) PieceID {
	if !sq.IsValid() {
		return NoPieceID
	}
	return p.board[sq]
}

// Piece returns the arena entry for id.
func (p *Position) Piece(id PieceID) Piece {
	if id < 0 || int(id) >= len(p.pieces) {
		return Piece{Kind: NoPieceType, Color: NoColor, Square: NoSquare}
	}
	return p.pieces[id]
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return sq.IsValid() && p.board[sq] == NoPieceID
}

// Roster returns a copy of color c's sixteen roster slots. Captured pieces
// stay in the roster with Alive == false.
func (p *Position) Roster(c Color) []Piece {
	if c > Black {
		return nil
	}
	out := make([]Piece, 0, RosterSize)
	for _, id := range rosterIDs(c) {
		out = append(out, p.pieces[id])
	}
	return out
}

// LivingPieces returns the ids of c's pieces still on the board.
func (p *Position) LivingPieces(c Color) []PieceID {
	var ids []PieceID
	for _, id := range rosterIDs(c) {
		if p.pieces[id].Alive {
			ids = append(ids, id)
		}
	}
	return ids
}

// KingSquare returns the square of c's king, or NoSquare.
func (p *Position) KingSquare(c Color) Square {
	if c > Black || p.kings[c] == NoPieceID {
		return NoSquare
	}
	k := p.pieces[p.kings[c]]
	if !k.Alive {
		return NoSquare
	}
	return k.Square
}

// Count returns how many living pieces of kind pt color c has.
func (p *Position) Count(c Color, pt PieceType) int {
	n := 0
	for _, id := range rosterIDs(c) {
		pc := &p.pieces[id]
		if pc.Alive && pc.Kind == pt {
			n++
		}
	}
	return n
}

// Equal reports whether two positions hold the same game state: board
// contents, living rosters, side to move, check flags, game-over flag and
// castling rights. History, counters and roster slot order are ignored.
func (p *Position) Equal(o *Position) bool {
	if o == nil {
		return false
	}
	if p.sideToMove != o.sideToMove || p.inCheck != o.inCheck ||
		p.gameOver != o.gameOver || p.castling != o.castling {
		return false
	}
	for sq := A1; sq <= H8; sq++ {
		a, aok := p.PieceAt(sq)
		b, bok := o.PieceAt(sq)
		if aok != bok || (aok && (a.Kind != b.Kind || a.Color != b.Color)) {
			return false
		}
	}
	for c := White; c <= Black; c++ {
		if !equalRosters(p.livingSignature(c), o.livingSignature(c)) {
			return false
		}
	}
	return true
}

type rosterEntry struct {
	kind PieceType
	sq   Square
}

func (p *Position) livingSignature(c Color) []rosterEntry {
	var out []rosterEntry
	for _, id := range rosterIDs(c) {
		pc := p.pieces[id]
		if pc.Alive {
			out = append(out, rosterEntry{pc.Kind, pc.Square})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].sq < out[j].sq })
	return out
}

func equalRosters(a, b []rosterEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Validate checks the placement invariants: exactly one living king per
// side and agreement between board cells and roster squares.
func (p *Position) Validate() error {
	for c := White; c <= Black; c++ {
		if n := p.Count(c, King); n != 1 {
			return fmt.Errorf("%s must have exactly one king, has %d", c, n)
		}
	}

	for id := range p.pieces {
		pc := p.pieces[id]
		if !pc.Alive {
			if pc.Square != NoSquare {
				return fmt.Errorf("captured piece %d still has square %s", id, pc.Square)
			}
			continue
		}
		if !pc.Square.IsValid() || p.board[pc.Square] != PieceID(id) {
			return fmt.Errorf("piece %d (%s) not on its board cell %s", id, pc, pc.Square)
		}
	}

	for sq := A1; sq <= H8; sq++ {
		id := p.board[sq]
		if id == NoPieceID {
			continue
		}
		if pc := p.pieces[id]; !pc.Alive || pc.Square != sq {
			return fmt.Errorf("board cell %s points at piece %d which is elsewhere", sq, id)
		}
	}

	if p.pawnOnBackRank() {
		return fmt.Errorf("pawns cannot be on rank 1 or 8")
	}

	return nil
}

func (p *Position) pawnOnBackRank() bool {
	for _, pc := range p.pieces {
		if pc.Alive && pc.Kind == Pawn && (pc.Square.Rank() == 0 || pc.Square.Rank() == 7) {
			return true
		}
	}
	return false
}

// IsInsufficientMaterial reports whether neither side can possibly mate.
func (p *Position) IsInsufficientMaterial() bool {
	minors := 0
	for _, pc := range p.pieces {
		if !pc.Alive {
			continue
		}
		switch pc.Kind {
		case King:
		case Knight, Bishop:
			minors++
		default:
			return false
		}
	}
	return minors <= 1
}

// IsFiftyMoveDraw reports whether fifty full moves passed without a pawn
// move or capture.
func (p *Position) IsFiftyMoveDraw() bool {
	return p.halfMoveClock >= 100
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			if pc, ok := p.PieceAt(NewSquare(file, rank)); ok {
				sb.WriteString(pc.String() + " ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.sideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.castlingString())
	fmt.Fprintf(&sb, "En passant: %s\n", p.enPassantTarget())
	fmt.Fprintf(&sb, "Status: %s\n", p.Status())
	fmt.Fprintf(&sb, "FEN: %s\n", p.ToFEN())
	return sb.String()
}
