package board

import "errors"

var (
	// ErrIllegalMove is returned when a move violates a movement rule, leaves
	// the mover's king in check, or fails a castling precondition. The
	// position is left unchanged.
	ErrIllegalMove = errors.New("illegal move")

	// ErrMalformedNotation is returned when move text cannot be parsed or does
	// not identify exactly one legal move.
	ErrMalformedNotation = errors.New("malformed move notation")

	// ErrOutOfBounds is returned for coordinates that are not on the board.
	ErrOutOfBounds = errors.New("coordinate out of bounds")

	// ErrInvalidFEN is returned when a FEN string cannot be turned into a
	// valid position.
	ErrInvalidFEN = errors.New("invalid FEN")
)
