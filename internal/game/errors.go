package game

import "errors"

var (
	// ErrSearchInProgress is returned when the position is changed while a
	// computer search is running on it.
	ErrSearchInProgress = errors.New("search in progress")

	// ErrGameOver is returned for moves or searches after the game ended.
	ErrGameOver = errors.New("game is over")

	// ErrNotYourTurn is returned when a human move is submitted while the
	// computer is to move.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrNoSession is returned for unknown session ids.
	ErrNoSession = errors.New("no such session")

	// ErrStaleResult is returned when the position changed while a search
	// was running; the search result is discarded.
	ErrStaleResult = errors.New("search result is stale")
)
