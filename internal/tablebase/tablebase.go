// Package tablebase looks up endgame positions in the Lichess tablebase
// service and plays the moves it recommends.
package tablebase

import (
	"errors"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
)

// MaxPieces is the largest piece count (kings included) the service covers.
const MaxPieces = 7

// ErrNotInTable is returned for positions the tablebase cannot answer.
var ErrNotInTable = errors.New("position not in tablebase")

// WDL represents Win/Draw/Loss result.
type WDL int

const (
	WDLLoss        WDL = -2
	WDLBlessedLoss WDL = -1 // loss the fifty-move rule may save
	WDLDraw        WDL = 0
	WDLCursedWin   WDL = 1 // win the fifty-move rule may spoil
	WDLWin         WDL = 2
)

func (w WDL) String() string {
	switch w {
	case WDLLoss:
		return "loss"
	case WDLBlessedLoss:
		return "blessed-loss"
	case WDLCursedWin:
		return "cursed-win"
	case WDLWin:
		return "win"
	}
	return "draw"
}

// Result is one tablebase answer, from the side to move's point of view.
type Result struct {
	WDL  WDL
	DTZ  int        // distance to zeroing move
	Move board.Move // best move, none in terminal positions
}

// winScore stays below the mate range so a tablebase win is never reported
// as a forced mate.
const winScore = engine.MateScore - 2*engine.MaxPly

// WDLToScore converts a WDL result to a search score.
func WDLToScore(wdl WDL) int {
	switch wdl {
	case WDLWin:
		return winScore
	case WDLCursedWin:
		return winScore - 100
	case WDLBlessedLoss:
		return -winScore + 100
	case WDLLoss:
		return -winScore
	}
	return 0
}

// CountPieces returns the number of living pieces of both colours.
func CountPieces(pos *board.Position) int {
	return len(pos.LivingPieces(board.White)) + len(pos.LivingPieces(board.Black))
}

func categoryToWDL(category string) (WDL, bool) {
	switch category {
	case "win", "syzygy-win":
		return WDLWin, true
	case "maybe-win", "cursed-win":
		return WDLCursedWin, true
	case "draw":
		return WDLDraw, true
	case "maybe-loss", "blessed-loss":
		return WDLBlessedLoss, true
	case "loss", "syzygy-loss":
		return WDLLoss, true
	}
	return WDLDraw, false
}
