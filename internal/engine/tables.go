package engine

import "github.com/hailam/chesscore/internal/board"

// Piece-square tables from White's point of view, written as the board is
// seen from White's side: the first row is rank 8, the last row rank 1.

var pawnMgTable = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	8, 16, 24, 32, 32, 24, 16, 8,
	3, 12, 20, 28, 28, 20, 12, 3,
	-5, 4, 10, 20, 20, 10, 4, -5,
	-6, 4, 5, 16, 16, 5, 4, -6,
	-6, 4, 2, 5, 5, 2, 4, -6,
	-6, 4, 4, -15, -15, 4, 4, -6,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var pawnEgTable = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	25, 40, 45, 45, 45, 45, 40, 25,
	17, 32, 35, 35, 35, 35, 32, 17,
	5, 24, 24, 24, 24, 24, 24, 5,
	-9, 11, 11, 11, 11, 11, 11, -9,
	-17, 3, 3, 3, 3, 3, 3, -17,
	-20, 0, 0, 0, 0, 0, 0, -20,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightMgTable = [64]int{
	-53, -42, -32, -21, -21, -32, -42, -53,
	-42, -32, -10, 0, 0, -10, -32, -42,
	-21, 5, 10, 16, 16, 10, 5, -21,
	-18, 0, 10, 21, 21, 10, 0, -18,
	-18, 0, 3, 21, 21, 3, 0, -18,
	-21, -10, 0, 0, 0, 0, -10, -21,
	-42, -32, -10, 0, 0, -10, -32, -42,
	-53, -42, -32, -21, -21, -32, -42, -53,
}

var knightEgTable = [64]int{
	-56, -44, -34, -22, -22, -34, -44, -56,
	-44, -34, -10, 0, 0, -10, -34, -44,
	-22, 0, 12, 22, 22, 12, 0, -22,
	-22, 0, 12, 22, 22, 12, 0, -22,
	-22, 0, 12, 22, 22, 12, 0, -22,
	-22, -4, 6, 12, 12, 6, -4, -22,
	-44, -34, -10, 0, 0, -10, -34, -44,
	-56, -44, -34, -22, -22, -34, -44, -56,
}

var bishopMgTable = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 4, 2, 2, 2, 2, 4, 0,
	0, 2, 4, 4, 4, 4, 2, 0,
	0, 2, 4, 4, 4, 4, 2, 0,
	0, 2, 4, 4, 4, 4, 2, 0,
	0, 3, 4, 4, 4, 4, 3, 0,
	0, 4, 2, 2, 2, 2, 4, 0,
	-5, -5, -7, -5, -5, -7, -5, -5,
}

var bishopEgTable = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 2, 2, 2, 2, 2, 2, 0,
	0, 2, 4, 4, 4, 4, 2, 0,
	0, 2, 4, 4, 4, 4, 2, 0,
	0, 2, 4, 4, 4, 4, 2, 0,
	0, 2, 4, 4, 4, 4, 2, 0,
	0, 2, 2, 2, 2, 2, 2, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var rookMgTable = [64]int{
	0, 3, 5, 5, 5, 5, 3, 0,
	15, 20, 20, 20, 20, 20, 20, 15,
	0, 3, 5, 5, 5, 5, 3, 0,
	0, 3, 5, 5, 5, 5, 3, 0,
	-2, 2, 5, 5, 5, 5, 2, -2,
	-2, 2, 5, 5, 5, 5, 2, -2,
	-4, 2, 5, 5, 5, 5, 2, -4,
	-2, 2, 5, 5, 5, 5, 2, -2,
}

var rookEgTable = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	10, 12, 12, 12, 12, 12, 12, 10,
	0, 2, 2, 2, 2, 2, 2, 0,
	0, 2, 2, 2, 2, 2, 2, 0,
	0, 2, 2, 2, 2, 2, 2, 0,
	0, 2, 2, 2, 2, 2, 2, 0,
	0, 2, 2, 2, 2, 2, 2, 0,
	0, 0, 0, 2, 2, 0, 0, 0,
}

var queenMgTable = [64]int{
	-10, -5, 0, 0, 0, 0, -5, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 5, 5, 6, 6, 5, 5, 0,
	0, 5, 6, 6, 6, 6, 5, 0,
	0, 5, 6, 6, 6, 6, 5, 0,
	0, 5, 5, 6, 6, 5, 5, 0,
	-5, 0, 5, 5, 5, 5, 0, -5,
	-10, -5, 0, 0, 0, 0, -5, -10,
}

var queenEgTable = [64]int{
	-20, -10, -5, 0, 0, -5, -10, -20,
	-10, 0, 5, 8, 8, 5, 0, -10,
	-5, 5, 10, 12, 12, 10, 5, -5,
	0, 8, 12, 15, 15, 12, 8, 0,
	0, 8, 12, 15, 15, 12, 8, 0,
	-5, 5, 10, 12, 12, 10, 5, -5,
	-10, 0, 5, 8, 8, 5, 0, -10,
	-20, -10, -5, 0, 0, -5, -10, -20,
}

var kingMgTable = [64]int{
	-22, -35, -40, -40, -40, -40, -35, -22,
	-22, -35, -40, -40, -40, -40, -35, -22,
	-25, -35, -40, -45, -45, -40, -35, -25,
	-15, -30, -35, -40, -40, -35, -30, -15,
	-10, -15, -20, -25, -25, -20, -15, -10,
	4, -2, -5, -15, -15, -5, -2, 4,
	16, 14, 7, -3, -3, 7, 14, 16,
	24, 24, 9, 0, 0, 9, 24, 24,
}

var kingEgTable = [64]int{
	0, 8, 16, 24, 24, 16, 8, 0,
	8, 16, 24, 32, 32, 24, 16, 8,
	16, 24, 32, 40, 40, 32, 24, 16,
	24, 32, 40, 48, 48, 40, 32, 24,
	24, 32, 40, 48, 48, 40, 32, 24,
	16, 24, 32, 40, 40, 32, 24, 16,
	8, 16, 24, 32, 32, 24, 16, 8,
	0, 8, 16, 24, 24, 16, 8, 0,
}

// phaseTables holds the midgame/endgame pair for one piece kind, indexed
// by board square (a1 = 0) for each color.
type phaseTables struct {
	mg, eg [2][64]int
}

// pieceTables is built once at init and only read afterwards.
var pieceTables = func() (t [6]phaseTables) {
	visual := [6][2]*[64]int{
		board.Pawn:   {&pawnMgTable, &pawnEgTable},
		board.Knight: {&knightMgTable, &knightEgTable},
		board.Bishop: {&bishopMgTable, &bishopEgTable},
		board.Rook:   {&rookMgTable, &rookEgTable},
		board.Queen:  {&queenMgTable, &queenEgTable},
		board.King:   {&kingMgTable, &kingEgTable},
	}
	for pt, pair := range visual {
		white := mirrorTable(*pair[0])
		t[pt].mg[board.White] = white
		t[pt].mg[board.Black] = mirrorTable(white)

		white = mirrorTable(*pair[1])
		t[pt].eg[board.White] = white
		t[pt].eg[board.Black] = mirrorTable(white)
	}
	return t
}()

// mirrorTable flips a table top to bottom.
func mirrorTable(t [64]int) [64]int {
	var out [64]int
	for sq := board.A1; sq <= board.H8; sq++ {
		out[sq] = t[sq.Mirror()]
	}
	return out
}
