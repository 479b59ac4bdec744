package engine

import (
	"context"
	"sync/atomic"

	"github.com/hailam/chesscore/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 64

	// MaxSearchDepth bounds every search regardless of the requested depth.
	MaxSearchDepth = 10
)

// ClampDepth limits depth to [0, MaxSearchDepth].
func ClampDepth(depth int) int {
	switch {
	case depth < 0:
		return 0
	case depth > MaxSearchDepth:
		return MaxSearchDepth
	default:
		return depth
	}
}

// DepthForIntelligence maps an intelligence level to a search depth. Level
// n searches n plies; out-of-range levels are clamped.
func DepthForIntelligence(level int) int {
	return ClampDepth(level)
}

// Searcher performs a fixed-depth negascout search. A Searcher is not safe
// for concurrent use; parallel searches use one Searcher per goroutine
// sharing a stop flag.
type Searcher struct {
	eval     *Evaluator
	orderer  *MoveOrderer
	stopFlag *atomic.Bool
	nodes    uint64
}

// NewSearcher creates a searcher with its own stop flag.
func NewSearcher(eval *Evaluator) *Searcher {
	return newSearcher(eval, new(atomic.Bool))
}

func newSearcher(eval *Evaluator, stop *atomic.Bool) *Searcher {
	if eval == nil {
		eval = defaultEvaluator
	}
	return &Searcher{
		eval:     eval,
		orderer:  NewMoveOrderer(),
		stopFlag: stop,
	}
}

// Stop signals the search to stop.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// Stopped reports whether the search has been stopped.
func (s *Searcher) Stopped() bool {
	return s.stopFlag.Load()
}

// Reset prepares the searcher for a new search.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.nodes = 0
	s.orderer.Clear()
}

// Nodes returns the number of nodes visited since the last Reset.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Search picks a move for the side to move in pos, searching depth plies
// (clamped to MaxSearchDepth). Depth 0 and 1 both score each legal move by
// the static evaluation of its successor. The score is from the side to
// move's point of view. ok is false when there is no legal move. If ctx is
// cancelled the search unwinds and returns the best move seen so far.
func (s *Searcher) Search(ctx context.Context, pos *board.Position, depth int) (board.Move, int, bool) {
	s.Reset()
	stop := context.AfterFunc(ctx, s.Stop)
	defer stop()

	moves := pos.LegalMoves(pos.SideToMove())
	if len(moves) == 0 {
		return board.NoMove, s.leaf(pos, 0), false
	}

	best, score := s.searchRoot(pos, moves, ClampDepth(depth))
	return best, score, true
}

// searchRoot runs negascout over the root moves in generation order, so
// the first of several equally scored moves wins.
func (s *Searcher) searchRoot(pos *board.Position, moves []board.Move, depth int) (board.Move, int) {
	alpha, beta := -Infinity, Infinity
	best := moves[0]

	for i, m := range moves {
		child := pos.Successor(m)

		var score int
		if i == 0 {
			score = -s.negascout(child, depth-1, -beta, -alpha, 1)
		} else {
			score = -s.negascout(child, depth-1, -alpha-1, -alpha, 1)
			if score > alpha && score < beta {
				score = -s.negascout(child, depth-1, -beta, -alpha, 1)
			}
		}

		if s.Stopped() {
			break
		}
		if score > alpha {
			alpha = score
			best = m
		}
	}

	return best, alpha
}

// negascout returns the fail-hard score of pos for the side to move within
// (alpha, beta).
func (s *Searcher) negascout(pos *board.Position, depth, alpha, beta, ply int) int {
	if s.stopFlag.Load() {
		return 0
	}
	s.nodes++

	if pos.GameOver() || depth <= 0 || ply >= MaxPly {
		return s.leaf(pos, ply)
	}

	moves := pos.LegalMoves(pos.SideToMove())
	s.orderer.Order(moves, ply)

	b := beta
	for i, m := range moves {
		child := pos.Successor(m)
		score := -s.negascout(child, depth-1, -b, -alpha, ply+1)
		if i > 0 && score > alpha && score < beta && depth > 1 {
			// The null window failed high; find the real value.
			score = -s.negascout(child, depth-1, -beta, -score, ply+1)
		}

		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			s.orderer.UpdateKillers(m, ply)
			return beta
		}
		b = alpha + 1
	}

	return alpha
}

// leaf scores pos statically for the side to move. Mates found closer to
// the root score higher.
func (s *Searcher) leaf(pos *board.Position, ply int) int {
	if pos.Status() == board.Checkmate {
		return -MateScore + ply
	}
	score := s.eval.Score(pos)
	if pos.SideToMove() == board.Black {
		return -score
	}
	return score
}

// abs returns the absolute value of an integer.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
