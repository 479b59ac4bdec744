package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/chesscore/internal/board"
)

// rootResult is one worker's verdict on a root move.
type rootResult struct {
	index int
	score int
}

// splitRoot searches the first root move on the calling goroutine to get a
// lower bound, then hands the remaining moves to the engine's searchers.
// Each worker searches its own successor clones against that bound, and a
// single aggregator (this goroutine) picks the best result. Ties go to the
// move generated first, matching the sequential search.
func (e *Engine) splitRoot(ctx context.Context, root *board.Position, moves []board.Move, depth int) (board.Move, int) {
	lead := e.searchers[0]
	alpha0 := -lead.negascout(root.Successor(moves[0]), depth-1, -Infinity, Infinity, 1)
	if lead.Stopped() || len(moves) == 1 {
		return moves[0], alpha0
	}

	jobs := make(chan int)
	results := make(chan rootResult)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := 1; i < len(moves); i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for _, s := range e.searchers {
		s := s
		g.Go(func() error {
			for i := range jobs {
				child := root.Successor(moves[i])
				score := -s.negascout(child, depth-1, -Infinity, -alpha0, 1)
				select {
				case results <- rootResult{index: i, score: score}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	go func() {
		g.Wait()
		close(results)
	}()

	best, bestScore := 0, alpha0
	for r := range results {
		if r.score > bestScore || (r.score == bestScore && r.index < best) {
			best, bestScore = r.index, r.score
		}
	}

	return moves[best], bestScore
}
