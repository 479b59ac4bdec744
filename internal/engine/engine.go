package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/book"
)

// SearchInfo contains information about the current search.
type SearchInfo struct {
	Depth    int
	Score    int // side to move's point of view
	Nodes    uint64
	Time     time.Duration
	BestMove board.Move
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = MaxSearchDepth)
	MoveTime time.Duration // Time for this move (0 = no limit)
}

// Result is the outcome of FindMove.
type Result struct {
	Move     board.Move
	Score    int // side to move's point of view
	Depth    int // last fully completed depth, 0 for book moves
	Nodes    uint64
	FromBook bool
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // 2 ply, 500ms
	Medium                   // 4 ply, 2s
	Hard                     // 6 ply, 5s
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 2, MoveTime: 500 * time.Millisecond},
	Medium: {Depth: 4, MoveTime: 2 * time.Second},
	Hard:   {Depth: 6, MoveTime: 5 * time.Second},
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return "unknown"
}

// Limits returns the search limits for d.
func (d Difficulty) Limits() SearchLimits {
	return DifficultySettings[d]
}

// ParseDifficulty parses "easy", "medium" or "hard".
func ParseDifficulty(s string) (Difficulty, error) {
	for d := Easy; d <= Hard; d++ {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return Medium, fmt.Errorf("unknown difficulty %q", s)
}

// LimitsForIntelligence returns search limits for an intelligence level.
func LimitsForIntelligence(level int, moveTime time.Duration) SearchLimits {
	return SearchLimits{Depth: DepthForIntelligence(level), MoveTime: moveTime}
}

// Engine is the chess AI engine. It runs one search at a time.
type Engine struct {
	mu sync.Mutex

	eval      *Evaluator
	book      *book.Book
	searchers []*Searcher
	stopFlag  atomic.Bool

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates a single-threaded engine.
func NewEngine() *Engine {
	e := &Engine{
		eval: NewEvaluator(),
	}
	e.SetThreads(1)
	return e
}

// SetBook sets the opening book consulted before searching. nil disables it.
func (e *Engine) SetBook(b *book.Book) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.book = b
}

// SetThreads sets how many goroutines search the root moves.
func (e *Engine) SetThreads(n int) {
	if n < 1 {
		n = 1
	}
	searchers := make([]*Searcher, n)
	for i := range searchers {
		searchers[i] = newSearcher(e.eval, &e.stopFlag)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.searchers = searchers
}

// Threads returns the number of search goroutines.
func (e *Engine) Threads() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.searchers)
}

// FindMove picks a move for the side to move using iterative deepening.
// The search stops at the depth limit, when MoveTime elapses, when ctx is
// done, or on Stop; the move of the last fully completed depth is returned.
// pos is never modified. ok is false when there is no legal move.
func (e *Engine) FindMove(ctx context.Context, pos *board.Position, limits SearchLimits) (Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	root := pos.Copy()
	moves := root.LegalMoves(root.SideToMove())
	if len(moves) == 0 {
		return Result{Move: board.NoMove}, false
	}

	if m, ok := e.book.Probe(root); ok {
		return Result{Move: m, FromBook: true}, true
	}

	e.stopFlag.Store(false)
	for _, s := range e.searchers {
		s.nodes = 0
		s.orderer.Clear()
	}

	if limits.MoveTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limits.MoveTime)
		defer cancel()
	}
	stop := context.AfterFunc(ctx, e.Stop)
	defer stop()

	maxDepth := MaxSearchDepth
	if limits.Depth > 0 {
		maxDepth = ClampDepth(limits.Depth)
	}

	start := time.Now()
	result := Result{Move: moves[0]}

	for depth := 1; depth <= maxDepth; depth++ {
		var move board.Move
		var score int
		if len(e.searchers) > 1 && len(moves) > 1 {
			move, score = e.splitRoot(ctx, root, moves, depth)
		} else {
			move, score = e.searchers[0].searchRoot(root, moves, depth)
		}

		// A stopped iteration is incomplete; keep the previous depth.
		if e.stopFlag.Load() {
			break
		}

		result = Result{Move: move, Score: score, Depth: depth, Nodes: e.nodes()}

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth:    depth,
				Score:    score,
				Nodes:    result.Nodes,
				Time:     time.Since(start),
				BestMove: move,
			})
		}

		// Early termination: found mate
		if abs(score) > MateScore-MaxPly {
			break
		}

		// If we've used more than half the time, don't start another iteration
		if limits.MoveTime > 0 && time.Since(start) > limits.MoveTime/2 {
			break
		}
	}

	return result, true
}

func (e *Engine) nodes() uint64 {
	var n uint64
	for _, s := range e.searchers {
		n += s.nodes
	}
	return n
}

// Stop stops the current search.
func (e *Engine) Stop() {
	e.stopFlag.Store(true)
}

// Perft performs a perft test (for debugging move generation).
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	return uint64(pos.Perft(depth))
}

// Evaluate returns the static evaluation of a position from White's view.
func (e *Engine) Evaluate(pos *board.Position) int {
	return e.eval.Score(pos)
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score > MateScore-MaxPly {
		mateIn := (MateScore - score + 1) / 2
		return "Mate in " + strconv.Itoa(mateIn)
	}
	if score < -MateScore+MaxPly {
		mateIn := (MateScore + score + 1) / 2
		return "Mated in " + strconv.Itoa(mateIn)
	}

	// Convert centipawns to pawns
	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	return sign + strconv.Itoa(score/100) + "." + pad2(score%100)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
