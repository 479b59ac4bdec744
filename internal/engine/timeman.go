package engine

import (
	"time"

	"github.com/hailam/chesscore/internal/board"
)

// UCILimits contains UCI time control parameters.
type UCILimits struct {
	Time      [2]time.Duration // wtime, btime (remaining time for each color)
	Inc       [2]time.Duration // winc, binc (increment per move)
	MovesToGo int              // moves until next time control (0 = sudden death)
	MoveTime  time.Duration    // fixed time per move (overrides other time controls)
	Depth     int              // maximum search depth
	Infinite  bool             // search until stopped
}

// SearchLimits converts UCI limits into engine limits for the side us at
// the given game ply.
func (l UCILimits) SearchLimits(us board.Color, ply int) SearchLimits {
	return SearchLimits{Depth: l.Depth, MoveTime: AllocateTime(l, us, ply)}
}

// AllocateTime returns how long to think on this move. Zero means no time
// limit (infinite, depth-only or no clock given).
func AllocateTime(limits UCILimits, us board.Color, ply int) time.Duration {
	if limits.MoveTime > 0 {
		return limits.MoveTime
	}
	if limits.Infinite || us > board.Black || limits.Time[us] == 0 {
		return 0
	}

	timeLeft := limits.Time[us]
	inc := limits.Inc[us]

	// Sudden death: estimate moves remaining based on game phase
	mtg := limits.MovesToGo
	if mtg == 0 {
		mtg = 50 - ply/4
		if mtg < 10 {
			mtg = 10
		}
		if mtg > 50 {
			mtg = 50
		}
	}

	alloc := timeLeft/time.Duration(mtg) + inc*9/10

	// Slight reduction for very early moves
	if ply < 8 {
		alloc = alloc * 85 / 100
	}

	// Safety margin: never use more than 80% of remaining time
	if limit := timeLeft * 8 / 10; alloc > limit {
		alloc = limit
	}
	if alloc < 10*time.Millisecond {
		alloc = 10 * time.Millisecond
	}
	return alloc
}
