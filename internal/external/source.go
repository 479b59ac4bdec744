// Package external drives third-party UCI engines and lets them stand in
// for the built-in search.
package external

import (
	"context"
	"errors"
	"fmt"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
)

// ErrNoMove is returned when a source has no move for the position.
var ErrNoMove = errors.New("no move available")

// MoveSource picks a move for the side to move. Implementations must not
// modify pos.
type MoveSource interface {
	BestMove(ctx context.Context, pos *board.Position, limits engine.SearchLimits) (engine.Result, error)
}

// Builtin adapts the in-process engine to MoveSource.
type Builtin struct {
	Engine *engine.Engine
}

// NewBuiltin returns a Builtin over a fresh engine.
func NewBuiltin() *Builtin {
	return &Builtin{Engine: engine.NewEngine()}
}

// BestMove implements MoveSource.
func (b *Builtin) BestMove(ctx context.Context, pos *board.Position, limits engine.SearchLimits) (engine.Result, error) {
	res, ok := b.Engine.FindMove(ctx, pos, limits)
	if !ok {
		return engine.Result{}, ErrNoMove
	}
	return res, nil
}

// FallbackSource asks Primary first and falls back to Secondary when the
// primary is absent or fails. Sources chain by nesting.
type FallbackSource struct {
	Primary   MoveSource
	Secondary MoveSource

	// OnFallback, if set, receives the primary's failure.
	OnFallback func(error)
}

// BestMove implements MoveSource.
func (f *FallbackSource) BestMove(ctx context.Context, pos *board.Position, limits engine.SearchLimits) (engine.Result, error) {
	if f.Primary != nil && pos.HasLegalMoves() {
		res, err := f.Primary.BestMove(ctx, pos, limits)
		if err == nil {
			return res, nil
		}
		if f.OnFallback != nil {
			f.OnFallback(err)
		}
		if ctx.Err() != nil {
			return engine.Result{}, ctx.Err()
		}
	}
	if f.Secondary == nil {
		return engine.Result{}, fmt.Errorf("fallback: %w", ErrNoMove)
	}
	return f.Secondary.BestMove(ctx, pos, limits)
}
