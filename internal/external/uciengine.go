package external

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
)

// ErrEngineClosed is returned after the engine process was shut down or
// stopped answering.
var ErrEngineClosed = errors.New("external engine closed")

// Grace is added to the move time before an unresponsive engine is given up.
const Grace = 2 * time.Second

// stopWait bounds how long an interrupted search may take to answer stop.
const stopWait = 100 * time.Millisecond

// Engine wraps a UCI engine process (e.g. Stockfish).
type Engine struct {
	mu     sync.Mutex
	eng    *uci.Engine
	name   string
	closed bool
}

// NewEngine starts a UCI engine process and performs the uci/isready
// handshake.
func NewEngine(path string) (*Engine, error) {
	if path == "" {
		return nil, errors.New("external engine: empty path")
	}

	eng, err := uci.New(path)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", path, err)
	}

	if err := eng.Run(uci.CmdUCI, uci.CmdIsReady, uci.CmdUCINewGame); err != nil {
		eng.Close()
		return nil, fmt.Errorf("handshake with %s: %w", path, err)
	}

	name := path
	if id := eng.ID(); id["name"] != "" {
		name = id["name"]
	}
	return &Engine{eng: eng, name: name}, nil
}

// Name returns the engine's self-reported name.
func (e *Engine) Name() string {
	return e.name
}

// BestMove implements MoveSource. The engine is sent the position as FEN and
// a go command built from limits; its bestmove is mapped back onto a legal
// move of pos.
func (e *Engine) BestMove(ctx context.Context, pos *board.Position, limits engine.SearchLimits) (engine.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return engine.Result{}, ErrEngineClosed
	}

	opt, err := chess.FEN(pos.ToFEN())
	if err != nil {
		return engine.Result{}, fmt.Errorf("external engine: %w", err)
	}
	game := chess.NewGame(opt)

	cmdGo := uci.CmdGo{Depth: limits.Depth, MoveTime: limits.MoveTime}
	if cmdGo.Depth == 0 && cmdGo.MoveTime == 0 {
		cmdGo.Depth = engine.MaxSearchDepth
	}

	done := make(chan error, 1)
	go func() {
		done <- e.eng.Run(uci.CmdPosition{Position: game.Position()}, cmdGo)
	}()

	var timeout <-chan time.Time
	if limits.MoveTime > 0 {
		timer := time.NewTimer(limits.MoveTime + Grace)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case err := <-done:
		if err != nil {
			return engine.Result{}, fmt.Errorf("external engine: %w", err)
		}
	case <-ctx.Done():
		e.interrupt(done)
		return engine.Result{}, ctx.Err()
	case <-timeout:
		e.interrupt(done)
		return engine.Result{}, fmt.Errorf("external engine did not answer within %v: %w", limits.MoveTime+Grace, ErrEngineClosed)
	}

	results := e.eng.SearchResults()
	if results.BestMove == nil {
		return engine.Result{}, ErrNoMove
	}

	m, err := board.ParseUCI(results.BestMove.String(), pos)
	if err != nil {
		return engine.Result{}, fmt.Errorf("external engine move %s: %w", results.BestMove, err)
	}

	return engine.Result{
		Move:  m,
		Score: scoreOf(results.Info),
		Depth: results.Info.Depth,
		Nodes: uint64(results.Info.Nodes),
	}, nil
}

func scoreOf(info uci.Info) int {
	if info.Score.Mate > 0 {
		return engine.MateScore - info.Score.Mate
	}
	if info.Score.Mate < 0 {
		return -engine.MateScore - info.Score.Mate
	}
	return info.Score.CP
}

// interrupt sends stop to a running search and waits briefly for its
// bestmove. An engine that stays silent is closed.
func (e *Engine) interrupt(done <-chan error) {
	// The write can block on a dead process; Close unblocks it.
	go e.eng.Run(uci.CmdStop)
	select {
	case err := <-done:
		if err == nil {
			return
		}
	case <-time.After(stopWait):
	}
	e.closed = true
	// Close blocks while the search still holds the process.
	go e.eng.Close()
}

// Close shuts down the engine process.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.eng.Close()
}
