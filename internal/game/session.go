// Package game holds live game sessions: the authoritative position, who
// plays each colour, and the move source that thinks for the computer.
package game

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/external"
	"github.com/hailam/chesscore/internal/storage"
)

// PlayerType says who moves for a colour.
type PlayerType int

const (
	Human PlayerType = iota
	Computer
)

func (pt PlayerType) String() string {
	if pt == Computer {
		return "computer"
	}
	return "human"
}

// ParsePlayerType maps "human" / "computer" to a PlayerType.
func ParsePlayerType(s string) (PlayerType, error) {
	switch s {
	case "", "human":
		return Human, nil
	case "computer", "ai":
		return Computer, nil
	}
	return Human, fmt.Errorf("unknown player type %q", s)
}

// AnalysisCache stores search results between sessions.
type AnalysisCache interface {
	LoadAnalysis(fen string, minDepth int) (storage.Analysis, bool, error)
	SaveAnalysis(a storage.Analysis) error
}

// Config describes a new session.
type Config struct {
	FEN       string // empty for the standard start position
	White     PlayerType
	Black     PlayerType
	PlayerOne board.Color
	Limits    engine.SearchLimits
}

// Session is one game. The position is only changed under mu, and never
// while a search is running on a clone of it.
type Session struct {
	mu sync.Mutex

	id       string
	pos      *board.Position
	startFEN string
	players  [2]PlayerType
	limits   engine.SearchLimits
	source   external.MoveSource
	cache    AnalysisCache

	moves    []string // notation, as played
	version  uint64
	thinking bool
	started  time.Time
	finished time.Time

	// onFinish is called once, without mu held, when the game ends.
	onFinish func(*Session)
}

// NewSession creates a session. source may be nil for human-only games.
func NewSession(id string, cfg Config, source external.MoveSource) (*Session, error) {
	fen := cfg.FEN
	if fen == "" {
		fen = board.StartFEN
	}
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", board.ErrInvalidFEN, err)
	}
	pos.SetPlayerOneColor(cfg.PlayerOne)

	return &Session{
		id:       id,
		pos:      pos,
		startFEN: pos.ToFEN(),
		players:  [2]PlayerType{cfg.White, cfg.Black},
		limits:   cfg.Limits,
		source:   source,
		started:  time.Now(),
	}, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// SetCache enables the analysis cache for computer moves.
func (s *Session) SetCache(c AnalysisCache) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = c
}

// Position returns a copy of the current position.
func (s *Session) Position() *board.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos.Copy()
}

// MoveResult describes a move played or suggested by a session. Notation is
// taken from the position the move was made in.
type MoveResult struct {
	engine.Result
	Notation string
	Applied  bool
}

// Play applies a move given in algebraic notation or UCI text for the side
// to move, which must be played by a human.
func (s *Session) Play(text string) (MoveResult, error) {
	s.mu.Lock()
	if err := s.checkMutable(); err != nil {
		s.mu.Unlock()
		return MoveResult{}, err
	}
	if s.players[s.pos.SideToMove()] != Human {
		s.mu.Unlock()
		return MoveResult{}, ErrNotYourTurn
	}

	m, err := board.ParseNotation(text, s.pos)
	if err != nil {
		if um, uerr := board.ParseUCI(text, s.pos); uerr == nil {
			m, err = um, nil
		}
	}
	if err != nil {
		s.mu.Unlock()
		return MoveResult{}, err
	}

	return s.commit(engine.Result{Move: m})
}

// PlayMove applies m for the side to move regardless of who plays it.
func (s *Session) PlayMove(m board.Move) (MoveResult, error) {
	s.mu.Lock()
	if err := s.checkMutable(); err != nil {
		s.mu.Unlock()
		return MoveResult{}, err
	}
	return s.commit(engine.Result{Move: m})
}

func (s *Session) checkMutable() error {
	if s.thinking {
		return ErrSearchInProgress
	}
	if s.over() {
		return ErrGameOver
	}
	return nil
}

// commit applies res.Move and releases mu. The move is resolved against the
// legal moves first, so the result carries the generator's annotations.
func (s *Session) commit(res engine.Result) (MoveResult, error) {
	m, err := s.pos.Resolve(res.Move)
	if err != nil {
		s.mu.Unlock()
		return MoveResult{}, err
	}
	text := s.pos.Notation(m)
	if err := s.pos.Apply(m); err != nil {
		s.mu.Unlock()
		return MoveResult{}, err
	}
	s.moves = append(s.moves, text)
	s.version++
	res.Move = s.pos.LastMove()

	finished := s.over() && s.finished.IsZero()
	if finished {
		s.finished = time.Now()
	}
	cb := s.onFinish
	s.mu.Unlock()

	if finished && cb != nil {
		cb(s)
	}
	return MoveResult{Result: res, Notation: text, Applied: true}, nil
}

// over reports checkmate, stalemate, the fifty-move rule or dead material.
func (s *Session) over() bool {
	return s.pos.GameOver() || s.pos.IsFiftyMoveDraw() || s.pos.IsInsufficientMaterial()
}

// Think searches the current position on a clone. When the side to move is
// played by the computer, the result is applied; otherwise it is only a
// suggestion. Only one search runs per session.
func (s *Session) Think(ctx context.Context) (MoveResult, error) {
	s.mu.Lock()
	if err := s.checkMutable(); err != nil {
		s.mu.Unlock()
		return MoveResult{}, err
	}
	if s.source == nil {
		s.mu.Unlock()
		return MoveResult{}, fmt.Errorf("session %s: %w", s.id, external.ErrNoMove)
	}
	s.thinking = true
	version := s.version
	clone := s.pos.Copy()
	apply := s.computerToMove()
	source, cache, limits := s.source, s.cache, s.limits
	s.mu.Unlock()

	res, err := s.search(ctx, source, cache, clone, limits)

	s.mu.Lock()
	s.thinking = false
	if err != nil {
		s.mu.Unlock()
		return MoveResult{}, err
	}
	if s.version != version {
		s.mu.Unlock()
		return MoveResult{}, ErrStaleResult
	}
	if !apply {
		defer s.mu.Unlock()
		m, err := s.pos.Resolve(res.Move)
		if err != nil {
			return MoveResult{}, err
		}
		res.Move = m
		return MoveResult{Result: res, Notation: s.pos.Notation(m)}, nil
	}

	return s.commit(res)
}

func (s *Session) search(ctx context.Context, source external.MoveSource, cache AnalysisCache, pos *board.Position, limits engine.SearchLimits) (engine.Result, error) {
	fen := pos.ToFEN()

	if cache != nil && limits.Depth > 0 {
		a, ok, err := cache.LoadAnalysis(fen, limits.Depth)
		if err != nil {
			log.Printf("session %s: analysis cache: %v", s.id, err)
		}
		if ok {
			if m, err := board.ParseUCI(a.Move, pos); err == nil {
				return engine.Result{Move: m, Score: a.Score, Depth: a.Depth}, nil
			}
		}
	}

	res, err := source.BestMove(ctx, pos, limits)
	if err != nil {
		return engine.Result{}, err
	}

	if cache != nil && !res.FromBook && res.Depth > 0 {
		a := storage.Analysis{FEN: fen, Move: res.Move.String(), Score: res.Score, Depth: res.Depth}
		if err := cache.SaveAnalysis(a); err != nil {
			log.Printf("session %s: analysis cache: %v", s.id, err)
		}
	}
	return res, nil
}

func (s *Session) computerToMove() bool {
	return !s.over() && s.players[s.pos.SideToMove()] == Computer
}

// Evaluate returns the static evaluation of the current position from
// White's point of view.
func (s *Session) Evaluate() int {
	return engine.Evaluate(s.Position())
}

// LegalMoves returns the legal moves of the side to move in notation.
func (s *Session) LegalMoves() []string {
	pos := s.Position()
	moves := pos.LegalMoves(pos.SideToMove())
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = pos.Notation(m)
	}
	return out
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	ID         string   `json:"id"`
	FEN        string   `json:"fen"`
	SideToMove string   `json:"side_to_move"`
	Status     string   `json:"status"`
	InCheck    bool     `json:"in_check"`
	GameOver   bool     `json:"game_over"`
	Outcome    string   `json:"outcome"`
	Moves      []string `json:"moves"`
	LastMove   string   `json:"last_move,omitempty"`
	White      string   `json:"white"`
	Black      string   `json:"black"`
	PlayerOne  string   `json:"player_one"`
	Thinking   bool     `json:"thinking"`
	AwaitsAI   bool     `json:"awaits_computer"`
	Version    uint64   `json:"version"`
	Material   [2]int   `json:"material"`
}

// Snapshot returns the current state of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := s.pos.Copy()
	engine.Evaluate(pos)
	white, black := pos.MaterialTotals()

	snap := Snapshot{
		ID:         s.id,
		FEN:        pos.ToFEN(),
		SideToMove: pos.SideToMove().String(),
		Status:     s.status(),
		InCheck:    pos.InCheck(pos.SideToMove()),
		GameOver:   s.over(),
		Outcome:    string(s.outcome()),
		Moves:      append([]string(nil), s.moves...),
		White:      s.players[board.White].String(),
		Black:      s.players[board.Black].String(),
		PlayerOne:  pos.PlayerOneColor().String(),
		Thinking:   s.thinking,
		AwaitsAI:   s.computerToMove(),
		Version:    s.version,
		Material:   [2]int{white, black},
	}
	if last := pos.LastMove(); !last.IsNone() && len(s.moves) > 0 {
		snap.LastMove = last.String()
	}
	return snap
}

func (s *Session) status() string {
	switch {
	case s.pos.GameOver():
		return s.pos.Status().String()
	case s.pos.IsFiftyMoveDraw():
		return "FiftyMoveRule"
	case s.pos.IsInsufficientMaterial():
		return "InsufficientMaterial"
	}
	return board.Ongoing.String()
}

func (s *Session) outcome() storage.Outcome {
	switch {
	case !s.over():
		return storage.Unfinished
	case s.pos.Status() == board.Checkmate:
		if s.pos.SideToMove() == board.White {
			return storage.BlackWins
		}
		return storage.WhiteWins
	}
	return storage.Draw
}

// Record returns the session as an archive record.
func (s *Session) Record() storage.GameRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.pos.History()
	uci := make([]string, 0, len(s.moves))
	// History may begin with a move synthesized from the start FEN.
	for _, m := range history[len(history)-len(s.moves):] {
		uci = append(uci, m.String())
	}

	return storage.GameRecord{
		ID:        s.id,
		StartFEN:  s.startFEN,
		FinalFEN:  s.pos.ToFEN(),
		Moves:     append([]string(nil), s.moves...),
		UCI:       uci,
		Outcome:   s.outcome(),
		Status:    s.status(),
		PlayerOne: s.pos.PlayerOneColor().String(),
		White:     s.players[board.White].String(),
		Black:     s.players[board.Black].String(),
		Started:   s.started,
		Finished:  s.finished,
	}
}
