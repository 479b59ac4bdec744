package tablebase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
)

// DefaultURL is the public Lichess standard-chess endpoint.
const DefaultURL = "https://tablebase.lichess.ovh/standard"

const defaultCacheSize = 10000

// Client queries the Lichess tablebase API and caches answers by position
// key. It implements the session layer's move source contract.
type Client struct {
	baseURL string
	http    *http.Client

	mu      sync.RWMutex
	cache   map[uint64]answer
	maxSize int
	hits    uint64
	misses  uint64
}

// NewClient creates a client for baseURL, or DefaultURL when empty.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
		cache:   make(map[uint64]answer),
		maxSize: defaultCacheSize,
	}
}

// answer is a cached reply. The best move is kept as UCI text because
// positions sharing a key may lay out their pieces differently.
type answer struct {
	wdl  WDL
	dtz  int
	best string
}

// resolve maps a onto pos.
func (a answer) resolve(pos *board.Position) (Result, error) {
	r := Result{WDL: a.wdl, DTZ: a.dtz, Move: board.NoMove}
	if a.best == "" {
		return r, nil
	}
	m, err := board.ParseUCI(a.best, pos)
	if err != nil {
		return Result{}, fmt.Errorf("tablebase: move %q: %w", a.best, err)
	}
	r.Move = m
	return r, nil
}

type lichessResponse struct {
	Category string `json:"category"`
	DTZ      int    `json:"dtz"`
	Moves    []struct {
		UCI string `json:"uci"`
	} `json:"moves"`
}

// Probe looks up pos. Positions with more than MaxPieces pieces are
// rejected without a request.
func (c *Client) Probe(ctx context.Context, pos *board.Position) (Result, error) {
	if CountPieces(pos) > MaxPieces {
		return Result{}, ErrNotInTable
	}

	key := pos.PolyglotHash()
	c.mu.Lock()
	if a, ok := c.cache[key]; ok {
		c.hits++
		c.mu.Unlock()
		return a.resolve(pos)
	}
	c.misses++
	c.mu.Unlock()

	a, err := c.fetch(ctx, pos)
	if err != nil {
		return Result{}, err
	}
	r, err := a.resolve(pos)
	if err != nil {
		return Result{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.cache) >= c.maxSize {
		// Evict half; map order makes the choice arbitrary.
		i := 0
		for k := range c.cache {
			if i >= c.maxSize/2 {
				break
			}
			delete(c.cache, k)
			i++
		}
	}
	c.cache[key] = a
	return r, nil
}

func (c *Client) fetch(ctx context.Context, pos *board.Position) (answer, error) {
	fen := strings.ReplaceAll(pos.ToFEN(), " ", "_")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?fen="+url.QueryEscape(fen), nil)
	if err != nil {
		return answer{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return answer{}, fmt.Errorf("tablebase: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return answer{}, fmt.Errorf("tablebase: unexpected status %s", resp.Status)
	}

	var body lichessResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return answer{}, fmt.Errorf("tablebase: decode: %w", err)
	}

	wdl, ok := categoryToWDL(body.Category)
	if !ok {
		return answer{}, fmt.Errorf("%w: category %q", ErrNotInTable, body.Category)
	}

	a := answer{wdl: wdl, dtz: body.DTZ}
	if len(body.Moves) > 0 {
		// Moves arrive best first.
		a.best = body.Moves[0].UCI
	}
	return a, nil
}

// BestMove plays the tablebase move for pos. The limits are ignored.
func (c *Client) BestMove(ctx context.Context, pos *board.Position, _ engine.SearchLimits) (engine.Result, error) {
	r, err := c.Probe(ctx, pos)
	if err != nil {
		return engine.Result{}, err
	}
	if r.Move.IsNone() {
		return engine.Result{}, ErrNotInTable
	}
	return engine.Result{Move: r.Move, Score: WDLToScore(r.WDL)}, nil
}

// HitRate returns the cache hit rate as a percentage.
func (c *Client) HitRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total) * 100
}

// CacheSize returns the current number of cached entries.
func (c *Client) CacheSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
