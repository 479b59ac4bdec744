package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keyStats       = "stats"
	prefixAnalysis = "analysis/"
	prefixGame     = "game/"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("storage: not found")

// Analysis is a cached search result for one position.
type Analysis struct {
	FEN     string    `json:"fen"`
	Move    string    `json:"move"` // UCI
	Score   int       `json:"score"`
	Depth   int       `json:"depth"`
	Updated time.Time `json:"updated"`
}

// Outcome of an archived game.
type Outcome string

const (
	WhiteWins  Outcome = "1-0"
	BlackWins  Outcome = "0-1"
	Draw       Outcome = "1/2-1/2"
	Unfinished Outcome = "*"
)

// GameRecord is an archived game.
type GameRecord struct {
	ID        string    `json:"id"`
	StartFEN  string    `json:"start_fen"`
	FinalFEN  string    `json:"final_fen"`
	Moves     []string  `json:"moves"` // algebraic, as played
	UCI       []string  `json:"uci"`
	Outcome   Outcome   `json:"outcome"`
	Status    string    `json:"status"`
	PlayerOne string    `json:"player_one"`
	White     string    `json:"white"` // "human" or "computer"
	Black     string    `json:"black"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
}

// GameStats aggregates the archive.
type GameStats struct {
	GamesPlayed   int           `json:"games_played"`
	WhiteWins     int           `json:"white_wins"`
	BlackWins     int           `json:"black_wins"`
	Draws         int           `json:"draws"`
	TotalPlayTime time.Duration `json:"total_play_time"`
	LongestGame   int           `json:"longest_game"` // plies
}

// DecisiveRate returns the share of decisive games as a percentage (0-100).
func (s *GameStats) DecisiveRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.WhiteWins+s.BlackWins) / float64(s.GamesPlayed) * 100
}

// Store wraps BadgerDB for persistent storage.
type Store struct {
	db *badger.DB
}

// NewStore opens the store in the platform database directory.
func NewStore() (*Store, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens (or creates) a store rooted at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// analysisKey drops the move counters so transpositions share an entry.
func analysisKey(fen string) []byte {
	fields := strings.Fields(fen)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return []byte(prefixAnalysis + strings.Join(fields, " "))
}

// SaveAnalysis stores a search result unless a deeper one is already cached.
func (s *Store) SaveAnalysis(a Analysis) error {
	key := analysisKey(a.FEN)
	a.Updated = time.Now()

	return s.db.Update(func(txn *badger.Txn) error {
		var prev Analysis
		found, err := getJSON(txn, key, &prev)
		if err != nil {
			return err
		}
		if found && prev.Depth > a.Depth {
			return nil
		}

		data, err := json.Marshal(a)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// LoadAnalysis returns the cached analysis for fen if it was searched to at
// least minDepth.
func (s *Store) LoadAnalysis(fen string, minDepth int) (Analysis, bool, error) {
	var a Analysis
	var found bool

	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = getJSON(txn, analysisKey(fen), &a)
		return err
	})
	if err != nil || !found || a.Depth < minDepth {
		return Analysis{}, false, err
	}
	return a, true, nil
}

// SaveGame archives a game and folds it into the statistics. Saving the
// same id twice replaces the record without counting it again.
func (s *Store) SaveGame(g GameRecord) error {
	if g.ID == "" {
		return errors.New("storage: game record without id")
	}
	if g.Finished.IsZero() {
		g.Finished = time.Now()
	}

	data, err := json.Marshal(g)
	if err != nil {
		return err
	}

	key := []byte(prefixGame + g.ID)
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		seen := err == nil
		if err != nil && err != badger.ErrKeyNotFound {
			return err
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}
		if seen {
			return nil
		}

		stats := &GameStats{}
		if _, err := getJSON(txn, []byte(keyStats), stats); err != nil {
			return err
		}
		stats.record(g)

		statsData, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return txn.Set([]byte(keyStats), statsData)
	})
}

func (s *GameStats) record(g GameRecord) {
	s.GamesPlayed++
	switch g.Outcome {
	case WhiteWins:
		s.WhiteWins++
	case BlackWins:
		s.BlackWins++
	case Draw:
		s.Draws++
	}
	if !g.Started.IsZero() && g.Finished.After(g.Started) {
		s.TotalPlayTime += g.Finished.Sub(g.Started)
	}
	if len(g.UCI) > s.LongestGame {
		s.LongestGame = len(g.UCI)
	}
}

// LoadGame loads an archived game by id.
func (s *Store) LoadGame(id string) (GameRecord, error) {
	var g GameRecord
	err := s.db.View(func(txn *badger.Txn) error {
		found, err := getJSON(txn, []byte(prefixGame+id), &g)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("game %s: %w", id, ErrNotFound)
		}
		return nil
	})
	return g, err
}

// ListGames returns all archived games, most recently finished first.
func (s *Store) ListGames() ([]GameRecord, error) {
	var games []GameRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixGame)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var g GameRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &g)
			})
			if err != nil {
				return err
			}
			games = append(games, g)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(games, func(i, j int) bool {
		return games[i].Finished.After(games[j].Finished)
	})
	return games, nil
}

// LoadStats loads archive statistics, returns empty stats if none exist.
func (s *Store) LoadStats() (*GameStats, error) {
	stats := &GameStats{}
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := getJSON(txn, []byte(keyStats), stats)
		return err
	})
	return stats, err
}

func getJSON(txn *badger.Txn, key []byte, v any) (bool, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}
