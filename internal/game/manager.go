package game

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/hailam/chesscore/internal/external"
	"github.com/hailam/chesscore/internal/storage"
)

// Archive keeps finished games.
type Archive interface {
	SaveGame(g storage.GameRecord) error
	LoadGame(id string) (storage.GameRecord, error)
	ListGames() ([]storage.GameRecord, error)
	LoadStats() (*storage.GameStats, error)
}

// Manager owns the live sessions.
type Manager struct {
	sessions map[string]*Session
	source   external.MoveSource
	archive  Archive
	cache    AnalysisCache
	mu       sync.RWMutex
}

// NewManager creates a manager whose computer players use source.
func NewManager(source external.MoveSource) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		source:   source,
	}
}

// SetArchive sets where finished games are saved. nil disables archiving.
func (gm *Manager) SetArchive(a Archive) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.archive = a
}

// SetCache sets the analysis cache handed to new sessions.
func (gm *Manager) SetCache(c AnalysisCache) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.cache = c
}

// Create starts a new session under a fresh id.
func (gm *Manager) Create(cfg Config) (*Session, error) {
	s, err := NewSession(uuid.New().String(), cfg, gm.source)
	if err != nil {
		return nil, err
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()

	s.cache = gm.cache
	s.onFinish = gm.finish
	gm.sessions[s.id] = s
	return s, nil
}

// Get returns the session with the given id.
func (gm *Manager) Get(id string) (*Session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	s, exists := gm.sessions[id]
	if !exists {
		return nil, fmt.Errorf("session %s: %w", id, ErrNoSession)
	}
	return s, nil
}

// Remove drops a session.
func (gm *Manager) Remove(id string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.sessions[id]; !exists {
		return fmt.Errorf("session %s: %w", id, ErrNoSession)
	}
	delete(gm.sessions, id)
	return nil
}

// IDs returns the ids of all live sessions, sorted.
func (gm *Manager) IDs() []string {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	ids := make([]string, 0, len(gm.sessions))
	for id := range gm.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Archived loads a finished game from the archive.
func (gm *Manager) Archived(id string) (storage.GameRecord, error) {
	gm.mu.RLock()
	a := gm.archive
	gm.mu.RUnlock()

	if a == nil {
		return storage.GameRecord{}, fmt.Errorf("game %s: %w", id, storage.ErrNotFound)
	}
	return a.LoadGame(id)
}

// ArchivedGames lists finished games, most recent first. It is empty when
// archiving is disabled.
func (gm *Manager) ArchivedGames() ([]storage.GameRecord, error) {
	gm.mu.RLock()
	a := gm.archive
	gm.mu.RUnlock()

	if a == nil {
		return nil, nil
	}
	return a.ListGames()
}

// Stats returns the archive totals.
func (gm *Manager) Stats() (*storage.GameStats, error) {
	gm.mu.RLock()
	a := gm.archive
	gm.mu.RUnlock()

	if a == nil {
		return &storage.GameStats{}, nil
	}
	return a.LoadStats()
}

func (gm *Manager) finish(s *Session) {
	gm.mu.RLock()
	a := gm.archive
	gm.mu.RUnlock()

	if a == nil {
		return
	}
	if err := a.SaveGame(s.Record()); err != nil {
		log.Printf("archive game %s: %v", s.ID(), err)
	}
}
