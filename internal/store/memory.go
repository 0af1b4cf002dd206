// internal/store/memory.go
//
// In-memory registry of live game engines.
// Boards are ephemeral: state is lost when the process restarts, which is
// fine because only finished-game history is persisted (in SQLite).
//
// Characteristics:
//   - Stores *game.Engine values keyed by engine ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Delete closes the engine so no commit timer outlives its entry.
//   - Sweep drops engines idle since a cutoff (solved or abandoned boards).

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/acciojob/memory-game-faizvk/internal/game"
)

// ErrNotFound is returned by Get for an unknown game ID.
var ErrNotFound = errors.New("game not found")

// Store defines the registry interface for live games.
type Store interface {
	// Save adds or replaces an engine under its ID.
	Save(ctx context.Context, e *game.Engine) error

	// Get retrieves an engine by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*game.Engine, error)

	// Delete closes and removes an engine. Unknown IDs are ignored.
	Delete(ctx context.Context, id string) error

	// Sweep closes and removes every engine whose last activity is before
	// cutoff and returns the removed IDs.
	Sweep(ctx context.Context, cutoff time.Time) []string

	// Len reports the number of live games.
	Len() int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex            // guards games map
	games map[string]*game.Engine // keyed by Engine.ID()
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]*game.Engine)}
}

func (m *memory) Save(ctx context.Context, e *game.Engine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.games[e.ID()]; ok && old != e {
		old.Close()
	}
	m.games[e.ID()] = e
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*game.Engine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.games[id]; ok {
		return e, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.games[id]
	delete(m.games, id)
	m.mu.Unlock()
	if ok {
		e.Close()
	}
	return nil
}

func (m *memory) Sweep(ctx context.Context, cutoff time.Time) []string {
	var idle []*game.Engine
	m.mu.Lock()
	for id, e := range m.games {
		if e.LastActive().Before(cutoff) {
			idle = append(idle, e)
			delete(m.games, id)
		}
	}
	m.mu.Unlock()

	ids := make([]string, 0, len(idle))
	for _, e := range idle {
		e.Close()
		ids = append(ids, e.ID())
	}
	return ids
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}
