// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Used when STORAGE=memory and by tests that do not need durability.
//
// Characteristics:
//   - Stores *bowling.Game values keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Hands out deep copies so callers never alias stored state.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/robalobadob/bowling/apps/go-server/internal/bowling"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu     sync.RWMutex            // guards games and nextID
	games  map[int64]*bowling.Game // keyed by Game.ID
	nextID int64
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[int64]*bowling.Game)}
}

// Create assigns the next ID to g and stores a copy of it.
func (m *memory) Create(ctx context.Context, g *bowling.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	g.ID = m.nextID
	m.games[g.ID] = g.Clone()
	return nil
}

// Get returns a copy of the game with its frames and throws.
func (m *memory) Get(ctx context.Context, id int64) (*bowling.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[id]; ok {
		return g.Clone(), nil
	}
	return nil, ErrNotFound
}

// List returns every game ordered by ID, without frames.
func (m *memory) List(ctx context.Context) ([]bowling.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]bowling.Game, 0, len(m.games))
	for _, g := range m.games {
		summary := *g
		summary.Frames = nil
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveThrow replaces the stored game with r.Game if nobody else changed it
// since it was read.
func (m *memory) SaveThrow(ctx context.Context, r *bowling.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.games[r.Game.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != r.Game.Version-1 {
		return ErrConflict
	}
	m.games[r.Game.ID] = r.Game.Clone()
	return nil
}
