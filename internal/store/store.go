package store

import (
	"context"
	"errors"

	"github.com/robalobadob/bowling/apps/go-server/internal/bowling"
)

var (
	// ErrNotFound is returned when no game has the requested ID.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a game changed between read and write.
	ErrConflict = errors.New("version conflict")
)

// Store defines the persistence interface for games.
// Implementations: memory (this package) and SQLite.
type Store interface {
	// Create persists a new game and assigns g.ID.
	Create(ctx context.Context, g *bowling.Game) error

	// Get retrieves a game with its frames and throws.
	// Returns ErrNotFound if the game does not exist.
	Get(ctx context.Context, id int64) (*bowling.Game, error)

	// List returns every game ordered by ID, without frames.
	List(ctx context.Context) ([]bowling.Game, error)

	// SaveThrow commits an accepted throw: the throw itself, the frame it
	// opened or closed, every rescored frame total and the game row.
	// Either all of it is stored or none of it is. Returns ErrConflict if
	// the stored game is not at version r.Game.Version-1.
	SaveThrow(ctx context.Context, r *bowling.Registration) error
}
