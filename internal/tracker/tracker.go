// internal/tracker/tracker.go
//
// Game tracker: the entry point the transport layer calls.
// Responsibilities:
//   - Create games.
//   - Register throws: check preconditions, serialise per game, run the
//     frame allocator and commit the result through the Store.
//   - Read games back for the summary and detail views.
//
// Notes:
//   - Registrations for one game never overlap; different games run in parallel.
//   - Store failures are logged with their cause and reported to callers as
//     bowling.CodeStorage errors without internal detail.

package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bowling/apps/go-server/internal/bowling"
	"github.com/robalobadob/bowling/apps/go-server/internal/store"
)

const saveFailed = "Saving to database failed"

// Tracker records bowling games on top of a Store.
type Tracker struct {
	store store.Store
	locks *gameLocks
	now   func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces the timestamp source (defaults to time.Now).
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New constructs a Tracker over st.
func New(st store.Store, opts ...Option) *Tracker {
	t := &Tracker{store: st, locks: newGameLocks(), now: time.Now}
	for _, o := range opts {
		o(t)
	}
	return t
}

// CreateGame stores and returns a new ongoing game with no frames.
func (t *Tracker) CreateGame(ctx context.Context) (*bowling.Game, error) {
	g := bowling.NewGame(t.now())
	if err := t.store.Create(ctx, g); err != nil {
		log.Error().Err(err).Msg("create game")
		return nil, bowling.Wrap(bowling.CodeStorage, saveFailed, err)
	}
	log.Info().Int64("gameId", g.ID).Msg("game created")
	return g, nil
}

// RegisterThrow records pins as the next throw of the game and rescores it.
// Errors are *bowling.Error values; nothing is stored unless it returns nil.
func (t *Tracker) RegisterThrow(ctx context.Context, gameID int64, pins int) error {
	if !bowling.ScoreInRange(pins) {
		return bowling.ErrScoreOutOfRange
	}

	unlock := t.locks.lock(gameID)
	defer unlock()

	g, err := t.Game(ctx, gameID)
	if err != nil {
		return err
	}
	if g.Ended() {
		return bowling.ErrGameAlreadyEnded
	}

	r, err := bowling.Register(g, pins, t.now())
	if err != nil {
		if bowling.CodeOf(err) == "" {
			log.Error().Err(err).Int64("gameId", gameID).Int("pins", pins).Msg("register throw")
		}
		return err
	}

	if err := t.store.SaveThrow(ctx, r); err != nil {
		if errors.Is(err, store.ErrConflict) {
			log.Warn().Int64("gameId", gameID).Msg("concurrent throw registration")
			return bowling.Wrap(bowling.CodeConflict, "Game was modified concurrently, retry the throw", err)
		}
		log.Error().Err(err).Int64("gameId", gameID).Msg("save throw")
		return bowling.Wrap(bowling.CodeStorage, saveFailed, err)
	}

	log.Debug().
		Int64("gameId", gameID).
		Int("frame", r.Frame).
		Int("throw", r.Throw.Number).
		Int("pins", pins).
		Int("totalScore", r.Game.TotalScore).
		Msg("throw registered")
	if r.Game.Ended() {
		log.Info().Int64("gameId", gameID).Int("totalScore", r.Game.TotalScore).Msg("game ended")
	}
	return nil
}

// Game returns a game with its frames and throws.
func (t *Tracker) Game(ctx context.Context, id int64) (*bowling.Game, error) {
	g, err := t.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, bowling.ErrGameNotFound
	}
	if err != nil {
		log.Error().Err(err).Int64("gameId", id).Msg("load game")
		return nil, bowling.Wrap(bowling.CodeStorage, "Loading from database failed", err)
	}
	return g, nil
}

// Games lists every game without frames.
func (t *Tracker) Games(ctx context.Context) ([]bowling.Game, error) {
	games, err := t.store.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("list games")
		return nil, bowling.Wrap(bowling.CodeStorage, "Loading from database failed", err)
	}
	return games, nil
}
