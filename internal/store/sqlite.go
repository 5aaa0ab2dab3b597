// internal/store/sqlite.go
//
// SQLite implementation of the Store interface.
// Responsibilities:
//   - Opening the database file with safe defaults (WAL, busy timeout,
//     foreign keys, immediate write transactions).
//   - Applying the embedded migrations.
//   - Loading games with their frames and throws.
//   - Committing an accepted throw in a single transaction guarded by the
//     game's version column.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/robalobadob/bowling/apps/go-server/assets"
	"github.com/robalobadob/bowling/apps/go-server/internal/bowling"
)

// SQLite is a Store backed by a SQLite database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if missing) the database at path and applies
// migrations.
func OpenSQLite(path string) (*SQLite, error) {
	// Ensure directory exists for ./data/bowling.db, etc.
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	dsn := path + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on&_txlock=immediate"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	if err := Migrate(db, assets.Migrations()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error { return s.db.Close() }

// Create inserts a new game row and assigns g.ID.
func (s *SQLite) Create(ctx context.Context, g *bowling.Game) error {
	ts := formatTime(g.UpdatedAt)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO games (status, total_score, version, created_at, updated_at) VALUES (?,?,?,?,?)`,
		g.Status.String(), g.TotalScore, g.Version, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("game id: %w", err)
	}
	g.ID = id
	return nil
}

// Get loads a game with its frames and throws.
func (s *SQLite) Get(ctx context.Context, id int64) (*bowling.Game, error) {
	g, err := scanGame(s.db.QueryRowContext(ctx,
		`SELECT id, status, total_score, version, updated_at FROM games WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT number, status, total_score FROM frames WHERE game_id=? ORDER BY number`, id)
	if err != nil {
		return nil, fmt.Errorf("query frames: %w", err)
	}
	defer rows.Close()

	g.Frames = []bowling.Frame{}
	index := map[int]int{}
	for rows.Next() {
		var f bowling.Frame
		var status string
		if err := rows.Scan(&f.Number, &status, &f.TotalScore); err != nil {
			return nil, err
		}
		if f.Status, err = bowling.ParseFrameStatus(status); err != nil {
			return nil, err
		}
		index[f.Number] = len(g.Frames)
		g.Frames = append(g.Frames, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	trows, err := s.db.QueryContext(ctx, `
        SELECT f.number, t.number, t.score
        FROM throws t JOIN frames f ON f.id = t.frame_id
        WHERE f.game_id=?
        ORDER BY f.number, t.number`, id)
	if err != nil {
		return nil, fmt.Errorf("query throws: %w", err)
	}
	defer trows.Close()

	for trows.Next() {
		var frame int
		var t bowling.Throw
		if err := trows.Scan(&frame, &t.Number, &t.Score); err != nil {
			return nil, err
		}
		i, ok := index[frame]
		if !ok {
			return nil, fmt.Errorf("throw for unknown frame %d", frame)
		}
		g.Frames[i].Throws = append(g.Frames[i].Throws, t)
	}
	return g, trows.Err()
}

// List returns every game ordered by ID, without frames.
func (s *SQLite) List(ctx context.Context) ([]bowling.Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, total_score, version, updated_at FROM games ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []bowling.Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

// SaveThrow commits r in one transaction. The game row is written last and
// only if its version is still the one r was computed from; otherwise the
// whole transaction is rolled back and ErrConflict is returned.
func (s *SQLite) SaveThrow(ctx context.Context, r *bowling.Registration) error {
	g := r.Game
	frame := g.Frames[r.Frame-1]
	now := formatTime(g.UpdatedAt)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if r.NewFrame {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO frames (game_id, number, status, total_score) VALUES (?,?,?,?)`,
			g.ID, frame.Number, frame.Status.String(), frame.TotalScore)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE frames SET status=? WHERE game_id=? AND number=?`,
			frame.Status.String(), g.ID, frame.Number)
	}
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("write frame %d: %w", frame.Number, err)
	}

	res, err := tx.ExecContext(ctx, `
        INSERT INTO throws (frame_id, number, score, created_at)
        SELECT id, ?, ?, ? FROM frames WHERE game_id=? AND number=?`,
		r.Throw.Number, r.Throw.Score, now, g.ID, frame.Number)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert throw: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert throw: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("insert throw: frame %d of game %d not stored", frame.Number, g.ID)
	}

	// Bonuses change earlier frames, so every total is rewritten.
	for _, f := range g.Frames {
		if _, err := tx.ExecContext(ctx,
			`UPDATE frames SET total_score=? WHERE game_id=? AND number=?`,
			f.TotalScore, g.ID, f.Number); err != nil {
			return fmt.Errorf("update frame %d total: %w", f.Number, err)
		}
	}

	res, err = tx.ExecContext(ctx, `
        UPDATE games SET status=?, total_score=?, version=?, updated_at=?
        WHERE id=? AND version=?`,
		g.Status.String(), g.TotalScore, g.Version, now, g.ID, g.Version-1)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	n, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanGame converts a games row into a Game without frames.
func scanGame(row rowScanner) (*bowling.Game, error) {
	var g bowling.Game
	var status, updated string
	if err := row.Scan(&g.ID, &status, &g.TotalScore, &g.Version, &updated); err != nil {
		return nil, err
	}
	var err error
	if g.Status, err = bowling.ParseGameStatus(status); err != nil {
		return nil, err
	}
	if g.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("parse updated_at %q: %w", updated, err)
	}
	return &g, nil
}

// isUniqueViolation reports whether err comes from a UNIQUE constraint, which
// for frames and throws means another writer stored that row first.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }
