package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "github.com/mattn/go-sqlite3"
)

func openRawDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func count(t *testing.T, db *sql.DB, query string) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query).Scan(&n); err != nil {
		t.Fatalf("%s: %v", query, err)
	}
	return n
}

func TestMigrateAppliesOnce(t *testing.T) {
	db := openRawDB(t)
	migrations := fstest.MapFS{
		"001_items.sql": &fstest.MapFile{Data: []byte("-- +migrate Up\nCREATE TABLE items(id INTEGER PRIMARY KEY);\n-- +migrate Down\nDROP TABLE items;")},
		"002_more.sql":  &fstest.MapFile{Data: []byte("CREATE TABLE more(id INTEGER PRIMARY KEY);")},
		"README.md":     &fstest.MapFile{Data: []byte("not a migration")},
	}

	if err := Migrate(db, migrations); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// A second run must not re-execute CREATE TABLE without IF NOT EXISTS.
	if err := Migrate(db, migrations); err != nil {
		t.Fatalf("migrate again: %v", err)
	}

	if n := count(t, db, `SELECT COUNT(*) FROM _migrations`); n != 2 {
		t.Fatalf("expected 2 recorded migrations, got %d", n)
	}
	if n := count(t, db, `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('items','more')`); n != 2 {
		t.Fatalf("expected both tables, got %d", n)
	}
}

func TestMigrateFailureIsNotRecorded(t *testing.T) {
	db := openRawDB(t)
	migrations := fstest.MapFS{
		"001_broken.sql": &fstest.MapFile{Data: []byte("CREATE TABLE broken(")},
	}

	if err := Migrate(db, migrations); err == nil {
		t.Fatal("expected error")
	}
	if n := count(t, db, `SELECT COUNT(*) FROM _migrations`); n != 0 {
		t.Fatalf("expected no recorded migrations, got %d", n)
	}
}

func TestUpSection(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "SELECT 1;", want: "SELECT 1;"},
		{in: "-- +migrate Up\nSELECT 1;", want: "\nSELECT 1;"},
		{in: "-- +migrate Up\nSELECT 1;\n-- +migrate Down\nSELECT 2;", want: "\nSELECT 1;\n"},
	}
	for _, tt := range tests {
		if got := upSection(tt.in); got != tt.want {
			t.Errorf("upSection(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
