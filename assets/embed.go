// assets/embed.go
//
// Files compiled into the server binary.
//   - migrations/*.sql: SQLite schema, applied in lexical order at startup.

package assets

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql
var FS embed.FS

// Migrations returns the SQL migrations rooted at the migrations directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "migrations")
	if err != nil {
		// The directory is embedded above; Sub only fails on an invalid name.
		panic(err)
	}
	return sub
}
