// Package migrations embeds the SQL migration files and exposes a goose
// provider over them, shared by the API server (AUTO_MIGRATE), the fleetctl
// migrate commands, and integration tests.
package migrations

import (
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS

// NewProvider returns a goose provider that applies FS to db.
// db must be opened with the pgx database/sql driver (or any Postgres driver).
func NewProvider(db *sql.DB) (*goose.Provider, error) {
	return goose.NewProvider(goose.DialectPostgres, db, FS)
}
