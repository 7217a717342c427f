// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/studyhallco/studyhall/pkg/storage/sqlcore"
)

// Driver implements storage.Driver on SQLite.
type Driver struct {
	*sqlcore.Core
}

// NewDriver creates a new SQLite-backed driver. The dbPath can be a file
// path or ":memory:" for an in-memory database.
func NewDriver(ctx context.Context, dbPath string) (*Driver, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	core := sqlcore.New(db, sqlcore.DialectSQLite)
	if err := core.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &Driver{Core: core}, nil
}
