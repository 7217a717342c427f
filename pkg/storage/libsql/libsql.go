// Package libsql provides a storage driver backed by libSQL, covering
// local database files and remote Turso databases alike.
package libsql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/tursodatabase/go-libsql" // register the libSQL driver as "libsql"

	"github.com/studyhallco/studyhall/pkg/storage/sqlcore"
)

// Driver implements storage.Driver on libSQL.
type Driver struct {
	*sqlcore.Core
}

// NewDriver creates a new libSQL-backed driver. The dsn is either a local
// file URL ("file:studyhall.db") or a remote database URL
// ("libsql://<database>.turso.io?authToken=...").
func NewDriver(ctx context.Context, dsn string) (*Driver, error) {
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	core := sqlcore.New(db, sqlcore.DialectSQLite)
	if err := core.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &Driver{Core: core}, nil
}
