// Package storageutils is the storage utility package
package storageutils

import (
	"context"
	"fmt"

	"github.com/studyhallco/studyhall/pkg/storage"
	"github.com/studyhallco/studyhall/pkg/storage/inmemory"
	"github.com/studyhallco/studyhall/pkg/storage/libsql"
	"github.com/studyhallco/studyhall/pkg/storage/postgres"
	"github.com/studyhallco/studyhall/pkg/storage/sqlite"
)

type NewDriverOpts struct {
	// DriverType selects the backend: memory, sqlite, libsql, or postgres.
	DriverType string

	// DSN is interpreted per driver: a database file path for sqlite, a
	// libsql URL for libsql, a connection string for postgres. Ignored by
	// the memory driver.
	DSN string
}

func NewDriver(ctx context.Context, o *NewDriverOpts) (storage.Driver, error) {
	switch o.DriverType {
	case "memory":
		return inmemory.NewDriver(), nil
	case "sqlite":
		return sqlite.NewDriver(ctx, o.DSN)
	case "libsql":
		return libsql.NewDriver(ctx, o.DSN)
	case "postgres":
		return postgres.NewDriver(ctx, o.DSN)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", o.DriverType)
	}
}
