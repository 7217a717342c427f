package vectorutils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studyhallco/studyhall/pkg/vector"
	"github.com/studyhallco/studyhall/pkg/vector/qdrant"
	"github.com/studyhallco/studyhall/pkg/vector/sqlitevec"
)

type NewVectorDriverOpts struct {
	ProviderType string

	// DBPath locates the database file for the sqlitevec provider.
	DBPath string

	// Host, Port, APIKey, UseTLS and Collection configure the qdrant provider.
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string

	// Dimensions is the embedding width, required by every provider.
	Dimensions uint

	Logger *slog.Logger
}

func NewVectorDriver(ctx context.Context, o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case "sqlitevec":
		return sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     o.DBPath,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "qdrant":
		return qdrant.NewDriver(ctx, qdrant.Config{
			Host:           o.Host,
			Port:           o.Port,
			APIKey:         o.APIKey,
			UseTLS:         o.UseTLS,
			CollectionName: o.Collection,
			Dimensions:     o.Dimensions,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
