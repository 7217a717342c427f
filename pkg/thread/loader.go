package thread

import "context"

// Loader defines the interface for loading turns from storage. It lets
// history and recall code work against any storage implementation without
// creating a circular dependency.
type Loader interface {
	// GetTurn retrieves a turn by its hash.
	GetTurn(ctx context.Context, hash string) (*Turn, error)

	// TurnsByParent retrieves all turns that have the given parent hash.
	// Pass nil to get thread roots.
	TurnsByParent(ctx context.Context, parentHash *string) ([]*Turn, error)

	// TurnHistory returns the path from a turn back to its thread root
	// (turn first, root last).
	TurnHistory(ctx context.Context, hash string) ([]*Turn, error)
}
