package sqlcore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/studyhallco/studyhall/pkg/storage"
	"github.com/studyhallco/studyhall/pkg/thread"
)

// PutTurn stores a turn. Content-addressing makes the insert idempotent;
// returns true if the turn was newly inserted.
func (c *Core) PutTurn(ctx context.Context, turn *thread.Turn) (bool, error) {
	if turn == nil {
		return false, errors.New("cannot store nil turn")
	}

	query := `INSERT INTO turns (hash, parent_hash, learner, role, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (hash) DO NOTHING`

	res, err := c.db.ExecContext(ctx, c.rebind(query),
		turn.Hash, turn.ParentHash, turn.Learner, turn.Role, turn.Text,
		stamp(turn.CreatedAt))
	if err != nil {
		return false, fmt.Errorf("insert turn: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return inserted > 0, nil
}

// GetTurn retrieves a turn by its hash.
func (c *Core) GetTurn(ctx context.Context, hash string) (*thread.Turn, error) {
	row := c.db.QueryRowContext(ctx,
		c.rebind(`SELECT hash, parent_hash, learner, role, body, created_at
			FROM turns WHERE hash = ?`), hash)

	turn, err := scanTurn(row)
	if err == sql.ErrNoRows {
		return nil, storage.NotFoundError{Kind: "turn", Key: hash}
	}
	if err != nil {
		return nil, fmt.Errorf("scan turn: %w", err)
	}

	return turn, nil
}

// TurnsByParent retrieves all turns with the given parent hash. Pass nil
// for thread roots.
func (c *Core) TurnsByParent(ctx context.Context, parentHash *string) ([]*thread.Turn, error) {
	var query string
	var args []any

	if parentHash == nil {
		query = `SELECT hash, parent_hash, learner, role, body, created_at
			FROM turns WHERE parent_hash IS NULL`
	} else {
		query = `SELECT hash, parent_hash, learner, role, body, created_at
			FROM turns WHERE parent_hash = ?`
		args = append(args, *parentHash)
	}

	rows, err := c.db.QueryContext(ctx, c.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	return scanTurns(rows)
}

// TurnRoots returns all turns with no parent.
func (c *Core) TurnRoots(ctx context.Context) ([]*thread.Turn, error) {
	return c.TurnsByParent(ctx, nil)
}

// TurnLeaves returns all turns that no other turn points at.
func (c *Core) TurnLeaves(ctx context.Context) ([]*thread.Turn, error) {
	query := `SELECT hash, parent_hash, learner, role, body, created_at
		FROM turns t
		WHERE NOT EXISTS (SELECT 1 FROM turns child WHERE child.parent_hash = t.hash)`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query leaves: %w", err)
	}
	defer rows.Close()

	return scanTurns(rows)
}

// TurnHistory returns the path from a turn back to its thread root (turn
// first, root last).
func (c *Core) TurnHistory(ctx context.Context, hash string) ([]*thread.Turn, error) {
	var path []*thread.Turn
	current := hash

	for {
		turn, err := c.GetTurn(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("getting turn %s: %w", current, err)
		}
		path = append(path, turn)

		if turn.ParentHash == nil {
			break
		}
		current = *turn.ParentHash
	}

	return path, nil
}

// CountTurns returns the number of stored turns.
func (c *Core) CountTurns(ctx context.Context) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM turns`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count turns: %w", err)
	}

	return count, nil
}

func scanTurn(row scanner) (*thread.Turn, error) {
	var turn thread.Turn
	var parentHash sql.NullString
	var createdAt string

	err := row.Scan(&turn.Hash, &parentHash, &turn.Learner, &turn.Role,
		&turn.Text, &createdAt)
	if err != nil {
		return nil, err
	}

	if parentHash.Valid {
		turn.ParentHash = &parentHash.String
	}
	if turn.CreatedAt, err = parseStamp(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &turn, nil
}

func scanTurns(rows *sql.Rows) ([]*thread.Turn, error) {
	var turns []*thread.Turn
	for rows.Next() {
		turn, err := scanTurn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, turn)
	}

	return turns, rows.Err()
}
