// Package sqlcore implements the storage surface on database/sql. The
// sqlite, libsql, and postgres drivers embed Core and differ only in how
// they open the database.
package sqlcore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect selects placeholder style for the backend.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// Core holds the shared CRUD implementation. Run Migrate before first use.
type Core struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an opened database handle.
func New(db *sql.DB, dialect Dialect) *Core {
	return &Core{db: db, dialect: dialect}
}

// schema statements run one at a time; pgx's default exec mode rejects
// multi-statement strings. Every statement is valid SQLite and Postgres.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS quizzes (
		slug TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		topic TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		questions TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		learner TEXT NOT NULL,
		quiz_slug TEXT NOT NULL,
		answers TEXT NOT NULL,
		score INTEGER NOT NULL,
		max_score INTEGER NOT NULL,
		submitted_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attempts_learner ON attempts(learner)`,
	`CREATE TABLE IF NOT EXISTS checkins (
		id TEXT PRIMARY KEY,
		learner TEXT NOT NULL,
		mood INTEGER NOT NULL,
		energy INTEGER NOT NULL,
		note TEXT NOT NULL,
		recorded_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_checkins_learner ON checkins(learner)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		learner TEXT NOT NULL,
		verb TEXT NOT NULL,
		object TEXT NOT NULL,
		recorded_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_learner ON activities(learner)`,
	`CREATE TABLE IF NOT EXISTS turns (
		hash TEXT PRIMARY KEY,
		parent_hash TEXT,
		learner TEXT NOT NULL,
		role TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_turns_parent_hash ON turns(parent_hash)`,
	`CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		learner TEXT NOT NULL,
		goal TEXT NOT NULL,
		weeks TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_plans_learner ON plans(learner)`,
}

// Migrate creates the tables if they don't exist.
func (c *Core) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Learners returns every learner with at least one stored record, sorted.
// UNION deduplicates across the record tables.
func (c *Core) Learners(ctx context.Context) ([]string, error) {
	query := `SELECT learner FROM attempts
		UNION SELECT learner FROM checkins
		UNION SELECT learner FROM activities
		UNION SELECT learner FROM turns
		UNION SELECT learner FROM plans
		ORDER BY learner`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing learners: %w", err)
	}
	defer rows.Close()

	var learners []string
	for rows.Next() {
		var learner string
		if err := rows.Scan(&learner); err != nil {
			return nil, fmt.Errorf("scanning learner: %w", err)
		}
		learners = append(learners, learner)
	}
	return learners, rows.Err()
}

// rebind rewrites ? placeholders to $N for postgres.
func (c *Core) rebind(query string) string {
	if c.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// timeLayout keeps the fraction fixed-width so TEXT timestamps stay in
// chronological order under string comparison.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func stamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseStamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// DB exposes the underlying handle for backend-specific maintenance.
func (c *Core) DB() *sql.DB {
	return c.db
}

// Close closes the underlying database.
func (c *Core) Close() error {
	return c.db.Close()
}
