// Package api provides the HTTP API server for the studyhall platform:
// sign-in, quizzes and graded attempts, check-ins, activity telemetry,
// progress analytics, curriculum plans, and the streaming mentor endpoints.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/studyhallco/studyhall/pkg/analytics"
	"github.com/studyhallco/studyhall/pkg/embeddings"
	"github.com/studyhallco/studyhall/pkg/mentor"
	"github.com/studyhallco/studyhall/pkg/storage"
	"github.com/studyhallco/studyhall/pkg/vector"
	"github.com/studyhallco/studyhall/pkg/worker"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// SessionTTL bounds how long a minted session stays valid.
	// Defaults to DefaultSessionTTL.
	SessionTTL time.Duration

	// Driver is the storage backend, shared with the worker pool.
	Driver storage.Driver

	// Engine produces the mentor chat and curriculum streams.
	Engine mentor.Engine

	// Pool persists records off the request path.
	Pool *worker.Pool

	// Querier aggregates stored records into progress summaries.
	// Defaults to analytics.NewQuery(Driver).
	Querier analytics.Querier

	// VectorDriver for recall over past mentor conversations.
	VectorDriver vector.Driver

	// Embedder for converting recall queries to vectors for the
	// configured VectorDriver.
	Embedder embeddings.Embedder

	// Accounts maps learner emails to the logins the server accepts.
	// Defaults to DemoAccounts().
	Accounts map[string]Account

	// MCP is mounted at /mcp when set.
	MCP http.Handler

	// Logger is the provided logger
	Logger *slog.Logger
}
