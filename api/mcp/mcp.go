// Package mcp provides an MCP (Model Context Protocol) server for the studyhall platform.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/studyhallco/studyhall/pkg/analytics"
	"github.com/studyhallco/studyhall/pkg/embeddings"
	"github.com/studyhallco/studyhall/pkg/logger"
	"github.com/studyhallco/studyhall/pkg/recall"
	"github.com/studyhallco/studyhall/pkg/storage"
	"github.com/studyhallco/studyhall/pkg/utils"
	"github.com/studyhallco/studyhall/pkg/vector"
)

type Config struct {
	// Driver for quiz lookup and thread loading
	Driver storage.Driver

	// Querier for progress reports
	// Defaults to analytics.NewQuery(Driver).
	Querier analytics.Querier

	// VectorDriver for semantic recall
	VectorDriver vector.Driver

	// Embedder for converting query text to vectors for semantic recall
	// with the configured VectorDriver (optional, enables mentor_recall tool)
	Embedder embeddings.Embedder

	// Noop for empty MCP server
	Noop bool

	// Logger is the provided logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	searcher  *recall.Searcher
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the studyhall tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	// Create the MCP server
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "studyhall",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)
	s.mcpServer = mcpServer

	if c.Noop {
		// serve the empty MCP server with no tools configured
		// if the noop flag is set (i.e., MCP capabilities are disabled)
		s.handler = newStreamableHandler(mcpServer)
		return s, nil
	}

	if c.Driver == nil {
		return nil, errors.New("storage driver is required")
	}
	if s.config.Querier == nil {
		s.config.Querier = analytics.NewQuery(c.Driver)
	}
	if s.config.Logger == nil {
		s.config.Logger = logger.Nop()
	}

	// Add tools
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        quizLookupToolName,
		Description: quizLookupDescription,
	}, s.handleQuizLookup)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        progressReportToolName,
		Description: progressReportDescription,
	}, s.handleProgressReport)

	// Add the recall tool if a vector store and embedder are configured
	if c.VectorDriver != nil && c.Embedder != nil {
		s.searcher = recall.NewSearcher(c.Embedder, c.VectorDriver, c.Driver, s.config.Logger)
		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        mentorRecallToolName,
			Description: mentorRecallDescription,
		}, s.handleMentorRecall)
	}

	s.handler = newStreamableHandler(mcpServer)

	return s, nil
}

// newStreamableHandler creates a streamable HTTP net/http handler for
// stateless operations.
func newStreamableHandler(mcpServer *mcp.Server) *mcp.StreamableHTTPHandler {
	return mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}
