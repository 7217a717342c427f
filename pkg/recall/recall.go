// Package recall provides shared semantic search over stored mentor
// conversations. It is used by both the REST endpoint and the MCP server
// tool: the query is embedded, matched against the vector store, and each
// hit is returned with the thread history that led up to it.
package recall

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studyhallco/studyhall/pkg/embeddings"
	"github.com/studyhallco/studyhall/pkg/logger"
	"github.com/studyhallco/studyhall/pkg/thread"
	"github.com/studyhallco/studyhall/pkg/vector"
)

// DefaultTopK applies when a request does not say how many results it wants.
const DefaultTopK = 5

// Input represents the arguments of a recall request.
type Input struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// Turn is a single conversation turn in a result's thread context.
type Turn struct {
	Hash    string `json:"hash"`
	Role    string `json:"role"`
	Text    string `json:"text"`
	Matched bool   `json:"matched,omitempty"`
}

// Result is one matched turn with the history that led up to it.
type Result struct {
	Hash    string  `json:"hash"`
	Score   float32 `json:"score"`
	Learner string  `json:"learner"`
	Role    string  `json:"role"`
	Preview string  `json:"preview"`
	Turns   int     `json:"turns"`
	Thread  []Turn  `json:"thread"`
}

// Output is the response of a recall operation.
type Output struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
	Count   int      `json:"count"`
}

// Searcher runs recall queries against an embedder, a vector store, and a
// turn loader.
type Searcher struct {
	embedder     embeddings.Embedder
	vectorDriver vector.Driver
	loader       thread.Loader
	logger       *slog.Logger
}

func NewSearcher(embedder embeddings.Embedder, vectorDriver vector.Driver, loader thread.Loader, log *slog.Logger) *Searcher {
	if log == nil {
		log = logger.Nop()
	}

	return &Searcher{
		embedder:     embedder,
		vectorDriver: vectorDriver,
		loader:       loader,
		logger:       log,
	}
}

// Search embeds the query, finds the closest stored turns, and loads the
// thread history for each hit. Hits whose history cannot be loaded are
// skipped with a warning.
func (s *Searcher) Search(ctx context.Context, query string, topK int) (*Output, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	s.logger.Debug("recall request", "query", query, "top_k", topK)

	queryEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := s.vectorDriver.Query(ctx, queryEmbedding, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector store: %w", err)
	}

	results := make([]Result, 0, len(matches))
	for _, match := range matches {
		history, err := s.loader.TurnHistory(ctx, match.Hash)
		if err != nil {
			s.logger.Warn("failed to load history for result",
				"hash", match.Hash,
				"error", err,
			)
			continue
		}

		results = append(results, buildResult(match, history))
	}

	return &Output{
		Query:   query,
		Results: results,
		Count:   len(results),
	}, nil
}

// buildResult converts one vector hit and its history (matched turn first,
// root last) into a Result whose thread reads root first.
func buildResult(match vector.QueryResult, history []*thread.Turn) Result {
	result := Result{
		Hash:  match.Hash,
		Score: match.Score,
	}

	turns := make([]Turn, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		turn := history[i]
		matched := turn.Hash == match.Hash
		turns = append(turns, Turn{
			Hash:    turn.Hash,
			Role:    turn.Role,
			Text:    turn.Text,
			Matched: matched,
		})

		if matched {
			result.Learner = turn.Learner
			result.Role = turn.Role
			result.Preview = turn.Text
		}
	}

	result.Turns = len(turns)
	result.Thread = turns

	return result
}
