package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/studyhallco/studyhall/pkg/recall"
)

var (
	mentorRecallToolName    = "mentor_recall"
	mentorRecallDescription = "Search over stored mentor conversations using semantic search. Returns the most relevant turns based on the query text, each with the thread history that led up to it."
)

// MentorRecallInput represents the input arguments for the mentor_recall tool.
type MentorRecallInput struct {
	Query string `json:"query" jsonschema:"the search query text to find relevant conversations"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of results to return (default: 5)"`
}

// handleMentorRecall processes a mentor recall request.
func (s *Server) handleMentorRecall(ctx context.Context, req *mcp.CallToolRequest, input MentorRecallInput) (*mcp.CallToolResult, recall.Output, error) {
	logger := s.config.Logger

	topK := input.TopK
	if topK <= 0 {
		topK = recall.DefaultTopK
	}

	logger.Debug("MCP recall request",
		"query", input.Query,
		"top_k", topK,
	)

	output, err := s.searcher.Search(ctx, input.Query, topK)
	if err != nil {
		logger.Error("recall search failed", "error", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Recall failed: %v", err)},
			},
		}, recall.Output{}, nil
	}

	// Serialize the structured output as JSON for the text field
	// Per MCP spec: tools returning structured content should also return
	// serialized JSON in a TextContent block for backwards compatibility
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal recall output", "error", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize results: %v", err)},
			},
		}, recall.Output{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, *output, nil
}
