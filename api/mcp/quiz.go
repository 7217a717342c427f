package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/studyhallco/studyhall/pkg/learn"
)

var (
	quizLookupToolName    = "quiz_lookup"
	quizLookupDescription = "Look up practice quizzes in the studyhall library. Returns one quiz with its questions and choices when a slug is given, or the full quiz catalog when the slug is omitted. Answer keys are never included."
)

// QuizLookupInput represents the input arguments for the quiz_lookup tool.
type QuizLookupInput struct {
	Slug string `json:"slug,omitempty" jsonschema:"the quiz slug to look up; omit to list the full catalog"`
}

// QuizLookupOutput represents the output of the quiz_lookup tool.
type QuizLookupOutput struct {
	Quiz    *learn.QuizView     `json:"quiz,omitempty"`
	Quizzes []learn.QuizSummary `json:"quizzes,omitempty"`
	Count   int                 `json:"count"`
}

// handleQuizLookup processes a quiz lookup request.
func (s *Server) handleQuizLookup(ctx context.Context, req *mcp.CallToolRequest, input QuizLookupInput) (*mcp.CallToolResult, QuizLookupOutput, error) {
	logger := s.config.Logger

	logger.Debug("MCP quiz lookup request", "slug", input.Slug)

	var output QuizLookupOutput

	if input.Slug != "" {
		quiz, err := s.config.Driver.GetQuiz(ctx, input.Slug)
		if err != nil {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{
					&mcp.TextContent{Text: fmt.Sprintf("Quiz not found: %s", input.Slug)},
				},
			}, QuizLookupOutput{}, nil
		}
		output = QuizLookupOutput{Quiz: quiz.View(), Count: 1}
	} else {
		quizzes, err := s.config.Driver.ListQuizzes(ctx)
		if err != nil {
			logger.Error("failed to list quizzes", "error", err)
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{
					&mcp.TextContent{Text: fmt.Sprintf("Failed to list quizzes: %v", err)},
				},
			}, QuizLookupOutput{}, nil
		}

		summaries := make([]learn.QuizSummary, len(quizzes))
		for i, quiz := range quizzes {
			summaries[i] = quiz.Summary()
		}
		output = QuizLookupOutput{Quizzes: summaries, Count: len(summaries)}
	}

	// Serialize the structured output as JSON for the text field
	// Per MCP spec: tools returning structured content should also return
	// serialized JSON in a TextContent block for backwards compatibility
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal quiz lookup output", "error", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize results: %v", err)},
			},
		}, QuizLookupOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
