package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/studyhallco/studyhall/pkg/analytics"
)

var (
	progressReportToolName    = "progress_report"
	progressReportDescription = "Report learner progress computed from stored quiz attempts, check-ins, and activity. Returns the cohort overview when the learner is omitted, or one learner's detail with quiz breakdown, streak calendar, and mood trend when given."
)

// ProgressReportInput represents the input arguments for the progress_report tool.
type ProgressReportInput struct {
	Learner string `json:"learner,omitempty" jsonschema:"learner email to report on; omit for the cohort overview"`
}

// ProgressReportOutput represents the output of the progress_report tool.
type ProgressReportOutput struct {
	Overview *analytics.Overview      `json:"overview,omitempty"`
	Learner  *analytics.LearnerDetail `json:"learner,omitempty"`
}

// handleProgressReport processes a progress report request.
func (s *Server) handleProgressReport(ctx context.Context, req *mcp.CallToolRequest, input ProgressReportInput) (*mcp.CallToolResult, ProgressReportOutput, error) {
	logger := s.config.Logger

	logger.Debug("MCP progress report request", "learner", input.Learner)

	var output ProgressReportOutput

	if input.Learner != "" {
		detail, err := s.config.Querier.LearnerDetail(ctx, input.Learner)
		if err != nil {
			logger.Error("failed to build learner detail", "error", err)
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{
					&mcp.TextContent{Text: fmt.Sprintf("Failed to build learner report: %v", err)},
				},
			}, ProgressReportOutput{}, nil
		}
		output.Learner = detail
	} else {
		overview, err := s.config.Querier.Overview(ctx, analytics.Filters{})
		if err != nil {
			logger.Error("failed to build overview", "error", err)
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{
					&mcp.TextContent{Text: fmt.Sprintf("Failed to build progress overview: %v", err)},
				},
			}, ProgressReportOutput{}, nil
		}
		output.Overview = overview
	}

	// Serialize the structured output as JSON for the text field
	// Per MCP spec: tools returning structured content should also return
	// serialized JSON in a TextContent block for backwards compatibility
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal progress output", "error", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize results: %v", err)},
			},
		}, ProgressReportOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
