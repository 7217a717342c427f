package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/studyhallco/studyhall/pkg/recall"
)

// handleRecall handles GET /api/v1/mentor/recall requests.
// Query parameters:
//   - q (required): the recall query text
//   - top_k (optional, default 5): number of results to return
func (s *Server) handleRecall(c *fiber.Ctx) error {
	// Verify recall is configured
	if s.searcher == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(errorResponse{
			Error: "recall is not configured: vector driver and embedder are required",
		})
	}

	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{
			Error: "q parameter is required",
		})
	}

	topK := recall.DefaultTopK
	if topKStr := c.Query("top_k"); topKStr != "" {
		parsed, err := strconv.Atoi(topKStr)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(errorResponse{
				Error: "top_k must be a positive integer",
			})
		}
		topK = parsed
	}

	output, err := s.searcher.Search(c.Context(), query, topK)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{
			Error: err.Error(),
		})
	}

	return c.JSON(output)
}
