package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/studyhallco/studyhall/pkg/analytics"
	"github.com/studyhallco/studyhall/pkg/learn"
	"github.com/studyhallco/studyhall/pkg/thread"
	"github.com/studyhallco/studyhall/pkg/worker"
)

// ThreadHistoryResponse contains one full conversation thread.
type ThreadHistoryResponse struct {
	// Turns in chronological order (oldest first, up to and including the requested turn)
	Turns []*thread.Turn `json:"turns"`
	// HeadHash is the hash of the turn that was requested
	HeadHash string `json:"head_hash"`
	// Depth is the number of turns in the history
	Depth int `json:"depth"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListQuizzes returns every quiz as a learner-facing summary.
func (s *Server) handleListQuizzes(c *fiber.Ctx) error {
	quizzes, err := s.driver.ListQuizzes(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to list quizzes"})
	}

	summaries := make([]learn.QuizSummary, len(quizzes))
	for i, quiz := range quizzes {
		summaries[i] = quiz.Summary()
	}

	return c.JSON(map[string]any{
		"quizzes": summaries,
		"count":   len(summaries),
	})
}

// handleGetQuiz returns a single quiz by slug, with the answer keys
// withheld.
func (s *Server) handleGetQuiz(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "slug parameter required"})
	}

	quiz, err := s.driver.GetQuiz(c.Context(), slug)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "quiz not found"})
	}

	return c.JSON(quiz.View())
}

// handleSubmitAttempt grades a submission synchronously and queues the
// persistence write.
func (s *Server) handleSubmitAttempt(c *fiber.Ctx) error {
	slug := c.Params("slug")
	quiz, err := s.driver.GetQuiz(c.Context(), slug)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "quiz not found"})
	}

	var req struct {
		Answers []int `json:"answers"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	attempt := learn.NewAttempt(s.learner(c), quiz, req.Answers)
	s.pool.Enqueue(worker.Job{Attempt: attempt})
	s.pool.Enqueue(worker.Job{Activity: learn.NewActivity(attempt.Learner, learn.VerbQuizSubmitted, slug)})

	return c.Status(fiber.StatusCreated).JSON(attempt)
}

// handleListAttempts returns the learner's graded attempts, newest first.
func (s *Server) handleListAttempts(c *fiber.Ctx) error {
	attempts, err := s.driver.AttemptsByLearner(c.Context(), s.learner(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to list attempts"})
	}

	return c.JSON(map[string]any{
		"attempts": attempts,
		"count":    len(attempts),
	})
}

// handleCheckIn records an emotional check-in and queues the persistence
// write.
func (s *Server) handleCheckIn(c *fiber.Ctx) error {
	var req struct {
		Mood   int    `json:"mood"`
		Energy int    `json:"energy"`
		Note   string `json:"note"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	checkIn, err := learn.NewCheckIn(s.learner(c), req.Mood, req.Energy, req.Note)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: err.Error()})
	}

	s.pool.Enqueue(worker.Job{CheckIn: checkIn})
	s.pool.Enqueue(worker.Job{Activity: learn.NewActivity(checkIn.Learner, learn.VerbCheckIn, "")})

	return c.Status(fiber.StatusCreated).JSON(checkIn)
}

// handleListCheckIns returns the learner's check-ins, newest first.
func (s *Server) handleListCheckIns(c *fiber.Ctx) error {
	checkIns, err := s.driver.CheckInsByLearner(c.Context(), s.learner(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to list check-ins"})
	}

	return c.JSON(map[string]any{
		"check_ins": checkIns,
		"count":     len(checkIns),
	})
}

// handleRecordActivity accepts a telemetry record and queues the write.
// The 202 means accepted, not yet durable.
func (s *Server) handleRecordActivity(c *fiber.Ctx) error {
	var req struct {
		Verb   string `json:"verb"`
		Object string `json:"object"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Verb) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "verb is required"})
	}

	s.pool.Enqueue(worker.Job{Activity: learn.NewActivity(s.learner(c), req.Verb, req.Object)})

	return c.SendStatus(fiber.StatusAccepted)
}

// handleProgress returns the cohort progress overview.
// Query parameters:
//   - since (optional): only count records newer than this duration (e.g., 168h)
//   - learner, topic (optional): keep only matching learners
//   - sort, dir (optional): sort key and direction for the learner table
func (s *Server) handleProgress(c *fiber.Ctx) error {
	filters := analytics.Filters{
		Learner: c.Query("learner"),
		Topic:   c.Query("topic"),
		Sort:    c.Query("sort"),
		SortDir: c.Query("dir"),
	}
	if sinceStr := c.Query("since"); sinceStr != "" {
		since, err := time.ParseDuration(sinceStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "since must be a duration like 168h"})
		}
		filters.Since = since
	}

	overview, err := s.querier.Overview(c.Context(), filters)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to build progress overview"})
	}

	return c.JSON(overview)
}

// handleLearnerProgress returns the signed-in learner's progress detail.
func (s *Server) handleLearnerProgress(c *fiber.Ctx) error {
	detail, err := s.querier.LearnerDetail(c.Context(), s.learner(c))
	if err != nil {
		if errors.Is(err, analytics.ErrNoRecords) {
			return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "no records for learner"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to build learner progress"})
	}

	return c.JSON(detail)
}

// handleListPlans returns the learner's curriculum plans, newest first.
func (s *Server) handleListPlans(c *fiber.Ctx) error {
	plans, err := s.driver.PlansByLearner(c.Context(), s.learner(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to list plans"})
	}

	return c.JSON(map[string]any{
		"plans": plans,
		"count": len(plans),
	})
}

// handleGetPlan returns a single plan by ID. Plans belong to the learner
// who generated them; anyone else sees a miss.
func (s *Server) handleGetPlan(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "id parameter required"})
	}

	plan, err := s.driver.GetPlan(c.Context(), id)
	if err != nil || plan.Learner != s.learner(c) {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "plan not found"})
	}

	return c.JSON(plan)
}

// handleListThreads returns the learner's conversation heads, one per
// thread leaf.
func (s *Server) handleListThreads(c *fiber.Ctx) error {
	leaves, err := s.driver.TurnLeaves(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to list threads"})
	}

	learnerEmail := s.learner(c)
	threads := make([]*thread.Turn, 0, len(leaves))
	for _, leaf := range leaves {
		if leaf.Learner == learnerEmail {
			threads = append(threads, leaf)
		}
	}

	return c.JSON(map[string]any{
		"threads": threads,
		"count":   len(threads),
	})
}

// handleThreadHistory returns the full conversation leading up to a given
// turn.
func (s *Server) handleThreadHistory(c *fiber.Ctx) error {
	hash := c.Params("hash")
	if hash == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "hash parameter required"})
	}

	history, err := s.driver.TurnHistory(c.Context(), hash)
	if err != nil || len(history) == 0 || history[0].Learner != s.learner(c) {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "turn not found"})
	}

	// TurnHistory walks head to root; the response reads oldest first.
	turns := make([]*thread.Turn, len(history))
	for i := range history {
		turns[i] = history[len(history)-1-i]
	}

	return c.JSON(ThreadHistoryResponse{
		Turns:    turns,
		HeadHash: hash,
		Depth:    len(turns),
	})
}

// handleStats returns storewide totals.
func (s *Server) handleStats(c *fiber.Ctx) error {
	ctx := c.Context()

	turns, err := s.driver.CountTurns(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to count turns"})
	}

	roots, err := s.driver.TurnRoots(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to get roots"})
	}

	leaves, err := s.driver.TurnLeaves(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to get leaves"})
	}

	learners, err := s.driver.Learners(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to list learners"})
	}

	quizzes, err := s.driver.ListQuizzes(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to list quizzes"})
	}

	return c.JSON(map[string]any{
		"turns":    turns,
		"roots":    len(roots),
		"leaves":   len(leaves),
		"learners": len(learners),
		"quizzes":  len(quizzes),
	})
}
