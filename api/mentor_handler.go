package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/studyhallco/studyhall/pkg/learn"
	"github.com/studyhallco/studyhall/pkg/mentor"
	"github.com/studyhallco/studyhall/pkg/thread"
	"github.com/studyhallco/studyhall/pkg/worker"
)

// streamChunk is the wire shape of one data frame on the streaming
// endpoints. It extends mentor.Chunk with the identifiers the server mints
// when a stream completes.
type streamChunk struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	Error  string `json:"error,omitempty"`
	Head   string `json:"head,omitempty"`
	PlanID string `json:"plan_id,omitempty"`
}

// handleMentorChat streams a mentor reply as data frames and persists the
// exchange as two chained turns once the reply completes. The done frame
// carries the hash of the new mentor turn so the client can resume from it.
func (s *Server) handleMentorChat(c *fiber.Ctx) error {
	var req struct {
		Prompt string `json:"prompt"`
		Parent string `json:"parent"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "prompt is required"})
	}

	learnerEmail := s.learner(c)

	// Resolve the parent turn and its history up front so a bad parent
	// fails the request instead of the stream.
	var parent *thread.Turn
	var history []mentor.Message
	if req.Parent != "" {
		turns, err := s.driver.TurnHistory(c.Context(), req.Parent)
		if err != nil || len(turns) == 0 || turns[0].Learner != learnerEmail {
			return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "parent turn not found"})
		}

		parent = turns[0]
		history = make([]mentor.Message, len(turns))
		for i := range turns {
			t := turns[len(turns)-1-i]
			history[i] = mentor.Message{Role: t.Role, Text: t.Text}
		}
	}

	// The stream outlives this handler, so the engine runs on its own
	// context; fasthttp recycles the request context as soon as the
	// handler returns. The pump cancels it when the client goes away.
	ctx, cancel := context.WithCancel(context.Background())

	chunks, err := s.engine.Chat(ctx, mentor.Request{
		Learner: learnerEmail,
		Prompt:  req.Prompt,
		History: history,
	})
	if err != nil {
		cancel()
		return c.Status(fiber.StatusBadGateway).JSON(errorResponse{Error: err.Error()})
	}

	s.logger.Debug("mentor chat stream started",
		"learner", learnerEmail,
		"resumed", parent != nil,
	)

	pr, pw := io.Pipe()
	go s.pumpChat(cancel, pw, chunks, learnerEmail, parent, req.Prompt)

	c.Set(fiber.HeaderContentType, "text/event-stream")

	// Set the pipe reader as the body stream with unknown size (-1),
	// which triggers chunked transfer encoding in fasthttp. pw.Write
	// blocks until fasthttp flushes the frame to the socket, giving
	// direct backpressure and true per-frame streaming.
	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// pumpChat relays engine chunks to the client as data frames and queues the
// completed exchange for persistence.
func (s *Server) pumpChat(cancel context.CancelFunc, pw *io.PipeWriter, chunks <-chan mentor.Chunk, learnerEmail string, parent *thread.Turn, prompt string) {
	defer cancel()
	defer pw.Close()

	var done bool
	var assembled strings.Builder

	for chunk := range chunks {
		frame := streamChunk{Type: chunk.Type, Text: chunk.Text, Error: chunk.Error}

		switch chunk.Type {
		case mentor.ChunkDelta:
			assembled.WriteString(chunk.Text)
		case mentor.ChunkDone:
			done = true
			text := chunk.Text
			if text == "" {
				text = assembled.String()
			}
			frame.Text = text

			learnerTurn := thread.NewTurn(parent, learnerEmail, thread.RoleLearner, prompt)
			mentorTurn := thread.NewTurn(learnerTurn, learnerEmail, thread.RoleMentor, text)
			s.pool.Enqueue(worker.Job{Turns: []*thread.Turn{learnerTurn, mentorTurn}})
			s.pool.Enqueue(worker.Job{Activity: learn.NewActivity(learnerEmail, learn.VerbChat, mentorTurn.Hash)})
			frame.Head = mentorTurn.Hash
		}

		if err := writeFrame(pw, frame); err != nil {
			s.logger.Warn("client left mid-stream", "error", err)
			return
		}
	}

	if !done {
		// The engine channel closed without a done chunk; nothing was
		// persisted.
		_ = writeFrame(pw, streamChunk{Type: mentor.ChunkError, Error: "mentor stream ended unexpectedly"})
	}
}

// handleGenerateCurriculum streams a generated study plan as data frames
// and persists the parsed plan once generation completes. The done frame
// carries the plan ID alongside the full markdown.
func (s *Server) handleGenerateCurriculum(c *fiber.Ctx) error {
	var req struct {
		Goal  string `json:"goal"`
		Weeks int    `json:"weeks"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Goal) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "goal is required"})
	}

	learnerEmail := s.learner(c)
	ctx, cancel := context.WithCancel(context.Background())

	chunks, err := s.engine.Plan(ctx, mentor.PlanRequest{
		Learner: learnerEmail,
		Goal:    req.Goal,
		Weeks:   req.Weeks,
	})
	if err != nil {
		cancel()
		return c.Status(fiber.StatusBadGateway).JSON(errorResponse{Error: err.Error()})
	}

	s.logger.Debug("curriculum stream started",
		"learner", learnerEmail,
		"goal", req.Goal,
	)

	pr, pw := io.Pipe()
	go s.pumpPlan(cancel, pw, chunks, learnerEmail, req.Goal)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// pumpPlan relays engine chunks to the client as data frames and queues the
// parsed plan for persistence.
func (s *Server) pumpPlan(cancel context.CancelFunc, pw *io.PipeWriter, chunks <-chan mentor.Chunk, learnerEmail, goal string) {
	defer cancel()
	defer pw.Close()

	var done bool
	var assembled strings.Builder

	for chunk := range chunks {
		frame := streamChunk{Type: chunk.Type, Text: chunk.Text, Error: chunk.Error}

		switch chunk.Type {
		case mentor.ChunkDelta:
			assembled.WriteString(chunk.Text)
		case mentor.ChunkDone:
			done = true
			markdown := chunk.Text
			if markdown == "" {
				markdown = assembled.String()
			}
			frame.Text = markdown

			plan := learn.NewPlan(learnerEmail, goal)
			plan.Weeks = learn.ParsePlanMarkdown(markdown)
			s.pool.Enqueue(worker.Job{Plan: plan})
			s.pool.Enqueue(worker.Job{Activity: learn.NewActivity(learnerEmail, learn.VerbPlanGenerated, plan.ID)})
			frame.PlanID = plan.ID
		}

		if err := writeFrame(pw, frame); err != nil {
			s.logger.Warn("client left mid-stream", "error", err)
			return
		}
	}

	if !done {
		_ = writeFrame(pw, streamChunk{Type: mentor.ChunkError, Error: "curriculum stream ended unexpectedly"})
	}
}

// writeFrame writes one data frame to the pipe.
func writeFrame(pw *io.PipeWriter, chunk streamChunk) error {
	payload, err := json.Marshal(chunk)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(pw, "data: %s\n", payload)
	return err
}
