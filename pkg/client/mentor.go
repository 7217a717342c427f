package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/studyhallco/studyhall/pkg/mentor"
	"github.com/studyhallco/studyhall/pkg/recall"
	"github.com/studyhallco/studyhall/pkg/stream"
	"github.com/studyhallco/studyhall/pkg/thread"
)

// Chat sends one prompt to the mentor and consumes the streamed reply.
// onChunk, when non-nil, runs once per delta and once for the final done
// chunk, in arrival order; returning an error from it aborts the stream.
// The result carries the assembled reply and the new thread head.
func (c *Client) Chat(ctx context.Context, req ChatRequest, onChunk func(Chunk) error) (*ChatResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("prompt is required")
	}

	body, err := c.openStream(ctx, apiPrefix+"/mentor/chat", req)
	if err != nil {
		return nil, err
	}

	result := &ChatResult{}
	var assembled strings.Builder
	done := false

	err = stream.Consume(ctx, body, func(ev *stream.Event) error {
		var chunk Chunk
		if err := ev.Decode(&chunk); err != nil {
			c.logger.Warn("skipping undecodable chunk from server", "error", err)
			return nil
		}

		switch chunk.Type {
		case mentor.ChunkDelta:
			assembled.WriteString(chunk.Text)
		case mentor.ChunkDone:
			done = true
			result.Text = chunk.Text
			result.Head = chunk.Head
		case mentor.ChunkError:
			return fmt.Errorf("mentor stream failed: %s", chunk.Error)
		default:
			c.logger.Warn("skipping unknown chunk type from server", "type", chunk.Type)
			return nil
		}

		if onChunk != nil {
			return onChunk(chunk)
		}
		return nil
	},
		stream.WithIdleTimeout(c.idle),
		stream.WithWarningFunc(func(line string, err error) {
			c.logger.Warn("malformed frame from server", "line", line, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, errors.New("stream ended before completion")
	}

	if result.Text == "" {
		result.Text = assembled.String()
	}
	return result, nil
}

// GenerateCurriculum asks the mentor for a study plan and consumes the
// streamed document. onChunk behaves as in Chat. The result carries the
// assembled markdown and the ID of the persisted plan.
func (c *Client) GenerateCurriculum(ctx context.Context, req PlanRequest, onChunk func(Chunk) error) (*PlanResult, error) {
	if strings.TrimSpace(req.Goal) == "" {
		return nil, errors.New("goal is required")
	}

	body, err := c.openStream(ctx, apiPrefix+"/curriculum/generate", req)
	if err != nil {
		return nil, err
	}

	result := &PlanResult{}
	var assembled strings.Builder
	done := false

	err = stream.Consume(ctx, body, func(ev *stream.Event) error {
		var chunk Chunk
		if err := ev.Decode(&chunk); err != nil {
			c.logger.Warn("skipping undecodable chunk from server", "error", err)
			return nil
		}

		switch chunk.Type {
		case mentor.ChunkDelta:
			assembled.WriteString(chunk.Text)
		case mentor.ChunkDone:
			done = true
			result.Markdown = chunk.Text
			result.PlanID = chunk.PlanID
		case mentor.ChunkError:
			return fmt.Errorf("curriculum stream failed: %s", chunk.Error)
		default:
			c.logger.Warn("skipping unknown chunk type from server", "type", chunk.Type)
			return nil
		}

		if onChunk != nil {
			return onChunk(chunk)
		}
		return nil
	},
		stream.WithIdleTimeout(c.idle),
		stream.WithWarningFunc(func(line string, err error) {
			c.logger.Warn("malformed frame from server", "line", line, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, errors.New("stream ended before completion")
	}

	if result.Markdown == "" {
		result.Markdown = assembled.String()
	}
	return result, nil
}

// Threads lists the signed-in learner's conversation threads, one leaf
// turn per thread, newest first.
func (c *Client) Threads(ctx context.Context) ([]*thread.Turn, error) {
	var out struct {
		Threads []*thread.Turn `json:"threads"`
		Count   int            `json:"count"`
	}
	if err := c.get(ctx, apiPrefix+"/mentor/threads", &out); err != nil {
		return nil, err
	}
	return out.Threads, nil
}

// ThreadHistory fetches the turns leading up to a head hash, oldest first.
func (c *Client) ThreadHistory(ctx context.Context, hash string) ([]*thread.Turn, error) {
	if hash == "" {
		return nil, errors.New("thread hash is required")
	}

	var out struct {
		Turns    []*thread.Turn `json:"turns"`
		HeadHash string         `json:"head_hash"`
		Depth    int            `json:"depth"`
	}
	path := fmt.Sprintf("%s/mentor/threads/%s/history", apiPrefix, url.PathEscape(hash))
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Turns, nil
}

// Recall runs a semantic search over stored mentor conversations.
func (c *Client) Recall(ctx context.Context, query string, topK int) (*recall.Output, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is required")
	}

	params := url.Values{}
	params.Set("q", query)
	if topK > 0 {
		params.Set("top_k", strconv.Itoa(topK))
	}

	var out recall.Output
	if err := c.get(ctx, apiPrefix+"/mentor/recall?"+params.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
