// Package remote implements a mentor engine that delegates to an
// external mentor service over HTTP and relays its stream. Each chunk
// frame the upstream emits is decoded and forwarded as-is; transport
// failures mid-stream surface as an error chunk so callers can tell a
// dropped connection from a finished reply.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/studyhallco/studyhall/pkg/logger"
	"github.com/studyhallco/studyhall/pkg/mentor"
	"github.com/studyhallco/studyhall/pkg/stream"
)

// DefaultIdleTimeout bounds how long a relay waits on a silent upstream
// before giving up on the stream.
const DefaultIdleTimeout = 90 * time.Second

const (
	chatPath = "/mentor/chat"
	planPath = "/curriculum/generate"
)

// Config holds the configuration for the remote engine.
type Config struct {
	// UpstreamURL is the base URL of the external mentor service.
	UpstreamURL string

	// IdleTimeout aborts a relay when the upstream goes quiet for this
	// long. Zero means DefaultIdleTimeout.
	IdleTimeout time.Duration
}

// Engine relays mentor streams from an upstream service.
type Engine struct {
	baseURL string
	idle    time.Duration
	client  *http.Client
	logger  *slog.Logger
}

// Ensure Engine implements mentor.Engine
var _ mentor.Engine = (*Engine)(nil)

// NewEngine creates a remote mentor engine.
func NewEngine(c Config, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = logger.Nop()
	}
	if c.UpstreamURL == "" {
		return nil, errors.New("mentor upstream URL is required")
	}
	parsed, err := url.Parse(c.UpstreamURL)
	if err != nil {
		return nil, fmt.Errorf("invalid mentor upstream URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("mentor upstream URL must be absolute: %s", c.UpstreamURL)
	}

	idle := c.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}

	return &Engine{
		baseURL: strings.TrimRight(c.UpstreamURL, "/"),
		idle:    idle,
		client:  &http.Client{},
		logger:  log,
	}, nil
}

// Chat relays a chat stream from the upstream service.
func (e *Engine) Chat(ctx context.Context, req mentor.Request) (<-chan mentor.Chunk, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("prompt is required")
	}
	return e.relay(ctx, chatPath, req)
}

// Plan relays a curriculum stream from the upstream service.
func (e *Engine) Plan(ctx context.Context, req mentor.PlanRequest) (<-chan mentor.Chunk, error) {
	return e.relay(ctx, planPath, req)
}

// Close releases idle upstream connections.
func (e *Engine) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

func (e *Engine) relay(ctx context.Context, path string, payload any) (<-chan mentor.Chunk, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode upstream request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach mentor upstream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("mentor upstream returned %s", resp.Status)
	}

	e.logger.Debug("relaying mentor stream", "path", path)

	out := make(chan mentor.Chunk)
	go func() {
		defer close(out)

		err := stream.Consume(ctx, resp.Body, func(ev *stream.Event) error {
			var chunk mentor.Chunk
			if err := ev.Decode(&chunk); err != nil {
				e.logger.Warn("skipping undecodable chunk from mentor upstream", "error", err)
				return nil
			}
			if chunk.Type == "" {
				e.logger.Warn("skipping untyped chunk from mentor upstream")
				return nil
			}
			select {
			case out <- chunk:
				return nil
			case <-ctx.Done():
				return context.Cause(ctx)
			}
		},
			stream.WithIdleTimeout(e.idle),
			stream.WithWarningFunc(func(line string, err error) {
				e.logger.Warn("malformed frame from mentor upstream", "line", line, "error", err)
			}),
		)
		if err != nil && ctx.Err() == nil {
			select {
			case out <- mentor.Chunk{Type: mentor.ChunkError, Error: err.Error()}:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}
