// Package mentor defines the conversation engines behind studyhall's
// mentor chat and curriculum planner.
//
// An Engine turns one learner request into a stream of chunks so replies
// render incrementally everywhere: the API relays chunks as data frames,
// the CLI prints them as they arrive. Two engines ship: scripted, a
// deterministic rule-based tutor for demos and tests, and remote, which
// delegates to an external mentor service and relays its stream.
package mentor

import "context"

// Supported engine kinds.
const (
	EngineScripted = "scripted"
	EngineRemote   = "remote"
)

// SupportedEngines returns the list of all supported engine kinds.
func SupportedEngines() []string {
	return []string{EngineScripted, EngineRemote}
}

// Chunk kinds.
const (
	// ChunkDelta carries one increment of mentor output.
	ChunkDelta = "delta"

	// ChunkDone ends a stream that finished; Text holds the fully
	// assembled output.
	ChunkDone = "done"

	// ChunkError ends a stream that failed after it started.
	ChunkError = "error"
)

// Chunk is one unit of streamed mentor output. It is also the wire
// payload of one data frame on the streaming endpoints.
type Chunk struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// Message is one prior conversation turn, passed along as context.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Request asks for a mentor reply to one prompt. History carries the
// conversation so far, oldest first.
type Request struct {
	Learner string    `json:"learner,omitempty"`
	Prompt  string    `json:"prompt"`
	History []Message `json:"history,omitempty"`
}

// PlanRequest asks for a generated curriculum plan.
type PlanRequest struct {
	Learner string `json:"learner,omitempty"`
	Goal    string `json:"goal"`
	Weeks   int    `json:"weeks,omitempty"`
}

// Engine produces mentor output as a chunk stream.
//
// The returned channel closes when the stream ends. A ChunkDone chunk
// precedes the close on success and carries the fully assembled text; a
// ChunkError chunk reports a stream that failed after it started. An
// error returned directly means the stream never started.
type Engine interface {
	// Chat streams a mentor reply to one learner prompt.
	Chat(ctx context.Context, req Request) (<-chan Chunk, error)

	// Plan streams a generated curriculum plan.
	Plan(ctx context.Context, req PlanRequest) (<-chan Chunk, error)

	// Close releases engine resources.
	Close() error
}
