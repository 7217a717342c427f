package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ChatRequest is the request body for the mentor chat endpoint.
type ChatRequest struct {
	// Prompt is the learner's message.
	Prompt string `json:"prompt"`

	// Parent is the thread head hash to continue from. Empty starts a
	// new thread.
	Parent string `json:"parent,omitempty"`
}

// PlanRequest is the request body for the curriculum endpoint.
type PlanRequest struct {
	Goal  string `json:"goal"`
	Weeks int    `json:"weeks,omitempty"`
}

// Chunk is one decoded frame of a streaming response. Delta chunks carry
// an increment of mentor output; the done chunk carries the assembled
// text plus the new thread head (chat) or the persisted plan ID
// (curriculum generation).
type Chunk struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	Error  string `json:"error,omitempty"`
	Head   string `json:"head,omitempty"`
	PlanID string `json:"plan_id,omitempty"`
}

// ChatResult is the outcome of a completed chat stream.
type ChatResult struct {
	// Text is the fully assembled mentor reply.
	Text string

	// Head is the content hash of the new thread head, the anchor for
	// resuming the conversation.
	Head string
}

// PlanResult is the outcome of a completed curriculum stream.
type PlanResult struct {
	// PlanID identifies the persisted plan on the server.
	PlanID string

	// Markdown is the fully assembled plan document.
	Markdown string
}

// Stats reports storage totals for a running server.
type Stats struct {
	Turns    int `json:"turns"`
	Roots    int `json:"roots"`
	Leaves   int `json:"leaves"`
	Learners int `json:"learners"`
	Quizzes  int `json:"quizzes"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// IsUnauthorized reports whether err is a 401 from the server, the cue to
// run login again.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
