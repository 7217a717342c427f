// Package notes provides a lightweight note layer for the studyhall
// platform.
//
// Notes are short takeaways a learner writes down while studying ("flip
// the second fraction when dividing"), optionally pinned to the mentor
// conversation turn that prompted them. They are distilled knowledge, not
// transcripts.
//
// The [Driver] interface is intentionally minimal: Add persists a note,
// ByTurn recalls the notes pinned to a turn, List returns everything for
// review, and Close releases resources.
package notes

import (
	"context"
	"time"
)

// Driver handles storage and recall of study notes.
type Driver interface {
	// Add persists one note.
	Add(ctx context.Context, note Note) error

	// ByTurn retrieves the notes pinned to a conversation turn hash.
	ByTurn(ctx context.Context, hash string) ([]Note, error)

	// List returns all notes, newest first.
	List(ctx context.Context) ([]Note, error)

	// Close releases driver resources.
	Close() error
}

// Note is one recorded takeaway. TurnHash pins the note to the mentor
// conversation turn it came from, when there is one.
type Note struct {
	ID        string    `json:"id"`
	Learner   string    `json:"learner,omitempty"`
	TurnHash  string    `json:"turn_hash,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
