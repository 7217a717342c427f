// Package thread models mentor conversations as chains of content-addressed
// turns. Each turn hashes its parent hash together with its content, so the
// set of all turns forms a DAG: resuming a conversation from an earlier
// point branches the thread instead of overwriting it.
package thread

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Roles a turn can carry.
const (
	RoleLearner = "learner"
	RoleMentor  = "mentor"
)

// Turn is a single content-addressed conversation turn.
type Turn struct {
	// Hash is the content-addressed identifier (SHA-256, hex-encoded).
	Hash string `json:"hash"`

	// ParentHash links to the previous turn. Nil for thread roots.
	ParentHash *string `json:"parent_hash"`

	// Learner owns the thread this turn belongs to.
	Learner string `json:"learner"`

	// Role indicates who produced the turn ("learner" or "mentor").
	Role string `json:"role"`

	// Text is the turn content.
	Text string `json:"text"`

	// CreatedAt is stored but does not participate in the hash, so the
	// same exchange always produces the same chain.
	CreatedAt time.Time `json:"created_at"`
}

// NewTurn creates a turn linked under parent (nil for a new thread root)
// and computes its hash.
func NewTurn(parent *Turn, learner, role, text string) *Turn {
	t := &Turn{
		Learner:   learner,
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}

	if parent != nil {
		t.ParentHash = &parent.Hash
	}

	t.Hash = t.computeHash()
	return t
}

// computeHash calculates the content-addressed hash for a turn.
func (t *Turn) computeHash() string {
	parent := ""
	if t.ParentHash != nil {
		parent = *t.ParentHash
	}

	// Struct marshaling emits fields in declaration order, which keeps the
	// encoding deterministic without a canonicalization pass.
	data, err := json.Marshal(struct {
		Parent  string `json:"parent"`
		Learner string `json:"learner"`
		Role    string `json:"role"`
		Text    string `json:"text"`
	}{
		Parent:  parent,
		Learner: t.Learner,
		Role:    t.Role,
		Text:    t.Text,
	})
	if err != nil {
		panic("failed to marshal hash input: " + err.Error())
	}

	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
