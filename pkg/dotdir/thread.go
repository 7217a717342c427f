package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	threadFile = "thread.json"
)

// ThreadState represents the persisted chat position. It holds the hash
// of the turn the learner last spoke from and the conversation messages
// leading up to (and including) that turn.
type ThreadState struct {
	// Head is the hash of the current turn.
	Head string `json:"head"`

	// Messages is the conversation history in chronological order
	// (oldest first), up to and including the head turn.
	Messages []ThreadMessage `json:"messages"`
}

// ThreadMessage represents a single message in the resumed conversation.
type ThreadMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LoadThreadState loads the thread state from a target
// .studyhall/thread.json. Returns nil, nil if no state exists (a fresh
// conversation). If overrideDir is non-empty, it is used instead of the
// default resolution.
func (m *Manager) LoadThreadState(overrideDir string) (*ThreadState, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, threadFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading thread state: %w", err)
	}

	state := &ThreadState{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing thread state: %w", err)
	}

	return state, nil
}

// SaveThreadState persists the thread state to a target
// .studyhall/thread.json.
func (m *Manager) SaveThreadState(state *ThreadState, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil thread state")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling thread state: %w", err)
	}

	path := filepath.Join(dir, threadFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing thread state: %w", err)
	}

	return nil
}

// ClearThreadState removes the thread state file so the next chat starts
// a new conversation root. Returns nil if the file doesn't exist
// (already cleared). If overrideDir is non-empty, it is used instead of
// the default resolution.
func (m *Manager) ClearThreadState(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, threadFile)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing thread state: %w", err)
	}

	return nil
}
