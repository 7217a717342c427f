// Package local provides a JSON-file implementation of the notes.Driver
// interface. Notes live in a single file under the studyhall dot
// directory so they survive restarts and stay readable with nothing
// fancier than cat.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studyhallco/studyhall/pkg/notes"
)

// Config holds the configuration for the local notes driver.
type Config struct {
	// Path is the notes file. Parent directories are created on the
	// first save.
	Path string
}

// Driver is a JSON-file-backed notes driver.
type Driver struct {
	path string

	mu    sync.RWMutex
	notes []notes.Note
}

// NewDriver creates a local notes driver, loading any notes already on
// disk. A missing file is not an error; it means no notes yet.
func NewDriver(c Config) (*Driver, error) {
	if c.Path == "" {
		return nil, errors.New("notes file path is required")
	}
	d := &Driver{path: c.Path}
	if err := d.load(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Driver) load() error {
	data, err := os.ReadFile(d.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read notes file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &d.notes); err != nil {
		return fmt.Errorf("failed to parse notes file %s: %w", d.path, err)
	}
	return nil
}

// save writes the full note list back to disk. Callers must hold d.mu.
func (d *Driver) save() error {
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("failed to create notes directory: %w", err)
	}
	data, err := json.MarshalIndent(d.notes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode notes: %w", err)
	}
	if err := os.WriteFile(d.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write notes file: %w", err)
	}
	return nil
}

// Add persists one note. Missing IDs and timestamps are filled in.
func (d *Driver) Add(_ context.Context, note notes.Note) error {
	if strings.TrimSpace(note.Text) == "" {
		return errors.New("note text is required")
	}
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.notes = append(d.notes, note)
	return d.save()
}

// ByTurn retrieves the notes pinned to a conversation turn hash.
func (d *Driver) ByTurn(_ context.Context, hash string) ([]notes.Note, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var matched []notes.Note
	for _, note := range d.notes {
		if note.TurnHash == hash {
			matched = append(matched, note)
		}
	}
	return matched, nil
}

// List returns a copy of all notes, newest first.
func (d *Driver) List(_ context.Context) ([]notes.Note, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	listed := make([]notes.Note, len(d.notes))
	copy(listed, d.notes)
	sort.SliceStable(listed, func(i, j int) bool {
		return listed[i].CreatedAt.After(listed[j].CreatedAt)
	})
	return listed, nil
}

// Close is a no-op for the local driver.
func (d *Driver) Close() error {
	return nil
}
