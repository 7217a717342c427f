// Package plan persists generated study plans as markdown files with
// TOML frontmatter, one file per plan, under the studyhall dot
// directory. The body stays plain markdown so a learner can read a plan
// with anything; the frontmatter keeps the directory listable without
// parsing bodies.
package plan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

// Meta is the TOML frontmatter of a plan file.
type Meta struct {
	ID        string    `toml:"id"`
	Learner   string    `toml:"learner,omitempty"`
	Goal      string    `toml:"goal"`
	Weeks     int       `toml:"weeks"`
	CreatedAt time.Time `toml:"created_at"`
}

// File is one plan document: frontmatter metadata plus the markdown body.
type File struct {
	Meta    Meta
	Content string
}

// NewFile stamps a plan file for a generated curriculum.
func NewFile(learner, goal string, weeks int, content string) *File {
	return &File{
		Meta: Meta{
			ID:        uuid.NewString(),
			Learner:   learner,
			Goal:      goal,
			Weeks:     weeks,
			CreatedAt: time.Now().UTC(),
		},
		Content: content,
	}
}

// Dir returns the plans directory under a resolved dot directory root.
func Dir(root string) string {
	return filepath.Join(root, "plans")
}

// Write persists a plan as <dir>/<id>.md.
func Write(f *File, dir string) (string, error) {
	if f.Meta.ID == "" {
		return "", errors.New("plan has no ID")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create plans directory: %w", err)
	}

	content, err := renderPlanMD(f)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, f.Meta.ID+".md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write plan: %w", err)
	}

	return path, nil
}

// Read loads a single plan file by ID.
func Read(dir, id string) (*File, error) {
	data, err := os.ReadFile(filepath.Join(dir, id+".md"))
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return parsePlanMD(string(data))
}

// List scans a directory for plan files and returns them newest first.
// Files that do not parse are skipped.
func List(dir string) ([]*File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read plans directory: %w", err)
	}

	var files []*File
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}

		f, err := parsePlanMD(string(data))
		if err != nil {
			continue
		}
		files = append(files, f)
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Meta.CreatedAt.After(files[j].Meta.CreatedAt)
	})
	return files, nil
}

// renderPlanMD renders a plan as its on-disk representation
// (TOML frontmatter + markdown body).
func renderPlanMD(f *File) (string, error) {
	var b strings.Builder

	b.WriteString("+++\n")
	if err := toml.NewEncoder(&b).Encode(f.Meta); err != nil {
		return "", fmt.Errorf("encode plan frontmatter: %w", err)
	}
	b.WriteString("+++\n\n")
	b.WriteString(f.Content)

	// Ensure trailing newline
	if !strings.HasSuffix(f.Content, "\n") {
		b.WriteString("\n")
	}

	return b.String(), nil
}

func parsePlanMD(content string) (*File, error) {
	if !strings.HasPrefix(content, "+++\n") {
		return nil, errors.New("missing frontmatter delimiter")
	}

	rest := content[4:] // skip opening "+++\n"
	before, after, ok := strings.Cut(rest, "\n+++\n")
	if !ok {
		return nil, errors.New("missing closing frontmatter delimiter")
	}

	var meta Meta
	if err := toml.Unmarshal([]byte(before), &meta); err != nil {
		return nil, fmt.Errorf("parse plan frontmatter: %w", err)
	}

	return &File{
		Meta:    meta,
		Content: strings.TrimSpace(after),
	}, nil
}
