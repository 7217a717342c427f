// Package content publishes quiz definitions from TOML files into
// storage and keeps them fresh while the server runs. Each .toml file in
// the content directory is one quiz; the watcher republishes files as
// they change so quiz edits land without a restart.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"

	"github.com/studyhallco/studyhall/pkg/learn"
	"github.com/studyhallco/studyhall/pkg/logger"
	"github.com/studyhallco/studyhall/pkg/storage"
)

// Loader publishes quiz files from one content directory into storage.
type Loader struct {
	dir    string
	driver storage.Driver
	logger *slog.Logger
}

// NewLoader creates a content loader for a directory. The caller owns
// the storage driver.
func NewLoader(dir string, driver storage.Driver, log *slog.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{
		dir:    dir,
		driver: driver,
		logger: log,
	}
}

// LoadAll publishes every parseable quiz file in the content directory
// and returns the number published. Files that do not parse or do not
// validate are skipped with a warning.
func (l *Loader) LoadAll(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return 0, fmt.Errorf("reading content directory: %w", err)
	}

	published := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		if err := l.loadFile(ctx, filepath.Join(l.dir, entry.Name())); err != nil {
			l.logger.Warn("skipping quiz file", "file", entry.Name(), "error", err)
			continue
		}
		published++
	}

	l.logger.Info("published quiz content", "dir", l.dir, "count", published)
	return published, nil
}

// Watch blocks, republishing quiz files as they are written or created,
// until ctx is cancelled.
func (l *Loader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating content watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return fmt.Errorf("watching content directory: %w", err)
	}

	l.logger.Info("watching content directory", "dir", l.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !strings.HasSuffix(event.Name, ".toml") {
				continue
			}
			if err := l.loadFile(ctx, event.Name); err != nil {
				// Editors fire Write mid-save; the next event carries
				// the complete file.
				l.logger.Warn("skipping quiz file", "file", filepath.Base(event.Name), "error", err)
				continue
			}
			l.logger.Info("reloaded quiz file", "file", filepath.Base(event.Name))
		case err := <-watcher.Errors:
			return fmt.Errorf("content watcher error: %w", err)
		}
	}
}

func (l *Loader) loadFile(ctx context.Context, path string) error {
	quiz, err := ParseFile(path)
	if err != nil {
		return err
	}
	if _, err := l.driver.PutQuiz(ctx, quiz); err != nil {
		return fmt.Errorf("storing quiz %q: %w", quiz.Slug, err)
	}
	return nil
}

// ParseFile reads one TOML quiz file. A file without an explicit slug
// takes its filename as the slug.
func ParseFile(path string) (*learn.Quiz, error) {
	var quiz learn.Quiz
	if _, err := toml.DecodeFile(path, &quiz); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	if quiz.Slug == "" {
		quiz.Slug = strings.TrimSuffix(filepath.Base(path), ".toml")
	}
	if err := quiz.Validate(); err != nil {
		return nil, fmt.Errorf("invalid quiz in %s: %w", filepath.Base(path), err)
	}
	return &quiz, nil
}
