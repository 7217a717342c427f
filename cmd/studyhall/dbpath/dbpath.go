// Package dbpath resolves the SQLite database file commands operate on when
// no DSN is configured.
package dbpath

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/studyhallco/studyhall/pkg/dotdir"
)

const dbFile = "studyhall.db"

// Resolve picks the SQLite database path: an explicit override, the
// STUDYHALL_DB environment variable, the first existing candidate, or the
// resolved .studyhall/ directory as the place a fresh database is created.
func Resolve(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if envPath := strings.TrimSpace(os.Getenv("STUDYHALL_DB")); envPath != "" {
		return envPath, nil
	}

	for _, candidate := range candidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	dir, err := dotdir.NewManager().Target("")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFile), nil
}

// candidates lists known database locations, local directories first to
// match the dotdir precedence.
func candidates() []string {
	paths := []string{
		dbFile,
		filepath.Join(".studyhall", dbFile),
	}

	home, err := os.UserHomeDir()
	if err == nil {
		paths = append(paths, filepath.Join(home, ".studyhall", dbFile))
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, "studyhall", dbFile))
	}

	return paths
}
