// Package credentials manages session tokens for studyhall servers.
//
// Sessions are stored per server URL in credentials.toml inside the
// resolved .studyhall/ directory, written with 0600 permissions.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/studyhallco/studyhall/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0

	// TokenEnvVar overrides the stored session token when set.
	TokenEnvVar = "STUDYHALL_SESSION_TOKEN"
)

// Manager manages reading and writing credentials.toml in the .studyhall/ directory.
type Manager struct {
	ddm        *dotdir.Manager
	targetPath string
}

// NewManager creates a new credentials Manager. If override is non-empty it is
// used as the .studyhall/ directory; otherwise the standard dotdir resolution
// applies.
func NewManager(override string) (*Manager, error) {
	mgr := &Manager{}
	mgr.ddm = dotdir.NewManager()

	target, err := mgr.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	mgr.targetPath = filepath.Join(target, credentialsFile)

	return mgr, nil
}

// Load reads credentials.toml from the target directory.
// Returns an empty Credentials if the file does not exist.
func (m *Manager) Load() (*Credentials, error) {
	data, err := os.ReadFile(m.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{
				Version:  currentVersion,
				Sessions: make(map[string]SessionCredential),
			}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	creds := &Credentials{}
	if err := toml.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	if creds.Sessions == nil {
		creds.Sessions = make(map[string]SessionCredential)
	}

	return creds, nil
}

// Save writes credentials to credentials.toml with 0600 permissions.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if err := os.WriteFile(m.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}

// SetSession stores the session token for the given server URL.
func (m *Manager) SetSession(serverURL, token, learner string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	creds.Sessions[normalizeServer(serverURL)] = SessionCredential{Token: token, Learner: learner}

	return m.Save(creds)
}

// GetSession returns the stored session for the given server URL.
// Returns nil if no session is stored.
func (m *Manager) GetSession(serverURL string) (*SessionCredential, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}

	sc, ok := creds.Sessions[normalizeServer(serverURL)]
	if !ok {
		return nil, nil
	}

	return &sc, nil
}

// GetToken returns the stored session token for the given server URL.
// Returns an empty string if no session is stored.
func (m *Manager) GetToken(serverURL string) (string, error) {
	sc, err := m.GetSession(serverURL)
	if err != nil || sc == nil {
		return "", err
	}

	return sc.Token, nil
}

// RemoveSession deletes the stored session for a server URL.
func (m *Manager) RemoveSession(serverURL string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	delete(creds.Sessions, normalizeServer(serverURL))

	return m.Save(creds)
}

// ListServers returns the server URLs that have stored sessions.
func (m *Manager) ListServers() ([]string, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}

	servers := make([]string, 0, len(creds.Sessions))
	for url := range creds.Sessions {
		servers = append(servers, url)
	}

	sort.Strings(servers)

	return servers, nil
}

// GetTarget returns the resolved path to the credentials file.
func (m *Manager) GetTarget() string {
	return m.targetPath
}

// normalizeServer strips a trailing slash so the same server is never
// stored under two keys.
func normalizeServer(serverURL string) string {
	return strings.TrimRight(serverURL, "/")
}
