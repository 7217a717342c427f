// Package initcmder provides the init command for initializing a local
// .studyhall directory in the current working directory.
package initcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/config"
)

const (
	dirName = ".studyhall"
)

const initLongDesc string = `Initialize a new .studyhall/ directory in the current working directory.

Creates a local .studyhall/ directory that takes precedence over the default
~/.studyhall/ directory for thread state, configuration, credentials, saved
plans, and other studyhall operations, and writes a config.toml with default
values.

Use --preset to write a named deployment preset instead of the defaults, or
to fetch a shared config.toml from a URL. Re-running with --preset overwrites
the existing config.toml.

Presets:
  local        SQLite storage, scripted mentor, no external services
  classroom    Postgres, remote mentor, Qdrant recall, Kafka events

Examples:
  studyhall init
  studyhall init --preset local
  studyhall init --preset classroom
  studyhall init --preset https://example.com/studyhall-config.toml`

const initShortDesc string = "Initialize a local .studyhall/ directory"

type initCommander struct {
	preset string
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "", "Config preset name or URL to fetch config.toml from")

	return cmd
}

func (c *initCommander) run() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	alreadyInitialized := err == nil && info.IsDir()

	if !alreadyInitialized {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .studyhall directory: %w", err)
		}
	}

	cfg, err := c.resolveConfig()
	if err != nil {
		return err
	}

	configPath := filepath.Join(dir, "config.toml")
	_, statErr := os.Stat(configPath)
	configExists := statErr == nil

	// Without a preset an existing config.toml is left alone; a preset
	// always wins, so re-running with a different preset swaps the config.
	if configExists && c.preset == "" {
		fmt.Printf("Already initialized: %s\n", dir)
		return nil
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("preparing config: %w", err)
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	if alreadyInitialized {
		fmt.Printf("Updated config in %s\n", dir)
	} else {
		fmt.Printf("Initialized .studyhall directory: %s\n", dir)
	}
	return nil
}

// resolveConfig picks the config to write: defaults, a named preset, or a
// config.toml fetched from a URL.
func (c *initCommander) resolveConfig() (*config.Config, error) {
	if c.preset == "" {
		return config.NewDefaultConfig(), nil
	}

	if strings.HasPrefix(c.preset, "http://") || strings.HasPrefix(c.preset, "https://") {
		return fetchRemoteConfig(c.preset)
	}

	cfg, err := config.PresetConfig(c.preset)
	if err != nil {
		return nil, fmt.Errorf("%w\n\nAvailable presets: %s, or a URL",
			err, strings.Join(config.ValidPresetNames(), ", "))
	}
	return cfg, nil
}

func fetchRemoteConfig(url string) (*config.Config, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading remote config: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("remote config is empty")
	}

	return config.ParseConfigTOML(data)
}
