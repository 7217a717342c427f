package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/cliui"
	"github.com/studyhallco/studyhall/pkg/config"
)

const setLongDesc string = `Set a configuration value.

Sets the given key to the provided value in the config.toml file
stored in the .studyhall/ directory. Keys use dotted notation matching
the TOML section structure.

Valid keys:
  server.listen_addr, server.content_dir,
  db.driver, db.dsn,
  mentor.engine, mentor.upstream_url,
  vector.driver, vector.dsn,
  embeddings.provider, embeddings.base_url, embeddings.model, embeddings.dimensions,
  events.brokers, events.topic,
  client.server_url, client.idle_timeout,
  log.debug, log.format

Examples:
  studyhall config set db.driver postgres
  studyhall config set db.dsn "postgres://localhost:5432/studyhall"
  studyhall config set embeddings.dimensions 768`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: setShortDesc,
		Long:  setLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runSet(args[0], args[1], configDir)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runSet(key, value, configDir string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Printf("\n  %s %s\n\n",
		cliui.KeyStyle.Render("Config file:"),
		cliui.DimStyle.Render(cfger.GetTarget()),
	)

	err = cfger.SetConfigValue(key, value)
	if err != nil {
		return err
	}

	fmt.Printf("  %s Set %s = %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(value),
	)
	return nil
}
