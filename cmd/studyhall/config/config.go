// Package configcmder provides the config command for managing persistent
// studyhall configuration stored in the .studyhall/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent studyhall configuration.

Configuration is stored as config.toml in the .studyhall/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values.

Keys use dotted notation matching the TOML section structure:
  server.listen_addr, server.content_dir,
  db.driver, db.dsn,
  mentor.engine, mentor.upstream_url,
  vector.driver, vector.dsn,
  embeddings.provider, embeddings.base_url, embeddings.model, embeddings.dimensions,
  events.brokers, events.topic,
  client.server_url, client.idle_timeout,
  log.debug, log.format

Use subcommands to get, set, or list configuration values:
  studyhall config set <key> <value>    Set a configuration value
  studyhall config get <key>            Get a configuration value
  studyhall config list                 List all configuration values

Examples:
  studyhall config set db.driver sqlite
  studyhall config set db.dsn ./studyhall.db
  studyhall config get client.server_url
  studyhall config list`

const configShortDesc string = "Manage persistent studyhall configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
