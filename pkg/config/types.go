package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent studyhall configuration stored as
// config.toml in the .studyhall/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version    int              `toml:"version"`
	Server     ServerConfig     `toml:"server"`
	DB         DBConfig         `toml:"db"`
	Mentor     MentorConfig     `toml:"mentor"`
	Vector     VectorConfig     `toml:"vector"`
	Embeddings EmbeddingsConfig `toml:"embeddings"`
	Events     EventsConfig     `toml:"events"`
	Client     ClientConfig     `toml:"client"`
	Log        LogConfig        `toml:"log"`
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	ListenAddr string `toml:"listen_addr,omitempty"`
	ContentDir string `toml:"content_dir,omitempty"`
}

// DBConfig holds storage driver settings. Driver selects the backend
// (memory, sqlite, libsql, postgres); DSN is interpreted per driver and
// for sqlite defaults to a file inside the resolved .studyhall/ dir.
type DBConfig struct {
	Driver string `toml:"driver,omitempty"`
	DSN    string `toml:"dsn,omitempty"`
}

// MentorConfig holds mentor engine settings.
type MentorConfig struct {
	Engine      string `toml:"engine,omitempty"`
	UpstreamURL string `toml:"upstream_url,omitempty"`
}

// VectorConfig holds vector store settings. Recall stays disabled until
// a driver is configured.
type VectorConfig struct {
	Driver string `toml:"driver,omitempty"`
	DSN    string `toml:"dsn,omitempty"`
}

// EmbeddingsConfig holds embedding provider settings.
type EmbeddingsConfig struct {
	Provider   string `toml:"provider,omitempty"`
	BaseURL    string `toml:"base_url,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// EventsConfig holds event stream settings. Brokers is a comma-separated
// list; publishing stays off until it is set.
type EventsConfig struct {
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to a running
// studyhall server (e.g. studyhall chat, studyhall quiz take).
type ClientConfig struct {
	ServerURL   string `toml:"server_url,omitempty"`
	IdleTimeout string `toml:"idle_timeout,omitempty"`
}

// LogConfig holds logging settings. Format is "pretty" or "json".
type LogConfig struct {
	Debug  bool   `toml:"debug,omitempty"`
	Format string `toml:"format,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"server.listen_addr": {
		get: func(c *Config) string { return c.Server.ListenAddr },
		set: func(c *Config, v string) error { c.Server.ListenAddr = v; return nil },
	},
	"server.content_dir": {
		get: func(c *Config) string { return c.Server.ContentDir },
		set: func(c *Config, v string) error { c.Server.ContentDir = v; return nil },
	},
	"db.driver": {
		get: func(c *Config) string { return c.DB.Driver },
		set: func(c *Config, v string) error { c.DB.Driver = v; return nil },
	},
	"db.dsn": {
		get: func(c *Config) string { return c.DB.DSN },
		set: func(c *Config, v string) error { c.DB.DSN = v; return nil },
	},
	"mentor.engine": {
		get: func(c *Config) string { return c.Mentor.Engine },
		set: func(c *Config, v string) error { c.Mentor.Engine = v; return nil },
	},
	"mentor.upstream_url": {
		get: func(c *Config) string { return c.Mentor.UpstreamURL },
		set: func(c *Config, v string) error { c.Mentor.UpstreamURL = v; return nil },
	},
	"vector.driver": {
		get: func(c *Config) string { return c.Vector.Driver },
		set: func(c *Config, v string) error { c.Vector.Driver = v; return nil },
	},
	"vector.dsn": {
		get: func(c *Config) string { return c.Vector.DSN },
		set: func(c *Config, v string) error { c.Vector.DSN = v; return nil },
	},
	"embeddings.provider": {
		get: func(c *Config) string { return c.Embeddings.Provider },
		set: func(c *Config, v string) error { c.Embeddings.Provider = v; return nil },
	},
	"embeddings.base_url": {
		get: func(c *Config) string { return c.Embeddings.BaseURL },
		set: func(c *Config, v string) error { c.Embeddings.BaseURL = v; return nil },
	},
	"embeddings.model": {
		get: func(c *Config) string { return c.Embeddings.Model },
		set: func(c *Config, v string) error { c.Embeddings.Model = v; return nil },
	},
	"embeddings.dimensions": {
		get: func(c *Config) string {
			if c.Embeddings.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embeddings.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embeddings.dimensions: %w", err)
			}
			c.Embeddings.Dimensions = uint(n)
			return nil
		},
	},
	"events.brokers": {
		get: func(c *Config) string { return c.Events.Brokers },
		set: func(c *Config, v string) error { c.Events.Brokers = v; return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
	"client.server_url": {
		get: func(c *Config) string { return c.Client.ServerURL },
		set: func(c *Config, v string) error { c.Client.ServerURL = v; return nil },
	},
	"client.idle_timeout": {
		get: func(c *Config) string { return c.Client.IdleTimeout },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for client.idle_timeout: %w", err)
			}
			c.Client.IdleTimeout = v
			return nil
		},
	},
	"log.debug": {
		get: func(c *Config) string { return strconv.FormatBool(c.Log.Debug) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for log.debug: %w", err)
			}
			c.Log.Debug = b
			return nil
		},
	},
	"log.format": {
		get: func(c *Config) string { return c.Log.Format },
		set: func(c *Config, v string) error { c.Log.Format = v; return nil },
	},
}
