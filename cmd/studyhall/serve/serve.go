// Package servecmder implements the serve command that runs the API server.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/api"
	"github.com/studyhallco/studyhall/api/mcp"
	"github.com/studyhallco/studyhall/cmd/studyhall/dbpath"
	"github.com/studyhallco/studyhall/pkg/config"
	"github.com/studyhallco/studyhall/pkg/content"
	"github.com/studyhallco/studyhall/pkg/dotdir"
	"github.com/studyhallco/studyhall/pkg/embeddings"
	embeddingutils "github.com/studyhallco/studyhall/pkg/embeddings/utils"
	"github.com/studyhallco/studyhall/pkg/eventstream"
	"github.com/studyhallco/studyhall/pkg/eventstream/kafka"
	"github.com/studyhallco/studyhall/pkg/logger"
	mentorutils "github.com/studyhallco/studyhall/pkg/mentor/utils"
	"github.com/studyhallco/studyhall/pkg/storage"
	storageutils "github.com/studyhallco/studyhall/pkg/storage/utils"
	"github.com/studyhallco/studyhall/pkg/vector"
	vectorutils "github.com/studyhallco/studyhall/pkg/vector/utils"
	"github.com/studyhallco/studyhall/pkg/worker"
)

const serveLongDesc string = `Run the studyhall API server.

The server exposes the learner API (auth, quizzes, attempts, check-ins,
progress, mentor chat, curriculum generation, recall) and mounts the MCP
endpoint at /mcp. Attempts and check-ins are persisted off the request
path by a worker pool, which also publishes learning events to Kafka and
indexes mentor threads for recall when those backends are configured.

Every flag resolves through the config chain: flag > STUDYHALL_* env
var > config.toml > default.

Examples:
  studyhall serve
  studyhall serve --listen :9090 --db-driver memory
  studyhall serve --content-dir ./content --events-brokers localhost:9092
  studyhall serve --vector-driver sqlitevec --mentor-engine remote --mentor-upstream http://localhost:11434`

const serveShortDesc string = "Run the studyhall API server"

// serveFlags maps each serve flag to its viper key. Registering through the
// shared FlagSet keeps names, shorthands, and defaults aligned with config.
var serveFlags = config.FlagSet{
	config.FlagListen:          {Name: "listen", Shorthand: "l", ViperKey: "server.listen_addr", Description: "Address for the API server to listen on"},
	config.FlagContentDir:      {Name: "content-dir", ViperKey: "server.content_dir", Description: "Directory of quiz TOML files to load and watch (empty disables)"},
	config.FlagDBDriver:        {Name: "db-driver", ViperKey: "db.driver", Description: "Storage driver (memory, sqlite, libsql, postgres)"},
	config.FlagDBDSN:           {Name: "db-dsn", ViperKey: "db.dsn", Description: "Storage DSN (database file path for sqlite)"},
	config.FlagMentorEngine:    {Name: "mentor-engine", ViperKey: "mentor.engine", Description: "Mentor engine (scripted, remote)"},
	config.FlagMentorUpstream:  {Name: "mentor-upstream", ViperKey: "mentor.upstream_url", Description: "Upstream URL for the remote mentor engine"},
	config.FlagVectorDriver:    {Name: "vector-driver", ViperKey: "vector.driver", Description: "Vector driver for recall (sqlitevec, qdrant; empty disables)"},
	config.FlagVectorDSN:       {Name: "vector-dsn", ViperKey: "vector.dsn", Description: "Vector DSN (file path for sqlitevec, host:port for qdrant)"},
	config.FlagEmbeddingsProv:  {Name: "embeddings-provider", ViperKey: "embeddings.provider", Description: "Embeddings provider (ollama)"},
	config.FlagEmbeddingsURL:   {Name: "embeddings-base-url", ViperKey: "embeddings.base_url", Description: "Base URL of the embeddings provider"},
	config.FlagEmbeddingsModel: {Name: "embeddings-model", ViperKey: "embeddings.model", Description: "Embeddings model name"},
	config.FlagEmbeddingsDims:  {Name: "embeddings-dimensions", ViperKey: "embeddings.dimensions", Description: "Embedding vector width"},
	config.FlagEventsBrokers:   {Name: "events-brokers", ViperKey: "events.brokers", Description: "Comma-separated Kafka brokers (empty disables event publishing)"},
	config.FlagEventsTopic:     {Name: "events-topic", ViperKey: "events.topic", Description: "Kafka topic for learning events"},
}

// serveFlagKeys lists the registry keys bound to viper in PreRunE.
var serveFlagKeys = []string{
	config.FlagListen,
	config.FlagContentDir,
	config.FlagDBDriver,
	config.FlagDBDSN,
	config.FlagMentorEngine,
	config.FlagMentorUpstream,
	config.FlagVectorDriver,
	config.FlagVectorDSN,
	config.FlagEmbeddingsProv,
	config.FlagEmbeddingsURL,
	config.FlagEmbeddingsModel,
	config.FlagEmbeddingsDims,
	config.FlagEventsBrokers,
	config.FlagEventsTopic,
}

type serveCommander struct {
	listen               string
	contentDir           string
	dbDriver             string
	dsn                  string
	mentorEngine         string
	upstreamURL          string
	vectorDriver         string
	vectorDSN            string
	embeddingsProvider   string
	embeddingsBaseURL    string
	embeddingsModel      string
	embeddingsDimensions uint
	brokers              string
	topic                string
	logFormat            string
	debug                bool
	logger               *slog.Logger
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.resolve(cmd, configDir)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, serveFlags, config.FlagContentDir, &cmder.contentDir)
	config.AddStringFlag(cmd, serveFlags, config.FlagDBDriver, &cmder.dbDriver)
	config.AddStringFlag(cmd, serveFlags, config.FlagDBDSN, &cmder.dsn)
	config.AddStringFlag(cmd, serveFlags, config.FlagMentorEngine, &cmder.mentorEngine)
	config.AddStringFlag(cmd, serveFlags, config.FlagMentorUpstream, &cmder.upstreamURL)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorDriver, &cmder.vectorDriver)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorDSN, &cmder.vectorDSN)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingsProv, &cmder.embeddingsProvider)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingsURL, &cmder.embeddingsBaseURL)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingsModel, &cmder.embeddingsModel)
	config.AddUintFlag(cmd, serveFlags, config.FlagEmbeddingsDims, &cmder.embeddingsDimensions)
	config.AddStringFlag(cmd, serveFlags, config.FlagEventsBrokers, &cmder.brokers)
	config.AddStringFlag(cmd, serveFlags, config.FlagEventsTopic, &cmder.topic)

	return cmd
}

// resolve binds the registered flags into viper and reads the settled values
// back out, so every field reflects flag > env > config file > default.
func (c *serveCommander) resolve(cmd *cobra.Command, configDir string) error {
	v, err := config.InitViper(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	config.BindRegisteredFlags(v, cmd, serveFlags, serveFlagKeys)

	c.listen = v.GetString("server.listen_addr")
	c.contentDir = v.GetString("server.content_dir")
	c.dbDriver = v.GetString("db.driver")
	c.dsn = v.GetString("db.dsn")
	c.mentorEngine = v.GetString("mentor.engine")
	c.upstreamURL = v.GetString("mentor.upstream_url")
	c.vectorDriver = v.GetString("vector.driver")
	c.vectorDSN = v.GetString("vector.dsn")
	c.embeddingsProvider = v.GetString("embeddings.provider")
	c.embeddingsBaseURL = v.GetString("embeddings.base_url")
	c.embeddingsModel = v.GetString("embeddings.model")
	c.embeddingsDimensions = v.GetUint("embeddings.dimensions")
	c.brokers = v.GetString("events.brokers")
	c.topic = v.GetString("events.topic")
	c.logFormat = v.GetString("log.format")

	return nil
}

func (c *serveCommander) run(ctx context.Context) error {
	c.logger = c.newLogger()

	driver, err := c.newStorageDriver(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = driver.Close() }()

	publisher, err := c.newPublisher()
	if err != nil {
		return err
	}
	defer func() { _ = publisher.Close() }()

	vectorDriver, embedder, err := c.newVectorStack(ctx)
	if err != nil {
		return err
	}
	if vectorDriver != nil {
		defer func() { _ = vectorDriver.Close() }()
	}

	engine, err := mentorutils.NewEngine(&mentorutils.NewEngineOpts{
		Kind:        c.mentorEngine,
		UpstreamURL: c.upstreamURL,
		Logger:      c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating mentor engine: %w", err)
	}

	pool, err := worker.NewPool(&worker.Config{
		Driver:       driver,
		Publisher:    publisher,
		VectorDriver: vectorDriver,
		Embedder:     embedder,
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Close()

	mcpServer, err := mcp.NewServer(mcp.Config{
		Driver:       driver,
		VectorDriver: vectorDriver,
		Embedder:     embedder,
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating mcp server: %w", err)
	}

	server, err := api.NewServer(api.Config{
		ListenAddr:   c.listen,
		Driver:       driver,
		Engine:       engine,
		Pool:         pool,
		VectorDriver: vectorDriver,
		Embedder:     embedder,
		MCP:          mcpServer.Handler(),
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating api server: %w", err)
	}

	// The watcher outlives its goroutine only as long as the server runs.
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	if c.contentDir != "" {
		if err := c.startContentLoader(watchCtx, driver); err != nil {
			return err
		}
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("api server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return server.Shutdown()
	}
}

func (c *serveCommander) newLogger() *slog.Logger {
	opts := []logger.Option{logger.WithDebug(c.debug)}
	if c.logFormat == "json" {
		opts = append(opts, logger.WithJSON(true))
	} else {
		opts = append(opts, logger.WithPretty(true))
	}
	return logger.New(opts...)
}

// newStorageDriver opens the configured storage backend. A sqlite driver
// with no DSN shares the CLI's default database path under the dotdir.
func (c *serveCommander) newStorageDriver(ctx context.Context) (storage.Driver, error) {
	dsn := c.dsn
	if c.dbDriver == "sqlite" && strings.TrimSpace(dsn) == "" {
		resolved, err := dbpath.Resolve("")
		if err != nil {
			return nil, err
		}
		dsn = resolved
	}

	driver, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{
		DriverType: c.dbDriver,
		DSN:        dsn,
	})
	if err != nil {
		return nil, fmt.Errorf("creating storage driver: %w", err)
	}

	if c.dbDriver == "sqlite" {
		c.logger.Info("using sqlite storage", "path", dsn)
	} else {
		c.logger.Info("using "+c.dbDriver+" storage")
	}
	return driver, nil
}

// newPublisher connects the Kafka publisher when brokers are configured.
// Without brokers the worker pool publishes into a nop sink.
func (c *serveCommander) newPublisher() (eventstream.Publisher, error) {
	brokers := splitBrokers(c.brokers)
	if len(brokers) == 0 {
		c.logger.Info("event publishing disabled")
		return eventstream.NewNopPublisher(), nil
	}

	publisher, err := kafka.NewPublisher(kafka.Config{
		Brokers: brokers,
		Topic:   c.topic,
	}, c.logger)
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}

	c.logger.Info("publishing learning events",
		"brokers", strings.Join(brokers, ","),
		"topic", c.topic,
	)
	return publisher, nil
}

// newVectorStack builds the embedder and vector driver backing recall.
// With no vector driver configured recall stays disabled; the API and MCP
// layers skip their recall surfaces when handed a nil driver.
func (c *serveCommander) newVectorStack(ctx context.Context) (vector.Driver, embeddings.Embedder, error) {
	if c.vectorDriver == "" {
		c.logger.Info("recall disabled, no vector driver configured")
		return nil, nil, nil
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: c.embeddingsProvider,
		TargetURL:    c.embeddingsBaseURL,
		Model:        c.embeddingsModel,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating embedder: %w", err)
	}

	opts := &vectorutils.NewVectorDriverOpts{
		ProviderType: c.vectorDriver,
		Dimensions:   c.embeddingsDimensions,
		Logger:       c.logger,
	}

	switch c.vectorDriver {
	case "sqlitevec":
		dbPath, err := c.vectorDBPath()
		if err != nil {
			return nil, nil, err
		}
		opts.DBPath = dbPath
	case "qdrant":
		host, port, err := splitHostPort(c.vectorDSN)
		if err != nil {
			return nil, nil, err
		}
		opts.Host = host
		opts.Port = port
	}

	vectorDriver, err := vectorutils.NewVectorDriver(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("creating vector driver: %w", err)
	}

	c.logger.Info("recall enabled",
		"vector_driver", c.vectorDriver,
		"embeddings_model", c.embeddingsModel,
	)
	return vectorDriver, embedder, nil
}

// vectorDBPath places the sqlitevec database next to the dotdir's other
// state when no DSN names a file.
func (c *serveCommander) vectorDBPath() (string, error) {
	if strings.TrimSpace(c.vectorDSN) != "" {
		return c.vectorDSN, nil
	}

	ddm := dotdir.NewManager()
	target, err := ddm.Target("")
	if err != nil {
		return "", fmt.Errorf("resolving vector db path: %w", err)
	}
	return filepath.Join(target, "vectors.db"), nil
}

// startContentLoader publishes quiz content from the content directory and
// keeps watching it for changes until the server shuts down.
func (c *serveCommander) startContentLoader(ctx context.Context, driver storage.Driver) error {
	loader := content.NewLoader(c.contentDir, driver, c.logger)

	if _, err := loader.LoadAll(ctx); err != nil {
		return fmt.Errorf("loading content: %w", err)
	}

	go func() {
		if err := loader.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Error("content watcher stopped", "error", err)
		}
	}()
	return nil
}

// splitBrokers parses the comma-separated broker list, dropping empty entries.
func splitBrokers(raw string) []string {
	var brokers []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}

// splitHostPort parses a qdrant DSN of the form host:port.
func splitHostPort(dsn string) (string, int, error) {
	if strings.TrimSpace(dsn) == "" {
		return "", 0, errors.New("qdrant DSN is required (host:port)")
	}

	host, portStr, err := net.SplitHostPort(dsn)
	if err != nil {
		return "", 0, fmt.Errorf("parsing qdrant DSN %q: %w", dsn, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("parsing qdrant port %q: %w", portStr, err)
	}
	return host, port, nil
}
