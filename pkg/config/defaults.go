package config

const (
	defaultListenAddr = ":8080"

	defaultDBDriver = "sqlite"

	defaultMentorEngine = "scripted"

	defaultEmbeddingsProvider   = "ollama"
	defaultEmbeddingsBaseURL    = "http://localhost:11434"
	defaultEmbeddingsModel      = "nomic-embed-text"
	defaultEmbeddingsDimensions = 768

	defaultEventsTopic = "studyhall.events"

	defaultClientServerURL   = "http://localhost:8080"
	defaultClientIdleTimeout = "90s"

	defaultLogFormat = "pretty"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			ListenAddr: defaultListenAddr,
		},
		DB: DBConfig{
			Driver: defaultDBDriver,
		},
		Mentor: MentorConfig{
			Engine: defaultMentorEngine,
		},
		Embeddings: EmbeddingsConfig{
			Provider:   defaultEmbeddingsProvider,
			BaseURL:    defaultEmbeddingsBaseURL,
			Model:      defaultEmbeddingsModel,
			Dimensions: defaultEmbeddingsDimensions,
		},
		Events: EventsConfig{
			Topic: defaultEventsTopic,
		},
		Client: ClientConfig{
			ServerURL:   defaultClientServerURL,
			IdleTimeout: defaultClientIdleTimeout,
		},
		Log: LogConfig{
			Format: defaultLogFormat,
		},
	}
}
