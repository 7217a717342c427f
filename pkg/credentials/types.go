package credentials

// Credentials represents the stored sessions in credentials.toml.
type Credentials struct {
	Version  int                          `toml:"version"`
	Sessions map[string]SessionCredential `toml:"sessions"`
}

// SessionCredential holds the session token for a single server.
type SessionCredential struct {
	Token   string `toml:"token"`
	Learner string `toml:"learner"`
}
