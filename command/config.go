package command

// Config contains configuration variables for the chat commands.
type Config struct {
	// Prefix precedes every command name, e.g. "!" for "!run".
	Prefix string `json:"prefix" yaml:"prefix"`

	// TrustedUserIDs may ping members with "members teacher" without being administrators.
	TrustedUserIDs []string `json:"trusted_user_ids" yaml:"trusted_user_ids"`

	// ChunkSize is the length after which collected mentions are flushed into a message.
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`
}

// NewConfig creates and returns a new Config instance with default settings.
func NewConfig() *Config {
	return &Config{
		Prefix:         "!",
		TrustedUserIDs: []string{},
		ChunkSize:      1950,
	}
}
