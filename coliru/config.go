package coliru

import "time"

// Config contains configuration variables for the compile service Client.
type Config struct {
	// BaseURL is the service root. /compile, /share and /a/<id> are resolved against it.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Timeout bounds a single HTTP round trip.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// NewConfig creates and returns a new Config instance with default settings.
func NewConfig() *Config {
	return &Config{
		BaseURL: "http://coliru.stacked-crooked.com",
		Timeout: 30 * time.Second,
	}
}
