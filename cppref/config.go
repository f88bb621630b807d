package cppref

import "time"

// Config contains configuration variables for the search Client.
type Config struct {
	// BaseURL is the wiki root, e.g. https://en.cppreference.com.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Timeout bounds a single HTTP round trip.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// NewConfig creates and returns a new Config instance with default settings.
func NewConfig() *Config {
	return &Config{
		BaseURL: "https://en.cppreference.com",
		Timeout: 10 * time.Second,
	}
}
