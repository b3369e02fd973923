package session

import "time"

// Config holds settings for the API client.
type Config struct {
	// BaseURL is the HTTP endpoint for the pawferry server, e.g. http://localhost:8080
	BaseURL string `yaml:"base_url" json:"base_url"`
	// Timeout is the per-request timeout
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8080",
		Timeout: 30 * time.Second,
	}
}
