package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr            string        `yaml:"addr"`
	APITimeout      time.Duration `yaml:"timeout"`
	DatabasePath    string        `yaml:"database_path"`
	AccessSecret    string        `yaml:"access_secret"`
	RefreshSecret   string        `yaml:"refresh_secret"`
	AccessDuration  time.Duration `yaml:"access_duration"`
	RefreshDuration time.Duration `yaml:"refresh_duration"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:            getEnv("PAWFERRY_ADDR", ":8080"),
		APITimeout:      15 * time.Second,
		DatabasePath:    getEnv("PAWFERRY_DATABASE_PATH", "pawferry.db"),
		AccessSecret:    getEnv("PAWFERRY_ACCESS_SECRET", "dev-access-secret"),
		RefreshSecret:   getEnv("PAWFERRY_REFRESH_SECRET", "dev-refresh-secret"),
		AccessDuration:  15 * time.Minute,
		RefreshDuration: 14 * 24 * time.Hour,
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate rejects configurations that are unsafe outside development.
// The insecure dev secrets are only tolerated when PAWFERRY_ENV=development.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.AccessDuration <= 0 || c.RefreshDuration <= 0 {
		return fmt.Errorf("token durations must be positive")
	}
	if c.AccessDuration >= c.RefreshDuration {
		return fmt.Errorf("access_duration must be shorter than refresh_duration")
	}
	if c.AccessSecret == c.RefreshSecret {
		return fmt.Errorf("access_secret and refresh_secret must differ")
	}
	if os.Getenv("PAWFERRY_ENV") != "development" {
		if c.AccessSecret == "dev-access-secret" || c.RefreshSecret == "dev-refresh-secret" {
			return fmt.Errorf("insecure default token secret outside development")
		}
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
