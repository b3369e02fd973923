package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/pawferry/pawferry/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Ensure environment does not interfere
	_ = os.Unsetenv("PAWFERRY_ADDR")
	_ = os.Unsetenv("PAWFERRY_ACCESS_SECRET")
	_ = os.Unsetenv("PAWFERRY_REFRESH_SECRET")
	_ = os.Unsetenv("PAWFERRY_DATABASE_PATH")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error for empty path: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":8080")
	}
	if cfg.DatabasePath != "pawferry.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "pawferry.db")
	}
	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 15*time.Second)
	}
	if cfg.AccessDuration != 15*time.Minute {
		t.Fatalf("unexpected AccessDuration: got %v want %v", cfg.AccessDuration, 15*time.Minute)
	}
	if cfg.RefreshDuration != 14*24*time.Hour {
		t.Fatalf("unexpected RefreshDuration: got %v want %v", cfg.RefreshDuration, 14*24*time.Hour)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	f, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	// duration fields decode from nanosecond integers
	content := []byte("addr: \":9090\"\naccess_secret: \"filekey-a\"\nrefresh_secret: \"filekey-r\"\ntimeout: 30000000000\ndatabase_path: \"test.db\"\naccess_duration: 300000000000\nrefresh_duration: 259200000000000\n")
	if err := os.WriteFile(f.Name(), content, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := config.LoadConfig(f.Name())
	if err != nil {
		t.Fatalf("LoadConfig returned error for file: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":9090")
	}
	if cfg.AccessSecret != "filekey-a" || cfg.RefreshSecret != "filekey-r" {
		t.Fatalf("unexpected secrets: %q / %q", cfg.AccessSecret, cfg.RefreshSecret)
	}
	if cfg.APITimeout != 30*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 30*time.Second)
	}
	if cfg.AccessDuration != 5*time.Minute {
		t.Fatalf("unexpected AccessDuration: got %v", cfg.AccessDuration)
	}
	if cfg.RefreshDuration != 72*time.Hour {
		t.Fatalf("unexpected RefreshDuration: got %v", cfg.RefreshDuration)
	}
}

func TestLoadConfig_BadPath(t *testing.T) {
	if _, err := config.LoadConfig("/path/that/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent path, got nil")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	f, err := os.CreateTemp("", "bad-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	if err := os.WriteFile(f.Name(), []byte("::: not yaml :::"), 0o600); err != nil {
		t.Fatalf("failed to write bad yaml: %v", err)
	}

	if _, err := config.LoadConfig(f.Name()); err == nil {
		t.Fatalf("expected YAML decode error, got nil")
	}
}

func validConfig() *config.Config {
	return &config.Config{
		Addr:            ":8080",
		APITimeout:      15 * time.Second,
		DatabasePath:    "pawferry.db",
		AccessSecret:    "strong-access",
		RefreshSecret:   "strong-refresh",
		AccessDuration:  15 * time.Minute,
		RefreshDuration: 14 * 24 * time.Hour,
	}
}

func TestValidate_InsecureSecrets_FailWhenNotDevelopment(t *testing.T) {
	os.Setenv("PAWFERRY_ENV", "production")
	defer os.Unsetenv("PAWFERRY_ENV")

	cfg := validConfig()
	cfg.AccessSecret = "dev-access-secret"

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail for insecure secret in non-development env")
	}
}

func TestValidate_InsecureSecrets_AllowedInDevelopment(t *testing.T) {
	os.Setenv("PAWFERRY_ENV", "development")
	defer os.Unsetenv("PAWFERRY_ENV")

	cfg := validConfig()
	cfg.AccessSecret = "dev-access-secret"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected Validate to succeed in development env, got: %v", err)
	}
}

func TestValidate_SecretsMustDiffer(t *testing.T) {
	cfg := validConfig()
	cfg.RefreshSecret = cfg.AccessSecret

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail when both token classes share a secret")
	}
}

func TestValidate_AccessShorterThanRefresh(t *testing.T) {
	cfg := validConfig()
	cfg.AccessDuration = cfg.RefreshDuration

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail when access_duration >= refresh_duration")
	}
}
