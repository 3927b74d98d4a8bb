package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadFromFile(t *testing.T) {
	dir := writeConfigFile(t, `
api:
  port: 8080
database:
  url: postgres://localhost:5432/emails
auth:
  api_key: test-key
postmark:
  api_key: pm-key
  from_address: hello@example.com
send:
  admin_email: ops@example.com
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.API.Port)
	}
	if cfg.Database.URL != "postgres://localhost:5432/emails" {
		t.Errorf("unexpected database url: %s", cfg.Database.URL)
	}
	if cfg.Send.AdminEmail != "ops@example.com" {
		t.Errorf("unexpected admin email: %s", cfg.Send.AdminEmail)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := writeConfigFile(t, `
database:
  url: postgres://localhost:5432/emails
auth:
  api_key: test-key
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.Port != 3005 {
		t.Errorf("expected default port 3005, got %d", cfg.API.Port)
	}
	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("expected default host, got %s", cfg.API.Host)
	}
	if cfg.Database.PoolMax != 10 {
		t.Errorf("expected default pool max 10, got %d", cfg.Database.PoolMax)
	}
	if cfg.Postmark.Timeout != 30*time.Second {
		t.Errorf("expected default postmark timeout, got %v", cfg.Postmark.Timeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
	if len(cfg.Send.AdminEvents) != 3 {
		t.Errorf("expected 3 default admin events, got %v", cfg.Send.AdminEvents)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := writeConfigFile(t, `
database:
  url: postgres://localhost:5432/emails
auth:
  api_key: file-key
`)

	t.Setenv("LIFECYCLE_AUTH_API_KEY", "env-key")
	t.Setenv("LIFECYCLE_API_PORT", "9000")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.APIKey != "env-key" {
		t.Errorf("expected env override, got %s", cfg.Auth.APIKey)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("expected env port override, got %d", cfg.API.Port)
	}
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	dir := writeConfigFile(t, `
auth:
  api_key: test-key
`)

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for missing database url")
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	dir := writeConfigFile(t, `
database:
  url: postgres://localhost:5432/emails
`)

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
