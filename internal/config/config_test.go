package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "database:\n  dsn: file:panel.db\n"
	if errWrite := os.WriteFile(path, []byte(content), 0o644); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}

	cfg, errLoad := Load(path)
	if errLoad != nil {
		t.Fatalf("load config: %v", errLoad)
	}
	if cfg.Listen != DefaultListen {
		t.Fatalf("listen = %q, want default %q", cfg.Listen, DefaultListen)
	}
	if cfg.Session.CookieName != DefaultCookieName {
		t.Fatalf("cookie name = %q, want default %q", cfg.Session.CookieName, DefaultCookieName)
	}
	if cfg.Session.TTLHours != DefaultSessionTTLHours {
		t.Fatalf("ttl hours = %d, want %d", cfg.Session.TTLHours, DefaultSessionTTLHours)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "listen: \":9000\"\ndatabase:\n  dsn: file:panel.db\n"
	if errWrite := os.WriteFile(path, []byte(content), 0o644); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}

	t.Setenv("SERVICEPANEL_LISTEN", ":9100")
	t.Setenv("SERVICEPANEL_DSN", "file:other.db")
	t.Setenv("SERVICEPANEL_SESSION_TTL_HOURS", "12")

	cfg, errLoad := Load(path)
	if errLoad != nil {
		t.Fatalf("load config: %v", errLoad)
	}
	if cfg.Listen != ":9100" {
		t.Fatalf("env listen override not applied: %q", cfg.Listen)
	}
	if cfg.Database.DSN != "file:other.db" {
		t.Fatalf("env dsn override not applied: %q", cfg.Database.DSN)
	}
	if cfg.Session.TTLHours != 12 {
		t.Fatalf("env ttl override not applied: %d", cfg.Session.TTLHours)
	}
}

func TestLoadMissingDSNFails(t *testing.T) {
	t.Setenv("SERVICEPANEL_DSN", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "missing.yaml")
	if _, errLoad := Load(path); errLoad == nil {
		t.Fatalf("expected error when no dsn is configured")
	}
}
