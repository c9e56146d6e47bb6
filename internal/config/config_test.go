package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("server address: %q", cfg.Server.Address)
	}
	if cfg.Cache.StalenessWindow != 60*time.Second {
		t.Fatalf("staleness window: %v", cfg.Cache.StalenessWindow)
	}
	if cfg.Cache.AutosaveDelay != 3*time.Second {
		t.Fatalf("autosave delay: %v", cfg.Cache.AutosaveDelay)
	}
	if cfg.Assistant.Timeout != 30*time.Second {
		t.Fatalf("assistant timeout: %v", cfg.Assistant.Timeout)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  address: ":9090"
database:
  name: "training"
assistant:
  timeout: "45s"
cache:
  staleness_window: "90s"
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Address != ":9090" {
		t.Fatalf("server address: %q", cfg.Server.Address)
	}
	if cfg.Database.Name != "training" {
		t.Fatalf("database name: %q", cfg.Database.Name)
	}
	if cfg.Assistant.Timeout != 45*time.Second {
		t.Fatalf("assistant timeout: %v", cfg.Assistant.Timeout)
	}
	if cfg.Cache.StalenessWindow != 90*time.Second {
		t.Fatalf("staleness window: %v", cfg.Cache.StalenessWindow)
	}
}

func TestLoadConfigRejectsOutOfRangeTimeout(t *testing.T) {
	dir := t.TempDir()
	yaml := "assistant:\n  timeout: \"5s\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(dir); err == nil {
		t.Fatalf("timeout below 20s accepted")
	}
}
