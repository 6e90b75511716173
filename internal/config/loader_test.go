package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestConfigPathHonorsEnvOverrides(t *testing.T) {
	t.Setenv("BOARDPULSE_CONFIG", "/etc/boardpulse/config.json")
	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if path != "/etc/boardpulse/config.json" {
		t.Fatalf("got %q", path)
	}

	t.Setenv("BOARDPULSE_CONFIG", "")
	t.Setenv("BOARDPULSE_HOME", "/srv/pulse")
	path, err = ConfigPath()
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if path != filepath.Join("/srv/pulse", ConfigDir, ConfigFile) {
		t.Fatalf("got %q", path)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("BOARDPULSE_HOME", t.TempDir())
	t.Setenv("BOARDPULSE_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Board != "default" || cfg.Feeds.PageSize != 50 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Backoff.BaseMs != 1000 || cfg.Backoff.MaxMs != 300000 {
		t.Fatalf("backoff defaults wrong: %+v", cfg.Backoff)
	}
	if cfg.Paths.ArchivePath == "" {
		t.Fatal("archive path not defaulted")
	}
}

func TestLoadFileThenEnvPriority(t *testing.T) {
	home := t.TempDir()
	t.Setenv("BOARDPULSE_HOME", home)
	t.Setenv("BOARDPULSE_CONFIG", "")

	dir := filepath.Join(home, ConfigDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	fileCfg := map[string]any{
		"api":     map[string]any{"baseUrl": "https://file.example", "board": "ops"},
		"backoff": map[string]any{"baseMs": 500},
	}
	data, _ := json.Marshal(fileCfg)
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), data, 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("BOARDPULSE_API_BASE_URL", "https://env.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "https://env.example" {
		t.Fatalf("env did not win: %q", cfg.API.BaseURL)
	}
	if cfg.API.Board != "ops" {
		t.Fatalf("file value lost: %q", cfg.API.Board)
	}
	if cfg.Backoff.BaseMs != 500 {
		t.Fatalf("file backoff lost: %+v", cfg.Backoff)
	}
	// Untouched groups keep their defaults.
	if cfg.Feeds.MaxPages != 4 {
		t.Fatalf("defaults clobbered: %+v", cfg.Feeds)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("BOARDPULSE_HOME", t.TempDir())
	t.Setenv("BOARDPULSE_CONFIG", "")

	cfg := DefaultConfig()
	cfg.API.Board = "saved"
	if err := Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.API.Board != "saved" {
		t.Fatalf("round trip lost board: %+v", got.API)
	}
}
