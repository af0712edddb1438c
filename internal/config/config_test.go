package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelcache/internal/config"
)

func TestDefaultHasSaneValues(t *testing.T) {
	cfg := config.Default()
	if cfg.TMDB.BaseURL == "" {
		t.Fatal("expected default TMDB base URL")
	}
	if cfg.TMDB.Language != "en-US" {
		t.Fatalf("unexpected default language %q", cfg.TMDB.Language)
	}
	if cfg.Lookup.RemoteTimeout <= 0 {
		t.Fatal("expected positive remote timeout")
	}
}

func TestLoadMissingAPIKeyFails(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[tmdb]\napi_key = \"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error when api key missing")
	}
	if !strings.Contains(err.Error(), "tmdb.api_key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadUnvalidatedToleratesMissingAPIKey(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[tmdb]\napi_key = \"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.LoadUnvalidated(path)
	if err != nil {
		t.Fatalf("LoadUnvalidated returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be detected")
	}
	if cfg.TMDB.APIKey != "" {
		t.Fatalf("expected empty api key, got %q", cfg.TMDB.APIKey)
	}
	// Paths are still normalized for display.
	if strings.HasPrefix(cfg.Paths.CacheDir, "~") {
		t.Fatalf("cache dir not expanded: %q", cfg.Paths.CacheDir)
	}
}

func TestLoadReadsEnvironmentKey(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "env-key")
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be detected")
	}
	if cfg.TMDB.APIKey != "env-key" {
		t.Fatalf("expected env api key, got %q", cfg.TMDB.APIKey)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalidLanguage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[tmdb]\napi_key = \"key\"\nlanguage = \"not a language\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for invalid language tag")
	}
}

func TestLoadRejectsInvalidLogFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[tmdb]\napi_key = \"key\"\n\n[logging]\nformat = \"xml\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "sample-key")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample config: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.TMDB.BaseURL != "https://api.themoviedb.org/3" {
		t.Fatalf("unexpected base url %q", cfg.TMDB.BaseURL)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.PosterDir = filepath.Join(base, "posters")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.CacheDir, cfg.Paths.LogDir, cfg.Paths.PosterDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
	if got := cfg.DatabasePath(); got != filepath.Join(cfg.Paths.CacheDir, "movies.db") {
		t.Fatalf("unexpected database path %s", got)
	}
}
