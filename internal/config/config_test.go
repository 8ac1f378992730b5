package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.TimeoutSeconds != 15 {
		t.Errorf("TimeoutSeconds = %d", cfg.API.TimeoutSeconds)
	}
	if cfg.DataDir != dir {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if !errors.Is(cfg.Validate(), ErrMissingBaseURL) {
		t.Errorf("expected ErrMissingBaseURL, got %v", cfg.Validate())
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DataDir = dir
	cfg.API.BaseURL = "https://file.example/racing/"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv(EnvBaseURL, "https://env.example/racing/")
	t.Setenv(EnvLogLevel, "debug")

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.API.BaseURL != "https://env.example/racing/" {
		t.Errorf("BaseURL = %q", loaded.API.BaseURL)
	}
	if loaded.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", loaded.Log.Level)
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestFileValuesUsedWithoutEnv(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	dir := t.TempDir()
	body := `{"api":{"base_url":"https://file.example/","timeout_seconds":5},"ui":{"show_debug":true}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != "https://file.example/" || cfg.API.TimeoutSeconds != 5 || !cfg.UI.ShowDebug {
		t.Errorf("unexpected config %+v", cfg)
	}
	// Unset fields keep their defaults
	if cfg.API.RequestsPerSecond != 4 {
		t.Errorf("RequestsPerSecond = %v", cfg.API.RequestsPerSecond)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0644)

	if _, err := Load(dir); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	os.WriteFile(envFile, []byte("NEDS_API_URL=https://dotenv.example/\nNEXTTOGO_TEST_ONLY=from-dotenv\n"), 0644)

	t.Setenv(EnvBaseURL, "https://shell.example/")
	t.Setenv("NEXTTOGO_TEST_ONLY", "")
	os.Unsetenv("NEXTTOGO_TEST_ONLY")

	LoadDotEnv(envFile)

	if got := os.Getenv(EnvBaseURL); got != "https://shell.example/" {
		t.Errorf("shell value overwritten: %q", got)
	}
	if got := os.Getenv("NEXTTOGO_TEST_ONLY"); got != "from-dotenv" {
		t.Errorf("dotenv value not loaded: %q", got)
	}
}

func TestValidateTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://example/"
	cfg.API.TimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero timeout")
	}
}

func TestPathsLiveInDataDir(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/ntg"}
	if got := cfg.DBPath(); got != filepath.Join("/tmp/ntg", "nexttogo.db") {
		t.Errorf("DBPath = %q", got)
	}
	if got := cfg.EventLogPath(); got != filepath.Join("/tmp/ntg", "events.jsonl") {
		t.Errorf("EventLogPath = %q", got)
	}
}
