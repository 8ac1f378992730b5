package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissingBaseURL means no API base URL was configured anywhere.
var ErrMissingBaseURL = errors.New("missing NEDS_API_URL: set it in the environment, .env, or api.base_url in config.json")

// Environment variables that override the config file.
const (
	EnvBaseURL  = "NEDS_API_URL"
	EnvDataDir  = "NEXTTOGO_HOME"
	EnvLogLevel = "NEXTTOGO_LOG_LEVEL"
)

// Config is the persistent application configuration
type Config struct {
	API APIConfig `json:"api"`
	UI  UIConfig  `json:"ui"`
	Log LogConfig `json:"log"`

	// DataDir holds the database, logs and event log. Not persisted.
	DataDir string `json:"-"`
}

// APIConfig holds the race feed settings
type APIConfig struct {
	BaseURL           string  `json:"base_url"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"` // 0 disables pacing
}

// UIConfig holds UI preferences
type UIConfig struct {
	ShowDebug bool `json:"show_debug"`
	ShowHelp  bool `json:"show_help"`
}

// LogConfig holds logging preferences
type LogConfig struct {
	Level string `json:"level"` // debug, info, warn, error
}

// DefaultConfig returns sensible defaults. BaseURL is deliberately empty.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			TimeoutSeconds:    15,
			RequestsPerSecond: 4,
		},
		UI: UIConfig{
			ShowDebug: false,
			ShowHelp:  true,
		},
		Log: LogConfig{
			Level: "info",
		},
		DataDir: DefaultDataDir(),
	}
}

// DefaultDataDir returns $NEXTTOGO_HOME or ~/.nexttogo.
func DefaultDataDir() string {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".nexttogo")
}

// ConfigPath returns the path to the config file inside dataDir
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.json")
}

// Load reads dataDir/config.json (defaults if absent), then applies .env
// and environment overrides. It does not validate; call Validate.
func Load(dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	data, err := os.ReadFile(ConfigPath(dataDir))
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", ConfigPath(dataDir), err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	LoadDotEnv()
	cfg.ApplyEnv()
	return cfg, nil
}

// LoadDotEnv loads .env from the working directory if present. Variables
// already set in the environment win.
func LoadDotEnv(paths ...string) {
	_ = godotenv.Load(paths...)
}

// ApplyEnv overlays environment variables on the loaded config
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("NEXTTOGO_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.API.TimeoutSeconds = n
		}
	}
}

// Validate reports configuration that makes startup impossible.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return ErrMissingBaseURL
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be positive, got %d", c.API.TimeoutSeconds)
	}
	return nil
}

// Save writes config to disk
func (c *Config) Save() error {
	path := ConfigPath(c.DataDir)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DBPath returns the preference database path.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "nexttogo.db")
}

// EventLogPath returns the JSONL event log path.
func (c *Config) EventLogPath() string {
	return filepath.Join(c.DataDir, "events.jsonl")
}
