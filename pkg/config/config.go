package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/skyward/skyguide/pkg/logger"
)

// Config represents the application configuration.
type Config struct {
	// Agent endpoint configuration
	Agent AgentConfig `json:"agent"`

	// Analysis backend configuration
	Analyze *AnalyzeConfig `json:"analyze,omitempty"`

	// Session store configuration
	Store *StoreConfig `json:"store,omitempty"`

	// Logging configuration
	Log *LogConfig `json:"log,omitempty"`
}

// AgentConfig contains the conversational agent endpoint settings.
type AgentConfig struct {
	BaseURL        string `json:"baseUrl"`
	InitialContext string `json:"initialContext,omitempty"` // prepended once per conversation
}

// AnalyzeConfig contains the analysis backend settings.
type AnalyzeConfig struct {
	BaseURL  string `json:"baseUrl"`
	Language string `json:"language,omitempty"` // ISO code for narration
}

// StoreConfig contains the session store settings.
type StoreConfig struct {
	Path string `json:"path,omitempty"` // sqlite file path
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level  string `json:"level,omitempty"`  // Log level: debug, info, warn, error
	File   string `json:"file,omitempty"`   // Log file path (empty = no file logging)
	Prefix string `json:"prefix,omitempty"` // Log prefix
}

// DefaultLogConfig returns default logging configuration.
func DefaultLogConfig() *LogConfig {
	homeDir, _ := os.UserHomeDir()
	return &LogConfig{
		Level:  "info",
		File:   filepath.Join(homeDir, ".skyguide", "skyguide.log"),
		Prefix: "[skyguide] ",
	}
}

// DefaultStoreConfig returns default session store configuration.
func DefaultStoreConfig() *StoreConfig {
	homeDir, _ := os.UserHomeDir()
	return &StoreConfig{
		Path: filepath.Join(homeDir, ".skyguide", "sessions.db"),
	}
}

// CreateLogger creates a logger from the log configuration.
func (c *LogConfig) CreateLogger() (*logger.Logger, error) {
	if c == nil {
		c = DefaultLogConfig()
	}
	return logger.NewLogger(&logger.Config{
		Level:    logger.ParseLogLevel(c.Level),
		Prefix:   c.Prefix,
		Console:  true,
		FilePath: c.File,
	})
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".skyguide", "config.json")
}

// LoadConfig loads configuration from file and merges with environment
// variables. Environment variables take precedence over config file values.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{
		Agent: AgentConfig{
			BaseURL: getEnv("SKYGUIDE_AGENT_URL", "http://localhost:10000"),
		},
		Analyze: &AnalyzeConfig{
			BaseURL:  getEnv("SKYGUIDE_ANALYZE_URL", "http://localhost:8000"),
			Language: "en",
		},
		Store: DefaultStoreConfig(),
		Log:   DefaultLogConfig(),
	}

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Environment variables override config file
	if val := os.Getenv("SKYGUIDE_AGENT_URL"); val != "" {
		cfg.Agent.BaseURL = val
	}
	if val := os.Getenv("SKYGUIDE_ANALYZE_URL"); val != "" {
		if cfg.Analyze == nil {
			cfg.Analyze = &AnalyzeConfig{Language: "en"}
		}
		cfg.Analyze.BaseURL = val
	}
	if val := os.Getenv("SKYGUIDE_STORE_PATH"); val != "" {
		if cfg.Store == nil {
			cfg.Store = &StoreConfig{}
		}
		cfg.Store.Path = val
	}
	if val := os.Getenv("SKYGUIDE_LOG_LEVEL"); val != "" {
		if cfg.Log == nil {
			cfg.Log = DefaultLogConfig()
		}
		cfg.Log.Level = val
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
