package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Agent.BaseURL != "http://localhost:10000" {
		t.Errorf("agent url = %q", cfg.Agent.BaseURL)
	}
	if cfg.Analyze == nil || cfg.Analyze.BaseURL != "http://localhost:8000" {
		t.Errorf("analyze config = %+v", cfg.Analyze)
	}
	if cfg.Analyze.Language != "en" {
		t.Errorf("language = %q", cfg.Analyze.Language)
	}
	if cfg.Store == nil || cfg.Store.Path == "" {
		t.Errorf("store config = %+v", cfg.Store)
	}
	if cfg.Log == nil || cfg.Log.Level != "info" {
		t.Errorf("log config = %+v", cfg.Log)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"agent": {"baseUrl": "http://agent.local:9000", "initialContext": "You are a sky guide."},
		"analyze": {"baseUrl": "http://analyze.local:9001", "language": "fr"},
		"store": {"path": "/tmp/skyguide-test/sessions.db"},
		"log": {"level": "debug"}
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Agent.BaseURL != "http://agent.local:9000" {
		t.Errorf("agent url = %q", cfg.Agent.BaseURL)
	}
	if cfg.Agent.InitialContext != "You are a sky guide." {
		t.Errorf("initial context = %q", cfg.Agent.InitialContext)
	}
	if cfg.Analyze.Language != "fr" {
		t.Errorf("language = %q", cfg.Analyze.Language)
	}
	if cfg.Store.Path != "/tmp/skyguide-test/sessions.db" {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"agent":`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("malformed config must fail")
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"agent": {"baseUrl": "http://from-file:9000"}, "log": {"level": "warn"}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SKYGUIDE_AGENT_URL", "http://from-env:9100")
	t.Setenv("SKYGUIDE_STORE_PATH", "/tmp/env-sessions.db")
	t.Setenv("SKYGUIDE_LOG_LEVEL", "error")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Agent.BaseURL != "http://from-env:9100" {
		t.Errorf("agent url = %q", cfg.Agent.BaseURL)
	}
	if cfg.Store.Path != "/tmp/env-sessions.db" {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestCreateLogger(t *testing.T) {
	lc := &LogConfig{Level: "debug", File: filepath.Join(t.TempDir(), "out.log")}
	log, err := lc.CreateLogger()
	if err != nil {
		t.Fatal(err)
	}
	defer log.Close()
	log.Debug("logger wired up")
}
