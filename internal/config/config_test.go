package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"CONFIG_FILE", "ERGO_EXPLORER_API", "ERGO_NODE_API", "ERGO_NODE_API_KEY",
		"SERVER_HOST", "SERVER_PORT", "RESPONSE_VERBOSITY", "MAX_RESPONSE_SIZE",
		"MAX_TOKEN_ESTIMATE", "EIP_REPO_URL", "EIP_LOCAL_DIR", "EIP_REFRESH_HOURS",
		"ADDRESS_BOOK_URL", "ADDRESS_BOOK_FALLBACK",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()

	if err != nil {
		t.Fatalf("Expected no error. Got: %v", err)
	}
	if cfg.ExplorerURL != "https://api.ergoplatform.com/api/v1" {
		t.Errorf("Expected the public explorer default. Got: %q", cfg.ExplorerURL)
	}
	if cfg.NodeURL != "http://localhost:9053" {
		t.Errorf("Expected the local node default. Got: %q", cfg.NodeURL)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("Expected the default listen address. Got: %q", cfg.Addr())
	}
	if !cfg.Verbose() {
		t.Error("Expected normal verbosity by default")
	}
	if cfg.EIPRepoURL == "" {
		t.Error("Expected the EIP repository default")
	}
	if cfg.EIPRefreshInterval() != 24*time.Hour {
		t.Errorf("Expected a 24h refresh default. Got: %v", cfg.EIPRefreshInterval())
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ERGO_NODE_API", "http://node.internal:9053")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RESPONSE_VERBOSITY", "minimal")

	cfg, err := Load()

	if err != nil {
		t.Fatalf("Expected no error. Got: %v", err)
	}
	if cfg.NodeURL != "http://node.internal:9053" {
		t.Errorf("Expected the env node URL. Got: %q", cfg.NodeURL)
	}
	if cfg.ServerPort != 9090 {
		t.Errorf("Expected port 9090. Got: %d", cfg.ServerPort)
	}
	if cfg.Verbose() {
		t.Error("Expected minimal verbosity")
	}
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "node_url: http://file-node:9053\nserver_port: 7000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config fixture: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("ERGO_NODE_API", "http://env-node:9053")

	cfg, err := Load()

	if err != nil {
		t.Fatalf("Expected no error. Got: %v", err)
	}
	if cfg.NodeURL != "http://env-node:9053" {
		t.Errorf("Expected the environment to win over the file. Got: %q", cfg.NodeURL)
	}
	if cfg.ServerPort != 7000 {
		t.Errorf("Expected the file value where no env is set. Got: %d", cfg.ServerPort)
	}
}

func TestLoad_InvalidVerbosity(t *testing.T) {
	clearEnv(t)
	t.Setenv("RESPONSE_VERBOSITY", "chatty")

	if _, err := Load(); err == nil {
		t.Fatal("Expected an error for an unknown verbosity")
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("Expected an error for an unreadable config file")
	}
}
