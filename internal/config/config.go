package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration is environment-first: every setting can come from the
// process environment, with an optional YAML file (CONFIG_FILE) underneath
// for local development. Built once at startup and treated as immutable.

const (
	defaultExplorerURL = "https://api.ergoplatform.com/api/v1"
	defaultNodeURL     = "http://localhost:9053"
	defaultEIPRepoURL  = "https://github.com/ergoplatform/eips.git"
)

type Config struct {
	ExplorerURL string `yaml:"explorer_url"`
	NodeURL     string `yaml:"node_url"`
	NodeAPIKey  string `yaml:"node_api_key"`

	ServerHost string `yaml:"server_host"`
	ServerPort int    `yaml:"server_port"`

	// minimal or normal; normal carries envelope metadata.
	ResponseVerbosity string `yaml:"response_verbosity"`
	MaxResponseSize   int    `yaml:"max_response_size"`  // bytes
	MaxTokenEstimate  int    `yaml:"max_token_estimate"` // tokens

	EIPRepoURL      string `yaml:"eip_repo_url"`
	EIPLocalDir     string `yaml:"eip_local_dir"`
	EIPRefreshHours int    `yaml:"eip_refresh_hours"`

	AddressBookURL      string `yaml:"address_book_url"`
	AddressBookFallback string `yaml:"address_book_fallback"`
}

// Load merges the optional YAML file and the environment, environment
// winning. Missing values get the documented defaults.
func Load() (*Config, error) {
	cfg := &Config{
		ExplorerURL:       defaultExplorerURL,
		NodeURL:           defaultNodeURL,
		ServerHost:        "0.0.0.0",
		ServerPort:        8080,
		ResponseVerbosity: "normal",
		EIPRepoURL:        defaultEIPRepoURL,
		EIPRefreshHours:   24,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyString(&cfg.ExplorerURL, "ERGO_EXPLORER_API")
	applyString(&cfg.NodeURL, "ERGO_NODE_API")
	applyString(&cfg.NodeAPIKey, "ERGO_NODE_API_KEY")
	applyString(&cfg.ServerHost, "SERVER_HOST")
	applyInt(&cfg.ServerPort, "SERVER_PORT")
	applyString(&cfg.ResponseVerbosity, "RESPONSE_VERBOSITY")
	applyInt(&cfg.MaxResponseSize, "MAX_RESPONSE_SIZE")
	applyInt(&cfg.MaxTokenEstimate, "MAX_TOKEN_ESTIMATE")
	applyString(&cfg.EIPRepoURL, "EIP_REPO_URL")
	applyString(&cfg.EIPLocalDir, "EIP_LOCAL_DIR")
	applyInt(&cfg.EIPRefreshHours, "EIP_REFRESH_HOURS")
	applyString(&cfg.AddressBookURL, "ADDRESS_BOOK_URL")
	applyString(&cfg.AddressBookFallback, "ADDRESS_BOOK_FALLBACK")

	if cfg.ResponseVerbosity != "minimal" && cfg.ResponseVerbosity != "normal" {
		return nil, fmt.Errorf("RESPONSE_VERBOSITY must be minimal or normal, got %q", cfg.ResponseVerbosity)
	}
	return cfg, nil
}

// Verbose reports whether envelopes should carry metadata by default.
func (c *Config) Verbose() bool {
	return c.ResponseVerbosity != "minimal"
}

// EIPRefreshInterval converts the configured hours to a duration.
func (c *Config) EIPRefreshInterval() time.Duration {
	return time.Duration(c.EIPRefreshHours) * time.Hour
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

func applyString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func applyInt(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*target = parsed
		}
	}
}
