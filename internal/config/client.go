package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// ClientConfig holds configuration for the wealthtrack CLI.
type ClientConfig struct {
	APIURL      string       `toml:"api_url"`
	WorkspaceDB string       `toml:"workspace_db"`
	LogLevel    string       `toml:"log_level"`
	TimeoutStr  string       `toml:"timeout"` // Go duration, e.g. "10s"
	Gemini      GeminiConfig `toml:"gemini"`

	Timeout time.Duration `toml:"-"`
}

// GeminiConfig holds the advisory model settings.
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-3-flash-preview"

// NewDefaultClientConfig returns the client configuration with defaults.
func NewDefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		APIURL:      "http://localhost:3001/api",
		WorkspaceDB: filepath.Join(homeDir(), ".wealthtrack", "workspace.db"),
		LogLevel:    "warn",
		TimeoutStr:  "10s",
		Timeout:     10 * time.Second,
		Gemini: GeminiConfig{
			Model: DefaultModel,
		},
	}
}

// DefaultClientConfigPath is ~/.wealthtrack/config.toml.
func DefaultClientConfigPath() string {
	return filepath.Join(homeDir(), ".wealthtrack", "config.toml")
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// LoadClient loads client configuration from files with env overrides.
// Later files override earlier ones and missing files are skipped.
func LoadClient(paths ...string) (*ClientConfig, error) {
	config := NewDefaultClientConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyClientEnvOverrides(config)

	d, err := time.ParseDuration(config.TimeoutStr)
	if err != nil || d <= 0 {
		return nil, fmt.Errorf("invalid timeout %q: must be a positive duration", config.TimeoutStr)
	}
	config.Timeout = d
	if config.Gemini.Model == "" {
		config.Gemini.Model = DefaultModel
	}
	return config, nil
}

func applyClientEnvOverrides(config *ClientConfig) {
	if v := os.Getenv("WEALTHTRACK_API_URL"); v != "" {
		config.APIURL = v
	}
	if v := os.Getenv("WEALTHTRACK_DB"); v != "" {
		config.WorkspaceDB = v
	}
	if v := os.Getenv("WEALTHTRACK_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
	if v := os.Getenv("WEALTHTRACK_TIMEOUT"); v != "" {
		config.TimeoutStr = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		config.Gemini.APIKey = v
	} else if v := os.Getenv("API_KEY"); v != "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		config.Gemini.Model = v
	}
}
