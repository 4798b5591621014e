/*
Package config handles loading and saving quitswarm configuration.

Configuration is stored in ~/.quitswarm.json:

  {
    "memoryPath": "/home/user/.quitswarm/swarm_memory.json",
    "historyDbPath": "/home/user/.quitswarm/history.db",
    "settings": {
      "topSimilarCases": 4,
      "serveAddr": "localhost:8855",
      "refinerEnabled": false,
      "refinerModel": "claude-3-5-haiku-latest"
    }
  }
*/
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the root configuration structure.
type Config struct {
	// MemoryPath is where the swarm memory JSON document lives.
	MemoryPath string `json:"memoryPath,omitempty"`

	// HistoryDBPath is where the SQLite activity journal lives.
	HistoryDBPath string `json:"historyDbPath,omitempty"`

	// Settings contains tunables.
	Settings *Settings `json:"settings,omitempty"`
}

// Settings contains global configuration options.
type Settings struct {
	// TopSimilarCases is how many similar cases a decision retrieves.
	TopSimilarCases int `json:"topSimilarCases,omitempty"`

	// ServeAddr is the HTTP listen address for the serve command.
	ServeAddr string `json:"serveAddr,omitempty"`

	// RefinerEnabled turns on LLM narrative refinement (needs
	// ANTHROPIC_API_KEY in the environment).
	RefinerEnabled bool `json:"refinerEnabled,omitempty"`

	// RefinerModel overrides the refiner's default model.
	RefinerModel string `json:"refinerModel,omitempty"`
}

// NewConfig creates a configuration with default settings.
func NewConfig() *Config {
	return &Config{
		Settings: &Settings{
			TopSimilarCases: 4,
			ServeAddr:       "localhost:8855",
		},
	}
}

// GetDefaultConfigPath returns the path to ~/.quitswarm.json.
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".quitswarm.json"), nil
}

// Load reads the configuration from the default path.
func Load() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Settings == nil {
		cfg.Settings = NewConfig().Settings
	}
	if cfg.Settings.TopSimilarCases <= 0 {
		cfg.Settings.TopSimilarCases = 4
	}
	if cfg.Settings.ServeAddr == "" {
		cfg.Settings.ServeAddr = "localhost:8855"
	}

	return &cfg, nil
}

// LoadOrCreate loads the default config, creating it with defaults when
// missing.
func LoadOrCreate() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadFrom(configPath)
	if err == nil {
		return cfg, nil
	}

	cfg = NewConfig()
	if saveErr := Save(cfg, configPath); saveErr != nil {
		return nil, saveErr
	}
	return cfg, nil
}

// Save writes the configuration to the specified path.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
