// Package config loads the pimpybot configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/SijmenSchoon/pimpybot/internal/logging"
	"github.com/SijmenSchoon/pimpybot/internal/store"
)

// Config represents the main configuration.
type Config struct {
	Telegram *TelegramConfig `yaml:"telegram"`
	Via      *ViaConfig      `yaml:"via"`
	Store    *StoreConfig    `yaml:"store"`
	History  *HistoryConfig  `yaml:"history"`
	Logging  *logging.Config `yaml:"logging"`
}

// TelegramConfig holds the chat transport settings.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
}

// ViaConfig holds the task API settings.
type ViaConfig struct {
	BaseURL string `yaml:"base_url"`
}

// StoreConfig holds the credential store settings. The default mappings are
// the compiled-in fallback used when no snapshot exists yet.
type StoreConfig struct {
	Path              string             `yaml:"path"`
	Flush             *store.FlushConfig `yaml:"flush"`
	DefaultUserTokens map[int64]string   `yaml:"default_user_tokens"`
	DefaultGroupIDs   map[int64]int      `yaml:"default_group_ids"`
}

// HistoryConfig holds the event history settings.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Telegram: &TelegramConfig{},
		Via: &ViaConfig{
			BaseURL: "https://svia.nl",
		},
		Store: &StoreConfig{
			Path:  filepath.Join(homeDir, ".pimpybot", "database.json"),
			Flush: store.DefaultFlushConfig(),
		},
		History: &HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(homeDir, ".pimpybot", "data"),
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Expand environment variables so secrets can stay out of the file.
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.Store != nil {
		config.Store.Path = expandPath(config.Store.Path)
	}
	if config.History != nil {
		config.History.Path = expandPath(config.History.Path)
	}

	return config, nil
}

// DefaultConfigPath returns the default configuration path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".pimpybot", "config.yaml")
}

// expandPath expands ~ to the home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Telegram == nil || c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token is required")
	}
	if c.Via == nil || c.Via.BaseURL == "" {
		return fmt.Errorf("via base URL is required")
	}
	if !strings.HasPrefix(c.Via.BaseURL, "http://") && !strings.HasPrefix(c.Via.BaseURL, "https://") {
		return fmt.Errorf("via base URL must be an http(s) URL: %q", c.Via.BaseURL)
	}
	if c.Store == nil || c.Store.Path == "" {
		return fmt.Errorf("store snapshot path is required")
	}
	if c.History != nil && c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history path is required when history is enabled")
	}
	return nil
}

// StoreDefaults returns the compiled-in credential defaults.
func (c *Config) StoreDefaults() store.Defaults {
	if c.Store == nil {
		return store.Defaults{}
	}
	return store.Defaults{
		UserTokens: c.Store.DefaultUserTokens,
		GroupIDs:   c.Store.DefaultGroupIDs,
	}
}
