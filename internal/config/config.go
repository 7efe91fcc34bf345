// Package config manages the client-side configuration file. Everything that
// matters (chats, messages) lives on the server; the client only remembers
// how to reach it and which chat was open last.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	perrors "github.com/parleyhq/parley/internal/errors"
)

// DefaultServerURL is where `parley serve` listens out of the box.
const DefaultServerURL = "http://localhost:8617"

// Config holds the application configuration
type Config struct {
	ServerURL            string `json:"server_url"`
	LastActiveChatID     string `json:"last_active_chat_id,omitempty"` // Chat reselected on next launch
	NotificationsEnabled bool   `json:"notifications_enabled"`         // Desktop notifications for replies to hidden chats

	mu       sync.RWMutex
	filePath string
}

// configDir returns the path to the config directory
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".parley"), nil
}

// configPath returns the path to the config file
func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or creates a new one if it doesn't exist
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from an explicit path. Exposed for tests.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{
		ServerURL:            DefaultServerURL,
		NotificationsEnabled: true,
		filePath:             path,
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, perrors.ConfigLoadFailed(path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, perrors.ConfigLoadFailed(path, err)
	}

	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(c.filePath), 0755); err != nil {
		return perrors.ConfigSaveFailed(c.filePath, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return perrors.ConfigSaveFailed(c.filePath, err)
	}

	if err := os.WriteFile(c.filePath, data, 0644); err != nil {
		return perrors.ConfigSaveFailed(c.filePath, err)
	}
	return nil
}

// GetServerURL returns the backend base URL
func (c *Config) GetServerURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ServerURL
}

// SetServerURL sets the backend base URL
func (c *Config) SetServerURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ServerURL = strings.TrimRight(url, "/")
}

// GetLastActiveChatID returns the chat that was open when the client exited
func (c *Config) GetLastActiveChatID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.LastActiveChatID
}

// SetLastActiveChatID remembers the open chat for the next launch
func (c *Config) SetLastActiveChatID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.LastActiveChatID = id
}

// GetNotificationsEnabled returns whether desktop notifications are enabled
func (c *Config) GetNotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.NotificationsEnabled
}
