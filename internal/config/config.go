package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	General       GeneralConfig       `toml:"general"`
	Web           WebConfig           `toml:"web"`
	Notifications NotificationsConfig `toml:"notifications"`
	Assign        AssignConfig        `toml:"assign"`
}

// GeneralConfig holds general settings
type GeneralConfig struct {
	DatabasePath string `toml:"database_path"`
}

// WebConfig holds dashboard server settings
type WebConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
	// Auto-refresh intervals per view variant, in seconds
	KanbanRefreshSeconds int `toml:"kanban_refresh_seconds"`
	TableRefreshSeconds  int `toml:"table_refresh_seconds"`
}

// NotificationsConfig holds notification settings
type NotificationsConfig struct {
	Desktop    bool   `toml:"desktop"`
	WebhookURL string `toml:"webhook_url"`
}

// AssignConfig holds auto-assignment settings
type AssignConfig struct {
	Enabled bool   `toml:"enabled"`
	Cron    string `toml:"cron"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		General: GeneralConfig{
			DatabasePath: filepath.Join(home, ".team-board", "team.db"),
		},
		Web: WebConfig{
			Port:                 8080,
			Host:                 "127.0.0.1",
			KanbanRefreshSeconds: 60,
			TableRefreshSeconds:  30,
		},
		Notifications: NotificationsConfig{
			Desktop: false,
		},
		Assign: AssignConfig{
			Enabled: false,
			Cron:    "*/5 * * * *",
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.General.DatabasePath = ExpandPath(cfg.General.DatabasePath)

	return cfg, nil
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "team-board", "config.toml")
}
