package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	UI         UIConfig         `mapstructure:"ui"`
	Navigation NavigationConfig `mapstructure:"navigation"`
	Stats      StatsConfig      `mapstructure:"stats"`
	Log        LogConfig        `mapstructure:"log"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
	Language       string `mapstructure:"language"`
	StartTab       string `mapstructure:"start_tab"`
}

// NavigationConfig tunes the tab navigator.
type NavigationConfig struct {
	TransitionDelay time.Duration `mapstructure:"transition_delay"`
	HistoryLimit    int           `mapstructure:"history_limit"`
}

// StatsConfig tunes the dashboard summary refresher.
type StatsConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// LogConfig controls the structured log file. The terminal belongs to the TUI,
// so an empty path disables logging entirely.
type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

const envPrefix = "BIOVALUE"

// Path returns the config file location. BIOVALUE_CONFIG wins over the default.
func Path() string {
	if p := os.Getenv(envPrefix + "_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "biovalue", "config.toml")
}

func setDefaults(v *viper.Viper) {
	dataDir := filepath.Join(os.Getenv("HOME"), ".local", "share", "biovalue")
	v.SetDefault("database.path", filepath.Join(dataDir, "biovalue.db"))
	v.SetDefault("ui.currency_symbol", "$")
	v.SetDefault("ui.language", "en")
	v.SetDefault("ui.start_tab", "dashboard")
	v.SetDefault("navigation.transition_delay", 150*time.Millisecond)
	v.SetDefault("navigation.history_limit", 10)
	v.SetDefault("stats.interval", 3*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", filepath.Join(dataDir, "biovalue.log"))
}

// Load reads configuration from file and env. Env var overrides use prefix BIOVALUE_.
// A missing config file is not an error; a malformed one is.
func Load() (Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file, used by the --config flag.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if path == "" {
		path = Path()
	}
	v.SetConfigFile(path)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Navigation.HistoryLimit < 2 {
		c.Navigation.HistoryLimit = 2
	}
	if c.Navigation.TransitionDelay < 0 {
		c.Navigation.TransitionDelay = 0
	}
	if c.Stats.Interval <= 0 {
		c.Stats.Interval = 3 * time.Second
	}
	return c, nil
}

// Save persists the settings the app changes at runtime (today only
// ui.language, from the Settings tab) into the config file. Every other key is
// kept as the file has it, so env overrides and defaults never get written.
func Save(cfg Config) error {
	return SaveFile(cfg, Path())
}

// SaveFile is Save with an explicit destination.
func SaveFile(cfg Config, path string) error {
	return updateFile(path, map[string]any{
		"ui.language": cfg.UI.Language,
	})
}

// updateFile sets keys in the TOML file at path, creating it if needed. The
// viper instance has no defaults and no env binding: it sees the file only.
func updateFile(path string, keys map[string]any) error {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}
	for k, val := range keys {
		v.Set(k, val)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
