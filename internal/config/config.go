// Package config loads tunePlayer's settings from defaults, an optional
// YAML file and TUNEPLAYER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all runtime settings.
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	// LogFile receives logs while the TUI owns the terminal. Empty means
	// stderr.
	LogFile    string `mapstructure:"log_file"`
	Codec      string `mapstructure:"codec"`
	LibraryDir string `mapstructure:"library_dir"`
	// SleepTimer is the default delay for the sleep timer.
	SleepTimer time.Duration `mapstructure:"sleep_timer"`
	// MetricsAddr is the listen address for /metrics; empty disables it.
	MetricsAddr  string        `mapstructure:"metrics_addr"`
	TickInterval time.Duration `mapstructure:"tick_interval"`
}

const envPrefix = "TUNEPLAYER"

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:     "info",
		LogFile:      "debug.log",
		Codec:        "msgpack",
		LibraryDir:   ".",
		SleepTimer:   30 * time.Minute,
		MetricsAddr:  "",
		TickInterval: time.Second,
	}
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Codec {
	case "json", "msgpack":
	default:
		return fmt.Errorf("codec must be json or msgpack, got %q", c.Codec)
	}
	if c.SleepTimer <= 0 {
		return errors.New("sleep_timer must be positive")
	}
	if c.TickInterval <= 0 {
		return errors.New("tick_interval must be positive")
	}
	if c.TickInterval > c.SleepTimer {
		return errors.New("tick_interval cannot be greater than sleep_timer")
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "tunePlayer", "config.yaml")
}

// Load reads the configuration. An explicit path must exist; without one,
// a missing file at DefaultPath is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("codec", def.Codec)
	v.SetDefault("library_dir", def.LibraryDir)
	v.SetDefault("sleep_timer", def.SleepTimer)
	v.SetDefault("metrics_addr", def.MetricsAddr)
	v.SetDefault("tick_interval", def.TickInterval)

	v.SetConfigType("yaml")
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	v.SetConfigFile(path)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		slog.Debug("No config file, using defaults", "path", path)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}

// fileLayout is the YAML document written by WriteDefault. Durations are
// written in time.Duration string form so the file stays hand-editable.
type fileLayout struct {
	LogLevel     string `yaml:"log_level"`
	LogFile      string `yaml:"log_file"`
	Codec        string `yaml:"codec"`
	LibraryDir   string `yaml:"library_dir"`
	SleepTimer   string `yaml:"sleep_timer"`
	MetricsAddr  string `yaml:"metrics_addr"`
	TickInterval string `yaml:"tick_interval"`
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(fileLayout{
		LogLevel:     c.LogLevel,
		LogFile:      c.LogFile,
		Codec:        c.Codec,
		LibraryDir:   c.LibraryDir,
		SleepTimer:   c.SleepTimer.String(),
		MetricsAddr:  c.MetricsAddr,
		TickInterval: c.TickInterval.String(),
	})
}

// WriteDefault writes the default configuration to path, creating parent
// directories. It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	data, err := Default().Marshal()
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
