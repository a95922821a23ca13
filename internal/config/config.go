// Package config resolves where InvoiceDesk keeps its data and loads the
// optional config.yaml overrides.
//
// Platform data directory:
//
//	macOS:   ~/Library/Application Support/InvoiceDesk/
//	Windows: %AppData%\InvoiceDesk\
//	Linux:   ~/.config/invoicedesk/
//
// Set INVOICEDESK_DATA_DIR to override.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"invoicedesk/internal/provider"
	"invoicedesk/internal/services"
)

// DataDirEnv overrides the platform data directory.
const DataDirEnv = "INVOICEDESK_DATA_DIR"

// File names inside the data directory.
const (
	DatabaseFile     = "invoicedesk.sqlite3"
	LocalStorageFile = "localstorage.json"
	ConfigFile       = "config.yaml"
)

// Config holds application configuration
type Config struct {
	DataDir          string `yaml:"-"`
	DatabasePath     string `yaml:"-"`
	LocalStoragePath string `yaml:"-"`
	ConfigPath       string `yaml:"-"`

	LogLevel     string             `yaml:"log_level"`
	Bridge       BridgeConfig       `yaml:"bridge"`
	Cache        CacheConfig        `yaml:"cache"`
	LocalStorage LocalStorageConfig `yaml:"local_storage"`

	Logger *slog.Logger `yaml:"-"`
}

// BridgeConfig bounds the wait for the host settings store at startup.
type BridgeConfig struct {
	ReadyTimeout  time.Duration `yaml:"ready_timeout"`
	ReadyInterval time.Duration `yaml:"ready_interval"`
}

// CacheConfig tunes the configuration manager's read cache.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// LocalStorageConfig controls watching the local storage file for changes
// made by other processes.
type LocalStorageConfig struct {
	Watch         bool          `yaml:"watch"`
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// New creates a new configuration instance for the platform data directory.
// Problems reading config.yaml are logged and defaults are kept.
func New() *Config {
	dir, err := DataDir()
	if err != nil {
		slog.Default().Error("Failed to resolve data directory, using temp dir", "error", err)
		dir = filepath.Join(os.TempDir(), "invoicedesk")
	}
	cfg, err := Load(dir)
	if err != nil {
		cfg.Logger.Warn("Ignoring invalid config file", "path", cfg.ConfigPath, "error", err)
	}
	return cfg
}

// Load builds the configuration rooted at dataDir. The returned Config is
// always usable; a non-nil error reports a config.yaml that could not be
// applied.
func Load(dataDir string) (*Config, error) {
	cfg := defaults(dataDir)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		cfg.setupLogger()
		return cfg, fmt.Errorf("failed to create data directory: %w", err)
	}

	err := cfg.applyFile()
	cfg.setupLogger()
	return cfg, err
}

func defaults(dataDir string) *Config {
	return &Config{
		DataDir:          dataDir,
		DatabasePath:     filepath.Join(dataDir, DatabaseFile),
		LocalStoragePath: filepath.Join(dataDir, LocalStorageFile),
		ConfigPath:       filepath.Join(dataDir, ConfigFile),
		LogLevel:         "info",
		Bridge: BridgeConfig{
			ReadyTimeout:  provider.DefaultReadyTimeout,
			ReadyInterval: provider.DefaultReadyInterval,
		},
		Cache: CacheConfig{
			TTL: services.DefaultCacheTTL,
		},
		LocalStorage: LocalStorageConfig{
			Watch: true,
		},
	}
}

func (c *Config) applyFile() error {
	data, err := os.ReadFile(c.ConfigPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	overrides := *c
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse %s: %w", c.ConfigPath, err)
	}
	if _, ok := parseLevel(overrides.LogLevel); !ok {
		return fmt.Errorf("unknown log_level %q", overrides.LogLevel)
	}
	if overrides.Bridge.ReadyTimeout < 0 || overrides.Bridge.ReadyInterval < 0 || overrides.Cache.TTL < 0 {
		return fmt.Errorf("durations in %s must not be negative", c.ConfigPath)
	}

	*c = overrides
	return nil
}

func (c *Config) setupLogger() {
	level, _ := parseLevel(c.LogLevel)
	c.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// HostOptions returns the provider readiness options.
func (c *Config) HostOptions() provider.HostOptions {
	return provider.HostOptions{
		ReadyTimeout:  c.Bridge.ReadyTimeout,
		ReadyInterval: c.Bridge.ReadyInterval,
	}
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// DataDir returns the platform-appropriate data directory.
func DataDir() (string, error) {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return dir, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}

	// Linux: lowercase per XDG convention
	if runtime.GOOS == "linux" {
		return filepath.Join(configDir, "invoicedesk"), nil
	}
	return filepath.Join(configDir, "InvoiceDesk"), nil
}
