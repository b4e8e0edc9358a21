// Package config loads user settings from a TOML file.
//
// The file lives at ~/.config/tsk/config.toml unless TSK_CONFIG names
// another path. A missing file yields Default(). Command-line flags are
// applied by the caller on top of the loaded values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// EnvPath overrides the config file location.
const EnvPath = "TSK_CONFIG"

// Store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Sort orders.
const (
	SortPriority = "priority"
	SortTime     = "time"
	SortCreated  = "created"
)

// DefaultTextWidth is the width of the text column in list output.
const DefaultTextWidth = 35

// Config is the decoded config file.
type Config struct {
	Store   StoreConfig   `toml:"store"`
	Display DisplayConfig `toml:"display"`
}

// StoreConfig selects where tasks are kept.
type StoreConfig struct {
	Backend string `toml:"backend"`
	// Path is the store file or database. Empty means the backend default.
	Path string `toml:"path"`
}

// DisplayConfig controls list rendering.
type DisplayConfig struct {
	Color     string `toml:"color"`
	Sort      string `toml:"sort"`
	TextWidth int    `toml:"text_width"`
}

// Default returns the settings used when no file exists.
func Default() *Config {
	return &Config{
		Store: StoreConfig{Backend: BackendFile},
		Display: DisplayConfig{
			Color:     ColorAuto,
			Sort:      SortPriority,
			TextWidth: DefaultTextWidth,
		},
	}
}

// DefaultPath returns the config file location, honouring TSK_CONFIG.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", "tsk", "config.toml"), nil
}

// Load reads the config from DefaultPath.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads and validates the config at path. Keys absent from the
// file keep their default values.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first setting outside its allowed values.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("store.backend must be %q or %q, got %q", BackendFile, BackendSQLite, c.Store.Backend)
	}
	switch c.Display.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("display.color must be auto, always or never, got %q", c.Display.Color)
	}
	if err := ValidateSort(c.Display.Sort); err != nil {
		return fmt.Errorf("display.sort: %w", err)
	}
	if c.Display.TextWidth < 10 {
		return fmt.Errorf("display.text_width must be at least 10, got %d", c.Display.TextWidth)
	}
	return nil
}

// ValidateSort checks a sort order name.
func ValidateSort(order string) error {
	switch order {
	case SortPriority, SortTime, SortCreated:
		return nil
	}
	return fmt.Errorf("sort must be priority, time or created, got %q", order)
}

// ForceColor maps the color mode to a tri-state: nil for auto detection.
func (c *Config) ForceColor() *bool {
	var on bool
	switch c.Display.Color {
	case ColorAlways:
		on = true
	case ColorNever:
		on = false
	default:
		return nil
	}
	return &on
}

// Encode renders c as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Write saves c to path, creating parent directories. An existing file is
// only replaced when overwrite is set.
func (c *Config) Write(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
