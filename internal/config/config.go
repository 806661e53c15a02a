// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// Config is the root configuration structure.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Editor EditorConfig `toml:"editor"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr               string `toml:"addr"`
	CORSOrigin         string `toml:"cors_origin"`
	ShutdownTimeoutSec int    `toml:"shutdown_timeout_sec"`
}

// ShutdownTimeout returns the graceful shutdown deadline, 10 seconds if unset.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	if s.ShutdownTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.ShutdownTimeoutSec) * time.Second
}

// StoreConfig holds database settings.
type StoreConfig struct {
	// Path is the SQLite database file. Defaults to <data dir>/starnote.db.
	Path string `toml:"path"`
}

// EditorConfig holds note editor and preview settings.
type EditorConfig struct {
	// SyntaxTheme is the Chroma style used to highlight raw note text.
	SyntaxTheme string `toml:"syntax_theme"`
	// PreviewLength caps note previews, in characters. Zero disables the cap.
	PreviewLength int `toml:"preview_length"`
	// TitleLength caps title previews, in characters.
	TitleLength int `toml:"title_length"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	// File receives logs while the terminal editor runs. Defaults to
	// <data dir>/starnote.log.
	File string `toml:"file"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:               ":3000",
			CORSOrigin:         "*",
			ShutdownTimeoutSec: 10,
		},
		Editor: EditorConfig{
			SyntaxTheme:   "github-dark",
			PreviewLength: 100,
			TitleLength:   50,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads configuration from a TOML file and applies environment variable
// overrides. A missing file is not an error; defaults are used instead.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		_, err := toml.DecodeFile(path, cfg)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.ShutdownTimeoutSec < 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout_sec=%d must not be negative", c.Server.ShutdownTimeoutSec))
	}
	if c.Editor.PreviewLength < 0 {
		errs = append(errs, fmt.Errorf("editor.preview_length=%d must not be negative", c.Editor.PreviewLength))
	}
	if c.Editor.TitleLength < 0 {
		errs = append(errs, fmt.Errorf("editor.title_length=%d must not be negative", c.Editor.TitleLength))
	}
	if _, err := c.Log.ZerologLevel(); err != nil {
		errs = append(errs, fmt.Errorf("log.level=%q is invalid: %v", c.Log.Level, err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// ZerologLevel parses Level, defaulting to info when unset.
func (l LogConfig) ZerologLevel() (zerolog.Level, error) {
	if l.Level == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(l.Level)
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"STARNOTE_ADDR", func(v string) {
			if v != "" {
				cfg.Server.Addr = v
			}
		}},
		{"STARNOTE_DB", func(v string) {
			if v != "" {
				cfg.Store.Path = v
			}
		}},
		{"STARNOTE_LOG_LEVEL", func(v string) {
			if v != "" {
				cfg.Log.Level = v
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
}

// StorePathOrDefault returns the configured database path or
// <data dir>/starnote.db, creating the data directory as needed.
func (c *Config) StorePathOrDefault() (string, error) {
	return pathOrDefault(c.Store.Path, "starnote.db")
}

// LogFileOrDefault returns the configured log file or <data dir>/starnote.log.
func (c *Config) LogFileOrDefault() (string, error) {
	return pathOrDefault(c.Log.File, "starnote.log")
}

func pathOrDefault(path, name string) (string, error) {
	if path != "" {
		return path, nil
	}
	dir, err := EnsureDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// DataDir returns the path to the StarNote data directory (~/.config/starnote).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "starnote"), nil
}

// DefaultPath returns the config file location, <data dir>/config.toml.
func DefaultPath() string {
	dir, err := DataDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}
