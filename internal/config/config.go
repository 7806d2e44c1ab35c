package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override the config file
const (
	EnvCardsRoot = "DECKCREATOR_CARDS_ROOT"
	EnvLogLevel  = "DECKCREATOR_LOG_LEVEL"
	EnvStrict    = "DECKCREATOR_STRICT"
)

// Config represents the application configuration
type Config struct {
	CardsRoot   string        `toml:"cards_root"`
	Extensions  []string      `toml:"extensions"`
	ExcludeDirs []string      `toml:"exclude_dirs"`
	Strict      bool          `toml:"strict"`
	Workers     int           `toml:"workers"`
	CacheSize   int           `toml:"cache_size"`
	Logging     LoggingConfig `toml:"logging"`
	Session     SessionConfig `toml:"session"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `toml:"level"`
	// Format is the log output format: "json" or "console".
	Format string `toml:"format"`
}

// SessionConfig controls the class selection prompts.
type SessionConfig struct {
	// StrictRunes rejects rune letters other than B, F and U.
	StrictRunes bool `toml:"strict_runes"`
	// RuneClasses are the classes that pick three runes.
	RuneClasses []string `toml:"rune_classes"`
	// Attempts bounds how many sessions deck create runs when answers are
	// rejected. The card tree is reloaded before each one.
	Attempts int `toml:"attempts"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		CardsRoot:   filepath.Join("..", "cards"),
		Extensions:  []string{".js"},
		ExcludeDirs: []string{"Tests", "Examples"},
		Workers:     runtime.NumCPU(),
		CacheSize:   1024,
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Session: SessionConfig{
			RuneClasses: []string{"Death Knight"},
			Attempts:    3,
		},
	}
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "deckcreator", "config.toml")
}

// LoadConfig loads the config file from its default location
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(GetConfigFilePath())
}

// LoadConfigFrom loads the config file at configPath, writing a default one
// if it doesn't exist, then applies .env and environment overrides.
func LoadConfigFrom(configPath string) (*Config, error) {
	var config *Config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config, err = createDefaultConfig(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		c := Default()
		if _, err := toml.DecodeFile(configPath, &c); err != nil {
			return nil, fmt.Errorf("error decoding config file: %w", err)
		}
		config = &c
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// createDefaultConfig creates a default config file
func createDefaultConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	// Ensure the config directory exists
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %w", err)
	}

	config := Default()

	file, err := os.Create(configPath)
	if err != nil {
		return nil, fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return nil, fmt.Errorf("error encoding config: %w", err)
	}

	return &config, nil
}

// applyEnv loads .env from the working directory, if present, and applies
// DECKCREATOR_* variables on top of the file values.
func applyEnv(config *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error loading .env: %w", err)
	}

	if root := os.Getenv(EnvCardsRoot); root != "" {
		config.CardsRoot = root
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		config.Logging.Level = level
	}
	if strict := os.Getenv(EnvStrict); strict != "" {
		v, err := strconv.ParseBool(strict)
		if err != nil {
			return fmt.Errorf("%s must be a boolean, got %q", EnvStrict, strict)
		}
		config.Strict = v
	}
	return nil
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.CardsRoot) == "" {
		errs = append(errs, "cards_root must not be empty")
	}
	if len(c.Extensions) == 0 {
		errs = append(errs, "extensions must list at least one extension")
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Sprintf("workers must be >= 1, got %d", c.Workers))
	}
	if c.CacheSize < 0 {
		errs = append(errs, fmt.Sprintf("cache_size must be >= 0, got %d", c.CacheSize))
	}
	if c.Session.Attempts < 1 {
		errs = append(errs, fmt.Sprintf("session.attempts must be >= 1, got %d", c.Session.Attempts))
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", c.Logging.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, console], got %q", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
