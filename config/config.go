// Package config resolves nanotodo settings from, in increasing order of
// precedence, built-in defaults, an optional YAML config file and TODO_*
// environment variables. Command-line flags are layered on top by the CLI.
//
// Everything is read at call time, so a Registry constructed after an
// environment change sees the new values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment variable name
	EnvPrefix = "TODO"

	// EnvFile overrides the task store location
	EnvFile = "TODO_FILE"

	// EnvMemory switches the registry to in-memory mode
	EnvMemory = "TODO_MEMORY"

	// EnvLogLevel sets the diagnostics level
	EnvLogLevel = "TODO_LOG_LEVEL"

	// EnvConfig points at an explicit config file
	EnvConfig = "TODO_CONFIG"

	// DirName is the per-user directory holding the store and config
	DirName = ".todo"

	// FileName is the default store file name
	FileName = "tasks.json"

	// ConfigFileName is the default config file name inside DirName
	ConfigFileName = "config.yaml"

	// DefaultLogLevel is used when nothing else is configured
	DefaultLogLevel = "warn"
)

// Config holds the resolved settings
type Config struct {
	// File is the absolute path of the task store
	File string `mapstructure:"file"`

	// Memory keeps tasks in process memory only
	Memory bool `mapstructure:"memory"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `mapstructure:"log_level"`

	// ConfigFile is the config file that was read, if any
	ConfigFile string `mapstructure:"-"`
}

// Load resolves the configuration from the config file and environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("file", "")
	v.SetDefault("memory", false)
	v.SetDefault("log_level", DefaultLogLevel)

	v.SetEnvPrefix(EnvPrefix)
	_ = v.BindEnv("file", EnvFile)
	_ = v.BindEnv("memory", EnvMemory)
	_ = v.BindEnv("log_level", EnvLogLevel)

	configFile, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.ConfigFile = configFile

	cfg.File, err = resolveFile(cfg.File)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// readConfigFile loads TODO_CONFIG when set, otherwise the default config
// file if it exists. It returns the path that was read.
func readConfigFile(v *viper.Viper) (string, error) {
	path := os.Getenv(EnvConfig)
	explicit := path != ""

	if explicit {
		expanded, err := ExpandHome(path)
		if err != nil {
			return "", err
		}
		path = expanded
	} else {
		dir, err := DefaultDir()
		if err != nil {
			// No home directory: run on env and defaults alone
			return "", nil
		}
		path = filepath.Join(dir, ConfigFileName)
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if explicit {
			return "", fmt.Errorf("config file not found: %s", path)
		}
		return "", nil
	}

	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return path, nil
}

// ResolvePath returns the task store location: TODO_FILE (or the config
// file's "file" key) when set, otherwise ~/.todo/tasks.json.
func ResolvePath() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	return cfg.File, nil
}

func resolveFile(override string) (string, error) {
	if strings.TrimSpace(override) != "" {
		return ExpandHome(override)
	}
	return DefaultPath()
}

// DefaultDir returns ~/.todo
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// DefaultPath returns ~/.todo/tasks.json
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
// Other paths are returned unchanged.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", path, err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
