// Package config loads the optional user configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
)

const (
	appName  = "smriti"
	fileName = "config.toml"
)

// Config holds user preferences. The location of the command store is
// fixed and deliberately not part of it.
type Config struct {
	LogLevel  string `toml:"log_level"`
	LogPretty bool   `toml:"log_pretty"`
	Shell     string `toml:"shell"`
	Echo      bool   `toml:"echo"`
	NoColor   bool   `toml:"no_color"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		LogLevel:  "warn",
		LogPretty: true,
		Shell:     "sh",
		Echo:      true,
	}
}

// Path returns the default config file location:
// $XDG_CONFIG_HOME/smriti/config.toml, or ~/.config/smriti/config.toml.
func Path() string {
	return filepath.Join(getEnvOrDefault("XDG_CONFIG_HOME", defaultConfigHome()), appName, fileName)
}

// Load reads path from fs on top of the defaults. A missing file is not an
// error.
func Load(fs afero.Fs, path string) (*Config, error) {
	cfg := Default()

	data, err := afero.ReadFile(fs, path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Shell == "" {
		c.Shell = "sh"
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultConfigHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config")
}
