// Package config handles fmelink configuration using Viper.
//
// Configuration sources (in priority order):
//  1. Environment variables (FMELINK_*)
//  2. Config file (~/.config/fmelink/config.yaml)
//  3. Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fmelink-dev/fmelink/internal/paths"
)

// Configuration keys.
const (
	KeyServerURL      = "server.url"
	KeyRepository     = "server.repository"
	KeySupportEmail   = "support.email"
	KeyRequestTimeout = "request.timeout_seconds"
)

// DefaultRequestTimeout is the default HTTP request timeout in seconds.
const DefaultRequestTimeout = 30

// Config holds the fmelink configuration.
type Config struct {
	v *viper.Viper
}

// Load reads configuration from all sources.
func Load() *Config {
	v := viper.New()

	v.SetDefault(KeyRequestTimeout, DefaultRequestTimeout)

	if configDir, err := paths.ConfigRoot(); err == nil {
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("FMELINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found, but warn on other errors)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: error reading config file: %v\n", err)
		}
	}

	return &Config{v: v}
}

// Get returns a configuration value.
func (c *Config) Get(key string) interface{} {
	return c.v.Get(key)
}

// GetString returns a configuration value as string.
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt returns a configuration value as int.
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// Set sets a configuration value and persists it.
func (c *Config) Set(key string, value interface{}) error {
	c.v.Set(key, value)
	return c.write()
}

// Unset removes a configuration value and persists the change.
func (c *Config) Unset(key string) error {
	// Viper has no delete; rebuild the settings map without the key.
	settings := c.v.AllSettings()
	removeKey(settings, strings.Split(key, "."))

	fresh := viper.New()
	if err := fresh.MergeConfigMap(settings); err != nil {
		return err
	}

	c.v = fresh
	c.v.SetDefault(KeyRequestTimeout, DefaultRequestTimeout)
	c.v.SetEnvPrefix("FMELINK")
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.v.AutomaticEnv()

	return c.write()
}

func removeKey(settings map[string]interface{}, path []string) {
	if len(path) == 0 {
		return
	}

	if len(path) == 1 {
		delete(settings, path[0])
		return
	}

	child, ok := settings[path[0]].(map[string]interface{})
	if !ok {
		return
	}

	removeKey(child, path[1:])
	if len(child) == 0 {
		delete(settings, path[0])
	}
}

func (c *Config) write() error {
	configDir, err := paths.ConfigRoot()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return err
	}

	return c.v.WriteConfigAs(filepath.Join(configDir, "config.yaml"))
}

// All returns all configuration as a map.
func (c *Config) All() map[string]interface{} {
	return c.v.AllSettings()
}

// ServerURL returns the configured FME Flow base URL.
func (c *Config) ServerURL() string {
	return c.GetString(KeyServerURL)
}

// Repository returns the selected repository name.
func (c *Config) Repository() string {
	return c.GetString(KeyRepository)
}

// SupportEmail returns the configured support contact address.
func (c *Config) SupportEmail() string {
	return c.GetString(KeySupportEmail)
}

// RequestTimeout returns the HTTP request timeout.
func (c *Config) RequestTimeout() time.Duration {
	secs := c.GetInt(KeyRequestTimeout)
	if secs <= 0 {
		secs = DefaultRequestTimeout
	}

	return time.Duration(secs) * time.Second
}
