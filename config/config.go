// Package config loads satchel configuration via Viper. Precedence,
// lowest to highest: built-in defaults, ~/.satchel/config.toml, a
// project-local satchel.toml, then SATCHEL_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/satchelhq/satchel/errors"
)

// Config is the full satchel configuration tree.
type Config struct {
	Redis RedisConfig `mapstructure:"redis"`
	Log   LogConfig   `mapstructure:"log"`
}

// RedisConfig selects the backing Redis instance.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig controls logger output.
type LogConfig struct {
	JSON bool `mapstructure:"json"`
}

var globalConfig *Config

// Load reads the configuration, caching the result for the process.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := viper.New()
	v.SetEnvPrefix("SATCHEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	mergeConfigFiles(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	globalConfig = &config
	return globalConfig, nil
}

// LoadFromFile loads configuration from a specific file, bypassing the
// search path and the cache.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config from %s", path)
	}
	return &config, nil
}

// Reset clears the cached configuration (useful for testing).
func Reset() {
	globalConfig = nil
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.json", false)
}

// mergeConfigFiles merges config files in precedence order: user config
// below a project-local satchel.toml. Missing files are skipped.
func mergeConfigFiles(v *viper.Viper) {
	var paths []string
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".satchel", "config.toml"))
	}
	paths = append(paths, "satchel.toml")

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		fileViper := viper.New()
		fileViper.SetConfigFile(path)
		fileViper.SetConfigType("toml")
		if err := fileViper.ReadInConfig(); err != nil {
			continue
		}
		for key, value := range fileViper.AllSettings() {
			v.Set(key, value)
		}
	}
}
