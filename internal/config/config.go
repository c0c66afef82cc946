// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

// Package config loads the settings of the judy command.
//
// Settings come from, in increasing priority: built-in defaults, an
// optional configuration file (any format viper reads: TOML, YAML, JSON),
// environment variables prefixed with JUDY_ and command line flags bound
// with BindFlags.
package config

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/k33nice/judy"
)

// EnvPrefix prefixes the environment variables read by Load.
const EnvPrefix = "JUDY"

// Config holds the array geometry and logging settings.
type Config struct {
	MaxKeyLen int       `mapstructure:"max_key_len"`
	Depth     int       `mapstructure:"depth"`
	MaxNodes  int       `mapstructure:"max_nodes"`
	Log       LogConfig `mapstructure:"log"`
}

// LogConfig selects where and how much the command logs.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	File   string `mapstructure:"file"`
	Stderr bool   `mapstructure:"stderr"`
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"max-key-len": "max_key_len",
	"depth":       "depth",
	"max-nodes":   "max_nodes",
	"log-level":   "log.level",
	"log-file":    "log.file",
	"log-stderr":  "log.stderr",
}

// New returns a viper instance holding the defaults.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("max_key_len", 256)
	v.SetDefault("depth", 0)
	v.SetDefault("max_nodes", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.stderr", false)
}

// BindFlags binds the flags of fs that carry settings. A flag overrides
// the other sources only when it was set on the command line.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flg := fs.Lookup(name)
		if flg == nil {
			continue
		}
		if err := v.BindPFlag(key, flg); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the configuration file at path, if any, applies the
// environment and returns the validated settings.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the array geometry and the log level.
func (c *Config) Validate() error {
	if _, err := judy.NewCodec(c.MaxKeyLen, c.Depth); err != nil {
		return err
	}
	if c.MaxNodes < 0 {
		return fmt.Errorf("%w: negative max nodes %d", judy.ErrInvalidConfig, c.MaxNodes)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Open creates an empty array with the configured geometry.
func (c *Config) Open(logger log.FieldLogger) (*judy.Array, error) {
	return judy.Open(c.MaxKeyLen, c.Depth, judy.WithLogger(logger), judy.WithMaxNodes(c.MaxNodes))
}
