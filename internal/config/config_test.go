// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k33nice/judy"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, 256, cfg.MaxKeyLen)
	assert.Equal(t, 0, cfg.Depth)
	assert.Equal(t, 0, cfg.MaxNodes)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Log.File)
	assert.False(t, cfg.Log.Stderr)
}

func TestLoadConfigFile(t *testing.T) {
	content := `
max_key_len = 16
depth = 8

[log]
level = "debug"
stderr = true
`
	path := filepath.Join(t.TempDir(), "judy.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.MaxKeyLen)
	assert.Equal(t, 8, cfg.Depth)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Stderr)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "judy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_key_len: 16\nlog:\n  level: warn\n"), 0644))

	t.Setenv("JUDY_MAX_KEY_LEN", "32")
	t.Setenv("JUDY_LOG_LEVEL", "trace")

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.MaxKeyLen)
	assert.Equal(t, "trace", cfg.Log.Level)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("JUDY_MAX_KEY_LEN", "32")
	t.Setenv("JUDY_MAX_NODES", "100")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("max-key-len", 256, "")
	fs.Int("max-nodes", 0, "")
	require.NoError(t, fs.Parse([]string{"--max-key-len=64"}))

	v := New()
	require.NoError(t, BindFlags(v, fs))
	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.MaxKeyLen, "a flag set on the command line wins")
	assert.Equal(t, 100, cfg.MaxNodes, "an unset flag leaves the environment in charge")
}

func TestConfigValidation(t *testing.T) {
	valid := Config{MaxKeyLen: 8, Depth: 4, Log: LogConfig{Level: "info"}}
	assert.NoError(t, valid.Validate())

	badDepth := valid
	badDepth.Depth = 3
	assert.True(t, errors.Is(badDepth.Validate(), judy.ErrInvalidConfig))

	badNodes := valid
	badNodes.MaxNodes = -1
	assert.True(t, errors.Is(badNodes.Validate(), judy.ErrInvalidConfig))

	badLevel := valid
	badLevel.Log.Level = "loud"
	assert.Error(t, badLevel.Validate())

	path := filepath.Join(t.TempDir(), "judy.toml")
	require.NoError(t, os.WriteFile(path, []byte("max_key_len = 12\ndepth = 8\n"), 0644))
	_, err := Load(New(), path)
	assert.True(t, errors.Is(err, judy.ErrInvalidConfig))
}

func TestOpenUsesGeometry(t *testing.T) {
	logger := log.New()
	logger.SetOutput(io.Discard)

	cfg := Config{MaxKeyLen: 16, Depth: 8, MaxNodes: 3, Log: LogConfig{Level: "info"}}
	a, err := cfg.Open(logger)
	require.NoError(t, err)
	assert.Equal(t, 16, a.MaxKeyLen())
	assert.Equal(t, 8, a.Depth())

	// Two leaves and the node joining them fill the store.
	require.NoError(t, a.Insert(judy.Key{1}, 1))
	require.NoError(t, a.Insert(judy.Key{2}, 2))
	assert.True(t, errors.Is(a.Insert(judy.Key{3}, 3), judy.ErrAllocation))
}
