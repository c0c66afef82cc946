// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k33nice/judy"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeKeys(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keys.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "judy version "+Version)
}

func TestLoadPrintsStats(t *testing.T) {
	out, err := run(t, "load", "../../testdata/words.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "keys")
	assert.Contains(t, out, "5000")
	assert.Contains(t, out, "node4")
	assert.Contains(t, out, "node256")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := run(t, "load", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestScan(t *testing.T) {
	// Values are line numbers: b=1, a=2, c=3, ab=4.
	path := writeKeys(t, "b\na\n\nc\nab\n")

	var testData = []struct {
		args     []string
		expected string
	}{
		{nil, "a\t2\nab\t4\nb\t1\nc\t3\n"},
		{[]string{"--limit", "2"}, "a\t2\nab\t4\n"},
		{[]string{"--from", "aa"}, "ab\t4\nb\t1\nc\t3\n"},
		{[]string{"--from", "b"}, "b\t1\nc\t3\n"},
		{[]string{"--from", "d"}, ""},
		{[]string{"--reverse"}, "c\t3\nb\t1\nab\t4\na\t2\n"},
		{[]string{"--reverse", "--from", "abc"}, "ab\t4\na\t2\n"},
		{[]string{"--reverse", "--from", "b"}, "b\t1\nab\t4\na\t2\n"},
		{[]string{"--reverse", "--from", "zzz"}, "c\t3\nb\t1\nab\t4\na\t2\n"},
		{[]string{"-r", "--from", "0"}, ""},
	}

	for _, data := range testData {
		out, err := run(t, append([]string{"scan", path}, data.args...)...)
		require.NoError(t, err, "%v", data.args)
		assert.Equal(t, data.expected, out, "%v", data.args)
	}
}

func TestScanFixedWidthKeys(t *testing.T) {
	path := writeKeys(t, "1 2\n300\n0 1\n0x10\n")

	out, err := run(t, "--depth", "8", "--max-key-len", "16", "scan", path)
	require.NoError(t, err)
	assert.Equal(t, "0 1\t3\n0 16\t4\n0 300\t2\n1 2\t1\n", out)

	_, err = run(t, "--depth", "1", "--max-key-len", "2", "scan", writeKeys(t, "256\n"))
	assert.True(t, errors.Is(err, judy.ErrWordOverflow))
}

func TestGet(t *testing.T) {
	path := writeKeys(t, "alpha\nbeta\ngamma\n")

	out, err := run(t, "get", path, "beta")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	_, err = run(t, "get", path, "delta")
	assert.True(t, errors.Is(err, errKeyNotFound))
}

func TestKeyTooLong(t *testing.T) {
	path := writeKeys(t, "short\nmuch too long\n")
	_, err := run(t, "--max-key-len", "8", "load", path)
	assert.True(t, errors.Is(err, judy.ErrKeyTooLong))
}

func TestInvalidConfiguration(t *testing.T) {
	_, err := run(t, "--depth", "3", "version")
	assert.True(t, errors.Is(err, judy.ErrInvalidConfig))

	_, err = run(t, "--log-level", "loud", "version")
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "judy.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("max_key_len = 3\n"), 0644))

	_, err := run(t, "--config", cfg, "load", writeKeys(t, "abcd\n"))
	assert.True(t, errors.Is(err, judy.ErrKeyTooLong))

	// Flags win over the file.
	_, err = run(t, "--config", cfg, "--max-key-len", "4", "load", writeKeys(t, "abcd\n"))
	assert.NoError(t, err)
}

func TestLogFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "judy.log")

	_, err := run(t, "--log-file", logFile, "--log-level", "debug", "version")
	require.NoError(t, err)

	b, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), "judy starting")
	assert.Contains(t, string(b), "judy done")
}

func TestBench(t *testing.T) {
	out, err := run(t, "--max-key-len", "12", "bench", "--keys", "2000", "--seed", "7", "--clones", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "btree")
	assert.Contains(t, out, "judy")
	assert.Contains(t, out, "3 clones verified")
}

func TestBenchFixedWidth(t *testing.T) {
	_, err := run(t, "--depth", "4", "--max-key-len", "8", "bench", "--keys", "500")
	assert.NoError(t, err)
}

func TestBenchNodeCap(t *testing.T) {
	_, err := run(t, "--max-nodes", "10", "bench", "--keys", "100")
	assert.True(t, errors.Is(err, judy.ErrAllocation))
}
