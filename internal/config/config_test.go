package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/initia-labs/movevm/internal/toolchain"
	"github.com/initia-labs/movevm/types"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movevm.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, toolchain.DefaultTestGasLimit, cfg.Test.GasLimit)
	assert.Equal(t, uint(toolchain.DefaultNumThreads), cfg.Test.NumThreads)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
[Toolchain]
Binary = "/usr/local/bin/initiad"

[Test]
GasLimit = 5000

[Log]
Level = "debug"
Format = "json"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/initiad", cfg.Toolchain.Binary)
	assert.Equal(t, []string{"move"}, cfg.Toolchain.Args)
	assert.Equal(t, uint64(5000), cfg.Test.GasLimit)
	assert.Equal(t, uint(toolchain.DefaultNumThreads), cfg.Test.NumThreads)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, FormatJSON, cfg.Log.Format)
}

func TestLoadErrors(t *testing.T) {
	specs := map[string]struct {
		content string
		field   string
	}{
		"unknown field": {content: "[Test]\nGasLimitt = 1\n", field: "invalid file"},
		"bad syntax":    {content: "[Test\n", field: "invalid file"},
		"zero threads":  {content: "[Test]\nNumThreads = 0\n", field: "Test.NumThreads"},
		"bad format":    {content: "[Log]\nFormat = \"xml\"\n", field: "Log.Format"},
		"no binary":     {content: "[Toolchain]\nBinary = \"\"\n", field: "Toolchain.Binary"},
	}
	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, spec.content))
			require.ErrorIs(t, err, types.ErrInvalidConfig)
			assert.Contains(t, err.Error(), spec.field)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorIs(t, err, types.ErrInvalidConfig)
}

func TestDumpRoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.Test.GasLimit = 42
	out, err := cfg.Dump()
	require.NoError(t, err)
	assert.Contains(t, string(out), "GasLimit = 42")

	loaded, err := Load(writeFile(t, string(out)))
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestNewLogger(t *testing.T) {
	lc := Defaults().Log
	lc.File = filepath.Join(t.TempDir(), "movevm.log")
	lc.Format = FormatJSON
	logger, closer, err := lc.NewLogger()
	require.NoError(t, err)
	logger.Info().Str("k", "v").Msg("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(lc.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.Contains(t, string(data), `"k":"v"`)

	lc.Level = "loud"
	_, closer, err = lc.NewLogger()
	require.ErrorIs(t, err, types.ErrInvalidConfig)
	assert.NotNil(t, closer)
}
