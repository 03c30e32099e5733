package config

import (
	"bufio"
	"fmt"
	"os"
	"reflect"

	"github.com/naoina/toml"

	"github.com/initia-labs/movevm/internal/toolchain"
	"github.com/initia-labs/movevm/types"
)

// Config is the on-disk configuration of the movevm command.
type Config struct {
	Toolchain ToolchainConfig
	Test      TestConfig
	Log       LogConfig
}

// ToolchainConfig selects the Move toolchain binary.
type ToolchainConfig struct {
	Binary string
	Args   []string `toml:",omitempty"`
	Dir    string   `toml:",omitempty"`
}

// TestConfig holds unit test defaults.
type TestConfig struct {
	GasLimit   uint64
	NumThreads uint
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string
	Format string
	// File enables rotation through lumberjack when set.
	File       string `toml:",omitempty"`
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Toolchain: ToolchainConfig{
			Binary: toolchain.DefaultBinary,
			Args:   append([]string(nil), toolchain.DefaultPrefixArgs...),
		},
		Test: TestConfig{
			GasLimit:   toolchain.DefaultTestGasLimit,
			NumThreads: toolchain.DefaultNumThreads,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     FormatConsole,
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// Load reads file over the defaults. An empty file name returns the defaults.
func Load(file string) (Config, error) {
	cfg := Defaults()
	if file == "" {
		return cfg, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return cfg, types.NewConfigError("file", err)
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg)
	if _, ok := err.(*toml.LineError); ok {
		err = fmt.Errorf("%s, %w", file, err)
	}
	if err != nil {
		return cfg, types.NewConfigError("file", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values Load cannot reject syntactically.
func (c Config) Validate() error {
	if c.Toolchain.Binary == "" {
		return types.NewConfigError("Toolchain.Binary", fmt.Errorf("must not be empty"))
	}
	if c.Test.NumThreads == 0 {
		return types.NewConfigError("Test.NumThreads", fmt.Errorf("must be positive"))
	}
	switch c.Log.Format {
	case FormatConsole, FormatJSON:
	default:
		return types.NewConfigError("Log.Format", fmt.Errorf("unknown format %q", c.Log.Format))
	}
	return nil
}

// Dump renders c as TOML.
func (c Config) Dump() ([]byte, error) {
	return tomlSettings.Marshal(&c)
}
