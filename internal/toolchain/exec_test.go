package toolchain

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestArgvBuild(t *testing.T) {
	args := MoveArgs{
		PackagePath: ptr("./pkg"),
		Verbose:     true,
		BuildConfig: BuildConfig{
			DevMode:        true,
			InstallDir:     ptr("/tmp/out"),
			CompilerConfig: CompilerConfig{BytecodeVersion: ptr(uint32(6))},
		},
	}
	argv := Argv(args, Command{Kind: CmdBuild})
	assert.Equal(t, []string{
		"build", "--path", "./pkg", "--verbose", "--dev",
		"--install-dir", "/tmp/out", "--bytecode-version", "6",
	}, argv)
}

func TestArgvTestGasLimit(t *testing.T) {
	unbounded := Argv(MoveArgs{}, Command{Kind: CmdTest, Test: &TestConfig{}})
	assert.Equal(t, []string{"test"}, unbounded)

	bounded := Argv(MoveArgs{}, Command{Kind: CmdTest, Test: &TestConfig{
		GasLimit:   ptr(uint64(500)),
		Filter:     ptr("coin"),
		NumThreads: 2,
	}})
	assert.Equal(t, []string{"test", "--gas-limit", "500", "--filter", "coin", "--threads", "2"}, bounded)
}

func TestArgvProve(t *testing.T) {
	lvl := zerolog.WarnLevel
	argv := Argv(MoveArgs{}, Command{Kind: CmdProve, Prove: &ProverOptions{
		Verbosity:  &lvl,
		ProcCores:  4,
		LoopUnroll: ptr(uint64(3)),
		ForTest:    true,
	}})
	assert.Equal(t, []string{
		"prove", "--verbosity", "warn", "--proc-cores", "4", "--loop-unroll", "3", "--for-test",
	}, argv)
}

func TestArgvCoverageAndNew(t *testing.T) {
	assert.Equal(t, []string{"coverage", "summary"},
		Argv(MoveArgs{}, Command{Kind: CmdCoverage, Coverage: CoverageSummary}))
	assert.Equal(t, []string{"coverage", "source", "--module", "coin"},
		Argv(MoveArgs{}, Command{Kind: CmdCoverage, Coverage: CoverageSource, ModuleName: "coin"}))
	assert.Equal(t, []string{"new", "hello"},
		Argv(MoveArgs{}, Command{Kind: CmdNew, PackageName: "hello"}))
}

func TestCommandKindString(t *testing.T) {
	assert.Equal(t, "document", CmdDocument.String())
	assert.Equal(t, "command(42)", CommandKind(42).String())
	assert.Equal(t, "bytecode", CoverageBytecode.String())
}

func shToolchain(script string) *ExecToolchain {
	return &ExecToolchain{
		Binary: "sh",
		Args:   []string{"-c", script, "sh"},
		Logger: zerolog.Nop(),
	}
}

func TestExecToolchainSuccess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	var out bytes.Buffer
	tc := shToolchain(`echo "$@"`)
	tc.Stdout = &out
	err := tc.Run(MoveArgs{PackagePath: ptr("pkg")}, Command{Kind: CmdBuild})
	require.NoError(t, err)
	assert.Equal(t, "build --path pkg\n", out.String())
}

func TestExecToolchainFailureCarriesStderr(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	tc := shToolchain(`echo "error: unbound module" >&2; exit 2`)
	err := tc.Run(MoveArgs{}, Command{Kind: CmdTest, Test: &TestConfig{}})
	require.Error(t, err)
	assert.Equal(t, "sh test: error: unbound module", err.Error())
}

func TestExecToolchainFailureWithoutStderr(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	err := shToolchain(`exit 3`).Run(MoveArgs{}, Command{Kind: CmdClean})
	require.Error(t, err)
	assert.Equal(t, "sh clean: exit status 3", err.Error())
}

func TestDefaultWithBound(t *testing.T) {
	c := DefaultWithBound(DefaultTestGasLimit)
	assert.Equal(t, uint64(1_000_000_000), c.GasLimit)
	assert.Equal(t, uint(DefaultNumThreads), c.NumThreads)
	assert.False(t, TestConfig{}.Bounded())
	assert.True(t, TestConfig{GasLimit: ptr(uint64(1))}.Bounded())
}
