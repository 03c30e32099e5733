package api

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/initia-labs/movevm/internal/toolchain"
	"github.com/initia-labs/movevm/types"
)

type recordingToolchain struct {
	err  error
	args toolchain.MoveArgs
	cmd  toolchain.Command
	runs int
}

func (r *recordingToolchain) Run(args toolchain.MoveArgs, cmd toolchain.Command) error {
	r.args = args
	r.cmd = cmd
	r.runs++
	return r.err
}

func TestBuildConfigSentinels(t *testing.T) {
	bc, err := CompilerBuildConfig{BytecodeVersion: 0}.ToBuildConfig()
	require.NoError(t, err)
	assert.Nil(t, bc.CompilerConfig.BytecodeVersion)
	assert.Equal(t, toolchain.ArchitectureMove, bc.Architecture)

	bc, err = CompilerBuildConfig{BytecodeVersion: 6}.ToBuildConfig()
	require.NoError(t, err)
	require.NotNil(t, bc.CompilerConfig.BytecodeVersion)
	assert.Equal(t, uint32(6), *bc.CompilerConfig.BytecodeVersion)
}

func TestBuildConfigCopiesEveryField(t *testing.T) {
	installDir := []byte("/tmp/build")
	bc, err := CompilerBuildConfig{
		DevMode:                true,
		TestMode:               true,
		GenerateDocs:           true,
		GenerateABIs:           true,
		InstallDir:             MakeView(installDir),
		ForceRecompilation:     true,
		FetchDepsOnly:          true,
		SkipFetchLatestGitDeps: true,
		BytecodeVersion:        7,
	}.ToBuildConfig()
	require.NoError(t, err)

	assert.True(t, bc.DevMode)
	assert.True(t, bc.TestMode)
	assert.True(t, bc.GenerateDocs)
	assert.True(t, bc.GenerateABIs)
	assert.Equal(t, "/tmp/build", *bc.InstallDir)
	assert.True(t, bc.ForceRecompilation)
	assert.True(t, bc.FetchDepsOnly)
	assert.True(t, bc.SkipFetchLatestGitDeps)
	assert.Equal(t, uint32(7), *bc.CompilerConfig.BytecodeVersion)

	bc, err = CompilerBuildConfig{}.ToBuildConfig()
	require.NoError(t, err)
	assert.Nil(t, bc.InstallDir)
	assert.False(t, bc.DevMode)
}

func TestMoveArgsPackagePath(t *testing.T) {
	path := []byte("./move/std")
	args, err := CompilerArgument{PackagePath: MakeView(path), Verbose: true}.ToMoveArgs()
	require.NoError(t, err)
	require.NotNil(t, args.PackagePath)
	assert.Equal(t, "./move/std", *args.PackagePath)
	assert.True(t, args.Verbose)

	args, err = CompilerArgument{PackagePath: MakeView(nil)}.ToMoveArgs()
	require.NoError(t, err)
	assert.Nil(t, args.PackagePath)

	_, err = CompilerArgument{PackagePath: MakeView([]byte{0xff})}.ToMoveArgs()
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrMarshalling))
	assert.Contains(t, err.Error(), "package_path")
}

// A gas limit of 0 means unbounded, any other value caps test gas.
func TestTestOptionGasLimit(t *testing.T) {
	tc, err := CompilerTestOption{GasLimit: 0}.ToTestConfig()
	require.NoError(t, err)
	assert.Nil(t, tc.GasLimit)
	assert.False(t, tc.Bounded())

	tc, err = CompilerTestOption{GasLimit: 500}.ToTestConfig()
	require.NoError(t, err)
	require.NotNil(t, tc.GasLimit)
	assert.Equal(t, uint64(500), *tc.GasLimit)
	assert.True(t, tc.Bounded())
}

func TestTestOptionCopiesEveryField(t *testing.T) {
	tc, err := CompilerTestOption{
		GasLimit:              10,
		Filter:                MakeView([]byte("0x1::coin")),
		List:                  true,
		NumThreads:            3,
		ReportStatistics:      true,
		ReportStorageOnError:  true,
		IgnoreCompileWarnings: true,
		CheckStacklessVM:      true,
		VerboseMode:           true,
		ComputeCoverage:       true,
	}.ToTestConfig()
	require.NoError(t, err)
	assert.Equal(t, toolchain.TestConfig{
		GasLimit:              &[]uint64{10}[0],
		Filter:                &[]string{"0x1::coin"}[0],
		List:                  true,
		NumThreads:            3,
		ReportStatistics:      true,
		ReportStorageOnError:  true,
		IgnoreCompileWarnings: true,
		CheckStacklessVM:      true,
		VerboseMode:           true,
		ComputeCoverage:       true,
	}, tc)
}

func TestProveOptionSentinelsAndVerbosity(t *testing.T) {
	po, err := CompilerProveOption{}.ToProverOptions()
	require.NoError(t, err)
	assert.Nil(t, po.Verbosity)
	assert.Nil(t, po.LoopUnroll)
	assert.Nil(t, po.Filter)

	po, err = CompilerProveOption{
		Verbosity:  MakeView([]byte("Warn")),
		LoopUnroll: 4,
		ProcCores:  2,
		VCTimeout:  40,
		ForTest:    true,
	}.ToProverOptions()
	require.NoError(t, err)
	require.NotNil(t, po.Verbosity)
	assert.Equal(t, zerolog.WarnLevel, *po.Verbosity)
	assert.Equal(t, uint64(4), *po.LoopUnroll)
	assert.Equal(t, uint(2), po.ProcCores)
	assert.Equal(t, uint(40), po.VCTimeout)
	assert.True(t, po.ForTest)
}

func TestProveOptionRejectsUnknownVerbosity(t *testing.T) {
	_, err := CompilerProveOption{Verbosity: MakeView([]byte("loud"))}.ToProverOptions()
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidConfig))
	assert.Contains(t, err.Error(), "verbosity")
}

func TestParseVerbosity(t *testing.T) {
	cases := map[string]zerolog.Level{
		"off":   zerolog.Disabled,
		"ERROR": zerolog.ErrorLevel,
		"warn":  zerolog.WarnLevel,
		"info":  zerolog.InfoLevel,
		"debug": zerolog.DebugLevel,
		"trace": zerolog.TraceLevel,
	}
	for in, exp := range cases {
		lvl, err := ParseVerbosity(in)
		require.NoError(t, err, in)
		assert.Equal(t, exp, lvl, in)
	}
	for _, bad := range []string{"", " info ", "info\n", "chatty"} {
		_, err := ParseVerbosity(bad)
		require.Error(t, err, "%q", bad)
	}
}

func TestCompileSuccess(t *testing.T) {
	tc := &recordingToolchain{}
	out, err := Compile(tc, toolchain.MoveArgs{}, toolchain.Command{Kind: toolchain.CmdBuild})
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), out)
	assert.Equal(t, 1, tc.runs)
}

func TestCompileFailureMessages(t *testing.T) {
	tc := &recordingToolchain{err: pkgerrors.New("unbound module 0x1::missing")}

	_, err := Compile(tc, toolchain.MoveArgs{Verbose: false}, toolchain.Command{Kind: toolchain.CmdBuild})
	require.Error(t, err)
	short := err.Error()
	assert.Equal(t, "failed to build: unbound module 0x1::missing", short)
	assert.True(t, errors.Is(err, types.ErrBackendFailure))

	_, err = Compile(tc, toolchain.MoveArgs{Verbose: true}, toolchain.Command{Kind: toolchain.CmdBuild})
	require.Error(t, err)
	long := err.Error()
	assert.True(t, strings.HasPrefix(long, short), long)
	assert.Greater(t, len(long), len(short))
	assert.True(t, errors.Is(err, types.ErrBackendFailure))
}

func TestCompileVerboseAddsStackToPlainErrors(t *testing.T) {
	tc := &recordingToolchain{err: fmt.Errorf("prover timed out")}

	_, err := Compile(tc, toolchain.MoveArgs{}, toolchain.Command{Kind: toolchain.CmdProve})
	require.Error(t, err)
	assert.Equal(t, "failed to prove: prover timed out", err.Error())

	_, err = Compile(tc, toolchain.MoveArgs{Verbose: true}, toolchain.Command{Kind: toolchain.CmdProve})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to prove: prover timed out\n"))
	assert.Contains(t, err.Error(), "Compile")
}

func TestEntryPointsDispatchCommands(t *testing.T) {
	tc := &recordingToolchain{}
	arg := CompilerArgument{PackagePath: MakeView([]byte("pkg"))}

	_, err := BuildContract(tc, arg)
	require.NoError(t, err)
	assert.Equal(t, toolchain.CmdBuild, tc.cmd.Kind)
	assert.Equal(t, "pkg", *tc.args.PackagePath)

	_, err = TestContract(tc, arg, CompilerTestOption{GasLimit: 500})
	require.NoError(t, err)
	assert.Equal(t, toolchain.CmdTest, tc.cmd.Kind)
	require.NotNil(t, tc.cmd.Test)
	assert.Equal(t, uint64(500), *tc.cmd.Test.GasLimit)

	_, err = CoverageContract(tc, arg, toolchain.CoverageSource, MakeView([]byte("coin")))
	require.NoError(t, err)
	assert.Equal(t, toolchain.CmdCoverage, tc.cmd.Kind)
	assert.Equal(t, toolchain.CoverageSource, tc.cmd.Coverage)
	assert.Equal(t, "coin", tc.cmd.ModuleName)

	_, err = ProveContract(tc, arg, CompilerProveOption{Verbosity: MakeView([]byte("off"))})
	require.NoError(t, err)
	assert.Equal(t, toolchain.CmdProve, tc.cmd.Kind)
	assert.Equal(t, zerolog.Disabled, *tc.cmd.Prove.Verbosity)

	_, err = DocumentContract(tc, arg)
	require.NoError(t, err)
	assert.Equal(t, toolchain.CmdDocument, tc.cmd.Kind)

	_, err = CleanContract(tc, arg)
	require.NoError(t, err)
	assert.Equal(t, toolchain.CmdClean, tc.cmd.Kind)

	_, err = CreateContractPackage(tc, arg, MakeView([]byte("hello")))
	require.NoError(t, err)
	assert.Equal(t, toolchain.CmdNew, tc.cmd.Kind)
	assert.Equal(t, "hello", tc.cmd.PackageName)
	assert.Equal(t, 7, tc.runs)
}

func TestEntryPointsAbortBeforeToolchain(t *testing.T) {
	tc := &recordingToolchain{}
	arg := CompilerArgument{}

	_, err := ProveContract(tc, arg, CompilerProveOption{Verbosity: MakeView([]byte("nope"))})
	require.Error(t, err)
	_, err = TestContract(tc, arg, CompilerTestOption{Filter: MakeView([]byte{0xff})})
	require.Error(t, err)
	_, err = CreateContractPackage(tc, arg, MakeView(nil))
	require.Error(t, err)
	assert.Equal(t, 0, tc.runs)
}
