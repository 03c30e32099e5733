package api

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/initia-labs/movevm/internal/toolchain"
	"github.com/initia-labs/movevm/types"
)

// compileOK is the payload returned by every successful compile-family call.
var compileOK = []byte("ok")

// CompilerArgument mirrors the package argument record of the foreign ABI.
type CompilerArgument struct {
	// PackagePath is the package root. Absent means the working directory.
	PackagePath ByteSliceView
	// Verbose selects detailed failure messages.
	Verbose     bool
	BuildConfig CompilerBuildConfig
}

// CompilerBuildConfig mirrors the build configuration record of the foreign ABI.
type CompilerBuildConfig struct {
	DevMode                bool
	TestMode               bool
	GenerateDocs           bool
	GenerateABIs           bool
	InstallDir             ByteSliceView
	ForceRecompilation     bool
	FetchDepsOnly          bool
	SkipFetchLatestGitDeps bool
	// BytecodeVersion 0 selects the toolchain default.
	BytecodeVersion uint32
}

// CompilerTestOption mirrors the unit test record of the foreign ABI.
type CompilerTestOption struct {
	// GasLimit 0 disables the gas bound.
	GasLimit              uint64
	Filter                ByteSliceView
	List                  bool
	NumThreads            uint
	ReportStatistics      bool
	ReportStorageOnError  bool
	IgnoreCompileWarnings bool
	CheckStacklessVM      bool
	VerboseMode           bool
	ComputeCoverage       bool
}

// CompilerProveOption mirrors the prover record of the foreign ABI.
type CompilerProveOption struct {
	// Verbosity is one of off, error, warn, info, debug or trace.
	Verbosity           ByteSliceView
	Filter              ByteSliceView
	Trace               bool
	CVC5                bool
	StratificationDepth uint
	RandomSeed          uint
	ProcCores           uint
	VCTimeout           uint
	CheckInconsistency  bool
	KeepLoops           bool
	// LoopUnroll 0 leaves loops to the prover default.
	LoopUnroll       uint64
	StableTestOutput bool
	Dump             bool
	ForTest          bool
}

// optionalUint32 maps the zero sentinel to nil.
func optionalUint32(v uint32) *uint32 {
	if v == 0 {
		return nil
	}
	return &v
}

// optionalUint64 maps the zero sentinel to nil.
func optionalUint64(v uint64) *uint64 {
	if v == 0 {
		return nil
	}
	return &v
}

// ToMoveArgs converts the record into toolchain arguments.
func (a CompilerArgument) ToMoveArgs() (toolchain.MoveArgs, error) {
	path, err := readPathField("package_path", a.PackagePath)
	if err != nil {
		return toolchain.MoveArgs{}, err
	}
	bc, err := a.BuildConfig.ToBuildConfig()
	if err != nil {
		return toolchain.MoveArgs{}, err
	}
	return toolchain.MoveArgs{
		PackagePath: path,
		Verbose:     a.Verbose,
		BuildConfig: bc,
	}, nil
}

// ToBuildConfig converts the record into a toolchain build configuration.
func (c CompilerBuildConfig) ToBuildConfig() (toolchain.BuildConfig, error) {
	installDir, err := readPathField("install_dir", c.InstallDir)
	if err != nil {
		return toolchain.BuildConfig{}, err
	}
	return toolchain.BuildConfig{
		DevMode:                c.DevMode,
		TestMode:               c.TestMode,
		GenerateDocs:           c.GenerateDocs,
		GenerateABIs:           c.GenerateABIs,
		InstallDir:             installDir,
		ForceRecompilation:     c.ForceRecompilation,
		Architecture:           toolchain.ArchitectureMove,
		FetchDepsOnly:          c.FetchDepsOnly,
		SkipFetchLatestGitDeps: c.SkipFetchLatestGitDeps,
		CompilerConfig: toolchain.CompilerConfig{
			BytecodeVersion: optionalUint32(c.BytecodeVersion),
		},
	}, nil
}

// ToTestConfig converts the record into a toolchain test configuration.
func (o CompilerTestOption) ToTestConfig() (toolchain.TestConfig, error) {
	filter, err := readStringField("filter", o.Filter)
	if err != nil {
		return toolchain.TestConfig{}, err
	}
	return toolchain.TestConfig{
		GasLimit:              optionalUint64(o.GasLimit),
		Filter:                filter,
		List:                  o.List,
		NumThreads:            o.NumThreads,
		ReportStatistics:      o.ReportStatistics,
		ReportStorageOnError:  o.ReportStorageOnError,
		IgnoreCompileWarnings: o.IgnoreCompileWarnings,
		CheckStacklessVM:      o.CheckStacklessVM,
		VerboseMode:           o.VerboseMode,
		ComputeCoverage:       o.ComputeCoverage,
	}, nil
}

// ToProverOptions converts the record into prover options. An unknown
// verbosity aborts the conversion.
func (o CompilerProveOption) ToProverOptions() (toolchain.ProverOptions, error) {
	verbosityText, err := readStringField("verbosity", o.Verbosity)
	if err != nil {
		return toolchain.ProverOptions{}, err
	}
	var verbosity *zerolog.Level
	if verbosityText != nil {
		lvl, err := ParseVerbosity(*verbosityText)
		if err != nil {
			return toolchain.ProverOptions{}, types.NewConfigError("verbosity", err)
		}
		verbosity = &lvl
	}
	filter, err := readStringField("filter", o.Filter)
	if err != nil {
		return toolchain.ProverOptions{}, err
	}
	return toolchain.ProverOptions{
		Verbosity:           verbosity,
		Filter:              filter,
		Trace:               o.Trace,
		CVC5:                o.CVC5,
		StratificationDepth: o.StratificationDepth,
		RandomSeed:          o.RandomSeed,
		ProcCores:           o.ProcCores,
		VCTimeout:           o.VCTimeout,
		CheckInconsistency:  o.CheckInconsistency,
		KeepLoops:           o.KeepLoops,
		LoopUnroll:          optionalUint64(o.LoopUnroll),
		StableTestOutput:    o.StableTestOutput,
		Dump:                o.Dump,
		ForTest:             o.ForTest,
	}, nil
}

var verbosityLevels = map[string]zerolog.Level{
	"off":   zerolog.Disabled,
	"error": zerolog.ErrorLevel,
	"warn":  zerolog.WarnLevel,
	"info":  zerolog.InfoLevel,
	"debug": zerolog.DebugLevel,
	"trace": zerolog.TraceLevel,
}

// ParseVerbosity parses a log level filter, case insensitively. Surrounding
// whitespace is rejected.
func ParseVerbosity(s string) (zerolog.Level, error) {
	lower := strings.ToLower(s)
	if lvl, ok := verbosityLevels[lower]; ok {
		return lvl, nil
	}
	return zerolog.NoLevel, fmt.Errorf("unknown level %q", s)
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Compile runs cmd on tc. Success returns "ok". Failures become a backend
// failure reading "failed to <action>: <reason>"; the verbose form appends the
// error's stack trace to the same text.
func Compile(tc toolchain.Toolchain, args toolchain.MoveArgs, cmd toolchain.Command) ([]byte, error) {
	action := cmd.Action()
	err := tc.Run(args, cmd)
	if err == nil {
		return append([]byte(nil), compileOK...), nil
	}
	if args.Verbose {
		if _, ok := err.(stackTracer); !ok {
			err = errors.WithStack(err)
		}
		return nil, types.NewBackendFailure(fmt.Sprintf("failed to %s: %+v", action, err))
	}
	return nil, types.NewBackendFailure(fmt.Sprintf("failed to %s: %v", action, err))
}

func compileWith(tc toolchain.Toolchain, arg CompilerArgument, cmd toolchain.Command) ([]byte, error) {
	args, err := arg.ToMoveArgs()
	if err != nil {
		return nil, err
	}
	return Compile(tc, args, cmd)
}

// BuildContract builds the package.
func BuildContract(tc toolchain.Toolchain, arg CompilerArgument) ([]byte, error) {
	return compileWith(tc, arg, toolchain.Command{Kind: toolchain.CmdBuild})
}

// TestContract runs the package's unit tests.
func TestContract(tc toolchain.Toolchain, arg CompilerArgument, opt CompilerTestOption) ([]byte, error) {
	test, err := opt.ToTestConfig()
	if err != nil {
		return nil, err
	}
	return compileWith(tc, arg, toolchain.Command{Kind: toolchain.CmdTest, Test: &test})
}

// CoverageContract prints coverage collected by a previous test run.
func CoverageContract(tc toolchain.Toolchain, arg CompilerArgument, opt toolchain.CoverageOption, moduleName ByteSliceView) ([]byte, error) {
	module, err := readStringField("module_name", moduleName)
	if err != nil {
		return nil, err
	}
	cmd := toolchain.Command{Kind: toolchain.CmdCoverage, Coverage: opt}
	if module != nil {
		cmd.ModuleName = *module
	}
	return compileWith(tc, arg, cmd)
}

// ProveContract runs the prover on the package.
func ProveContract(tc toolchain.Toolchain, arg CompilerArgument, opt CompilerProveOption) ([]byte, error) {
	prove, err := opt.ToProverOptions()
	if err != nil {
		return nil, err
	}
	return compileWith(tc, arg, toolchain.Command{Kind: toolchain.CmdProve, Prove: &prove})
}

// DocumentContract generates package documentation.
func DocumentContract(tc toolchain.Toolchain, arg CompilerArgument) ([]byte, error) {
	return compileWith(tc, arg, toolchain.Command{Kind: toolchain.CmdDocument})
}

// CleanContract removes build artifacts.
func CleanContract(tc toolchain.Toolchain, arg CompilerArgument) ([]byte, error) {
	return compileWith(tc, arg, toolchain.Command{Kind: toolchain.CmdClean})
}

// CreateContractPackage scaffolds a new package called name.
func CreateContractPackage(tc toolchain.Toolchain, arg CompilerArgument, name ByteSliceView) ([]byte, error) {
	pkgName, err := readStringField("name", name)
	if err != nil {
		return nil, err
	}
	if pkgName == nil {
		return nil, types.NewMarshallingError("name", errors.New("package name is required"))
	}
	return compileWith(tc, arg, toolchain.Command{Kind: toolchain.CmdNew, PackageName: *pkgName})
}
