package toolchain

import "github.com/rs/zerolog"

// DefaultTestGasLimit is the gas ceiling the unit test harness applies when the
// caller does not set one.
const DefaultTestGasLimit uint64 = 1_000_000_000

// DefaultNumThreads is the number of test threads used when unset.
const DefaultNumThreads = 8

// MoveArgs are the package-level arguments shared by every command.
type MoveArgs struct {
	// PackagePath is the package root. Nil means the working directory.
	PackagePath *string
	Verbose     bool
	BuildConfig BuildConfig
}

// BuildConfig configures how a package and its dependencies are compiled.
type BuildConfig struct {
	DevMode      bool
	TestMode     bool
	GenerateDocs bool
	GenerateABIs bool
	InstallDir   *string
	// ForceRecompilation rebuilds even if the build directory is up to date.
	ForceRecompilation     bool
	Architecture           Architecture
	FetchDepsOnly          bool
	SkipFetchLatestGitDeps bool
	CompilerConfig         CompilerConfig
}

// Architecture is the target bytecode flavor.
type Architecture string

// ArchitectureMove is the only architecture the bridge builds for.
const ArchitectureMove Architecture = "move"

// CompilerConfig carries compiler knobs. A nil BytecodeVersion selects the
// toolchain's default.
type CompilerConfig struct {
	BytecodeVersion *uint32
}

// TestConfig configures a unit test run.
type TestConfig struct {
	// GasLimit bounds each test. Nil means no limit is enforced.
	GasLimit              *uint64
	Filter                *string
	List                  bool
	NumThreads            uint
	ReportStatistics      bool
	ReportStorageOnError  bool
	IgnoreCompileWarnings bool
	CheckStacklessVM      bool
	VerboseMode           bool
	ComputeCoverage       bool
}

// Bounded reports whether a gas limit is enforced.
func (c TestConfig) Bounded() bool {
	return c.GasLimit != nil
}

// ProverOptions configures the prover.
type ProverOptions struct {
	// Verbosity is nil when the toolchain default should be used.
	Verbosity           *zerolog.Level
	Filter              *string
	Trace               bool
	CVC5                bool
	StratificationDepth uint
	RandomSeed          uint
	ProcCores           uint
	VCTimeout           uint
	CheckInconsistency  bool
	KeepLoops           bool
	// LoopUnroll is nil when unset.
	LoopUnroll       *uint64
	StableTestOutput bool
	Dump             bool
	ForTest          bool
}

// UnitTestingConfig is the runner-side test configuration.
type UnitTestingConfig struct {
	GasLimit              uint64
	Filter                *string
	List                  bool
	NumThreads            uint
	ReportStatistics      bool
	ReportStorageOnError  bool
	IgnoreCompileWarnings bool
	VerboseMode           bool
}

// DefaultWithBound returns the default unit testing configuration capped at
// bound gas units per test.
func DefaultWithBound(bound uint64) UnitTestingConfig {
	return UnitTestingConfig{
		GasLimit:   bound,
		NumThreads: DefaultNumThreads,
	}
}
