package movevm

import (
	"github.com/rs/zerolog"

	"github.com/initia-labs/movevm/internal/api"
	"github.com/initia-labs/movevm/internal/metrics"
	"github.com/initia-labs/movevm/internal/natives"
	"github.com/initia-labs/movevm/internal/toolchain"
	"github.com/initia-labs/movevm/internal/unittest"
	"github.com/initia-labs/movevm/types"
)

// ByteSliceView is a borrowed, possibly nil byte slice handed over by the caller.
type ByteSliceView = api.ByteSliceView

// MakeView borrows s. A nil s yields a nil view.
func MakeView(s []byte) ByteSliceView { return api.MakeView(s) }

// Compiler configuration records, laid out as the foreign caller sends them.
type (
	CompilerArgument    = api.CompilerArgument
	CompilerBuildConfig = api.CompilerBuildConfig
	CompilerTestOption  = api.CompilerTestOption
	CompilerProveOption = api.CompilerProveOption
)

// CoverageOption selects a coverage report.
type CoverageOption = toolchain.CoverageOption

const (
	CoverageSummary  = toolchain.CoverageSummary
	CoverageSource   = toolchain.CoverageSource
	CoverageBytecode = toolchain.CoverageBytecode
)

// Toolchain runs Move package commands.
type Toolchain = toolchain.Toolchain

// GoAPI is the set of host callbacks natives may use.
type GoAPI = types.GoAPI

// Compiler is the main entry point of this library for package commands.
// Every call is counted in the configured metrics.
type Compiler struct {
	toolchain Toolchain
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewCompiler wraps tc. A nil m selects the default registry.
func NewCompiler(tc Toolchain, logger zerolog.Logger, m *metrics.Metrics) *Compiler {
	if m == nil {
		m = metrics.Default()
	}
	return &Compiler{toolchain: tc, metrics: m, logger: logger}
}

// NewDefaultCompiler drives the `initiad move` subcommand found on PATH.
func NewDefaultCompiler(logger zerolog.Logger) *Compiler {
	return NewCompiler(toolchain.NewExecToolchain(logger), logger, nil)
}

func (c *Compiler) observe(action string, out []byte, err error) ([]byte, error) {
	c.metrics.ObserveToolchainCall(action, err)
	if err != nil {
		c.logger.Debug().Str("action", action).Err(err).Msg("move command failed")
	}
	return out, err
}

// BuildContract compiles the package at arg.PackagePath.
func (c *Compiler) BuildContract(arg CompilerArgument) ([]byte, error) {
	out, err := api.BuildContract(c.toolchain, arg)
	return c.observe(toolchain.CmdBuild.String(), out, err)
}

// TestContract runs the package's unit tests with the toolchain.
func (c *Compiler) TestContract(arg CompilerArgument, opt CompilerTestOption) ([]byte, error) {
	out, err := api.TestContract(c.toolchain, arg, opt)
	return c.observe(toolchain.CmdTest.String(), out, err)
}

// CoverageContract reports coverage of a previous test run. A nil
// moduleName covers every module.
func (c *Compiler) CoverageContract(arg CompilerArgument, opt CoverageOption, moduleName ByteSliceView) ([]byte, error) {
	out, err := api.CoverageContract(c.toolchain, arg, opt, moduleName)
	return c.observe(toolchain.CmdCoverage.String(), out, err)
}

// ProveContract runs the prover.
func (c *Compiler) ProveContract(arg CompilerArgument, opt CompilerProveOption) ([]byte, error) {
	out, err := api.ProveContract(c.toolchain, arg, opt)
	return c.observe(toolchain.CmdProve.String(), out, err)
}

// DocumentContract generates documentation.
func (c *Compiler) DocumentContract(arg CompilerArgument) ([]byte, error) {
	out, err := api.DocumentContract(c.toolchain, arg)
	return c.observe(toolchain.CmdDocument.String(), out, err)
}

// CleanContract removes build artifacts.
func (c *Compiler) CleanContract(arg CompilerArgument) ([]byte, error) {
	out, err := api.CleanContract(c.toolchain, arg)
	return c.observe(toolchain.CmdClean.String(), out, err)
}

// CreateContractPackage scaffolds a package named name.
func (c *Compiler) CreateContractPackage(arg CompilerArgument, name ByteSliceView) ([]byte, error) {
	out, err := api.CreateContractPackage(c.toolchain, arg, name)
	return c.observe(toolchain.CmdNew.String(), out, err)
}

// Unit testing.
type (
	TestEnvironment  = natives.TestEnvironment
	TestRunner       = unittest.Runner
	TestOptions      = unittest.Options
	AggregateOutcome = unittest.AggregateOutcome
)

// NewTestEnvironment returns an isolated mock chain state.
func NewTestEnvironment() *TestEnvironment { return natives.NewTestEnvironment() }

// RunPackageTests runs the package's unit tests under a bounded gas meter
// against the mock chain state.
func RunPackageTests(runner TestRunner, packagePath string, opts TestOptions) (AggregateOutcome, error) {
	return unittest.RunPackageTests(runner, packagePath, opts)
}

// DescribeError flattens err for the foreign caller.
func DescribeError(err error) types.ErrorDescriptor {
	return types.Describe(err)
}
