package unittest

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"

	"github.com/initia-labs/movevm/internal/gas"
	"github.com/initia-labs/movevm/internal/metrics"
	"github.com/initia-labs/movevm/internal/natives"
	"github.com/initia-labs/movevm/internal/toolchain"
	"github.com/initia-labs/movevm/types"
)

// Result is the aggregate verdict of a package test run.
type Result uint8

const (
	Success Result = iota
	Failure
)

func (r Result) String() string {
	if r == Success {
		return "success"
	}
	return "failure"
}

// FailedTest names a test that did not pass.
type FailedTest struct {
	Module    string
	Function  string
	Status    TestStatus
	AbortCode *uint64
	Message   string
}

// AggregateOutcome summarises a package test run.
type AggregateOutcome struct {
	RunID    string
	Result   Result
	Passed   int
	Failures []FailedTest
	GasUsed  uint64
}

// Err is nil for a Success and wraps types.ErrTestFailure otherwise.
func (a AggregateOutcome) Err() error {
	if a.Result == Success {
		return nil
	}
	return types.ErrTestFailure.Wrapf("%d of %d tests failed: %s",
		len(a.Failures), a.Passed+len(a.Failures), describeFailures(a.Failures))
}

// Options tune RunPackageTests. The zero value is usable.
type Options struct {
	// GasLimit caps every test. Zero selects toolchain.DefaultTestGasLimit.
	GasLimit uint64
	// Environment is the mock chain state. Nil selects the process default.
	Environment *natives.TestEnvironment
	Filter      *string
	NumThreads  uint
	// TempDir is the parent of the per-run install directory.
	TempDir string
	Output  io.Writer
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

// RunPackageTests runs every unit test of the package at packagePath against
// the mock chain environment, under a bounded gas meter. Any test that did
// not pass, including out of gas, makes the result a Failure. An error is
// returned only when the run could not happen at all; it wraps
// types.ErrInfrastructure.
func RunPackageTests(runner Runner, packagePath string, opts Options) (AggregateOutcome, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := opts.Logger.With().Str("run_id", runID).Str("package", packagePath).Logger()

	if _, err := os.Stat(packagePath); err != nil {
		return AggregateOutcome{}, types.ErrInfrastructure.Wrapf("package path: %v", err)
	}

	limit := opts.GasLimit
	if limit == 0 {
		limit = toolchain.DefaultTestGasLimit
	}
	params := gas.InitialParameters()
	nativeParams := gas.InitialNativeParameters()
	miscParams := gas.InitialMiscParameters()
	meter := gas.NewTestMeter(params, limit)

	env := opts.Environment
	if env == nil {
		env = natives.DefaultTestEnvironment()
	}
	natives.ConfigureForUnitTest(env)

	installDir, err := os.MkdirTemp(opts.TempDir, "movevm-test-"+runID[:8]+"-")
	if err != nil {
		return AggregateOutcome{}, types.ErrInfrastructure.Wrapf("install dir: %v", err)
	}
	defer os.RemoveAll(installDir)

	testConfig := toolchain.DefaultWithBound(limit)
	testConfig.Filter = opts.Filter
	if opts.NumThreads > 0 {
		testConfig.NumThreads = opts.NumThreads
	}

	output := opts.Output
	if output == nil {
		output = io.Discard
	}

	logger.Info().Uint64("gas_limit", limit).Uint("threads", testConfig.NumThreads).Msg("running move unit tests")
	outcomes, err := runner.RunTests(RunRequest{
		PackagePath: packagePath,
		BuildConfig: toolchain.BuildConfig{
			TestMode:     true,
			InstallDir:   &installDir,
			Architecture: toolchain.ArchitectureMove,
		},
		TestConfig:    testConfig,
		Natives:       natives.All(nativeParams, miscParams),
		InitialState:  types.NewChangeSet(),
		GasMeter:      meter,
		NewExtensions: natives.NewUnitTestExtensions,
		Output:        output,
	})
	if err != nil {
		logger.Error().Err(err).Msg("move unit test runner failed")
		return AggregateOutcome{}, types.ErrInfrastructure.Wrapf("runner: %v", err)
	}

	agg := Aggregate(outcomes)
	agg.RunID = runID
	if err := RenderReport(output, outcomes); err != nil {
		logger.Warn().Err(err).Msg("cannot render test report")
	}

	m := opts.Metrics
	if m == nil {
		m = metrics.Default()
	}
	statuses := make(map[string]int)
	for _, o := range outcomes {
		statuses[o.Status.String()]++
	}
	result := metrics.ResultSuccess
	if agg.Result != Success {
		result = metrics.ResultFailure
	}
	m.ObserveTestRun(result, statuses, agg.GasUsed, time.Since(start))

	logger.Info().
		Str("result", agg.Result.String()).
		Int("passed", agg.Passed).
		Int("failed", len(agg.Failures)).
		Uint64("gas_used", agg.GasUsed).
		Msg("move unit tests finished")
	return agg, nil
}

// Aggregate reduces per-test outcomes. No outcomes at all is a Success.
func Aggregate(outcomes []TestOutcome) AggregateOutcome {
	agg := AggregateOutcome{Result: Success}
	for _, o := range outcomes {
		agg.GasUsed += o.GasUsed
		if o.Status == StatusPass {
			agg.Passed++
			continue
		}
		agg.Result = Failure
		agg.Failures = append(agg.Failures, FailedTest{
			Module:    o.Module,
			Function:  o.Function,
			Status:    o.Status,
			AbortCode: o.AbortCode,
			Message:   o.Message,
		})
	}
	return agg
}

// RenderReport writes one row per test.
func RenderReport(w io.Writer, outcomes []TestOutcome) error {
	if len(outcomes) == 0 {
		_, err := fmt.Fprintln(w, "no tests to run")
		return err
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Module", "Function", "Status", "Abort code", "Gas used"})
	table.SetAutoWrapText(false)
	for _, o := range outcomes {
		code := ""
		if o.AbortCode != nil {
			code = fmt.Sprintf("%d", *o.AbortCode)
		}
		table.Append([]string{o.Module, o.Function, o.Status.String(), code, fmt.Sprintf("%d", o.GasUsed)})
	}
	table.Render()
	return nil
}

// TB is the part of testing.TB the must-helper needs.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// MustRunPackageTests runs the package's tests and stops tb on an
// infrastructure error or any failing test.
func MustRunPackageTests(tb TB, runner Runner, packagePath string, opts Options) AggregateOutcome {
	tb.Helper()
	agg, err := RunPackageTests(runner, packagePath, opts)
	if err != nil {
		tb.Fatalf("cannot run move unit tests for %s: %v", packagePath, err)
		return agg
	}
	if agg.Result != Success {
		tb.Fatalf("aborting because of move unit test failures in %s: %v", packagePath, agg.Err())
	}
	return agg
}

func describeFailures(failures []FailedTest) string {
	s := ""
	for i, f := range failures {
		if i > 0 {
			s += ", "
		}
		s += f.Module + "::" + f.Function + " (" + f.Status.String() + ")"
	}
	return s
}
