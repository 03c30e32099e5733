package unittest

import (
	"fmt"
	"io"

	"github.com/initia-labs/movevm/internal/gas"
	"github.com/initia-labs/movevm/internal/natives"
	"github.com/initia-labs/movevm/internal/toolchain"
	"github.com/initia-labs/movevm/types"
)

// TestStatus is the outcome of a single Move unit test.
type TestStatus uint8

const (
	StatusPass TestStatus = iota
	StatusFail
	StatusAbort
	StatusOutOfGas
)

func (s TestStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusFail:
		return "fail"
	case StatusAbort:
		return "abort"
	case StatusOutOfGas:
		return "out_of_gas"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// TestOutcome is reported by the runner for every test it executed.
type TestOutcome struct {
	Module   string
	Function string
	Status   TestStatus
	// AbortCode is set for aborts.
	AbortCode *uint64
	Message   string
	GasUsed   uint64
}

// RunRequest is everything the runner needs for one package.
type RunRequest struct {
	PackagePath  string
	BuildConfig  toolchain.BuildConfig
	TestConfig   toolchain.UnitTestingConfig
	Natives      natives.NativeFunctionTable
	InitialState *types.ChangeSet
	// GasMeter is the prototype meter. The runner clones it for every test.
	GasMeter *gas.TestMeter
	// NewExtensions is called before each test module to obtain its
	// extension set.
	NewExtensions func() *natives.NativeContextExtensions
	Output        io.Writer
}

// Runner compiles a package in test mode and executes its unit tests. It
// blocks until every test finished; there is no cancellation.
type Runner interface {
	RunTests(req RunRequest) ([]TestOutcome, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(req RunRequest) ([]TestOutcome, error)

func (f RunnerFunc) RunTests(req RunRequest) ([]TestOutcome, error) {
	return f(req)
}
