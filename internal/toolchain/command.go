package toolchain

import "fmt"

// CommandKind selects the toolchain action.
type CommandKind uint8

const (
	CmdBuild CommandKind = iota
	CmdTest
	CmdCoverage
	CmdProve
	CmdDocument
	CmdClean
	CmdNew
)

func (k CommandKind) String() string {
	switch k {
	case CmdBuild:
		return "build"
	case CmdTest:
		return "test"
	case CmdCoverage:
		return "coverage"
	case CmdProve:
		return "prove"
	case CmdDocument:
		return "document"
	case CmdClean:
		return "clean"
	case CmdNew:
		return "new"
	default:
		return fmt.Sprintf("command(%d)", uint8(k))
	}
}

// CoverageOption selects what a coverage command prints.
type CoverageOption uint8

const (
	CoverageSummary CoverageOption = iota
	CoverageSource
	CoverageBytecode
)

func (o CoverageOption) String() string {
	switch o {
	case CoverageSummary:
		return "summary"
	case CoverageSource:
		return "source"
	case CoverageBytecode:
		return "bytecode"
	default:
		return fmt.Sprintf("coverage(%d)", uint8(o))
	}
}

// Command is an action tag plus the options that action takes.
type Command struct {
	Kind        CommandKind
	Test        *TestConfig
	Prove       *ProverOptions
	Coverage    CoverageOption
	PackageName string
	// ModuleName is used by source and bytecode coverage.
	ModuleName string
}

// Action is the verb used in failure messages.
func (c Command) Action() string {
	return c.Kind.String()
}

// Toolchain runs Move package commands. Implementations block until the
// command completes; there is no cancellation besides killing the process.
type Toolchain interface {
	Run(args MoveArgs, cmd Command) error
}

// ToolchainFunc adapts a function to Toolchain.
type ToolchainFunc func(args MoveArgs, cmd Command) error

func (f ToolchainFunc) Run(args MoveArgs, cmd Command) error {
	return f(args, cmd)
}
