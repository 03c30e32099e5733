package toolchain

import (
	"bytes"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultBinary is the chain daemon that embeds the Move CLI.
const DefaultBinary = "initiad"

// DefaultPrefixArgs select the Move CLI inside DefaultBinary.
var DefaultPrefixArgs = []string{"move"}

// ExecToolchain drives an external Move CLI process.
type ExecToolchain struct {
	Binary string
	// Args are placed between the binary and the generated arguments.
	Args []string
	// Dir is the working directory of the process, empty for the current one.
	Dir    string
	Stdout io.Writer
	Logger zerolog.Logger
}

var _ Toolchain = (*ExecToolchain)(nil)

// NewExecToolchain returns a toolchain running `initiad move`.
func NewExecToolchain(logger zerolog.Logger) *ExecToolchain {
	return &ExecToolchain{
		Binary: DefaultBinary,
		Args:   append([]string(nil), DefaultPrefixArgs...),
		Stdout: io.Discard,
		Logger: logger,
	}
}

// Run executes cmd and returns an error carrying the process' stderr when it
// exits non-zero.
func (t *ExecToolchain) Run(args MoveArgs, cmd Command) error {
	argv := append(append([]string(nil), t.Args...), Argv(args, cmd)...)

	c := exec.Command(t.Binary, argv...)
	c.Dir = t.Dir
	var stderr bytes.Buffer
	c.Stderr = &stderr
	if t.Stdout != nil {
		c.Stdout = t.Stdout
	} else {
		c.Stdout = io.Discard
	}

	t.Logger.Debug().Str("binary", t.Binary).Strs("args", argv).Msg("running move toolchain")
	if err := c.Run(); err != nil {
		reason := strings.TrimSpace(stderr.String())
		if reason == "" {
			reason = err.Error()
		}
		t.Logger.Debug().Err(err).Str("command", cmd.Action()).Msg("move toolchain failed")
		return errors.Errorf("%s %s: %s", t.Binary, cmd.Action(), reason)
	}
	return nil
}

// Argv translates the configuration into Move CLI arguments.
func Argv(args MoveArgs, cmd Command) []string {
	var out []string
	switch cmd.Kind {
	case CmdCoverage:
		out = append(out, cmd.Kind.String(), cmd.Coverage.String())
		if cmd.Coverage != CoverageSummary && cmd.ModuleName != "" {
			out = append(out, "--module", cmd.ModuleName)
		}
	case CmdNew:
		out = append(out, cmd.Kind.String(), cmd.PackageName)
	default:
		out = append(out, cmd.Kind.String())
	}

	if args.PackagePath != nil {
		out = append(out, "--path", *args.PackagePath)
	}
	if args.Verbose {
		out = append(out, "--verbose")
	}
	out = append(out, buildArgv(args.BuildConfig)...)

	if cmd.Test != nil {
		out = append(out, testArgv(*cmd.Test)...)
	}
	if cmd.Prove != nil {
		out = append(out, proveArgv(*cmd.Prove)...)
	}
	return out
}

func flag(out []string, set bool, name string) []string {
	if set {
		return append(out, name)
	}
	return out
}

func buildArgv(c BuildConfig) []string {
	var out []string
	out = flag(out, c.DevMode, "--dev")
	out = flag(out, c.TestMode, "--test")
	out = flag(out, c.GenerateDocs, "--doc")
	out = flag(out, c.GenerateABIs, "--abi")
	if c.InstallDir != nil {
		out = append(out, "--install-dir", *c.InstallDir)
	}
	out = flag(out, c.ForceRecompilation, "--force")
	out = flag(out, c.FetchDepsOnly, "--fetch-deps-only")
	out = flag(out, c.SkipFetchLatestGitDeps, "--skip-fetch-latest-git-deps")
	if v := c.CompilerConfig.BytecodeVersion; v != nil {
		out = append(out, "--bytecode-version", strconv.FormatUint(uint64(*v), 10))
	}
	return out
}

func testArgv(c TestConfig) []string {
	var out []string
	if c.GasLimit != nil {
		out = append(out, "--gas-limit", strconv.FormatUint(*c.GasLimit, 10))
	}
	if c.Filter != nil {
		out = append(out, "--filter", *c.Filter)
	}
	out = flag(out, c.List, "--list")
	if c.NumThreads > 0 {
		out = append(out, "--threads", strconv.FormatUint(uint64(c.NumThreads), 10))
	}
	out = flag(out, c.ReportStatistics, "--statistics")
	out = flag(out, c.ReportStorageOnError, "--state-on-error")
	out = flag(out, c.IgnoreCompileWarnings, "--ignore-compile-warnings")
	out = flag(out, c.CheckStacklessVM, "--stackless")
	out = flag(out, c.VerboseMode, "--verbose-mode")
	out = flag(out, c.ComputeCoverage, "--coverage")
	return out
}

// levelFilterName spells a level the way the Move CLI parses it.
func levelFilterName(l zerolog.Level) string {
	if l == zerolog.Disabled {
		return "off"
	}
	return l.String()
}

func proveArgv(o ProverOptions) []string {
	var out []string
	if o.Verbosity != nil {
		out = append(out, "--verbosity", levelFilterName(*o.Verbosity))
	}
	if o.Filter != nil {
		out = append(out, "--filter", *o.Filter)
	}
	out = flag(out, o.Trace, "--trace")
	out = flag(out, o.CVC5, "--cvc5")
	uintFlags := []struct {
		name string
		v    uint
	}{
		{"--stratification-depth", o.StratificationDepth},
		{"--random-seed", o.RandomSeed},
		{"--proc-cores", o.ProcCores},
		{"--vc-timeout", o.VCTimeout},
	}
	for _, f := range uintFlags {
		if f.v > 0 {
			out = append(out, f.name, strconv.FormatUint(uint64(f.v), 10))
		}
	}
	out = flag(out, o.CheckInconsistency, "--check-inconsistency")
	out = flag(out, o.KeepLoops, "--keep-loops")
	if o.LoopUnroll != nil {
		out = append(out, "--loop-unroll", strconv.FormatUint(*o.LoopUnroll, 10))
	}
	out = flag(out, o.StableTestOutput, "--stable-test-output")
	out = flag(out, o.Dump, "--dump")
	out = flag(out, o.ForTest, "--for-test")
	return out
}
