package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	movevm "github.com/initia-labs/movevm"
	"github.com/initia-labs/movevm/internal/config"
	"github.com/initia-labs/movevm/internal/toolchain"
)

func main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the state shared by all subcommands.
type app struct {
	configFile string
	logLevel   string

	path            string
	verbose         bool
	devMode         bool
	installDir      string
	force           bool
	bytecodeVersion uint32

	cfg      config.Config
	logger   zerolog.Logger
	closer   io.Closer
	compiler *movevm.Compiler
	// toolchain overrides the configured binary when set.
	toolchain movevm.Toolchain
}

func newRootCmd(tc movevm.Toolchain) *cobra.Command {
	a := &app{toolchain: tc}
	root := &cobra.Command{
		Use:           "movevm",
		Short:         "Build, test and verify Move packages",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "TOML configuration file")
	pf.StringVar(&a.logLevel, "log-level", "", "override the configured log level")
	pf.StringVarP(&a.path, "path", "p", "", "package root (defaults to the working directory)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "print stack traces on failure")
	pf.BoolVarP(&a.devMode, "dev", "d", false, "use dev-addresses")
	pf.StringVar(&a.installDir, "install-dir", "", "build output directory")
	pf.BoolVar(&a.force, "force", false, "recompile even if the build is up to date")
	pf.Uint32Var(&a.bytecodeVersion, "bytecode-version", 0, "bytecode version to emit (0 for the default)")

	root.AddCommand(
		a.buildCmd(),
		a.testCmd(),
		a.coverageCmd(),
		a.proveCmd(),
		a.docCmd(),
		a.cleanCmd(),
		a.newCmd(),
		a.configCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	logger, closer, err := cfg.Log.NewLogger()
	if err != nil {
		return err
	}
	a.cfg, a.logger, a.closer = cfg, logger, closer

	tc := a.toolchain
	if tc == nil {
		exec := toolchain.NewExecToolchain(logger)
		exec.Binary = cfg.Toolchain.Binary
		exec.Args = cfg.Toolchain.Args
		exec.Dir = cfg.Toolchain.Dir
		exec.Stdout = os.Stdout
		tc = exec
	}
	a.compiler = movevm.NewCompiler(tc, logger, nil)
	return nil
}

func view(s string) movevm.ByteSliceView {
	if s == "" {
		return movevm.MakeView(nil)
	}
	return movevm.MakeView([]byte(s))
}

func (a *app) argument() movevm.CompilerArgument {
	return movevm.CompilerArgument{
		PackagePath: view(a.path),
		Verbose:     a.verbose,
		BuildConfig: movevm.CompilerBuildConfig{
			DevMode:            a.devMode,
			InstallDir:         view(a.installDir),
			ForceRecompilation: a.force,
			BytecodeVersion:    a.bytecodeVersion,
		},
	}
}

func report(cmd *cobra.Command, out []byte, err error) error {
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func (a *app) buildCmd() *cobra.Command {
	var docs, abis bool
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile the package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			arg := a.argument()
			arg.BuildConfig.GenerateDocs = docs
			arg.BuildConfig.GenerateABIs = abis
			out, err := a.compiler.BuildContract(arg)
			return report(cmd, out, err)
		},
	}
	cmd.Flags().BoolVar(&docs, "doc", false, "generate documentation")
	cmd.Flags().BoolVar(&abis, "abi", false, "generate ABIs")
	return cmd
}

func (a *app) testCmd() *cobra.Command {
	var opt movevm.CompilerTestOption
	var filter string
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run the package's unit tests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("gas-limit") {
				opt.GasLimit = a.cfg.Test.GasLimit
			}
			if !cmd.Flags().Changed("threads") {
				opt.NumThreads = a.cfg.Test.NumThreads
			}
			opt.Filter = view(filter)
			out, err := a.compiler.TestContract(a.argument(), opt)
			return report(cmd, out, err)
		},
	}
	f := cmd.Flags()
	f.Uint64Var(&opt.GasLimit, "gas-limit", 0, "per-test gas limit (0 for unbounded)")
	f.StringVar(&filter, "filter", "", "only run tests whose name contains this string")
	f.BoolVar(&opt.List, "list", false, "list tests instead of running them")
	f.UintVar(&opt.NumThreads, "threads", 0, "number of test threads")
	f.BoolVar(&opt.ReportStatistics, "statistics", false, "report test statistics")
	f.BoolVar(&opt.ReportStorageOnError, "state-on-error", false, "print storage on failure")
	f.BoolVar(&opt.IgnoreCompileWarnings, "ignore-compile-warnings", false, "ignore compiler warnings")
	f.BoolVar(&opt.ComputeCoverage, "coverage", false, "collect coverage")
	return cmd
}

func (a *app) coverageCmd() *cobra.Command {
	var module string
	cmd := &cobra.Command{
		Use:       "coverage <summary|source|bytecode>",
		Short:     "Inspect coverage of the last test run",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"summary", "source", "bytecode"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var opt movevm.CoverageOption
			switch args[0] {
			case "summary":
				opt = movevm.CoverageSummary
			case "source":
				opt = movevm.CoverageSource
			case "bytecode":
				opt = movevm.CoverageBytecode
			default:
				return fmt.Errorf("unknown coverage report %q", args[0])
			}
			out, err := a.compiler.CoverageContract(a.argument(), opt, view(module))
			return report(cmd, out, err)
		},
	}
	cmd.Flags().StringVar(&module, "module", "", "module to report on")
	return cmd
}

func (a *app) proveCmd() *cobra.Command {
	var opt movevm.CompilerProveOption
	var verbosity, filter string
	cmd := &cobra.Command{
		Use:   "prove",
		Short: "Run the Move prover",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opt.Verbosity = view(verbosity)
			opt.Filter = view(filter)
			out, err := a.compiler.ProveContract(a.argument(), opt)
			return report(cmd, out, err)
		},
	}
	f := cmd.Flags()
	f.StringVar(&verbosity, "verbosity", "", "prover log level")
	f.StringVar(&filter, "filter", "", "only prove matching targets")
	f.BoolVar(&opt.Trace, "trace", false, "trace verification conditions")
	f.BoolVar(&opt.CVC5, "cvc5", false, "use cvc5 instead of z3")
	f.UintVar(&opt.ProcCores, "proc-cores", 0, "prover cores")
	f.UintVar(&opt.VCTimeout, "vc-timeout", 0, "verification condition timeout in seconds")
	return cmd
}

func (a *app) docCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "document",
		Short: "Generate package documentation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := a.compiler.DocumentContract(a.argument())
			return report(cmd, out, err)
		},
	}
}

func (a *app) cleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove build artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := a.compiler.CleanContract(a.argument())
			return report(cmd, out, err)
		},
	}
}

func (a *app) newCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <name>",
		Short: "Create a new package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.compiler.CreateContractPackage(a.argument(), view(args[0]))
			return report(cmd, out, err)
		},
	}
}

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dumpconfig",
		Short: "Show configuration values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := a.cfg.Dump()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
