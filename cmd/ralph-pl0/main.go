package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/raymyers/ralph-pl0/pkg/cfg"
	"github.com/raymyers/ralph-pl0/pkg/config"
	"github.com/raymyers/ralph-pl0/pkg/driver"
	"github.com/raymyers/ralph-pl0/pkg/ir"
	"github.com/raymyers/ralph-pl0/pkg/logger"
	"github.com/raymyers/ralph-pl0/pkg/regalloc"
	"github.com/raymyers/ralph-pl0/pkg/symbols"
)

var version = "0.1.0"

// Debug flags for dumping intermediate representations
var (
	dParse    bool
	dLower    bool
	dCFG      bool
	dDot      bool
	dRegalloc bool
	dAsm      bool
)

// Back end and logging options
var (
	registers  int
	configPath string
	logLevel   string
	logFormat  string
)

// debugFlagInfo holds metadata for a debug flag
type debugFlagInfo struct {
	flag *bool
	desc string
}

// debugFlags maps flag names to descriptions for unimplemented warnings
var debugFlags = map[string]debugFlagInfo{
	"dasm": {&dAsm, "dump assembly"},
}

// ErrNotImplemented indicates a feature is not yet implemented
var ErrNotImplemented = errors.New("not yet implemented")

// checkDebugFlags checks if any unimplemented debug flags are set and returns an error
func checkDebugFlags(w io.Writer) error {
	for name, info := range debugFlags {
		if *info.flag {
			fmt.Fprintf(w, "ralph-pl0: warning: -%s (%s) is not yet implemented\n", name, info.desc)
			return ErrNotImplemented
		}
	}
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// debugFlagNames lists the debug flags that also accept a single dash
var debugFlagNames = []string{"dparse", "dlower", "dcfg", "ddot", "dregalloc", "dasm"}

// normalizeFlags converts single-dash debug flags like -dcfg to --dcfg
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		for _, flagName := range debugFlagNames {
			if arg == "-"+flagName {
				result[i] = "--" + flagName
				break
			}
		}
		if result[i] == "" {
			result[i] = arg
		}
	}
	return result
}

// underscoreToDash lets --log_level stand for --log-level
func underscoreToDash(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ralph-pl0 [file]",
		Short: "ralph-pl0 compiles PL/0 down to register-allocated instructions",
		Long: `ralph-pl0 is a PL/0 compiler middle end. It lowers the program to
three-address instructions, builds the control flow graph, runs liveness
analysis and allocates registers with a linear scan. The -d flags dump each
stage.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkDebugFlags(errOut); err != nil {
				return err
			}

			if len(args) == 0 {
				cmd.Help()
				return nil
			}

			conf, err := loadConfig(cmd.Flags(), errOut)
			if err != nil {
				fmt.Fprintf(errOut, "ralph-pl0: %v\n", err)
				return err
			}
			if err := compileFile(args[0], conf, out, errOut); err != nil {
				fmt.Fprintf(errOut, "ralph-pl0: %v\n", err)
				return err
			}
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.Flags().SetNormalizeFunc(underscoreToDash)

	// Add debug flags
	rootCmd.Flags().BoolVarP(&dParse, "dparse", "", false, "Dump the IR tree after parsing")
	rootCmd.Flags().BoolVarP(&dLower, "dlower", "", false, "Dump the IR after lowering and flattening")
	rootCmd.Flags().BoolVarP(&dCFG, "dcfg", "", false, "Dump basic blocks with liveness sets")
	rootCmd.Flags().BoolVarP(&dDot, "ddot", "", false, "Dump the CFG in Graphviz dot format")
	rootCmd.Flags().BoolVarP(&dRegalloc, "dregalloc", "", false, "Dump the register allocation")
	rootCmd.Flags().BoolVarP(&dAsm, "dasm", "", false, "Dump assembly")

	defaults := config.Default()
	rootCmd.Flags().IntVarP(&registers, "registers", "r", defaults.Registers, "Number of machine registers, two reserved for spills")
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML configuration file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", defaults.Log.Level, "Log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&logFormat, "log-format", defaults.Log.Format, "Log format (text, json)")

	return rootCmd
}

// loadConfig reads the config file, if any, and applies explicitly set flags
// over it. The logger writes to errOut.
func loadConfig(flags *pflag.FlagSet, errOut io.Writer) (config.Config, error) {
	conf := config.Default()
	if configPath != "" {
		var err error
		if conf, err = config.Load(configPath); err != nil {
			return conf, err
		}
	}
	if flags.Changed("registers") {
		conf.Registers = registers
	}
	if flags.Changed("log-level") {
		conf.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		conf.Log.Format = logFormat
	}
	if err := conf.Validate(); err != nil {
		return conf, err
	}

	lc, err := conf.LoggerConfig()
	if err != nil {
		return conf, err
	}
	lc.Output = errOut
	return conf, logger.Init(lc)
}

// compileFile runs the pipeline as far as the requested dumps need. Without
// dump flags the whole pipeline runs and a summary is printed.
func compileFile(filename string, conf config.Config, out, errOut io.Writer) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", filename, err)
	}

	tree, err := driver.Parse(string(content))
	if err != nil {
		return err
	}
	if dParse {
		ir.NewPrinter(out).PrintTree(tree)
		if !(dLower || dCFG || dDot || dRegalloc) {
			return nil
		}
	}

	diags, err := driver.Lower(tree, symbols.NewFresh())
	for _, d := range diags {
		fmt.Fprintf(errOut, "ralph-pl0: warning: %s\n", d.Reason)
	}
	if err != nil {
		return err
	}
	if err := driver.Layout(tree); err != nil {
		return err
	}
	if dLower {
		ir.NewPrinter(out).PrintTree(tree)
		if !(dCFG || dDot || dRegalloc) {
			return nil
		}
	}

	g, _, err := driver.BuildCFG(tree)
	if err != nil {
		return err
	}
	if dCFG {
		cfg.NewPrinter(out).PrintGraph(g)
	}
	if dDot {
		cfg.NewPrinter(out).PrintDot(g)
	}
	if (dCFG || dDot) && !dRegalloc {
		return nil
	}

	a, err := driver.Allocate(g, driver.Options{Registers: conf.Registers, WordSize: conf.WordSize})
	if err != nil {
		return err
	}
	if dRegalloc {
		regalloc.NewPrinter(out).PrintAllocation(a)
		return nil
	}

	fmt.Fprintf(errOut, "ralph-pl0: compiled %s: %d blocks, %d spilled\n", filename, len(g.Blocks), a.NumSpill)
	return nil
}
