package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/IvanShishkin/buildid/internal/config"
	"github.com/IvanShishkin/buildid/internal/core"
	"github.com/IvanShishkin/buildid/internal/extractor"
	"github.com/IvanShishkin/buildid/internal/logging"
	"github.com/IvanShishkin/buildid/internal/report"
)

var version = "0.1.0"

// options holds the raw flag values; they override the loaded config only
// when set on the command line
type options struct {
	recursive  bool
	format     string
	output     string
	quiet      bool
	verbose    bool
	logFile    string
	configFile string
	rulesFile  string
	native     bool
	timeout    time.Duration
}

// app carries the streams and collaborators of one CLI invocation
type app struct {
	stdout io.Writer
	stderr io.Writer
	runner extractor.Runner
	opts   options
	quiet  bool
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr, nil))
}

// execute runs the command line and returns the process exit code. A nil
// runner executes the real tools.
func execute(args []string, stdout, stderr io.Writer, runner extractor.Runner) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{stdout: stdout, stderr: stderr, runner: runner}
	rootCmd := a.newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		a.printError(err)
		return 1
	}
	return 0
}

func (a *app) newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "buildid [path]",
		Short: "Extract GNU Build IDs from ELF files",
		Long: `Extract the GNU Build ID of a shared library or executable, or of every
library-like file in a directory. The file, readelf and objdump tools are
tried in order; the first one that reports an ID wins.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScan(cmd, args[0])
		},
	}

	// Disable built-in help command
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	flags := rootCmd.Flags()
	flags.BoolVarP(&a.opts.recursive, "recursive", "r", false, "Recurse into subdirectories")
	flags.StringVarP(&a.opts.format, "format", "f", config.FormatSimple, "Output format: simple, detailed, json")
	flags.StringVarP(&a.opts.output, "output", "o", "", "Write the report to a file instead of stdout")
	flags.BoolVarP(&a.opts.quiet, "quiet", "q", false, "Only print Build IDs, no diagnostics")
	flags.DurationVar(&a.opts.timeout, "timeout", 0, "Timeout for each extraction tool (default 10s)")

	persistent := rootCmd.PersistentFlags()
	persistent.BoolVarP(&a.opts.verbose, "verbose", "v", false, "Enable verbose logging")
	persistent.StringVar(&a.opts.logFile, "log-file", "", "Also write logs to a rotated file")
	persistent.StringVar(&a.opts.configFile, "config", "", "YAML config file")
	persistent.StringVar(&a.opts.rulesFile, "rules", "", "YAML classification rules file")
	persistent.BoolVar(&a.opts.native, "native", false, "Enable the in-process ELF note reader as a last resort")

	rootCmd.AddCommand(a.backendsCmd())

	return rootCmd
}

// loadConfig reads the config file and environment, then applies flags the
// user set explicitly
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(a.opts.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("recursive") {
		cfg.Recursive = a.opts.recursive
	}
	if flags.Changed("format") {
		cfg.Format = a.opts.format
	}
	if flags.Changed("output") {
		cfg.OutputFile = a.opts.output
	}
	if flags.Changed("quiet") {
		cfg.Quiet = a.opts.quiet
	}
	if flags.Changed("verbose") {
		cfg.Verbose = a.opts.verbose
	}
	if flags.Changed("log-file") {
		cfg.LogFile = a.opts.logFile
	}
	if flags.Changed("rules") {
		cfg.RulesPath = a.opts.rulesFile
	}
	if flags.Changed("native") {
		cfg.Native = a.opts.native
	}
	if flags.Changed("timeout") {
		cfg.ExtractTimeout = a.opts.timeout
	}

	a.quiet = cfg.Quiet
	return cfg, nil
}

func (a *app) newLogger(cfg *config.Config) (*zap.Logger, io.Closer, error) {
	logger, closer, err := logging.New(logging.Options{
		Verbose: cfg.Verbose,
		Quiet:   cfg.Quiet,
		File:    cfg.LogFile,
		Output:  a.stderr,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, closer, nil
}

func (a *app) runScan(cmd *cobra.Command, path string) error {
	// Quiet must be known before anything can fail
	a.quiet = a.opts.quiet

	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	// Validate flags before doing anything
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer, err := a.newLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()
	defer logger.Sync()

	ext, err := extractor.New(cfg, logger, extractor.WithRunner(a.runner))
	if err != nil {
		logger.Debug("Extractor setup failed", zap.Error(err))
		return err
	}

	scanner := core.NewScanner(cfg, logger, ext)
	progress := newProgress(a.stderr, !cfg.Quiet && isTerminal(a.stderr))
	scanner.SetProgressCallback(progress.callback)

	results, err := scanner.Scan(cmd.Context(), path)
	progress.finish()
	if err != nil {
		logger.Debug("Scan failed", zap.Error(err))
		return err
	}

	gen := report.NewGenerator(cfg, logger, a.stdout)
	written, err := gen.Generate(results)
	if err != nil {
		logger.Debug("Report failed", zap.Error(err))
		return err
	}

	if written != "" {
		logger.Debug("Report written", zap.String("path", written))
		if !cfg.Quiet {
			printSuccess(a.stderr, "Found %d files, results saved to: %s", results.Found, cfg.OutputFile)
		}
	}

	return nil
}

// printError reports a failed run. Empty-result errors are suppressed in
// quiet mode; everything else is always shown.
func (a *app) printError(err error) {
	switch {
	case errors.Is(err, core.ErrNoCandidates):
		if !a.quiet {
			printWarning(a.stderr, "No ELF files found")
		}
	case errors.Is(err, core.ErrNoBuildIDs):
		if !a.quiet {
			printWarning(a.stderr, "No files with a Build ID found")
		}
	case errors.Is(err, context.Canceled):
		printFailure(a.stderr, "Interrupted")
	default:
		printFailure(a.stderr, "Error: %v", err)
	}
}
