package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/harrison/srbaslam/internal/config"
	"github.com/harrison/srbaslam/internal/dispatch"
	"github.com/harrison/srbaslam/internal/logger"
	"github.com/harrison/srbaslam/internal/params"
	"github.com/harrison/srbaslam/internal/registry"
	"github.com/harrison/srbaslam/internal/solver"
	"github.com/harrison/srbaslam/internal/variants"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// ExitError carries a non-zero exit code out of cobra's RunE
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ambient flags, as opposed to the solver flags declared by params.AddFlags
type rootFlags struct {
	configPath string
	logDir     string
	logLevel   string
	solver     string
	timeout    time.Duration
}

func (f *rootFlags) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "Config file (default .srba/config.yaml)")
	fs.StringVar(&f.logDir, "log-dir", "", "Directory for run logs (empty disables file logging)")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error (overrides --verbose)")
	fs.StringVar(&f.solver, "solver", "", "Solver backend executable")
	fs.DurationVar(&f.timeout, "timeout", 0, "Maximum solver run time, e.g. 30m (0 = no limit)")
}

// NewRootCommand creates and returns the root cobra command for srba-slam
func NewRootCommand() *cobra.Command {
	var amb rootFlags

	cmd := &cobra.Command{
		Use:   "srba-slam",
		Short: "Relative bundle adjustment and graph-SLAM solver front-end",
		Long: `srba-slam selects the solver variant built for a combination of
relative pose type, landmark type and observation model, then runs it
on a dataset through the solver backend.

Use --list-problems to see every combination available in this build.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.SortFlags = false
	raw := params.AddFlags(flags)
	amb.addFlags(flags)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		code := run(cmd.Context(), cmd.Flags(), raw, amb, cmd.OutOrStdout(), cmd.ErrOrStderr())
		if code != dispatch.ExitSuccess {
			return &ExitError{Code: code}
		}
		return nil
	}

	return cmd
}

// Execute runs the root command with args and returns the process exit code.
// Errors cobra raises itself (bad flags, stray arguments) exit with 1.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{}
	}
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return dispatch.ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return dispatch.ExitFailure
}

// run validates the solver flags and dispatches. Listing, help and rule
// violations are handled before the config file is read, so a broken config
// never hides --list-problems.
func run(ctx context.Context, flags *pflag.FlagSet, raw *params.RawFlags, amb rootFlags, stdout, stderr io.Writer) int {
	outcome := raw.Validate()

	handler := solver.NewHandler(nil, nil)
	reg := registry.New()
	variants.RegisterAll(reg, handler.Factory())

	consoleLevel := logger.LevelForVerbosity(raw.Options.Verbose)
	if logger.IsValidLevel(amb.logLevel) {
		consoleLevel = amb.logLevel
	}

	if outcome.Kind != params.OutcomeSuccess {
		d := dispatch.New(reg, logger.NewConsoleLogger(stderr, consoleLevel), stdout, stderr)
		d.ColorOutput = logger.IsTerminal(stdout)
		return d.Dispatch(ctx, outcome)
	}

	cfg, err := loadConfig(flags, amb, raw.Options.Verbose)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return dispatch.ExitFailure
	}

	console := logger.NewConsoleLogger(stderr, cfg.LogLevel)
	var log logger.Logger = console
	var errLog logger.Logger
	if cfg.LogDir != "" {
		fileLog, err := logger.NewFileLoggerWithLevel(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			console.LogWarn(fmt.Sprintf("File logging disabled: %v", err))
		} else {
			defer fileLog.Close()
			log = logger.NewMultiLogger(console, fileLog)
			errLog = fileLog
			console.LogDebug(fmt.Sprintf("Run log: %s", fileLog.Path()))
		}
	}

	handler.Invoker = solver.NewInvoker(cfg.Solver, stdout, stderr)
	handler.Logger = log

	// The console shares stderr with the error report, so only the run log
	// gets a copy of reported errors.
	d := dispatch.New(reg, log, stdout, stderr)
	d.ErrorLog = errLog
	return d.Dispatch(ctx, outcome)
}

// loadConfig reads the config file and applies the ambient flags that were
// given. The log level is resolved as --log-level, then an explicit
// --verbose, then log_level from the file, then the default verbosity.
func loadConfig(flags *pflag.FlagSet, amb rootFlags, verbose int) (*config.Config, error) {
	path := amb.configPath
	if !flags.Changed("config") {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return nil, fmt.Errorf("failed to locate config: %w", err)
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	var logLevelPtr, logDirPtr, solverPtr *string
	var timeoutPtr *time.Duration
	if flags.Changed("log-level") {
		logLevelPtr = &amb.logLevel
	} else if flags.Changed("verbose") {
		level := logger.LevelForVerbosity(verbose)
		logLevelPtr = &level
	}
	if flags.Changed("log-dir") {
		logDirPtr = &amb.logDir
	}
	if flags.Changed("solver") {
		solverPtr = &amb.solver
	}
	if flags.Changed("timeout") {
		timeoutPtr = &amb.timeout
	}
	cfg.MergeWithFlags(logLevelPtr, logDirPtr, solverPtr, timeoutPtr)

	if cfg.LogLevel == "" {
		cfg.LogLevel = logger.LevelForVerbosity(verbose)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
