package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/bleconform/internal/bluetooth"
	"github.com/srg/bleconform/internal/conformance"
	"github.com/srg/bleconform/internal/harness"
	"github.com/srg/bleconform/internal/harness/report"
	"github.com/srg/bleconform/pkg/config"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run conformance tests",
	Long: `Runs the registered conformance tests and prints a report.

Examples:
  # Run everything
  bleconform run

  # Run tests whose name matches a regular expression
  bleconform run --filter 'rejected pairing'

  # Machine readable output
  bleconform run --format json

  # Slow environment: double every per-test timeout
  bleconform run --timeout-multiplier 2

  # Step through tests without timeouts
  bleconform run --debug --log-level debug

The command exits non-zero if any executed test does not pass.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	runFilter            string
	runFormat            string
	runTimeoutMultiplier float64
	runDebug             bool
	runVerbose           bool
)

func init() {
	runCmd.Flags().StringVar(&runFilter, "filter", "", "Only run tests whose name matches this regular expression")
	runCmd.Flags().StringVar(&runFormat, "format", "text", "Output format (text, json, yaml)")
	runCmd.Flags().Float64Var(&runTimeoutMultiplier, "timeout-multiplier", 1, "Multiplier applied to every per-test timeout")
	runCmd.Flags().BoolVar(&runDebug, "debug", false, "Disable per-test timeouts")
	runCmd.Flags().BoolVar(&runVerbose, "verbose", false, "Verbose logging (same as --log-level debug)")
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, fromFile, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	fallback := logrus.PanicLevel
	if fromFile {
		fallback = cfg.Level()
	}
	logger, err := configureLogger(cmd, "verbose", fallback)
	if err != nil {
		return err
	}

	format, err := report.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return err
	}

	var filter *regexp.Regexp
	if cfg.Filter != "" {
		if filter, err = regexp.Compile(cfg.Filter); err != nil {
			return fmt.Errorf("failed to compile filter: %w", err)
		}
	}

	env := bluetooth.NewEnv(logger, cfg.ConnectTimeout)
	h := harness.New(
		harness.WithTimeout(cfg.TestTimeout),
		harness.WithTimeoutMultiplier(cfg.TimeoutMultiplier),
		harness.WithDebug(cfg.Debug),
		harness.WithLogger(logger),
	)
	if err := conformance.Register(h, env); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	testEnv := harness.NewEnvironment(logger, env)
	if err := testEnv.Enter(ctx); err != nil {
		return fmt.Errorf("failed to set up test environment: %w", err)
	}
	defer func() {
		if exitErr := testEnv.Exit(); exitErr != nil {
			logger.WithError(exitErr).Warn("Test environment teardown failed")
		}
	}()
	if err := testEnv.EnsureStarted(ctx, env.Ready); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"tests":   len(h.Tests()),
		"timeout": h.TestTimeout(),
		"filter":  cfg.Filter,
	}).Info("Running conformance tests")

	rep := h.RunFiltered(ctx, filter)
	if ctx.Err() != nil {
		return context.Canceled
	}

	out := cmd.OutOrStdout()
	if err := report.Write(out, rep, report.Options{Format: format, Colors: report.ColorsEnabled(out)}); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if !rep.Passed() {
		counts := rep.Counts()
		failed := counts[harness.StatusFail] + counts[harness.StatusError] + counts[harness.StatusTimeout]
		return fmt.Errorf("%w: %d of %d tests did not pass", ErrTestsFailed, failed, len(rep.Results)-counts[harness.StatusNotRun])
	}
	return nil
}

// resolveConfig loads --config if given and applies explicitly set flags on top.
// fromFile reports whether a config file was read.
func resolveConfig(cmd *cobra.Command) (cfg *config.Config, fromFile bool, err error) {
	cfg = config.DefaultConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if cfg, err = config.Load(path); err != nil {
			return nil, false, err
		}
		fromFile = true
	}

	flags := cmd.Flags()
	if flags.Changed("filter") {
		cfg.Filter = runFilter
	}
	if flags.Changed("format") {
		cfg.OutputFormat = runFormat
	}
	if flags.Changed("timeout-multiplier") {
		cfg.TimeoutMultiplier = runTimeoutMultiplier
	}
	if flags.Changed("debug") {
		cfg.Debug = runDebug
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return cfg, fromFile, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
