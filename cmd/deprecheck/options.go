package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"deprecheck/internal/config"
	"deprecheck/internal/driver"
)

// runFlags are the flags shared by check and fix.
type runFlags struct {
	configPath     string
	noBuiltins     bool
	jobs           int
	maxDiagnostics int
	timings        bool
}

func readRunFlags(cmd *cobra.Command) (runFlags, error) {
	var (
		rf  runFlags
		err error
	)
	if rf.configPath, err = cmd.Flags().GetString("config"); err != nil {
		return rf, fmt.Errorf("failed to get config flag: %w", err)
	}
	if rf.noBuiltins, err = cmd.Flags().GetBool("no-builtins"); err != nil {
		return rf, fmt.Errorf("failed to get no-builtins flag: %w", err)
	}
	if rf.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return rf, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if rf.maxDiagnostics, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
		return rf, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if rf.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return rf, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return rf, nil
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to deprecheck.toml or .deprecheck.yml (default: discovered)")
	cmd.Flags().Bool("no-builtins", false, "run only the configured deprecated_methods")
	cmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
}

// loadConfig reads the explicit --config file or discovers one from target.
func loadConfig(target, configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	start := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		start = filepath.Dir(target)
	}
	return config.Discover(start)
}

// driverOptions merges config and flags; flags win.
func driverOptions(cfg *config.Config, rf runFlags, logger *slog.Logger) (driver.Options, error) {
	rs, err := cfg.RuleSet(rf.noBuiltins)
	if err != nil {
		return driver.Options{}, err
	}
	opts := driver.DefaultOptions()
	opts.RuleSet = rs
	opts.Severity = cfg.Severity()
	opts.MaxDiagnostics = cfg.Check.MaxDiagnostics
	if rf.maxDiagnostics > 0 {
		opts.MaxDiagnostics = rf.maxDiagnostics
	}
	opts.Jobs = rf.jobs
	opts.EnableTimings = rf.timings
	opts.Config = cfg
	opts.Logger = logger
	return opts, nil
}

// prepareRun resolves config and driver options for target.
func prepareRun(cmd *cobra.Command, target string) (driver.Options, error) {
	rf, err := readRunFlags(cmd)
	if err != nil {
		return driver.Options{}, err
	}
	cfg, err := loadConfig(target, rf.configPath)
	if err != nil {
		return driver.Options{}, err
	}
	logger := slog.Default()
	if cfg.Path != "" {
		logger.Debug("using config", "path", cfg.Path)
	}
	return driverOptions(cfg, rf, logger)
}
