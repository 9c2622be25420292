package main

import (
	"fmt"
	"strings"

	"github.com/nvandessel/samplespace/internal/config"
	"github.com/nvandessel/samplespace/internal/logging"
	"github.com/nvandessel/samplespace/internal/runner"
	"github.com/nvandessel/samplespace/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// loadConfig loads configuration honoring the global --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWithPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openHistory opens the run history, or returns nil when it is disabled.
func openHistory(cfg *config.Config) (*store.SQLiteRunStore, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	path, err := cfg.HistoryPath()
	if err != nil {
		return nil, err
	}
	s, err := store.NewSQLiteRunStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}
	return s, nil
}

// addSamplingFlags registers the flags shared by every estimation command.
func addSamplingFlags(flags *pflag.FlagSet) {
	flags.StringArray("given", nil, "Key expression to condition on (repeatable)")
	flags.Int("iterations", 0, "Number of reruns (default from config)")
	flags.Uint64("seed", 0, "Random seed for reproducible estimates; 0 is a valid seed (default from config)")
	flags.Int("workers", 0, "Parallel workers (default from config)")
}

// openSession builds a runner from configuration and opens the named
// scenario with the sampling flags of cmd. The returned cleanup must be
// called once the session is done.
func openSession(cmd *cobra.Command, scenarioName string) (*runner.Session, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	root, _ := cmd.Flags().GetString("root")
	logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
	runLog := logging.NewRunLog(store.LocalDir(root), cfg.Logging.Level)

	history, err := openHistory(cfg)
	if err != nil {
		runLog.Close()
		return nil, nil, err
	}

	opts := runner.Options{
		Sampling: cfg.Sampling,
		RunLog:   runLog,
		Logger:   logger,
	}
	if history != nil {
		opts.History = history
	}

	cleanup := func() {
		runLog.Close()
		if history != nil {
			if err := history.Close(); err != nil {
				logger.Warn("failed to close run history", "error", err)
			}
		}
	}

	given, _ := cmd.Flags().GetStringArray("given")
	iterations, _ := cmd.Flags().GetInt("iterations")
	seed, _ := cmd.Flags().GetUint64("seed")
	workers, _ := cmd.Flags().GetInt("workers")

	logger.Log(cmd.Context(), logging.LevelTrace, "opening session",
		"scenario", scenarioName, "given", given, "iterations", iterations, "seed", seed, "workers", workers)

	req := runner.Request{
		Scenario:   scenarioName,
		Given:      given,
		Iterations: iterations,
		Workers:    workers,
	}
	if cmd.Flags().Changed("seed") {
		req.Seed = &seed
	}
	sess, err := runner.New(opts).Open(cmd.Context(), req)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return sess, cleanup, nil
}

// runFields describes how the last estimate of sess was produced.
func runFields(sess *runner.Session) map[string]any {
	rep := sess.LastReport()
	fields := map[string]any{
		"iterations": rep.Iterations,
		"survivors":  rep.Survivors,
		"seed":       rep.Seed,
	}
	if id := sess.LastRunID(); id != "" {
		fields["run_id"] = id
	}
	return fields
}

// runSuffix is the human-readable form of runFields.
func runSuffix(sess *runner.Session) string {
	rep := sess.LastReport()
	return fmt.Sprintf("(%d iterations, %d survivors, seed %d)", rep.Iterations, rep.Survivors, rep.Seed)
}

// conditionSuffix renders " | a, b" for a non-empty given list.
func conditionSuffix(given []string) string {
	if len(given) == 0 {
		return ""
	}
	return " | " + strings.Join(given, ", ")
}
