// Package runner opens estimators over the built-in scenarios. It applies
// the configured sampling defaults, parses textual keys, and records every
// completed estimate in the run history and run log.
//
// Both the CLI and the MCP server go through a Runner, so a scenario
// estimated from either surface produces the same history entries.
package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nvandessel/samplespace/internal/config"
	"github.com/nvandessel/samplespace/internal/estimate"
	"github.com/nvandessel/samplespace/internal/experiment"
	"github.com/nvandessel/samplespace/internal/keyexpr"
	"github.com/nvandessel/samplespace/internal/logging"
	"github.com/nvandessel/samplespace/internal/scenario"
	"github.com/nvandessel/samplespace/internal/store"
)

// Options configures a Runner. History and RunLog may be nil.
type Options struct {
	Sampling config.SamplingConfig
	History  store.RunStore
	RunLog   *logging.RunLog
	Logger   *slog.Logger
}

// Runner opens estimation sessions.
type Runner struct {
	sampling config.SamplingConfig
	history  store.RunStore
	runLog   *logging.RunLog
	logger   *slog.Logger
}

// New creates a Runner.
func New(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		sampling: opts.Sampling,
		history:  opts.History,
		runLog:   opts.RunLog,
		logger:   logger,
	}
}

// Request selects a scenario. Zero Iterations and Workers fall back to the
// configured sampling defaults.
type Request struct {
	Scenario   string
	Given      []string // key expressions
	Iterations int
	// Seed, when set, seeds the estimator; zero is a valid seed. A nil Seed
	// uses the configured seed, where zero means a random seed.
	Seed    *uint64
	Workers int
}

// Session is one opened estimator plus the parsed conditioning keys of the
// request that opened it.
type Session struct {
	Entry     scenario.Entry
	Estimator estimate.Estimator

	given      []experiment.Key
	lastReport estimate.Report
	lastRun    string
}

// Open looks up the scenario, parses the given expressions and builds an
// estimator. Every estimate made through the session is recorded under ctx.
func (r *Runner) Open(ctx context.Context, req Request) (*Session, error) {
	entry, err := scenario.Lookup(req.Scenario)
	if err != nil {
		return nil, err
	}
	given, err := keyexpr.ParseAll(req.Given)
	if err != nil {
		return nil, fmt.Errorf("invalid given key: %w", err)
	}

	s := &Session{Entry: entry, given: given}

	opts := []estimate.Option{
		estimate.WithIterations(r.sampling.Iterations),
		estimate.WithLogger(r.logger),
		estimate.WithObserver(func(rep estimate.Report) {
			s.lastReport = rep
			s.lastRun = r.record(ctx, entry.Name, rep)
		}),
	}
	if req.Iterations != 0 {
		opts = append(opts, estimate.WithIterations(req.Iterations))
	}
	switch {
	case req.Seed != nil:
		opts = append(opts, estimate.WithSeed(*req.Seed))
	case r.sampling.Seed != 0:
		opts = append(opts, estimate.WithSeed(r.sampling.Seed))
	}

	workers := r.sampling.Workers
	if req.Workers != 0 {
		workers = req.Workers
	}
	if workers == 0 {
		workers = 1
	}

	s.Estimator, err = estimate.Open(entry.New, workers, opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// record stores rep and returns the new run ID, or "" when history is off
// or the write failed. Write failures are logged, not returned.
func (r *Runner) record(ctx context.Context, scenarioName string, rep estimate.Report) string {
	r.runLog.Log(scenarioName, rep)
	if r.history == nil {
		return ""
	}
	id, err := r.history.Record(ctx, store.NewRun(scenarioName, rep))
	if err != nil {
		r.logger.Warn("failed to record run", "scenario", scenarioName, "statistic", rep.Statistic, "error", err)
		return ""
	}
	return id
}

// Key parses one key expression.
func (s *Session) Key(expr string) (experiment.Key, error) {
	k, err := keyexpr.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	return k, nil
}

// Keys parses several key expressions.
func (s *Session) Keys(exprs []string) ([]experiment.Key, error) {
	keys, err := keyexpr.ParseAll(exprs)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	return keys, nil
}

// Query returns the per-call options of the session followed by extra.
func (s *Session) Query(extra ...estimate.QueryOption) []estimate.QueryOption {
	opts := make([]estimate.QueryOption, 0, len(extra)+1)
	if len(s.given) > 0 {
		opts = append(opts, estimate.Given(s.given...))
	}
	return append(opts, extra...)
}

// LastRunID returns the history ID of the most recent recorded estimate.
func (s *Session) LastRunID() string {
	return s.lastRun
}

// LastReport returns the report of the most recent completed estimate.
func (s *Session) LastReport() estimate.Report {
	return s.lastReport
}
