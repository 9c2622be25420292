package mcp

import (
	"time"

	"github.com/nvandessel/samplespace/internal/estimate"
)

// ScenariosInput defines the input for samplespace_scenarios tool.
type ScenariosInput struct{}

// ScenariosOutput defines the output for samplespace_scenarios tool.
type ScenariosOutput struct {
	Scenarios []ScenarioInfo `json:"scenarios" jsonschema:"Built-in scenarios sorted by name"`
	Count     int            `json:"count" jsonschema:"Number of scenarios"`
}

// ScenarioInfo describes one built-in scenario.
type ScenarioInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Keys        []string `json:"keys" jsonschema:"Keys the scenario resolves after every rerun"`
}

// RunInfo reports how an estimate was produced.
type RunInfo struct {
	Iterations int    `json:"iterations" jsonschema:"Number of reruns performed"`
	Survivors  int    `json:"survivors" jsonschema:"Realizations on which every given key was true"`
	Seed       uint64 `json:"seed" jsonschema:"Seed that reproduces this estimate"`
	RunID      string `json:"run_id,omitempty" jsonschema:"History ID of the recorded run"`
}

// ProbabilityInput defines the input for samplespace_probability tool.
type ProbabilityInput struct {
	Scenario   string   `json:"scenario" jsonschema:"Built-in scenario name (see samplespace_scenarios)"`
	Event      string   `json:"event" jsonschema:"Key expression of the event, e.g. you_win_if_you_switch or total >= 7"`
	Given      []string `json:"given,omitempty" jsonschema:"Key expressions to condition on; a realization survives only if all are true"`
	Iterations int      `json:"iterations,omitempty" jsonschema:"Number of reruns (default from configuration)"`
	Seed       *uint64  `json:"seed,omitempty" jsonschema:"Seed for a reproducible estimate; 0 is a valid seed, omitted uses the configured seed"`
}

// ProbabilityOutput defines the output for samplespace_probability tool.
type ProbabilityOutput struct {
	Scenario    string   `json:"scenario"`
	Event       string   `json:"event"`
	Given       []string `json:"given,omitempty"`
	Probability float64  `json:"probability" jsonschema:"Estimated P(event | given) in [0, 1]"`
	Run         RunInfo  `json:"run"`
}

// DistributionInput defines the input for samplespace_distribution tool.
type DistributionInput struct {
	Scenario   string   `json:"scenario" jsonschema:"Built-in scenario name (see samplespace_scenarios)"`
	Keys       []string `json:"keys" jsonschema:"One key for a distribution or several for a joint distribution"`
	Given      []string `json:"given,omitempty" jsonschema:"Key expressions to condition on"`
	Iterations int      `json:"iterations,omitempty" jsonschema:"Number of reruns (default from configuration)"`
	Seed       *uint64  `json:"seed,omitempty" jsonschema:"Seed for a reproducible estimate; 0 is a valid seed, omitted uses the configured seed"`
	Limit      int      `json:"limit,omitempty" jsonschema:"Maximum rows to return (default 1000)"`
	Export     string   `json:"export,omitempty" jsonschema:"Also write every row to this Arrow IPC file under .samplespace/exports"`
}

// DistributionOutput defines the output for samplespace_distribution tool.
type DistributionOutput struct {
	Scenario  string      `json:"scenario"`
	Keys      []string    `json:"keys"`
	Rows      [][]float64 `json:"rows" jsonschema:"One row per surviving realization with one value per key, in generation order"`
	Returned  int         `json:"returned" jsonschema:"Number of rows returned"`
	Truncated bool        `json:"truncated" jsonschema:"Whether rows were cut at the limit"`
	Exported  string      `json:"exported,omitempty" jsonschema:"Path of the Arrow IPC export, if requested"`
	Run       RunInfo     `json:"run"`
}

// MomentInput defines the input for samplespace_moment tool.
type MomentInput struct {
	Scenario   string   `json:"scenario" jsonschema:"Built-in scenario name (see samplespace_scenarios)"`
	Key        string   `json:"key" jsonschema:"Key expression of the numeric quantity"`
	Statistic  string   `json:"statistic,omitempty" jsonschema:"One of moment (default), mean, variance, std, skewness, kurtosis"`
	N          int      `json:"n,omitempty" jsonschema:"Moment order for statistic=moment (default 1)"`
	Central    bool     `json:"central,omitempty" jsonschema:"Subtract the mean (statistic=moment only)"`
	Normalized bool     `json:"normalized,omitempty" jsonschema:"Divide by the standard deviation; requires central (statistic=moment only)"`
	Given      []string `json:"given,omitempty" jsonschema:"Key expressions to condition on"`
	Iterations int      `json:"iterations,omitempty" jsonschema:"Number of reruns (default from configuration)"`
	Seed       *uint64  `json:"seed,omitempty" jsonschema:"Seed for a reproducible estimate; 0 is a valid seed, omitted uses the configured seed"`
}

// MomentOutput defines the output for samplespace_moment tool.
type MomentOutput struct {
	Scenario   string  `json:"scenario"`
	Key        string  `json:"key"`
	Statistic  string  `json:"statistic"`
	Order      int     `json:"order,omitempty"`
	Central    bool    `json:"central,omitempty"`
	Normalized bool    `json:"normalized,omitempty"`
	Value      float64 `json:"value"`
	Run        RunInfo `json:"run"`
}

// DescribeInput defines the input for samplespace_describe tool.
type DescribeInput struct {
	Scenario   string   `json:"scenario" jsonschema:"Built-in scenario name (see samplespace_scenarios)"`
	Key        string   `json:"key" jsonschema:"Key expression of the numeric quantity"`
	Given      []string `json:"given,omitempty" jsonschema:"Key expressions to condition on"`
	Iterations int      `json:"iterations,omitempty" jsonschema:"Number of reruns (default from configuration)"`
	Seed       *uint64  `json:"seed,omitempty" jsonschema:"Seed for a reproducible estimate; 0 is a valid seed, omitted uses the configured seed"`
}

// DescribeOutput defines the output for samplespace_describe tool.
type DescribeOutput struct {
	Scenario string           `json:"scenario"`
	Key      string           `json:"key"`
	Summary  estimate.Summary `json:"summary"`
	Run      RunInfo          `json:"run"`
}

// HistoryInput defines the input for samplespace_history tool.
type HistoryInput struct {
	Scenario  string `json:"scenario,omitempty" jsonschema:"Only runs of this scenario"`
	Statistic string `json:"statistic,omitempty" jsonschema:"Only runs of this statistic, e.g. probability"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum runs to return (default 20)"`
}

// HistoryOutput defines the output for samplespace_history tool.
type HistoryOutput struct {
	Runs    []RunSummary `json:"runs" jsonschema:"Recorded runs, newest first"`
	Count   int          `json:"count"`
	Enabled bool         `json:"enabled" jsonschema:"Whether run history is enabled"`
}

// RunSummary is one recorded run.
type RunSummary struct {
	ID         string    `json:"id"`
	Scenario   string    `json:"scenario"`
	Statistic  string    `json:"statistic"`
	Keys       []string  `json:"keys"`
	Given      []string  `json:"given,omitempty"`
	Iterations int       `json:"iterations"`
	Survivors  int       `json:"survivors"`
	Seed       uint64    `json:"seed"`
	Value      any       `json:"value,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
