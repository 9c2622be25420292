// Package store records estimation runs so past results can be listed and
// compared.
package store

import (
	"context"
	"time"

	"github.com/nvandessel/samplespace/internal/estimate"
)

// Run is one recorded estimation.
type Run struct {
	ID         string        `json:"id"`
	Scenario   string        `json:"scenario"`
	Statistic  string        `json:"statistic"`
	Keys       []string      `json:"keys"`
	Given      []string      `json:"given,omitempty"`
	Iterations int           `json:"iterations"`
	Survivors  int           `json:"survivors"`
	Seed       uint64        `json:"seed"`
	Order      int           `json:"order,omitempty"`
	Central    bool          `json:"central,omitempty"`
	Normalized bool          `json:"normalized,omitempty"`
	Value      any           `json:"value,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`
	CreatedAt  time.Time     `json:"created_at"`
}

// NewRun converts an engine report into a Run for scenario.
func NewRun(scenario string, r estimate.Report) Run {
	return Run{
		Scenario:   scenario,
		Statistic:  r.Statistic,
		Keys:       r.Keys,
		Given:      r.Given,
		Iterations: r.Iterations,
		Survivors:  r.Survivors,
		Seed:       r.Seed,
		Order:      r.Order,
		Central:    r.Central,
		Normalized: r.Normalized,
		Value:      r.Value,
		Elapsed:    r.Elapsed,
	}
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Scenario  string
	Statistic string
	Limit     int // 0 = no limit
}

func (f Filter) matches(r Run) bool {
	if f.Scenario != "" && r.Scenario != f.Scenario {
		return false
	}
	if f.Statistic != "" && r.Statistic != f.Statistic {
		return false
	}
	return true
}

// RunStore persists estimation runs.
type RunStore interface {
	// Record stores run and returns its ID. An empty ID is generated and a
	// zero CreatedAt is set to now.
	Record(ctx context.Context, run Run) (string, error)

	// Get returns the run with id, or nil if there is none.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns matching runs, newest first.
	List(ctx context.Context, filter Filter) ([]Run, error)

	Close() error
}
