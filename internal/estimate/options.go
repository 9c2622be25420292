package estimate

import (
	"log/slog"
	"runtime"
	"strconv"

	"github.com/nvandessel/samplespace/internal/experiment"
)

// DefaultIterations is the sample count used when none is configured.
const DefaultIterations = 10000

type settings struct {
	iterations int
	seed       uint64
	seeded     bool
	workers    int
	logger     *slog.Logger
	observer   func(Report)
}

func defaultSettings() settings {
	return settings{
		iterations: DefaultIterations,
		workers:    runtime.GOMAXPROCS(0),
		logger:     slog.New(slog.DiscardHandler),
	}
}

// Option configures a SampleSpace or Parallel estimator.
type Option func(*settings)

// WithIterations sets the default number of reruns per call.
func WithIterations(n int) Option {
	return func(s *settings) { s.iterations = n }
}

// WithSeed makes the estimator reproducible. Without it a random seed is
// chosen; either way the seed is reported by Seed().
func WithSeed(seed uint64) Option {
	return func(s *settings) {
		s.seed = seed
		s.seeded = true
	}
}

// WithWorkers sets the worker count of a Parallel estimator. It is ignored by
// SampleSpace.
func WithWorkers(n int) Option {
	return func(s *settings) { s.workers = n }
}

// WithLogger sets the logger used for debug output. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver registers fn to receive a Report after every successful call.
func WithObserver(fn func(Report)) Option {
	return func(s *settings) { s.observer = fn }
}

type query struct {
	given      []experiment.Key
	iterations int
	central    bool
	normalized bool
}

// QueryOption configures a single estimation call.
type QueryOption func(*query)

// Given adds conditioning keys; a realization survives only if every given
// key resolves truthy. Repeated use accumulates keys.
func Given(keys ...experiment.Key) QueryOption {
	return func(q *query) { q.given = append(q.given, keys...) }
}

// Iterations overrides the default sample count for one call.
func Iterations(n int) QueryOption {
	return func(q *query) {
		q.iterations = n
	}
}

// Central subtracts the empirical mean before the power is applied.
func Central() QueryOption {
	return func(q *query) { q.central = true }
}

// Normalized divides centered samples by the empirical standard deviation.
// It requires Central.
func Normalized() QueryOption {
	return func(q *query) { q.normalized = true }
}

func buildQuery(defaultIterations int, opts []QueryOption) (query, error) {
	q := query{iterations: defaultIterations}
	for _, opt := range opts {
		opt(&q)
	}
	if q.iterations <= 0 {
		return q, &ConfigurationError{Option: "iterations", Reason: "must be a positive integer"}
	}
	for i, k := range q.given {
		if k == nil {
			return q, &ConfigurationError{Option: "given", Reason: "key " + strconv.Itoa(i) + " is nil"}
		}
	}
	return q, nil
}

func keyStrings(keys []experiment.Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		if k == nil {
			out[i] = "<nil>"
			continue
		}
		out[i] = k.String()
	}
	return out
}
