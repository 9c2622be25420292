package estimate

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/nvandessel/samplespace/internal/experiment"
)

// Statistic names reported to observers.
const (
	StatSample            = "sample"
	StatProbability       = "probability"
	StatDistribution      = "distribution"
	StatJointDistribution = "joint_distribution"
	StatMoment            = "moment"
	StatExpectedValue     = "expected_value"
	StatVariance          = "variance"
	StatStandardDeviation = "standard_deviation"
	StatSkewness          = "skewness"
	StatKurtosis          = "kurtosis"
	StatDescribe          = "describe"
)

// Report describes one completed estimation call.
type Report struct {
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
}

// Summary holds the descriptive statistics of one conditioned sample.
// Skewness and Kurtosis are nil when the sample has zero variance.
type Summary struct {
	Iterations int      `json:"iterations"`
	Survivors  int      `json:"survivors"`
	Mean       float64  `json:"mean"`
	Variance   float64  `json:"variance"`
	StdDev     float64  `json:"std_dev"`
	Min        float64  `json:"min"`
	Max        float64  `json:"max"`
	Skewness   *float64 `json:"skewness,omitempty"`
	Kurtosis   *float64 `json:"kurtosis,omitempty"`
}

// drawFunc runs the conditioning loop for n iterations.
type drawFunc func(targets, given []experiment.Key, n int) (*Sample, error)

// estimator implements every statistic on top of a drawFunc. SampleSpace and
// Parallel differ only in how they draw.
type estimator struct {
	draw       drawFunc
	iterations int
	seed       uint64
	logger     *slog.Logger
	observer   func(Report)
}

func newEstimator(s settings, draw drawFunc) estimator {
	return estimator{
		draw:       draw,
		iterations: s.iterations,
		seed:       s.seed,
		logger:     s.logger,
		observer:   s.observer,
	}
}

// Iterations returns the default sample count.
func (e *estimator) Iterations() int { return e.iterations }

// Seed returns the seed of the estimator's random source.
func (e *estimator) Seed() uint64 { return e.seed }

func (e *estimator) run(keys []experiment.Key, opts []QueryOption) (*Sample, query, error) {
	if len(keys) == 0 {
		return nil, query{}, &ConfigurationError{Option: "keys", Reason: "at least one key is required"}
	}
	for _, k := range keys {
		if k == nil {
			return nil, query{}, &ConfigurationError{Option: "keys", Reason: "keys must not be nil"}
		}
	}
	q, err := buildQuery(e.iterations, opts)
	if err != nil {
		return nil, q, err
	}
	s, err := e.draw(keys, q.given, q.iterations)
	if err != nil {
		return nil, q, err
	}
	return s, q, nil
}

func (e *estimator) report(r Report, s *Sample, start time.Time) {
	r.Keys = keyStrings(s.Keys)
	r.Given = keyStrings(s.Given)
	r.Iterations = s.Iterations
	r.Survivors = s.Accepted()
	r.Seed = e.seed
	r.Elapsed = time.Since(start)

	e.logger.Debug("estimate complete",
		"statistic", r.Statistic,
		"keys", r.Keys,
		"given", r.Given,
		"iterations", r.Iterations,
		"survivors", r.Survivors,
		"elapsed", r.Elapsed,
	)
	if e.observer != nil {
		e.observer(r)
	}
}

// Sample runs the conditioning loop and returns the raw surviving rows. Unlike
// the aggregate statistics it does not fail when nothing survives.
func (e *estimator) Sample(keys []experiment.Key, opts ...QueryOption) (*Sample, error) {
	start := time.Now()
	s, _, err := e.run(keys, opts)
	if err != nil {
		return nil, err
	}
	e.report(Report{Statistic: StatSample}, s, start)
	return s, nil
}

// ProbabilityOf estimates P(event | given) as the fraction of surviving
// realizations on which event is truthy.
func (e *estimator) ProbabilityOf(event experiment.Key, opts ...QueryOption) (float64, error) {
	start := time.Now()
	s, _, err := e.run([]experiment.Key{event}, opts)
	if err != nil {
		return 0, err
	}
	if err := s.requireSurvivors(); err != nil {
		return 0, err
	}

	hits := 0
	for _, row := range s.Rows {
		if experiment.Truthy(row[0]) {
			hits++
		}
	}
	p := float64(hits) / float64(len(s.Rows))
	e.report(Report{Statistic: StatProbability, Value: p}, s, start)
	return p, nil
}

// ProbabilityThat is an alias of ProbabilityOf.
func (e *estimator) ProbabilityThat(event experiment.Key, opts ...QueryOption) (float64, error) {
	return e.ProbabilityOf(event, opts...)
}

// DistributionOf returns the values of key over surviving realizations, in
// generation order.
func (e *estimator) DistributionOf(key experiment.Key, opts ...QueryOption) ([]float64, error) {
	start := time.Now()
	xs, s, err := e.distribution(key, opts)
	if err != nil {
		return nil, err
	}
	e.report(Report{Statistic: StatDistribution}, s, start)
	return xs, nil
}

func (e *estimator) distribution(key experiment.Key, opts []QueryOption) ([]float64, *Sample, error) {
	s, _, err := e.run([]experiment.Key{key}, opts)
	if err != nil {
		return nil, nil, err
	}
	if err := s.requireSurvivors(); err != nil {
		return nil, nil, err
	}
	xs, err := s.Floats(0)
	if err != nil {
		return nil, nil, err
	}
	return xs, s, nil
}

// JointDistributionOf returns one row per surviving realization with the
// value of each key, all resolved from that same realization.
func (e *estimator) JointDistributionOf(keys []experiment.Key, opts ...QueryOption) ([][]float64, error) {
	start := time.Now()
	s, _, err := e.run(keys, opts)
	if err != nil {
		return nil, err
	}
	if err := s.requireSurvivors(); err != nil {
		return nil, err
	}
	rows, err := s.Matrix()
	if err != nil {
		return nil, err
	}
	e.report(Report{Statistic: StatJointDistribution}, s, start)
	return rows, nil
}

// NthMomentOf estimates the n-th moment of key. Central() subtracts the
// mean; Normalized() additionally divides by the standard deviation and is
// only valid together with Central().
func (e *estimator) NthMomentOf(key experiment.Key, n int, opts ...QueryOption) (float64, error) {
	return e.moment(StatMoment, key, n, opts, nil)
}

// moment computes a moment and applies finish, if any, before reporting.
func (e *estimator) moment(stat string, key experiment.Key, n int, opts []QueryOption, finish func(float64) float64) (float64, error) {
	start := time.Now()

	var q query
	for _, opt := range opts {
		opt(&q)
	}
	if n < 1 {
		return 0, &ConfigurationError{Option: "moment order", Reason: "must be at least 1"}
	}
	if q.normalized && !q.central {
		return 0, &ConfigurationError{Option: "normalized", Reason: "only valid together with central"}
	}

	xs, s, err := e.distribution(key, opts)
	if err != nil {
		return 0, err
	}
	m, err := Moment(xs, n, q.central, q.normalized)
	if err != nil {
		var dde *DegenerateDistributionError
		if errors.As(err, &dde) {
			dde.Key = key.String()
		}
		return 0, err
	}
	if finish != nil {
		m = finish(m)
	}

	e.report(Report{
		Statistic:  stat,
		Order:      n,
		Central:    q.central,
		Normalized: q.normalized,
		Value:      m,
	}, s, start)
	return m, nil
}

// ExpectedValueOf estimates E[key | given], the first raw moment.
func (e *estimator) ExpectedValueOf(key experiment.Key, opts ...QueryOption) (float64, error) {
	return e.moment(StatExpectedValue, key, 1, withoutShape(opts), nil)
}

// Mean is an alias of ExpectedValueOf.
func (e *estimator) Mean(key experiment.Key, opts ...QueryOption) (float64, error) {
	return e.ExpectedValueOf(key, opts...)
}

// VarianceOf estimates the second central moment.
func (e *estimator) VarianceOf(key experiment.Key, opts ...QueryOption) (float64, error) {
	return e.moment(StatVariance, key, 2, append(withoutShape(opts), Central()), nil)
}

// Var is an alias of VarianceOf.
func (e *estimator) Var(key experiment.Key, opts ...QueryOption) (float64, error) {
	return e.VarianceOf(key, opts...)
}

// StandardDeviationOf estimates the square root of the variance.
func (e *estimator) StandardDeviationOf(key experiment.Key, opts ...QueryOption) (float64, error) {
	return e.moment(StatStandardDeviation, key, 2, append(withoutShape(opts), Central()), math.Sqrt)
}

// Std is an alias of StandardDeviationOf.
func (e *estimator) Std(key experiment.Key, opts ...QueryOption) (float64, error) {
	return e.StandardDeviationOf(key, opts...)
}

// SkewnessOf estimates the third central normalized moment.
func (e *estimator) SkewnessOf(key experiment.Key, opts ...QueryOption) (float64, error) {
	return e.moment(StatSkewness, key, 3, append(withoutShape(opts), Central(), Normalized()), nil)
}

// KurtosisOf estimates the fourth central normalized moment (not excess
// kurtosis: a normal distribution yields 3).
func (e *estimator) KurtosisOf(key experiment.Key, opts ...QueryOption) (float64, error) {
	return e.moment(StatKurtosis, key, 4, append(withoutShape(opts), Central(), Normalized()), nil)
}

// Describe computes the summary statistics of key from a single conditioned
// sample.
func (e *estimator) Describe(key experiment.Key, opts ...QueryOption) (Summary, error) {
	start := time.Now()
	xs, s, err := e.distribution(key, opts)
	if err != nil {
		return Summary{}, err
	}

	out := Summary{
		Iterations: s.Iterations,
		Survivors:  s.Accepted(),
		Mean:       Mean(xs),
		Variance:   Variance(xs),
		Min:        xs[0],
		Max:        xs[0],
	}
	out.StdDev = math.Sqrt(out.Variance)
	for _, x := range xs[1:] {
		out.Min = math.Min(out.Min, x)
		out.Max = math.Max(out.Max, x)
	}
	if skew, err := Moment(xs, 3, true, true); err == nil {
		out.Skewness = &skew
	}
	if kurt, err := Moment(xs, 4, true, true); err == nil {
		out.Kurtosis = &kurt
	}

	e.report(Report{Statistic: StatDescribe, Value: out}, s, start)
	return out, nil
}

// withoutShape drops caller-supplied Central/Normalized flags, which the
// named moment helpers fix themselves.
func withoutShape(opts []QueryOption) []QueryOption {
	out := make([]QueryOption, 0, len(opts)+2)
	out = append(out, opts...)
	out = append(out, func(q *query) {
		q.central = false
		q.normalized = false
	})
	return out
}
