package estimate

import (
	"github.com/nvandessel/samplespace/internal/experiment"
)

// Estimator is the statistic surface shared by SampleSpace and Parallel.
type Estimator interface {
	Iterations() int
	Seed() uint64
	Sample(keys []experiment.Key, opts ...QueryOption) (*Sample, error)
	ProbabilityOf(event experiment.Key, opts ...QueryOption) (float64, error)
	DistributionOf(key experiment.Key, opts ...QueryOption) ([]float64, error)
	JointDistributionOf(keys []experiment.Key, opts ...QueryOption) ([][]float64, error)
	NthMomentOf(key experiment.Key, n int, opts ...QueryOption) (float64, error)
	ExpectedValueOf(key experiment.Key, opts ...QueryOption) (float64, error)
	VarianceOf(key experiment.Key, opts ...QueryOption) (float64, error)
	StandardDeviationOf(key experiment.Key, opts ...QueryOption) (float64, error)
	SkewnessOf(key experiment.Key, opts ...QueryOption) (float64, error)
	KurtosisOf(key experiment.Key, opts ...QueryOption) (float64, error)
	Describe(key experiment.Key, opts ...QueryOption) (Summary, error)
}

var (
	_ Estimator = (*SampleSpace)(nil)
	_ Estimator = (*Parallel)(nil)
)

// Open returns a SampleSpace over one experiment when workers is 1 and a
// Parallel estimator otherwise. Any WithWorkers in opts is overridden.
func Open(factory Factory, workers int, opts ...Option) (Estimator, error) {
	if factory == nil {
		return nil, &ConfigurationError{Option: "factory", Reason: "must not be nil"}
	}
	if workers <= 0 {
		return nil, &ConfigurationError{Option: "workers", Reason: "must be a positive integer"}
	}
	if workers == 1 {
		return New(factory(), opts...)
	}
	return NewParallel(factory, append(opts, WithWorkers(workers))...)
}
