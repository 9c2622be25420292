package estimate

import (
	"math/rand/v2"

	"github.com/nvandessel/samplespace/internal/experiment"
	"golang.org/x/sync/errgroup"
)

// Factory builds an independent Experiment instance.
type Factory func() experiment.Experiment

// Parallel spreads each estimation call over several workers. Every worker
// owns its own Experiment (from the factory) and its own random stream
// derived from the seed, so workers share no mutable state. Rows are merged
// in worker order once every worker has finished its loop, which keeps
// results deterministic for a fixed seed and worker count.
//
// Like SampleSpace, a Parallel estimator must not be used by several
// goroutines at once.
type Parallel struct {
	estimator
	workers []*worker
}

type worker struct {
	experiment experiment.Experiment
	rng        *rand.Rand
}

// NewParallel creates a Parallel estimator. The worker count defaults to
// GOMAXPROCS and is set with WithWorkers.
func NewParallel(factory Factory, opts ...Option) (*Parallel, error) {
	if factory == nil {
		return nil, &ConfigurationError{Option: "factory", Reason: "must not be nil"}
	}
	s, err := resolveSettings(opts)
	if err != nil {
		return nil, err
	}

	p := &Parallel{workers: make([]*worker, s.workers)}
	for i := range p.workers {
		exp := factory()
		if exp == nil {
			return nil, &ConfigurationError{Option: "factory", Reason: "returned a nil experiment"}
		}
		p.workers[i] = &worker{
			experiment: exp,
			rng:        newRand(s.seed, uint64(i)+1),
		}
	}
	p.estimator = newEstimator(s, p.draw)
	return p, nil
}

// Workers returns the number of workers.
func (p *Parallel) Workers() int {
	return len(p.workers)
}

func (p *Parallel) draw(targets, given []experiment.Key, n int) (*Sample, error) {
	shares := splitIterations(n, len(p.workers))
	parts := make([]*Sample, len(p.workers))

	var g errgroup.Group
	for i, w := range p.workers {
		if shares[i] == 0 {
			continue
		}
		g.Go(func() error {
			s, err := condition(w.experiment, w.rng, targets, given, shares[i])
			if err != nil {
				return err
			}
			parts[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &Sample{Keys: targets, Given: given, Iterations: n}
	for _, part := range parts {
		if part != nil {
			merged.Rows = append(merged.Rows, part.Rows...)
		}
	}
	return merged, nil
}

// splitIterations divides n into k near-equal shares; the first n%k shares
// get one extra iteration.
func splitIterations(n, k int) []int {
	shares := make([]int, k)
	base, extra := n/k, n%k
	for i := range shares {
		shares[i] = base
		if i < extra {
			shares[i]++
		}
	}
	return shares
}
