// Package estimate is the estimation engine. It reruns an experiment many
// times, conditions on given keys by rejection, and reduces the surviving
// realizations into probabilities, distributions and moments.
//
// Usage:
//
//	space, err := estimate.New(scenario.NewMontyHall(), estimate.WithSeed(1))
//	if err != nil {
//	    return err
//	}
//	p, err := space.ProbabilityOf(experiment.Name("you_win_if_you_switch"))
//	q, err := space.ProbabilityOf(experiment.Name("car_behind_door_1"),
//	    estimate.Given(experiment.Name("you_win_if_you_switch")),
//	    estimate.Iterations(50000))
//
// Conditioning always performs exactly the requested number of reruns; a
// rare given event therefore yields few survivors rather than more work. An
// estimate with no survivors fails with *NoSurvivingSamplesError.
package estimate

import (
	"math/rand/v2"

	"github.com/nvandessel/samplespace/internal/experiment"
)

// SampleSpace wraps one Experiment and estimates statistics by rerunning it.
//
// A SampleSpace exclusively owns its Experiment and mutates it on every call;
// it is not safe for concurrent use. Use Parallel for multi-core estimation.
type SampleSpace struct {
	estimator
	experiment experiment.Experiment
	rng        *rand.Rand
}

// New creates a SampleSpace over exp.
func New(exp experiment.Experiment, opts ...Option) (*SampleSpace, error) {
	if exp == nil {
		return nil, &ConfigurationError{Option: "experiment", Reason: "must not be nil"}
	}
	s, err := resolveSettings(opts)
	if err != nil {
		return nil, err
	}

	space := &SampleSpace{
		experiment: exp,
		rng:        newRand(s.seed, 0),
	}
	space.estimator = newEstimator(s, space.draw)
	return space, nil
}

// Experiment returns the wrapped experiment. Its state is the last
// realization produced by an estimation call.
func (s *SampleSpace) Experiment() experiment.Experiment {
	return s.experiment
}

func (s *SampleSpace) draw(targets, given []experiment.Key, n int) (*Sample, error) {
	return condition(s.experiment, s.rng, targets, given, n)
}

func resolveSettings(opts []Option) (settings, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	if s.iterations <= 0 {
		return s, &ConfigurationError{Option: "iterations", Reason: "must be a positive integer"}
	}
	if s.workers <= 0 {
		return s, &ConfigurationError{Option: "workers", Reason: "must be a positive integer"}
	}
	if !s.seeded {
		s.seed = rand.Uint64()
	}
	return s, nil
}

// newRand returns the PCG source for a seed and stream. Stream 0 serves a
// SampleSpace; Parallel workers use streams 1..n.
func newRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}
