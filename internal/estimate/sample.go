package estimate

import (
	"math/rand/v2"

	"github.com/nvandessel/samplespace/internal/experiment"
)

// Sample is the outcome of one conditioning loop: the resolved target values
// of every surviving realization, one aligned row per survivor.
type Sample struct {
	Keys       []experiment.Key
	Given      []experiment.Key
	Iterations int
	Rows       [][]any
}

// Accepted returns the number of surviving realizations.
func (s *Sample) Accepted() int {
	return len(s.Rows)
}

// AcceptanceRate returns the fraction of reruns that survived conditioning.
func (s *Sample) AcceptanceRate() float64 {
	if s.Iterations == 0 {
		return 0
	}
	return float64(len(s.Rows)) / float64(s.Iterations)
}

// Floats returns column i as float64 values.
func (s *Sample) Floats(i int) ([]float64, error) {
	out := make([]float64, len(s.Rows))
	for r, row := range s.Rows {
		x, err := experiment.ToFloat64(row[i])
		if err != nil {
			return nil, &NonNumericValueError{Key: s.Keys[i].String(), Value: row[i]}
		}
		out[r] = x
	}
	return out, nil
}

// Matrix returns every row as float64 values.
func (s *Sample) Matrix() ([][]float64, error) {
	out := make([][]float64, len(s.Rows))
	for r, row := range s.Rows {
		vals := make([]float64, len(row))
		for i, v := range row {
			x, err := experiment.ToFloat64(v)
			if err != nil {
				return nil, &NonNumericValueError{Key: s.Keys[i].String(), Value: v}
			}
			vals[i] = x
		}
		out[r] = vals
	}
	return out, nil
}

// requireSurvivors turns an empty sample into *NoSurvivingSamplesError.
func (s *Sample) requireSurvivors() error {
	if len(s.Rows) > 0 {
		return nil
	}
	return &NoSurvivingSamplesError{Iterations: s.Iterations, Given: keyStrings(s.Given)}
}

// condition reruns e exactly n times and keeps the targets of every
// realization on which all given keys are truthy. Given keys short-circuit
// on the first falsy one. Any resolution error aborts the loop.
func condition(e experiment.Experiment, rng *rand.Rand, targets, given []experiment.Key, n int) (*Sample, error) {
	s := &Sample{Keys: targets, Given: given, Iterations: n}
	for range n {
		e.Rerun(rng)

		ok, err := survives(e, given)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		row, err := experiment.ResolveAll(e, targets)
		if err != nil {
			return nil, err
		}
		s.Rows = append(s.Rows, row)
	}
	return s, nil
}

func survives(e experiment.Experiment, given []experiment.Key) (bool, error) {
	for _, g := range given {
		ok, err := experiment.ResolveTruthy(e, g)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
