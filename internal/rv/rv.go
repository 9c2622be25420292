// Package rv provides the primitive random-variate generators used to build
// experiments. Every generator draws from the *rand.Rand handed to
// Experiment.Rerun, so a seeded estimation replays exactly.
package rv

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// Unif draws uniformly from [a, b).
func Unif(r *rand.Rand, a, b float64) float64 {
	return a + r.Float64()*(b-a)
}

// Bern draws a Bernoulli trial that succeeds with probability p.
func Bern(r *rand.Rand, p float64) bool {
	return r.Float64() <= p
}

// Bin counts the successes of n independent Bernoulli(p) trials.
func Bin(r *rand.Rand, n int, p float64) int {
	k := 0
	for range n {
		if Bern(r, p) {
			k++
		}
	}
	return k
}

// RandomSign returns +1 with probability p and -1 otherwise.
func RandomSign(r *rand.Rand, p float64) int {
	if Bern(r, p) {
		return 1
	}
	return -1
}

// Normal draws from a normal distribution with mean mu and standard deviation sigma.
func Normal(r *rand.Rand, mu, sigma float64) float64 {
	return mu + sigma*r.NormFloat64()
}

// Normalized scales weights so they sum to 1. It returns nil if the weights
// do not sum to a positive value.
func Normalized(weights []float64) []float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return nil
	}
	out := make([]float64, len(weights))
	for i, w := range weights {
		out[i] = w / total
	}
	return out
}

// ErrInvalidWeights indicates categorical weights that are negative or do not
// sum to a positive value.
var ErrInvalidWeights = errors.New("weights must be non-negative and sum to a positive value")

// Categorical draws one of a fixed set of categories with fixed weights.
type Categorical[T any] struct {
	categories []T
	cumulative []float64
}

// NewCategorical validates categories and weights and precomputes the
// cumulative distribution.
func NewCategorical[T any](categories []T, weights []float64) (*Categorical[T], error) {
	if len(categories) == 0 {
		return nil, errors.New("at least one category is required")
	}
	if len(categories) != len(weights) {
		return nil, fmt.Errorf("got %d categories but %d weights", len(categories), len(weights))
	}
	for _, w := range weights {
		if w < 0 {
			return nil, ErrInvalidWeights
		}
	}
	ps := Normalized(weights)
	if ps == nil {
		return nil, ErrInvalidWeights
	}
	cum := make([]float64, len(ps))
	acc := 0.0
	for i, p := range ps {
		acc += p
		cum[i] = acc
	}
	cum[len(cum)-1] = 1
	return &Categorical[T]{categories: categories, cumulative: cum}, nil
}

// Draw picks a category.
func (c *Categorical[T]) Draw(r *rand.Rand) T {
	u := r.Float64()
	for i, edge := range c.cumulative {
		if u < edge {
			return c.categories[i]
		}
	}
	return c.categories[len(c.categories)-1]
}

// Categ draws one category with probability proportional to its weight. Like
// rand.IntN it panics on invalid arguments; use NewCategorical to validate
// once and draw many times.
func Categ[T any](r *rand.Rand, categories []T, weights []float64) T {
	c, err := NewCategorical(categories, weights)
	if err != nil {
		panic("rv: Categ: " + err.Error())
	}
	return c.Draw(r)
}

// Uniform draws one of categories with equal probability.
func Uniform[T any](r *rand.Rand, categories []T) T {
	return categories[r.IntN(len(categories))]
}
