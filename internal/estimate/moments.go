package estimate

import (
	"math"
)

// Moment returns the empirical n-th moment of xs.
//
// With central, the sample mean is subtracted first. With normalized (which
// requires central), centered values are further divided by the population
// standard deviation. The result is the mean of the transformed values raised
// to the n-th power. A normalized moment of a constant sample is undefined and
// returns *DegenerateDistributionError.
func Moment(xs []float64, n int, central, normalized bool) (float64, error) {
	if n < 1 {
		return 0, &ConfigurationError{Option: "moment order", Reason: "must be at least 1"}
	}
	if normalized && !central {
		return 0, &ConfigurationError{Option: "normalized", Reason: "only valid together with central"}
	}
	if len(xs) == 0 {
		return 0, &NoSurvivingSamplesError{}
	}

	if !central {
		return meanPow(xs, 0, 1, n), nil
	}

	mu := Mean(xs)
	if !normalized {
		return meanPow(xs, mu, 1, n), nil
	}

	if constant(xs) {
		return 0, &DegenerateDistributionError{Order: n, Value: xs[0]}
	}
	variance := meanPow(xs, mu, 1, 2)
	if variance == 0 {
		return 0, &DegenerateDistributionError{Order: n, Value: mu}
	}
	return meanPow(xs, mu, math.Sqrt(variance), n), nil
}

// Mean returns the arithmetic mean of xs using compensated summation.
// It returns NaN for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var acc sum
	for _, x := range xs {
		acc.add(x)
	}
	return acc.value() / float64(len(xs))
}

// Variance returns the population variance (second central moment) of xs.
func Variance(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return meanPow(xs, Mean(xs), 1, 2)
}

// meanPow returns mean(((x - shift) / scale)^n).
func meanPow(xs []float64, shift, scale float64, n int) float64 {
	var acc sum
	for _, x := range xs {
		acc.add(ipow((x-shift)/scale, n))
	}
	return acc.value() / float64(len(xs))
}

func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

// ipow computes x^n for n >= 0 by repeated squaring.
func ipow(x float64, n int) float64 {
	result := 1.0
	for n > 0 {
		if n&1 == 1 {
			result *= x
		}
		x *= x
		n >>= 1
	}
	return result
}

// sum is a Neumaier compensated accumulator.
type sum struct {
	s, c float64
}

func (a *sum) add(x float64) {
	t := a.s + x
	if math.Abs(a.s) >= math.Abs(x) {
		a.c += (a.s - t) + x
	} else {
		a.c += (x - t) + a.s
	}
	a.s = t
}

func (a *sum) value() float64 {
	return a.s + a.c
}
