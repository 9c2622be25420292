package estimate

import (
	"fmt"
	"strings"
)

// NoSurvivingSamplesError reports that no realization satisfied the given
// keys, so no probability, distribution or moment is defined.
type NoSurvivingSamplesError struct {
	Iterations int
	Given      []string
}

func (e *NoSurvivingSamplesError) Error() string {
	if len(e.Given) == 0 {
		return fmt.Sprintf("no samples collected in %d iterations", e.Iterations)
	}
	return fmt.Sprintf("no realization satisfied [%s] in %d iterations", strings.Join(e.Given, ", "), e.Iterations)
}

// DegenerateDistributionError reports a normalized moment requested on a
// sample with zero variance.
type DegenerateDistributionError struct {
	Key   string
	Order int
	Value float64 // the constant value of the sample
}

func (e *DegenerateDistributionError) Error() string {
	key := e.Key
	if key == "" {
		key = "sample"
	}
	return fmt.Sprintf("normalized moment %d of %s is undefined: every value equals %v", e.Order, key, e.Value)
}

// ConfigurationError reports an invalid option combination or value.
type ConfigurationError struct {
	Option string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Option, e.Reason)
}

// NonNumericValueError reports a resolved value that cannot be used as a
// number in a distribution or moment.
type NonNumericValueError struct {
	Key   string
	Value any
}

func (e *NonNumericValueError) Error() string {
	return fmt.Sprintf("key %s resolved to non-numeric value %v (%T)", e.Key, e.Value, e.Value)
}
