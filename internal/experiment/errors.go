package experiment

import "fmt"

// KeyResolutionError reports a name that is neither an attribute nor a
// derived quantity of the experiment.
type KeyResolutionError struct {
	Name string
}

func (e *KeyResolutionError) Error() string {
	return fmt.Sprintf("unknown key %q", e.Name)
}

// PredicateApplicationError reports a predicate that failed on the resolved
// value of its base key.
type PredicateApplicationError struct {
	Key       string
	Predicate string
	Value     any
	Err       error
}

func (e *PredicateApplicationError) Error() string {
	return fmt.Sprintf("applying %q to %s (value %v): %v", e.Predicate, e.Key, e.Value, e.Err)
}

func (e *PredicateApplicationError) Unwrap() error {
	return e.Err
}
