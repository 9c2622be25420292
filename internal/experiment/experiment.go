// Package experiment defines the protocol implemented by repeatable stochastic
// scenarios and the key language used to read quantities off a realization.
//
// An Experiment is rerun once per iteration. After each Rerun, quantities are
// looked up by name: either plain attributes set during the rerun, or
// zero-argument derived quantities computed from those attributes. Keys may be
// composed with predicates to form derived events:
//
//	win := experiment.Name("you_win_if_you_switch")
//	carOn3 := experiment.Derive(experiment.Name("car_door"), experiment.Equals(3))
//	v, err := experiment.Resolve(exp, carOn3)
package experiment

import (
	"math/rand/v2"
	"sort"
)

// Experiment is a repeatable stochastic scenario.
//
// Rerun replaces the current realization with a fresh, independent one drawn
// from rng. Within one realization, lookups must be deterministic: a derived
// quantity must be a function of the current attributes, never a new draw.
//
// Get returns the attribute or derived quantity stored under name. A derived
// quantity is returned as a zero-argument function with a single result,
// such as func() bool, func() int64 or func() string, which Resolve invokes.
type Experiment interface {
	Rerun(rng *rand.Rand)
	Get(name string) (any, bool)
}

// Fields is an embeddable attribute table that implements Experiment.Get.
// Attributes are cleared by Reset; derived quantities survive Reset since
// they are computed from the current attributes on every lookup.
//
//	type Coin struct{ experiment.Fields }
//
//	func NewCoin() *Coin {
//	    c := &Coin{}
//	    c.Derive("tails", func() any { return !c.Bool("heads") })
//	    return c
//	}
//
//	func (c *Coin) Rerun(r *rand.Rand) { c.Set("heads", rv.Bern(r, 0.5)) }
type Fields struct {
	values  map[string]any
	derived map[string]func() any
}

// Set stores an attribute for the current realization.
func (f *Fields) Set(name string, value any) {
	if f.values == nil {
		f.values = make(map[string]any)
	}
	f.values[name] = value
}

// Derive registers a zero-argument derived quantity.
func (f *Fields) Derive(name string, fn func() any) {
	if f.derived == nil {
		f.derived = make(map[string]func() any)
	}
	f.derived[name] = fn
}

// Reset clears all attributes.
func (f *Fields) Reset() {
	clear(f.values)
}

// Get implements Experiment. Attributes shadow derived quantities.
func (f *Fields) Get(name string) (any, bool) {
	if v, ok := f.values[name]; ok {
		return v, true
	}
	if fn, ok := f.derived[name]; ok {
		return fn, true
	}
	return nil, false
}

// Value returns the attribute stored under name, or nil.
func (f *Fields) Value(name string) any {
	return f.values[name]
}

// Int returns the attribute under name as an int, or 0 when absent or not numeric.
func (f *Fields) Int(name string) int {
	v, err := ToFloat64(f.values[name])
	if err != nil {
		return 0
	}
	return int(v)
}

// Float returns the attribute under name as a float64, or 0 when absent or not numeric.
func (f *Fields) Float(name string) float64 {
	v, err := ToFloat64(f.values[name])
	if err != nil {
		return 0
	}
	return v
}

// Bool returns the truthiness of the attribute under name.
func (f *Fields) Bool(name string) bool {
	return Truthy(f.values[name])
}

// Names lists every attribute and derived quantity name, sorted.
func (f *Fields) Names() []string {
	seen := make(map[string]bool, len(f.values)+len(f.derived))
	for k := range f.values {
		seen[k] = true
	}
	for k := range f.derived {
		seen[k] = true
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
