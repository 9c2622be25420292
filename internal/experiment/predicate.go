package experiment

import (
	"fmt"
	"reflect"
	"strconv"
)

// Predicate pairs a pure function over a resolved value with a display label
// used when rendering keys.
type Predicate struct {
	Label string
	Fn    func(v any) (any, error)
}

// String returns the display label.
func (p Predicate) String() string {
	if p.Label == "" {
		return "<predicate>"
	}
	return p.Label
}

// Apply evaluates the predicate on v.
func (p Predicate) Apply(v any) (any, error) {
	if p.Fn == nil {
		return nil, fmt.Errorf("predicate %q has no function", p.String())
	}
	return p.Fn(v)
}

// NewPredicate wraps a boolean test as a Predicate.
func NewPredicate(label string, fn func(v any) (bool, error)) Predicate {
	return Predicate{
		Label: label,
		Fn: func(v any) (any, error) {
			return fn(v)
		},
	}
}

func numeric(label string, test func(x float64) bool) Predicate {
	return NewPredicate(label, func(v any) (bool, error) {
		x, err := ToFloat64(v)
		if err != nil {
			return false, err
		}
		return test(x), nil
	})
}

// GreaterThan reports whether the value is > y.
func GreaterThan(y float64) Predicate {
	return numeric("> "+formatNumber(y), func(x float64) bool { return x > y })
}

// LessThan reports whether the value is < y.
func LessThan(y float64) Predicate {
	return numeric("< "+formatNumber(y), func(x float64) bool { return x < y })
}

// AtLeast reports whether the value is >= y.
func AtLeast(y float64) Predicate {
	return numeric(">= "+formatNumber(y), func(x float64) bool { return x >= y })
}

// AtMost reports whether the value is <= y.
func AtMost(y float64) Predicate {
	return numeric("<= "+formatNumber(y), func(x float64) bool { return x <= y })
}

// Between reports whether a <= value <= b.
func Between(a, b float64) Predicate {
	label := fmt.Sprintf("in [%s,%s]", formatNumber(a), formatNumber(b))
	return numeric(label, func(x float64) bool { return a <= x && x <= b })
}

// DefaultTolerance is the tolerance used by Approximately when none is given.
const DefaultTolerance = 0.1

// Approximately reports whether the value lies within tol of y.
func Approximately(y, tol float64) Predicate {
	return numeric("≈ "+formatNumber(y), func(x float64) bool { return y-tol <= x && x <= y+tol })
}

// Equals reports whether the value equals y. Numeric values compare by
// magnitude, so Equals(3) matches an int 3 and a float64 3.0.
func Equals(y any) Predicate {
	return NewPredicate("= "+formatValue(y), func(v any) (bool, error) {
		return equal(v, y), nil
	})
}

// NotEquals is the negation of Equals.
func NotEquals(y any) Predicate {
	return NewPredicate("!= "+formatValue(y), func(v any) (bool, error) {
		return !equal(v, y), nil
	})
}

// Not negates the truthiness of the value.
func Not() Predicate {
	return NewPredicate("is false", func(v any) (bool, error) {
		return !Truthy(v), nil
	})
}

// IsTruthy reduces the value to its truthiness.
func IsTruthy() Predicate {
	return NewPredicate("is true", func(v any) (bool, error) {
		return Truthy(v), nil
	})
}

func equal(v, y any) bool {
	if a, err := ToFloat64(v); err == nil {
		if b, err := ToFloat64(y); err == nil {
			return a == b
		}
		return false
	}
	if v == nil || y == nil {
		return v == nil && y == nil
	}
	if !reflect.TypeOf(v).Comparable() || !reflect.TypeOf(y).Comparable() {
		return false
	}
	return v == y
}

func formatNumber(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

func formatValue(v any) string {
	if x, err := ToFloat64(v); err == nil {
		if _, isBool := v.(bool); !isBool {
			return formatNumber(x)
		}
	}
	return fmt.Sprint(v)
}
