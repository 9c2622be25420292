package experiment

import (
	"fmt"
	"reflect"
)

// Key identifies a quantity to read off a realization. It is either a Name or
// a Derived key; the interface is closed to other implementations.
type Key interface {
	fmt.Stringer
	isKey()
}

// Name is a plain attribute or derived-quantity name.
type Name string

func (Name) isKey() {}

// String returns the name itself.
func (n Name) String() string { return string(n) }

// Derived applies Predicate to the resolved value of Base. Base may itself be
// Derived, to any depth.
type Derived struct {
	Base      Key
	Predicate Predicate
}

func (Derived) isKey() {}

// String renders the key as "base label", e.g. "car_door >= 3".
func (d Derived) String() string {
	base := "<nil>"
	if d.Base != nil {
		base = d.Base.String()
	}
	return base + " " + d.Predicate.String()
}

// Derive builds a Derived key. Plain strings are accepted as Names.
func Derive(base any, p Predicate) Derived {
	return Derived{Base: AsKey(base), Predicate: p}
}

// AsKey converts a string into a Name and passes Keys through. Any other
// value yields a nil Key, which fails resolution.
func AsKey(v any) Key {
	switch k := v.(type) {
	case Key:
		return k
	case string:
		return Name(k)
	default:
		return nil
	}
}

// Names converts a list of plain names into Keys.
func Names(names ...string) []Key {
	keys := make([]Key, len(names))
	for i, n := range names {
		keys[i] = Name(n)
	}
	return keys
}

// Resolve returns the value of k on the current realization of e. It never
// mutates e.
//
// A Name is looked up with e.Get; zero-argument functions are invoked. A
// Derived key resolves its base recursively and applies its predicate.
//
// Unknown names yield *KeyResolutionError; predicate failures yield
// *PredicateApplicationError.
func Resolve(e Experiment, k Key) (any, error) {
	switch key := k.(type) {
	case Name:
		v, ok := e.Get(string(key))
		if !ok {
			return nil, &KeyResolutionError{Name: string(key)}
		}
		return invoke(v), nil
	case Derived:
		base, err := Resolve(e, key.Base)
		if err != nil {
			return nil, err
		}
		out, err := key.Predicate.Apply(base)
		if err != nil {
			return nil, &PredicateApplicationError{
				Key:       key.Base.String(),
				Predicate: key.Predicate.String(),
				Value:     base,
				Err:       err,
			}
		}
		return out, nil
	case nil:
		return nil, &KeyResolutionError{Name: "<nil>"}
	default:
		return nil, &KeyResolutionError{Name: k.String()}
	}
}

// ResolveTruthy resolves k and reports its truthiness.
func ResolveTruthy(e Experiment, k Key) (bool, error) {
	v, err := Resolve(e, k)
	if err != nil {
		return false, err
	}
	return Truthy(v), nil
}

// ResolveAll resolves every key against the same realization, in order.
func ResolveAll(e Experiment, keys []Key) ([]any, error) {
	out := make([]any, len(keys))
	for i, k := range keys {
		v, err := Resolve(e, k)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func invoke(v any) any {
	switch fn := v.(type) {
	case func() any:
		return fn()
	case func() bool:
		return fn()
	case func() float64:
		return fn()
	case func() int:
		return fn()
	case nil:
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Func && !rv.IsNil() && rv.Type().NumIn() == 0 && rv.Type().NumOut() == 1 {
		return rv.Call(nil)[0].Interface()
	}
	return v
}
