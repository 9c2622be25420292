package experiment

import (
	"errors"
	"math/rand/v2"
	"testing"
)

// counter is a deterministic experiment: each rerun increments n.
type counter struct {
	Fields
	n     int
	calls int
}

func newCounter() *counter {
	c := &counter{}
	c.Derive("even", func() any { return c.n%2 == 0 })
	c.Derive("double", func() any { return c.n * 2 })
	return c
}

func (c *counter) Rerun(_ *rand.Rand) {
	c.n++
	c.Reset()
	c.Set("n", c.n)
	c.Set("label", "run")
}

// typedDerived exposes derived quantities through typed funcs.
type typedDerived struct{}

func (typedDerived) Rerun(*rand.Rand) {}

func (typedDerived) Get(name string) (any, bool) {
	switch name {
	case "b":
		return func() bool { return true }, true
	case "f":
		return func() float64 { return 1.5 }, true
	case "i":
		return func() int { return 7 }, true
	case "i64":
		return func() int64 { return 9 }, true
	case "f32":
		return func() float32 { return 0.25 }, true
	case "u":
		return func() uint { return 3 }, true
	case "s":
		return func() string { return "goat" }, true
	case "unary":
		return func(x int) int { return x }, true
	case "plain":
		return 42, true
	}
	return nil, false
}

func TestResolve_Name(t *testing.T) {
	c := newCounter()
	c.Rerun(nil)
	c.Rerun(nil)

	tests := []struct {
		name string
		key  Key
		want any
	}{
		{"attribute", Name("n"), 2},
		{"derived bool", Name("even"), true},
		{"derived int", Name("double"), 4},
		{"string attribute", Name("label"), "run"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(c, tt.key)
			if err != nil {
				t.Fatalf("Resolve(%s) error: %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%s) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestResolve_TypedDerivedFuncs(t *testing.T) {
	e := typedDerived{}
	tests := []struct {
		key  string
		want any
	}{
		{"b", true},
		{"f", 1.5},
		{"i", 7},
		{"i64", int64(9)},
		{"f32", float32(0.25)},
		{"u", uint(3)},
		{"s", "goat"},
		{"plain", 42},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := Resolve(e, Name(tt.key))
			if err != nil {
				t.Fatalf("Resolve(%q) error: %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestResolve_FuncWithArgumentsIsValue(t *testing.T) {
	got, err := Resolve(typedDerived{}, Name("unary"))
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if _, ok := got.(func(int) int); !ok {
		t.Errorf("Resolve(unary) = %T, want the function itself", got)
	}
}

func TestResolve_UnknownName(t *testing.T) {
	c := newCounter()
	c.Rerun(nil)

	_, err := Resolve(c, Name("missing"))
	var kre *KeyResolutionError
	if !errors.As(err, &kre) {
		t.Fatalf("expected KeyResolutionError, got %v", err)
	}
	if kre.Name != "missing" {
		t.Errorf("Name = %q, want %q", kre.Name, "missing")
	}

	// Unknown names nested inside a derived key surface unchanged.
	_, err = Resolve(c, Derive("missing", GreaterThan(1)))
	if !errors.As(err, &kre) {
		t.Fatalf("expected KeyResolutionError from derived key, got %v", err)
	}
}

func TestResolve_NilKey(t *testing.T) {
	c := newCounter()
	c.Rerun(nil)
	_, err := Resolve(c, nil)
	var kre *KeyResolutionError
	if !errors.As(err, &kre) {
		t.Fatalf("expected KeyResolutionError for nil key, got %v", err)
	}
}

func TestResolve_DerivedMatchesPredicateOfBase(t *testing.T) {
	c := newCounter()
	preds := []Predicate{GreaterThan(3), LessThan(3), AtLeast(2), AtMost(2), Between(2, 4), Equals(3), Not()}

	for i := 0; i < 6; i++ {
		c.Rerun(nil)
		base, err := Resolve(c, Name("n"))
		if err != nil {
			t.Fatal(err)
		}
		for _, p := range preds {
			got, err := Resolve(c, Derive("n", p))
			if err != nil {
				t.Fatalf("Resolve(n %s): %v", p, err)
			}
			want, err := p.Apply(base)
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Errorf("iteration %d: Resolve(n %s) = %v, want %v", i, p, got, want)
			}
		}
	}
}

func TestResolve_NestedDerived(t *testing.T) {
	c := newCounter()
	c.Rerun(nil) // n = 1

	// (n > 0) is false -> false
	key := Derive(Derive("n", GreaterThan(0)), Not())
	got, err := Resolve(c, key)
	if err != nil {
		t.Fatal(err)
	}
	if got != false {
		t.Errorf("Resolve(%s) = %v, want false", key, got)
	}

	deep := Key(Name("n"))
	for i := 0; i < 10; i++ {
		deep = Derive(deep, IsTruthy())
	}
	got, err = Resolve(c, deep)
	if err != nil {
		t.Fatal(err)
	}
	if got != true {
		t.Errorf("deeply nested key = %v, want true", got)
	}
}

func TestResolve_PredicateApplicationError(t *testing.T) {
	c := newCounter()
	c.Rerun(nil)

	_, err := Resolve(c, Derive("label", GreaterThan(1)))
	var pae *PredicateApplicationError
	if !errors.As(err, &pae) {
		t.Fatalf("expected PredicateApplicationError, got %v", err)
	}
	if pae.Key != "label" {
		t.Errorf("Key = %q, want label", pae.Key)
	}
	if pae.Predicate != "> 1" {
		t.Errorf("Predicate = %q, want %q", pae.Predicate, "> 1")
	}
	if pae.Unwrap() == nil {
		t.Error("expected wrapped cause")
	}
}

func TestResolve_DoesNotMutate(t *testing.T) {
	c := newCounter()
	c.Rerun(nil)
	for i := 0; i < 3; i++ {
		v, err := Resolve(c, Name("double"))
		if err != nil {
			t.Fatal(err)
		}
		if v != 2 {
			t.Fatalf("repeated resolution = %v, want 2", v)
		}
	}
}

func TestResolveAll(t *testing.T) {
	c := newCounter()
	c.Rerun(nil)
	c.Rerun(nil)
	c.Rerun(nil)

	got, err := ResolveAll(c, []Key{Name("n"), Name("double"), Derive("n", Equals(3))})
	if err != nil {
		t.Fatal(err)
	}
	want := []any{3, 6, true}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ResolveAll[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if _, err := ResolveAll(c, []Key{Name("n"), Name("nope")}); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestFields(t *testing.T) {
	var f Fields
	if _, ok := f.Get("x"); ok {
		t.Error("zero Fields should have no entries")
	}
	f.Set("x", 3)
	f.Set("flag", true)
	f.Derive("y", func() any { return f.Int("x") + 1 })

	if f.Int("x") != 3 || f.Float("x") != 3 || !f.Bool("flag") {
		t.Errorf("typed accessors returned wrong values")
	}
	if names := f.Names(); len(names) != 3 || names[0] != "flag" || names[1] != "x" || names[2] != "y" {
		t.Errorf("Names() = %v", names)
	}

	f.Reset()
	if _, ok := f.Get("x"); ok {
		t.Error("Reset should clear attributes")
	}
	if _, ok := f.Get("y"); !ok {
		t.Error("Reset should keep derived quantities")
	}
}

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{Name("car_door"), "car_door"},
		{Derive("car_door", Equals(3)), "car_door = 3"},
		{Derive("car_door", AtLeast(3)), "car_door >= 3"},
		{Derive("x", Between(0, 1.5)), "x in [0,1.5]"},
		{Derive("x", Approximately(2, 0.1)), "x ≈ 2"},
		{Derive(Derive("x", LessThan(1)), Not()), "x < 1 is false"},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestAsKey(t *testing.T) {
	if AsKey("a") != Name("a") {
		t.Error("string should convert to Name")
	}
	d := Derive("a", Not())
	if AsKey(d).String() != d.String() {
		t.Error("Key should pass through")
	}
	if AsKey(3) != nil {
		t.Error("non-key value should yield nil")
	}
	if ks := Names("a", "b"); len(ks) != 2 || ks[1] != Name("b") {
		t.Errorf("Names() = %v", ks)
	}
}
