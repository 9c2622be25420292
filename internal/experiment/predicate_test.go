package experiment

import (
	"testing"
)

func TestPredicateFactories(t *testing.T) {
	tests := []struct {
		name  string
		pred  Predicate
		input any
		want  bool
		label string
	}{
		{"greater than true", GreaterThan(2), 3, true, "> 2"},
		{"greater than equal", GreaterThan(2), 2, false, "> 2"},
		{"less than", LessThan(2), 1.5, true, "< 2"},
		{"at least equal", AtLeast(3), 3, true, ">= 3"},
		{"at least below", AtLeast(3), 2, false, ">= 3"},
		{"at most", AtMost(0.5), 0.5, true, "<= 0.5"},
		{"between inside", Between(1, 3), 2, true, "in [1,3]"},
		{"between edge", Between(1, 3), 3, true, "in [1,3]"},
		{"between outside", Between(1, 3), 3.01, false, "in [1,3]"},
		{"approximately inside", Approximately(1, 0.1), 1.05, true, "≈ 1"},
		{"approximately outside", Approximately(1, 0.1), 1.2, false, "≈ 1"},
		{"equals int/float", Equals(3), 3.0, true, "= 3"},
		{"equals mismatch", Equals(3), 2, false, "= 3"},
		{"equals string", Equals("red"), "red", true, "= red"},
		{"equals string vs number", Equals("red"), 3, false, "= red"},
		{"equals bool", Equals(true), true, true, "= true"},
		{"not equals", NotEquals(1), 2, true, "!= 1"},
		{"not", Not(), false, true, "is false"},
		{"truthy", IsTruthy(), 0, false, "is true"},
		{"greater than bool", GreaterThan(0), true, true, "> 0"},
		{"equals uncomparable", Equals("x"), []int{1}, false, "= x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.pred.Apply(tt.input)
			if err != nil {
				t.Fatalf("Apply(%v) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("%s.Apply(%v) = %v, want %v", tt.label, tt.input, got, tt.want)
			}
			if tt.pred.String() != tt.label {
				t.Errorf("label = %q, want %q", tt.pred.String(), tt.label)
			}
		})
	}
}

func TestPredicate_NonNumericInput(t *testing.T) {
	preds := []Predicate{GreaterThan(1), LessThan(1), AtLeast(1), AtMost(1), Between(0, 1), Approximately(1, DefaultTolerance)}
	for _, p := range preds {
		if _, err := p.Apply("one"); err == nil {
			t.Errorf("%s.Apply(\"one\") should fail", p)
		}
	}
}

func TestPredicate_ZeroValue(t *testing.T) {
	var p Predicate
	if p.String() != "<predicate>" {
		t.Errorf("String() = %q", p.String())
	}
	if _, err := p.Apply(1); err == nil {
		t.Error("zero Predicate should fail to apply")
	}
}

func TestNewPredicate(t *testing.T) {
	odd := NewPredicate("is odd", func(v any) (bool, error) {
		x, err := ToFloat64(v)
		if err != nil {
			return false, err
		}
		return int(x)%2 == 1, nil
	})
	got, err := odd.Apply(5)
	if err != nil || got != true {
		t.Errorf("odd.Apply(5) = %v, %v", got, err)
	}
}

func TestTruthy(t *testing.T) {
	var nilPtr *int
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"nil", nil, false},
		{"true", true, true},
		{"false", false, false},
		{"zero int", 0, false},
		{"non-zero int", -2, true},
		{"zero float", 0.0, false},
		{"small float", 1e-9, true},
		{"empty string", "", false},
		{"string", "x", true},
		{"empty slice", []int{}, false},
		{"slice", []int{1}, true},
		{"empty map", map[string]int{}, false},
		{"nil pointer", nilPtr, false},
		{"struct", struct{}{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truthy(tt.in); got != tt.want {
				t.Errorf("Truthy(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestToFloat64(t *testing.T) {
	tests := []struct {
		in      any
		want    float64
		wantErr bool
	}{
		{3, 3, false},
		{int64(-4), -4, false},
		{uint8(7), 7, false},
		{float32(0.5), 0.5, false},
		{2.25, 2.25, false},
		{true, 1, false},
		{false, 0, false},
		{"3", 0, true},
		{nil, 0, true},
	}
	for _, tt := range tests {
		got, err := ToFloat64(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ToFloat64(%v) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ToFloat64(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
