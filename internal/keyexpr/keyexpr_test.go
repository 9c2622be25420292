package keyexpr

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/nvandessel/samplespace/internal/experiment"
)

type realization struct {
	experiment.Fields
}

func (*realization) Rerun(*rand.Rand) {}

func newRealization() *realization {
	r := &realization{}
	r.Set("car_door", 3)
	r.Set("heads", true)
	r.Set("value", 0.42)
	r.Set("label", "side")
	r.Set("total", 7)
	return r
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		display string
		want    any
	}{
		{"heads", "heads", true},
		{"  heads  ", "heads", true},
		{"!heads", "heads is false", false},
		{"car_door>=3", "car_door >= 3", true},
		{"car_door >= 3", "car_door >= 3", true},
		{"car_door > 3", "car_door > 3", false},
		{"car_door<3", "car_door < 3", false},
		{"car_door <= 2.5", "car_door <= 2.5", false},
		{"car_door = 3", "car_door = 3", true},
		{"car_door == 3", "car_door = 3", true},
		{"car_door != 3", "car_door != 3", false},
		{"!car_door = 3", "car_door = 3 is false", false},
		{"total in [6, 8]", "total in [6,8]", true},
		{"total in[8,9]", "total in [8,9]", false},
		{"value ~ 0.5", "value ≈ 0.5", true},
		{"value ~ 0 ± 0.5", "value ≈ 0", true},
		{"value~0+-0.1", "value ≈ 0", false},
		{"value > -1e-3", "value > -0.001", true},
		{"heads = true", "heads = true", true},
		{"heads = false", "heads = false", false},
		{"label = side", "label = side", true},
		{`label != "other side"`, "label != other side", true},
	}
	r := newRealization()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			k, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if k.String() != tt.display {
				t.Errorf("String() = %q, want %q", k.String(), tt.display)
			}
			got, err := experiment.Resolve(r, k)
			if err != nil {
				t.Fatalf("Resolve error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse_PlainNameIsName(t *testing.T) {
	k, err := Parse("you_win_if_you_switch")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := k.(experiment.Name); !ok {
		t.Errorf("Parse returned %T, want experiment.Name", k)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		input  string
		offset int
	}{
		{"", 0},
		{"   ", 3},
		{"!", 1},
		{">= 3", 0},
		{"car_door >", 10},
		{"car_door >= three", 12},
		{"car_door 3", 9},
		{"car_door >= 3 extra", 14},
		{"total in 6, 8", 9},
		{"total in [6 8]", 12},
		{"total in [6, 8", 14},
		{"total in [8, 6]", 15},
		{"value ~ 0 +- x", 13},
		{"value ~ 0 +- -1", 15},
		{`label = "open`, 9},
		{"label =", 7},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Parse(%q) error = %v, want SyntaxError", tt.input, err)
			}
			if se.Offset != tt.offset {
				t.Errorf("Offset = %d, want %d (%v)", se.Offset, tt.offset, se)
			}
			if se.Input != tt.input {
				t.Errorf("Input = %q, want %q", se.Input, tt.input)
			}
		})
	}
}

func TestParseAll(t *testing.T) {
	keys, err := ParseAll([]string{"heads", "car_door >= 3"})
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0].String() != "heads" || keys[1].String() != "car_door >= 3" {
		t.Errorf("ParseAll = %v", keys)
	}

	if _, err := ParseAll([]string{"heads", "car_door >"}); err == nil {
		t.Error("expected an error for the second expression")
	}

	keys, err = ParseAll(nil)
	if err != nil || len(keys) != 0 {
		t.Errorf("ParseAll(nil) = %v, %v", keys, err)
	}
}
