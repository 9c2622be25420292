package estimate

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/nvandessel/samplespace/internal/experiment"
)

// coin is a fair coin that counts its reruns.
type coin struct {
	heads  bool
	reruns int
}

func (c *coin) Rerun(r *rand.Rand) {
	c.reruns++
	c.heads = r.Float64() < 0.5
}

func (c *coin) Get(name string) (any, bool) {
	switch name {
	case "heads":
		return c.heads, true
	case "value":
		return func() int {
			if c.heads {
				return 1
			}
			return 0
		}, true
	case "value64":
		return func() int64 {
			if c.heads {
				return 1
			}
			return 0
		}, true
	case "value32":
		return func() float32 {
			if c.heads {
				return 1
			}
			return 0
		}, true
	case "never":
		return false, true
	case "always":
		return true, true
	case "label":
		return "side", true
	case "constant":
		return 7.5, true
	}
	return nil, false
}

// montyHall: the car is placed uniformly, the player holds door 3, the host
// opens a goat door among 1 and 2, and the player switches.
type montyHall struct {
	car, open, last int
}

func (m *montyHall) Rerun(r *rand.Rand) {
	m.car = 1 + r.IntN(3)
	if m.car == 3 {
		m.open = 1 + r.IntN(2)
	} else {
		m.open = 3 - m.car
	}
	m.last = 3 - m.open
}

func (m *montyHall) Get(name string) (any, bool) {
	switch name {
	case "car_door":
		return m.car, true
	case "open_door":
		return m.open, true
	case "last_door":
		return m.last, true
	case "you_win_if_you_switch":
		return func() bool { return m.last == m.car }, true
	case "car_behind_door_1":
		return func() bool { return m.car == 1 }, true
	case "car_behind_door_3":
		return func() bool { return m.car == 3 }, true
	case "door_2_was_opened":
		return func() bool { return m.open == 2 }, true
	}
	return nil, false
}

// standardNormal draws value ~ N(0, 1).
type standardNormal struct {
	value float64
}

func (s *standardNormal) Rerun(r *rand.Rand) {
	s.value = r.NormFloat64()
}

func (s *standardNormal) Get(name string) (any, bool) {
	switch name {
	case "value":
		return s.value, true
	case "shifted":
		return func() float64 { return s.value + 10 }, true
	case "positive":
		return func() bool { return s.value > 0 }, true
	}
	return nil, false
}

func assertClose(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v ± %v", name, got, want, tol)
	}
}

func mustNew(t *testing.T, exp experiment.Experiment, opts ...Option) *SampleSpace {
	t.Helper()
	s, err := New(exp, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}
