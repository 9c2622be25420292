package scenario

import (
	"math/rand/v2"

	"github.com/nvandessel/samplespace/internal/experiment"
	"github.com/nvandessel/samplespace/internal/rv"
)

var doors = []int{1, 2, 3}

// MontyHall is the three-door game show. The car is placed uniformly, the
// player picks a door, the host opens a door that is neither the pick nor
// the car, and last_door is the one door left to switch to.
type MontyHall struct {
	experiment.Fields

	// Pick is the door the player holds. Zero picks uniformly at random on
	// every rerun.
	Pick int
}

// NewMontyHall returns the game with the player holding door 3.
func NewMontyHall() *MontyHall {
	m := &MontyHall{Pick: 3}
	m.Derive("you_win_if_you_switch", func() any { return m.Int("last_door") == m.Int("car_door") })
	m.Derive("you_win_if_you_stay", func() any { return m.Int("pick_door") == m.Int("car_door") })
	m.Derive("car_behind_door_1", func() any { return m.Int("car_door") == 1 })
	m.Derive("car_behind_door_3", func() any { return m.Int("car_door") == 3 })
	m.Derive("door_2_was_opened", func() any { return m.Int("open_door") == 2 })
	return m
}

// Rerun places the car, lets the host open a goat door and switches.
func (m *MontyHall) Rerun(r *rand.Rand) {
	m.Reset()

	car := rv.Uniform(r, doors)
	pick := m.Pick
	if pick == 0 {
		pick = rv.Uniform(r, doors)
	}

	var closed []int
	for _, d := range doors {
		if d != pick && d != car {
			closed = append(closed, d)
		}
	}
	open := rv.Uniform(r, closed)

	last := 0
	for _, d := range doors {
		if d != pick && d != open {
			last = d
		}
	}

	m.Set("car_door", car)
	m.Set("pick_door", pick)
	m.Set("open_door", open)
	m.Set("last_door", last)
}
