// Package scenario holds the built-in experiments and a registry that maps
// their names to factories.
//
// Every scenario embeds experiment.Fields: Rerun sets the attributes of a
// fresh realization and derived quantities are registered once at
// construction.
//
// Usage:
//
//	entry, err := scenario.Lookup("monty-hall")
//	if err != nil {
//	    return err
//	}
//	space, err := estimate.New(entry.New(), estimate.WithSeed(7))
package scenario

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nvandessel/samplespace/internal/experiment"
)

// ErrUnknownScenario is returned by Lookup for names not in the registry.
var ErrUnknownScenario = errors.New("unknown scenario")

// Entry describes one built-in scenario.
type Entry struct {
	Name        string
	Description string
	Keys        []string // every key the scenario resolves after a rerun
	New         func() experiment.Experiment
}

var registry = map[string]Entry{
	"monty-hall": {
		Name:        "monty-hall",
		Description: "Three-door game show: the player holds door 3, the host opens a goat door, the player may switch",
		Keys: []string{
			"car_door", "pick_door", "open_door", "last_door",
			"you_win_if_you_switch", "you_win_if_you_stay",
			"car_behind_door_1", "car_behind_door_3", "door_2_was_opened",
		},
		New: func() experiment.Experiment { return NewMontyHall() },
	},
	"coin": {
		Name:        "coin",
		Description: "One toss of a fair coin",
		Keys:        []string{"heads", "tails", "value"},
		New:         func() experiment.Experiment { return NewCoin(0.5) },
	},
	"normal": {
		Name:        "normal",
		Description: "One draw from the standard normal distribution",
		Keys:        []string{"value"},
		New:         func() experiment.Experiment { return NewNormal(0, 1) },
	},
	"binomial": {
		Name:        "binomial",
		Description: "Successes in 25000 fair Bernoulli trials",
		Keys:        []string{"successes", "fraction"},
		New:         func() experiment.Experiment { return NewBinomial(25000, 0.5) },
	},
	"dice": {
		Name:        "dice",
		Description: "A roll of two six-sided dice",
		Keys:        []string{"die_1", "die_2", "total", "doubles"},
		New:         func() experiment.Experiment { return NewDice(6) },
	},
}

// Lookup returns the registry entry for name.
func Lookup(name string) (Entry, error) {
	e, ok := registry[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownScenario, name, strings.Join(Names(), ", "))
	}
	return e, nil
}

// All returns every entry sorted by name.
func All() []Entry {
	out := make([]Entry, 0, len(registry))
	for _, e := range registry {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the registered scenario names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
