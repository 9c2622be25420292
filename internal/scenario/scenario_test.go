package scenario

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/nvandessel/samplespace/internal/estimate"
	"github.com/nvandessel/samplespace/internal/experiment"
)

func TestLookup(t *testing.T) {
	for _, name := range []string{"monty-hall", "coin", "normal", "binomial", "dice"} {
		t.Run(name, func(t *testing.T) {
			e, err := Lookup(name)
			if err != nil {
				t.Fatalf("Lookup(%q) error = %v", name, err)
			}
			if e.Name != name || e.Description == "" || len(e.Keys) == 0 || e.New == nil {
				t.Errorf("incomplete entry %+v", e)
			}
		})
	}

	_, err := Lookup("roulette")
	if !errors.Is(err, ErrUnknownScenario) {
		t.Errorf("Lookup(roulette) error = %v, want ErrUnknownScenario", err)
	}
}

func TestAll_Sorted(t *testing.T) {
	all := All()
	if len(all) != len(Names()) {
		t.Fatalf("All() has %d entries, Names() has %d", len(all), len(Names()))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Name >= all[i].Name {
			t.Errorf("entries not sorted: %q before %q", all[i-1].Name, all[i].Name)
		}
	}
}

func TestEntries_KeysResolveAfterRerun(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for _, e := range All() {
		t.Run(e.Name, func(t *testing.T) {
			exp := e.New()
			for range 5 {
				exp.Rerun(r)
				for _, k := range e.Keys {
					if _, err := experiment.Resolve(exp, experiment.Name(k)); err != nil {
						t.Fatalf("key %q: %v", k, err)
					}
				}
			}
		})
	}
}

func TestMontyHall_Realization(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for _, pick := range []int{3, 0} {
		m := NewMontyHall()
		m.Pick = pick
		for range 200 {
			m.Rerun(r)
			car, p, open, last := m.Int("car_door"), m.Int("pick_door"), m.Int("open_door"), m.Int("last_door")
			if pick != 0 && p != pick {
				t.Fatalf("pick_door = %d, want %d", p, pick)
			}
			if open == car || open == p {
				t.Fatalf("host opened door %d (car %d, pick %d)", open, car, p)
			}
			if last == open || last == p || last < 1 || last > 3 {
				t.Fatalf("last_door = %d (pick %d, open %d)", last, p, open)
			}
		}
	}
}

func TestMontyHall_Probabilities(t *testing.T) {
	space, err := estimate.New(NewMontyHall(), estimate.WithSeed(5), estimate.WithIterations(30000))
	if err != nil {
		t.Fatal(err)
	}
	win := experiment.Name("you_win_if_you_switch")

	tests := []struct {
		name  string
		event experiment.Key
		given []experiment.Key
		want  float64
	}{
		{"switch wins", win, nil, 2.0 / 3},
		{"stay wins", experiment.Name("you_win_if_you_stay"), nil, 1.0 / 3},
		{"win | car behind 3", win, []experiment.Key{experiment.Name("car_behind_door_3")}, 0},
		{"door 2 opened | car behind 3", experiment.Name("door_2_was_opened"), []experiment.Key{experiment.Name("car_behind_door_3")}, 0.5},
		{"car behind 1 | win", experiment.Name("car_behind_door_1"), []experiment.Key{win}, 0.5},
		{"door 2 opened | win", experiment.Name("door_2_was_opened"), []experiment.Key{win}, 0.5},
		{"door 2 opened | car behind 1", experiment.Name("door_2_was_opened"), []experiment.Key{experiment.Name("car_behind_door_1")}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := space.ProbabilityOf(tt.event, estimate.Given(tt.given...))
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(p-tt.want) > 0.02 {
				t.Errorf("P = %v, want %v ± 0.02", p, tt.want)
			}
		})
	}
}

func TestMontyHall_UniformPickStillFavorsSwitching(t *testing.T) {
	m := NewMontyHall()
	m.Pick = 0
	space, err := estimate.New(m, estimate.WithSeed(6))
	if err != nil {
		t.Fatal(err)
	}
	p, err := space.ProbabilityOf(experiment.Name("you_win_if_you_switch"))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p-2.0/3) > 0.02 {
		t.Errorf("P(win) = %v, want 2/3", p)
	}
}

func TestCoin(t *testing.T) {
	space, err := estimate.New(NewCoin(0.5), estimate.WithSeed(7))
	if err != nil {
		t.Fatal(err)
	}
	mean, err := space.ExpectedValueOf(experiment.Name("value"))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(mean-0.5) > 0.02 {
		t.Errorf("E[value] = %v, want 0.5", mean)
	}
	p, err := space.ProbabilityOf(experiment.Name("tails"), estimate.Given(experiment.Name("heads")))
	if err != nil {
		t.Fatal(err)
	}
	if p != 0 {
		t.Errorf("P(tails | heads) = %v, want 0", p)
	}
}

func TestBinomial(t *testing.T) {
	space, err := estimate.New(NewBinomial(25000, 0.5), estimate.WithSeed(8), estimate.WithIterations(20))
	if err != nil {
		t.Fatal(err)
	}
	mean, err := space.ExpectedValueOf(experiment.Name("fraction"))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(mean-0.5) > 0.02 {
		t.Errorf("E[fraction] = %v, want 0.5", mean)
	}
}

func TestDice(t *testing.T) {
	space, err := estimate.New(NewDice(6), estimate.WithSeed(9), estimate.WithIterations(30000))
	if err != nil {
		t.Fatal(err)
	}
	total := experiment.Name("total")

	mean, err := space.Mean(total)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(mean-7) > 0.05 {
		t.Errorf("E[total] = %v, want 7", mean)
	}

	p, err := space.ProbabilityOf(experiment.Name("doubles"))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p-1.0/6) > 0.02 {
		t.Errorf("P(doubles) = %v, want 1/6", p)
	}

	p, err = space.ProbabilityOf(experiment.Derive(total, experiment.Equals(12)), estimate.Given(experiment.Name("doubles")))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p-1.0/6) > 0.03 {
		t.Errorf("P(total = 12 | doubles) = %v, want 1/6", p)
	}
}

func TestNormal(t *testing.T) {
	space, err := estimate.New(NewNormal(2, 3), estimate.WithSeed(10), estimate.WithIterations(100000))
	if err != nil {
		t.Fatal(err)
	}
	summary, err := space.Describe(experiment.Name("value"))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(summary.Mean-2) > 0.05 || math.Abs(summary.StdDev-3) > 0.05 {
		t.Errorf("summary = %+v, want mean 2 std 3", summary)
	}
}

func TestParallelWithRegistryFactory(t *testing.T) {
	e, err := Lookup("monty-hall")
	if err != nil {
		t.Fatal(err)
	}
	p, err := estimate.NewParallel(e.New, estimate.WithSeed(11), estimate.WithWorkers(4))
	if err != nil {
		t.Fatal(err)
	}
	got, err := p.ProbabilityOf(experiment.Name("you_win_if_you_switch"))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-2.0/3) > 0.02 {
		t.Errorf("P(win) = %v, want 2/3", got)
	}
}
