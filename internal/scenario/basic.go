package scenario

import (
	"math/rand/v2"

	"github.com/nvandessel/samplespace/internal/experiment"
	"github.com/nvandessel/samplespace/internal/rv"
)

// Coin is a single toss landing heads with probability P.
type Coin struct {
	experiment.Fields
	P float64
}

// NewCoin returns a coin landing heads with probability p.
func NewCoin(p float64) *Coin {
	c := &Coin{P: p}
	c.Derive("tails", func() any { return !c.Bool("heads") })
	c.Derive("value", func() any {
		if c.Bool("heads") {
			return 1
		}
		return 0
	})
	return c
}

// Rerun tosses the coin.
func (c *Coin) Rerun(r *rand.Rand) {
	c.Set("heads", rv.Bern(r, c.P))
}

// Normal draws value from N(Mu, Sigma²).
type Normal struct {
	experiment.Fields
	Mu, Sigma float64
}

// NewNormal returns a normal variate with mean mu and standard deviation sigma.
func NewNormal(mu, sigma float64) *Normal {
	return &Normal{Mu: mu, Sigma: sigma}
}

// Rerun draws a fresh value.
func (n *Normal) Rerun(r *rand.Rand) {
	n.Set("value", rv.Normal(r, n.Mu, n.Sigma))
}

// Binomial counts the successes of N Bernoulli(P) trials.
type Binomial struct {
	experiment.Fields
	N int
	P float64
}

// NewBinomial returns a counter over n trials with success probability p.
func NewBinomial(n int, p float64) *Binomial {
	b := &Binomial{N: n, P: p}
	b.Derive("fraction", func() any {
		if b.N == 0 {
			return 0.0
		}
		return b.Float("successes") / float64(b.N)
	})
	return b
}

// Rerun runs all N trials and records the successes.
func (b *Binomial) Rerun(r *rand.Rand) {
	b.Set("successes", rv.Bin(r, b.N, b.P))
}

// Dice rolls two fair dice with Sides faces each.
type Dice struct {
	experiment.Fields
	Sides int
}

// NewDice returns a pair of dice with the given number of sides.
func NewDice(sides int) *Dice {
	d := &Dice{Sides: sides}
	d.Derive("total", func() any { return d.Int("die_1") + d.Int("die_2") })
	d.Derive("doubles", func() any { return d.Int("die_1") == d.Int("die_2") })
	return d
}

// Rerun rolls both dice.
func (d *Dice) Rerun(r *rand.Rand) {
	d.Set("die_1", 1+r.IntN(d.Sides))
	d.Set("die_2", 1+r.IntN(d.Sides))
}
