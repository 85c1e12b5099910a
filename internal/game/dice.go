package game

import "math/rand"

// DiceSource produces two-dice totals. Engines take one through Options so
// games can be replayed or scripted in tests.
type DiceSource interface {
	Roll() int
}

// RandomDice rolls two independent six-sided dice.
type RandomDice struct {
	rng *rand.Rand
}

// NewRandomDice returns dice driven by rng.
func NewRandomDice(rng *rand.Rand) *RandomDice {
	return &RandomDice{rng: rng}
}

// Roll returns a total between 2 and 12.
func (d *RandomDice) Roll() int {
	return d.rng.Intn(6) + 1 + d.rng.Intn(6) + 1
}

// FairDice draws totals without replacement from a bag holding each of the
// 36 two-dice outcomes once, refilling it when empty. Over every 36 rolls
// the totals match their expected frequencies exactly.
type FairDice struct {
	rng *rand.Rand
	bag []int
}

// NewFairDice returns a fair bag driven by rng.
func NewFairDice(rng *rand.Rand) *FairDice {
	return &FairDice{rng: rng}
}

// Roll draws one total from the bag.
func (d *FairDice) Roll() int {
	if len(d.bag) == 0 {
		d.refill()
	}
	i := d.rng.Intn(len(d.bag))
	total := d.bag[i]
	d.bag[i] = d.bag[len(d.bag)-1]
	d.bag = d.bag[:len(d.bag)-1]
	return total
}

// Remaining returns how many rolls are left before the bag refills.
func (d *FairDice) Remaining() int {
	return len(d.bag)
}

func (d *FairDice) refill() {
	d.bag = d.bag[:0]
	for a := 1; a <= 6; a++ {
		for b := 1; b <= 6; b++ {
			d.bag = append(d.bag, a+b)
		}
	}
}

// ScriptedDice replays a fixed sequence of totals, then repeats the last.
type ScriptedDice struct {
	Rolls []int
	next  int
}

// Roll returns the next scripted total.
func (d *ScriptedDice) Roll() int {
	if len(d.Rolls) == 0 {
		return 2
	}
	if d.next >= len(d.Rolls) {
		return d.Rolls[len(d.Rolls)-1]
	}
	total := d.Rolls[d.next]
	d.next++
	return total
}
