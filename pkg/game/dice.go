package game

import (
	"fmt"
	"math/rand"
	"time"
)

// Dice produces and stores a roll. Values (0,0) mean unset.
type Dice struct {
	die1, die2 int
	rng        *rand.Rand
}

// NewDice returns dice seeded from the wall clock.
func NewDice() *Dice {
	return NewDiceWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewDiceWithSource returns dice using the given randomness source,
// for deterministic play.
func NewDiceWithSource(src rand.Source) *Dice {
	return &Dice{rng: rand.New(src)}
}

// Roll produces a fresh pair of 1..6 values.
func (d *Dice) Roll() (int, int) {
	d.die1 = d.rng.Intn(6) + 1
	d.die2 = d.rng.Intn(6) + 1
	return d.die1, d.die2
}

// rollOne produces a single die value, used for the opening roll.
func (d *Dice) rollOne() int {
	return d.rng.Intn(6) + 1
}

// Set stores a specific roll, for position import and tests.
func (d *Dice) Set(die1, die2 int) error {
	if die1 < 1 || die1 > 6 || die2 < 1 || die2 > 6 {
		return fmt.Errorf("set dice %d-%d: %w", die1, die2, ErrInvalidOperation)
	}
	d.die1 = die1
	d.die2 = die2
	return nil
}

// Clear resets the dice to unset.
func (d *Dice) Clear() {
	d.die1 = 0
	d.die2 = 0
}

// Values returns the current roll, (0,0) if unset.
func (d *Dice) Values() (int, int) { return d.die1, d.die2 }

// IsDoubles reports whether both dice show the same value.
func (d *Dice) IsDoubles() bool { return d.die1 != 0 && d.die1 == d.die2 }

// Moves expands the roll into the ordered multiset of die values
// playable this turn: two values, or four identical values for
// doubles. Returns a fresh slice each call.
func (d *Dice) Moves() []int {
	if d.die1 == 0 || d.die2 == 0 {
		return nil
	}
	if d.IsDoubles() {
		return []int{d.die1, d.die1, d.die1, d.die1}
	}
	return []int{d.die1, d.die2}
}
