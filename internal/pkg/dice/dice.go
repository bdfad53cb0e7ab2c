// Package dice provides the randomness source for event resolution
package dice

import (
	toolkit "github.com/KirkDiggler/rpg-toolkit/dice"
)

// Roller produces uniform integer rolls. Injected so that event
// resolution stays deterministic under test; tests use SequenceRoller.
type Roller interface {
	// Roll returns a uniform value in [1, sides]
	Roll(sides int) int
}

// ToolkitRoller rolls using rpg-toolkit dice
type ToolkitRoller struct{}

// New returns the production roller
func New() Roller {
	return &ToolkitRoller{}
}

// Roll returns a uniform value in [1, sides]
func (r *ToolkitRoller) Roll(sides int) int {
	if sides <= 1 {
		return 1
	}
	roll, err := toolkit.NewRoll(1, sides)
	if err != nil {
		// NewRoll only rejects non-positive arguments, which are guarded above
		return 1
	}
	return roll.GetValue()
}

// SequenceRoller replays a fixed sequence of values, cycling when
// exhausted. Test helper.
type SequenceRoller struct {
	Values []int
	next   int
}

// NewSequence creates a roller that replays the given values
func NewSequence(values ...int) *SequenceRoller {
	return &SequenceRoller{Values: values}
}

// Roll returns the next value in the sequence
func (r *SequenceRoller) Roll(sides int) int {
	if len(r.Values) == 0 {
		return 1
	}
	v := r.Values[r.next%len(r.Values)]
	r.next++
	if v > sides {
		v = sides
	}
	if v < 1 {
		v = 1
	}
	return v
}
