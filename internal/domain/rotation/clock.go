// internal/domain/rotation/clock.go
package rotation

import (
	"time"

	"oftheday_display/internal/domain/ofday"
)

// Clock derives the active category and sub-field from elapsed time.
// Category slots last D (display interval); inside a slot the field flips every S (subtitle interval),
// starting with the subtitle. It holds no counters, so a given elapsed time always maps to the same state.
type Clock struct {
	subtitleInterval time.Duration // S
	displayInterval  time.Duration // D
}

// State is the derived rotation position. Never stored.
type State struct {
	CategoryIndex int
	Field         ofday.Field
	SlotElapsed   time.Duration // time spent inside the current category slot
}

// NewClock fails with a ConfigError if either interval is not positive.
func NewClock(subtitleInterval, displayInterval time.Duration) (*Clock, error) {
	if subtitleInterval <= 0 {
		return nil, ofday.NewConfigError("subtitle_rotate_interval must be positive, got %s", subtitleInterval)
	}
	if displayInterval <= 0 {
		return nil, ofday.NewConfigError("display_rotate_interval must be positive, got %s", displayInterval)
	}
	return &Clock{subtitleInterval: subtitleInterval, displayInterval: displayInterval}, nil
}

// Aligned reports whether D is a whole multiple of S. Misaligned phases still work; boundaries just
// fall wherever the arithmetic puts them.
func (c *Clock) Aligned() bool {
	return c.displayInterval%c.subtitleInterval == 0
}

func (c *Clock) SubtitleInterval() time.Duration { return c.subtitleInterval }
func (c *Clock) DisplayInterval() time.Duration  { return c.displayInterval }

// At computes the state for elapsed time t with n enabled categories.
// Negative t (clock stepped back before the epoch) is folded with floored division.
func (c *Clock) At(t time.Duration, n int) (State, error) {
	if n < 1 {
		return State{}, ofday.NewConfigError("rotation needs at least one category, got %d", n)
	}

	slot := floorDiv(int64(t), int64(c.displayInterval))
	phaseElapsed := floorMod(int64(t), int64(c.displayInterval))
	phase := phaseElapsed / int64(c.subtitleInterval)

	field := ofday.FieldSubtitle
	if phase%2 == 1 {
		field = ofday.FieldDescription
	}

	return State{
		CategoryIndex: int(floorMod(slot, int64(n))),
		Field:         field,
		SlotElapsed:   time.Duration(phaseElapsed),
	}, nil
}

// NextChange returns how long until either the category or the field changes after t.
func (c *Clock) NextChange(t time.Duration) time.Duration {
	phaseElapsed := floorMod(int64(t), int64(c.displayInterval))
	toSlotEnd := int64(c.displayInterval) - phaseElapsed
	toPhaseEnd := int64(c.subtitleInterval) - phaseElapsed%int64(c.subtitleInterval)
	if toPhaseEnd < toSlotEnd {
		return time.Duration(toPhaseEnd)
	}
	return time.Duration(toSlotEnd)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}
