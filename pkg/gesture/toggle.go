package gesture

import "time"

// Toggle flips a mode when a condition is held for a fixed duration.
// It fires once per hold; the condition must drop before it can fire again.
type Toggle struct {
	hold    time.Duration
	start   time.Time
	holding bool
	fired   bool
	on      bool
}

// NewToggle creates a toggle that fires after hold.
func NewToggle(hold time.Duration) *Toggle {
	return &Toggle{hold: hold}
}

// Update feeds the condition for this tick and returns true on the tick the
// mode flips.
func (t *Toggle) Update(held bool, now time.Time) bool {
	if !held {
		t.holding = false
		t.fired = false
		return false
	}
	if !t.holding {
		t.holding = true
		t.start = now
		return false
	}
	if t.fired || now.Sub(t.start) <= t.hold {
		return false
	}
	t.fired = true
	t.on = !t.on
	return true
}

// On returns the current mode.
func (t *Toggle) On() bool {
	return t.on
}
