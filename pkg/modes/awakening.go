package modes

import (
	"time"

	"github.com/teslashibe/go-chakraflow/pkg/chakra"
)

// AwakeningConfig holds the awakening sequence constants.
type AwakeningConfig struct {
	MinClosed    time.Duration `yaml:"min_closed"`    // closed run needed before reopening
	StepDuration time.Duration `yaml:"step_duration"` // time per region
	Buffer       time.Duration `yaml:"buffer"`        // hold after the last region
}

// DefaultAwakeningConfig returns the tuned constants.
func DefaultAwakeningConfig() AwakeningConfig {
	return AwakeningConfig{
		MinClosed:    4 * time.Second,
		StepDuration: 4 * time.Second,
		Buffer:       2 * time.Second,
	}
}

// Total is the full sequence length including the trailing buffer.
func (c AwakeningConfig) Total() time.Duration {
	return time.Duration(chakra.Count)*c.StepDuration + c.Buffer
}

// AwakeningState is the awakening output for one tick.
type AwakeningState struct {
	Active   bool      `json:"active"`
	Step     int       `json:"step"`
	Start    time.Time `json:"start,omitzero"`
	Count    int       `json:"count"`
	Started  bool      `json:"-"`
	Advanced bool      `json:"-"`
	Ended    bool      `json:"-"`
}

// Awakening lights the regions one by one, Root to Crown, after the eyes
// reopen from a long closure.
type Awakening struct {
	cfg    AwakeningConfig
	active bool
	start  time.Time
	step   int
	count  int
}

// NewAwakening creates an inactive sequence.
func NewAwakening(cfg AwakeningConfig) *Awakening {
	return &Awakening{cfg: cfg, step: -1}
}

// Update advances the sequence. eyes is this tick's watcher output; a reopen
// after a long enough run (re)starts the sequence.
func (a *Awakening) Update(eyes EyeState, now time.Time) AwakeningState {
	var st AwakeningState
	if eyes.Reopened && eyes.LastRun > a.cfg.MinClosed {
		a.active = true
		a.start = now
		a.step = -1
		a.count++
		st.Started = true
	}
	if !a.active {
		return a.fill(st)
	}

	elapsed := now.Sub(a.start)
	if elapsed > a.cfg.Total() {
		a.active = false
		a.step = -1
		st.Ended = true
		return a.fill(st)
	}

	step := min(chakra.Count-1, int(elapsed/a.cfg.StepDuration))
	if step != a.step {
		a.step = step
		st.Advanced = true
	}
	return a.fill(st)
}

// Active reports whether the sequence is running.
func (a *Awakening) Active() bool {
	return a.active
}

// Count returns how many times the sequence has started.
func (a *Awakening) Count() int {
	return a.count
}

// Step returns the highest lit region index, or -1 when inactive.
func (a *Awakening) Step() int {
	return a.step
}

func (a *Awakening) fill(st AwakeningState) AwakeningState {
	st.Active = a.active
	st.Step = a.step
	st.Count = a.count
	if a.active {
		st.Start = a.start
	}
	return st
}
