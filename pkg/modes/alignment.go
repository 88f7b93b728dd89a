package modes

import "time"

// AlignmentConfig holds the alignment mode constants.
type AlignmentConfig struct {
	EyeClosed      float64       `yaml:"eye_closed"`      // aperture threshold, shared with awakening
	FrameThreshold int           `yaml:"frame_threshold"` // closed ticks needed to trigger
	Step           float64       `yaml:"step"`            // progress per active tick
	Duration       time.Duration `yaml:"duration"`        // hard timeout after activation
}

// DefaultAlignmentConfig returns the tuned constants.
func DefaultAlignmentConfig() AlignmentConfig {
	return AlignmentConfig{
		EyeClosed:      0.012,
		FrameThreshold: 15,
		Step:           0.01,
		Duration:       8 * time.Second,
	}
}

// AlignmentState is the alignment output for one tick.
type AlignmentState struct {
	Active   bool      `json:"active"`
	Progress float64   `json:"progress"`
	Start    time.Time `json:"start,omitzero"`
	Count    int       `json:"count"`
	Started  bool      `json:"-"`
	Ended    bool      `json:"-"`
}

// Alignment is a time-boxed mode that pulls every energy toward a common
// level. It re-arms only after the eyes open.
type Alignment struct {
	cfg      AlignmentConfig
	active   bool
	armed    bool
	progress float64
	start    time.Time
	count    int
}

// NewAlignment creates an armed, inactive alignment mode.
func NewAlignment(cfg AlignmentConfig) *Alignment {
	return &Alignment{cfg: cfg, armed: true}
}

// Update advances the mode with the current closed-frame count.
func (a *Alignment) Update(closedFrames int, now time.Time) AlignmentState {
	if closedFrames == 0 {
		a.armed = true
	}

	if a.active {
		if now.Sub(a.start) >= a.cfg.Duration {
			a.active = false
			a.progress = 0
			st := a.State()
			st.Ended = true
			return st
		}
		a.progress = min(1, a.progress+a.cfg.Step)
		return a.State()
	}

	if a.armed && closedFrames > a.cfg.FrameThreshold {
		a.active = true
		a.armed = false
		a.progress = 0
		a.start = now
		a.count++
		st := a.State()
		st.Started = true
		return st
	}
	return a.State()
}

// Active reports whether alignment is running.
func (a *Alignment) Active() bool {
	return a.active
}

// Count returns the number of activations this session.
func (a *Alignment) Count() int {
	return a.count
}

// State returns the current state without advancing it.
func (a *Alignment) State() AlignmentState {
	st := AlignmentState{Active: a.active, Progress: a.progress, Count: a.count}
	if a.active {
		st.Start = a.start
	}
	return st
}
