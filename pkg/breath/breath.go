// Package breath filters the vertical nose position into a breathing phase.
package breath

import (
	"math"
	"time"
)

// Neutral is the input reported when no face is visible.
const Neutral = 0.5

const twoPi = 2 * math.Pi

// Config holds breathing filter parameters.
type Config struct {
	Smoothing   float64       `yaml:"smoothing"`    // EMA weight on the previous value
	PhaseGain   float64       `yaml:"phase_gain"`   // radians per unit of smoothed delta
	Amplitude   float64       `yaml:"amplitude"`    // breath factor swing around 1.0
	StableDelta float64       `yaml:"stable_delta"` // |smoothed| below this counts as stable
	RateWindow  time.Duration `yaml:"rate_window"`  // window for breaths per minute
}

// DefaultConfig returns the tuned filter.
func DefaultConfig() Config {
	return Config{
		Smoothing:   0.9,
		PhaseGain:   50,
		Amplitude:   0.3,
		StableDelta: 0.002,
		RateWindow:  60 * time.Second,
	}
}

// State is the tracker output for one tick.
type State struct {
	Input      float64   `json:"input"`
	Smoothed   float64   `json:"smoothed"`
	Phase      float64   `json:"phase"`
	Factor     float64   `json:"factor"`
	Rate       float64   `json:"rate"`       // completed cycles per minute
	Smoothness float64   `json:"smoothness"` // 1 is perfectly even
	Cycles     int       `json:"cycles"`
	Stable     bool      `json:"stable"`
	LastUpdate time.Time `json:"last_update"`
}

// Tracker accumulates breathing phase across ticks. Not safe for concurrent
// use; the engine owns one per session.
type Tracker struct {
	cfg Config

	seeded   bool
	prevY    float64
	smoothed float64
	phase    float64
	input    float64

	jerk    float64 // EMA of |change in smoothed|
	travel  float64 // total phase distance covered
	cycles  int
	cycleAt []time.Time

	started    time.Time
	lastUpdate time.Time
}

// NewTracker creates a tracker at phase zero.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{cfg: cfg, input: Neutral}
}

// Update feeds the nose y position for this tick. When ok is false no face
// is visible: the tick is neutral and the next visible tick only re-seeds.
func (t *Tracker) Update(noseY float64, ok bool, now time.Time) State {
	if t.started.IsZero() {
		t.started = now
	}
	if !ok {
		t.seeded = false
		t.input = Neutral
		return t.state(now)
	}

	t.input = noseY
	if !t.seeded {
		t.seeded = true
		t.prevY = noseY
		return t.state(now)
	}

	dy := noseY - t.prevY
	t.prevY = noseY

	prev := t.smoothed
	t.smoothed = t.cfg.Smoothing*t.smoothed + (1-t.cfg.Smoothing)*dy
	t.jerk = t.cfg.Smoothing*t.jerk + (1-t.cfg.Smoothing)*math.Abs(t.smoothed-prev)

	step := t.smoothed * t.cfg.PhaseGain
	t.phase = wrap(t.phase + step)
	t.lastUpdate = now

	before := int(t.travel / twoPi)
	t.travel += math.Abs(step)
	if done := int(t.travel / twoPi); done > before {
		for i := before; i < done; i++ {
			t.cycleAt = append(t.cycleAt, now)
		}
		t.cycles = done
	}

	return t.state(now)
}

// Factor is the unit-centred oscillation 1 + A*sin(phase).
func (t *Tracker) Factor() float64 {
	return 1 + t.cfg.Amplitude*math.Sin(t.phase)
}

// Phase returns the current phase in [0, 2π).
func (t *Tracker) Phase() float64 {
	return t.phase
}

// Stable reports whether the smoothed delta is below the stability threshold.
func (t *Tracker) Stable() bool {
	return math.Abs(t.smoothed) < t.cfg.StableDelta
}

// Rate returns completed cycles per minute over the rate window.
func (t *Tracker) Rate(now time.Time) float64 {
	elapsed := now.Sub(t.started)
	if elapsed < 5*time.Second {
		return 0
	}
	window := min(elapsed, t.cfg.RateWindow)
	cutoff := now.Add(-window)

	keep := t.cycleAt[:0]
	for _, at := range t.cycleAt {
		if !at.Before(cutoff) {
			keep = append(keep, at)
		}
	}
	t.cycleAt = keep
	return float64(len(keep)) / window.Minutes()
}

// Smoothness maps recent jitter of the smoothed signal into (0, 1].
func (t *Tracker) Smoothness() float64 {
	if t.cfg.StableDelta <= 0 {
		return 1
	}
	return 1 / (1 + t.jerk/t.cfg.StableDelta)
}

// Cycles returns the number of completed breathing cycles.
func (t *Tracker) Cycles() int {
	return t.cycles
}

func (t *Tracker) state(now time.Time) State {
	return State{
		Input:      t.input,
		Smoothed:   t.smoothed,
		Phase:      t.phase,
		Factor:     t.Factor(),
		Rate:       t.Rate(now),
		Smoothness: t.Smoothness(),
		Cycles:     t.cycles,
		Stable:     t.Stable(),
		LastUpdate: t.lastUpdate,
	}
}

// wrap folds an angle into [0, 2π).
func wrap(a float64) float64 {
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	if a >= twoPi {
		a = 0
	}
	return a
}
