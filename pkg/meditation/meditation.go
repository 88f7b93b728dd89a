// Package meditation tracks meditation depth from sustained eye closure.
//
// The machine has three stages. Closing the eyes enters Dhyana at once;
// staying closed past the promotion time with stable breath reaches
// Samadhi; opening the eyes drops straight back to Dharana.
package meditation

import "time"

// Stage is a meditation depth.
type Stage string

const (
	Dharana Stage = "Dharana (Concentration)"
	Dhyana  Stage = "Dhyana (Meditation)"
	Samadhi Stage = "Samadhi (Absorption)"
)

// Deep reports whether the stage boosts energy.
func (s Stage) Deep() bool {
	return s == Dhyana || s == Samadhi
}

// MaxConcentration caps the concentration level.
const MaxConcentration = 100.0

// Config holds the meditation thresholds.
type Config struct {
	EyeClosed    float64       `yaml:"eye_closed"`     // eyelid distance below which eyes count as closed
	GainPerSec   float64       `yaml:"gain_per_sec"`   // concentration gained per second closed
	DecayPerTick float64       `yaml:"decay_per_tick"` // concentration lost per tick open
	PromoteAt    time.Duration `yaml:"promote_at"`     // closure needed for Samadhi
}

// DefaultConfig returns the tuned thresholds.
func DefaultConfig() Config {
	return Config{
		EyeClosed:    0.018,
		GainPerSec:   2.5,
		DecayPerTick: 2.0,
		PromoteAt:    30 * time.Second,
	}
}

// State is the machine output for one tick.
type State struct {
	Stage         Stage     `json:"stage"`
	Concentration float64   `json:"concentration"`
	Since         time.Time `json:"since,omitzero"` // start of the current closed run
}

// Tracker is the meditation state machine.
type Tracker struct {
	cfg           Config
	stage         Stage
	concentration float64
	since         time.Time
}

// NewTracker starts in Dharana with zero concentration.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{cfg: cfg, stage: Dharana}
}

// Closed reports whether an eyelid aperture counts as closed.
func (t *Tracker) Closed(aperture float64) bool {
	return aperture < t.cfg.EyeClosed
}

// Update advances the machine. closed is the eye state for this tick and
// stable the breath judgement.
func (t *Tracker) Update(closed, stable bool, now time.Time) State {
	if !closed {
		t.stage = Dharana
		t.since = time.Time{}
		t.concentration = max(0, t.concentration-t.cfg.DecayPerTick)
		return t.State()
	}

	if !t.stage.Deep() {
		t.stage = Dhyana
		t.since = now
	}
	elapsed := now.Sub(t.since)
	t.concentration = min(MaxConcentration, elapsed.Seconds()*t.cfg.GainPerSec)
	if elapsed > t.cfg.PromoteAt && stable {
		t.stage = Samadhi
	}
	return t.State()
}

// State returns the current stage and level.
func (t *Tracker) State() State {
	return State{Stage: t.stage, Concentration: t.concentration, Since: t.since}
}
