package energy

import (
	"errors"

	"github.com/teslashibe/go-chakraflow/pkg/chakra"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("energy: invalid config")

// Config holds the per-tick rates of the energy model.
type Config struct {
	Initial         float64 `yaml:"initial"`          // starting level for every region
	Charge          float64 `yaml:"charge"`           // added to the classified region
	Decay           float64 `yaml:"decay"`            // removed from the other regions
	IdleDecay       float64 `yaml:"idle_decay"`       // removed from all regions when nothing is classified
	AlignTarget     float64 `yaml:"align_target"`     // level alignment blends toward
	MeditationBoost float64 `yaml:"meditation_boost"` // added to all regions in deep meditation
}

// DefaultConfig returns the tuned rates.
func DefaultConfig() Config {
	return Config{
		Initial:         0.4,
		Charge:          0.02,
		Decay:           0.004,
		IdleDecay:       0.002,
		AlignTarget:     0.9,
		MeditationBoost: 0.005,
	}
}

// Validate rejects negative rates and targets outside the vector bounds.
func (c Config) Validate() error {
	switch {
	case c.Charge <= 0, c.Decay < 0, c.IdleDecay < 0, c.MeditationBoost < 0:
		return errors.Join(ErrInvalidConfig, errors.New("rates must be non-negative and charge positive"))
	case c.Initial < Min || c.Initial > Max:
		return errors.Join(ErrInvalidConfig, errors.New("initial level outside [0.1, 1.0]"))
	case c.AlignTarget < Min || c.AlignTarget > Max:
		return errors.Join(ErrInvalidConfig, errors.New("align target outside [0.1, 1.0]"))
	}
	return nil
}

// Update carries everything the model needs for one tick. The engine fills it
// from the classifier and the timed state machines.
type Update struct {
	Region     chakra.Region
	Classified bool // false when no hand or no table row matched

	Aligning bool
	Progress float64 // alignment progress in [0,1]

	Awakening bool
	Step      int // highest region floored by the awakening sequence

	Deep bool // meditation stage is Dhyana or Samadhi
}

// Model owns an energy vector for the session lifetime.
type Model struct {
	cfg Config
	v   Vector
}

// NewModel creates a model with every region at cfg.Initial.
func NewModel(cfg Config) *Model {
	return &Model{cfg: cfg, v: Uniform(cfg.Initial)}
}

// Vector returns a copy of the current levels.
func (m *Model) Vector() Vector {
	return m.v
}

// Reset restores every region to the initial level.
func (m *Model) Reset() {
	m.v = Uniform(m.cfg.Initial)
}

// Apply runs one tick in the fixed order: charge or decay, alignment blend,
// awakening floor, meditation boost. It returns the resulting vector.
func (m *Model) Apply(u Update) Vector {
	if u.Classified {
		m.Charge(u.Region)
	} else {
		m.Idle()
	}
	if u.Aligning {
		m.Blend(u.Progress)
	}
	if u.Awakening {
		m.Floor(u.Step)
	}
	if u.Deep {
		m.Boost()
	}
	return m.v
}

// Charge raises region r and decays the others.
func (m *Model) Charge(r chakra.Region) {
	if !r.Valid() {
		m.Idle()
		return
	}
	for i := range m.v {
		if chakra.Region(i) == r {
			m.v[i] = clamp(m.v[i] + m.cfg.Charge)
		} else {
			m.v[i] = clamp(m.v[i] - m.cfg.Decay)
		}
	}
}

// Idle applies the smaller decay to every region.
func (m *Model) Idle() {
	for i := range m.v {
		m.v[i] = clamp(m.v[i] - m.cfg.IdleDecay)
	}
}

// Blend pulls every region toward AlignTarget by progress.
func (m *Model) Blend(progress float64) {
	p := min(max(progress, 0), 1)
	for i := range m.v {
		m.v[i] = clamp(m.v[i]*(1-p) + m.cfg.AlignTarget*p)
	}
}

// Floor sets regions 0 through k to Max.
func (m *Model) Floor(k int) {
	for i := 0; i <= k && i < len(m.v); i++ {
		m.v[i] = Max
	}
}

// Boost adds the meditation boost to every region.
func (m *Model) Boost() {
	for i := range m.v {
		m.v[i] = clamp(m.v[i] + m.cfg.MeditationBoost)
	}
}
