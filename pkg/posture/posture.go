// Package posture scores seated alignment from shoulder and hip landmarks.
package posture

import (
	"math"

	"github.com/teslashibe/go-chakraflow/pkg/landmark"
)

// Label is the coarse posture verdict.
type Label string

const (
	Aligned    Label = "Aligned"
	SlightTilt Label = "Slight tilt"
	Adjust     Label = "Adjust spine/shoulders"
	Poor       Label = "Poor posture"
	NoBody     Label = "No body"
)

// Ramp is a piecewise-linear penalty: zero up to Onset, rising linearly to
// Max at Saturation, flat beyond.
type Ramp struct {
	Onset      float64 `yaml:"onset"`
	Saturation float64 `yaml:"saturation"`
	Max        float64 `yaml:"max"`
}

// Penalty evaluates the ramp at v.
func (r Ramp) Penalty(v float64) float64 {
	if v <= r.Onset {
		return 0
	}
	span := r.Saturation - r.Onset
	if span <= 0 {
		return r.Max
	}
	return r.Max * math.Min(1, (v-r.Onset)/span)
}

// Config holds the three penalty ramps.
type Config struct {
	Spine    Ramp `yaml:"spine"`    // degrees from vertical
	Shoulder Ramp `yaml:"shoulder"` // normalized height difference
	Hip      Ramp `yaml:"hip"`      // normalized height difference
}

// DefaultConfig returns the tuned ramps.
func DefaultConfig() Config {
	return Config{
		Spine:    Ramp{Onset: 10, Saturation: 50, Max: 0.5},
		Shoulder: Ramp{Onset: 0.03, Saturation: 0.13, Max: 0.3},
		Hip:      Ramp{Onset: 0.03, Saturation: 0.13, Max: 0.2},
	}
}

// Assessment is the analyzer output for one tick.
type Assessment struct {
	Score        float64 `json:"score"`
	Label        Label   `json:"label"`
	Present      bool    `json:"present"`
	SpineAngle   float64 `json:"spine_angle"`
	ShoulderTilt float64 `json:"shoulder_tilt"`
	HipTilt      float64 `json:"hip_tilt"`
}

// Analyzer scores poses. It is stateless.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Assess scores a pose. A missing pose yields NoBody with score 0.
func (a *Analyzer) Assess(p landmark.Pose) Assessment {
	ls, rs, ok := p.Shoulders()
	if !ok {
		return Assessment{Label: NoBody}
	}
	lh, rh, _ := p.Hips()

	shoulders := landmark.Midpoint(ls, rs)
	hips := landmark.Midpoint(lh, rh)

	as := Assessment{
		Present:      true,
		SpineAngle:   SpineAngle(shoulders, hips),
		ShoulderTilt: math.Abs(ls.Y - rs.Y),
		HipTilt:      math.Abs(lh.Y - rh.Y),
	}
	as.Score = a.Score(as.SpineAngle, as.ShoulderTilt, as.HipTilt)
	as.Label = LabelFor(as.Score)
	return as
}

// Score combines the three penalties into [0, 1].
func (a *Analyzer) Score(spineDeg, shoulderTilt, hipTilt float64) float64 {
	s := 1.0 -
		a.cfg.Spine.Penalty(spineDeg) -
		a.cfg.Shoulder.Penalty(shoulderTilt) -
		a.cfg.Hip.Penalty(hipTilt)
	return math.Max(0, math.Min(1, s))
}

// SpineAngle is the angle in degrees between the hip-to-shoulder vector and
// vertical. Zero is upright. The epsilon keeps a collapsed spine defined.
func SpineAngle(shoulders, hips landmark.Point) float64 {
	dx := math.Abs(shoulders.X - hips.X)
	dy := math.Abs(shoulders.Y-hips.Y) + landmark.Epsilon
	return math.Atan2(dx, dy) * 180 / math.Pi
}

// LabelFor maps a score to its label.
func LabelFor(score float64) Label {
	switch {
	case score > 0.8:
		return Aligned
	case score > 0.6:
		return SlightTilt
	case score > 0.4:
		return Adjust
	default:
		return Poor
	}
}
