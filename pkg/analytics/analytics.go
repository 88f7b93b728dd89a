// Package analytics accumulates per-session statistics: time spent in each
// region, named gesture counts and posture samples.
package analytics

import (
	"time"

	"github.com/teslashibe/go-chakraflow/pkg/chakra"
	"github.com/teslashibe/go-chakraflow/pkg/gesture"
)

// AlertThreshold is the posture score below which a sample raises an alert.
const AlertThreshold = 0.5

// Summary is a read-only view of the aggregate.
type Summary struct {
	Dwell        []float64            `json:"dwell"` // seconds per region
	Gestures     map[gesture.Name]int `json:"gestures"`
	Alerts       int                  `json:"posture_alerts"`
	MeanPosture  float64              `json:"mean_posture"`
	Samples      int                  `json:"posture_samples"`
	ActiveRegion *chakra.Region       `json:"active_region,omitempty"`
}

// Aggregator grows monotonically for the session.
type Aggregator struct {
	dwell      [chakra.Count]time.Duration
	active     chakra.Region
	hasActive  bool
	lastRecord time.Time
	lastClass  time.Time

	counts map[gesture.Name]int
	held   map[gesture.Name]bool

	postureSum float64
	samples    int
	alerts     int
}

// New creates an empty aggregate.
func New() *Aggregator {
	counts := make(map[gesture.Name]int, len(gesture.Tracked))
	for _, n := range gesture.Tracked {
		counts[n] = 0
	}
	return &Aggregator{
		counts: counts,
		held:   make(map[gesture.Name]bool, len(gesture.Tracked)),
	}
}

// ObserveRegion accrues the time since the previous call into the active
// region, then makes r active when classified is true. Unclassified ticks
// keep the previous region active.
func (a *Aggregator) ObserveRegion(r chakra.Region, classified bool, now time.Time) {
	a.accrue(now)
	if classified && r.Valid() {
		a.active = r
		a.hasActive = true
		a.lastClass = now
	}
}

func (a *Aggregator) accrue(now time.Time) {
	if a.hasActive && !a.lastRecord.IsZero() {
		if d := now.Sub(a.lastRecord); d > 0 {
			a.dwell[a.active] += d
		}
	}
	if now.After(a.lastRecord) {
		a.lastRecord = now
	}
}

// ObserveGestures counts each tracked gesture once per rising edge.
func (a *Aggregator) ObserveGestures(detected []gesture.Name) {
	now := make(map[gesture.Name]bool, len(detected))
	for _, n := range detected {
		now[n] = true
	}
	for _, n := range gesture.Tracked {
		if now[n] && !a.held[n] {
			a.counts[n]++
		}
		a.held[n] = now[n]
	}
}

// ObservePosture records one posture score.
func (a *Aggregator) ObservePosture(score float64) {
	a.postureSum += score
	a.samples++
	if score < AlertThreshold {
		a.alerts++
	}
}

// Count returns the rising-edge count for a gesture.
func (a *Aggregator) Count(n gesture.Name) int {
	return a.counts[n]
}

// LastClassified returns when a region was last classified, zero if never.
func (a *Aggregator) LastClassified() time.Time {
	return a.lastClass
}

// Summary flushes the open dwell interval up to now and returns a copy of
// the aggregate.
func (a *Aggregator) Summary(now time.Time) Summary {
	a.accrue(now)

	s := Summary{
		Dwell:    make([]float64, chakra.Count),
		Gestures: make(map[gesture.Name]int, len(a.counts)),
		Alerts:   a.alerts,
		Samples:  a.samples,
	}
	for i, d := range a.dwell {
		s.Dwell[i] = d.Seconds()
	}
	for n, c := range a.counts {
		s.Gestures[n] = c
	}
	if a.samples > 0 {
		s.MeanPosture = a.postureSum / float64(a.samples)
	}
	if a.hasActive {
		r := a.active
		s.ActiveRegion = &r
	}
	return s
}
