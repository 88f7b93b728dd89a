package engine

import (
	"time"

	"github.com/teslashibe/go-chakraflow/pkg/chakra"
	"github.com/teslashibe/go-chakraflow/pkg/gesture"
	"github.com/teslashibe/go-chakraflow/pkg/session"
)

// Summarize closes the session's books at now and returns the record to
// persist. It may be called more than once; the dwell interval is flushed
// each time.
func (e *Engine) Summarize(s *Session, now time.Time) *session.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg := s.analytics.Summary(now)
	v := s.energy.Vector()

	gestures := make(map[string]int, len(agg.Gestures))
	for name, n := range agg.Gestures {
		gestures[string(name)] = n
	}

	return &session.Summary{
		ID:             s.id,
		Start:          s.start,
		End:            now,
		Duration:       now.Sub(s.start).Seconds(),
		Ticks:          s.ticks,
		Dwell:          agg.Dwell,
		Gestures:       gestures,
		PostureAlerts:  agg.Alerts,
		MeanPosture:    agg.MeanPosture,
		AlignmentCount: s.alignment.Count(),
		CrownCount:     s.analytics.Count(gesture.Pinch),
		AwakeningCount: s.awakening.Count(),
		Energies:       v.Slice(),
		Strongest:      v.ArgMax().String(),
		Weakest:        v.ArgMin().String(),
		Calmness:       v.Mean(chakra.Heart, chakra.Crown) * 100,
	}
}
