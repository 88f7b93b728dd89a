package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-chakraflow/pkg/analytics"
	"github.com/teslashibe/go-chakraflow/pkg/breath"
	"github.com/teslashibe/go-chakraflow/pkg/energy"
	"github.com/teslashibe/go-chakraflow/pkg/gesture"
	"github.com/teslashibe/go-chakraflow/pkg/landmark"
	"github.com/teslashibe/go-chakraflow/pkg/meditation"
	"github.com/teslashibe/go-chakraflow/pkg/modes"
	"github.com/teslashibe/go-chakraflow/pkg/narration"
)

// Session owns every piece of per-session state. The engine mutates it only
// inside Tick; other methods are safe to call from any goroutine.
type Session struct {
	id    string
	start time.Time

	mu sync.Mutex

	toggle     *gesture.Toggle
	eyes       *modes.EyeWatch
	alignment  *modes.Alignment
	awakening  *modes.Awakening
	breath     *breath.Tracker
	meditation *meditation.Tracker
	energy     *energy.Model
	analytics  *analytics.Aggregator
	narration  *narration.Throttle

	// pose is carried forward: once observed it is never absent again,
	// only possibly stale.
	pose landmark.Pose

	ticks int
	last  Snapshot
}

func newSession(cfg Config, collab narration.Collaborator, logger *slog.Logger, now time.Time) *Session {
	s := &Session{
		id:         uuid.New().String(),
		start:      now,
		toggle:     gesture.NewToggle(cfg.Gesture.ToggleHold),
		eyes:       modes.NewEyeWatch(cfg.Alignment.EyeClosed),
		alignment:  modes.NewAlignment(cfg.Alignment),
		awakening:  modes.NewAwakening(cfg.Awakening),
		breath:     breath.NewTracker(cfg.Breath),
		meditation: meditation.NewTracker(cfg.Meditation),
		energy:     energy.NewModel(cfg.Energy),
		analytics:  analytics.New(),
		narration:  narration.NewThrottle(cfg.Narration, collab, logger),
	}
	v := s.energy.Vector()
	s.last = Snapshot{
		SessionID: s.id,
		Time:      now,
		Energies:  v.Slice(),
		Dominant:  v.ArgMax().String(),
		Region:    v.ArgMax(),
	}
	return s
}

// ID returns the session's UUID.
func (s *Session) ID() string {
	return s.id
}

// Start returns when the session began.
func (s *Session) Start() time.Time {
	return s.start
}

// Latest returns the most recent snapshot. Before the first tick it holds
// the initial energies.
func (s *Session) Latest() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.last
	snap.SessionID = s.id
	snap.Energies = append([]float64(nil), s.last.Energies...)
	return snap
}

// Ticks returns how many ticks have run.
func (s *Session) Ticks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Close stops any narration call in flight.
func (s *Session) Close() {
	s.narration.Close()
}
