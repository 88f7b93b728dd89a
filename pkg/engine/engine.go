// Package engine runs the per-tick pipeline over a session.
//
// Each tick executes the stages in a fixed order so that every writer of the
// energy vector applies in the same sequence:
//
//  1. landmark intake, pose carried forward
//  2. gesture classification and the hands-together toggle
//  3. eye-closure watch
//  4. alignment mode
//  5. awakening sequence
//  6. breathing
//  7. posture
//  8. meditation
//  9. energy: charge or decay, alignment blend, awakening floor, boost
//  10. analytics
//  11. narration on the dominant region
//  12. coach line, mood and idle hint
//
// Ticks never fail. Missing hands, face or body map to neutral state.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/teslashibe/go-chakraflow/pkg/chakra"
	"github.com/teslashibe/go-chakraflow/pkg/debug"
	"github.com/teslashibe/go-chakraflow/pkg/energy"
	"github.com/teslashibe/go-chakraflow/pkg/gesture"
	"github.com/teslashibe/go-chakraflow/pkg/landmark"
	"github.com/teslashibe/go-chakraflow/pkg/narration"
	"github.com/teslashibe/go-chakraflow/pkg/posture"
)

// Engine holds the immutable configuration and the stateless stages.
// Per-session state lives in Session.
type Engine struct {
	cfg        Config
	collab     narration.Collaborator
	logger     *slog.Logger
	classifier *gesture.Classifier
	posture    *posture.Analyzer
}

// New validates cfg and creates an engine. collab may be nil, in which case
// narration always shows the fallback text.
func New(cfg Config, collab narration.Collaborator, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:        cfg,
		collab:     collab,
		logger:     logger.With("component", "engine"),
		classifier: gesture.NewClassifier(cfg.Gesture),
		posture:    posture.NewAnalyzer(cfg.Posture),
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// NewSession starts a session at now.
func (e *Engine) NewSession(now time.Time) *Session {
	s := newSession(e.cfg, e.collab, e.logger, now)
	e.logger.Info("session started", "session", s.id)
	return s
}

// Tick runs one pipeline pass over frame at now and returns the snapshot.
func (e *Engine) Tick(s *Session, frame landmark.Frame, now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.last
	snap := Snapshot{
		SessionID: s.id,
		Tick:      s.ticks,
		Time:      now,
		Elapsed:   now.Sub(s.start).Seconds(),
	}

	// 1. Intake. Pose may be produced at a lower cadence than the tick.
	if frame.HasPose() {
		s.pose = frame.Pose
	}

	// 2. Gestures.
	res, hand := e.classifier.Classify(&frame)
	snap.Hand = hand
	snap.Gesture = res
	snap.Together = e.classifier.HandsTogether(&frame)
	if s.toggle.Update(snap.Together, now) {
		e.logger.Info("yoga mode toggled", "session", s.id, "on", s.toggle.On())
	}
	snap.YogaMode = s.toggle.On()

	// 3. Eyes.
	aperture, faceOK := frame.Face.EyeAperture()
	snap.Eyes = s.eyes.Update(aperture, faceOK, now)

	// 4-5. Timed modes.
	snap.Alignment = s.alignment.Update(snap.Eyes.Frames, now)
	snap.Awakening = s.awakening.Update(snap.Eyes, now)

	// 6. Breathing from the nose tip.
	nose, noseOK := frame.Face.Nose()
	snap.Breath = s.breath.Update(nose.Y, noseOK, now)

	// 7. Posture on the carried-forward pose.
	snap.Posture = e.posture.Assess(s.pose)

	// 8. Meditation has its own eye threshold.
	closed := faceOK && s.meditation.Closed(aperture)
	snap.Meditation = s.meditation.Update(closed, snap.Breath.Stable, now)

	// 9. Energy. The gesture path is suppressed while alignment runs.
	snap.Classified = hand && res.Matched && !snap.Alignment.Active
	v := s.energy.Apply(energy.Update{
		Region:     res.Region,
		Classified: snap.Classified,
		Aligning:   snap.Alignment.Active,
		Progress:   snap.Alignment.Progress,
		Awakening:  snap.Awakening.Active,
		Step:       snap.Awakening.Step,
		Deep:       snap.Meditation.Stage.Deep(),
	})
	snap.Energies = v.Slice()

	// 10. Analytics.
	s.analytics.ObserveRegion(res.Region, snap.Classified, now)
	var detected []gesture.Name
	if hand && !snap.Alignment.Active {
		detected = res.Detected
	}
	s.analytics.ObserveGestures(detected)
	if snap.Posture.Present {
		s.analytics.ObservePosture(snap.Posture.Score)
	}

	// 11. Narration on the dominant region.
	snap.Region = v.ArgMax()
	if snap.Classified {
		snap.Region = res.Region
	}
	snap.Dominant = snap.Region.String()

	req := narration.Request{
		PoseLabel:        string(snap.Posture.Label),
		MudraLabel:       mudraLabel(res, hand),
		BreathSmoothness: snap.Breath.Smoothness,
		BreathRate:       snap.Breath.Rate,
		PranayamaCount:   snap.Breath.Cycles,
		Session: narration.SessionContext{
			UserLevel:       e.cfg.UserLevel,
			Tone:            e.cfg.Tone,
			MeditationStage: string(snap.Meditation.Stage),
			ElapsedMinutes:  snap.Elapsed / 60,
		},
	}
	var emitted bool
	snap.Narration, emitted = s.narration.Observe(snap.Region, req, now)
	snap.NarrationChanged = emitted || snap.Narration.Seq != prev.Narration.Seq ||
		snap.Narration.Source != prev.Narration.Source

	// 12. Presentation hints.
	snap.Mood = narration.Mood(frame.Face, e.cfg.Alignment.EyeClosed)
	snap.Coach = narration.Coach(v, snap.Mood, snap.Alignment.Active, hand && res.Pinch)
	lastClass := s.analytics.LastClassified()
	if lastClass.IsZero() {
		lastClass = s.start
	}
	snap.Idle = now.Sub(lastClass) >= e.cfg.IdleHint

	e.logTransitions(s, prev, snap)

	s.ticks++
	s.last = snap
	return snap
}

func (e *Engine) logTransitions(s *Session, prev, snap Snapshot) {
	log := e.logger.With("session", s.id)

	switch {
	case snap.Alignment.Started:
		log.Info("alignment started", "count", snap.Alignment.Count)
	case snap.Alignment.Ended:
		log.Info("alignment ended")
	}
	switch {
	case snap.Awakening.Started:
		log.Info("awakening started", "count", snap.Awakening.Count)
	case snap.Awakening.Ended:
		log.Info("awakening complete")
	case snap.Awakening.Advanced:
		log.Debug("awakening step", "region", chakra.Region(snap.Awakening.Step))
	}
	if snap.Meditation.Stage != prev.Meditation.Stage && prev.Meditation.Stage != "" {
		log.Info("meditation stage", "from", prev.Meditation.Stage, "to", snap.Meditation.Stage)
	}
	if snap.Region != prev.Region {
		log.Info("dominant region", "from", prev.Dominant, "to", snap.Dominant)
	}

	debug.TickLog(log, "tick",
		"n", snap.Tick,
		"energies", fmt.Sprintf("%.3f", snap.Energies),
		"classified", snap.Classified,
		"eyes_closed", snap.Eyes.Frames,
		"breath_phase", snap.Breath.Phase,
		"posture", snap.Posture.Score,
	)
}

// mudraLabel names the hand shape for narration.
func mudraLabel(res gesture.Result, hand bool) string {
	switch {
	case !hand:
		return ""
	case res.Pinch:
		return "Gyan Mudra"
	case len(res.Detected) > 0:
		return string(res.Detected[0])
	case res.Matched:
		return res.Region.String() + " gesture"
	}
	return ""
}
