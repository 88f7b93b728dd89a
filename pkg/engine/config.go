package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/teslashibe/go-chakraflow/pkg/breath"
	"github.com/teslashibe/go-chakraflow/pkg/energy"
	"github.com/teslashibe/go-chakraflow/pkg/gesture"
	"github.com/teslashibe/go-chakraflow/pkg/meditation"
	"github.com/teslashibe/go-chakraflow/pkg/modes"
	"github.com/teslashibe/go-chakraflow/pkg/narration"
	"github.com/teslashibe/go-chakraflow/pkg/posture"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("engine: invalid config")

// Config holds every tunable of the pipeline.
type Config struct {
	// TickRate is the live loop period. Timed transitions are defined in
	// elapsed time, so jitter only matters for the closed-frame count.
	TickRate time.Duration `yaml:"tick_rate"`

	// IdleHint raises the idle flag when nothing has been classified for
	// this long.
	IdleHint time.Duration `yaml:"idle_hint"`

	// UserLevel and Tone are passed to the narration collaborator.
	UserLevel string `yaml:"user_level"`
	Tone      string `yaml:"tone"`

	Gesture    gesture.Config        `yaml:"gesture"`
	Energy     energy.Config         `yaml:"energy"`
	Breath     breath.Config         `yaml:"breath"`
	Posture    posture.Config        `yaml:"posture"`
	Meditation meditation.Config     `yaml:"meditation"`
	Alignment  modes.AlignmentConfig `yaml:"alignment"`
	Awakening  modes.AwakeningConfig `yaml:"awakening"`
	Narration  narration.Config      `yaml:"narration"`
}

// DefaultConfig returns the tuned defaults for a 10 Hz tick.
func DefaultConfig() Config {
	return Config{
		TickRate:   100 * time.Millisecond,
		IdleHint:   10 * time.Second,
		UserLevel:  "beginner",
		Tone:       "gentle",
		Gesture:    gesture.DefaultConfig(),
		Energy:     energy.DefaultConfig(),
		Breath:     breath.DefaultConfig(),
		Posture:    posture.DefaultConfig(),
		Meditation: meditation.DefaultConfig(),
		Alignment:  modes.DefaultAlignmentConfig(),
		Awakening:  modes.DefaultAwakeningConfig(),
		Narration:  narration.DefaultConfig(),
	}
}

// GentleConfig charges and decays at half rate, for long seated sessions.
func GentleConfig() Config {
	cfg := DefaultConfig()
	cfg.Energy.Charge = 0.01
	cfg.Energy.Decay = 0.002
	cfg.Energy.IdleDecay = 0.001
	cfg.Narration.Refresh = 10 * time.Second
	return cfg
}

// ResponsiveConfig reacts quickly, for demos and gesture practice.
func ResponsiveConfig() Config {
	cfg := DefaultConfig()
	cfg.Energy.Charge = 0.04
	cfg.Energy.Decay = 0.008
	cfg.Gesture.ToggleHold = time.Second
	cfg.Narration.Refresh = 4 * time.Second
	return cfg
}

// Validate rejects non-positive periods and thresholds and inverted ramps.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.TickRate > 0, "tick_rate must be positive, got %v", c.TickRate)
	check(c.IdleHint > 0, "idle_hint must be positive, got %v", c.IdleHint)

	check(c.Gesture.PinchThreshold > 0, "gesture.pinch_threshold must be positive")
	check(c.Gesture.TogetherThreshold > 0, "gesture.together_threshold must be positive")
	check(c.Gesture.ToggleHold > 0, "gesture.toggle_hold must be positive")

	if err := c.Energy.Validate(); err != nil {
		errs = append(errs, err)
	}

	check(c.Breath.Smoothing >= 0 && c.Breath.Smoothing < 1, "breath.smoothing must be in [0, 1)")
	check(c.Breath.PhaseGain > 0, "breath.phase_gain must be positive")
	check(c.Breath.StableDelta > 0, "breath.stable_delta must be positive")
	check(c.Breath.RateWindow > 0, "breath.rate_window must be positive")

	for _, r := range []struct {
		name string
		ramp posture.Ramp
	}{
		{"spine", c.Posture.Spine},
		{"shoulder", c.Posture.Shoulder},
		{"hip", c.Posture.Hip},
	} {
		check(r.ramp.Saturation > r.ramp.Onset, "posture.%s saturation must exceed onset", r.name)
		check(r.ramp.Max >= 0, "posture.%s max must be non-negative", r.name)
	}

	check(c.Meditation.EyeClosed > 0, "meditation.eye_closed must be positive")
	check(c.Meditation.GainPerSec > 0, "meditation.gain_per_sec must be positive")
	check(c.Meditation.DecayPerTick > 0, "meditation.decay_per_tick must be positive")

	check(c.Alignment.EyeClosed > 0, "alignment.eye_closed must be positive")
	check(c.Alignment.FrameThreshold > 0, "alignment.frame_threshold must be positive")
	check(c.Alignment.Step > 0, "alignment.step must be positive")
	check(c.Alignment.Duration > 0, "alignment.duration must be positive")

	check(c.Awakening.MinClosed > 0, "awakening.min_closed must be positive")
	check(c.Awakening.StepDuration > 0, "awakening.step_duration must be positive")
	check(c.Awakening.Buffer >= 0, "awakening.buffer must be non-negative")

	check(c.Narration.Refresh > 0, "narration.refresh must be positive")
	check(c.Narration.Timeout > 0, "narration.timeout must be positive")

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
}
