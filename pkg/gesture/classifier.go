package gesture

import (
	"time"

	"github.com/teslashibe/go-chakraflow/pkg/chakra"
	"github.com/teslashibe/go-chakraflow/pkg/landmark"
)

// Name identifies a tracked named gesture.
type Name string

const (
	Pinch     Name = "Gyan"     // precision pinch, thumb tip on index tip
	Fist      Name = "Fist"     // no finger extended
	OpenPalm  Name = "OpenPalm" // every finger extended
	TwoFinger Name = "Peace"    // index and middle up, ring and pinky down
)

// Tracked lists the named gestures counted by analytics, in report order.
var Tracked = []Name{Pinch, Fist, OpenPalm, TwoFinger}

// Config holds classifier thresholds.
type Config struct {
	// PinchThreshold is the normalized thumb-index distance below which a
	// precision pinch is detected.
	PinchThreshold float64 `yaml:"pinch_threshold"`

	// TogetherThreshold is the wrist-to-wrist distance for hands-together.
	TogetherThreshold float64 `yaml:"together_threshold"`

	// ToggleHold is how long hands must stay together to flip the mode.
	ToggleHold time.Duration `yaml:"toggle_hold"`

	// Mirrored is true for selfie-view input.
	Mirrored bool `yaml:"mirrored"`
}

// DefaultConfig returns the tuned thresholds.
func DefaultConfig() Config {
	return Config{
		PinchThreshold:    0.14,
		TogetherThreshold: 0.15,
		ToggleHold:        2 * time.Second,
		Mirrored:          true,
	}
}

// Result is the classifier output for one tick.
type Result struct {
	Fingers  FingerState   `json:"fingers"`
	Pinch    bool          `json:"pinch"`
	Region   chakra.Region `json:"region"`
	Matched  bool          `json:"matched"`
	Detected []Name        `json:"detected,omitempty"`
}

// Has reports whether the named gesture was detected this tick.
func (r Result) Has(n Name) bool {
	for _, d := range r.Detected {
		if d == n {
			return true
		}
	}
	return false
}

// Classifier turns a hand into a Result. It is stateless.
type Classifier struct {
	cfg Config
}

// NewClassifier creates a classifier.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// IsPinch reports a precision pinch on the hand.
func (c *Classifier) IsPinch(hand *landmark.Hand) bool {
	return PinchDistance(hand) < c.cfg.PinchThreshold
}

// Classify evaluates the first hand in the frame. Additional hands are
// ignored for single-hand gestures. ok is false when no hand is present.
func (c *Classifier) Classify(frame *landmark.Frame) (Result, bool) {
	if !frame.HasHands() {
		return Result{}, false
	}
	w, h := frame.Size()
	return c.ClassifyHand(&frame.Hands[0], w, h), true
}

// ClassifyHand evaluates one hand.
func (c *Classifier) ClassifyHand(hand *landmark.Hand, width, height int) Result {
	fs := Fingers(hand, width, height, c.cfg.Mirrored)
	pinch := c.IsPinch(hand)

	res := Result{Fingers: fs, Pinch: pinch}
	res.Region, res.Matched = Lookup(fs, pinch)

	if pinch {
		res.Detected = append(res.Detected, Pinch)
	}
	if fs.NoneExtended() {
		res.Detected = append(res.Detected, Fist)
	}
	if fs.AllExtended() {
		res.Detected = append(res.Detected, OpenPalm)
	}
	if fs.Index && fs.Middle && !fs.Ring && !fs.Pinky {
		res.Detected = append(res.Detected, TwoFinger)
	}
	return res
}

// HandsTogether reports two hands held close, wrists within the threshold.
func (c *Classifier) HandsTogether(frame *landmark.Frame) bool {
	if frame == nil || len(frame.Hands) < 2 {
		return false
	}
	return WristDistance(&frame.Hands[0], &frame.Hands[1]) < c.cfg.TogetherThreshold
}
