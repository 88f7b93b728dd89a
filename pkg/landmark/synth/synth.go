// Package synth builds synthetic landmark frames for demos, recordings and
// manual testing of the pipeline without a camera.
//
// Hands are drawn for a mirrored (selfie) view: an extended thumb has its tip
// to the right of the IP joint.
package synth

import (
	"math"
	"time"

	"github.com/teslashibe/go-chakraflow/pkg/chakra"
	"github.com/teslashibe/go-chakraflow/pkg/landmark"
)

// Eye apertures on either side of the closed thresholds.
const (
	EyesOpen   = 0.03
	EyesClosed = 0.005
)

// BreathPeriod is the nose oscillation period of the synthetic face.
const BreathPeriod = 5 * time.Second

// Fingers selects which fingers are extended and whether the thumb tip
// touches the index tip.
type Fingers struct {
	Thumb, Index, Middle, Ring, Pinky bool
	Pinch                             bool
}

// RegionFingers returns a finger pattern that classifies to r.
func RegionFingers(r chakra.Region) Fingers {
	switch r {
	case chakra.Sacral:
		return Fingers{Index: true, Middle: true}
	case chakra.SolarPlexus:
		return Fingers{Thumb: true, Index: true, Middle: true, Ring: true, Pinky: true}
	case chakra.Heart, chakra.ThirdEye:
		// Third Eye shares the Heart pattern and classifies as Heart.
		return Fingers{Thumb: true, Index: true, Middle: true}
	case chakra.Throat:
		return Fingers{Index: true}
	case chakra.Crown:
		return Fingers{Middle: true, Ring: true, Pinky: true, Pinch: true}
	}
	return Fingers{}
}

// Hand draws one hand centred at x.
func Hand(f Fingers, x float64) landmark.Hand {
	var h landmark.Hand
	h.Points[landmark.Wrist] = landmark.Point{X: x, Y: 0.9}

	set := func(tip, pip int, dx float64, up bool) {
		h.Points[pip] = landmark.Point{X: x + dx, Y: 0.5}
		h.Points[tip] = landmark.Point{X: x + dx, Y: 0.6}
		if up {
			h.Points[tip].Y = 0.3
		}
	}
	set(landmark.IndexTip, landmark.IndexPIP, -0.05, f.Index)
	set(landmark.MiddleTip, landmark.MiddlePIP, 0, f.Middle)
	set(landmark.RingTip, landmark.RingPIP, 0.05, f.Ring)
	set(landmark.PinkyTip, landmark.PinkyPIP, 0.1, f.Pinky)

	h.Points[landmark.ThumbIP] = landmark.Point{X: x + 0.25, Y: 0.72}
	h.Points[landmark.ThumbTip] = landmark.Point{X: x + 0.2, Y: 0.7}
	if f.Thumb {
		h.Points[landmark.ThumbTip].X = x + 0.3
	}
	if f.Pinch {
		tip := h.Points[landmark.IndexTip]
		h.Points[landmark.ThumbTip] = landmark.Point{X: tip.X + 0.001, Y: tip.Y}
		h.Points[landmark.ThumbIP] = landmark.Point{X: tip.X + 0.05, Y: tip.Y + 0.05}
	}
	h.Handedness = "Right"
	h.Score = 0.98
	return h
}

// Face draws a face mesh with the given eye aperture. The nose rises and
// falls with phase, one breath per 2π.
func Face(aperture, phase float64) landmark.Face {
	f := make(landmark.Face, landmark.MinFaceLandmarks)
	noseY := 0.5 + 0.01*math.Sin(phase)
	f[landmark.NoseTip] = landmark.Point{X: 0.5, Y: noseY}
	f[landmark.UpperLip] = landmark.Point{X: 0.5, Y: 0.6}
	f[landmark.LowerLip] = landmark.Point{X: 0.5, Y: 0.61}
	f[landmark.LeftEyeTop] = landmark.Point{X: 0.45, Y: 0.4}
	f[landmark.LeftEyeBottom] = landmark.Point{X: 0.45, Y: 0.4 + aperture}
	return f
}

// Pose draws shoulders and hips. lean shifts the shoulders sideways to tilt
// the spine away from vertical; 0 is upright.
func Pose(lean float64) landmark.Pose {
	p := make(landmark.Pose, landmark.MinPoseLandmarks)
	p[landmark.LeftShoulder] = landmark.Point{X: 0.4 + lean, Y: 0.3}
	p[landmark.RightShoulder] = landmark.Point{X: 0.6 + lean, Y: 0.3}
	p[landmark.LeftHip] = landmark.Point{X: 0.42, Y: 0.7}
	p[landmark.RightHip] = landmark.Point{X: 0.58, Y: 0.7}
	return p
}

// Step is one segment of a Script.
type Step struct {
	Label    string
	Duration time.Duration

	// Hands, when set, are shown for the whole step.
	Hands []Fingers

	EyesClosed bool
	NoFace     bool
	Lean       float64
}

// Script is a sequence of steps played back to back.
type Script []Step

// Duration returns the total length of the script.
func (s Script) Duration() time.Duration {
	var d time.Duration
	for _, st := range s {
		d += st.Duration
	}
	return d
}

// At returns the frame at elapsed time into the script and the label of the
// active step. ok is false once the script has ended.
func (s Script) At(elapsed time.Duration) (f landmark.Frame, label string, ok bool) {
	if elapsed < 0 {
		elapsed = 0
	}
	var offset time.Duration
	for _, st := range s {
		if elapsed < offset+st.Duration {
			return st.frame(elapsed), st.Label, true
		}
		offset += st.Duration
	}
	return landmark.Frame{}, "", false
}

func (st Step) frame(elapsed time.Duration) landmark.Frame {
	f := landmark.Frame{
		Width:  landmark.DefaultWidth,
		Height: landmark.DefaultHeight,
		Pose:   Pose(st.Lean),
	}
	for i, fingers := range st.Hands {
		f.Hands = append(f.Hands, Hand(fingers, 0.3+0.4*float64(i)))
	}
	if !st.NoFace {
		aperture := EyesOpen
		if st.EyesClosed {
			aperture = EyesClosed
		}
		phase := 2 * math.Pi * elapsed.Seconds() / BreathPeriod.Seconds()
		f.Face = Face(aperture, phase)
	}
	return f
}

// Demo walks through every region, a slouch, a closed-eye rest long enough
// to trigger alignment and the awakening sequence, and the open-eye tail that
// lets the sequence play out.
func Demo() Script {
	s := Script{{Label: "settle", Duration: 3 * time.Second}}
	for _, r := range chakra.All() {
		if r == chakra.ThirdEye {
			continue
		}
		s = append(s, Step{
			Label:    r.String(),
			Duration: 6 * time.Second,
			Hands:    []Fingers{RegionFingers(r)},
		})
	}
	s = append(s,
		Step{Label: "slouch", Duration: 5 * time.Second, Lean: 0.15},
		Step{Label: "eyes closed", Duration: 10 * time.Second, EyesClosed: true},
		Step{Label: "awakening", Duration: 32 * time.Second},
	)
	return s
}
