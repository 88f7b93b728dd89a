package narration

import (
	"fmt"

	"github.com/teslashibe/go-chakraflow/pkg/energy"
	"github.com/teslashibe/go-chakraflow/pkg/landmark"
)

// Mood labels derived from the face.
const (
	MoodExpressive = "Expressive / Happy"
	MoodCalm       = "Calm / Meditative"
	MoodNeutral    = "Neutral"
	MoodNoFace     = "No face"
)

// MouthOpen is the lip distance above which the face reads as expressive.
const MouthOpen = 0.035

// Mood classifies the face. eyeClosed is the aperture threshold below which
// the eyes count as closed.
func Mood(face landmark.Face, eyeClosed float64) string {
	mouth, ok := face.MouthAperture()
	if !ok {
		return MoodNoFace
	}
	eye, _ := face.EyeAperture()
	switch {
	case mouth > MouthOpen:
		return MoodExpressive
	case eye < eyeClosed:
		return MoodCalm
	default:
		return MoodNeutral
	}
}

// Coach returns a one-line tip for the on-screen coach.
func Coach(v energy.Vector, mood string, aligning, pinch bool) string {
	if pinch {
		return "Gyan Mudra detected. Deep Meditation Mode."
	}
	if aligning {
		return "Alignment Mode: All chakras are being gently balanced..."
	}

	weakest, strongest := v.ArgMin(), v.ArgMax()
	switch {
	case v.Get(weakest) < 0.3:
		return fmt.Sprintf("Tip: %s is low. Try its gesture to recharge. (%s)", weakest, mood)
	case v.AllAbove(0.7):
		return fmt.Sprintf("Beautiful! Your energy looks balanced. Stay with your breath. (%s)", mood)
	default:
		return fmt.Sprintf("Focus on breath. %s is strong, %s needs love. (%s)", strongest, weakest, mood)
	}
}
