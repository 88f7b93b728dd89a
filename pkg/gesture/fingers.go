// Package gesture classifies hand landmarks into finger states, named
// gestures (mudras) and energy regions.
//
// The thumb test compares raw pixel x positions of the thumb tip and IP
// joint, which assumes a horizontally mirrored (selfie) camera view. It is
// not rotation-invariant. Callers feeding un-mirrored input must set
// Config.Mirrored to false, which flips the comparison.
package gesture

import "github.com/teslashibe/go-chakraflow/pkg/landmark"

// FingerState records which fingers are extended.
type FingerState struct {
	Thumb  bool `json:"thumb"`
	Index  bool `json:"index"`
	Middle bool `json:"middle"`
	Ring   bool `json:"ring"`
	Pinky  bool `json:"pinky"`
}

// Map returns the state keyed by finger name.
func (f FingerState) Map() map[string]bool {
	return map[string]bool{
		"thumb":  f.Thumb,
		"index":  f.Index,
		"middle": f.Middle,
		"ring":   f.Ring,
		"pinky":  f.Pinky,
	}
}

// AllExtended reports an open hand.
func (f FingerState) AllExtended() bool {
	return f.Thumb && f.Index && f.Middle && f.Ring && f.Pinky
}

// NoneExtended reports a closed hand.
func (f FingerState) NoneExtended() bool {
	return !f.Thumb && !f.Index && !f.Middle && !f.Ring && !f.Pinky
}

// tip/joint pairs for the four fingers tested on the vertical axis
var verticalFingers = [4][2]int{
	{landmark.IndexTip, landmark.IndexPIP},
	{landmark.MiddleTip, landmark.MiddlePIP},
	{landmark.RingTip, landmark.RingPIP},
	{landmark.PinkyTip, landmark.PinkyPIP},
}

// Fingers derives the finger state of one hand. width and height scale the
// normalized points into pixel space.
func Fingers(hand *landmark.Hand, width, height int, mirrored bool) FingerState {
	tipX, _ := landmark.ToPixel(hand.At(landmark.ThumbTip), width, height)
	ipX, _ := landmark.ToPixel(hand.At(landmark.ThumbIP), width, height)

	var fs FingerState
	if mirrored {
		fs.Thumb = tipX > ipX
	} else {
		fs.Thumb = tipX < ipX
	}

	var ext [4]bool
	for i, pair := range verticalFingers {
		_, tipY := landmark.ToPixel(hand.At(pair[0]), width, height)
		_, pipY := landmark.ToPixel(hand.At(pair[1]), width, height)
		ext[i] = tipY < pipY // image y grows downward
	}
	fs.Index, fs.Middle, fs.Ring, fs.Pinky = ext[0], ext[1], ext[2], ext[3]
	return fs
}

// PinchDistance is the thumb-tip to index-tip distance normalized by hand size.
func PinchDistance(hand *landmark.Hand) float64 {
	return landmark.Distance(hand.At(landmark.ThumbTip), hand.At(landmark.IndexTip)) / hand.Scale()
}

// WristDistance is the normalized distance between two hands' wrists.
func WristDistance(a, b *landmark.Hand) float64 {
	return landmark.Distance(a.At(landmark.Wrist), b.At(landmark.Wrist))
}
