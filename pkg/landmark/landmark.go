// Package landmark defines the per-tick landmark input consumed by the engine.
//
// Landmarks are produced by an external estimator (MediaPipe Hands, Face Mesh
// and Pose) and arrive normalized to [0,1] in frame space. Any of the three
// sets may be missing on a given tick; absence is a normal state, not an error.
package landmark

import (
	"math"
	"time"
)

// Epsilon guards normalizing divisions against degenerate geometry.
const Epsilon = 1e-6

// Default frame size used when a producer does not report its dimensions.
const (
	DefaultWidth  = 1120
	DefaultHeight = 630
)

// Point is a normalized landmark position. Z is optional depth.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// Frame is one tick's worth of landmark estimates.
type Frame struct {
	Timestamp time.Time `json:"ts"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	Hands     []Hand    `json:"hands,omitempty"`
	Face      Face      `json:"face,omitempty"`
	Pose      Pose      `json:"pose,omitempty"`
}

// Size returns the frame dimensions, falling back to the defaults.
func (f *Frame) Size() (int, int) {
	w, h := f.Width, f.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// HasHands reports whether at least one hand was detected.
func (f *Frame) HasHands() bool {
	return f != nil && len(f.Hands) > 0
}

// HasFace reports whether a usable face mesh was detected.
func (f *Frame) HasFace() bool {
	return f != nil && f.Face.Valid()
}

// HasPose reports whether a usable body pose was detected.
func (f *Frame) HasPose() bool {
	return f != nil && f.Pose.Valid()
}

// Distance is the 2-D euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{
		X: (a.X + b.X) * 0.5,
		Y: (a.Y + b.Y) * 0.5,
		Z: (a.Z + b.Z) * 0.5,
	}
}

// ToPixel scales a normalized point into pixel space, truncating to whole
// pixels. Points inside the same pixel compare equal.
func ToPixel(p Point, width, height int) (int, int) {
	return int(p.X * float64(width)), int(p.Y * float64(height))
}
