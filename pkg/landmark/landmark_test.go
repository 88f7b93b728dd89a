package landmark

import (
	"math"
	"testing"
)

func TestFrameSizeDefaults(t *testing.T) {
	f := &Frame{}
	w, h := f.Size()
	if w != DefaultWidth || h != DefaultHeight {
		t.Errorf("Expected default size %dx%d, got %dx%d", DefaultWidth, DefaultHeight, w, h)
	}

	f = &Frame{Width: 640, Height: 480}
	w, h = f.Size()
	if w != 640 || h != 480 {
		t.Errorf("Expected 640x480, got %dx%d", w, h)
	}
}

func TestFacePresence(t *testing.T) {
	var f Face
	if f.Valid() {
		t.Error("nil face should be invalid")
	}
	if _, ok := f.EyeAperture(); ok {
		t.Error("EyeAperture should report missing face")
	}

	f = make(Face, 10)
	if f.Valid() {
		t.Error("short face mesh should be invalid")
	}

	f = make(Face, 468)
	f[LeftEyeTop] = Point{X: 0.5, Y: 0.40}
	f[LeftEyeBottom] = Point{X: 0.5, Y: 0.43}
	aperture, ok := f.EyeAperture()
	if !ok {
		t.Fatal("expected eye aperture")
	}
	if math.Abs(aperture-0.03) > 1e-9 {
		t.Errorf("Expected aperture 0.03, got %v", aperture)
	}
}

func TestPosePresence(t *testing.T) {
	if (Pose{}).Valid() {
		t.Error("empty pose should be invalid")
	}
	p := make(Pose, 33)
	if !p.Valid() {
		t.Error("33-point pose should be valid")
	}
	if _, _, ok := p.Hips(); !ok {
		t.Error("expected hips")
	}
}

func TestHandScaleNeverZero(t *testing.T) {
	var h Hand
	if h.Scale() <= 0 {
		t.Errorf("degenerate hand scale must stay positive, got %v", h.Scale())
	}
}

func TestMidpoint(t *testing.T) {
	m := Midpoint(Point{X: 0, Y: 0}, Point{X: 1, Y: 0.5})
	if m.X != 0.5 || m.Y != 0.25 {
		t.Errorf("unexpected midpoint %+v", m)
	}
}
