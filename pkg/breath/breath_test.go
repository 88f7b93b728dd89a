package breath

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

const tick = 100 * time.Millisecond

func TestFirstTickOnlySeeds(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	now := time.Unix(0, 0)

	s := tr.Update(0.8, true, now)
	if s.Phase != 0 || s.Smoothed != 0 {
		t.Fatalf("first tick moved state: %+v", s)
	}
	if s.Factor != 1 {
		t.Errorf("Factor = %v, want 1", s.Factor)
	}
}

func TestConstantInputKeepsPhase(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	now := time.Unix(0, 0)
	for i := 0; i < 100; i++ {
		tr.Update(0.42, true, now.Add(time.Duration(i)*tick))
	}
	if tr.Phase() != 0 {
		t.Errorf("Phase = %v, want 0 for zero delta", tr.Phase())
	}
	if !tr.Stable() {
		t.Error("expected stable breathing for constant input")
	}
}

func TestPhaseStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tr := NewTracker(DefaultConfig())
	now := time.Unix(0, 0)

	for i := 0; i < 10000; i++ {
		y := rng.Float64()
		ok := rng.Intn(10) > 0
		s := tr.Update(y, ok, now.Add(time.Duration(i)*tick))
		if s.Phase < 0 || s.Phase >= 2*math.Pi {
			t.Fatalf("tick %d: phase %v out of [0, 2π)", i, s.Phase)
		}
		if s.Factor < 0.7-1e-9 || s.Factor > 1.3+1e-9 {
			t.Fatalf("tick %d: factor %v out of range", i, s.Factor)
		}
	}
}

func TestNegativeDeltaWrapsUp(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	now := time.Unix(0, 0)
	tr.Update(0.5, true, now)
	s := tr.Update(0.4, true, now.Add(tick))

	// smoothed = 0.1 * -0.1 = -0.01, step = -0.5 rad
	want := 2*math.Pi - 0.5
	if math.Abs(s.Phase-want) > 1e-9 {
		t.Errorf("Phase = %v, want %v", s.Phase, want)
	}
}

func TestFaceLossReseeds(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	now := time.Unix(0, 0)
	tr.Update(0.5, true, now)
	tr.Update(0.51, true, now.Add(tick))
	phase := tr.Phase()

	s := tr.Update(0, false, now.Add(2*tick))
	if s.Input != Neutral {
		t.Errorf("Input = %v, want neutral %v", s.Input, Neutral)
	}
	if s.Phase != phase {
		t.Error("face loss should not move the phase")
	}

	// a large jump after the gap must only seed
	s = tr.Update(0.9, true, now.Add(3*tick))
	if s.Phase != phase {
		t.Errorf("reseed tick moved phase from %v to %v", phase, s.Phase)
	}
}

func TestCyclesAndRate(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	now := time.Unix(0, 0)

	// a slow sinusoid, one breath every 4 seconds
	for i := 0; i <= 600; i++ {
		at := now.Add(time.Duration(i) * tick)
		y := 0.5 + 0.02*math.Sin(2*math.Pi*float64(i)/40)
		tr.Update(y, true, at)
	}
	if tr.Cycles() == 0 {
		t.Fatal("expected completed cycles")
	}
	end := now.Add(600 * tick)
	if r := tr.Rate(end); r <= 0 {
		t.Errorf("Rate = %v, want positive", r)
	}
	if s := tr.Smoothness(); s <= 0 || s > 1 {
		t.Errorf("Smoothness = %v, want (0, 1]", s)
	}
}

func TestRateNeedsWarmup(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	now := time.Unix(0, 0)
	tr.Update(0.5, true, now)
	if r := tr.Rate(now.Add(time.Second)); r != 0 {
		t.Errorf("Rate = %v during warmup, want 0", r)
	}
}
