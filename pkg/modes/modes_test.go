package modes

import (
	"testing"
	"time"
)

const tick = 100 * time.Millisecond

const (
	open   = 0.02
	closed = 0.005
)

func TestEyeWatchCountsRun(t *testing.T) {
	w := NewEyeWatch(0.012)
	start := time.Unix(0, 0)

	var st EyeState
	for i := 0; i < 50; i++ {
		st = w.Update(closed, true, start.Add(time.Duration(i)*tick))
	}
	if st.Frames != 50 || st.ClosedFor != 49*tick {
		t.Fatalf("got %+v, want 50 frames over 4.9s", st)
	}

	st = w.Update(open, true, start.Add(50*tick))
	if !st.Reopened || st.LastRun != 50*tick || st.Frames != 0 {
		t.Errorf("got %+v, want reopen after 5s", st)
	}
}

func TestEyeWatchFaceLossEndsRunSilently(t *testing.T) {
	w := NewEyeWatch(0.012)
	start := time.Unix(0, 0)
	for i := 0; i < 60; i++ {
		w.Update(closed, true, start.Add(time.Duration(i)*tick))
	}
	if st := w.Update(0, false, start.Add(60*tick)); st.Reopened || st.Frames != 0 {
		t.Errorf("face loss produced %+v", st)
	}
	if st := w.Update(open, true, start.Add(61*tick)); st.Reopened {
		t.Error("reopen after face loss should not be reported")
	}
}

func TestAlignmentActivatesOnce(t *testing.T) {
	w := NewEyeWatch(0.012)
	a := NewAlignment(DefaultAlignmentConfig())
	start := time.Unix(0, 0)

	starts := 0
	for i := 0; i < 20; i++ {
		now := start.Add(time.Duration(i) * tick)
		eyes := w.Update(closed, true, now)
		st := a.Update(eyes.Frames, now)
		if st.Started {
			starts++
			if eyes.Frames != 16 {
				t.Errorf("activated at frame %d, want 16", eyes.Frames)
			}
		}
	}
	if starts != 1 || !a.Active() || a.Count() != 1 {
		t.Errorf("starts=%d active=%v count=%d, want 1 true 1", starts, a.Active(), a.Count())
	}
}

func TestAlignmentProgressAndTimeout(t *testing.T) {
	a := NewAlignment(DefaultAlignmentConfig())
	start := time.Unix(0, 0)

	a.Update(16, start)
	prev := 0.0
	frames := 17
	var i int
	for i = 1; ; i++ {
		now := start.Add(time.Duration(i) * tick)
		st := a.Update(frames, now)
		frames++
		if st.Ended {
			if st.Progress != 0 {
				t.Errorf("Progress = %v on end, want 0", st.Progress)
			}
			break
		}
		if st.Progress < prev {
			t.Fatalf("progress fell from %v to %v", prev, st.Progress)
		}
		prev = st.Progress
		if i > 200 {
			t.Fatal("alignment never timed out")
		}
	}
	if got := time.Duration(i) * tick; got != 8*time.Second {
		t.Errorf("ended after %v, want 8s", got)
	}
	if prev < 0.78 || prev > 0.8+1e-9 {
		t.Errorf("final progress = %v, want ~0.79", prev)
	}
}

func TestAlignmentNeedsRearm(t *testing.T) {
	a := NewAlignment(DefaultAlignmentConfig())
	start := time.Unix(0, 0)

	frames := 16
	a.Update(frames, start)
	now := start
	for a.Active() {
		now = now.Add(tick)
		frames++
		a.Update(frames, now)
	}

	// eyes still closed: no reactivation
	for i := 0; i < 50; i++ {
		now = now.Add(tick)
		frames++
		if st := a.Update(frames, now); st.Started {
			t.Fatal("reactivated without the counter resetting")
		}
	}

	now = now.Add(tick)
	a.Update(0, now)
	for f := 1; f <= 16; f++ {
		now = now.Add(tick)
		a.Update(f, now)
	}
	if !a.Active() || a.Count() != 2 {
		t.Errorf("active=%v count=%d, want reactivation", a.Active(), a.Count())
	}
}

func TestAwakeningSequence(t *testing.T) {
	w := NewEyeWatch(0.012)
	aw := NewAwakening(DefaultAwakeningConfig())
	start := time.Unix(0, 0)

	now := start
	for i := 0; i < 50; i++ {
		now = start.Add(time.Duration(i) * tick)
		st := aw.Update(w.Update(closed, true, now), now)
		if st.Active {
			t.Fatal("awakening started while eyes closed")
		}
	}

	now = now.Add(tick)
	st := aw.Update(w.Update(open, true, now), now)
	if !st.Started || !st.Active || st.Step != 0 {
		t.Fatalf("got %+v, want start at step 0", st)
	}
	trigger := now

	lastStep := 0
	for i := 1; i <= 300; i++ {
		now = trigger.Add(time.Duration(i) * tick)
		st = aw.Update(w.Update(open, true, now), now)
		if !st.Active {
			t.Fatalf("ended early at %v", now.Sub(trigger))
		}
		if st.Step < lastStep {
			t.Fatalf("step went backwards at %v", now.Sub(trigger))
		}
		lastStep = st.Step
	}
	if st.Step != 6 {
		t.Errorf("Step = %d at 30s, want 6", st.Step)
	}

	now = now.Add(tick)
	st = aw.Update(w.Update(open, true, now), now)
	if st.Active || !st.Ended || aw.Step() != -1 {
		t.Errorf("got %+v, want ended past 30s", st)
	}
}

func TestAwakeningIgnoresShortClosure(t *testing.T) {
	w := NewEyeWatch(0.012)
	aw := NewAwakening(DefaultAwakeningConfig())
	start := time.Unix(0, 0)
	for i := 0; i < 40; i++ {
		now := start.Add(time.Duration(i) * tick)
		aw.Update(w.Update(closed, true, now), now)
	}
	now := start.Add(40 * tick)
	if st := aw.Update(w.Update(open, true, now), now); st.Active {
		t.Error("4s closure should not trigger, need more than 4s")
	}
}

func TestAwakeningRetriggerRestarts(t *testing.T) {
	aw := NewAwakening(DefaultAwakeningConfig())
	start := time.Unix(0, 0)
	aw.Update(EyeState{Visible: true, Reopened: true, LastRun: 5 * time.Second}, start)
	aw.Update(EyeState{Visible: true}, start.Add(10*time.Second))
	if aw.Step() != 2 {
		t.Fatalf("Step = %d, want 2", aw.Step())
	}

	st := aw.Update(EyeState{Visible: true, Reopened: true, LastRun: 6 * time.Second}, start.Add(11*time.Second))
	if !st.Started || st.Step != 0 || st.Count != 2 {
		t.Errorf("got %+v, want restart", st)
	}
}
