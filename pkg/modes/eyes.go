// Package modes holds the eye-closure watcher and the two timed modes it
// drives: alignment and the awakening sequence.
package modes

import "time"

// EyeState is the watcher output for one tick.
type EyeState struct {
	Visible bool `json:"visible"`
	Closed  bool `json:"closed"`

	// Frames counts consecutive closed ticks. It resets to zero on the
	// first open tick.
	Frames int `json:"frames"`

	// ClosedFor is the length of the current closed run.
	ClosedFor time.Duration `json:"closed_for"`

	// Reopened is set on the tick the eyes open after a closed run, with
	// LastRun holding that run's length.
	Reopened bool          `json:"reopened"`
	LastRun  time.Duration `json:"last_run"`
}

// EyeWatch tracks closed-eye runs against a single aperture threshold.
type EyeWatch struct {
	threshold float64
	frames    int
	since     time.Time
}

// NewEyeWatch creates a watcher. Apertures below threshold count as closed.
func NewEyeWatch(threshold float64) *EyeWatch {
	return &EyeWatch{threshold: threshold}
}

// Update feeds this tick's eyelid aperture. ok is false when no face is
// visible; the eyes then count as open but the run ends without a reopen.
func (w *EyeWatch) Update(aperture float64, ok bool, now time.Time) EyeState {
	if !ok {
		w.frames = 0
		w.since = time.Time{}
		return EyeState{}
	}

	if aperture < w.threshold {
		if w.frames == 0 {
			w.since = now
		}
		w.frames++
		return EyeState{
			Visible:   true,
			Closed:    true,
			Frames:    w.frames,
			ClosedFor: now.Sub(w.since),
		}
	}

	st := EyeState{Visible: true}
	if w.frames > 0 {
		st.Reopened = true
		st.LastRun = now.Sub(w.since)
	}
	w.frames = 0
	w.since = time.Time{}
	return st
}
