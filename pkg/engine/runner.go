package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/teslashibe/go-chakraflow/pkg/landmark"
	"github.com/teslashibe/go-chakraflow/pkg/landmark/source"
)

// Sink receives every snapshot. Publish is called on the tick goroutine and
// must not block.
type Sink interface {
	Publish(Snapshot)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Snapshot)

// Publish calls f.
func (f SinkFunc) Publish(s Snapshot) {
	f(s)
}

// Sinks fans a snapshot out to several sinks in order.
type Sinks []Sink

// Publish forwards to every sink.
func (ss Sinks) Publish(s Snapshot) {
	for _, sink := range ss {
		sink.Publish(s)
	}
}

// Runner drives a session from a live source at the configured tick rate.
type Runner struct {
	engine  *Engine
	session *Session
	source  source.Source
	sink    Sink
	logger  *slog.Logger
}

// NewRunner creates a runner. sink may be nil.
func NewRunner(e *Engine, s *Session, src source.Source, sink Sink) *Runner {
	if sink == nil {
		sink = SinkFunc(func(Snapshot) {})
	}
	return &Runner{
		engine:  e,
		session: s,
		source:  src,
		sink:    sink,
		logger:  e.logger.With("session", s.id),
	}
}

// Run ticks until ctx is done. A missing or stale frame ticks with empty
// input.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.engine.cfg.TickRate)
	defer ticker.Stop()

	r.logger.Info("tick loop started", "rate", r.engine.cfg.TickRate)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("tick loop stopped", "ticks", r.session.Ticks())
			return ctx.Err()
		case now := <-ticker.C:
			r.Step(now)
		}
	}
}

// Step runs a single tick at now.
func (r *Runner) Step(now time.Time) Snapshot {
	frame, ok := r.source.Latest(now)
	if !ok {
		frame = landmark.Frame{}
	}
	snap := r.engine.Tick(r.session, frame, now)
	r.sink.Publish(snap)
	return snap
}

// FrameReader yields recorded frames, io.EOF at the end.
type FrameReader interface {
	Next() (landmark.Frame, error)
}

// Replay drives a session from recorded frames, using each frame's timestamp
// as the tick time. It returns the time of the last tick.
func Replay(ctx context.Context, e *Engine, s *Session, frames FrameReader, sink Sink) (time.Time, error) {
	if sink == nil {
		sink = SinkFunc(func(Snapshot) {})
	}
	last := s.start
	for {
		if err := ctx.Err(); err != nil {
			return last, err
		}
		f, err := frames.Next()
		if errors.Is(err, io.EOF) {
			return last, nil
		}
		if err != nil {
			return last, fmt.Errorf("replay: %w", err)
		}
		last = f.Timestamp
		sink.Publish(e.Tick(s, f, f.Timestamp))
	}
}
