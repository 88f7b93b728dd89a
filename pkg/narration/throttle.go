package narration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-chakraflow/pkg/chakra"
)

// Config holds the throttle timing.
type Config struct {
	Refresh    time.Duration `yaml:"refresh"`      // re-emit after this long on the same region
	MinCallGap time.Duration `yaml:"min_call_gap"` // spacing between collaborator calls
	Timeout    time.Duration `yaml:"timeout"`      // bound on one collaborator call
}

// DefaultConfig returns the tuned timing.
func DefaultConfig() Config {
	return Config{
		Refresh:    6 * time.Second,
		MinCallGap: 3 * time.Second,
		Timeout:    DefaultTimeout,
	}
}

// Throttle rate-limits narration. Observe never blocks: each emission shows
// the fallback immediately and, when a call slot is free, asks the
// collaborator in the background. A reply replaces the text only if no newer
// emission happened meanwhile.
type Throttle struct {
	cfg    Config
	collab Collaborator
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	current  Narration
	emitted  bool
	lastEmit time.Time
	lastCall time.Time
	inflight bool
}

// NewThrottle creates a throttle. collab may be nil to always use the
// fallback.
func NewThrottle(cfg Config, collab Collaborator, logger *slog.Logger) *Throttle {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Throttle{
		cfg:    cfg,
		collab: collab,
		logger: logger.With("component", "narration"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Observe feeds the dominant region for this tick. It returns the narration
// on display and whether a new emission happened.
func (t *Throttle) Observe(region chakra.Region, req Request, now time.Time) (Narration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.emitted && region == t.current.Region && now.Sub(t.lastEmit) <= t.cfg.Refresh {
		return t.current, false
	}

	req.Region = region
	req.Entry = chakra.Scripture(region)

	t.emitted = true
	t.lastEmit = now
	t.current = Narration{
		Text:   Fallback(req.Entry),
		Region: region,
		Source: SourceFallback,
		Seq:    t.current.Seq + 1,
	}

	if t.collab != nil && !t.inflight && (t.lastCall.IsZero() || now.Sub(t.lastCall) >= t.cfg.MinCallGap) {
		t.inflight = true
		t.lastCall = now
		t.wg.Add(1)
		go t.call(t.current.Seq, req)
	}
	return t.current, true
}

func (t *Throttle) call(seq uint64, req Request) {
	defer t.wg.Done()

	text, err := t.explain(req)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.inflight = false

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			t.logger.Warn("narration fallback", "region", req.Region.String(), "error", err)
		}
		return
	}
	if seq != t.current.Seq {
		t.logger.Debug("discarding stale narration", "seq", seq, "current", t.current.Seq)
		return
	}
	t.current.Text = text
	t.current.Source = SourceCollaborator
}

// explain bounds the collaborator with the configured timeout and converts
// panics into fallback errors. A collaborator that ignores its context is
// abandoned at the deadline.
func (t *Throttle) explain(req Request) (string, error) {
	ctx, cancel := context.WithTimeout(t.ctx, t.cfg.Timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: collaborator panic: %v", ErrUseFallback, r)}
			}
		}()
		s, err := t.collab.Explain(ctx, req)
		done <- result{s, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		if r.text == "" {
			return "", fmt.Errorf("%w: empty text", ErrUseFallback)
		}
		return r.text, nil
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrUseFallback, ctx.Err())
	}
}

// Current returns the narration on display.
func (t *Throttle) Current() Narration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Wait blocks until in-flight collaborator calls finish.
func (t *Throttle) Wait() {
	t.wg.Wait()
}

// Close cancels in-flight calls and waits for them.
func (t *Throttle) Close() {
	t.cancel()
	t.wg.Wait()
}
