// Package source provides landmark frames to the engine: a mailbox fed by
// live producers, a JSON lines replay file and a websocket client.
package source

import (
	"sync"
	"time"

	"github.com/teslashibe/go-chakraflow/pkg/landmark"
)

// DefaultStaleAfter is how long a mailbox frame stays usable.
const DefaultStaleAfter = 500 * time.Millisecond

// Source hands the tick loop the most recent frame.
type Source interface {
	// Latest returns the freshest frame at now. ok is false when nothing
	// usable has arrived; the engine then ticks with empty input.
	Latest(now time.Time) (landmark.Frame, bool)
}

// Mailbox keeps only the newest frame. Producers Put, the tick loop reads
// Latest. Safe for concurrent use.
type Mailbox struct {
	staleAfter time.Duration

	mu       sync.Mutex
	frame    landmark.Frame
	received time.Time
	has      bool
	puts     uint64
	dropped  uint64
}

// NewMailbox creates a mailbox. staleAfter <= 0 uses DefaultStaleAfter.
func NewMailbox(staleAfter time.Duration) *Mailbox {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Mailbox{staleAfter: staleAfter}
}

// Put replaces the held frame. A frame older than the held one is dropped.
func (m *Mailbox) Put(f landmark.Frame, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.has && !f.Timestamp.IsZero() && f.Timestamp.Before(m.frame.Timestamp) {
		m.dropped++
		return
	}
	if f.Timestamp.IsZero() {
		f.Timestamp = now
	}
	m.frame = f
	m.received = now
	m.has = true
	m.puts++
}

// Latest returns the held frame if it arrived within the staleness window.
func (m *Mailbox) Latest(now time.Time) (landmark.Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.has || now.Sub(m.received) > m.staleAfter {
		return landmark.Frame{}, false
	}
	return m.frame, true
}

// Stats returns how many frames were accepted and dropped as out of order.
func (m *Mailbox) Stats() (puts, dropped uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts, m.dropped
}

var _ Source = (*Mailbox)(nil)
