package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/teslashibe/go-chakraflow/pkg/landmark"
)

// ErrNoTimestamp is returned for a replay line without a timestamp.
var ErrNoTimestamp = errors.New("source: replay frame has no timestamp")

// maxLine bounds one JSON line; a full face mesh is about 40 KB.
const maxLine = 1 << 20

// Replay reads frames from a JSON lines stream, one landmark.Frame per line.
// Blank lines are skipped. Timestamps must be present and non-decreasing.
type Replay struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
	last    time.Time
}

// NewReplay reads frames from r.
func NewReplay(r io.Reader) *Replay {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	rp := &Replay{scanner: sc}
	if c, ok := r.(io.Closer); ok {
		rp.closer = c
	}
	return rp
}

// OpenReplay opens a JSON lines file.
func OpenReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	return NewReplay(f), nil
}

// Next returns the next frame, or io.EOF at the end of the stream.
func (r *Replay) Next() (landmark.Frame, error) {
	for r.scanner.Scan() {
		r.line++
		raw := r.scanner.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}

		var f landmark.Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			return landmark.Frame{}, fmt.Errorf("replay line %d: %w", r.line, err)
		}
		if f.Timestamp.IsZero() {
			return landmark.Frame{}, fmt.Errorf("replay line %d: %w", r.line, ErrNoTimestamp)
		}
		if f.Timestamp.Before(r.last) {
			return landmark.Frame{}, fmt.Errorf("replay line %d: timestamp goes backwards", r.line)
		}
		r.last = f.Timestamp
		return f, nil
	}
	if err := r.scanner.Err(); err != nil {
		return landmark.Frame{}, fmt.Errorf("replay line %d: %w", r.line+1, err)
	}
	return landmark.Frame{}, io.EOF
}

// Close closes the underlying file, if any.
func (r *Replay) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Recorder writes frames in the format Replay reads.
type Recorder struct {
	enc *json.Encoder
}

// NewRecorder writes JSON lines to w.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{enc: json.NewEncoder(w)}
}

// Write appends one frame.
func (r *Recorder) Write(f landmark.Frame) error {
	return r.enc.Encode(f)
}
