package textgen

import (
	"context"
	"sync"
	"time"
)

// Mock is a scriptable Provider for tests. A nil GenerateFunc fails every
// call with ErrProviderUnavailable.
type Mock struct {
	GenerateFunc func(ctx context.Context, req *Request) (*Response, error)
	HealthFunc   func(ctx context.Context) error

	mu       sync.Mutex
	requests []*Request
	closed   bool
}

// NewMock returns a mock that answers every prompt with "Mock response".
func NewMock() *Mock {
	return NewStaticMock("Mock response")
}

// NewStaticMock returns a mock that always replies with text.
func NewStaticMock(text string) *Mock {
	return &Mock{
		GenerateFunc: func(ctx context.Context, req *Request) (*Response, error) {
			return &Response{Text: text, FinishReason: "stop", Model: "mock"}, nil
		},
	}
}

// NewSlowMock replies with text after delay, or fails with the context
// error if ctx ends first.
func NewSlowMock(delay time.Duration, text string) *Mock {
	return &Mock{
		GenerateFunc: func(ctx context.Context, req *Request) (*Response, error) {
			t := time.NewTimer(delay)
			defer t.Stop()
			select {
			case <-t.C:
				return &Response{Text: text, FinishReason: "stop", Model: "mock"}, nil
			case <-ctx.Done():
				return nil, WrapError("mock", ctx.Err())
			}
		},
	}
}

// WithError returns a mock whose Generate and Health always fail with err.
func WithError(err error) *Mock {
	return &Mock{
		GenerateFunc: func(ctx context.Context, req *Request) (*Response, error) {
			return nil, err
		},
		HealthFunc: func(ctx context.Context) error {
			return err
		},
	}
}

func (m *Mock) Name() string {
	return "mock"
}

func (m *Mock) Generate(ctx context.Context, req *Request) (*Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateFunc == nil {
		return nil, WrapError("mock", ErrProviderUnavailable)
	}
	return m.GenerateFunc(ctx, req)
}

func (m *Mock) Health(ctx context.Context) error {
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx)
	}
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Requests returns a copy of every request passed to Generate.
func (m *Mock) Requests() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Count returns the number of Generate calls.
func (m *Mock) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ Provider = (*Mock)(nil)
