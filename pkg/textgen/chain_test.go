package textgen

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestChainFallback(t *testing.T) {
	failing := WithError(errors.New("provider 1 failed"))
	working := NewStaticMock("From working provider")

	chain, err := NewChain(failing, working)
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}
	defer chain.Close()

	resp, err := chain.Generate(context.Background(), &Request{Prompt: "test"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Text != "From working provider" {
		t.Errorf("Text = %q", resp.Text)
	}
	if failing.Count() != 1 || working.Count() != 1 {
		t.Errorf("calls = %d/%d, want 1/1", failing.Count(), working.Count())
	}
}

func TestChainAllFail(t *testing.T) {
	chain, _ := NewChain(WithError(errors.New("provider 1 failed")), WithError(errors.New("provider 2 failed")))
	defer chain.Close()

	_, err := chain.Generate(context.Background(), &Request{Prompt: "test"})
	var chainErr *ChainError
	if !errors.As(err, &chainErr) {
		t.Fatalf("err = %T %v, want *ChainError", err, err)
	}
	if len(chainErr.Errors) != 2 {
		t.Errorf("got %d errors, want 2", len(chainErr.Errors))
	}
}

func TestChainStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	second := NewMock()
	chain, _ := NewChain(WithError(context.Canceled), second)
	if _, err := chain.Generate(ctx, &Request{Prompt: "x"}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if second.Count() != 0 {
		t.Error("second provider called after cancellation")
	}
}

func TestNewChainRequiresProvider(t *testing.T) {
	if _, err := NewChain(); !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("err = %v, want ErrProviderUnavailable", err)
	}
}

func TestChainBenchesFailedProvider(t *testing.T) {
	t0 := time.Date(2026, 4, 12, 6, 30, 0, 0, time.UTC)
	now := t0

	failing := WithError(errors.New("down"))
	working := NewStaticMock("ok")
	chain, _ := NewChain(failing, working)
	chain.now = func() time.Time { return now }

	steps := []struct {
		at          time.Duration
		wantFailing int
	}{
		{0, 1},
		{10 * time.Second, 1}, // benched
		{DefaultCooldown, 2},   // cooldown over, tried again
		{DefaultCooldown + time.Second, 2},
	}
	for _, st := range steps {
		now = t0.Add(st.at)
		if _, err := chain.Generate(context.Background(), &Request{Prompt: "x"}); err != nil {
			t.Fatalf("at %v: Generate() error = %v", st.at, err)
		}
		if failing.Count() != st.wantFailing {
			t.Errorf("at %v: failing calls = %d, want %d", st.at, failing.Count(), st.wantFailing)
		}
	}
	if working.Count() != len(steps) {
		t.Errorf("working calls = %d, want %d", working.Count(), len(steps))
	}
}

func TestChainRetriesWhenAllBenched(t *testing.T) {
	p := WithError(errors.New("down"))
	chain, _ := NewChain(p)
	for _i := 0; _i < 3; _i++ {
		chain.Generate(context.Background(), &Request{Prompt: "x"})
	}
	if p.Count() != 3 {
		t.Errorf("calls = %d, want 3", p.Count())
	}
}

func TestPenalty(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain", errors.New("x"), 1},
		{"unauthorized", WrapError("gemini", &APIError{StatusCode: 401}), 20},
		{"forbidden", &APIError{StatusCode: 403}, 20},
		{"rate limited", &APIError{StatusCode: 429}, 2},
		{"server", &APIError{StatusCode: 503}, 1},
	}
	for _, tt := range tests {
		if got := penalty(tt.err); got != tt.want {
			t.Errorf("%s: penalty = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestChainHealth(t *testing.T) {
	chain, _ := NewChain(WithError(errors.New("down")), NewMock())
	if err := chain.Health(context.Background()); err != nil {
		t.Errorf("Health() = %v, want nil", err)
	}

	dead, _ := NewChain(WithError(errors.New("down")))
	if err := dead.Health(context.Background()); err == nil {
		t.Error("Health() = nil for a dead chain")
	}
}
