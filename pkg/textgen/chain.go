package textgen

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultCooldown is how long a failed provider is skipped by a Chain.
const DefaultCooldown = 30 * time.Second

// Chain tries providers in order until one answers. A provider that fails is
// benched for a cooldown so a dead backend does not cost a full timeout on
// every call; when every provider is benched the chain tries them all again.
type Chain struct {
	providers []Provider
	logger    *slog.Logger
	cooldown  time.Duration
	now       func() time.Time

	mu      sync.Mutex
	benched []time.Time // per provider, zero when available
}

// NewChain creates a provider chain. At least one provider is required.
func NewChain(providers ...Provider) (*Chain, error) {
	if len(providers) == 0 {
		return nil, ErrProviderUnavailable
	}
	return &Chain{
		providers: providers,
		logger:    slog.Default().With("component", "textgen.chain"),
		cooldown:  DefaultCooldown,
		now:       time.Now,
		benched:   make([]time.Time, len(providers)),
	}, nil
}

// NewChainWithLogger creates a provider chain that logs to logger.
func NewChainWithLogger(logger *slog.Logger, providers ...Provider) (*Chain, error) {
	chain, err := NewChain(providers...)
	if err != nil {
		return nil, err
	}
	chain.logger = logger.With("component", "textgen.chain")
	return chain, nil
}

// SetCooldown changes how long a failed provider is skipped. Zero disables
// benching.
func (c *Chain) SetCooldown(d time.Duration) {
	c.mu.Lock()
	c.cooldown = d
	c.mu.Unlock()
}

// Name returns "chain".
func (c *Chain) Name() string {
	return "chain"
}

// order returns provider indexes to try: available ones first in chain
// order, then benched ones if nothing else is left.
func (c *Chain) order() []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var ready, waiting []int
	for i, until := range c.benched {
		if until.IsZero() || !now.Before(until) {
			ready = append(ready, i)
		} else {
			waiting = append(waiting, i)
		}
	}
	if len(ready) == 0 {
		return waiting
	}
	return ready
}

func (c *Chain) mark(i int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil || c.cooldown <= 0 {
		c.benched[i] = time.Time{}
		return
	}
	c.benched[i] = c.now().Add(c.cooldown * time.Duration(penalty(err)))
}

// Generate returns the first successful response.
func (c *Chain) Generate(ctx context.Context, req *Request) (*Response, error) {
	var errs []error
	for n, i := range c.order() {
		p := c.providers[i]
		resp, err := p.Generate(ctx, req)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.mark(i, err)
		if err == nil {
			if n > 0 {
				c.logger.Info("fallback provider answered", "provider", p.Name())
			}
			return resp, nil
		}
		errs = append(errs, err)
		c.logger.Warn("provider failed", "provider", p.Name(), "error", err)
	}
	return nil, &ChainError{Errors: errs}
}

// Health returns nil if at least one provider is healthy.
func (c *Chain) Health(ctx context.Context) error {
	var lastErr error
	for _, p := range c.providers {
		err := p.Health(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return WrapError("chain", lastErr)
}

// Close closes all providers and returns the last error.
func (c *Chain) Close() error {
	var lastErr error
	for _, p := range c.providers {
		if err := p.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Providers returns the providers in chain order.
func (c *Chain) Providers() []Provider {
	return c.providers
}

var _ Provider = (*Chain)(nil)
