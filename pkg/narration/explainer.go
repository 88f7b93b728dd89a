package narration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/teslashibe/go-chakraflow/pkg/textgen"
)

// DefaultTimeout bounds one collaborator call.
const DefaultTimeout = 8 * time.Second

const tracerName = "github.com/teslashibe/go-chakraflow/pkg/narration"

// Explainer is the Collaborator backed by a textgen.Provider.
type Explainer struct {
	provider textgen.Provider
	timeout  time.Duration
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewExplainer wraps a provider. A nil provider always falls back.
func NewExplainer(p textgen.Provider, timeout time.Duration, logger *slog.Logger) *Explainer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Explainer{
		provider: p,
		timeout:  timeout,
		tracer:   otel.Tracer(tracerName),
		logger:   logger.With("component", "narration.explainer"),
	}
}

// Explain asks the provider for a short explanation. Every failure,
// including a panic in the provider, comes back wrapping ErrUseFallback.
func (e *Explainer) Explain(ctx context.Context, req Request) (text string, err error) {
	ctx, span := e.tracer.Start(ctx, "narration.Explain", trace.WithAttributes(
		attribute.String("chakra.region", req.Region.String()),
		attribute.String("chakra.entry", req.Entry.ID),
	))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: provider panic: %v", ErrUseFallback, r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "fallback")
		}
	}()

	if e.provider == nil {
		return "", fmt.Errorf("%w: no provider", ErrUseFallback)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resp, err := e.provider.Generate(ctx, &textgen.Request{
		System: SystemPrompt,
		Prompt: BuildPrompt(req),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUseFallback, err)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return "", fmt.Errorf("%w: %w", ErrUseFallback, textgen.ErrEmptyResponse)
	}

	span.SetAttributes(attribute.String("textgen.provider", e.provider.Name()))
	e.logger.Debug("explanation ready",
		"region", req.Region.String(),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return strings.TrimSpace(resp.Text), nil
}

// Verify Explainer implements Collaborator at compile time.
var _ Collaborator = (*Explainer)(nil)
