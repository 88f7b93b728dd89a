// Package textgen provides short-form text generation behind a single
// Provider interface.
//
// Two HTTP providers ship with the package: Gemini (generateContent REST)
// and Client, which speaks the OpenAI-compatible chat completions API used by
// OpenAI, Ollama, vLLM and others. Chain tries providers in order.
//
// Example usage:
//
//	g, _ := textgen.NewGemini(
//	    textgen.WithAPIKey(os.Getenv("GEMINI_API_KEY")),
//	    textgen.WithTimeout(8*time.Second),
//	)
//	defer g.Close()
//
//	resp, _ := g.Generate(ctx, &textgen.Request{
//	    Prompt: "Explain the heart region in two sentences.",
//	})
package textgen

import "context"

// Provider generates text from a prompt.
type Provider interface {
	// Generate returns a completion for the request.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// Name identifies the provider in logs and errors.
	Name() string

	// Health checks connectivity and credentials.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// Request is a single-turn generation request.
type Request struct {
	// System is an optional instruction preamble.
	System string

	// Prompt is the user text.
	Prompt string

	// Model overrides the default model.
	Model string

	// MaxTokens limits the response length.
	MaxTokens int

	// Temperature controls randomness (0.0-2.0).
	Temperature float64
}

// Response is a completed generation.
type Response struct {
	// Text is the generated content.
	Text string

	// FinishReason indicates why generation stopped.
	FinishReason string

	// Model used for generation.
	Model string

	// Usage tracks token consumption.
	Usage Usage

	// LatencyMs is the response time in milliseconds.
	LatencyMs int64
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
