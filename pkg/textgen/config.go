package textgen

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Config is shared by every provider. Request fields left at their zero
// value fall back to Model, MaxTokens and Temperature.
type Config struct {
	BaseURL string
	APIKey  string // optional for local servers and Gemini ADC

	Model       string
	MaxTokens   int
	Temperature float64

	// Timeout bounds each HTTP request. Narration callers also bound the
	// whole call with a context deadline.
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	HTTPClient  *http.Client       // overrides the client built from Timeout
	TokenSource oauth2.TokenSource // Gemini credentials when APIKey is empty

	Logger *slog.Logger
}

// Option configures a provider.
type Option func(*Config)

// WithBaseURL sets the API base URL, e.g. "http://localhost:11434/v1".
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

func WithModel(model string) Option {
	return func(c *Config) { c.Model = model }
}

func WithMaxTokens(n int) Option {
	return func(c *Config) { c.MaxTokens = n }
}

func WithTemperature(t float64) Option {
	return func(c *Config) { c.Temperature = t }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithRetry retries 429 and 5xx replies n times, waiting delay*attempt.
func WithRetry(n int, delay time.Duration) Option {
	return func(c *Config) {
		c.MaxRetries = n
		c.RetryDelay = delay
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Config) { c.HTTPClient = hc }
}

// WithTokenSource authorizes Gemini requests with ts instead of ADC.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Config) { c.TokenSource = ts }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// DefaultConfig targets OpenAI with a short reply budget sized for a few
// sentences of narration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "https://api.openai.com/v1",
		Model:       "gpt-4o-mini",
		MaxTokens:   256,
		Temperature: 0.7,
		Timeout:     8 * time.Second,
		RetryDelay:  100 * time.Millisecond,
		Logger:      slog.Default(),
	}
}

// Apply applies opts in order.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// params resolves the per-request model settings against the defaults.
func (c *Config) params(req *Request) (model string, maxTokens int, temp float64) {
	model, maxTokens, temp = req.Model, req.MaxTokens, req.Temperature
	if model == "" {
		model = c.Model
	}
	if maxTokens == 0 {
		maxTokens = c.MaxTokens
	}
	if temp == 0 {
		temp = c.Temperature
	}
	return model, maxTokens, temp
}
