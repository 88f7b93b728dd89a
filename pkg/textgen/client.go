package textgen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/teslashibe/go-chakraflow/internal/httpc"
)

const providerClient = "openai"

// Client speaks the OpenAI chat completions API. Ollama, vLLM, Groq and
// other compatible servers work through WithBaseURL.
type Client struct {
	endpoint string
	header   http.Header
	config   *Config
	http     *http.Client
	logger   *slog.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// NewClient creates an OpenAI-compatible provider.
func NewClient(opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	hc := cfg.HTTPClient
	if hc == nil {
		hc = httpc.NewClient(cfg.Timeout)
	}
	header := http.Header{}
	if cfg.APIKey != "" {
		header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	return &Client{
		endpoint: strings.TrimSuffix(cfg.BaseURL, "/"),
		header:   header,
		config:   cfg,
		http:     hc,
		logger:   cfg.Logger.With("component", "textgen.client"),
	}, nil
}

func (c *Client) Name() string {
	return providerClient
}

// Generate sends one chat completion: an optional system message and the
// prompt as the user turn.
func (c *Client) Generate(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	model, maxTokens, temp := c.config.params(req)

	body := chatRequest{Model: model, MaxTokens: maxTokens, Temperature: temp}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.Prompt})

	resp, err := send(ctx, c.http, c.config, providerClient, c.endpoint+"/chat/completions", c.header, body, parseClientError)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, WrapError(providerClient, fmt.Errorf("decode response: %w", err))
	}
	if len(result.Choices) == 0 {
		return nil, WrapError(providerClient, ErrEmptyResponse)
	}
	choice := result.Choices[0]
	text := strings.TrimSpace(choice.Message.Content)
	if text == "" {
		return nil, WrapError(providerClient, ErrEmptyResponse)
	}

	c.logger.Debug("generated", "model", result.Model, "latency_ms", time.Since(start).Milliseconds())
	return &Response{
		Text:         text,
		FinishReason: choice.FinishReason,
		Model:        result.Model,
		Usage: Usage{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
		},
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

// Health lists models, which checks both reachability and the key.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/models", nil)
	if err != nil {
		return WrapError(providerClient, err)
	}
	req.Header = c.header.Clone()

	resp, err := c.http.Do(req)
	if err != nil {
		return WrapError(providerClient, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return parseClientError(resp)
	}
	return nil
}

func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// parseClientError reads an OpenAI-style {"error": {...}} body.
func parseClientError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var e struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	apiErr := &APIError{Provider: providerClient, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	if json.Unmarshal(body, &e) == nil && e.Error.Message != "" {
		apiErr.Message, apiErr.Code = e.Error.Message, e.Error.Code
	}
	return apiErr
}

var _ Provider = (*Client)(nil)
