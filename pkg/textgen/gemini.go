package textgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"

	"github.com/teslashibe/go-chakraflow/internal/httpc"
)

const (
	providerGemini = "gemini"

	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiScope   = "https://www.googleapis.com/auth/generative-language"
)

// Gemini implements Provider for Google's Gemini generateContent API.
// It authenticates with an API key when one is set, otherwise with an OAuth2
// token source (Application Default Credentials unless overridden).
type Gemini struct {
	apiKey string
	config *Config
	http   *http.Client
	logger *slog.Logger
}

// NewGemini creates a Gemini provider.
func NewGemini(opts ...Option) (*Gemini, error) {
	cfg := DefaultConfig()
	cfg.BaseURL = geminiBaseURL
	cfg.Model = "gemini-2.0-flash"
	cfg.Apply(opts...)

	hc := cfg.HTTPClient
	if hc == nil {
		hc = httpc.NewClient(cfg.Timeout)
	}

	if cfg.APIKey == "" {
		ts := cfg.TokenSource
		if ts == nil {
			ctx := context.WithValue(context.Background(), oauth2.HTTPClient, hc)
			adc, err := google.DefaultTokenSource(ctx, geminiScope)
			if err != nil {
				return nil, WrapError(providerGemini, errors.Join(ErrNoAPIKey, err))
			}
			ts = adc
		}
		hc = &http.Client{
			Timeout:   hc.Timeout,
			Transport: &oauth2.Transport{Source: ts, Base: hc.Transport},
		}
	}

	return &Gemini{
		apiKey: cfg.APIKey,
		config: cfg,
		http:   hc,
		logger: cfg.Logger.With("component", "textgen.gemini"),
	}, nil
}

// Name returns "gemini".
func (g *Gemini) Name() string {
	return providerGemini
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

// Generate calls generateContent with a single user turn.
func (g *Gemini) Generate(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	model, maxTokens, temp := g.config.params(req)

	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}},
	}
	body.GenerationConfig.Temperature = temp
	body.GenerationConfig.MaxOutputTokens = maxTokens
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimSuffix(g.config.BaseURL, "/"), model)
	if g.apiKey != "" {
		endpoint += "?key=" + url.QueryEscape(g.apiKey)
	}
	resp, err := send(ctx, g.http, g.config, providerGemini, endpoint, nil, body, checkGemini)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, WrapError(providerGemini, fmt.Errorf("decode response: %w", err))
	}
	if result.Error.Message != "" {
		return nil, &APIError{Provider: providerGemini, StatusCode: resp.StatusCode, Message: result.Error.Message}
	}
	if len(result.Candidates) == 0 {
		return nil, WrapError(providerGemini, ErrEmptyResponse)
	}

	var text strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return nil, WrapError(providerGemini, ErrEmptyResponse)
	}

	g.logger.Debug("generated", "model", model, "latency_ms", time.Since(start).Milliseconds())
	return &Response{
		Text:         out,
		FinishReason: result.Candidates[0].FinishReason,
		Model:        model,
		Usage: Usage{
			PromptTokens:     result.UsageMetadata.PromptTokenCount,
			CompletionTokens: result.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      result.UsageMetadata.TotalTokenCount,
		},
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

// Health checks API connectivity with a one-token request.
func (g *Gemini) Health(ctx context.Context) error {
	_, err := g.Generate(ctx, &Request{Prompt: "ping", MaxTokens: 1})
	return err
}

// Close releases resources.
func (g *Gemini) Close() error {
	g.http.CloseIdleConnections()
	return nil
}

// checkGemini converts a non-2xx reply into an APIError via googleapi's
// error body parsing.
func checkGemini(resp *http.Response) error {
	err := googleapi.CheckResponse(resp)
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return WrapError(providerGemini, fmt.Errorf("status %d", resp.StatusCode))
	}
	message := gerr.Message
	if message == "" {
		message = strings.TrimSpace(gerr.Body)
	}
	code := ""
	if len(gerr.Errors) > 0 {
		code = gerr.Errors[0].Reason
	}
	return &APIError{Provider: providerGemini, StatusCode: gerr.Code, Code: code, Message: message}
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

var _ Provider = (*Gemini)(nil)
