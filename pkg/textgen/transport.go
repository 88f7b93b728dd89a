package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// retryable reports statuses worth another attempt.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// send posts payload as JSON to endpoint and returns a 2xx response whose body
// the caller closes. 429 and 5xx replies are retried up to cfg.MaxRetries
// times with a linear backoff. check turns a non-2xx reply into an error.
func send(ctx context.Context, hc *http.Client, cfg *Config, provider, endpoint string, header http.Header, payload any, check func(*http.Response) error) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(provider, fmt.Errorf("marshal payload: %w", err))
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			t := time.NewTimer(cfg.RetryDelay * time.Duration(attempt))
			select {
			case <-ctx.Done():
				t.Stop()
				return nil, WrapError(provider, ctx.Err())
			case <-t.C:
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, WrapError(provider, fmt.Errorf("create request: %w", err))
		}
		for k, v := range header {
			req.Header[k] = v
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := hc.Do(req)
		if err != nil {
			lastErr = WrapError(provider, err)
			if ctx.Err() != nil {
				return nil, lastErr
			}
			cfg.Logger.Warn("request failed", "provider", provider, "attempt", attempt+1, "error", err)
			continue
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		lastErr = check(resp)
		resp.Body.Close()
		if !retryable(resp.StatusCode) {
			return nil, lastErr
		}
		cfg.Logger.Warn("retryable status", "provider", provider, "attempt", attempt+1, "status", resp.StatusCode)
	}
	return nil, lastErr
}
