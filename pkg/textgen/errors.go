package textgen

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoAPIKey is returned when no key or ambient credentials are available.
	ErrNoAPIKey = errors.New("textgen: API key required")

	// ErrProviderUnavailable is returned when no providers are available.
	ErrProviderUnavailable = errors.New("textgen: provider unavailable")

	// ErrEmptyResponse is returned when a provider replies without text.
	ErrEmptyResponse = errors.New("textgen: empty response")
)

// APIError is a non-2xx reply from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Code       string // provider error code or status, may be empty
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("textgen [%s]: %d %s: %s", e.Provider, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("textgen [%s]: %d: %s", e.Provider, e.StatusCode, e.Message)
}

// IsUnauthorized reports a rejected key or token.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsRetryable reports rate limiting or a server-side failure.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// penalty scales the chain cooldown for err. Bad credentials will not fix
// themselves within a session, rate limits usually clear within a minute.
func penalty(err error) int {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return 1
	}
	switch {
	case apiErr.IsUnauthorized():
		return 20
	case apiErr.StatusCode == http.StatusTooManyRequests:
		return 2
	}
	return 1
}

// ProviderError tags an error with the provider that produced it.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("textgen [%s]: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// WrapError tags err with provider. It returns nil for a nil err.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}

// ChainError holds the error of every provider a Chain tried.
type ChainError struct {
	Errors []error
}

func (e *ChainError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "textgen chain: no providers tried"
	case 1:
		return fmt.Sprintf("textgen chain: %v", e.Errors[0])
	}
	return fmt.Sprintf("textgen chain: %d providers failed, last: %v",
		len(e.Errors), e.Errors[len(e.Errors)-1])
}

func (e *ChainError) Unwrap() []error {
	return e.Errors
}
