package httpc

import (
	"net/http"
	"testing"
	"time"
)

func TestNewClientTimeouts(t *testing.T) {
	tests := []struct {
		timeout     time.Duration
		wantConnect time.Duration
	}{
		{8 * time.Second, connectTimeout},
		{2 * time.Second, 2 * time.Second},
		{0, connectTimeout},
	}
	for _, tt := range tests {
		c := NewClient(tt.timeout)
		if c.Timeout != tt.timeout {
			t.Errorf("Timeout = %v, want %v", c.Timeout, tt.timeout)
		}
		tr := c.Transport.(*http.Transport)
		if tr.TLSHandshakeTimeout != tt.wantConnect {
			t.Errorf("timeout %v: TLS handshake = %v, want %v", tt.timeout, tr.TLSHandshakeTimeout, tt.wantConnect)
		}
	}
}
