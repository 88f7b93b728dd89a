// Package httpc builds HTTP clients with bounded dial, TLS and request
// timeouts for the text-generation providers.
package httpc

import (
	"net"
	"net/http"
	"time"
)

const (
	connectTimeout = 5 * time.Second
	keepAlive      = 30 * time.Second
	idleTimeout    = 90 * time.Second
)

// NewClient returns a client whose whole request is bounded by timeout. Dial
// and TLS handshake get at most connectTimeout, and never more than timeout.
// A zero timeout leaves the request unbounded except for the dial.
func NewClient(timeout time.Duration) *http.Client {
	connect := connectTimeout
	if timeout > 0 {
		connect = min(connect, timeout)
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   connect,
				KeepAlive: keepAlive,
			}).DialContext,
			TLSHandshakeTimeout: connect,
			MaxIdleConns:        8,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     idleTimeout,
		},
	}
}
