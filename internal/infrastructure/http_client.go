package infrastructure

import (
	"net"
	"net/http"
	"time"
)

const defaultHTTPClientTimeout = 30 * time.Second

// NewHTTPClient returns a client for outbound source requests. http.DefaultClient
// has no timeout, so every fetch goes through a client built here.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultHTTPClientTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	return &http.Client{Timeout: timeout, Transport: transport}
}
