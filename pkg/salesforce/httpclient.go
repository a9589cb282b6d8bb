package salesforce

import (
	"net"
	"net/http"
	"time"
)

// HTTPConfig tunes the HTTP client used for SOAP calls.
type HTTPConfig struct {
	// Total timeout for one call including reading the response body.
	// A context deadline can still override this.
	Timeout time.Duration

	DialTimeout     time.Duration
	KeepAlive       time.Duration
	TLSHandshake    time.Duration
	ResponseHeader  time.Duration
	IdleConnTimeout time.Duration
}

// DefaultHTTPConfig leaves room for large archive uploads.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:         5 * time.Minute,
		DialTimeout:     10 * time.Second,
		KeepAlive:       30 * time.Second,
		TLSHandshake:    10 * time.Second,
		ResponseHeader:  3 * time.Minute,
		IdleConnTimeout: 90 * time.Second,
	}
}

// NewHTTPClient builds an *http.Client from cfg.
func NewHTTPClient(cfg HTTPConfig) *http.Client {
	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: cfg.KeepAlive,
	}

	tr := &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,

		ForceAttemptHTTP2: true,
		MaxIdleConns:      4,
		IdleConnTimeout:   cfg.IdleConnTimeout,

		TLSHandshakeTimeout:   cfg.TLSHandshake,
		ResponseHeaderTimeout: cfg.ResponseHeader,
	}

	return &http.Client{
		Transport: tr,
		Timeout:   cfg.Timeout,
	}
}
