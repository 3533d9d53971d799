// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages: the client
// every run talks through, the browser-like header set the remote service
// expects, and caller-side retry for rate-limited calls.
package httputil

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"golang.org/x/net/publicsuffix"

	"github.com/pdiddy/ppubs-fetch/pkg/types"
)

// Default header values. The service only answers requests that look like
// they came from its own web app.
const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultOrigin    = "https://ppubs.uspto.gov"
	DefaultReferer   = "https://ppubs.uspto.gov/pubwebapp/"
)

// ErrTransport marks failures below the HTTP layer: connection errors,
// timeouts, and malformed responses. It is always surfaced, never retried.
var ErrTransport = errors.New("transport error")

// HeaderAccessToken carries the session auth token.
const HeaderAccessToken = "x-access-token"

// NewClient returns an HTTP client with a fresh cookie jar, so the
// JSESSIONID cookie set by the handshake is replayed on later requests of the
// same run and never leaks into another run. Redirects are followed.
func NewClient(cfg types.HTTPConfig) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	return &http.Client{
		Jar:     jar,
		Timeout: cfg.Timeout,
	}, nil
}

// WithDefaults fills empty header settings of cfg with the defaults.
func WithDefaults(cfg types.HTTPConfig) types.HTTPConfig {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Origin == "" {
		cfg.Origin = DefaultOrigin
	}
	if cfg.Referer == "" {
		cfg.Referer = DefaultReferer
	}
	return cfg
}

// SetBrowserHeaders applies the JSON request header set used by the
// handshake and search calls.
func SetBrowserHeaders(req *http.Request, cfg types.HTTPConfig) {
	cfg = WithDefaults(cfg)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Origin", cfg.Origin)
	req.Header.Set("Referer", cfg.Referer)
}

// SetAccessToken attaches the session token when the session has one. A
// session without a token leaves the header absent rather than empty.
func SetAccessToken(req *http.Request, s types.Session) {
	if s.HasToken() {
		req.Header.Set(HeaderAccessToken, s.AuthToken)
	}
}
