// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session performs the PPUBS handshake that every search run must
// start with. The handshake yields an optional auth token (response header)
// and a case identifier (response body); both are tolerated missing, and
// only a transport failure is an error.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/ppubs-fetch/internal/httputil"
	"github.com/pdiddy/ppubs-fetch/internal/metrics"
	"github.com/pdiddy/ppubs-fetch/pkg/types"
)

// DefaultEndpoint is the PPUBS session endpoint.
const DefaultEndpoint = "https://ppubs.uspto.gov/dirsearch-public/users/me/session"

// DefaultCaseID is used when the handshake body carries no case identifier.
// The service accepts any case id the web app has used; this one is stable.
const DefaultCaseID = "202316993"

// maxBodyBytes bounds how much of the handshake body is read.
const maxBodyBytes = 1 << 20

// Manager performs handshakes.
type Manager struct {
	Client   *http.Client
	Endpoint string
	HTTP     types.HTTPConfig

	// FallbackToken is used when the handshake response carries no token.
	FallbackToken string

	// DefaultCaseID overrides the package DefaultCaseID when non-empty.
	DefaultCaseID string

	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// handshakeBody mirrors the part of the session response we read.
type handshakeBody struct {
	UserCase struct {
		CaseID json.RawMessage `json:"caseId"`
	} `json:"userCase"`
}

// Acquire sends one handshake request and returns the resulting Session.
func (m *Manager) Acquire(ctx context.Context) (types.Session, error) {
	logger := m.logger()

	endpoint := m.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader([]byte("{}")))
	if err != nil {
		return types.Session{}, fmt.Errorf("creating handshake request: %w", err)
	}
	httputil.SetBrowserHeaders(req, m.HTTP)

	resp, err := m.client().Do(req)
	if err != nil {
		return types.Session{}, fmt.Errorf("handshake request: %w: %w", httputil.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return types.Session{}, fmt.Errorf("reading handshake response: %w: %w", httputil.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("handshake returned non-success status, continuing with defaults", "status", resp.StatusCode)
	}

	s := types.Session{
		AuthToken:  strings.TrimSpace(resp.Header.Get(httputil.HeaderAccessToken)),
		CaseID:     extractCaseID(body),
		AcquiredAt: m.now(),
	}
	if s.AuthToken == "" && m.FallbackToken != "" {
		logger.Debug("handshake issued no token, using configured fallback")
		s.AuthToken = m.FallbackToken
	}
	if s.CaseID == "" {
		s.CaseID = m.defaultCaseID()
		logger.Debug("handshake body carried no case id, using default", "case_id", s.CaseID)
	}

	m.Metrics.ObserveHandshake(s)
	logger.Debug("handshake complete",
		"status", resp.StatusCode,
		"token", s.HasToken(),
		"case_id", s.CaseID,
	)
	return s, nil
}

// extractCaseID reads userCase.caseId from body. The id may be a JSON string
// or number; anything else yields "".
func extractCaseID(body []byte) string {
	var hb handshakeBody
	if err := json.Unmarshal(body, &hb); err != nil {
		return ""
	}
	raw := bytes.TrimSpace(hb.UserCase.CaseID)
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		return n.String()
	}
	return ""
}

func (m *Manager) client() *http.Client {
	if m.Client != nil {
		return m.Client
	}
	return http.DefaultClient
}

func (m *Manager) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Manager) defaultCaseID() string {
	if m.DefaultCaseID != "" {
		return m.DefaultCaseID
	}
	return DefaultCaseID
}
