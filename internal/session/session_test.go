// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ppubs-fetch/internal/httputil"
	"github.com/pdiddy/ppubs-fetch/internal/metrics"
)

func newHandshakeServer(t *testing.T, token string, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Origin"))
		assert.NotEmpty(t, r.Header.Get("Referer"))

		data, _ := io.ReadAll(r.Body)
		assert.True(t, json.Valid(data), "handshake body must be JSON, got %q", data)

		if token != "" {
			w.Header().Set("x-access-token", token)
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
}

func TestAcquire(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name       string
		token      string
		status     int
		body       string
		wantToken  string
		wantCaseID string
	}{
		{
			name:       "token and numeric case id",
			token:      "tok-123",
			status:     http.StatusOK,
			body:       `{"userCase":{"caseId":98765432}}`,
			wantToken:  "tok-123",
			wantCaseID: "98765432",
		},
		{
			name:       "string case id",
			token:      "tok-123",
			status:     http.StatusOK,
			body:       `{"userCase":{"caseId":"55501"}}`,
			wantToken:  "tok-123",
			wantCaseID: "55501",
		},
		{
			name:       "missing token tolerated",
			status:     http.StatusOK,
			body:       `{"userCase":{"caseId":42}}`,
			wantCaseID: "42",
		},
		{
			name:       "body without case id falls back to default",
			token:      "tok",
			status:     http.StatusOK,
			body:       `{"user":{"name":"anonymous"}}`,
			wantToken:  "tok",
			wantCaseID: DefaultCaseID,
		},
		{
			name:       "non-JSON body falls back to default",
			status:     http.StatusOK,
			body:       `<html>maintenance</html>`,
			wantCaseID: DefaultCaseID,
		},
		{
			name:       "non-success status is not an error",
			status:     http.StatusForbidden,
			body:       ``,
			wantCaseID: DefaultCaseID,
		},
		{
			name:       "null case id falls back to default",
			status:     http.StatusOK,
			body:       `{"userCase":{"caseId":null}}`,
			wantCaseID: DefaultCaseID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newHandshakeServer(t, tt.token, tt.status, tt.body)
			defer ts.Close()

			m := &Manager{
				Client:   ts.Client(),
				Endpoint: ts.URL,
				Now:      func() time.Time { return fixed },
			}
			s, err := m.Acquire(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, s.AuthToken)
			assert.Equal(t, tt.wantToken != "", s.HasToken())
			assert.Equal(t, tt.wantCaseID, s.CaseID)
			assert.Equal(t, fixed, s.AcquiredAt)
		})
	}
}

func TestAcquireFallbackToken(t *testing.T) {
	ts := newHandshakeServer(t, "", http.StatusOK, `{}`)
	defer ts.Close()

	m := &Manager{Client: ts.Client(), Endpoint: ts.URL, FallbackToken: "from-secrets"}
	s, err := m.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-secrets", s.AuthToken)

	// A token issued by the service wins over the fallback.
	ts2 := newHandshakeServer(t, "issued", http.StatusOK, `{}`)
	defer ts2.Close()
	m.Endpoint = ts2.URL
	m.Client = ts2.Client()
	s, err = m.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "issued", s.AuthToken)
}

func TestAcquireConfiguredDefaultCaseID(t *testing.T) {
	ts := newHandshakeServer(t, "", http.StatusOK, `{}`)
	defer ts.Close()

	m := &Manager{Client: ts.Client(), Endpoint: ts.URL, DefaultCaseID: "111"}
	s, err := m.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "111", s.CaseID)
}

func TestAcquireTransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close() // nothing listens any more

	m := &Manager{Client: &http.Client{Timeout: time.Second}, Endpoint: url}
	_, err := m.Acquire(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, httputil.ErrTransport)
}

func TestAcquireRecordsMetrics(t *testing.T) {
	ts := newHandshakeServer(t, "tok", http.StatusOK, `{}`)
	defer ts.Close()

	met := metrics.New()
	m := &Manager{Client: ts.Client(), Endpoint: ts.URL, Metrics: met}
	_, err := m.Acquire(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(met.Handshakes.WithLabelValues("present")))
	assert.Equal(t, 0.0, testutil.ToFloat64(met.Handshakes.WithLabelValues("absent")))
}
