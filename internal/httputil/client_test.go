// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ppubs-fetch/pkg/types"
)

func TestNewClientReplaysSessionCookie(t *testing.T) {
	var gotCookie string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/session":
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc123", Path: "/"})
		case "/search":
			if c, err := r.Cookie("JSESSIONID"); err == nil {
				gotCookie = c.Value
			}
		}
	}))
	defer ts.Close()

	client, err := NewClient(types.HTTPConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, client.Timeout)

	resp, err := client.Get(ts.URL + "/session")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.Get(ts.URL + "/search")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "abc123", gotCookie)
}

func TestNewClientJarsAreIsolated(t *testing.T) {
	a, err := NewClient(types.HTTPConfig{})
	require.NoError(t, err)
	b, err := NewClient(types.HTTPConfig{})
	require.NoError(t, err)
	assert.NotSame(t, a.Jar, b.Jar)
}

func TestSetBrowserHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	SetBrowserHeaders(req, types.HTTPConfig{UserAgent: "custom/1.0"})

	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "custom/1.0", req.Header.Get("User-Agent"))
	assert.Equal(t, DefaultOrigin, req.Header.Get("Origin"))
	assert.Equal(t, DefaultReferer, req.Header.Get("Referer"))
}

func TestSetAccessToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	SetAccessToken(req, types.Session{})
	_, present := req.Header[http.CanonicalHeaderKey(HeaderAccessToken)]
	assert.False(t, present, "header must be absent without a token")

	SetAccessToken(req, types.Session{AuthToken: "tok"})
	assert.Equal(t, "tok", req.Header.Get(HeaderAccessToken))
}
