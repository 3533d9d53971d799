// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search submits a query to the PPUBS search endpoint and turns
// whatever shape the answer takes into canonical document summaries.
package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pdiddy/ppubs-fetch/internal/httputil"
	"github.com/pdiddy/ppubs-fetch/internal/metrics"
	"github.com/pdiddy/ppubs-fetch/pkg/types"
)

// DefaultEndpoint is the PPUBS family search endpoint.
const DefaultEndpoint = "https://ppubs.uspto.gov/dirsearch-public/searches/searchWithBeFamily"

// maxResponseBytes bounds the search response read into memory.
const maxResponseBytes = 64 << 20

// SessionAcquirer performs the handshake that precedes a search.
type SessionAcquirer interface {
	Acquire(ctx context.Context) (types.Session, error)
}

// Client runs handshake, query submission, and parsing in sequence. It
// never retries; retry policy belongs to the caller.
type Client struct {
	HTTPClient *http.Client
	Sessions   SessionAcquirer
	Endpoint   string
	HTTP       types.HTTPConfig

	// PageSize is the number of records requested (default and max 500).
	PageSize int

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Result is the outcome of a successful search. The Session is returned so
// the download stage can reuse the same token.
type Result struct {
	Session   types.Session
	Documents []types.DocumentSummary
}

// Search performs one handshake and one search request for q. Any failure
// is a *SearchFailedError; an empty Documents slice is a valid answer.
func (c *Client) Search(ctx context.Context, q types.SearchQuery) (Result, error) {
	if strings.TrimSpace(q.RawText) == "" {
		return Result{}, ErrEmptyQuery
	}

	docs, sess, err := c.search(ctx, q)
	c.Metrics.ObserveSearch(len(docs), err)
	if err != nil {
		return Result{}, err
	}
	return Result{Session: sess, Documents: docs}, nil
}

func (c *Client) search(ctx context.Context, q types.SearchQuery) ([]types.DocumentSummary, types.Session, error) {
	logger := c.logger()

	sess, err := c.Sessions.Acquire(ctx)
	if err != nil {
		return nil, types.Session{}, &SearchFailedError{Err: fmt.Errorf("handshake: %w", err)}
	}

	body, err := buildSearchBody(q.RawText, sess.CaseID, c.PageSize)
	if err != nil {
		return nil, sess, &SearchFailedError{Err: fmt.Errorf("encoding search request: %w", err)}
	}
	logger.Debug("search request", "endpoint", c.endpoint(), "case_id", sess.CaseID, "payload", string(body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, sess, &SearchFailedError{Err: fmt.Errorf("creating request: %w", err)}
	}
	httputil.SetBrowserHeaders(req, c.HTTP)
	httputil.SetAccessToken(req, sess)

	resp, err := c.client().Do(req)
	if err != nil {
		return nil, sess, &SearchFailedError{Err: fmt.Errorf("search request: %w: %w", httputil.ErrTransport, err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, sess, &SearchFailedError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("reading search response: %w: %w", httputil.ErrTransport, err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, sess, &SearchFailedError{Status: resp.StatusCode, Body: truncateBody(raw)}
	}

	docs, stats := parse(raw)
	if stats.Container == "" {
		logger.Warn("search response carried no recognizable record list; treating as zero results",
			"status", resp.StatusCode, "body", truncateBody(raw))
	}
	logger.Debug("search response parsed",
		"status", resp.StatusCode,
		"container", stats.Container,
		"records", stats.Records,
		"documents", len(docs),
		"dropped", stats.Dropped,
		"duplicates", stats.Duplicates,
	)
	return docs, sess, nil
}

func (c *Client) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return DefaultEndpoint
}

func (c *Client) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
