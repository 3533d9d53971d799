// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire downloads patent PDFs one at a time, pacing requests so the
// remote service's rate limiting is never tripped. A failed document is
// recorded and the batch moves on; nothing is retried.
package acquire

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/ppubs-fetch/internal/httputil"
	"github.com/pdiddy/ppubs-fetch/internal/metrics"
	"github.com/pdiddy/ppubs-fetch/pkg/types"
)

// DefaultEndpoint is the PPUBS PDF download endpoint; the bare document id
// is appended as the last path segment.
const DefaultEndpoint = "https://image-ppubs.uspto.gov/dirsearch-public/print/downloadPdf"

// DefaultDelay is the pacing interval between consecutive downloads.
const DefaultDelay = 500 * time.Millisecond

// BatchResult summarizes the outcomes of a batch.
type BatchResult struct {
	Downloaded int
	Failed     int
	Outcomes   []types.DownloadOutcome
}

// Total returns the number of documents attempted.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Failed
}

// HasFailures reports whether any download failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Summarize counts outcomes.
func Summarize(outcomes []types.DownloadOutcome) BatchResult {
	r := BatchResult{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Succeeded {
			r.Downloaded++
		} else {
			r.Failed++
		}
	}
	return r
}

// CompletedStatus is the final status line of a batch that ran to the end.
func CompletedStatus(downloaded, total int) string {
	return fmt.Sprintf("Completed. Downloaded %d/%d files.", downloaded, total)
}

// CancelledStatus is the final status line of a batch stopped by its context.
func CancelledStatus(downloaded, total int) string {
	return fmt.Sprintf("Cancelled. Downloaded %d/%d files.", downloaded, total)
}

// Downloader fetches PDFs sequentially.
type Downloader struct {
	Client   *http.Client
	Endpoint string
	HTTP     types.HTTPConfig

	// Delay is the pacing interval. Zero means DefaultDelay; a negative
	// value disables pacing.
	Delay time.Duration

	// Sleeper performs the pacing wait. Defaults to a timer honoring ctx.
	Sleeper Sleeper

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// DownloadAll downloads docs into dir in input order, one at a time, and
// returns one outcome per attempted document. It reports per-item status and
// completed/total progress to n, and finishes with a summary status.
//
// A failure of one document never stops the batch. Cancelling ctx stops it
// between documents; documents not yet attempted get no outcome.
func (d *Downloader) DownloadAll(ctx context.Context, sess types.Session, docs []types.DocumentSummary, dir string, n types.Notifier) []types.DownloadOutcome {
	if n == nil {
		n = types.Discard
	}
	logger := d.logger()
	total := len(docs)
	outcomes := make([]types.DownloadOutcome, 0, total)
	succeeded := 0

	for i, doc := range docs {
		if i > 0 {
			if err := d.pace(ctx); err != nil {
				logger.Info("batch cancelled", "attempted", i, "total", total)
				n.Status(CancelledStatus(succeeded, total))
				return outcomes
			}
		}
		if ctx.Err() != nil {
			n.Status(CancelledStatus(succeeded, total))
			return outcomes
		}

		n.Status("Downloading: " + doc.DocumentID)

		start := time.Now()
		o := d.download(ctx, sess, doc.DocumentID, dir)
		d.Metrics.ObserveDownload(o, time.Since(start))

		if o.Succeeded {
			succeeded++
			logger.Debug("downloaded", "document", o.DocumentID, "bytes", o.Bytes, "path", o.Path)
		} else {
			logger.Warn("download failed", "document", o.DocumentID, "status", o.HTTPStatus, "error", o.Err)
		}
		outcomes = append(outcomes, o)
		n.Progress(float64(i+1) / float64(total))
	}

	if total == 0 {
		n.Progress(1)
	}
	n.Status(CompletedStatus(succeeded, total))
	return outcomes
}

// pace waits the pacing interval before the next request.
func (d *Downloader) pace(ctx context.Context) error {
	delay := d.Delay
	if delay == 0 {
		delay = DefaultDelay
	}
	if delay < 0 {
		return ctx.Err()
	}
	if err := d.sleeper().Sleep(ctx, delay); err != nil {
		return err
	}
	d.Metrics.ObservePacing(delay)
	return nil
}

// download attempts one document and describes the result.
func (d *Downloader) download(ctx context.Context, sess types.Session, id, dir string) types.DownloadOutcome {
	o := types.DownloadOutcome{DocumentID: id}

	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		o.Err = fmt.Sprintf("unsafe document id %q", id)
		return o
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		o.Err = fmt.Sprintf("creating directory %s: %v", dir, err)
		return o
	}

	dest := filepath.Join(dir, id+".pdf")
	status, n, err := d.downloadFile(ctx, sess, d.url(id), dest)
	o.HTTPStatus = status
	if err != nil {
		o.Err = err.Error()
		return o
	}
	o.Succeeded = true
	o.Path = dest
	o.Bytes = n
	return o
}

// downloadFile fetches rawURL to destPath through a temporary file in the
// same directory, renaming it over any existing file on success. It returns
// the response status (0 when no response arrived) and the bytes written.
func (d *Downloader) downloadFile(ctx context.Context, sess types.Session, rawURL, destPath string) (int, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("creating request: %w", err)
	}
	cfg := httputil.WithDefaults(d.HTTP)
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")
	req.Header.Set("Referer", cfg.Referer)
	httputil.SetAccessToken(req, sess)

	resp, err := d.client().Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("HTTP request: %w: %w", httputil.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return resp.StatusCode, 0, fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".download-*.tmp")
	if err != nil {
		return resp.StatusCode, 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	n, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return resp.StatusCode, 0, fmt.Errorf("writing download: %w: %w", httputil.ErrTransport, copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return resp.StatusCode, 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return resp.StatusCode, 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return resp.StatusCode, n, nil
}

func (d *Downloader) url(id string) string {
	base := d.Endpoint
	if base == "" {
		base = DefaultEndpoint
	}
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(id)
}

func (d *Downloader) client() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	return http.DefaultClient
}

func (d *Downloader) sleeper() Sleeper {
	if d.Sleeper != nil {
		return d.Sleeper
	}
	return TimerSleeper{}
}

func (d *Downloader) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
