// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics counts handshakes, searches, downloads, and pipeline runs
// in a private Prometheus registry. A CLI run is short-lived, so instead of
// serving /metrics the registry is written once in the text exposition
// format for a node_exporter textfile collector.
//
// All methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/ppubs-fetch/pkg/types"
)

const namespace = "ppubs_fetch"

// Result label values.
const (
	resultOK     = "ok"
	resultFailed = "failed"
)

// Metrics holds the collectors for one process.
type Metrics struct {
	Registry *prometheus.Registry

	Handshakes       *prometheus.CounterVec
	Searches         *prometheus.CounterVec
	DocumentsFound   prometheus.Counter
	Downloads        *prometheus.CounterVec
	DownloadBytes    prometheus.Counter
	DownloadDuration prometheus.Histogram
	PacingWait       prometheus.Counter
	Runs             *prometheus.CounterVec
}

// New registers the collectors in a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Handshakes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handshakes_total",
			Help:      "Session handshakes by whether an auth token was issued.",
		}, []string{"token"}),
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Search requests by result.",
		}, []string{"result"}),
		DocumentsFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_found_total",
			Help:      "Documents with a resolvable identifier returned by searches.",
		}),
		Downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "PDF download attempts by result.",
		}, []string{"result"}),
		DownloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "download_bytes_total",
			Help:      "Bytes written to PDF files.",
		}),
		DownloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "download_duration_seconds",
			Help:      "Duration of individual PDF download attempts.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		PacingWait: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pacing_wait_seconds_total",
			Help:      "Time spent in the pacing delay between downloads.",
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by terminal state.",
		}, []string{"state"}),
	}
	m.Registry.MustRegister(
		m.Handshakes,
		m.Searches,
		m.DocumentsFound,
		m.Downloads,
		m.DownloadBytes,
		m.DownloadDuration,
		m.PacingWait,
		m.Runs,
	)
	return m
}

// ObserveHandshake counts one completed handshake.
func (m *Metrics) ObserveHandshake(s types.Session) {
	if m == nil {
		return
	}
	label := "absent"
	if s.HasToken() {
		label = "present"
	}
	m.Handshakes.WithLabelValues(label).Inc()
}

// ObserveSearch counts one search and the documents it yielded.
func (m *Metrics) ObserveSearch(found int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Searches.WithLabelValues(resultFailed).Inc()
		return
	}
	m.Searches.WithLabelValues(resultOK).Inc()
	m.DocumentsFound.Add(float64(found))
}

// ObserveDownload counts one download attempt.
func (m *Metrics) ObserveDownload(o types.DownloadOutcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.DownloadDuration.Observe(elapsed.Seconds())
	if !o.Succeeded {
		m.Downloads.WithLabelValues(resultFailed).Inc()
		return
	}
	m.Downloads.WithLabelValues(resultOK).Inc()
	m.DownloadBytes.Add(float64(o.Bytes))
}

// ObservePacing adds one pacing delay.
func (m *Metrics) ObservePacing(d time.Duration) {
	if m == nil {
		return
	}
	m.PacingWait.Add(d.Seconds())
}

// ObserveRun counts a run reaching a terminal state.
func (m *Metrics) ObserveRun(state string) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(state).Inc()
}

// WriteTextfile writes the registry to path in the Prometheus text format.
// The file is written to a temporary name and renamed into place.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
