// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"log/slog"
	"net/http"

	"github.com/pdiddy/ppubs-fetch/internal/acquire"
	"github.com/pdiddy/ppubs-fetch/internal/httputil"
	"github.com/pdiddy/ppubs-fetch/internal/metrics"
	"github.com/pdiddy/ppubs-fetch/internal/search"
	"github.com/pdiddy/ppubs-fetch/internal/session"
	"github.com/pdiddy/ppubs-fetch/pkg/types"
)

// ConfigStages returns a StageFactory wiring the session manager, search
// client and downloader from cfg. Each call builds a new HTTP client, so
// every run starts with an empty cookie jar.
func ConfigStages(cfg types.Config, m *metrics.Metrics) StageFactory {
	return func(logger *slog.Logger) (Stages, error) {
		client, err := httputil.NewClient(cfg.HTTP)
		if err != nil {
			return Stages{}, err
		}
		return Stages{
			Searcher:   NewSearchClient(client, cfg, logger, m),
			Downloader: NewDownloader(client, cfg, logger, m),
		}, nil
	}
}

// NewSessionManager builds a session manager from cfg.
func NewSessionManager(client *http.Client, cfg types.Config, logger *slog.Logger, m *metrics.Metrics) *session.Manager {
	return &session.Manager{
		Client:        client,
		Endpoint:      cfg.Endpoints.Session,
		HTTP:          cfg.HTTP,
		FallbackToken: cfg.Session.FallbackToken,
		DefaultCaseID: cfg.Session.DefaultCaseID,
		Logger:        logger,
		Metrics:       m,
	}
}

// NewSearchClient builds a search client, and its session manager, from cfg.
func NewSearchClient(client *http.Client, cfg types.Config, logger *slog.Logger, m *metrics.Metrics) *search.Client {
	return &search.Client{
		HTTPClient: client,
		Sessions:   NewSessionManager(client, cfg, logger, m),
		Endpoint:   cfg.Endpoints.Search,
		HTTP:       cfg.HTTP,
		PageSize:   cfg.Search.PageSize,
		Logger:     logger,
		Metrics:    m,
	}
}

// NewDownloader builds a batch downloader from cfg.
func NewDownloader(client *http.Client, cfg types.Config, logger *slog.Logger, m *metrics.Metrics) *acquire.Downloader {
	return &acquire.Downloader{
		Client:   client,
		Endpoint: cfg.Endpoints.Download,
		HTTP:     cfg.HTTP,
		Delay:    cfg.Download.Delay,
		Logger:   logger,
		Metrics:  m,
	}
}
