// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one search-and-download job in the background. A
// run validates the destination, searches, and hands the results to the
// batch downloader, reporting progress and status to a types.Notifier the
// whole way. Exactly one run may be active per Pipeline.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/ppubs-fetch/internal/httputil"
	"github.com/pdiddy/ppubs-fetch/internal/metrics"
	"github.com/pdiddy/ppubs-fetch/internal/search"
	"github.com/pdiddy/ppubs-fetch/pkg/types"
)

var (
	// ErrNoDestination is returned by Execute when no output directory is set.
	ErrNoDestination = errors.New("no output directory")

	// ErrRunInProgress is returned by Execute while another run is active.
	ErrRunInProgress = errors.New("a run is already in progress")
)

// Status lines emitted by a run.
const (
	StatusNoDestination = "Please select an output directory first."
	StatusSearching     = "Searching..."
	StatusCancelled     = "Cancelled."
)

// FoundStatus announces the download phase.
func FoundStatus(n int) string {
	return fmt.Sprintf("Found %d patents. Starting download...", n)
}

// ErrorStatus reports a run that failed before downloading.
func ErrorStatus(err error) string {
	return "Error: " + err.Error()
}

// Searcher runs the handshake and search for one query.
type Searcher interface {
	Search(ctx context.Context, q types.SearchQuery) (search.Result, error)
}

// Downloader fetches a batch of documents with the session from the search.
type Downloader interface {
	DownloadAll(ctx context.Context, sess types.Session, docs []types.DocumentSummary, dir string, n types.Notifier) []types.DownloadOutcome
}

// Stages are the collaborators of one run.
type Stages struct {
	Searcher   Searcher
	Downloader Downloader
}

// StageFactory builds the stages for a new run. It is called once per
// Execute so that no HTTP state is shared between runs.
type StageFactory func(logger *slog.Logger) (Stages, error)

// Pipeline executes runs. Create one with New.
type Pipeline struct {
	newStages StageFactory

	// Retries is the number of caller-side retries of a rate-limited
	// search. Zero or negative means the search is attempted once.
	Retries int

	Logger  *slog.Logger
	Metrics *metrics.Metrics

	once sync.Once
	sem  *semaphore.Weighted
}

// New returns a Pipeline that builds its stages with f.
func New(f StageFactory) *Pipeline {
	return &Pipeline{newStages: f}
}

// Execute starts a run for queryText that writes into dir and returns
// without waiting for it. Progress and status arrive on n from the run's
// goroutine. Cancelling ctx stops the run at the next request boundary.
//
// An empty dir fails fast with ErrNoDestination after reporting
// StatusNoDestination to n. A call while another run is active returns
// ErrRunInProgress and reports nothing.
func (p *Pipeline) Execute(ctx context.Context, queryText, dir string, n types.Notifier) (*Run, error) {
	if n == nil {
		n = types.Discard
	}
	if strings.TrimSpace(dir) == "" {
		n.Status(StatusNoDestination)
		return nil, ErrNoDestination
	}

	guard := p.guard()
	if !guard.TryAcquire(1) {
		return nil, ErrRunInProgress
	}

	run := newRun(uuid.NewString(), types.SearchQuery{RawText: queryText}, dir, n)
	logger := p.logger().With("run_id", run.ID)

	stages, err := p.newStages(logger)
	if err != nil {
		guard.Release(1)
		return nil, fmt.Errorf("building pipeline stages: %w", err)
	}

	go func() {
		defer close(run.done)
		defer guard.Release(1)
		p.run(ctx, run, stages, logger)
	}()
	return run, nil
}

func (p *Pipeline) run(ctx context.Context, run *Run, stages Stages, logger *slog.Logger) {
	logger.Info("run started", "query", run.Query.RawText, "dir", run.Dir)

	run.setState(StateSearching)
	run.Progress(types.ProgressIndeterminate)
	run.Status(StatusSearching)

	res, err := SearchWithRetry(ctx, stages.Searcher, run.Query, p.Retries, logger)
	if err != nil {
		run.Progress(0)
		if ctx.Err() != nil {
			logger.Info("run cancelled during search", "error", err)
			run.Status(StatusCancelled)
			p.finish(run, StateCancelled, ctx.Err(), logger)
			return
		}
		logger.Error("search failed", "error", err)
		run.Status(ErrorStatus(err))
		p.finish(run, StateFailed, err, logger)
		return
	}

	run.setSearchResult(res)
	run.setState(StateDownloading)
	run.Progress(0)
	run.Status(FoundStatus(len(res.Documents)))

	outcomes := stages.Downloader.DownloadAll(ctx, res.Session, res.Documents, run.Dir, run)
	run.setOutcomes(outcomes)

	if ctx.Err() != nil {
		p.finish(run, StateCancelled, ctx.Err(), logger)
		return
	}
	p.finish(run, StateCompleted, nil, logger)
}

// SearchWithRetry runs one search, retrying while it is rate limited when
// retries > 0.
func SearchWithRetry(ctx context.Context, s Searcher, q types.SearchQuery, retries int, logger *slog.Logger) (search.Result, error) {
	var res search.Result
	attempt := func(ctx context.Context) error {
		var err error
		res, err = s.Search(ctx, q)
		return err
	}
	if retries <= 0 {
		return res, attempt(ctx)
	}
	err := httputil.RetryRateLimited(ctx, retries, logger, attempt)
	return res, err
}

func (p *Pipeline) finish(run *Run, state State, err error, logger *slog.Logger) {
	run.setTerminal(state, err)
	p.Metrics.ObserveRun(string(state))

	r := run.Report()
	logger.Info("run finished",
		"state", state,
		"documents", len(r.Documents),
		"downloaded", r.Downloaded(),
		"failed", len(r.Outcomes)-r.Downloaded(),
	)
}

func (p *Pipeline) guard() *semaphore.Weighted {
	p.once.Do(func() {
		p.sem = semaphore.NewWeighted(1)
	})
	return p.sem
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
