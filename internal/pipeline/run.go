// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"sync"

	"github.com/pdiddy/ppubs-fetch/internal/search"
	"github.com/pdiddy/ppubs-fetch/pkg/types"
)

// State is the lifecycle state of a run.
type State string

const (
	StateIdle        State = "idle"
	StateSearching   State = "searching"
	StateDownloading State = "downloading"
	StateCompleted   State = "completed"
	StateFailed      State = "failed"
	StateCancelled   State = "cancelled"
)

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Report is the final account of a run.
type Report struct {
	RunID     string                  `json:"run_id" yaml:"run_id"`
	State     State                   `json:"state" yaml:"state"`
	Query     types.SearchQuery       `json:"query" yaml:"query"`
	Session   types.Session           `json:"session" yaml:"session"`
	Documents []types.DocumentSummary `json:"documents" yaml:"documents"`
	Outcomes  []types.DownloadOutcome `json:"outcomes" yaml:"outcomes"`
	Err       error                   `json:"-" yaml:"-"`
}

// Downloaded counts successful outcomes.
func (r Report) Downloaded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Succeeded {
			n++
		}
	}
	return n
}

// Run is one execution of the pipeline. It relays every notification to the
// caller's notifier and keeps the latest progress and status for polling.
type Run struct {
	ID    string
	Query types.SearchQuery
	Dir   string

	n    types.Notifier
	done chan struct{}

	mu        sync.Mutex
	state     State
	progress  float64
	status    string
	session   types.Session
	documents []types.DocumentSummary
	outcomes  []types.DownloadOutcome
	err       error
}

func newRun(id string, q types.SearchQuery, dir string, n types.Notifier) *Run {
	return &Run{
		ID:    id,
		Query: q,
		Dir:   dir,
		n:     n,
		done:  make(chan struct{}),
		state: StateIdle,
	}
}

// Progress records and forwards a progress fraction.
func (r *Run) Progress(fraction float64) {
	r.mu.Lock()
	r.progress = fraction
	r.mu.Unlock()
	r.n.Progress(fraction)
}

// Status records and forwards a status line.
func (r *Run) Status(message string) {
	r.mu.Lock()
	r.status = message
	r.mu.Unlock()
	r.n.Status(message)
}

// Done is closed when the run reaches a terminal state.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run finishes and returns its report.
func (r *Run) Wait() Report {
	<-r.done
	return r.Report()
}

// Report returns a snapshot of the run.
func (r *Run) Report() Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Report{
		RunID:     r.ID,
		State:     r.state,
		Query:     r.Query,
		Session:   r.session,
		Documents: r.documents,
		Outcomes:  r.outcomes,
		Err:       r.err,
	}
}

// State returns the current state.
func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// LastProgress returns the most recent progress fraction.
func (r *Run) LastProgress() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress
}

// LastStatus returns the most recent status line.
func (r *Run) LastStatus() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Run) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Run) setSearchResult(res search.Result) {
	r.mu.Lock()
	r.session = res.Session
	r.documents = res.Documents
	r.mu.Unlock()
}

func (r *Run) setOutcomes(o []types.DownloadOutcome) {
	r.mu.Lock()
	r.outcomes = o
	r.mu.Unlock()
}

func (r *Run) setTerminal(s State, err error) {
	r.mu.Lock()
	r.state = s
	r.err = err
	r.mu.Unlock()
}
