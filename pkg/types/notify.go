// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ProgressIndeterminate is reported as the progress fraction while the
// search request is outstanding and the total is unknown.
const ProgressIndeterminate = -1.0

// Notifier receives progress and status updates from a pipeline run. Calls
// arrive on the run's background goroutine; implementations that feed a UI
// must marshal them onto the UI's own event loop.
type Notifier interface {
	// Progress reports a fraction in [0,1] or ProgressIndeterminate.
	Progress(fraction float64)

	// Status reports a human-readable status line.
	Status(message string)
}

// NotifierFuncs adapts a pair of functions to Notifier. Nil fields are
// ignored.
type NotifierFuncs struct {
	OnProgress func(fraction float64)
	OnStatus   func(message string)
}

func (n NotifierFuncs) Progress(fraction float64) {
	if n.OnProgress != nil {
		n.OnProgress(fraction)
	}
}

func (n NotifierFuncs) Status(message string) {
	if n.OnStatus != nil {
		n.OnStatus(message)
	}
}

// EventKind distinguishes progress events from status events.
type EventKind int

const (
	EventProgress EventKind = iota
	EventStatus
)

// Event is an immutable notification emitted by a run.
type Event struct {
	Kind     EventKind
	Progress float64
	Status   string
}

// ChannelNotifier forwards every notification as an Event on C. Sends block
// until the consumer receives, so the consumer must drain C for the life of
// the run.
type ChannelNotifier struct {
	C chan<- Event
}

func (n ChannelNotifier) Progress(fraction float64) {
	n.C <- Event{Kind: EventProgress, Progress: fraction}
}

func (n ChannelNotifier) Status(message string) {
	n.C <- Event{Kind: EventStatus, Status: message}
}

// Discard is a Notifier that drops everything.
var Discard Notifier = NotifierFuncs{}
