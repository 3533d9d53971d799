// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the ppubs-fetch pipeline:
// the session carried across requests, the canonical search record, the
// per-document download outcome, and the notification sink the pipeline
// reports through.
package types

import "time"

// Session holds the state established by the PPUBS handshake. A Session is
// created once per pipeline run and threaded into the search and download
// stages; it is never persisted or renewed.
type Session struct {
	// AuthToken is the value of the x-access-token handshake header. Empty
	// when the service answered without one (anonymous mode).
	AuthToken string `json:"-" yaml:"-"`

	// CaseID scopes search requests to one logical search session.
	CaseID string `json:"case_id" yaml:"case_id"`

	// AcquiredAt is when the handshake completed.
	AcquiredAt time.Time `json:"acquired_at" yaml:"acquired_at"`
}

// HasToken reports whether the handshake produced an auth token.
func (s Session) HasToken() bool {
	return s.AuthToken != ""
}

// SearchQuery is the free-text query submitted to the search endpoint.
type SearchQuery struct {
	RawText string `json:"raw_text" yaml:"raw_text"`
}

// DocumentSummary is the canonical, shape-independent form of one search
// result. DocumentID is always non-empty and bare: no country prefix and no
// kind-code suffix, the only form the PDF endpoint accepts.
type DocumentSummary struct {
	// DocumentID is the bare document identifier (e.g. "11223344", "D1108091").
	DocumentID string `json:"document_id" yaml:"document_id"`

	// Title is the invention title, empty when the record carried none.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// DownloadOutcome records the result of one download attempt.
type DownloadOutcome struct {
	DocumentID string `json:"document_id" yaml:"document_id"`
	Succeeded  bool   `json:"succeeded" yaml:"succeeded"`

	// HTTPStatus is the response status, 0 when no response was received.
	HTTPStatus int `json:"http_status,omitempty" yaml:"http_status,omitempty"`

	// Err describes why the attempt failed. Empty on success.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`

	// Path is the written file, set on success.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Bytes is the size of the written file.
	Bytes int64 `json:"bytes,omitempty" yaml:"bytes,omitempty"`
}
