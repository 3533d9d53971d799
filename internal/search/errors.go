// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrEmptyQuery is returned when the query text is blank.
var ErrEmptyQuery = errors.New("query is empty")

// maxErrorBody bounds how much of a failed response body is kept.
const maxErrorBody = 512

// SearchFailedError reports a search that did not produce a usable response:
// a non-success status, or a transport error at any step (handshake
// included). Status is 0 when no response was received.
type SearchFailedError struct {
	Status int
	Body   string
	Err    error
}

func (e *SearchFailedError) Error() string {
	switch {
	case e.Status == 0:
		return fmt.Sprintf("search failed: %v", e.Err)
	case e.Err != nil:
		return fmt.Sprintf("search failed: HTTP %d: %v", e.Status, e.Err)
	case e.Body != "":
		return fmt.Sprintf("search failed: HTTP %d: %s", e.Status, e.Body)
	default:
		return fmt.Sprintf("search failed: HTTP %d", e.Status)
	}
}

func (e *SearchFailedError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status of the failed response.
func (e *SearchFailedError) StatusCode() int { return e.Status }

func truncateBody(b []byte) string {
	if len(b) <= maxErrorBody {
		return string(b)
	}
	cut := maxErrorBody
	for cut > 0 && !utf8.RuneStart(b[cut]) {
		cut--
	}
	return string(b[:cut]) + "..."
}
