// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pdiddy/ppubs-fetch/internal/docid"
	"github.com/pdiddy/ppubs-fetch/pkg/types"
)

// containerPaths lists, in priority order, where a search response may hold
// its record array. Each path is a chain of object keys from the root.
var containerPaths = [][]string{
	{"patents"},
	{"docs"},
	{"documents"},
	{"results"},
	{"response", "docs"},
}

// titleFields lists the record fields that may carry the title.
var titleFields = []string{"inventionTitle", "title", "patentTitle"}

// parseStats describes how a response was interpreted.
type parseStats struct {
	// Container is the dotted path the records came from, "$" for a bare
	// array root, or "" when no records were found.
	Container  string
	Records    int
	Dropped    int
	Duplicates int
}

// Parse converts a raw search response into document summaries.
//
// The response root may be a bare array of records, an object holding the
// array under one of several known names, or an object with no records at
// all (a count-only answer). Anything unrecognized, including invalid JSON,
// yields an empty result: an unknown shape means "no data", not a failure.
// Records without a resolvable identifier are dropped; the remaining
// summaries keep the response order.
func Parse(raw []byte) []types.DocumentSummary {
	docs, _ := parse(raw)
	return docs
}

func parse(raw []byte) ([]types.DocumentSummary, parseStats) {
	var stats parseStats

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, stats
	}

	records, container := resolveRecords(root)
	stats.Container = container
	stats.Records = len(records)

	var docs []types.DocumentSummary
	seen := make(map[string]int)
	for _, elem := range records {
		obj, ok := elem.(map[string]any)
		if !ok {
			stats.Dropped++
			continue
		}
		rec := docid.Record(obj)

		id, ok := docid.Normalize(rec)
		if !ok {
			stats.Dropped++
			continue
		}
		title := extractTitle(rec)

		// Collapse duplicates to the first occurrence; a later copy may
		// still supply a missing title.
		if idx, dup := seen[id]; dup {
			stats.Duplicates++
			if docs[idx].Title == "" {
				docs[idx].Title = title
			}
			continue
		}
		seen[id] = len(docs)
		docs = append(docs, types.DocumentSummary{DocumentID: id, Title: title})
	}
	return docs, stats
}

// resolveRecords finds the record array in root and names where it was.
func resolveRecords(root any) ([]any, string) {
	if obj, ok := root.(map[string]any); ok {
		for _, path := range containerPaths {
			if arr, ok := lookupArray(obj, path); ok {
				return arr, strings.Join(path, ".")
			}
		}
		return nil, ""
	}
	if arr, ok := root.([]any); ok {
		return arr, "$"
	}
	return nil, ""
}

func lookupArray(obj map[string]any, path []string) ([]any, bool) {
	var cur any = obj
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	arr, ok := cur.([]any)
	return arr, ok
}

func extractTitle(rec docid.Record) string {
	title, _ := rec.String(titleFields...)
	return strings.TrimSpace(title)
}
