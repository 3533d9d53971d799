// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ppubs-fetch/pkg/types"
)

// Output formats accepted by Format.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Format writes docs to w in the named format.
func Format(docs []types.DocumentSummary, format string, w io.Writer) error {
	switch format {
	case "", FormatTable:
		WriteTable(docs, w)
		return nil
	case FormatJSON:
		return WriteJSON(docs, w)
	case FormatYAML:
		return WriteYAML(docs, w)
	default:
		return fmt.Errorf("unknown output format %q (want table, json, or yaml)", format)
	}
}

// WriteTable writes results as a human-readable table to w.
func WriteTable(docs []types.DocumentSummary, w io.Writer) {
	if len(docs) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-14s  %s\n", "#", "Document", "Title")
	fmt.Fprintln(w, strings.Repeat("-", 90))

	for i, d := range docs {
		fmt.Fprintf(w, "%-4d  %-14s  %s\n", i+1, d.DocumentID, truncate(d.Title, 70))
	}

	fmt.Fprintf(w, "\n%d results\n", len(docs))
}

// WriteJSON writes results as indented JSON to w.
func WriteJSON(docs []types.DocumentSummary, w io.Writer) error {
	if docs == nil {
		docs = []types.DocumentSummary{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}

// WriteYAML writes results as a YAML sequence to w.
func WriteYAML(docs []types.DocumentSummary, w io.Writer) error {
	if docs == nil {
		docs = []types.DocumentSummary{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(docs); err != nil {
		return err
	}
	return enc.Close()
}

// truncate shortens s to at most max runes, ending in "...".
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}
