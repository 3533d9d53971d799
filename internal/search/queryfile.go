// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ppubs-fetch/pkg/types"
)

// QueryFile is the on-disk representation of a search query and its
// results. A search can be saved and downloaded later with
// "ppubs-fetch download --from" without re-querying the service.
type QueryFile struct {
	Query   types.SearchQuery       `yaml:"query"`
	Results []types.DocumentSummary `yaml:"results"`
	Summary QuerySummary            `yaml:"summary"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total     int       `yaml:"total"`
	CaseID    string    `yaml:"case_id,omitempty"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves a query and its results to a YAML file.
func WriteQueryFile(path string, q types.SearchQuery, res Result, now time.Time) error {
	qf := QueryFile{
		Query:   q,
		Results: res.Documents,
		Summary: QuerySummary{
			Total:     len(res.Documents),
			CaseID:    res.Session.CaseID,
			Timestamp: now,
		},
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk. Entries
// with an empty document id are dropped so the result keeps the
// non-empty-identifier invariant of parsed results.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}

	kept := qf.Results[:0]
	for _, d := range qf.Results {
		if d.DocumentID != "" {
			kept = append(kept, d)
		}
	}
	qf.Results = kept
	return &qf, nil
}
