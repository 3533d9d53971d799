// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ppubs-fetch/pkg/types"
)

// sampleRecords exercises every identifier shape plus one unresolvable record.
const sampleRecords = `[
	{"patentNumber": "D1108091", "inventionTitle": "Slipper"},
	{"displayId": "US 11223344 B2", "title": "Shoe sole"},
	{"documentId": "US20230012345A1", "patentTitle": "Insole"},
	{"title": "No identifier at all", "datePublished": "2025-01-01"}
]`

var sampleWant = []types.DocumentSummary{
	{DocumentID: "D1108091", Title: "Slipper"},
	{DocumentID: "11223344", Title: "Shoe sole"},
	{DocumentID: "20230012345", Title: "Insole"},
}

func TestParseBareArray(t *testing.T) {
	got := Parse([]byte(sampleRecords))
	assert.Equal(t, sampleWant, got)
}

func TestParseContainersMatchBareArray(t *testing.T) {
	bare := Parse([]byte(sampleRecords))

	for _, shape := range []string{
		`{"patents": %s}`,
		`{"docs": %s}`,
		`{"documents": %s}`,
		`{"results": %s}`,
		`{"response": {"numFound": 4, "docs": %s}}`,
		`{"numFound": 4, "patents": %s, "facets": {}}`,
	} {
		body := fmt.Sprintf(shape, sampleRecords)
		t.Run(shape, func(t *testing.T) {
			assert.Equal(t, bare, Parse([]byte(body)))
		})
	}
}

func TestParseContainerPriority(t *testing.T) {
	body := `{
		"docs":    [{"patentNumber": "22222222"}],
		"patents": [{"patentNumber": "11111111"}]
	}`
	got := Parse([]byte(body))
	require.Len(t, got, 1)
	assert.Equal(t, "11111111", got[0].DocumentID)
}

func TestParseNonArrayContainerSkipped(t *testing.T) {
	body := `{"patents": null, "docs": [{"patentNumber": "33333333"}]}`
	got := Parse([]byte(body))
	require.Len(t, got, 1)
	assert.Equal(t, "33333333", got[0].DocumentID)
}

func TestParseUnrecognizedShapesYieldEmpty(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"count only", `{"numFound": 12, "totalPages": 1}`},
		{"query id wrapper", `{"queryId": 123456, "numResults": 42}`},
		{"empty object", `{}`},
		{"scalar root", `42`},
		{"string root", `"maintenance"`},
		{"null root", `null`},
		{"invalid JSON", `<html>Service Unavailable</html>`},
		{"empty body", ``},
		{"empty array", `[]`},
		{"patents empty", `{"patents": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Empty(t, Parse([]byte(tt.body)))
			})
		})
	}
}

func TestParseDropsUnresolvableRecords(t *testing.T) {
	body := `{"patents": [
		{"title": "a"},
		{"patentNumber": "44444444"},
		"not an object",
		17,
		{"documentId": ""},
		{"patentNumber": "55555555", "title": "b"}
	]}`
	docs, stats := parse([]byte(body))
	require.Len(t, docs, 2)
	assert.Equal(t, "44444444", docs[0].DocumentID)
	assert.Equal(t, "55555555", docs[1].DocumentID)
	assert.Equal(t, "patents", stats.Container)
	assert.Equal(t, 6, stats.Records)
	assert.Equal(t, 4, stats.Dropped)
	for _, d := range docs {
		assert.NotEmpty(t, d.DocumentID)
	}
}

func TestParseNumericIdentifier(t *testing.T) {
	got := Parse([]byte(`[{"patentNumber": 11223344, "title": "x"}]`))
	require.Len(t, got, 1)
	assert.Equal(t, "11223344", got[0].DocumentID)
}

func TestParseTitleAliasPriority(t *testing.T) {
	got := Parse([]byte(`[{"patentNumber": "1234567", "title": "generic", "inventionTitle": "  specific  "}]`))
	require.Len(t, got, 1)
	assert.Equal(t, "specific", got[0].Title)
}

func TestParseCollapsesDuplicates(t *testing.T) {
	body := `[
		{"patentNumber": "D1108091"},
		{"documentId": "USD1108091S", "title": "Slipper"},
		{"patentNumber": "11223344", "title": "Other"}
	]`
	docs, stats := parse([]byte(body))
	assert.Equal(t, []types.DocumentSummary{
		{DocumentID: "D1108091", Title: "Slipper"},
		{DocumentID: "11223344", Title: "Other"},
	}, docs)
	assert.Equal(t, 1, stats.Duplicates)
}
