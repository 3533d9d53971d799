// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ppubs-fetch/pkg/types"
)

var formatDocs = []types.DocumentSummary{
	{DocumentID: "D1108091", Title: "Slipper"},
	{DocumentID: "11223344", Title: strings.Repeat("Long title ", 10)},
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(formatDocs, &buf)
	out := buf.String()

	assert.Contains(t, out, "D1108091")
	assert.Contains(t, out, "Slipper")
	assert.Contains(t, out, "...")
	assert.Contains(t, out, "2 results")
}

func TestWriteTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(nil, &buf)
	assert.Equal(t, "No results found.\n", buf.String())
}

func TestTruncateKeepsRunes(t *testing.T) {
	title := strings.Repeat("靴", 80)
	got := truncate(title, 70)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 70, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))

	assert.Equal(t, "Pantoufle à talon", truncate("Pantoufle à talon", 70))
}

func TestTruncateBodyRuneBoundary(t *testing.T) {
	// One ASCII byte shifts the three-byte runes off the cut offset.
	body := []byte("x" + strings.Repeat("é靴", 200))
	got := truncateBody(body)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), maxErrorBody+len("..."))
	assert.True(t, strings.HasSuffix(got, "..."))

	assert.Equal(t, "short", truncateBody([]byte("short")))
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Format(formatDocs, FormatJSON, &buf))

	var got []types.DocumentSummary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, formatDocs, got)

	buf.Reset()
	require.NoError(t, Format(nil, FormatJSON, &buf))
	assert.Equal(t, "[]\n", buf.String())
}

func TestFormatYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Format(formatDocs, FormatYAML, &buf))
	assert.Contains(t, buf.String(), "document_id: D1108091")

	var got []types.DocumentSummary
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, formatDocs, got)
}

func TestFormatUnknown(t *testing.T) {
	err := Format(formatDocs, "csv", &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown output format")
}

func TestQueryFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.yaml")
	q := types.SearchQuery{RawText: `slipper.ttl. AND @PD>="20230101"`}
	res := Result{
		Session:   types.Session{CaseID: "202316993"},
		Documents: formatDocs,
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, WriteQueryFile(path, q, res, now))

	qf, err := ReadQueryFile(path)
	require.NoError(t, err)
	assert.Equal(t, q, qf.Query)
	assert.Equal(t, formatDocs, qf.Results)
	assert.Equal(t, 2, qf.Summary.Total)
	assert.Equal(t, "202316993", qf.Summary.CaseID)
	assert.True(t, now.Equal(qf.Summary.Timestamp))
}

func TestReadQueryFileDropsEmptyIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.yaml")
	content := `query:
  raw_text: shoe
results:
  - document_id: "11223344"
  - title: orphan
`
	require.NoError(t, writeTestFile(path, content))

	qf, err := ReadQueryFile(path)
	require.NoError(t, err)
	require.Len(t, qf.Results, 1)
	assert.Equal(t, "11223344", qf.Results[0].DocumentID)
}

func TestReadQueryFileMissing(t *testing.T) {
	_, err := ReadQueryFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "reading query file")
}

func writeTestFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
