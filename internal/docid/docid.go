// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docid derives the bare document identifier the PPUBS PDF endpoint
// accepts from whichever identifier-bearing field a search record carries.
//
// The same logical identifier arrives in three shapes depending on which
// endpoint variant answered:
//
//	patentNumber: "11223344"         canonical number
//	displayId:    "US D1108091 S"    country, number, and kind code
//	documentId:   "US11223344B2"     country prefix + number + kind code
//
// Normalize tries them in that order and returns the number alone.
package docid

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Field names tried in priority order for each identifier shape.
var (
	NumberFields  = []string{"patentNumber", "patentNo"}
	DisplayFields = []string{"displayId", "displayDocId"}
	GenericFields = []string{"documentId", "guid", "id"}
)

// displayTokenPattern matches the number token of a display identifier: an
// optional one- or two-letter series prefix followed by at least five digits
// (e.g. "D1108091", "RE49123", "11223344").
var displayTokenPattern = regexp.MustCompile(`^[A-Z]{0,2}\d{5,}$`)

// countryPrefixPattern matches a leading two-letter country code followed by
// the start of a number, with or without a series prefix.
var countryPrefixPattern = regexp.MustCompile(`^([A-Z]{2})([A-Z]{0,2}\d)`)

// kindCodePattern matches a trailing kind code such as "B2", "A1", or "S",
// preceded by at least one digit.
var kindCodePattern = regexp.MustCompile(`(\d)[A-Z]\d{0,2}$`)

// seriesCodes are two-letter US series prefixes that must not be mistaken
// for a country code (reissue, plant, reexamination, AIA review, SIR).
var seriesCodes = map[string]bool{
	"RE": true,
	"PP": true,
	"RX": true,
	"AI": true,
	"HX": true,
}

// Record is one decoded search result element.
type Record map[string]any

// String returns the first of keys present in r with a non-empty value,
// rendered as a string. JSON numbers are rendered without exponent or
// fraction.
func (r Record) String(keys ...string) (string, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok {
			continue
		}
		if s, ok := scalarString(v); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	default:
		return "", false
	}
}

// Normalize resolves the bare identifier of rec. It reports false when no
// identifier-bearing field yields a usable value.
func Normalize(rec Record) (string, bool) {
	if v, ok := rec.String(NumberFields...); ok {
		if id := clean(v); id != "" {
			return id, true
		}
	}

	if v, ok := rec.String(DisplayFields...); ok {
		if id := clean(fromDisplay(v)); id != "" {
			return id, true
		}
	}

	if v, ok := rec.String(GenericFields...); ok {
		if id := Bare(v); id != "" {
			return id, true
		}
	}

	return "", false
}

// fromDisplay selects the number token from a whitespace-separated display
// identifier, falling back to the second token.
func fromDisplay(display string) string {
	tokens := strings.Fields(display)
	for _, tok := range tokens {
		if displayTokenPattern.MatchString(tok) {
			return tok
		}
	}
	if len(tokens) >= 2 {
		return tokens[1]
	}
	return ""
}

// Bare strips a country-code prefix and kind-code suffix from id, along with
// commas, whitespace, and hyphens. Bare is idempotent.
func Bare(id string) string {
	id = strings.ToUpper(clean(strings.ReplaceAll(id, "-", "")))
	if m := countryPrefixPattern.FindStringSubmatch(id); m != nil && !seriesCodes[m[1]] {
		id = id[len(m[1]):]
	}
	if loc := kindCodePattern.FindStringIndex(id); loc != nil {
		// Keep the digit the pattern anchored on.
		id = id[:loc[0]+1]
	}
	return id
}

// clean removes commas and all whitespace.
func clean(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
