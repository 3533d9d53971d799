// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"regexp"
	"strings"
)

// MaxPageSize is the largest page the search endpoint serves. Only the first
// page is fetched.
const MaxPageSize = 500

// Databases searched by default: granted patents, pre-grant publications,
// and OCR'd historical patents.
var defaultDatabases = []string{"USPAT", "US-PGPUB", "USOCR"}

var numericPattern = regexp.MustCompile(`^\d+$`)

// The request body follows the family search shape: paging and sort at the
// top level, the query itself in a nested object. The older flat and
// count-then-fetch shapes are not sent.
type searchRequest struct {
	Start                int         `json:"start"`
	PageCount            int         `json:"pageCount"`
	Sort                 string      `json:"sort"`
	DocFamilyFiltering   string      `json:"docFamilyFiltering"`
	SearchType           int         `json:"searchType"`
	FamilyIDEnglish      bool        `json:"familyIdEnglishOnly"`
	FamilyIDFirst        bool        `json:"familyIdFirstPreferred"`
	ShowDocPerFamilyPref string      `json:"showDocPerFamilyPref"`
	Query                searchQuery `json:"query"`
}

type searchQuery struct {
	CaseID             any              `json:"caseId"`
	HLSnippets         string           `json:"hl_snippets"`
	Op                 string           `json:"op"`
	Q                  string           `json:"q"`
	QueryName          string           `json:"queryName"`
	Highlights         string           `json:"highlights"`
	QT                 string           `json:"qt"`
	SpellCheck         bool             `json:"spellCheck"`
	ViewName           string           `json:"viewName"`
	Plurals            bool             `json:"plurals"`
	BritishEquivalents bool             `json:"britishEquivalents"`
	DatabaseFilters    []databaseFilter `json:"databaseFilters"`
	SearchType         int              `json:"searchType"`
	IgnorePersist      bool             `json:"ignorePersist"`
	UserEnteredQuery   string           `json:"userEnteredQuery"`
}

type databaseFilter struct {
	DatabaseName string   `json:"databaseName"`
	CountryCodes []string `json:"countryCodes"`
}

// buildSearchBody encodes the search request for text within caseID.
// JSON encoding escapes quotation marks and backslashes in the query.
func buildSearchBody(text, caseID string, pageSize int) ([]byte, error) {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	filters := make([]databaseFilter, 0, len(defaultDatabases))
	for _, db := range defaultDatabases {
		filters = append(filters, databaseFilter{DatabaseName: db, CountryCodes: []string{}})
	}

	text = strings.TrimSpace(text)
	req := searchRequest{
		Start:                0,
		PageCount:            pageSize,
		Sort:                 "date_publ desc",
		DocFamilyFiltering:   "familyIdFiltering",
		SearchType:           1,
		FamilyIDEnglish:      true,
		FamilyIDFirst:        true,
		ShowDocPerFamilyPref: "showEnglish",
		Query: searchQuery{
			CaseID:             caseIDValue(caseID),
			HLSnippets:         "2",
			Op:                 "OR",
			Q:                  text,
			QueryName:          text,
			Highlights:         "1",
			QT:                 "brs",
			SpellCheck:         false,
			ViewName:           "tile",
			Plurals:            true,
			BritishEquivalents: true,
			DatabaseFilters:    filters,
			SearchType:         1,
			IgnorePersist:      true,
			UserEnteredQuery:   text,
		},
	}
	return json.Marshal(req)
}

// caseIDValue sends numeric case ids as JSON numbers, as the web app does,
// and anything else as an escaped string.
func caseIDValue(id string) any {
	if numericPattern.MatchString(id) {
		return json.Number(id)
	}
	return id
}
