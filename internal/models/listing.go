package models

import "strings"

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection accepts asc/desc in any case.
func ParseDirection(raw string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(Asc):
		return Asc, true
	case string(Desc):
		return Desc, true
	}
	return "", false
}

// Sort names a sort field and direction.
type Sort struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Next is the sort after a click on field's header: an ascending sort on
// the same field flips to descending, anything else starts ascending.
func (s Sort) Next(field string) Sort {
	if s.Field == field && s.Direction == Asc {
		return Sort{Field: field, Direction: Desc}
	}
	return Sort{Field: field, Direction: Asc}
}

// SearchSpec is the full state of one list request: free text, filters,
// sort and a 0-based page.
type SearchSpec struct {
	Query    string            `json:"query"`
	Filters  map[string]string `json:"filters"`
	Sort     Sort              `json:"sort"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// Clone copies the spec including its filter map.
func (s SearchSpec) Clone() SearchSpec {
	out := s
	out.Filters = make(map[string]string, len(s.Filters))
	for k, v := range s.Filters {
		out.Filters[k] = v
	}
	return out
}

// SuggestionQuery is a type-ahead lookup.
type SuggestionQuery struct {
	Text  string `json:"text"`
	Limit int    `json:"limit"`
}

// Suggestion is a matched record with the rank of the first field that matched.
type Suggestion struct {
	Record    Record `json:"record"`
	MatchRank int    `json:"match_rank"`
}

// PageResult is one page of records plus the total matching the same
// predicate. Sort is the order actually applied after allow-list fallback.
type PageResult struct {
	Items      []Record `json:"items"`
	TotalCount int      `json:"total_count"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
	Sort       Sort     `json:"sort"`
}

// Statistics holds named counts computed for a listing.
type Statistics map[string]int
