package store

import "time"

// SortOrder is the direction of a single-field ordering.
type SortOrder string

// Sort directions.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sort is a single-field ordering expression. Field names are logical
// entity fields; implementations translate them through a per-entity
// allow-list, so an unknown field can never reach the storage engine.
type Sort struct {
	Field string
	Order SortOrder
}

// Filter is a typed filter expression. Each implementation of the
// interface is one filter kind; a query carries a slice of filters that
// are combined with AND. The tagged-variant shape keeps field names out
// of caller code and lets the storage layer validate them centrally.
type Filter interface {
	isFilter()
}

// SearchFilter matches rows where any of the designated fields contains
// the term, case-insensitively.
type SearchFilter struct {
	Term   string
	Fields []string
}

// EqFilter matches rows where the field equals the value exactly.
type EqFilter struct {
	Field string
	Value any
}

// TimeRangeFilter matches rows where the field falls within the inclusive
// [From, To] interval. Either bound may be nil to leave that side open.
type TimeRangeFilter struct {
	Field string
	From  *time.Time
	To    *time.Time
}

func (SearchFilter) isFilter()    {}
func (EqFilter) isFilter()        {}
func (TimeRangeFilter) isFilter() {}
