package query

import (
	"fmt"
)

// RangeQuery selects the ordinal range [Start, End) of one column.
type RangeQuery struct {
	Column string // Column name to query
	Start  uint32 // First ordinal, inclusive
	End    uint32 // Last ordinal, exclusive
}

// Validate checks if the query is properly formed
func (q *RangeQuery) Validate() error {
	if q.Column == "" {
		return fmt.Errorf("column name cannot be empty")
	}
	if q.End <= q.Start {
		return fmt.Errorf("invalid range [%d, %d): end must be greater than start", q.Start, q.End)
	}
	return nil
}

// RangeResult holds the values a range query selected
type RangeResult struct {
	Column string   `json:"column"`
	Start  uint32   `json:"start"`
	Values []uint32 `json:"values"`
}

// Stats holds aggregates over a queried range
type Stats struct {
	Column string `json:"column"`
	Count  uint64 `json:"count"`
	Sum    uint64 `json:"sum"`
	Min    uint32 `json:"min"`
	Max    uint32 `json:"max"`
}
