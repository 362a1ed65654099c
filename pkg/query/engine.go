// Package query executes ordinal-range queries and aggregations over the
// column store, streaming values through a single positional iterator per
// query.
package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/cfiledb/cfiledb/pkg/cfile"
	"github.com/cfiledb/cfiledb/pkg/store"
)

// checkEvery bounds how many values are read between context checks.
const checkEvery = 1024

// Engine executes range queries against a column store
type Engine struct {
	store *store.ColumnStore
}

// NewEngine creates a new query engine
func NewEngine(cs *store.ColumnStore) *Engine {
	return &Engine{store: cs}
}

// ExecuteRange returns the values selected by q. The range is clamped to
// the column's length; a range entirely past the end yields an empty
// result.
func (e *Engine) ExecuteRange(ctx context.Context, q RangeQuery) (*RangeResult, error) {
	result := &RangeResult{Column: q.Column, Start: q.Start, Values: []uint32{}}

	err := e.scan(ctx, q, func(_ uint32, value uint32) {
		result.Values = append(result.Values, value)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Aggregate computes count/sum/min/max over the values selected by q.
func (e *Engine) Aggregate(ctx context.Context, q RangeQuery) (*Stats, error) {
	stats := &Stats{Column: q.Column}

	err := e.scan(ctx, q, func(_ uint32, value uint32) {
		if stats.Count == 0 || value < stats.Min {
			stats.Min = value
		}
		if stats.Count == 0 || value > stats.Max {
			stats.Max = value
		}
		stats.Count++
		stats.Sum += uint64(value)
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// scan drives one iterator across [q.Start, end) and hands each
// (ordinal, value) pair to fn.
func (e *Engine) scan(ctx context.Context, q RangeQuery, fn func(ordinal, value uint32)) error {
	if err := q.Validate(); err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}

	info, err := e.store.ColumnInfo(q.Column)
	if err != nil {
		return err
	}

	end := q.End
	if uint64(end) > info.Rows {
		end = uint32(info.Rows)
	}
	if q.Start >= end {
		return nil
	}

	it, err := e.store.OpenIterator(q.Column)
	if err != nil {
		return err
	}
	if err := it.SeekToOrdinal(q.Start); err != nil {
		if errors.Is(err, cfile.ErrNotFound) {
			return store.ErrOrdinalNotFound
		}
		return err
	}

	for n := 0; ; n++ {
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		ord := it.GetCurrentOrdinal()
		fn(ord, it.GetCurrentValue())

		if ord+1 >= end {
			return nil
		}
		if err := it.Next(); err != nil {
			return err
		}
	}
}
