// Package table provides typed, immutable dataset tables.
//
// Each dataset the cache serves has a row schema declared in this package.
// A Table holds rows in insertion order and enforces a unique primary key
// per row, so re-indexing (see Explode) can be checked statically instead
// of by column-name lookup.
package table

import (
	"encoding/json"
	"fmt"
	"iter"
)

// Row is a single dataset record with a unique primary key.
type Row interface {
	// Key returns the value of the row's primary index column.
	Key() int64
}

// Table is an ordered collection of rows with unique primary keys.
//
// The zero value is an empty table. Tables are value types; methods never
// mutate the receiver.
type Table[R Row] struct {
	rows []R
}

// New builds a table from rows, preserving order.
// Returns ErrDuplicateKey if two rows share a primary key.
func New[R Row](rows ...R) (Table[R], error) {
	seen := make(map[int64]struct{}, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.Key()]; ok {
			return Table[R]{}, fmt.Errorf("%w: %d", ErrDuplicateKey, r.Key())
		}
		seen[r.Key()] = struct{}{}
	}
	out := make([]R, len(rows))
	copy(out, rows)
	return Table[R]{rows: out}, nil
}

// Len returns the number of rows.
func (t Table[R]) Len() int {
	return len(t.rows)
}

// Rows iterates over rows in insertion order.
func (t Table[R]) Rows() iter.Seq[R] {
	return func(yield func(R) bool) {
		for _, r := range t.rows {
			if !yield(r) {
				return
			}
		}
	}
}

// Lookup returns the row with the given primary key.
func (t Table[R]) Lookup(key int64) (R, bool) {
	for _, r := range t.rows {
		if r.Key() == key {
			return r, true
		}
	}
	var zero R
	return zero, false
}

// Keys returns the primary key of every row, in row order.
func (t Table[R]) Keys() []int64 {
	keys := make([]int64, len(t.rows))
	for i, r := range t.rows {
		keys[i] = r.Key()
	}
	return keys
}

// MarshalJSON encodes the table as a JSON array of rows.
func (t Table[R]) MarshalJSON() ([]byte, error) {
	if t.rows == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.rows)
}

// UnmarshalJSON decodes a JSON array of rows, re-validating key uniqueness.
func (t *Table[R]) UnmarshalJSON(data []byte) error {
	var rows []R
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	nt, err := New(rows...)
	if err != nil {
		return err
	}
	*t = nt
	return nil
}
