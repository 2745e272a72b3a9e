// Package order checks whether a table's rows are sorted by a key.
package order

import (
	"tablestat/internal/table"
	"tablestat/internal/value"
)

// Options configure IsOrdered. The zero value checks non-strict ascending
// order of whole rows.
type Options struct {
	// Key selects the compared value; the zero Selector compares whole rows.
	Key table.Selector
	// Reverse checks descending instead of ascending order.
	Reverse bool
	// Strict forbids equal adjacent keys.
	Strict bool
}

// IsOrdered reports whether the data rows of t are sorted by opts.Key under
// the value.Compare total order. It makes a single forward pass and stops at
// the first violation, so it is safe on infinite tables that are not sorted.
// Tables with zero or one data row are ordered.
func IsOrdered(t table.Table, opts Options) (bool, error) {
	var (
		get     table.Getter
		prev    value.Value
		havePrv bool
		ordered = true
	)
	err := table.Walk(t, func(h table.Header) error {
		var err error
		get, err = opts.Key.Compile(h)
		return err
	}, func(r table.Row) bool {
		curr := get(r)
		if havePrv && !inOrder(value.Compare(prev, curr), opts) {
			ordered = false
			return false
		}
		prev, havePrv = curr, true
		return true
	})
	if err != nil {
		return false, err
	}
	return ordered, nil
}

// inOrder interprets c = Compare(prev, curr).
func inOrder(c int, opts Options) bool {
	if opts.Reverse {
		c = -c
	}
	if opts.Strict {
		return c < 0
	}
	return c <= 0
}
