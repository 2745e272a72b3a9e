// Package lookup materializes key → values indexes over a whole table.
//
// All builders read the table to the end before returning; the resulting
// maps are owned by the caller and independent of the source. Keys use value
// equality (1 and 1.0 are the same key) and iterate in first-seen order.
//
// The "One" variants keep the first value recorded for each key. In strict
// mode they fail with *DuplicateKeyError as soon as any key has been seen on
// more than one row, even when the rows carry equal values.
package lookup

import (
	"errors"
	"fmt"

	"tablestat/internal/keyed"
	"tablestat/internal/table"
	"tablestat/internal/value"
)

// ErrDuplicateKey matches every *DuplicateKeyError.
var ErrDuplicateKey = errors.New("duplicate key")

// DuplicateKeyError reports a key found on more than one row in strict mode.
type DuplicateKeyError struct {
	Key value.Value
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key: %v", e.Key)
}

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

// build runs one pass and appends conv(row) to the list of its key.
func build[V any](t table.Table, key table.Selector, conv func(table.Header) (func(table.Row) V, error)) (*keyed.Map[[]V], error) {
	idx := keyed.New[[]V]()
	var (
		kg  table.Getter
		get func(table.Row) V
	)
	err := table.Walk(t, func(h table.Header) error {
		var err error
		if kg, err = key.Compile(h); err != nil {
			return err
		}
		get, err = conv(h)
		return err
	}, func(r table.Row) bool {
		v := get(r)
		idx.Update(kg(r), func(old []V, _ bool) []V { return append(old, v) })
		return true
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// buildOne runs one pass keeping the first value per key.
func buildOne[V any](t table.Table, key table.Selector, strict bool, conv func(table.Header) (func(table.Row) V, error)) (*keyed.Map[V], error) {
	idx := keyed.New[V]()
	var (
		kg  table.Getter
		get func(table.Row) V
		dup error
	)
	err := table.Walk(t, func(h table.Header) error {
		var err error
		if kg, err = key.Compile(h); err != nil {
			return err
		}
		get, err = conv(h)
		return err
	}, func(r table.Row) bool {
		k := kg(r)
		if idx.Has(k) {
			if strict {
				dup = &DuplicateKeyError{Key: k}
				return false
			}
			return true
		}
		idx.Set(k, get(r))
		return true
	})
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, dup
	}
	return idx, nil
}

func selectorConv(val table.Selector) func(table.Header) (func(table.Row) value.Value, error) {
	return func(h table.Header) (func(table.Row) value.Value, error) {
		g, err := val.Compile(h)
		if err != nil {
			return nil, err
		}
		return func(r table.Row) value.Value { return g(r) }, nil
	}
}

func dictConv(h table.Header) (func(table.Row) map[string]value.Value, error) {
	return func(r table.Row) map[string]value.Value { return table.NewRecord(h, r).Map() }, nil
}

func recordConv(h table.Header) (func(table.Row) table.Record, error) {
	return func(r table.Row) table.Record {
		cp := make(table.Row, len(r))
		copy(cp, r)
		return table.NewRecord(h, cp)
	}, nil
}

// Lookup maps every key to the values selected by val, in row order. The
// zero val selects whole rows.
func Lookup(t table.Table, key, val table.Selector) (*keyed.Map[[]value.Value], error) {
	return build(t, key, selectorConv(val))
}

// LookupOne maps every key to the first value selected by val.
func LookupOne(t table.Table, key, val table.Selector, strict bool) (*keyed.Map[value.Value], error) {
	return buildOne(t, key, strict, selectorConv(val))
}

// DictLookup maps every key to its rows as field-keyed maps.
func DictLookup(t table.Table, key table.Selector) (*keyed.Map[[]map[string]value.Value], error) {
	return build(t, key, dictConv)
}

// DictLookupOne maps every key to its first row as a field-keyed map.
func DictLookupOne(t table.Table, key table.Selector, strict bool) (*keyed.Map[map[string]value.Value], error) {
	return buildOne(t, key, strict, dictConv)
}

// RecordLookup maps every key to its rows as Records.
func RecordLookup(t table.Table, key table.Selector) (*keyed.Map[[]table.Record], error) {
	return build(t, key, recordConv)
}

// RecordLookupOne maps every key to its first row as a Record.
func RecordLookupOne(t table.Table, key table.Selector, strict bool) (*keyed.Map[table.Record], error) {
	return buildOne(t, key, strict, recordConv)
}
