// Package table defines the table contract shared by every analytic
// operation, plus the row view used to read it.
//
// A Table is an ordered sequence of rows. The first row is the header: the
// field identifiers, duplicates permitted. Every following row is a data row
// of arbitrary length:
//
//   - rows shorter than the header read as the null sentinel for the missing
//     trailing fields;
//   - rows longer than the header keep their extra cells for positional and
//     whole-row access, but name-based resolution never reaches them.
//
// Tables are consumed forward-only through Go iterators. Streaming
// operations accept infinite tables; operations that materialize (lookups,
// column caches, frequency tables) need finite ones and never return
// otherwise.
package table

import (
	"iter"

	"tablestat/internal/value"
)

// Row is one table row, header or data.
type Row []value.Value

// Table is an ordered sequence of rows whose first row is the header. Each
// call to All starts a new pass; a Table that cannot be replayed documents
// so.
type Table interface {
	All() iter.Seq[Row]
}

// Failer is implemented by tables whose iteration can fail (files, database
// cursors). Err reports the error that ended the most recent pass early.
type Failer interface {
	Err() error
}

// Err returns the iteration error of t, if t reports one.
func Err(t Table) error {
	if f, ok := t.(Failer); ok {
		return f.Err()
	}
	return nil
}

// rowsTable is a replayable in-memory table.
type rowsTable struct {
	rows []Row
}

func (t *rowsTable) All() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for _, r := range t.rows {
			if !yield(r) {
				return
			}
		}
	}
}

// Len returns the number of rows, header included.
func (t *rowsTable) Len() int { return len(t.rows) }

// FromRows builds an in-memory table from Go literals; every cell is
// converted with value.Of. The first row is the header.
//
//	t := table.FromRows(
//		[]any{"foo", "bar"},
//		[]any{"a", 1},
//		[]any{"b"}, // short row: bar reads as null
//	)
func FromRows(rows ...[]any) Table {
	out := make([]Row, len(rows))
	for i, r := range rows {
		row := make(Row, len(r))
		for j, c := range r {
			row[j] = value.Of(c)
		}
		out[i] = row
	}
	return &rowsTable{rows: out}
}

// FromValues builds an in-memory table from already converted rows.
func FromValues(rows ...Row) Table { return &rowsTable{rows: rows} }

// Seq adapts a row sequence into a Table. Whether it can be replayed
// depends on the sequence.
type Seq iter.Seq[Row]

func (f Seq) All() iter.Seq[Row] { return iter.Seq[Row](f) }

// Materialize reads t once and returns a replayable in-memory copy. t must be
// finite.
func Materialize(t Table) (Table, error) {
	if rt, ok := t.(*rowsTable); ok {
		return rt, nil
	}
	var rows []Row
	for r := range t.All() {
		rows = append(rows, r)
	}
	if err := Err(t); err != nil {
		return nil, err
	}
	return &rowsTable{rows: rows}, nil
}

// Walk reads the header of t, hands it to onHeader, then calls fn for every
// data row until fn returns false. An empty table yields an empty header.
// Walk returns the error from onHeader, or the iteration error of t.
func Walk(t Table, onHeader func(Header) error, fn func(Row) bool) error {
	seen := false
	var herr error
	for r := range t.All() {
		if !seen {
			seen = true
			if onHeader != nil {
				if herr = onHeader(NewHeader(r)); herr != nil {
					break
				}
			}
			continue
		}
		if !fn(r) {
			break
		}
	}
	if herr != nil {
		return herr
	}
	if err := Err(t); err != nil {
		return err
	}
	if !seen && onHeader != nil {
		return onHeader(NewHeader(nil))
	}
	return nil
}
