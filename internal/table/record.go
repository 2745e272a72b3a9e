package table

import "tablestat/internal/value"

// Record is a read-only view over one data row plus its header.
type Record struct {
	header Header
	row    Row
}

// NewRecord wraps row with header h.
func NewRecord(h Header, row Row) Record { return Record{header: h, row: row} }

// Header returns the header the record resolves against.
func (r Record) Header() Header { return r.header }

// Row returns the raw row, unpadded and untruncated.
func (r Record) Row() Row { return r.row }

// Len returns the raw row length.
func (r Record) Len() int { return len(r.row) }

// Get resolves field against the header. A field past the end of a short row
// yields the null sentinel; a field absent from the header fails with
// *FieldNotFoundError.
func (r Record) Get(field any) (value.Value, error) {
	i, err := r.header.Index(field)
	if err != nil {
		return value.Null(), err
	}
	return cell(r.row, i), nil
}

// Field is Get without the error: unknown fields read as null. It is meant
// for key and value functions passed to Func.
func (r Record) Field(field any) value.Value {
	v, _ := r.Get(field)
	return v
}

// At returns the value at position i. Positions within the header length are
// padded with null for short rows; positions past both the row and the header
// fail with *StructuralRowError.
func (r Record) At(i int) (value.Value, error) {
	if i >= 0 && i < len(r.row) {
		return r.row[i], nil
	}
	if i >= 0 && i < r.header.Len() {
		return value.Null(), nil
	}
	return value.Null(), &StructuralRowError{Position: i, RowLen: len(r.row), HeaderLen: r.header.Len()}
}

// Padded returns the row fitted to the header width: short rows are padded
// with null, long rows are truncated.
func (r Record) Padded() Row {
	out := make(Row, r.header.Len())
	for i := range out {
		out[i] = cell(r.row, i)
	}
	return out
}

// Map returns the row as a field-name keyed map, padded like Padded. With
// duplicate header names the first position wins.
func (r Record) Map() map[string]value.Value {
	m := make(map[string]value.Value, r.header.Len())
	for i, name := range r.header.names {
		if _, dup := m[name]; dup {
			continue
		}
		m[name] = cell(r.row, i)
	}
	return m
}
