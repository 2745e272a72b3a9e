package table

import (
	"tablestat/internal/value"
)

type selectorKind uint8

const (
	selRow selectorKind = iota
	selFields
	selFunc
)

// Selector extracts a key or value from a data row. It is one of:
//
//   - WholeRow (also the zero Selector): the raw row as a tuple;
//   - Field / Fields: one field, or a compound key that yields a tuple with
//     one padded element per field (a single-field Fields is the same as
//     Field);
//   - Func: an arbitrary function of the Record.
type Selector struct {
	kind   selectorKind
	fields []any
	fn     func(Record) value.Value
}

// WholeRow selects the raw row as a tuple.
func WholeRow() Selector { return Selector{} }

// Field selects a single field.
func Field(f any) Selector { return Selector{kind: selFields, fields: []any{f}} }

// Fields selects several fields as a tuple.
func Fields(fs ...any) Selector {
	if len(fs) == 0 {
		return WholeRow()
	}
	return Selector{kind: selFields, fields: fs}
}

// Func selects fn(record).
func Func(fn func(Record) value.Value) Selector {
	if fn == nil {
		return WholeRow()
	}
	return Selector{kind: selFunc, fn: fn}
}

// IsWholeRow reports whether s selects the whole row.
func (s Selector) IsWholeRow() bool { return s.kind == selRow }

// Names returns display names for the selected fields, for use as output
// column names. Whole-row and function selectors yield "value".
func (s Selector) Names() []string {
	if s.kind != selFields {
		return []string{"value"}
	}
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = value.Of(f).String()
	}
	return out
}

// Getter is a Selector compiled against a header.
type Getter func(Row) value.Value

// Compile resolves s against h. Unknown fields fail with
// *FieldNotFoundError.
func (s Selector) Compile(h Header) (Getter, error) {
	switch s.kind {
	case selFunc:
		fn := s.fn
		return func(r Row) value.Value { return fn(NewRecord(h, r)) }, nil
	case selFields:
		ix, err := h.Indexes(s.fields...)
		if err != nil {
			return nil, err
		}
		if len(ix) == 1 {
			i := ix[0]
			return func(r Row) value.Value { return cell(r, i) }, nil
		}
		return func(r Row) value.Value {
			vs := make([]value.Value, len(ix))
			for j, i := range ix {
				vs[j] = cell(r, i)
			}
			return value.Tuple(vs...)
		}, nil
	}
	return func(r Row) value.Value {
		vs := make([]value.Value, len(r))
		copy(vs, r)
		return value.Tuple(vs...)
	}, nil
}

// Resolve applies s to one row under header h.
func Resolve(h Header, row Row, s Selector) (value.Value, error) {
	g, err := s.Compile(h)
	if err != nil {
		return value.Null(), err
	}
	return g(row), nil
}
