package table

import (
	"errors"
	"fmt"
	"strings"

	"tablestat/internal/value"
)

var (
	// ErrFieldNotFound matches every *FieldNotFoundError.
	ErrFieldNotFound = errors.New("field not found")
	// ErrStructuralRow matches every *StructuralRowError.
	ErrStructuralRow = errors.New("position beyond row")
)

// FieldNotFoundError reports a field identifier absent from the header.
type FieldNotFoundError struct {
	Field  string
	Header []string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field %q not found in header [%s]", e.Field, strings.Join(e.Header, ", "))
}

func (e *FieldNotFoundError) Is(target error) bool { return target == ErrFieldNotFound }

// StructuralRowError reports positional access past the end of both the row
// and the header, where padding does not apply.
type StructuralRowError struct {
	Position  int
	RowLen    int
	HeaderLen int
}

func (e *StructuralRowError) Error() string {
	return fmt.Sprintf("position %d out of range (row length %d, header length %d)",
		e.Position, e.RowLen, e.HeaderLen)
}

func (e *StructuralRowError) Is(target error) bool { return target == ErrStructuralRow }

// Header is the resolved first row of a table.
type Header struct {
	fields Row
	names  []string
}

// NewHeader resolves a header row. The row is copied.
func NewHeader(r Row) Header {
	h := Header{fields: make(Row, len(r)), names: make([]string, len(r))}
	copy(h.fields, r)
	for i, f := range r {
		h.names[i] = f.String()
	}
	return h
}

// Len returns the number of header fields.
func (h Header) Len() int { return len(h.fields) }

// Fields returns the raw header values.
func (h Header) Fields() Row {
	out := make(Row, len(h.fields))
	copy(out, h.fields)
	return out
}

// Names returns the display string of every header field.
func (h Header) Names() []string {
	out := make([]string, len(h.names))
	copy(out, h.names)
	return out
}

// Name returns the display string of the field at position i.
func (h Header) Name(i int) string { return h.names[i] }

// Index resolves a field identifier to a header position. Resolution order:
//
//  1. the first header field equal to the identifier (value equality);
//  2. an integer identifier that is a valid header position;
//  3. the first header field whose display string matches the identifier's.
//
// Anything else fails with *FieldNotFoundError.
func (h Header) Index(field any) (int, error) {
	fv := value.Of(field)
	for i, f := range h.fields {
		if value.Equal(f, fv) {
			return i, nil
		}
	}
	if n, ok := fv.AsInt(); ok && n >= 0 && n < int64(len(h.fields)) {
		return int(n), nil
	}
	name := fv.String()
	for i, n := range h.names {
		if n == name {
			return i, nil
		}
	}
	return -1, &FieldNotFoundError{Field: name, Header: h.Names()}
}

// Indexes resolves several field identifiers at once.
func (h Header) Indexes(fields ...any) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		ix, err := h.Index(f)
		if err != nil {
			return nil, err
		}
		out[i] = ix
	}
	return out, nil
}

// cell returns r[i], or the null sentinel when r is too short.
func cell(r Row, i int) value.Value {
	if i < len(r) {
		return r[i]
	}
	return value.Null()
}
