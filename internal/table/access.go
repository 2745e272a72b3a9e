package table

import (
	"errors"
	"iter"

	"tablestat/internal/value"
)

// errStop ends a Walk early without reporting an error.
var errStop = errors.New("stop")

// HeaderOf returns the header of t, reading only its first row.
func HeaderOf(t Table) (Header, error) {
	var h Header
	err := Walk(t, func(hh Header) error {
		h = hh
		return errStop
	}, nil)
	if err != nil && !errors.Is(err, errStop) {
		return Header{}, err
	}
	return h, nil
}

// FieldNames returns the display names of the header fields.
func FieldNames(t Table) ([]string, error) {
	h, err := HeaderOf(t)
	if err != nil {
		return nil, err
	}
	return h.Names(), nil
}

// Data yields the data rows of t, skipping the header.
func Data(t Table) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		first := true
		for r := range t.All() {
			if first {
				first = false
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// NRows counts the data rows of t.
func NRows(t Table) (int, error) {
	n := 0
	err := Walk(t, nil, func(Row) bool { n++; return true })
	return n, err
}

// Values yields s applied to every data row. A header resolution or
// iteration error is yielded once and ends the sequence.
func Values(t Table, s Selector) iter.Seq2[value.Value, error] {
	return func(yield func(value.Value, error) bool) {
		var get Getter
		stopped := false
		err := Walk(t, func(h Header) error {
			var err error
			get, err = s.Compile(h)
			return err
		}, func(r Row) bool {
			if !yield(get(r), nil) {
				stopped = true
				return false
			}
			return true
		})
		if err != nil && !stopped {
			yield(value.Null(), err)
		}
	}
}

// Records yields a Record for every data row.
func Records(t Table) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		var hdr Header
		stopped := false
		err := Walk(t, func(h Header) error {
			hdr = h
			return nil
		}, func(r Row) bool {
			if !yield(NewRecord(hdr, r), nil) {
				stopped = true
				return false
			}
			return true
		})
		if err != nil && !stopped {
			yield(Record{}, err)
		}
	}
}

// Dicts yields every data row as a field-name keyed map, padded with null.
func Dicts(t Table) iter.Seq2[map[string]value.Value, error] {
	return func(yield func(map[string]value.Value, error) bool) {
		for rec, err := range Records(t) {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(rec.Map(), nil) {
				return
			}
		}
	}
}
