// Package aggregate computes one-pass summaries over a table: value
// frequencies, numeric statistics, runtime-type tallies, parse-success
// tallies, string patterns and row lengths.
//
// Every function reads the table once, owns its accumulator and needs a
// finite table. Memory grows with the number of distinct values, not with the
// number of rows. Frequencies are count / rows tallied, so they sum to 1 over
// a non-empty result.
package aggregate

import (
	"slices"

	"tablestat/internal/keyed"
	"tablestat/internal/table"
	"tablestat/internal/value"
)

// Count is one entry of a frequency table.
type Count struct {
	Value     value.Value `json:"value"`
	Count     int         `json:"count"`
	Frequency float64     `json:"frequency"`
}

// Counts is a frequency table sorted by descending count, ties in first-seen
// order. Fields name the counted value; a multi-field count holds tuple
// values with one element per field.
type Counts struct {
	Fields []string `json:"fields"`
	Rows   []Count  `json:"rows"`
	Total  int      `json:"total"`
}

// Table renders c as a table with header (fields..., count, frequency).
// Tuple values of a multi-field count are expanded into one column each.
func (c Counts) Table() table.Table {
	hdr := make(table.Row, 0, len(c.Fields)+2)
	for _, f := range c.Fields {
		hdr = append(hdr, value.Text(f))
	}
	hdr = append(hdr, value.Text("count"), value.Text("frequency"))

	rows := []table.Row{hdr}
	for _, e := range c.Rows {
		var r table.Row
		if len(c.Fields) > 1 && e.Value.Kind() == value.KindTuple {
			r = append(r, e.Value.Elems()...)
		} else {
			r = append(r, e.Value)
		}
		r = append(r, value.Int(int64(e.Count)), value.Float(e.Frequency))
		rows = append(rows, r)
	}
	return table.FromValues(rows...)
}

// Get returns the entry for v.
func (c Counts) Get(v value.Value) (Count, bool) {
	for _, e := range c.Rows {
		if value.Equal(e.Value, v) {
			return e, true
		}
	}
	return Count{}, false
}

// tally counts classify(v) for every selected value. Values for which
// classify reports false are skipped.
func tally(t table.Table, s table.Selector, classify func(value.Value) (value.Value, bool)) (*keyed.Map[int], error) {
	counter := keyed.New[int]()
	for v, err := range table.Values(t, s) {
		if err != nil {
			return nil, err
		}
		if classify != nil {
			var ok bool
			if v, ok = classify(v); !ok {
				continue
			}
		}
		counter.Update(v, func(n int, _ bool) int { return n + 1 })
	}
	return counter, nil
}

// sorted turns a counter into a Counts table.
func sorted(fields []string, counter *keyed.Map[int]) Counts {
	out := Counts{Fields: fields, Rows: make([]Count, 0, counter.Len())}
	for v, n := range counter.All() {
		out.Rows = append(out.Rows, Count{Value: v, Count: n})
		out.Total += n
	}
	for i := range out.Rows {
		out.Rows[i].Frequency = float64(out.Rows[i].Count) / float64(out.Total)
	}
	slices.SortStableFunc(out.Rows, func(a, b Count) int { return b.Count - a.Count })
	return out
}

// ValueCounter tallies the values selected by s, in first-seen order.
func ValueCounter(t table.Table, s table.Selector) (*keyed.Map[int], error) {
	return tally(t, s, nil)
}

// ValueCounts tallies the values selected by s into a frequency table.
func ValueCounts(t table.Table, s table.Selector) (Counts, error) {
	counter, err := tally(t, s, nil)
	if err != nil {
		return Counts{}, err
	}
	return sorted(s.Names(), counter), nil
}

// ValueCount returns how many rows select v, and that count as a fraction of
// all data rows. The fraction is 0 for an empty table.
func ValueCount(t table.Table, s table.Selector, v value.Value) (int, float64, error) {
	n, total := 0, 0
	for got, err := range table.Values(t, s) {
		if err != nil {
			return 0, 0, err
		}
		total++
		if value.Equal(got, v) {
			n++
		}
	}
	if total == 0 {
		return 0, 0, nil
	}
	return n, float64(n) / float64(total), nil
}

// IsUnique reports whether no value selected by s occurs twice. It stops at
// the first repeat.
func IsUnique(t table.Table, s table.Selector) (bool, error) {
	seen := keyed.New[struct{}]()
	for v, err := range table.Values(t, s) {
		if err != nil {
			return false, err
		}
		if seen.Has(v) {
			return false, nil
		}
		seen.Set(v, struct{}{})
	}
	return true, nil
}
