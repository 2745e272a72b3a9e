// Package columns materializes a table column by column.
package columns

import (
	"tablestat/internal/keyed"
	"tablestat/internal/table"
	"tablestat/internal/value"
)

// Set holds one value slice per header field, in header order. Every column
// has one entry per data row; short rows are padded with null and cells past
// the header are dropped.
type Set struct {
	header table.Header
	cols   [][]value.Value
}

func newSet(h table.Header) *Set {
	return &Set{header: h, cols: make([][]value.Value, h.Len())}
}

func (s *Set) add(r table.Row) {
	for i := range s.cols {
		v := value.Null()
		if i < len(r) {
			v = r[i]
		}
		s.cols[i] = append(s.cols[i], v)
	}
}

// Header returns the header the set was built from.
func (s *Set) Header() table.Header { return s.header }

// Len returns the number of columns.
func (s *Set) Len() int { return len(s.cols) }

// Rows returns the number of data rows.
func (s *Set) Rows() int {
	if len(s.cols) == 0 {
		return 0
	}
	return len(s.cols[0])
}

// Get returns the column of field, resolved like any field identifier.
func (s *Set) Get(field any) ([]value.Value, error) {
	i, err := s.header.Index(field)
	if err != nil {
		return nil, err
	}
	return s.cols[i], nil
}

// Column returns the column at position i.
func (s *Set) Column(i int) []value.Value { return s.cols[i] }

// Map returns the columns keyed by display name; with duplicate names the
// first column wins.
func (s *Set) Map() map[string][]value.Value {
	out := make(map[string][]value.Value, len(s.cols))
	for i, name := range s.header.Names() {
		if _, ok := out[name]; !ok {
			out[name] = s.cols[i]
		}
	}
	return out
}

// Table rebuilds the padded rows as a replayable table.
func (s *Set) Table() table.Table {
	rows := make([]table.Row, 0, s.Rows()+1)
	rows = append(rows, s.header.Fields())
	for j := 0; j < s.Rows(); j++ {
		r := make(table.Row, len(s.cols))
		for i := range s.cols {
			r[i] = s.cols[i][j]
		}
		rows = append(rows, r)
	}
	return table.FromValues(rows...)
}

// Columns reads t once and returns its columns.
func Columns(t table.Table) (*Set, error) {
	var set *Set
	err := table.Walk(t, func(h table.Header) error {
		set = newSet(h)
		return nil
	}, func(r table.Row) bool {
		set.add(r)
		return true
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// FacetColumns partitions the rows of t by the value of facet and returns
// the columns of each partition, facets in first-seen order.
func FacetColumns(t table.Table, facet table.Selector) (*keyed.Map[*Set], error) {
	out := keyed.New[*Set]()
	var (
		hdr table.Header
		get table.Getter
	)
	err := table.Walk(t, func(h table.Header) error {
		hdr = h
		var err error
		get, err = facet.Compile(h)
		return err
	}, func(r table.Row) bool {
		out.Update(get(r), func(s *Set, found bool) *Set {
			if !found {
				s = newSet(hdr)
			}
			s.add(r)
			return s
		})
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
