// Package group emits consecutive runs of rows that share a key.
//
// RowGroupBy does not sort. Its input must already be sorted by the key (see
// order.IsOrdered); on unsorted input it still emits one group per
// contiguous run, so the same key can show up in several groups. Checking
// the precondition would cost a second pass and is left to the caller.
package group

import (
	"iter"

	"tablestat/internal/table"
	"tablestat/internal/value"
)

// Group is one run of rows sharing Key. Its values can be read once, and only
// until the enclosing sequence advances to the next group; after that Values
// yields nothing.
type Group struct {
	Key value.Value

	cur *cursor
	gen int
	get table.Getter
}

// Values yields the selected value of every row in the group, in input
// order. Stopping early is allowed; the engine skips the rest of the run.
func (g Group) Values() iter.Seq[value.Value] {
	return func(yield func(value.Value) bool) {
		c := g.cur
		if c == nil {
			return
		}
		for c.gen == g.gen && c.ok && value.Equal(c.rk, g.Key) {
			v := g.get(c.row)
			c.advance()
			if !yield(v) {
				return
			}
		}
	}
}

// Collect reads the remaining values of g into a slice.
func (g Group) Collect() []value.Value {
	var out []value.Value
	for v := range g.Values() {
		out = append(out, v)
	}
	return out
}

// cursor is a one-row lookahead over the pulled data rows, shared by the
// outer sequence and the current group.
type cursor struct {
	next func() (table.Row, bool)
	key  table.Getter

	row table.Row
	rk  value.Value // key of row
	ok  bool
	gen int
}

func (c *cursor) advance() {
	c.row, c.ok = c.next()
	if c.ok {
		c.rk = c.key(c.row)
	}
}

// RowGroupBy yields one Group per run of consecutive data rows with an equal
// key (value equality). Each group's Values apply val to its rows; the zero
// Selector yields whole rows. A field resolution or source error is yielded
// once and ends the sequence.
//
//	for g, err := range group.RowGroupBy(t, table.Field("foo"), table.Field("bar")) {
//		if err != nil { ... }
//		for v := range g.Values() { ... }
//	}
func RowGroupBy(t table.Table, key, val table.Selector) iter.Seq2[Group, error] {
	return func(yield func(Group, error) bool) {
		next, stop := iter.Pull(t.All())
		defer stop()

		hdr, _ := next()
		h := table.NewHeader(hdr)
		kg, err := key.Compile(h)
		if err != nil {
			if serr := table.Err(t); serr != nil {
				err = serr
			}
			yield(Group{}, err)
			return
		}
		vg, err := val.Compile(h)
		if err != nil {
			yield(Group{}, err)
			return
		}

		c := &cursor{next: next, key: kg}
		defer func() { c.gen = -1 }()

		c.advance()
		for c.ok {
			c.gen++
			g := Group{Key: c.rk, cur: c, gen: c.gen, get: vg}
			if !yield(g, nil) {
				return
			}
			// Skip whatever the caller left unread in this run.
			c.gen++
			for c.ok && value.Equal(c.rk, g.Key) {
				c.advance()
			}
		}
		if err := table.Err(t); err != nil {
			yield(Group{}, err)
		}
	}
}

// Materialized is a fully read group.
type Materialized struct {
	Key    value.Value   `json:"key"`
	Values []value.Value `json:"values"`
}

// Collect reads every group of RowGroupBy into memory. t must be finite.
func Collect(t table.Table, key, val table.Selector) ([]Materialized, error) {
	var out []Materialized
	for g, err := range RowGroupBy(t, key, val) {
		if err != nil {
			return nil, err
		}
		out = append(out, Materialized{Key: g.Key, Values: g.Collect()})
	}
	return out, nil
}
