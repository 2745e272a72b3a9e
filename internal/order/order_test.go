package order

import (
	"errors"
	"sort"
	"testing"

	"tablestat/internal/table"
	"tablestat/internal/value"
)

func mustOrdered(t *testing.T, tbl table.Table, opts Options) bool {
	t.Helper()
	ok, err := IsOrdered(tbl, opts)
	if err != nil {
		t.Fatalf("IsOrdered: %v", err)
	}
	return ok
}

func TestIsOrdered(t *testing.T) {
	t.Parallel()

	foo := table.Field("foo")
	fooBar := table.Fields("foo", "bar")

	table1 := table.FromRows(
		[]any{"foo", "bar", "baz"},
		[]any{"a", 1, true},
		[]any{"b", 3, true},
		[]any{"b", 2},
	)
	table2 := table.FromRows(
		[]any{"foo", "bar", "baz"},
		[]any{"b", 2, true},
		[]any{"a", 1, true},
		[]any{"b", 3},
	)
	table3 := table.FromRows(
		[]any{"foo", "bar", "baz"},
		[]any{"a", 1, true},
		[]any{"b", 2, true},
		[]any{"b", 3},
	)
	table4 := table.FromRows(
		[]any{"foo", "bar", "baz"},
		[]any{"a", 1, true},
		[]any{"b", 3, true},
		[]any{"b", 2},
	)
	table5 := table.FromRows(
		[]any{"foo", "bar", "baz"},
		[]any{"b", 3, true},
		[]any{"b", 2},
		[]any{"a", 1, true},
	)

	cases := []struct {
		name string
		tbl  table.Table
		opts Options
		want bool
	}{
		{"t1 foo", table1, Options{Key: foo}, true},
		{"t1 foo reverse", table1, Options{Key: foo, Reverse: true}, false},
		{"t1 foo strict", table1, Options{Key: foo, Strict: true}, false},
		{"t2 foo", table2, Options{Key: foo}, false},
		{"t3 foo,bar", table3, Options{Key: fooBar}, true},
		{"t3 whole row", table3, Options{}, true},
		{"t4 foo,bar", table4, Options{Key: fooBar}, false},
		{"t4 whole row", table4, Options{}, false},
		{"t5 foo", table5, Options{Key: foo}, false},
		{"t5 foo reverse", table5, Options{Key: foo, Reverse: true}, true},
		{"t5 foo reverse strict", table5, Options{Key: foo, Reverse: true, Strict: true}, false},
	}
	for _, tc := range cases {
		if got := mustOrdered(t, tc.tbl, tc.opts); got != tc.want {
			t.Errorf("%s: IsOrdered=%v; want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsOrdered_Vacuous(t *testing.T) {
	t.Parallel()

	for _, tbl := range []table.Table{
		table.FromValues(),
		table.FromRows([]any{"foo"}),
		table.FromRows([]any{"foo"}, []any{"z"}),
	} {
		if !mustOrdered(t, tbl, Options{Strict: true}) {
			t.Fatalf("0/1 row tables must be ordered")
		}
	}
}

// TestIsOrdered_SortInvariance sorts a table, checks it, then reverses a
// strictly ascending table and checks it with Reverse.
func TestIsOrdered_SortInvariance(t *testing.T) {
	t.Parallel()

	rows := []table.Row{
		{value.Text("c"), value.Int(3)},
		{value.Text("a"), value.Int(1)},
		{value.Text("b"), value.Int(2)},
	}
	sort.Slice(rows, func(i, j int) bool { return value.Less(rows[i][0], rows[j][0]) })
	hdr := table.Row{value.Text("k"), value.Text("v")}
	sorted := table.FromValues(append([]table.Row{hdr}, rows...)...)
	if !mustOrdered(t, sorted, Options{Key: table.Field("k"), Strict: true}) {
		t.Fatalf("sorted table not ordered")
	}

	rev := []table.Row{hdr, rows[2], rows[1], rows[0]}
	if !mustOrdered(t, table.FromValues(rev...), Options{Key: table.Field("k"), Reverse: true, Strict: true}) {
		t.Fatalf("reversed strictly ascending table not ordered with Reverse")
	}
}

// TestIsOrdered_StopsEarly uses an infinite unsorted source.
func TestIsOrdered_StopsEarly(t *testing.T) {
	t.Parallel()

	infinite := table.Seq(func(yield func(table.Row) bool) {
		if !yield(table.Row{value.Text("n")}) {
			return
		}
		for i := int64(0); ; i++ {
			if !yield(table.Row{value.Int(-i)}) {
				return
			}
		}
	})
	if mustOrdered(t, infinite, Options{Key: table.Field("n")}) {
		t.Fatalf("descending source reported ordered")
	}
}

func TestIsOrdered_UnknownField(t *testing.T) {
	t.Parallel()

	_, err := IsOrdered(table.FromRows([]any{"foo"}, []any{1}), Options{Key: table.Field("bar")})
	if !errors.Is(err, table.ErrFieldNotFound) {
		t.Fatalf("err=%v; want ErrFieldNotFound", err)
	}
}
