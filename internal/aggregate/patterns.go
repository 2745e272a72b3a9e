package aggregate

import (
	"slices"
	"strings"
	"unicode"

	"tablestat/internal/keyed"
	"tablestat/internal/table"
	"tablestat/internal/value"
)

// StringPattern abstracts s character by character: uppercase letters
// become 'A', lowercase letters 'a', digits '9'; everything else is kept.
//
//	StringPattern("Mr. Foo")  // "Aa. Aaa"
//	StringPattern("123-1254") // "999-9999"
func StringPattern(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			b.WriteByte('A')
		case unicode.IsLower(r):
			b.WriteByte('a')
		case unicode.IsDigit(r):
			b.WriteByte('9')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// StringPatterns tallies the patterns of the display strings of the values
// selected by s. Null values are skipped.
func StringPatterns(t table.Table, s table.Selector) (Counts, error) {
	counter, err := tally(t, s, func(v value.Value) (value.Value, bool) {
		if v.IsNull() {
			return v, false
		}
		return value.Text(StringPattern(v.String())), true
	})
	if err != nil {
		return Counts{}, err
	}
	return sorted([]string{"pattern"}, counter), nil
}

// LengthCount is one entry of a row length report.
type LengthCount struct {
	Length int `json:"length"`
	Count  int `json:"count"`
}

// RowLengths tallies the lengths of the data rows, sorted by descending
// count, ties in first-seen order.
func RowLengths(t table.Table) ([]LengthCount, error) {
	counter := keyed.New[int]()
	err := table.Walk(t, nil, func(r table.Row) bool {
		counter.Update(value.Int(int64(len(r))), func(n int, _ bool) int { return n + 1 })
		return true
	})
	if err != nil {
		return nil, err
	}
	out := make([]LengthCount, 0, counter.Len())
	for k, n := range counter.All() {
		l, _ := k.AsInt()
		out = append(out, LengthCount{Length: int(l), Count: n})
	}
	slices.SortStableFunc(out, func(a, b LengthCount) int { return b.Count - a.Count })
	return out, nil
}

// RowLengthsTable renders lcs as a table with header (length, count).
func RowLengthsTable(lcs []LengthCount) table.Table {
	rows := []table.Row{{value.Text("length"), value.Text("count")}}
	for _, lc := range lcs {
		rows = append(rows, table.Row{value.Int(int64(lc.Length)), value.Int(int64(lc.Count))})
	}
	return table.FromValues(rows...)
}
