package aggregate

import (
	"slices"

	"tablestat/internal/parse"
	"tablestat/internal/table"
	"tablestat/internal/value"
)

// TypeCounts tallies the runtime kinds of the values selected by s. The
// result has a single "type" column holding kind names such as "int",
// "text" or "null".
func TypeCounts(t table.Table, s table.Selector) (Counts, error) {
	counter, err := tally(t, s, kindOf)
	if err != nil {
		return Counts{}, err
	}
	return sorted([]string{"type"}, counter), nil
}

// TypeSet returns the distinct kinds of the values selected by s, in
// first-seen order.
func TypeSet(t table.Table, s table.Selector) ([]value.Kind, error) {
	var (
		seen [value.KindOther + 1]bool
		out  []value.Kind
	)
	for v, err := range table.Values(t, s) {
		if err != nil {
			return nil, err
		}
		if k := v.Kind(); !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out, nil
}

// ParseCount records how often one parser succeeded and failed.
type ParseCount struct {
	Type   string `json:"type"`
	Count  int    `json:"count"`
	Errors int    `json:"errors"`
}

// ParseCounts tries every parser on every text or bytes value selected by s
// and tallies successes and failures per parser. Other kinds are skipped.
// With no parsers, parse.DefaultParsers is used. The result is sorted by
// descending success count, ties in parser order.
func ParseCounts(t table.Table, s table.Selector, parsers ...parse.Named) ([]ParseCount, error) {
	if len(parsers) == 0 {
		parsers = parse.DefaultParsers()
	}
	out := make([]ParseCount, len(parsers))
	for i, p := range parsers {
		out[i].Type = p.Name
	}
	for v, err := range table.Values(t, s) {
		if err != nil {
			return nil, err
		}
		if k := v.Kind(); k != value.KindText && k != value.KindBytes {
			continue
		}
		for i, p := range parsers {
			if _, err := p.Parse(v); err != nil {
				out[i].Errors++
			} else {
				out[i].Count++
			}
		}
	}
	slices.SortStableFunc(out, func(a, b ParseCount) int { return b.Count - a.Count })
	return out, nil
}

// kindOf classifies v for type reports.
func kindOf(v value.Value) (value.Value, bool) {
	return value.Text(v.Kind().String()), true
}

// ParseCountsTable renders pcs as a table with header (type, count, errors).
func ParseCountsTable(pcs []ParseCount) table.Table {
	rows := []table.Row{{value.Text("type"), value.Text("count"), value.Text("errors")}}
	for _, pc := range pcs {
		rows = append(rows, table.Row{value.Text(pc.Type), value.Int(int64(pc.Count)), value.Int(int64(pc.Errors))})
	}
	return table.FromValues(rows...)
}
