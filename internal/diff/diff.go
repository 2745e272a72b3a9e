// Package diff reports set differences between two tables.
//
// Results are sorted: field names lexically, values by value.Compare.
// Duplicates are reported once.
package diff

import (
	"slices"

	"tablestat/internal/keyed"
	"tablestat/internal/table"
	"tablestat/internal/value"
)

// Headers compares the field names of a and b. added holds names present
// only in b, removed names present only in a.
func Headers(a, b table.Table) (added, removed []string, err error) {
	ha, err := table.FieldNames(a)
	if err != nil {
		return nil, nil, err
	}
	hb, err := table.FieldNames(b)
	if err != nil {
		return nil, nil, err
	}
	return minus(hb, ha), minus(ha, hb), nil
}

func minus(xs, ys []string) []string {
	drop := make(map[string]struct{}, len(ys))
	for _, y := range ys {
		drop[y] = struct{}{}
	}
	var out []string
	for _, x := range xs {
		if _, ok := drop[x]; ok {
			continue
		}
		drop[x] = struct{}{}
		out = append(out, x)
	}
	slices.Sort(out)
	return out
}

// Values compares the values selected by s in a and b, resolved against each
// table's own header. added holds values present only in b, removed values
// present only in a.
func Values(a, b table.Table, s table.Selector) (added, removed []value.Value, err error) {
	va, err := valueSet(a, s)
	if err != nil {
		return nil, nil, err
	}
	vb, err := valueSet(b, s)
	if err != nil {
		return nil, nil, err
	}
	return minusValues(vb, va), minusValues(va, vb), nil
}

func valueSet(t table.Table, s table.Selector) (*keyed.Map[struct{}], error) {
	set := keyed.New[struct{}]()
	for v, err := range table.Values(t, s) {
		if err != nil {
			return nil, err
		}
		set.Set(v, struct{}{})
	}
	return set, nil
}

func minusValues(xs, ys *keyed.Map[struct{}]) []value.Value {
	var out []value.Value
	for k := range xs.All() {
		if !ys.Has(k) {
			out = append(out, k)
		}
	}
	slices.SortFunc(out, value.Compare)
	return out
}
