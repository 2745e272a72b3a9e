package aggregate

import (
	"encoding/json"
	"math"

	"tablestat/internal/parse"
	"tablestat/internal/table"
)

// Summary holds basic statistics over the numeric values of a field.
//
// Min, Max, Mean, Variance and StdDev are NaN when Count is 0. Variance is
// the population variance.
type Summary struct {
	Min      float64
	Max      float64
	Sum      float64
	Count    int
	Errors   int
	Mean     float64
	Variance float64
	StdDev   float64
}

// Stats summarises the values selected by s. Each value goes through the
// non-strict number parser; ints and floats are counted, anything else
// (null, unparseable text, complex numbers, booleans) counts as an error.
func Stats(t table.Table, s table.Selector) (Summary, error) {
	num := parse.Number(false)
	var (
		out Summary
		m2  float64
	)
	out.Min, out.Max = math.Inf(1), math.Inf(-1)
	for v, err := range table.Values(t, s) {
		if err != nil {
			return Summary{}, err
		}
		p, _ := num(v)
		if !p.Kind().IsNumeric() {
			out.Errors++
			continue
		}
		f, _ := p.AsFloat()
		out.Count++
		out.Sum += f
		out.Min = math.Min(out.Min, f)
		out.Max = math.Max(out.Max, f)
		// Welford's running mean and squared deviation.
		d := f - out.Mean
		out.Mean += d / float64(out.Count)
		m2 += d * (f - out.Mean)
	}
	if out.Count == 0 {
		nan := math.NaN()
		out.Min, out.Max, out.Mean, out.Variance, out.StdDev = nan, nan, nan, nan, nan
		return out, nil
	}
	out.Mean = out.Sum / float64(out.Count)
	out.Variance = m2 / float64(out.Count)
	out.StdDev = math.Sqrt(out.Variance)
	return out, nil
}

// Valid reports whether at least one numeric value was seen.
func (s Summary) Valid() bool { return s.Count > 0 }

// MarshalJSON writes NaN statistics as null.
func (s Summary) MarshalJSON() ([]byte, error) {
	num := func(f float64) *float64 {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return &f
	}
	return json.Marshal(struct {
		Min      *float64 `json:"min"`
		Max      *float64 `json:"max"`
		Sum      float64  `json:"sum"`
		Count    int      `json:"count"`
		Errors   int      `json:"errors"`
		Mean     *float64 `json:"mean"`
		Variance *float64 `json:"variance"`
		StdDev   *float64 `json:"stddev"`
	}{num(s.Min), num(s.Max), s.Sum, s.Count, s.Errors, num(s.Mean), num(s.Variance), num(s.StdDev)})
}
