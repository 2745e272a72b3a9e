package main

import (
	"context"
	"fmt"
	"time"

	"tablestat/internal/aggregate"
	"tablestat/internal/columns"
	"tablestat/internal/config"
	"tablestat/internal/diff"
	"tablestat/internal/group"
	"tablestat/internal/keyed"
	"tablestat/internal/logging"
	"tablestat/internal/lookup"
	"tablestat/internal/metrics"
	"tablestat/internal/order"
	"tablestat/internal/parse"
	"tablestat/internal/profile"
	"tablestat/internal/progress"
	"tablestat/internal/source"
	"tablestat/internal/table"
	"tablestat/internal/value"
)

// Result is the outcome of one analysis, as printed on stdout.
type Result struct {
	Op     string   `json:"op"`
	Fields []string `json:"fields,omitempty"`
	Key    []string `json:"key,omitempty"`
	Value  any      `json:"result"`
}

// Entry is one key of a lookup or facet result.
type Entry[V any] struct {
	Key   value.Value `json:"key"`
	Value V           `json:"value"`
}

// ColumnSet is the JSON form of a column cache.
type ColumnSet struct {
	Fields  []string        `json:"fields"`
	Columns [][]value.Value `json:"columns"`
}

// runner executes the analyses of one job.
type runner struct {
	job config.Job
	run string
}

// openTable opens a source and wraps it with progress reporting.
func (r *runner) openTable(ctx context.Context, sc config.Source) (table.Table, func(), error) {
	src, err := source.Open(ctx, source.FromConfig(sc))
	if err != nil {
		return nil, nil, err
	}
	t := progress.Wrap(src, progress.Options{
		Every:  r.job.Runtime.ProgressEvery,
		Logger: logging.WithFields(ctx, "kind", sc.Kind),
		Run:    r.run,
		Source: sc.Kind,
	})
	return t, func() { _ = src.Close() }, nil
}

// Run opens the job's source and executes every analysis in order. An
// analysis error stops the run.
func (r *runner) Run(ctx context.Context) ([]Result, error) {
	ctx = logging.WithRunID(ctx, r.run)
	logger := logging.FromContext(ctx)

	t, closeFn, err := r.openTable(ctx, r.job.Source)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	analyses := r.job.Analyses
	if len(analyses) == 0 {
		analyses = []config.Analysis{{Op: "nrows"}}
	}

	out := make([]Result, 0, len(analyses))
	for i, a := range analyses {
		start := time.Now()
		v, err := r.analyse(ctx, t, a)
		metrics.RecordOp(r.run, a.Op, err, time.Since(start))
		if err != nil {
			return out, fmt.Errorf("analysis %d (%s): %w", i, a.Op, err)
		}
		logger.Info("analysis done", "op", a.Op, "elapsed", time.Since(start).Round(time.Millisecond))
		out = append(out, Result{Op: a.Op, Fields: a.Fields, Key: a.Key, Value: v})
	}
	return out, nil
}

func selector(names []string) table.Selector {
	fs := make([]any, len(names))
	for i, n := range names {
		fs[i] = n
	}
	return table.Fields(fs...)
}

func entries[V any](m *keyed.Map[V]) []Entry[V] {
	out := make([]Entry[V], 0, m.Len())
	for k, v := range m.All() {
		out = append(out, Entry[V]{Key: k, Value: v})
	}
	return out
}

func columnSet(s *columns.Set) ColumnSet {
	cs := ColumnSet{Fields: s.Header().Names(), Columns: make([][]value.Value, s.Len())}
	for i := range cs.Columns {
		cs.Columns[i] = s.Column(i)
	}
	return cs
}

// parsers returns the default parsers plus one datetime parser per format
// listed in the "formats" option.
func parsers(o config.Options) []parse.Named {
	ps := parse.DefaultParsers()
	for _, f := range o.StringSlice("formats") {
		ps = append(ps, parse.Named{Name: "datetime(" + f + ")", Parse: parse.DateTime(f, true)})
	}
	return ps
}

func (r *runner) analyse(ctx context.Context, t table.Table, a config.Analysis) (any, error) {
	fields, key := selector(a.Fields), selector(a.Key)
	strict := a.Options.Bool("strict", false)

	switch a.Op {
	case "profile":
		return profile.Table(ctx, t, profile.Options{
			Fields:  a.Fields,
			Workers: r.job.Runtime.Workers,
			TopN:    a.Options.Int("top", 0),
			RunID:   r.run,
		})
	case "nrows":
		return table.NRows(t)
	case "rowlengths":
		return aggregate.RowLengths(t)
	case "columns":
		s, err := columns.Columns(t)
		if err != nil {
			return nil, err
		}
		return columnSet(s), nil
	case "isordered":
		return order.IsOrdered(t, order.Options{
			Key:     key,
			Reverse: a.Options.Bool("reverse", false),
			Strict:  strict,
		})
	case "stats":
		return aggregate.Stats(t, fields)
	case "valuecounts":
		return aggregate.ValueCounts(t, fields)
	case "isunique":
		return aggregate.IsUnique(t, fields)
	case "typecounts":
		return aggregate.TypeCounts(t, fields)
	case "typeset":
		return aggregate.TypeSet(t, fields)
	case "parsecounts":
		return aggregate.ParseCounts(t, fields, parsers(a.Options)...)
	case "patterns":
		return aggregate.StringPatterns(t, fields)
	case "lookup":
		m, err := lookup.Lookup(t, key, fields)
		if err != nil {
			return nil, err
		}
		return entries(m), nil
	case "lookupone":
		m, err := lookup.LookupOne(t, key, fields, strict)
		if err != nil {
			return nil, err
		}
		return entries(m), nil
	case "facetcolumns":
		m, err := columns.FacetColumns(t, key)
		if err != nil {
			return nil, err
		}
		out := make([]Entry[ColumnSet], 0, m.Len())
		for k, s := range m.All() {
			out = append(out, Entry[ColumnSet]{Key: k, Value: columnSet(s)})
		}
		return out, nil
	case "groups":
		return group.Collect(t, key, fields)
	case "diffheaders", "diffvalues":
		if a.Against == nil {
			return nil, fmt.Errorf("%s requires a second source", a.Op)
		}
		other, closeFn, err := r.openTable(ctx, *a.Against)
		if err != nil {
			return nil, err
		}
		defer closeFn()
		var d struct {
			Added   any `json:"added"`
			Removed any `json:"removed"`
		}
		if a.Op == "diffheaders" {
			added, removed, err := diff.Headers(t, other)
			if err != nil {
				return nil, err
			}
			d.Added, d.Removed = added, removed
		} else {
			added, removed, err := diff.Values(t, other, fields)
			if err != nil {
				return nil, err
			}
			d.Added, d.Removed = added, removed
		}
		return d, nil
	}
	return nil, fmt.Errorf("unknown op %q", a.Op)
}
