// Package profile summarises every field of a table in one report: value
// types, parse success per target type, numeric statistics, the most common
// values and the most common string shapes.
package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tablestat/internal/aggregate"
	"tablestat/internal/logging"
	"tablestat/internal/metrics"
	"tablestat/internal/parse"
	"tablestat/internal/table"
)

// DefaultTopN bounds the value and pattern lists of a field profile.
const DefaultTopN = 5

// Field is the profile of one field.
type Field struct {
	Name     string                 `json:"name"`
	Types    aggregate.Counts       `json:"types"`
	Parses   []aggregate.ParseCount `json:"parses"`
	Stats    aggregate.Summary      `json:"stats"`
	Distinct int                    `json:"distinct"`
	Unique   bool                   `json:"unique"`
	Top      []aggregate.Count      `json:"top"`
	Patterns []aggregate.Count      `json:"patterns"`
}

// Report is the profile of a table.
type Report struct {
	RunID      string                  `json:"run_id"`
	Rows       int                     `json:"rows"`
	RowLengths []aggregate.LengthCount `json:"row_lengths"`
	Fields     []Field                 `json:"fields"`
}

// Options configure Table.
type Options struct {
	// Fields to profile; empty profiles every header field.
	Fields []string
	// Workers bounds concurrent field profiles; <= 0 means 1.
	Workers int
	// TopN bounds Top and Patterns; <= 0 uses DefaultTopN.
	TopN int
	// RunID labels the report; empty generates a new UUID.
	RunID string
}

// Profile builds the profile of one field of t.
func Profile(t table.Table, field string, topN int) (Field, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}
	sel := table.Field(field)
	f := Field{Name: field}

	var err error
	if f.Types, err = aggregate.TypeCounts(t, sel); err != nil {
		return Field{}, err
	}
	if f.Parses, err = aggregate.ParseCounts(t, sel, parse.DefaultParsers()...); err != nil {
		return Field{}, err
	}
	if f.Stats, err = aggregate.Stats(t, sel); err != nil {
		return Field{}, err
	}
	counts, err := aggregate.ValueCounts(t, sel)
	if err != nil {
		return Field{}, err
	}
	f.Distinct = len(counts.Rows)
	f.Unique = f.Distinct == counts.Total
	f.Top = head(counts.Rows, topN)

	patterns, err := aggregate.StringPatterns(t, sel)
	if err != nil {
		return Field{}, err
	}
	f.Patterns = head(patterns.Rows, topN)
	return f, nil
}

func head(cs []aggregate.Count, n int) []aggregate.Count {
	if len(cs) > n {
		return cs[:n]
	}
	return cs
}

// Table profiles the fields of t concurrently. t is read once into memory
// and must be finite. Fields are reported in the requested order.
func Table(ctx context.Context, t table.Table, opts Options) (Report, error) {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	ctx = logging.WithRunID(ctx, opts.RunID)
	logger := logging.FromContext(ctx)
	start := time.Now()

	mat, err := table.Materialize(t)
	if err != nil {
		return Report{}, fmt.Errorf("profile: read table: %w", err)
	}
	fields := opts.Fields
	if len(fields) == 0 {
		if fields, err = table.FieldNames(mat); err != nil {
			return Report{}, err
		}
	}

	rep := Report{RunID: opts.RunID, Fields: make([]Field, len(fields))}
	if rep.Rows, err = table.NRows(mat); err != nil {
		return Report{}, err
	}
	if rep.RowLengths, err = aggregate.RowLengths(mat); err != nil {
		return Report{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, name := range fields {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fstart := time.Now()
			f, err := Profile(mat, name, opts.TopN)
			metrics.RecordOp(opts.RunID, "profile_field", err, time.Since(fstart))
			if err != nil {
				return fmt.Errorf("profile field %q: %w", name, err)
			}
			logger.Debug("field profiled", "field", name, "distinct", f.Distinct, "elapsed", time.Since(fstart))
			rep.Fields[i] = f
			return nil
		})
	}
	err = g.Wait()
	metrics.RecordOp(opts.RunID, "profile", err, time.Since(start))
	if err != nil {
		return Report{}, err
	}
	logger.Info("profile complete", "fields", len(fields), "rows", rep.Rows, "elapsed", time.Since(start).Round(time.Millisecond))
	return rep, nil
}
