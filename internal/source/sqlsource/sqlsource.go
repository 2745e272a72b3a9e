// Package sqlsource exposes the result set of a database/sql query as a
// table. Backends open the *sql.DB with their driver and hand it over.
//
// The header is the column names; every result row is one data row. Driver
// values are converted with value.Of, except that []byte is read as text for
// character columns and as a number for DECIMAL/NUMERIC columns.
package sqlsource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"tablestat/internal/config"
	"tablestat/internal/parse"
	"tablestat/internal/source"
	"tablestat/internal/table"
	"tablestat/internal/value"
)

// Connect opens db with driver and pings it with a short timeout.
func Connect(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("DSN must not be empty")
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

// Query returns the statement configured for a SQL source: cfg.Query, or
// SELECT * over the "table" option.
func Query(q string, opts config.Options) (string, error) {
	if strings.TrimSpace(q) != "" {
		return q, nil
	}
	if t := opts.String("table", ""); t != "" {
		return "SELECT * FROM " + t, nil
	}
	return "", errors.New("query or options.table is required")
}

// Source is a replayable query result.
type Source struct {
	source.Pass
	ctx   context.Context
	kind  string
	db    *sql.DB
	query string
	args  []any
	extra map[string]converter
}

// New returns a table over query on db. The Source owns db and closes it on
// Close.
func New(ctx context.Context, kind string, db *sql.DB, query string, args ...any) *Source {
	return &Source{ctx: ctx, kind: kind, db: db, query: query, args: args}
}

// Convert overrides the conversion for columns of the given database type.
func (s *Source) Convert(dbType string, fn func(any) value.Value) {
	if s.extra == nil {
		s.extra = map[string]converter{}
	}
	s.extra[strings.ToUpper(dbType)] = fn
}

// DB returns the underlying handle.
func (s *Source) DB() *sql.DB { return s.db }

// Close closes the database handle.
func (s *Source) Close() error { return s.db.Close() }

// All runs the query and yields its header and rows.
func (s *Source) All() iter.Seq[table.Row] {
	return func(yield func(table.Row) bool) {
		s.Reset()
		rows, err := s.db.QueryContext(s.ctx, s.query, s.args...)
		if err != nil {
			s.Fail(fmt.Errorf("source %s: query: %w", s.kind, err))
			return
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			s.Fail(fmt.Errorf("source %s: columns: %w", s.kind, err))
			return
		}
		conv := s.converters(rows, len(cols))

		header := make(table.Row, len(cols))
		for i, c := range cols {
			header[i] = value.Text(c)
		}
		if !yield(header) {
			return
		}

		dest := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		for rows.Next() {
			if err := rows.Scan(ptrs...); err != nil {
				s.Fail(fmt.Errorf("source %s: scan: %w", s.kind, err))
				return
			}
			row := make(table.Row, len(cols))
			for i, d := range dest {
				row[i] = conv[i](d)
			}
			if !yield(row) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			s.Fail(fmt.Errorf("source %s: rows: %w", s.kind, err))
		}
	}
}

type converter func(any) value.Value

func (s *Source) converters(rows *sql.Rows, n int) []converter {
	out := make([]converter, n)
	for i := range out {
		out[i] = value.Of
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return out
	}
	for i, ct := range types {
		name := strings.ToUpper(ct.DatabaseTypeName())
		if fn, ok := s.extra[name]; ok {
			out[i] = fn
			continue
		}
		out[i] = ForType(name)
	}
	return out
}

// ForType picks the conversion for a column of the given database type.
func ForType(dbType string) func(any) value.Value {
	t := strings.ToUpper(dbType)
	switch {
	case strings.Contains(t, "BLOB"), strings.Contains(t, "BINARY"),
		t == "BYTEA", t == "IMAGE":
		return value.Of
	case strings.Contains(t, "DECIMAL"), strings.Contains(t, "NUMERIC"), t == "MONEY":
		number := parse.Number(false)
		return func(x any) value.Value {
			v, _ := number(bytesAsText(x))
			return v
		}
	}
	return bytesAsText
}

func bytesAsText(x any) value.Value {
	if b, ok := x.([]byte); ok && b != nil {
		return value.Text(string(b))
	}
	return value.Of(x)
}
