// Package postgres registers the "postgres" source kind, backed by a pgx v5
// connection pool.
package postgres

import (
	"context"
	"fmt"
	"iter"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"tablestat/internal/source"
	"tablestat/internal/source/sqlsource"
	"tablestat/internal/table"
	"tablestat/internal/value"
)

func init() {
	source.Register("postgres", open)
}

func open(ctx context.Context, cfg source.Config) (source.Source, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("dsn: %w", err)
	}
	q, err := sqlsource.Query(cfg.Query, cfg.Options)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Source{ctx: ctx, pool: pool, query: q}, nil
}

// Source is a replayable query result read through pgx.
type Source struct {
	source.Pass
	ctx   context.Context
	pool  *pgxpool.Pool
	query string
}

// Close closes the pool.
func (s *Source) Close() error {
	s.pool.Close()
	return nil
}

// All runs the query and yields its header and rows.
func (s *Source) All() iter.Seq[table.Row] {
	return func(yield func(table.Row) bool) {
		s.Reset()
		rows, err := s.pool.Query(s.ctx, s.query)
		if err != nil {
			s.Fail(fmt.Errorf("source postgres: query: %w", err))
			return
		}
		defer rows.Close()

		fds := rows.FieldDescriptions()
		header := make(table.Row, len(fds))
		for i, fd := range fds {
			header[i] = value.Text(fd.Name)
		}
		if !yield(header) {
			return
		}
		for rows.Next() {
			vals, err := rows.Values()
			if err != nil {
				s.Fail(fmt.Errorf("source postgres: values: %w", err))
				return
			}
			row := make(table.Row, len(vals))
			for i, v := range vals {
				row[i] = Convert(v)
			}
			if !yield(row) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			s.Fail(fmt.Errorf("source postgres: rows: %w", err))
		}
	}
}

// Convert maps a value decoded by pgx to a table value. NUMERIC becomes a
// number, UUID its canonical text; everything else goes through value.Of.
func Convert(x any) value.Value {
	switch t := x.(type) {
	case pgtype.Numeric:
		if !t.Valid {
			return value.Null()
		}
		return numeric(t)
	case [16]byte:
		return value.Text(uuid.UUID(t).String())
	}
	return value.Of(x)
}

func numeric(n pgtype.Numeric) value.Value {
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		f, err := n.Float64Value()
		if err != nil {
			return value.Other(n)
		}
		return value.Float(f.Float64)
	}
	if n.Int == nil {
		return value.Int(0)
	}
	if n.Exp >= 0 {
		i := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Exp)), nil)
		i.Mul(i, n.Int)
		if i.IsInt64() {
			return value.Int(i.Int64())
		}
		return value.BigInt(i)
	}
	f, err := n.Float64Value()
	if err != nil {
		return value.Other(n)
	}
	return value.Float(f.Float64)
}
