// Package sqlite registers the "sqlite" source kind, backed by the pure-Go
// modernc.org/sqlite driver.
//
// The database is cfg.DSN, or cfg.Path when no DSN is given.
package sqlite

import (
	"context"

	_ "modernc.org/sqlite"

	"tablestat/internal/source"
	"tablestat/internal/source/sqlsource"
)

func init() {
	source.Register("sqlite", open)
}

func open(ctx context.Context, cfg source.Config) (source.Source, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = cfg.Path
	}
	q, err := sqlsource.Query(cfg.Query, cfg.Options)
	if err != nil {
		return nil, err
	}
	db, err := sqlsource.Connect(ctx, "sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// In-memory databases exist per connection.
	db.SetMaxOpenConns(1)
	return sqlsource.New(ctx, "sqlite", db, q), nil
}
