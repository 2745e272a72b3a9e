// Package mysql registers the "mysql" source kind, backed by
// github.com/go-sql-driver/mysql.
package mysql

import (
	"context"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"tablestat/internal/source"
	"tablestat/internal/source/sqlsource"
)

// connect is a test hook that points to sqlsource.Connect by default.
var connect = sqlsource.Connect

func init() {
	source.Register("mysql", open)
}

// DSN validates dsn and enables time.Time scanning for DATE and DATETIME
// columns.
func DSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("dsn: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

func open(ctx context.Context, cfg source.Config) (source.Source, error) {
	dsn, err := DSN(cfg.DSN)
	if err != nil {
		return nil, err
	}
	q, err := sqlsource.Query(cfg.Query, cfg.Options)
	if err != nil {
		return nil, err
	}
	db, err := connect(ctx, "mysql", dsn)
	if err != nil {
		return nil, err
	}
	return sqlsource.New(ctx, "mysql", db, q), nil
}
