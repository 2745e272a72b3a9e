// Package mssql registers the "mssql" source kind, backed by
// github.com/microsoft/go-mssqldb.
package mssql

import (
	"context"
	"fmt"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"tablestat/internal/source"
	"tablestat/internal/source/sqlsource"
	"tablestat/internal/value"
)

// connect is a test hook that points to sqlsource.Connect by default.
var connect = sqlsource.Connect

func init() {
	source.Register("mssql", open)
}

func open(ctx context.Context, cfg source.Config) (source.Source, error) {
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, fmt.Errorf("dsn: %w", err)
	}
	q, err := sqlsource.Query(cfg.Query, cfg.Options)
	if err != nil {
		return nil, err
	}
	db, err := connect(ctx, "sqlserver", cfg.DSN)
	if err != nil {
		return nil, err
	}
	src := sqlsource.New(ctx, "mssql", db, q)
	src.Convert("UNIQUEIDENTIFIER", uniqueIdentifier)
	return src, nil
}

// uniqueIdentifier renders SQL Server's mixed-endian GUID bytes in the
// canonical text form.
func uniqueIdentifier(x any) value.Value {
	b, ok := x.([]byte)
	if !ok || b == nil {
		return value.Of(x)
	}
	var u mssql.UniqueIdentifier
	if err := u.Scan(b); err != nil {
		return value.Bytes(b)
	}
	return value.Text(u.String())
}
