package mysql

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"tablestat/internal/config"
	"tablestat/internal/source"
	"tablestat/internal/table"
)

func TestDSN(t *testing.T) {
	t.Parallel()

	got, err := DSN("user:pw@tcp(db:3306)/shop")
	if err != nil {
		t.Fatalf("DSN: %v", err)
	}
	if !strings.Contains(got, "parseTime=true") || !strings.Contains(got, "tcp(db:3306)/shop") {
		t.Fatalf("DSN=%q", got)
	}
	if _, err := DSN("user:pw@tcp(db:3306"); err == nil {
		t.Fatal("malformed DSN accepted")
	}
}

func TestOpen_UsesConnectHook(t *testing.T) {
	orig := connect
	t.Cleanup(func() { connect = orig })

	var gotDSN string
	connect = func(ctx context.Context, driver, dsn string) (*sql.DB, error) {
		gotDSN = dsn
		db, err := sql.Open("sqlite", ":memory:")
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(1)
		_, err = db.Exec(`CREATE TABLE orders (id INTEGER, total DECIMAL(10,2)); INSERT INTO orders VALUES (1, '9.90')`)
		return db, err
	}

	src, err := open(context.Background(), source.Config{
		Kind:    "mysql",
		DSN:     "user:pw@tcp(db:3306)/shop",
		Options: config.Options{"table": "orders"},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src.Close()
	if !strings.Contains(gotDSN, "parseTime=true") {
		t.Fatalf("dsn=%q", gotDSN)
	}
	if n, err := table.NRows(src); err != nil || n != 1 {
		t.Fatalf("NRows=%d,%v; want 1", n, err)
	}
}
