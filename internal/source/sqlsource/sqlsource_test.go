package sqlsource

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"tablestat/internal/config"
	"tablestat/internal/table"
	"tablestat/internal/value"
)

func TestForType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		dbType string
		in     any
		want   value.Value
	}{
		{"VARCHAR", []byte("abc"), value.Text("abc")},
		{"DECIMAL", []byte("12.50"), value.Float(12.5)},
		{"NUMERIC", []byte("7"), value.Int(7)},
		{"BLOB", []byte{1}, value.Bytes([]byte{1})},
		{"INT", int64(3), value.Int(3)},
		{"TEXT", nil, value.Null()},
	}
	for _, tc := range cases {
		got := ForType(tc.dbType)(tc.in)
		if got.Kind() != tc.want.Kind() || !value.Equal(got, tc.want) {
			t.Errorf("ForType(%s)(%v)=%#v; want %#v", tc.dbType, tc.in, got, tc.want)
		}
	}
}

func TestQuery(t *testing.T) {
	t.Parallel()

	if q, _ := Query("SELECT 1", nil); q != "SELECT 1" {
		t.Fatalf("Query=%q", q)
	}
	if q, _ := Query("", config.Options{"table": "events"}); q != "SELECT * FROM events" {
		t.Fatalf("Query=%q", q)
	}
	if _, err := Query(" ", config.Options{}); err == nil {
		t.Fatal("empty query accepted")
	}
}

func TestSource_ArgsAndEarlyStop(t *testing.T) {
	t.Parallel()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE t (n INTEGER); INSERT INTO t VALUES (1),(2),(3),(4)`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	src := New(context.Background(), "sqlite", db, "SELECT n FROM t WHERE n > ? ORDER BY n", 1)
	defer src.Close()

	var first value.Value
	err = table.Walk(src, nil, func(r table.Row) bool {
		first = r[0]
		return false
	})
	if err != nil || !value.Equal(first, value.Int(2)) {
		t.Fatalf("first=%#v,%v; want 2", first, err)
	}
	// The abandoned pass released its connection, so the next one runs.
	if n, err := table.NRows(src); err != nil || n != 3 {
		t.Fatalf("NRows=%d,%v; want 3", n, err)
	}
}
