package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tablestat/internal/config"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func runCLI(t *testing.T, args ...string) (int, []map[string]any, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	var results []map[string]any
	if stdout.Len() > 0 {
		if err := json.Unmarshal(stdout.Bytes(), &results); err != nil {
			t.Fatalf("decode stdout %q: %v", stdout.String(), err)
		}
	}
	return code, results, stderr.String()
}

const sampleCSV = "foo,bar,baz\na,1,x\nb,2\nb,7,y\n"

func TestRun_ValueCountsFromFlags(t *testing.T) {
	p := writeFile(t, "t.csv", sampleCSV)

	code, results, stderr := runCLI(t, "-source", "csv", "-path", p, "-op", "valuecounts", "-field", "foo")
	if code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, stderr)
	}
	if len(results) != 1 || results[0]["op"] != "valuecounts" {
		t.Fatalf("results=%v", results)
	}
	counts := results[0]["result"].(map[string]any)
	rows := counts["rows"].([]any)
	first := rows[0].(map[string]any)
	if first["value"] != "b" || first["count"] != float64(2) {
		t.Fatalf("first row=%v; want b x2", first)
	}
}

func TestRun_JobFile(t *testing.T) {
	data := writeFile(t, "t.csv", sampleCSV)
	other := writeFile(t, "u.csv", "foo,quux\nb,1\nc,2\n")

	job := map[string]any{
		"name":   "sample",
		"source": map[string]any{"kind": "csv", "path": data, "options": map[string]any{"infer": true}},
		"analyses": []any{
			map[string]any{"op": "nrows"},
			map[string]any{"op": "stats", "fields": []string{"bar"}},
			map[string]any{"op": "isordered", "key": []string{"foo"}},
			map[string]any{"op": "lookupone", "key": []string{"foo"}, "fields": []string{"bar"}},
			map[string]any{"op": "diffheaders", "against": map[string]any{"kind": "csv", "path": other}},
			map[string]any{"op": "diffvalues", "fields": []string{"foo"}, "against": map[string]any{"kind": "csv", "path": other}},
			map[string]any{"op": "profile", "options": map[string]any{"top": 1}},
		},
		"runtime": map[string]any{"workers": 2, "progress_every": 1},
	}
	b, _ := json.Marshal(job)
	cfg := writeFile(t, "job.json", string(b))

	code, results, stderr := runCLI(t, "-config", cfg, "-log-format", "json")
	if code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, stderr)
	}
	if len(results) != 7 {
		t.Fatalf("got %d results; want 7", len(results))
	}
	if results[0]["result"] != float64(3) {
		t.Fatalf("nrows=%v; want 3", results[0]["result"])
	}
	stats := results[1]["result"].(map[string]any)
	if stats["sum"] != float64(10) || stats["count"] != float64(3) {
		t.Fatalf("stats=%v", stats)
	}
	if results[2]["result"] != true {
		t.Fatalf("isordered=%v; want true", results[2]["result"])
	}
	lk := results[3]["result"].([]any)
	if len(lk) != 2 || lk[1].(map[string]any)["value"] != float64(2) {
		t.Fatalf("lookupone=%v; want b->2 (first wins)", lk)
	}
	dh := results[4]["result"].(map[string]any)
	if dh["added"].([]any)[0] != "quux" || len(dh["removed"].([]any)) != 2 {
		t.Fatalf("diffheaders=%v", dh)
	}
	dv := results[5]["result"].(map[string]any)
	if dv["added"].([]any)[0] != "c" || dv["removed"].([]any)[0] != "a" {
		t.Fatalf("diffvalues=%v", dv)
	}
	prof := results[6]["result"].(map[string]any)
	if len(prof["fields"].([]any)) != 3 || prof["run_id"] == "" {
		t.Fatalf("profile=%v", prof)
	}
	if !strings.Contains(stderr, `"msg":"rows read"`) || !strings.Contains(stderr, `"run_id"`) {
		t.Fatalf("expected JSON progress logs with run_id, got %s", stderr)
	}
}

func TestRun_SQLite(t *testing.T) {
	p := filepath.Join(t.TempDir(), "t.db")
	db, err := sql.Open("sqlite", p)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE t (foo TEXT, bar INTEGER); INSERT INTO t VALUES ('a', 1), ('b', 2), ('b', 2)`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	db.Close()

	code, results, stderr := runCLI(t, "-source", "sqlite", "-path", p, "-query", "SELECT * FROM t", "-op", "isunique", "-field", "foo,bar")
	if code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, stderr)
	}
	if results[0]["result"] != false {
		t.Fatalf("isunique=%v; want false", results[0]["result"])
	}
}

func TestRun_Failures(t *testing.T) {
	p := writeFile(t, "t.csv", sampleCSV)

	cases := []struct {
		name string
		args []string
		code int
		msg  string
	}{
		{"bad flag", []string{"-nope"}, 2, "flag provided but not defined"},
		{"invalid job", []string{"-source", "csv", "-op", "stats"}, 1, "job is invalid"},
		{"issue lines", []string{"-source", "csv", "-op", "stats"}, 1, "error at source.path"},
		{"missing config", []string{"-config", filepath.Join(t.TempDir(), "x.json")}, 1, "load job"},
		{"unknown field", []string{"-source", "csv", "-path", p, "-op", "stats", "-field", "nope"}, 1, "nope"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tc.args...)
			if code != tc.code {
				t.Fatalf("exit=%d; want %d (stderr=%s)", code, tc.code, stderr)
			}
			if !strings.Contains(stderr, tc.msg) {
				t.Fatalf("stderr %q does not mention %q", stderr, tc.msg)
			}
		})
	}
}

func TestRun_ValidateOnly(t *testing.T) {
	p := writeFile(t, "t.csv", sampleCSV)
	code, results, stderr := runCLI(t, "-validate", "-source", "csv", "-path", p, "-op", "nrows")
	if code != 0 || len(results) != 0 || !strings.Contains(stderr, "job is valid") {
		t.Fatalf("exit=%d results=%v stderr=%s", code, results, stderr)
	}
}

func TestBuildJob_FlagOverrides(t *testing.T) {
	t.Parallel()

	job, err := buildJob(options{
		kind: "csv", path: "a.csv", op: "diffheaders", fields: "foo, bar ,", against: "b.csv",
		logLevel: "debug", metrics: "prompush", gateway: "http://gw:9091", workers: 4,
	})
	if err != nil {
		t.Fatalf("buildJob: %v", err)
	}
	a := job.Analyses[0]
	if len(a.Fields) != 2 || a.Fields[1] != "bar" {
		t.Fatalf("fields=%q", a.Fields)
	}
	if a.Against == nil || a.Against.Path != "b.csv" || a.Against.Kind != "csv" {
		t.Fatalf("against=%+v", a.Against)
	}
	if job.Logging.Level != "debug" || job.Logging.Format != "text" {
		t.Fatalf("logging=%+v", job.Logging)
	}
	if job.Metrics.Backend != "prompush" || job.Metrics.GatewayURL != "http://gw:9091" || job.Runtime.Workers != 4 {
		t.Fatalf("job=%+v", job)
	}
	if issues := config.Validate(job); config.HasErrors(issues) {
		t.Fatalf("unexpected issues: %v", issues)
	}
}
