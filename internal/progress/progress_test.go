package progress

import (
	"bytes"
	"errors"
	"iter"
	"log/slog"
	"strings"
	"testing"
	"time"

	"tablestat/internal/table"
	"tablestat/internal/value"
)

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func TestWrap_PassThrough(t *testing.T) {
	t.Parallel()

	src := table.FromRows(
		[]any{"foo", "bar", "baz"},
		[]any{"a", 1, true},
		[]any{"b", 2, true},
		[]any{"b", 3},
	)
	var buf bytes.Buffer
	w := Wrap(src, Options{Every: 2, Logger: newLogger(&buf), Source: "mem"})

	n, err := table.NRows(w)
	if err != nil {
		t.Fatalf("NRows: %v", err)
	}
	if n != 3 || w.Rows() != 3 {
		t.Fatalf("NRows=%d Rows=%d; want 3", n, w.Rows())
	}

	var got, want []table.Row
	for r := range w.All() {
		got = append(got, r)
	}
	for r := range src.All() {
		want = append(want, r)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows; want %d", len(got), len(want))
	}
	for i := range want {
		if !value.Equal(value.Tuple(got[i]...), value.Tuple(want[i]...)) {
			t.Fatalf("row %d = %v; want %v", i, got[i], want[i])
		}
	}

	out := buf.String()
	if strings.Count(out, "msg=progress") != 2 {
		t.Fatalf("want one progress line per pass, got:\n%s", out)
	}
	if !strings.Contains(out, `msg="rows read"`) || !strings.Contains(out, "rows=3") {
		t.Fatalf("missing summary line:\n%s", out)
	}
}

func TestWrap_HumanizedCounts(t *testing.T) {
	t.Parallel()

	rows := []table.Row{{value.Text("n")}}
	for i := 0; i < 1500; i++ {
		rows = append(rows, table.Row{value.Int(int64(i))})
	}
	var buf bytes.Buffer
	w := Wrap(table.FromValues(rows...), Options{Logger: newLogger(&buf)})
	step := time.Unix(0, 0)
	w.now = func() time.Time { step = step.Add(time.Second); return step }

	if _, err := table.NRows(w); err != nil {
		t.Fatalf("NRows: %v", err)
	}
	if !strings.Contains(buf.String(), "rows=1,500") {
		t.Fatalf("want humanized count, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "rows_per_sec=1,500") {
		t.Fatalf("want rate over one second, got %q", buf.String())
	}
}

type failing struct{ err error }

func (f failing) All() iter.Seq[table.Row] {
	return func(yield func(table.Row) bool) {
		yield(table.Row{value.Text("h")})
	}
}

func (f failing) Err() error { return f.err }

func TestWrap_ForwardsErr(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var buf bytes.Buffer
	w := Wrap(failing{boom}, Options{Logger: newLogger(&buf)})
	if _, err := table.NRows(w); !errors.Is(err, boom) {
		t.Fatalf("err=%v; want boom", err)
	}
}

func TestWrap_Abandoned(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := Wrap(table.FromRows([]any{"x"}, []any{1}, []any{2}, []any{3}), Options{Logger: newLogger(&buf)})
	for r := range table.Data(w) {
		_ = r
		break
	}
	if w.Rows() != 1 {
		t.Fatalf("Rows=%d; want 1 after abandoning", w.Rows())
	}
	if !strings.Contains(buf.String(), "rows=1") {
		t.Fatalf("summary not logged on abandon: %q", buf.String())
	}
}
