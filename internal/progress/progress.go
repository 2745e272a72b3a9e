// Package progress wraps a table so that reading it reports progress.
//
// The wrapper is a pass-through: it yields exactly the rows of the source,
// in order, and forwards the source's iteration error.
package progress

import (
	"iter"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"tablestat/internal/metrics"
	"tablestat/internal/table"
)

// Options configure Wrap.
type Options struct {
	// Every logs a progress line each time this many data rows have been
	// read. 0 logs only the final summary.
	Every int
	// Logger receives progress lines; nil uses slog.Default().
	Logger *slog.Logger
	// Run and Source label the rows counter in internal/metrics.
	Run    string
	Source string
}

// Counted is a table that counts the data rows of its most recent pass.
type Counted struct {
	src  table.Table
	opts Options
	rows int64
	now  func() time.Time
}

// Wrap returns a pass-through table over t that logs progress.
func Wrap(t table.Table, opts Options) *Counted {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Counted{src: t, opts: opts, now: time.Now}
}

// Rows returns the number of data rows seen by the most recent pass.
func (c *Counted) Rows() int64 { return c.rows }

// Err forwards the iteration error of the wrapped table.
func (c *Counted) Err() error { return table.Err(c.src) }

// All yields the rows of the wrapped table. A summary line is logged and the
// row count recorded when the pass ends, whether it was exhausted or
// abandoned.
func (c *Counted) All() iter.Seq[table.Row] {
	return func(yield func(table.Row) bool) {
		start := c.now()
		last := start
		var n int64
		header := true
		defer func() {
			c.rows = n
			elapsed := c.now().Sub(start)
			c.opts.Logger.Info("rows read",
				"source", c.opts.Source,
				"rows", humanize.Comma(n),
				"elapsed", elapsed.Round(time.Millisecond).String(),
				"rows_per_sec", rate(n, elapsed),
			)
			metrics.RecordRows(c.opts.Run, c.opts.Source, n)
		}()
		for r := range c.src.All() {
			if header {
				header = false
			} else {
				n++
				if c.opts.Every > 0 && n%int64(c.opts.Every) == 0 {
					now := c.now()
					c.opts.Logger.Info("progress",
						"source", c.opts.Source,
						"rows", humanize.Comma(n),
						"batch_rows_per_sec", rate(int64(c.opts.Every), now.Sub(last)),
					)
					last = now
				}
			}
			if !yield(r) {
				return
			}
		}
	}
}

func rate(n int64, d time.Duration) string {
	if d <= 0 {
		return "n/a"
	}
	return humanize.CommafWithDigits(float64(n)/d.Seconds(), 1)
}
