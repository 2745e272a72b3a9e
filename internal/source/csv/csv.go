// Package csv reads delimited text files as tables.
//
// The first record is the header unless has_header is false, in which case
// fields are named col_0, col_1, ... Records may vary in width; short and
// long rows are kept as read. Cells are text unless infer is set, which
// converts numeric-looking cells with the lenient number parser.
//
// Paths may be local files or http(s) URLs.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"tablestat/internal/config"
	"tablestat/internal/datasource"
	"tablestat/internal/datasource/httpds"
	"tablestat/internal/parse"
	"tablestat/internal/source"
	"tablestat/internal/table"
	"tablestat/internal/value"
)

const utf8BOM = "\uFEFF"

func init() {
	source.Register("csv", func(ctx context.Context, cfg source.Config) (source.Source, error) {
		if strings.TrimSpace(cfg.Path) == "" {
			return nil, errors.New("path must not be empty")
		}
		if !datasource.IsURL(cfg.Path) {
			if _, err := os.Stat(cfg.Path); err != nil {
				return nil, err
			}
		}
		opts, err := OptionsFrom(cfg.Options)
		if err != nil {
			return nil, err
		}
		return New(ctx, cfg.Path, opts), nil
	})
}

// Options configure the reader.
type Options struct {
	Comma           rune
	LazyQuotes      bool
	TrimSpace       bool
	HasHeader       bool
	NormalizeHeader bool
	Infer           bool
	EmptyAsNull     bool
	// Encoding names the input charset (WHATWG labels such as
	// "windows-1250"); empty means UTF-8.
	Encoding string
	HTTP     httpds.Config
}

// DefaultOptions returns comma-separated input with a header row.
func DefaultOptions() Options {
	return Options{Comma: ',', HasHeader: true}
}

// OptionsFrom reads Options from a job's options bag.
func OptionsFrom(o config.Options) (Options, error) {
	opts := Options{
		Comma:           o.Rune("comma", ','),
		LazyQuotes:      o.Bool("lazy_quotes", false),
		TrimSpace:       o.Bool("trim_space", false),
		HasHeader:       o.Bool("has_header", true),
		NormalizeHeader: o.Bool("normalize_header", false),
		Infer:           o.Bool("infer", false),
		EmptyAsNull:     o.Bool("empty_as_null", false),
		Encoding:        o.String("encoding", ""),
		HTTP: httpds.Config{
			MaxRetries:         o.Int("http_retries", 3),
			InsecureSkipVerify: o.Bool("insecure_skip_verify", false),
		},
	}
	if s := o.String("http_timeout", ""); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return Options{}, fmt.Errorf("http_timeout: %w", err)
		}
		opts.HTTP.Timeout = d
	}
	if opts.Encoding != "" {
		if _, err := htmlindex.Get(opts.Encoding); err != nil {
			return Options{}, fmt.Errorf("encoding %q: %w", opts.Encoding, err)
		}
	}
	return opts, nil
}

// Source is a replayable CSV table.
type Source struct {
	source.Pass
	ctx  context.Context
	loc  string
	ds   datasource.Source
	opts Options
}

// New returns a CSV table over loc. ctx bounds every pass.
func New(ctx context.Context, loc string, opts Options) *Source {
	if opts.Comma == 0 {
		opts.Comma = ','
	}
	return &Source{ctx: ctx, loc: loc, ds: datasource.ForLocation(loc, opts.HTTP), opts: opts}
}

// Close is a no-op; every pass closes its own reader.
func (s *Source) Close() error { return nil }

// All reads the file from the start.
func (s *Source) All() iter.Seq[table.Row] {
	return func(yield func(table.Row) bool) {
		s.Reset()
		rc, err := s.ds.Open(s.ctx)
		if err != nil {
			s.Fail(fmt.Errorf("source csv: %w", err))
			return
		}
		defer rc.Close()

		var r io.Reader = rc
		if s.opts.Encoding != "" {
			enc, _ := htmlindex.Get(s.opts.Encoding)
			r = transform.NewReader(rc, enc.NewDecoder())
		}
		cr := csv.NewReader(r)
		cr.Comma = s.opts.Comma
		cr.LazyQuotes = s.opts.LazyQuotes
		cr.FieldsPerRecord = -1

		toValue := s.cellConverter()
		first := true
		for n := 1; ; n++ {
			if err := s.ctx.Err(); err != nil {
				s.Fail(err)
				return
			}
			rec, err := cr.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				s.Fail(fmt.Errorf("source csv: read record %d of %s: %w", n, s.loc, err))
				return
			}
			if first {
				first = false
				if len(rec) > 0 {
					rec[0] = strings.TrimPrefix(rec[0], utf8BOM)
				}
				if s.opts.HasHeader {
					if !yield(s.header(rec)) {
						return
					}
					continue
				}
				if !yield(syntheticHeader(len(rec))) {
					return
				}
			}
			row := make(table.Row, len(rec))
			for i, c := range rec {
				row[i] = toValue(c)
			}
			if !yield(row) {
				return
			}
		}
	}
}

func (s *Source) header(rec []string) table.Row {
	row := make(table.Row, len(rec))
	for i, h := range rec {
		if s.opts.NormalizeHeader {
			h = NormalizeFieldName(h)
		} else if s.opts.TrimSpace {
			h = strings.TrimSpace(h)
		}
		row[i] = value.Text(h)
	}
	return row
}

func (s *Source) cellConverter() func(string) value.Value {
	number := parse.Number(false)
	trim, infer, empty := s.opts.TrimSpace, s.opts.Infer, s.opts.EmptyAsNull
	return func(c string) value.Value {
		if trim {
			c = strings.TrimSpace(c)
		}
		if empty && c == "" {
			return value.Null()
		}
		v := value.Text(c)
		if infer {
			v, _ = number(v)
		}
		return v
	}
}

func syntheticHeader(n int) table.Row {
	row := make(table.Row, n)
	for i := range row {
		row[i] = value.Text(fmt.Sprintf("col_%d", i))
	}
	return row
}

// NormalizeFieldName folds a header cell to a lower-case ASCII identifier:
// accents are removed, runs of separators become one underscore, and
// anything else is dropped. An empty result becomes "col".
func NormalizeFieldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, _ := transform.String(t, s)

	var b strings.Builder
	sep := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			sep = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !sep {
				b.WriteByte('_')
				sep = true
			}
		}
	}
	if name := strings.Trim(b.String(), "_"); name != "" {
		return name
	}
	return "col"
}
