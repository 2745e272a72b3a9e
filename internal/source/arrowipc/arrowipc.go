package arrowipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"tablestat/internal/datasource"
	"tablestat/internal/datasource/httpds"
	"tablestat/internal/source"
	"tablestat/internal/table"
)

func init() {
	source.Register("arrow", func(ctx context.Context, cfg source.Config) (source.Source, error) {
		if err := checkPath(cfg.Path, true); err != nil {
			return nil, err
		}
		return NewStream(ctx, cfg.Path, httpds.Config{MaxRetries: cfg.Options.Int("http_retries", 3)}), nil
	})
	source.Register("parquet", func(ctx context.Context, cfg source.Config) (source.Source, error) {
		if err := checkPath(cfg.Path, false); err != nil {
			return nil, err
		}
		return NewParquet(ctx, cfg.Path, cfg.Options.Int("batch_size", 0)), nil
	})
}

func checkPath(p string, urlOK bool) error {
	if strings.TrimSpace(p) == "" {
		return errors.New("path must not be empty")
	}
	if datasource.IsURL(p) {
		if urlOK {
			return nil
		}
		return fmt.Errorf("%s: only local files are supported", p)
	}
	_, err := os.Stat(p)
	return err
}

// Stream is a replayable table over an Arrow IPC stream.
type Stream struct {
	source.Pass
	ctx context.Context
	loc string
	ds  datasource.Source
}

// NewStream returns a table over the IPC stream at loc.
func NewStream(ctx context.Context, loc string, cfg httpds.Config) *Stream {
	return &Stream{ctx: ctx, loc: loc, ds: datasource.ForLocation(loc, cfg)}
}

func (s *Stream) Close() error { return nil }

func (s *Stream) All() iter.Seq[table.Row] {
	return func(yield func(table.Row) bool) {
		s.Reset()
		rc, err := s.ds.Open(s.ctx)
		if err != nil {
			s.Fail(fmt.Errorf("source arrow: %w", err))
			return
		}
		defer rc.Close()

		rdr, err := ipc.NewReader(rc, ipc.WithAllocator(memory.NewGoAllocator()))
		if err != nil {
			s.Fail(fmt.Errorf("source arrow: read schema of %s: %w", s.loc, err))
			return
		}
		defer rdr.Release()

		if !yield(Header(rdr.Schema())) {
			return
		}
		for rdr.Next() {
			if err := s.ctx.Err(); err != nil {
				s.Fail(err)
				return
			}
			if !Rows(rdr.Record(), yield) {
				return
			}
		}
		if err := rdr.Err(); err != nil {
			s.Fail(fmt.Errorf("source arrow: read %s: %w", s.loc, err))
		}
	}
}

// Parquet is a replayable table over a local Parquet file, read in record
// batches.
type Parquet struct {
	source.Pass
	ctx       context.Context
	path      string
	batchSize int64
}

// NewParquet returns a table over the Parquet file at path. batchSize <= 0
// uses 64Ki rows per batch.
func NewParquet(ctx context.Context, path string, batchSize int) *Parquet {
	if batchSize <= 0 {
		batchSize = 64 * 1024
	}
	return &Parquet{ctx: ctx, path: path, batchSize: int64(batchSize)}
}

func (p *Parquet) Close() error { return nil }

func (p *Parquet) All() iter.Seq[table.Row] {
	return func(yield func(table.Row) bool) {
		p.Reset()
		pf, err := file.OpenParquetFile(p.path, false)
		if err != nil {
			p.Fail(fmt.Errorf("source parquet: open %s: %w", p.path, err))
			return
		}
		defer pf.Close()

		fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{BatchSize: p.batchSize}, memory.NewGoAllocator())
		if err != nil {
			p.Fail(fmt.Errorf("source parquet: arrow reader: %w", err))
			return
		}
		rr, err := fr.GetRecordReader(p.ctx, nil, nil)
		if err != nil {
			p.Fail(fmt.Errorf("source parquet: record reader: %w", err))
			return
		}
		defer rr.Release()

		if !yield(Header(rr.Schema())) {
			return
		}
		for rr.Next() {
			if !Rows(rr.Record(), yield) {
				return
			}
		}
		if err := rr.Err(); err != nil && !errors.Is(err, io.EOF) {
			p.Fail(fmt.Errorf("source parquet: read %s: %w", p.path, err))
		}
	}
}
