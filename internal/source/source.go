// Package source turns external data into tables.
//
// Backends register a Factory for their kind at init time; callers open a
// source by kind without importing the backend. Import
// tablestat/internal/source/all to enable every built-in backend.
//
// A Source is a replayable table: every call to All reopens the file or
// reruns the query. Iteration failures end the pass and are reported by Err.
package source

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"tablestat/internal/config"
	"tablestat/internal/table"
)

// Config selects and configures one source.
type Config struct {
	Kind    string
	Path    string
	DSN     string
	Query   string
	Options config.Options
}

// FromConfig converts the job file representation.
func FromConfig(s config.Source) Config {
	return Config{Kind: s.Kind, Path: s.Path, DSN: s.DSN, Query: s.Query, Options: s.Options}
}

// Source is a table backed by external data.
type Source interface {
	table.Table
	table.Failer
	Close() error
}

// Factory opens a source of one kind. ctx bounds the lifetime of the
// returned Source, including later passes over it.
type Factory func(ctx context.Context, cfg Config) (Source, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// Kinds returns the registered kinds, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Open opens the source described by cfg.
func Open(ctx context.Context, cfg Config) (Source, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("source: no backend registered for kind %q", cfg.Kind)
	}
	if cfg.Options == nil {
		cfg.Options = config.Options{}
	}
	s, err := f(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", cfg.Kind, err)
	}
	return s, nil
}

// Pass tracks the error of the most recent pass over a source. Backends
// embed it.
type Pass struct {
	mu  sync.Mutex
	err error
}

// Err returns the error that ended the most recent pass.
func (p *Pass) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Reset clears the error at the start of a pass.
func (p *Pass) Reset() { p.Fail(nil) }

// Fail records err for the current pass.
func (p *Pass) Fail(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}
