// Package datasource opens the raw bytes behind file-based table sources.
//
// A location is either a local filesystem path or an http(s) URL; URLs are
// fetched with the retrying client in httpds.
package datasource

import (
	"context"
	"io"
	"strings"

	"tablestat/internal/datasource/file"
	"tablestat/internal/datasource/httpds"
)

// Source opens a fresh reader on every call, so a table built on it can be
// read more than once.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// IsURL reports whether loc names an http or https resource.
func IsURL(loc string) bool {
	l := strings.ToLower(loc)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// ForLocation returns the Source for loc. cfg is used only for URLs.
func ForLocation(loc string, cfg httpds.Config) Source {
	if IsURL(loc) {
		return httpds.NewRemote(httpds.NewClient(cfg), loc)
	}
	return file.NewLocal(loc)
}
