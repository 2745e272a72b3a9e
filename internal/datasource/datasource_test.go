package datasource

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"tablestat/internal/datasource/file"
	"tablestat/internal/datasource/httpds"
)

func TestForLocation(t *testing.T) {
	t.Parallel()

	if _, ok := ForLocation("data/in.csv", httpds.Config{}).(*file.Local); !ok {
		t.Fatal("local path did not map to *file.Local")
	}
	if _, ok := ForLocation("HTTPS://example.com/a.csv", httpds.Config{}).(*httpds.Remote); !ok {
		t.Fatal("https URL did not map to *httpds.Remote")
	}
}

func TestForLocation_ReadsBoth(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "remote")
	}))
	defer srv.Close()

	p := filepath.Join(t.TempDir(), "x.csv")
	if err := os.WriteFile(p, []byte("local"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	for loc, want := range map[string]string{p: "local", srv.URL: "remote"} {
		rc, err := ForLocation(loc, httpds.Config{}).Open(context.Background())
		if err != nil {
			t.Fatalf("Open(%s): %v", loc, err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		if string(b) != want {
			t.Fatalf("Open(%s) read %q, want %q", loc, b, want)
		}
	}
}
