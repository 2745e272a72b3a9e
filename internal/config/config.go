// Package config defines the JSON-serializable job model for tablestat: which
// source to read, which analyses to run over it, and the runtime, logging and
// metrics settings of the run.
//
// Decoding is done by encoding/json; source- and analysis-specific settings
// live in a free-form Options bag with typed getters.
//
// Example (trimmed):
//
//	{
//	  "name":   "vehicles",
//	  "source": { "kind": "csv", "path": "testdata/vehicles.csv",
//	              "options": { "comma": ";", "infer": true } },
//	  "analyses": [
//	    { "op": "profile" },
//	    { "op": "valuecounts", "fields": ["make", "model"] },
//	    { "op": "isordered", "key": ["vin"], "options": { "strict": true } }
//	  ],
//	  "runtime": { "workers": 4, "progress_every": 100000 },
//	  "metrics": { "backend": "prompush", "gateway_url": "http://pushgateway:9091" }
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Job is the top-level object decoded from a job file.
type Job struct {
	// Name labels the run in logs and metrics.
	Name string `json:"name"`

	// Source describes where the table comes from.
	Source Source `json:"source"`

	// Analyses run in order over the source table.
	Analyses []Analysis `json:"analyses"`

	Runtime Runtime `json:"runtime"`
	Logging Logging `json:"logging"`
	Metrics Metrics `json:"metrics"`
}

// Source identifies a table source registered in internal/source.
type Source struct {
	// Kind selects the source implementation: csv, sqlite, postgres, mssql,
	// mysql or arrow.
	Kind string `json:"kind"`

	// Path is a local file path (csv, arrow, sqlite).
	Path string `json:"path,omitempty"`

	// DSN is a database connection string (postgres, mssql, mysql, sqlite).
	DSN string `json:"dsn,omitempty"`

	// Query is the SQL statement whose result set becomes the table.
	Query string `json:"query,omitempty"`

	// Options is interpreted by the source implementation. For CSV:
	//   comma (string), lazy_quotes (bool), trim_space (bool),
	//   normalize_header (bool), infer (bool)
	Options Options `json:"options"`
}

// Analysis is one operation to run over the source table.
type Analysis struct {
	// Op selects the analysis, see KnownOps.
	Op string `json:"op"`

	// Fields selects the analysed value. Empty means the whole row where the
	// op allows it.
	Fields []string `json:"fields,omitempty"`

	// Key selects the key for lookup, isordered and facet columns.
	Key []string `json:"key,omitempty"`

	// Against is the second table for diffheaders and diffvalues.
	Against *Source `json:"against,omitempty"`

	// Options is interpreted by the analysis (strict, reverse, top, ...).
	Options Options `json:"options"`
}

// Runtime controls concurrency and progress reporting.
type Runtime struct {
	// Workers bounds the number of fields profiled in parallel.
	Workers int `json:"workers"`

	// ProgressEvery logs a progress line every N rows read from the source;
	// 0 disables progress logging.
	ProgressEvery int `json:"progress_every"`
}

// Logging configures the slog handler.
type Logging struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // text or json
}

// Metrics selects and configures the metrics backend.
type Metrics struct {
	// Backend is "none" (default), "prompush" or "datadog".
	Backend string `json:"backend"`

	// GatewayURL is the Pushgateway base URL for prompush.
	GatewayURL string `json:"gateway_url,omitempty"`

	// Addr is the DogStatsD address for datadog.
	Addr string `json:"addr,omitempty"`

	// Namespace prefixes Datadog metric names.
	Namespace string `json:"namespace,omitempty"`

	// Tags are global Datadog tags ("env:prod").
	Tags []string `json:"tags,omitempty"`
}

// Load reads and decodes a job file. Unknown fields are rejected so typos in
// hand-written job files surface early.
func Load(path string) (Job, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Job{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Decode(b)
}

// Decode decodes a job from JSON bytes and applies defaults.
func Decode(b []byte) (Job, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var j Job
	if err := dec.Decode(&j); err != nil {
		return Job{}, fmt.Errorf("config: decode job: %w", err)
	}
	j.applyDefaults()
	return j, nil
}

func (j *Job) applyDefaults() {
	if j.Runtime.Workers == 0 {
		j.Runtime.Workers = 1
	}
	if j.Logging.Level == "" {
		j.Logging.Level = "info"
	}
	if j.Logging.Format == "" {
		j.Logging.Format = "text"
	}
	if j.Metrics.Backend == "" {
		j.Metrics.Backend = "none"
	}
	if j.Source.Options == nil {
		j.Source.Options = Options{}
	}
	for i := range j.Analyses {
		if j.Analyses[i].Options == nil {
			j.Analyses[i].Options = Options{}
		}
	}
}

// Options is a small helper to fetch typed values from arbitrary JSON maps.
// It performs only minimal type coercion and returns provided defaults when a
// key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to int.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. Used for single-character settings such as a CSV
// delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringSlice returns a []string for key when the value is an array of
// strings. Returns nil when the key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// UnmarshalJSON makes a missing or null "options" object decode to a
// non-nil, empty Options map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
