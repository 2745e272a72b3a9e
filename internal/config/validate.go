package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that should be surfaced to users but
	// does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Job.
//
// Path is a dotted path into the config (e.g. "source.kind",
// "analyses[1].fields"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether issues contains at least one SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// opRule lists what an analysis needs besides its op name.
type opRule struct {
	fields  bool // at least one field
	single  bool // exactly one field
	key     bool // at least one key field
	against bool // a second source
}

// KnownOps maps every analysis op to its requirements.
var KnownOps = map[string]opRule{
	"profile":      {},
	"nrows":        {},
	"rowlengths":   {},
	"columns":      {},
	"isordered":    {},
	"stats":        {fields: true},
	"valuecounts":  {fields: true},
	"isunique":     {fields: true},
	"typecounts":   {fields: true},
	"typeset":      {fields: true},
	"parsecounts":  {fields: true},
	"patterns":     {fields: true},
	"lookup":       {key: true},
	"lookupone":    {key: true},
	"facetcolumns": {key: true},
	"groups":       {key: true},
	"diffheaders":  {against: true},
	"diffvalues":   {fields: true, single: true, against: true},
}

// KnownSourceKinds lists the registered source kinds.
var KnownSourceKinds = []string{"csv", "arrow", "parquet", "sqlite", "postgres", "mssql", "mysql"}

// Validate performs static validation of a Job. It does not mutate the job;
// callers decide whether warnings are fatal.
//
//	issues := config.Validate(job)
//	for _, iss := range issues {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func Validate(j Job) []Issue {
	var issues []Issue

	if strings.TrimSpace(j.Name) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "name",
			Message:  "name is empty; runs will be labeled by run ID only",
		})
	}
	issues = append(issues, validateSource("source", j.Source)...)
	issues = append(issues, validateAnalyses(j.Analyses)...)
	issues = append(issues, validateRuntime(j.Runtime)...)
	issues = append(issues, validateLogging(j.Logging)...)
	issues = append(issues, validateMetrics(j.Metrics)...)
	return issues
}

func validateSource(path string, s Source) []Issue {
	var issues []Issue

	kind := strings.TrimSpace(s.Kind)
	if kind == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".kind",
			Message:  path + ".kind must not be empty",
		})
	}

	switch kind {
	case "csv", "arrow", "parquet":
		if strings.TrimSpace(s.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".path",
				Message:  kind + " source requires a non-empty path",
			})
		}
		if s.Query != "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".query",
				Message:  kind + " source ignores query",
			})
		}
	case "sqlite":
		if strings.TrimSpace(s.Path) == "" && strings.TrimSpace(s.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".dsn",
				Message:  "sqlite source requires a path or dsn",
			})
		}
		issues = append(issues, requireQuery(path, s)...)
	case "postgres", "mssql", "mysql":
		if strings.TrimSpace(s.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".dsn",
				Message:  kind + " source requires a dsn",
			})
		}
		issues = append(issues, requireQuery(path, s)...)
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     path + ".kind",
			Message:  fmt.Sprintf("unknown source kind %q; ensure a matching implementation is registered", kind),
		})
	}
	return issues
}

func requireQuery(path string, s Source) []Issue {
	if strings.TrimSpace(s.Query) != "" || s.Options.String("table", "") != "" {
		return nil
	}
	return []Issue{{
		Severity: SeverityError,
		Path:     path + ".query",
		Message:  s.Kind + " source requires a query or options.table",
	}}
}

func validateAnalyses(as []Analysis) []Issue {
	var issues []Issue

	if len(as) == 0 {
		return append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "analyses",
			Message:  "no analyses configured; only the row count will be reported",
		})
	}

	for i, a := range as {
		base := fmt.Sprintf("analyses[%d]", i)
		rule, ok := KnownOps[a.Op]
		if !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".op",
				Message:  fmt.Sprintf("unknown op %q", a.Op),
			})
			continue
		}
		if rule.fields && len(a.Fields) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".fields",
				Message:  a.Op + " requires at least one field",
			})
		}
		if rule.single && len(a.Fields) > 1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".fields",
				Message:  a.Op + " takes exactly one field",
			})
		}
		if rule.key && len(a.Key) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".key",
				Message:  a.Op + " requires a key",
			})
		}
		if rule.against {
			if a.Against == nil {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     base + ".against",
					Message:  a.Op + " requires a second source",
				})
			} else {
				issues = append(issues, validateSource(base+".against", *a.Against)...)
			}
		}
		for j, f := range append(append([]string{}, a.Fields...), a.Key...) {
			if strings.TrimSpace(f) == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     fmt.Sprintf("%s.fields[%d]", base, j),
					Message:  "field names must not be empty",
				})
			}
		}
	}
	return issues
}

func validateRuntime(r Runtime) []Issue {
	var issues []Issue
	if r.Workers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.workers",
			Message:  "workers must not be negative",
		})
	}
	if r.ProgressEvery < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.progress_every",
			Message:  "progress_every must not be negative",
		})
	}
	return issues
}

func validateLogging(l Logging) []Issue {
	var issues []Issue
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "logging.level",
			Message:  fmt.Sprintf("unknown level %q; info is used", l.Level),
		})
	}
	switch strings.ToLower(l.Format) {
	case "", "text", "json":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "logging.format",
			Message:  fmt.Sprintf("unknown format %q; text is used", l.Format),
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Backend {
	case "", "none":
	case "prompush":
		if strings.TrimSpace(m.GatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.gateway_url",
				Message:  "prompush backend requires gateway_url",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.Addr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.addr",
				Message:  "datadog backend requires addr",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q", m.Backend),
		})
	}
	return issues
}
