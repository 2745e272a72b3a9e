// Command tablestat profiles and analyses tables from CSV, Arrow, Parquet
// and SQL sources, printing the results as JSON.
//
//	tablestat -config job.json
//	tablestat -source csv -path data.csv -op valuecounts -field foo
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"

	"tablestat/internal/config"
	"tablestat/internal/logging"
	"tablestat/internal/metrics"
	"tablestat/internal/metrics/datadog"
	"tablestat/internal/metrics/prompush"

	// register every source backend; the job selects one by kind.
	_ "tablestat/internal/source/all"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// options are the command-line flags. Non-empty flags override the job file.
type options struct {
	cfgPath   string
	kind      string
	path      string
	dsn       string
	query     string
	op        string
	fields    string
	key       string
	against   string
	logLevel  string
	logFormat string
	metrics   string
	gateway   string
	workers   int
	validate  bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("tablestat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.cfgPath, "config", "", "job config JSON path")
	fs.StringVar(&o.kind, "source", "", "source kind (csv, arrow, parquet, sqlite, postgres, mssql, mysql)")
	fs.StringVar(&o.path, "path", "", "source file path or URL")
	fs.StringVar(&o.dsn, "dsn", "", "database connection string")
	fs.StringVar(&o.query, "query", "", "SQL query for database sources")
	fs.StringVar(&o.op, "op", "", "analysis to run (profile, stats, valuecounts, ...)")
	fs.StringVar(&o.fields, "field", "", "comma-separated fields the analysis reads")
	fs.StringVar(&o.key, "key", "", "comma-separated key fields")
	fs.StringVar(&o.against, "against", "", "second file of the same kind for diffheaders/diffvalues")
	fs.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&o.logFormat, "log-format", "", "text or json")
	fs.StringVar(&o.metrics, "metrics", "", "metrics backend: none, prompush or datadog")
	fs.StringVar(&o.gateway, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	fs.IntVar(&o.workers, "workers", 0, "fields profiled in parallel")
	fs.BoolVar(&o.validate, "validate", false, "validate the job and exit")
	err := fs.Parse(args)
	return o, err
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// buildJob loads the job file, if any, and applies flag overrides.
func buildJob(o options) (config.Job, error) {
	var job config.Job
	if o.cfgPath != "" {
		var err error
		if job, err = config.Load(o.cfgPath); err != nil {
			return config.Job{}, err
		}
	} else {
		var err error
		if job, err = config.Decode([]byte(`{"name":"tablestat"}`)); err != nil {
			return config.Job{}, err
		}
	}
	if o.kind != "" {
		job.Source = config.Source{Kind: o.kind, Options: config.Options{}}
	}
	if o.path != "" {
		job.Source.Path = o.path
	}
	if o.dsn != "" {
		job.Source.DSN = o.dsn
	}
	if o.query != "" {
		job.Source.Query = o.query
	}
	if o.op != "" {
		a := config.Analysis{Op: o.op, Fields: splitList(o.fields), Key: splitList(o.key), Options: config.Options{}}
		if o.against != "" {
			a.Against = &config.Source{Kind: job.Source.Kind, Path: o.against, Options: job.Source.Options}
		}
		job.Analyses = []config.Analysis{a}
	}
	if o.logLevel != "" {
		job.Logging.Level = o.logLevel
	}
	if o.logFormat != "" {
		job.Logging.Format = o.logFormat
	}
	if o.metrics != "" {
		job.Metrics.Backend = o.metrics
	}
	if o.gateway != "" {
		job.Metrics.GatewayURL = o.gateway
	}
	if job.Metrics.GatewayURL == "" {
		job.Metrics.GatewayURL = os.Getenv("PUSHGATEWAY_URL")
	}
	if o.workers > 0 {
		job.Runtime.Workers = o.workers
	}
	return job, nil
}

// setupMetrics installs the configured backend. A backend that fails to
// initialise leaves metrics disabled.
func setupMetrics(job config.Job, runID string) {
	var (
		b   metrics.Backend
		err error
	)
	switch job.Metrics.Backend {
	case "", "none":
		return
	case "prompush":
		b, err = prompush.NewBackend(job.Name, job.Metrics.GatewayURL, runID)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       job.Metrics.Addr,
			Namespace:  job.Metrics.Namespace,
			GlobalTags: job.Metrics.Tags,
		})
	default:
		slog.Warn("unknown metrics backend; metrics disabled", "backend", job.Metrics.Backend)
		return
	}
	if err != nil {
		slog.Warn("metrics backend init failed; metrics disabled", "backend", job.Metrics.Backend, "err", err)
		return
	}
	metrics.SetBackend(b)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}
	job, err := buildJob(o)
	if err != nil {
		fmt.Fprintf(stderr, "load job: %v\n", err)
		return 1
	}

	issues := config.Validate(job)
	for _, iss := range issues {
		fmt.Fprintln(stderr, iss.Error())
	}
	if config.HasErrors(issues) {
		fmt.Fprintln(stderr, "job is invalid")
		return 1
	}
	if o.validate {
		fmt.Fprintln(stderr, "job is valid")
		return 0
	}

	slog.SetDefault(slog.New(logging.NewHandler(stderr, job.Logging.Level, job.Logging.Format)))

	runID := uuid.NewString()
	setupMetrics(job, runID)
	defer func() {
		if err := metrics.Flush(); err != nil {
			slog.Warn("metrics flush failed", "err", err)
		}
		metrics.Reset()
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	r := &runner{job: job, run: runID}
	results, err := r.Run(ctx)
	if len(results) > 0 {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if eerr := enc.Encode(results); eerr != nil {
			fmt.Fprintf(stderr, "encode results: %v\n", eerr)
			return 1
		}
	}
	if err != nil {
		slog.Error("run failed", "run_id", runID, "err", err)
		return 1
	}
	return 0
}
