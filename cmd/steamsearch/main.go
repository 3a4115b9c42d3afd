package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-steam-search/config"
	"github.com/aluiziolira/go-steam-search/models"
	"github.com/aluiziolira/go-steam-search/parser"
	"github.com/aluiziolira/go-steam-search/pipeline"
	"github.com/aluiziolira/go-steam-search/steam"
)

const prompt = "Enter Steam search query: "

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment: %v\n", err)
		os.Exit(1)
	}

	query := flag.String("query", "", "Search query; read from stdin when empty")
	details := flag.Bool("details", false, "Resolve store details for every match")
	catalogURL := flag.String("catalog-url", cfg.CatalogURL, "App list endpoint")
	detailURL := flag.String("detail-url", cfg.DetailURL, "App details endpoint")
	timeout := flag.Duration("timeout", cfg.Timeout, "Per-request timeout")
	language := flag.String("lang", cfg.Language, "Store language for details (e.g. english)")
	country := flag.String("cc", cfg.CountryCode, "Store country code for details (e.g. us)")
	outputFile := flag.String("output", cfg.OutputFile, "Export resolved details to this file (requires -details)")
	outputFormat := flag.String("format", cfg.OutputFormat, "Output format: csv, json, or dual")
	metricsAddr := flag.String("metrics-addr", cfg.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg.CatalogURL = *catalogURL
	cfg.DetailURL = *detailURL
	cfg.Timeout = *timeout
	cfg.Language = *language
	cfg.CountryCode = *country
	cfg.Details = *details
	cfg.OutputFile = *outputFile
	cfg.OutputFormat = strings.ToLower(*outputFormat)
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	client, err := steam.NewClient(cfg)
	if err != nil {
		slog.Error("initialising client", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           newMetricsRouter(client.Metrics.Registry),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown failed", slog.Any("error", err))
			}
		}()
	}

	q := *query
	if q == "" {
		q, err = readQuery(os.Stdin, os.Stdout)
		if err != nil {
			slog.Error("reading query", slog.Any("error", err))
			os.Exit(1)
		}
	}

	catalog, err := client.FetchCatalog(ctx)
	if err != nil {
		slog.Error("fetching catalog failed", slog.Any("error", err))
		os.Exit(1)
	}

	if !cfg.Details {
		printNames(os.Stdout, steam.MatchEntries(catalog, q))
		return
	}

	start := time.Now()
	results, err := client.DetailsFor(ctx, catalog, q)
	if err != nil {
		slog.Warn("detail resolution interrupted", slog.Any("error", err))
	}
	slog.Info("details resolved",
		slog.Int("candidates", len(steam.FindByNameSubstring(catalog, q))),
		slog.Int("resolved", len(results)),
		slog.Duration("duration", time.Since(start)),
	)
	printDetails(os.Stdout, results)

	if cfg.OutputFile != "" {
		if err := export(cfg, results); err != nil {
			slog.Error("export failed", slog.Any("error", err))
			os.Exit(1)
		}
		slog.Info("details exported", slog.String("file", cfg.OutputFile), slog.String("format", cfg.OutputFormat))
	}
}

// readQuery prompts on w and reads one line from r. A closed input yields
// whatever was read, possibly the empty query.
func readQuery(r io.Reader, w io.Writer) (string, error) {
	fmt.Fprint(w, prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return strings.TrimSpace(line), nil
}

func printNames(w io.Writer, entries []models.CatalogEntry) {
	for _, entry := range entries {
		fmt.Fprintln(w, parser.NormalizeName(entry.Name))
	}
}

func printDetails(w io.Writer, details []*models.AppDetail) {
	separator := "--------------------------------------------------"
	for _, d := range details {
		id := "?"
		if d.AppID != nil {
			id = strconv.FormatUint(*d.AppID, 10)
		}
		fmt.Fprintf(w, "%s (%s)\n", parser.NormalizeName(d.Name), id)
		if d.IsFree != nil {
			fmt.Fprintf(w, "  Free:          %t\n", *d.IsFree)
		}
		if d.RequiredAge.Valid {
			fmt.Fprintf(w, "  Required age:  %d\n", d.RequiredAge.Value)
		}
		if d.Website != nil && *d.Website != "" {
			fmt.Fprintf(w, "  Website:       %s\n", *d.Website)
		}
		if m := d.Metacritic; m != nil && m.Score != nil {
			fmt.Fprintf(w, "  Metacritic:    %d\n", *m.Score)
		}
		if d.ShortDescription != nil {
			if text := parser.PlainText(*d.ShortDescription); text != "" {
				fmt.Fprintf(w, "  Summary:       %s\n", text)
			}
		}
		fmt.Fprintln(w, separator)
	}
}

func export(cfg *config.Config, details []*models.AppDetail) (err error) {
	writer, err := createWriter(cfg.OutputFormat, cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("create writer: %w", err)
	}
	defer func() {
		if closeErr := writer.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close writer: %w", closeErr)
		}
	}()

	p := pipeline.NewPipeline(writer, 0)
	p.Start()
	if cfg.Verbose {
		p.StartMetricsReporting(10 * time.Second)
	}
	if err := p.Process(details...); err != nil {
		p.Close()
		return fmt.Errorf("process details: %w", err)
	}
	if err := p.Close(); err != nil {
		return fmt.Errorf("pipeline shutdown: %w", err)
	}

	if len(details) > 0 {
		if err := writer.Validate(); err != nil {
			return fmt.Errorf("output validation: %w", err)
		}
	}
	return nil
}

func createWriter(format, filename string) (pipeline.OutputWriter, error) {
	switch format {
	case "json":
		return pipeline.NewJSONWriter(filename)
	case "csv":
		return pipeline.NewCSVWriter(filename)
	case "dual":
		jsonFilename := strings.TrimSuffix(filename, ".csv") + ".jsonl"
		return pipeline.NewDualWriter(filename, jsonFilename)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func newMetricsRouter(registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// newLogger logs to stderr so stdout carries only results.
func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stderr) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
