// Command kai is a terminal chat client backed by a local SQLite database.
//
// Usage:
//
//	kai [flags]
//
// Flags:
//
//	-config string        Path to the TOML config file (default: kai.toml)
//	-db string            Database path (overrides the config file)
//	-log string           Log file path (default: $KAI_LOG_FILE or kai.log)
//	-log-level string     debug, info, warn or error (default: $KAI_LOG_LEVEL or info)
//	-metrics-addr string  Serve Prometheus metrics on this address
//	-seed                 Fill an empty database with demo rooms (default: true)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/fwojciec/kai"
	bt "github.com/fwojciec/kai/bubbletea"
	"github.com/fwojciec/kai/fsnotify"
	kaiprom "github.com/fwojciec/kai/prometheus"
	"github.com/fwojciec/kai/sqlite"
	"github.com/fwojciec/kai/toml"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "kai: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; values may come from the environment.
	_ = godotenv.Load()

	var (
		configPath  = flag.String("config", "kai.toml", "Path to the TOML config file")
		dbPath      = flag.String("db", "", "Database path (overrides the config file)")
		logPath     = flag.String("log", envOr("KAI_LOG_FILE", "kai.log"), "Log file path")
		logLevel    = flag.String("log-level", envOr("KAI_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
		metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
		seed        = flag.Bool("seed", true, "Fill an empty database with demo rooms")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The TUI owns stdout, so logs go to a file.
	logger, closeLog, err := newLogger(*logPath, *logLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := toml.Load(*configPath)
	if err != nil {
		return err
	}
	if *dbPath != "" {
		cfg.Database = *dbPath
	}

	var metrics kai.Metrics = kai.NopMetrics{}
	if *metricsAddr != "" {
		m, shutdown, err := serveMetrics(*metricsAddr, logger)
		if err != nil {
			return err
		}
		defer shutdown()
		metrics = m
	}

	store, err := sqlite.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()
	if *seed {
		if err := store.Seed(ctx, sqlite.DefaultSeedOptions(cfg.User)); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	h := newHost(store, kai.User{ID: cfg.User, Name: cfg.User}, cfg.PageSize, logger)
	initial, err := h.Start(ctx)
	if err != nil {
		return fmt.Errorf("load rooms: %w", err)
	}

	updates := make(chan kai.Update, 16)
	go func() {
		for _, u := range append(cfg.Updates(), initial...) {
			select {
			case updates <- u:
			case <-ctx.Done():
				return
			}
		}
	}()

	if cfg.Locale != "" {
		w, err := fsnotify.NewLocaleWatcher(cfg.LocaleDir, cfg.Locale, fsnotify.WithLogger(logger))
		if err != nil {
			logger.Warn("locale watcher disabled", "dir", cfg.LocaleDir, "error", err)
		} else {
			defer w.Close()
			go func() {
				if err := w.Run(ctx, updates); err != nil && !errors.Is(err, context.Canceled) {
					logger.Warn("locale watcher stopped", "error", err)
				}
			}()
		}
	}

	opts := []bt.Option{
		bt.WithContext(ctx),
		bt.WithLogger(logger),
		bt.WithMetrics(metrics),
		bt.WithGateTimeout(cfg.PaginationTimeout.Duration),
	}
	if !cfg.Mouse {
		opts = append(opts, bt.WithoutMouse())
	}

	logger.Info("starting", "db", cfg.Database, "user", cfg.User, "theme", cfg.Theme)
	if err := bt.Run(ctx, bt.New(h, opts...), updates); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newLogger(path, level string) (*slog.Logger, func(), error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, nil, fmt.Errorf("log level %q: %w", level, kai.ErrValidation)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl}))
	return logger, func() { f.Close() }, nil
}

func serveMetrics(addr string, logger *slog.Logger) (*kaiprom.Metrics, func(), error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m, err := kaiprom.New(reg)
	if err != nil {
		return nil, nil, fmt.Errorf("register metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return m, shutdown, nil
}
