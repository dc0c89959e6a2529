package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/sync/errgroup"

	"labintel/internal/api"
	"labintel/internal/app"
	"labintel/internal/config"
	internaldb "labintel/internal/db"
	"labintel/internal/middleware"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file (if present)
	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Open the lab database. An empty DSN with the duckdb driver is an
	// in-memory database, which gets the demo schema.
	labDB, err := sql.Open(cfg.LabDBDriver, cfg.LabDBDSN)
	if err != nil {
		return fmt.Errorf("open lab database: %w", err)
	}
	defer labDB.Close() //nolint:errcheck
	if err := labDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping lab database: %w", err)
	}
	if cfg.SeedDemo() && cfg.LabDBDriver == "duckdb" {
		if err := app.SeedDemoLab(ctx, labDB); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		logger.Info("demo lab data seeded")
	}

	// Ask log on SQLite with hardened connection settings.
	// writeDB: single-connection pool for serialized writes (WAL + txlock=immediate).
	// readDB:  4-connection pool for concurrent reads (WAL, no txlock).
	writeDB, readDB, err := internaldb.OpenSQLitePair(cfg.AskLogPath, 4)
	if err != nil {
		return fmt.Errorf("open ask log: %w", err)
	}
	defer writeDB.Close() //nolint:errcheck
	defer readDB.Close()  //nolint:errcheck

	if err := internaldb.RunMigrations(writeDB); err != nil {
		return fmt.Errorf("ask log migrations: %w", err)
	}

	a, err := app.New(ctx, app.Deps{
		Cfg:         cfg,
		LabDB:       labDB,
		AskLogWrite: writeDB,
		AskLogRead:  readDB,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("wire application: %w", err)
	}

	handler := api.NewHandler(a.Ask, a.Catalog, a.AskLog, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.RateLimiter(ctx, middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := labDB.PingContext(r.Context()); err != nil {
			http.Error(w, `{"status":"degraded"}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Route("/v1", handler.Routes)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
		// Asks wait on the model twice plus a query, so the write timeout
		// must cover the full pipeline.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*cfg.LLM.Timeout + cfg.QueryTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("lab intelligence server listening", "addr", cfg.ListenAddr, "driver", cfg.LabDBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
