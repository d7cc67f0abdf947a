package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JonMunkholm/catalogimport/internal/config"
	"github.com/JonMunkholm/catalogimport/internal/core"
	"github.com/JonMunkholm/catalogimport/internal/database"
	"github.com/JonMunkholm/catalogimport/internal/database/sqlite"
	"github.com/JonMunkholm/catalogimport/internal/logging"
	"github.com/JonMunkholm/catalogimport/internal/web"
)

// catalogStore is what the server needs from either database backend.
type catalogStore interface {
	database.Gateway
	web.CatalogCounter
	EnsureSchema(ctx context.Context) error
}

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"import_max_file_size", cfg.Import.MaxFileSize,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, &cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	if cfg.Database.EnsureSchema {
		if err := store.EnsureSchema(ctx); err != nil {
			slog.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
		slog.Info("catalog schema ready")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	service := core.NewService(store, core.ServiceConfig{
		MaxConcurrent: cfg.Import.MaxConcurrent,
		MaxWait:       cfg.Import.MaxWait,
		Timeout:       cfg.Import.Timeout,
	}, core.NewMetrics(reg))

	server := web.NewServer(service, cfg,
		web.WithCatalogCounter(store),
		web.WithGatherer(reg),
	)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stop accepting requests first; in-flight imports keep running.
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		status := service.LimiterStatus()
		if status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		closeStore()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}

// openStore connects to PostgreSQL, or to a SQLite file for sqlite: URLs.
func openStore(ctx context.Context, cfg *config.DatabaseConfig) (catalogStore, func(), error) {
	if cfg.IsSQLite() {
		gw, err := sqlite.Open(cfg.SQLitePath())
		if err != nil {
			return nil, nil, err
		}
		slog.Info("connected to database", "driver", "sqlite", "path", cfg.SQLitePath())
		return gw, func() { gw.Close() }, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, nil, err
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "driver", "postgres", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database", "driver", "postgres")
	}
	return database.NewPostgres(pool), pool.Close, nil
}
