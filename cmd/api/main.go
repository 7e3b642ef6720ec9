package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/casebrief/internal/api"
	"github.com/nikhilbhutani/casebrief/internal/app"
	"github.com/nikhilbhutani/casebrief/internal/config"
	"github.com/nikhilbhutani/casebrief/internal/database"
	"github.com/nikhilbhutani/casebrief/internal/queue"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Database connection (optional, briefs stay in memory without it)
	var db *pgxpool.Pool
	if cfg.Database.URL != "" {
		pool, err := database.NewPool(ctx, cfg.Database)
		if err != nil {
			slog.Warn("database unavailable, running without DB", "error", err)
		} else {
			db = pool
			defer db.Close()

			if err := migrate(ctx, db, cfg.Database.MigrationsPath); err != nil {
				slog.Warn("migrations failed", "error", err)
			}
		}
	}

	// Redis connection (optional)
	var rdb *redis.Client
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, running without cache and jobs", "error", err)
		client.Close()
	} else {
		rdb = client
		defer rdb.Close()
	}

	components, err := app.Build(cfg, app.Backends{DB: db, Redis: rdb})
	if err != nil {
		slog.Error("failed to build services", "error", err)
		os.Exit(1)
	}

	svc := api.Services{
		Briefs:       components.Briefs,
		Documents:    components.Documents,
		Gateway:      components.Gateway,
		BreakerState: components.BreakerState,
	}
	if rdb != nil {
		qc := queue.NewClient(cfg.Redis)
		defer qc.Close()
		svc.Jobs = qc
		svc.Tracker = queue.NewTracker(components.Cache, cfg.Cache.JobTTL)
	}

	router := api.NewRouter(db, rdb, cfg, svc)
	defer router.Close()
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func migrate(ctx context.Context, db *pgxpool.Pool, path string) error {
	fsys, err := database.Migrations(path)
	if err != nil {
		return err
	}
	return database.RunMigrations(ctx, db, fsys)
}
