package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/casebrief/internal/app"
	"github.com/nikhilbhutani/casebrief/internal/config"
	"github.com/nikhilbhutani/casebrief/internal/database"
	"github.com/nikhilbhutani/casebrief/internal/queue"
	"github.com/nikhilbhutani/casebrief/internal/queue/workers"
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

	// Briefs written by the worker are only visible to the API through a
	// shared database.
	var db *pgxpool.Pool
	if cfg.Database.URL != "" {
		db, err = database.NewPool(ctx, cfg.Database)
		if err != nil {
			slog.Error("database unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	} else {
		slog.Warn("DATABASE_URL not set, briefs will not be visible to the API")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	components, err := app.Build(cfg, app.Backends{DB: db, Redis: rdb})
	if err != nil {
		slog.Error("failed to build services", "error", err)
		os.Exit(1)
	}
	tracker := queue.NewTracker(components.Cache, cfg.Cache.JobTTL)

	srv := asynq.NewServer(
		queue.RedisOpt(cfg.Redis),
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()

	summarizeWorker := workers.NewSummarizeWorker(components.Briefs, tracker)
	registry.Register(queue.TypeCaseSummarize, asynq.HandlerFunc(summarizeWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", cfg.Worker.Concurrency, "tasks", registry.Types())
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
