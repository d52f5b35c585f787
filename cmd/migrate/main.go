package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vsbilling/vsbilling/internal/app"
	"github.com/vsbilling/vsbilling/internal/platform/db"
	"github.com/vsbilling/vsbilling/jobs"
)

func main() {
	printOnly := flag.Bool("print", false, "print the schema DDL and exit")
	reconcile := flag.Bool("reconcile", false, "enqueue a counter reconcile for every account after migrating")
	flag.Parse()

	if *printOnly {
		fmt.Print(db.Schema())
		return
	}
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping migration")
		return
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: 1})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.ApplySchema(ctx, pool); err != nil {
		logger.Error("apply schema", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("schema applied")

	if !*reconcile {
		return
	}
	client, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	info, err := client.EnqueueCounterReconcile(ctx, "")
	if err != nil {
		logger.Error("enqueue counter reconcile", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("counter reconcile enqueued", slog.String("task_id", info.ID))
}
