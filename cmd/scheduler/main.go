package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"dealflow_backend/internal/clickup"
	"dealflow_backend/internal/deals/repository"
	"dealflow_backend/internal/email"
	"dealflow_backend/internal/scheduler"
	syncer "dealflow_backend/internal/sync"
	"dealflow_backend/platform/config"
	"dealflow_backend/platform/db"
	"dealflow_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler worker", "env", cfg.Env)

	if !cfg.IsClickUpEnabled() {
		panic("CLICKUP_API_KEY and CLICKUP_LIST_ID are required for the scheduler")
	}
	if cfg.GetRedisURL() == "" {
		panic("REDIS_URL is required for the scheduler")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	repo := repository.New(pool)
	feed := clickup.New(cfg.GetClickUpAPIKey(), cfg.GetClickUpListID(), log)
	runner := syncer.NewRunner(feed, repo, log)

	var digest scheduler.DigestSender
	if cfg.GetEmailEnabled() {
		digest = email.NewDigest(cfg, repo, log)
	}

	worker, err := scheduler.NewWorker(cfg, runner, digest, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	periodic, err := scheduler.NewPeriodic(cfg, cfg.GetEmailEnabled(), log)
	if err != nil {
		log.Error("failed to initialize cron scheduler", "error", err)
		panic("failed to initialize cron scheduler: " + err.Error())
	}

	cronErr := make(chan error, 1)
	go func() {
		cronErr <- periodic.Run()
	}()

	workerErr := make(chan error, 1)
	go func() {
		workerErr <- worker.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		periodic.Shutdown()
		<-workerErr
	case err := <-cronErr:
		if err != nil {
			log.Error("cron scheduler error", "error", err)
			panic("cron scheduler error: " + err.Error())
		}
	case err := <-workerErr:
		if err != nil {
			log.Error("worker error", "error", err)
			panic("worker error: " + err.Error())
		}
	}
}
