package main

import (
	"context"
	"flag"
	"os"
	"time"

	"dealflow_backend/internal/clickup"
	"dealflow_backend/internal/deals/repository"
	syncer "dealflow_backend/internal/sync"
	"dealflow_backend/platform/config"
	"dealflow_backend/platform/db"
	"dealflow_backend/platform/logger"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "classify without writing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting re-engagement run", "dry_run", *dryRun)

	if !cfg.IsClickUpEnabled() {
		panic("CLICKUP_API_KEY and CLICKUP_LIST_ID are required")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	repo := repository.New(pool)
	feed := clickup.New(cfg.GetClickUpAPIKey(), cfg.GetClickUpListID(), log)
	runner := syncer.NewRunner(feed, repo, log)

	result, err := runner.Reengage(ctx, *dryRun, time.Now())
	if err != nil {
		log.Error("re-engagement failed", "error", err)
		panic("re-engagement failed: " + err.Error())
	}

	result.WriteReport(os.Stdout)
}
