package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"dealflow_backend/internal/deals/repository"
	"dealflow_backend/internal/importer"
	"dealflow_backend/platform/config"
	"dealflow_backend/platform/db"
	"dealflow_backend/platform/logger"
)

func main() {
	dir := flag.String("dir", "deals", "directory of deal markdown files")
	dryRun := flag.Bool("dry-run", false, "parse and report without writing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting deal import", "dir", *dir, "dry_run", *dryRun)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	var archiver importer.Archiver
	if cfg.IsArchiveStorageEnabled() && !*dryRun {
		minioArchiver, err := importer.NewMinIOArchiver(ctx, cfg)
		if err != nil {
			log.Error("failed to initialize archive storage", "error", err)
			panic("failed to initialize archive storage: " + err.Error())
		}
		archiver = minioArchiver
		log.Info("archiving imported files", "bucket", cfg.GetMinIOBucketDealFiles())
	}

	imp := importer.New(repository.New(pool), archiver, log)
	result, err := imp.Run(ctx, os.DirFS(*dir), *dryRun)
	if err != nil {
		log.Error("import failed", "error", err)
		panic("import failed: " + err.Error())
	}

	if *dryRun {
		fmt.Printf("[DRY RUN] Would import %d deals (%d activities), skip %d, %d failed\n",
			result.Imported, result.Activities, result.Skipped, result.Failed)
		return
	}
	fmt.Printf("Imported %d deals (%d activities), skipped %d, failed %d\n",
		result.Imported, result.Activities, result.Skipped, result.Failed)
}
