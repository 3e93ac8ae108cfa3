package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/sheetdrop/sheetdrop/internal/api"
	"github.com/sheetdrop/sheetdrop/internal/config"
	"github.com/sheetdrop/sheetdrop/internal/database"
	"github.com/sheetdrop/sheetdrop/internal/repository"
	"github.com/sheetdrop/sheetdrop/internal/setup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	pipe, err := setup.BuildPipeline(ctx, cfg)
	if err != nil {
		log.Fatalf("build pipeline: %v", err)
	}

	var repo *repository.SubmissionRepository
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("connect database: %v", err)
		}
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		repo = repository.NewSubmissionRepository(pool)
	} else {
		log.Printf("no database configured; submissions will not be archived")
	}

	var queueClient *asynq.Client
	if cfg.RedisAddr != "" && cfg.StorageBackend == config.StorageBackendS3 {
		queueClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer queueClient.Close()
	}

	srv := api.New(cfg, pipe, repo, queueClient)
	if err := srv.Run(ctx); err != nil {
		log.Printf("server stopped: %v", err)
		os.Exit(1)
	}
}
