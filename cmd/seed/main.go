package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal-api/internal/seed"
	"github.com/noah-isme/campus-portal-api/pkg/config"
	"github.com/noah-isme/campus-portal-api/pkg/database"
	"github.com/noah-isme/campus-portal-api/pkg/logger"
)

func main() {
	force := flag.Bool("force", false, "clear every table and reload the sample data")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if err := database.Migrate(db); err != nil {
		logr.Fatal("migrate database", zap.Error(err))
	}

	wrote, err := seed.New(db, logr).Run(ctx, *force)
	if err != nil {
		logr.Fatal("seed sample data", zap.Error(err))
	}
	logr.Info("seed finished", zap.Bool("written", wrote))
}
