package main

import (
	"context"
	"time"

	mongoMigration "brandpulse/internal/migrations/mongo"
	"brandpulse/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	defer cfg.GracefulShutdown(ctx)

	cfg.Log.Info("Starting Mongo migration job")
	if err := migrateMongo(ctx, cfg); err != nil {
		cfg.GracefulShutdown(ctx)
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	cfg.Log.Info("Migration completed successfully")
}

func migrateMongo(ctx context.Context, cfg *config.Config) error {
	db, err := cfg.Store.Database(ctx)
	if err != nil {
		return err
	}
	return mongoMigration.RunMigration(ctx, db, cfg.Log)
}
