package main

// Apply the attempt-log schema:
//   go run ./cmd/migrate

import (
	"context"
	"os"
	"strings"

	"escape-planner/internal/shared/config"
	"escape-planner/internal/shared/storage/db"
	"escape-planner/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Configure(cfg.LogLevel, cfg.LogFormat)
	defer telemetry.Sync()
	ctx := context.Background()

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Error("migrate.missing_database_url", nil)
		os.Exit(1)
	}
	target, err := db.LatestMigration()
	if err != nil {
		telemetry.Error("migrate.no_migrations", map[string]any{"error": err})
		os.Exit(1)
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, "migrate", db.ForMigrate(db.FromConfig(cfg.DBPool)))
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err, "target": target})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"target": target})
}
