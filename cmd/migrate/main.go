// Command migrate manages the database schema and default settings.
//
//	migrate up              apply pending SQL migrations
//	migrate auto            run GORM AutoMigrate (development)
//	migrate status          show the schema plan, pending migrations and missing settings
//	migrate down <version>  revert the newest applied migration
//	migrate settings        insert missing default settings
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"empleos/internal/config"
	"empleos/internal/database"
	"empleos/internal/middleware"
	"empleos/internal/repository"
)

const usage = "usage: migrate <up|auto|status|down <version>|settings>"

func main() {
	if err := run(os.Args[1:]); err != nil {
		middleware.Logger.Error("migrate failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	middleware.ConfigureLogger(cfg.Env, os.Getenv("LOG_LEVEL"))

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	log := middleware.Logger

	switch args[0] {
	case "up":
		if err := database.RunMigrations(ctx, db); err != nil {
			return err
		}
		log.Info("sql migrations applied")

	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return err
		}
		log.Info("automigrate finished")

	case "status":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return err
		}
		log.Info("schema status",
			slog.String("mode", status.Plan.Mode),
			slog.String("env", status.Environment),
			slog.Bool("run_sql", status.Plan.SQL),
			slog.Bool("run_auto", status.Plan.Auto),
			slog.Int("applied", len(status.Applied)),
			slog.Int("pending", len(status.PendingMigrations)))
		for _, m := range status.PendingMigrations {
			log.Info("pending migration", slog.String("migration", m.String()))
		}
		if len(status.MissingSettings) > 0 {
			log.Warn("default settings missing; run `migrate settings`",
				slog.Any("keys", status.MissingSettings))
		}

	case "down":
		if len(args) < 2 {
			return errors.New(usage)
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return err
		}
		log.Info("migration rolled back", slog.Int("version", version))

	case "settings":
		if err := repository.NewSettingRepository(db).SeedDefaults(ctx); err != nil {
			return fmt.Errorf("seed default settings: %w", err)
		}
		log.Info("default settings present")

	default:
		return errors.New(usage)
	}
	return nil
}
