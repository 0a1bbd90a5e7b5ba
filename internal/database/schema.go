package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"empleos/internal/config"
	"empleos/internal/middleware"
	"empleos/internal/models"

	"gorm.io/gorm"
)

// Schema modes accepted by DB_SCHEMA_MODE.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaPlan is what ApplySchema does for a configuration.
type SchemaPlan struct {
	Mode string
	SQL  bool
	Auto bool
}

// PlanSchema resolves DB_SCHEMA_MODE for the environment. Hybrid runs the
// SQL migrations everywhere and AutoMigrate only outside production and
// staging. Auto mode there requires DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE.
func PlanSchema(cfg *config.Config) (SchemaPlan, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))
	if mode == "" {
		mode = SchemaModeHybrid
	}
	guarded := cfg.IsProduction() || strings.HasPrefix(strings.ToLower(cfg.Env), "stag")

	plan := SchemaPlan{Mode: mode}
	switch mode {
	case SchemaModeSQL:
		plan.SQL = true
	case SchemaModeHybrid:
		plan.SQL, plan.Auto = true, !guarded
	case SchemaModeAuto:
		if guarded && !cfg.DBAutoMigrateAllowDestructive {
			return SchemaPlan{}, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		plan.Auto = true
	default:
		return SchemaPlan{}, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
	return plan, nil
}

// ApplySchema runs the plan for cfg.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return err
	}
	if plan.SQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}
	if plan.Auto {
		middleware.Logger.InfoContext(ctx, "running gorm automigrate",
			slog.String("mode", plan.Mode), slog.String("env", cfg.Env))
		if err := runAutoMigrate(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return nil
}

func runAutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// SchemaStatus reports the plan, migration state and missing default
// settings for cmd/migrate status.
type SchemaStatus struct {
	Plan              SchemaPlan
	Environment       string
	Applied           []MigrationRecord
	PendingMigrations []Migration
	MissingSettings   []string
}

// GetSchemaStatus inspects db without changing it.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return nil, err
	}
	if migrationsErr != nil {
		return nil, migrationsErr
	}

	status := &SchemaStatus{Plan: plan, Environment: cfg.Env}
	status.Applied, err = NewMigrationStore(db).Applied(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[int]bool, len(status.Applied))
	for _, rec := range status.Applied {
		done[rec.Version] = true
	}
	for _, m := range migrations {
		if !done[m.Version] {
			status.PendingMigrations = append(status.PendingMigrations, m)
		}
	}

	present := map[string]bool{}
	if db.WithContext(ctx).Migrator().HasTable(&models.SystemSetting{}) {
		var keys []string
		if err := db.WithContext(ctx).Model(&models.SystemSetting{}).Pluck("key", &keys).Error; err != nil {
			return nil, fmt.Errorf("list settings: %w", err)
		}
		for _, k := range keys {
			present[k] = true
		}
	}
	for _, d := range models.DefaultSettings() {
		if !present[d.Key] {
			status.MissingSettings = append(status.MissingSettings, d.Key)
		}
	}
	return status, nil
}
