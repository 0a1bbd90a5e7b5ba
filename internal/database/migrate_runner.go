package database

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"empleos/internal/middleware"

	"gorm.io/gorm"
)

// MigrationRecord is one row of schema_migrations.
type MigrationRecord struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	Checksum  string    `gorm:"size:64;not null;default:''"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (MigrationRecord) TableName() string {
	return "schema_migrations"
}

const ensureSchemaMigrationsSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	checksum VARCHAR(64) NOT NULL DEFAULT '',
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// MigrationStore tracks applied migrations.
type MigrationStore interface {
	Applied(ctx context.Context) ([]MigrationRecord, error)
	Apply(ctx context.Context, m Migration) error
	Revert(ctx context.Context, m Migration) error
}

type migrationStore struct {
	db *gorm.DB
}

func NewMigrationStore(db *gorm.DB) MigrationStore {
	return &migrationStore{db: db}
}

// Applied lists applied migrations by version. A missing table means none.
func (s *migrationStore) Applied(ctx context.Context) ([]MigrationRecord, error) {
	records := []MigrationRecord{}
	if !s.db.WithContext(ctx).Migrator().HasTable(&MigrationRecord{}) {
		return records, nil
	}
	if err := s.db.WithContext(ctx).Order("version ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	return records, nil
}

// Apply runs the up script and records it in one transaction.
func (s *migrationStore) Apply(ctx context.Context, m Migration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.UpScript).Error; err != nil {
			return fmt.Errorf("apply %s: %w", m, err)
		}
		rec := MigrationRecord{Version: m.Version, Name: m.Name, Checksum: m.Checksum}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("record %s: %w", m, err)
		}
		return nil
	})
}

// Revert runs the down script and forgets the record in one transaction.
func (s *migrationStore) Revert(ctx context.Context, m Migration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.DownScript).Error; err != nil {
			return fmt.Errorf("revert %s: %w", m, err)
		}
		return tx.Where("version = ?", m.Version).Delete(&MigrationRecord{}).Error
	})
}

// RunMigrations applies every pending embedded migration in version order.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	if migrationsErr != nil {
		return migrationsErr
	}
	if err := db.WithContext(ctx).Exec(ensureSchemaMigrationsSQL).Error; err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return applyPending(ctx, NewMigrationStore(db), migrations)
}

func applyPending(ctx context.Context, store MigrationStore, registered []Migration) error {
	applied, err := store.Applied(ctx)
	if err != nil {
		return err
	}
	if err := validateApplied(applied, registered); err != nil {
		return err
	}

	done := make(map[int]bool, len(applied))
	for _, rec := range applied {
		done[rec.Version] = true
	}
	for _, m := range registered {
		if done[m.Version] {
			continue
		}
		middleware.Logger.InfoContext(ctx, "applying migration", slog.String("migration", m.String()))
		if err := store.Apply(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// validateApplied rejects databases that ran migrations this build does
// not know, or whose recorded checksum differs from the embedded script.
func validateApplied(applied []MigrationRecord, registered []Migration) error {
	known := make(map[int]Migration, len(registered))
	for _, m := range registered {
		known[m.Version] = m
	}

	var unknown, drifted []string
	for _, rec := range applied {
		m, ok := known[rec.Version]
		switch {
		case !ok:
			unknown = append(unknown, fmt.Sprintf("%06d", rec.Version))
		case rec.Checksum != "" && rec.Checksum != m.Checksum:
			drifted = append(drifted, m.String())
		}
	}
	sort.Strings(unknown)

	if len(unknown) > 0 {
		return fmt.Errorf("schema_migrations has versions unknown to this build: %s (deploy the matching release or reset the development database)",
			strings.Join(unknown, ", "))
	}
	if len(drifted) > 0 {
		return fmt.Errorf("applied migrations were edited after release: %s (add a new migration instead)",
			strings.Join(drifted, ", "))
	}
	return nil
}

// RollbackMigration reverts version, which must be the newest applied
// migration.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	m := GetMigrationByVersion(version)
	if m == nil {
		return fmt.Errorf("migration version %d not found", version)
	}
	return rollback(ctx, NewMigrationStore(db), *m)
}

func rollback(ctx context.Context, store MigrationStore, m Migration) error {
	applied, err := store.Applied(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 || applied[len(applied)-1].Version != m.Version {
		return fmt.Errorf("migration %s is not the newest applied migration", m)
	}
	middleware.Logger.InfoContext(ctx, "rolling back migration", slog.String("migration", m.String()))
	return store.Revert(ctx, m)
}
