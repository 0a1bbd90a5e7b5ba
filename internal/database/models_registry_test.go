package database

import (
	"testing"

	"empleos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistentModels_IncludesModerationTables(t *testing.T) {
	var hasAudit, hasSaved, hasSettings bool
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *models.AuditLog:
			hasAudit = true
		case *models.SavedJob:
			hasSaved = true
		case *models.SystemSetting:
			hasSettings = true
		}
	}
	assert.True(t, hasAudit, "PersistentModels should include AuditLog")
	assert.True(t, hasSaved, "PersistentModels should include SavedJob")
	assert.True(t, hasSettings, "PersistentModels should include SystemSetting")
}

func TestPersistentModels_AutoMigrateOnSQLite(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, runAutoMigrate(db))

	for _, table := range []string{"users", "companies", "omil_organizations", "jobs", "saved_jobs", "audit_logs", "system_settings", "educations", "portfolio_items"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
	assert.True(t, db.Migrator().HasIndex(&models.SavedJob{}, "idx_saved_job_pair"))
	assert.True(t, db.Migrator().HasColumn(&models.Job{}, "rejection_reason"))
}
