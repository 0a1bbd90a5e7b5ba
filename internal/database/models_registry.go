package database

import "empleos/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.UserToken{},
		&models.JobSeekerProfile{},
		&models.Education{},
		&models.Experience{},
		&models.Skill{},
		&models.Language{},
		&models.PortfolioItem{},
		&models.Company{},
		&models.OMILOrganization{},
		&models.Job{},
		&models.Application{},
		&models.SavedJob{},
		&models.AuditLog{},
		&models.SystemSetting{},
	}
}
