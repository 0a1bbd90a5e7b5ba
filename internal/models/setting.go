package models

import "time"

// Well-known setting keys.
const (
	SettingPlatformName             = "platform_name"
	SettingSupportEmail             = "support_email"
	SettingJobsPerPage              = "jobs_per_page"
	SettingMaintenanceMode          = "maintenance_mode"
	SettingAllowCompanyRegistration = "allow_company_registration"
	SettingAllowOMILRegistration    = "allow_omil_registration"
	SettingMaxApplicationsPerDay    = "max_applications_per_day"
)

// SystemSetting is an admin-managed key/value pair.
type SystemSetting struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Key         string    `gorm:"size:100;uniqueIndex;not null" json:"key"`
	Value       JSON      `gorm:"not null" json:"value"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	UpdatedBy   *uint     `json:"updated_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultSettings are seeded at provisioning time and define the accepted
// keys and JSON types for updates.
func DefaultSettings() []SystemSetting {
	return []SystemSetting{
		{Key: SettingPlatformName, Value: MustJSON("Empleos Inclusivos"), Description: "Nombre visible de la plataforma"},
		{Key: SettingSupportEmail, Value: MustJSON("soporte@empleosinclusivos.cl"), Description: "Correo de soporte"},
		{Key: SettingJobsPerPage, Value: MustJSON(20), Description: "Ofertas por página en el listado público"},
		{Key: SettingMaintenanceMode, Value: MustJSON(false), Description: "Bloquea cambios de usuarios no administradores"},
		{Key: SettingAllowCompanyRegistration, Value: MustJSON(true), Description: "Permite el registro de empresas"},
		{Key: SettingAllowOMILRegistration, Value: MustJSON(true), Description: "Permite el registro de OMIL"},
		{Key: SettingMaxApplicationsPerDay, Value: MustJSON(20), Description: "Postulaciones diarias por candidato"},
	}
}
