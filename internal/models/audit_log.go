package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Entity types recorded in audit logs.
const (
	EntityCompany = "company"
	EntityJob     = "job"
	EntityOMIL    = "omil"
	EntityUser    = "user"
	EntitySetting = "setting"
)

// ErrAuditLogImmutable is returned when an audit entry is updated or deleted.
var ErrAuditLogImmutable = errors.New("audit log entries are append-only")

// AuditLog is an append-only record of an administrative action.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AdminID    uint      `gorm:"index;not null" json:"admin_id"`
	Admin      *User     `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
	ActionType string    `gorm:"size:50;not null;index" json:"action_type"`
	EntityType string    `gorm:"size:30;not null;index:idx_audit_entity" json:"entity_type"`
	EntityID   uint      `gorm:"not null;index:idx_audit_entity" json:"entity_id"`
	Details    JSON      `json:"details"`
	IPAddress  string    `gorm:"size:64" json:"ip_address"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// BeforeUpdate blocks mutation of persisted entries.
func (a *AuditLog) BeforeUpdate(*gorm.DB) error {
	return ErrAuditLogImmutable
}

// BeforeDelete blocks deletion of persisted entries.
func (a *AuditLog) BeforeDelete(*gorm.DB) error {
	return ErrAuditLogImmutable
}

// AuditFilter narrows audit log listings.
type AuditFilter struct {
	ActionType string
	EntityType string
	EntityID   uint
	AdminID    uint
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}
