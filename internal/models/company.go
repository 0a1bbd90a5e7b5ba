package models

import "time"

// ModerationStatus is the review state shared by companies, OMIL
// organizations and job postings.
type ModerationStatus string

const (
	StatusDraft           ModerationStatus = "draft"
	StatusPendingApproval ModerationStatus = "pending_approval"
	StatusActive          ModerationStatus = "active"
	StatusRejected        ModerationStatus = "rejected"
	StatusClosed          ModerationStatus = "closed"
	StatusSuspended       ModerationStatus = "suspended"
)

// Review captures who decided on a moderated entity and how.
// ApprovedAt/ApprovedBy are only set while the entity is active;
// RejectionReason only while it is rejected. ReviewedBy/ReviewedAt record the
// last admin decision of either kind.
type Review struct {
	ApprovedAt      *time.Time `json:"approved_at"`
	ApprovedBy      *uint      `json:"approved_by"`
	RejectionReason *string    `gorm:"type:text" json:"rejection_reason"`
	ReviewedAt      *time.Time `json:"reviewed_at"`
	ReviewedBy      *uint      `json:"reviewed_by"`
}

// MarkApproved stamps an approval by adminID.
func (r *Review) MarkApproved(adminID uint, at time.Time) {
	r.ApprovedAt = &at
	r.ApprovedBy = &adminID
	r.RejectionReason = nil
	r.ReviewedAt = &at
	r.ReviewedBy = &adminID
}

// MarkRejected stamps a rejection by adminID with reason.
func (r *Review) MarkRejected(adminID uint, reason string, at time.Time) {
	r.ApprovedAt = nil
	r.ApprovedBy = nil
	r.RejectionReason = &reason
	r.ReviewedAt = &at
	r.ReviewedBy = &adminID
}

// Company is an employer account awaiting or holding platform approval.
type Company struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	UserID       uint             `gorm:"uniqueIndex;not null" json:"user_id"`
	User         *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BusinessName string           `gorm:"size:200;not null" json:"business_name"`
	LegalName    string           `gorm:"size:200" json:"legal_name,omitempty"`
	RUT          string           `gorm:"size:12;uniqueIndex;not null" json:"rut"`
	Industry     string           `gorm:"size:100" json:"industry,omitempty"`
	Size         string           `gorm:"size:30" json:"size,omitempty"`
	Website      string           `gorm:"size:300" json:"website,omitempty"`
	Description  string           `gorm:"type:text" json:"description,omitempty"`
	Address      string           `gorm:"size:300" json:"address,omitempty"`
	City         string           `gorm:"size:100" json:"city,omitempty"`
	Region       string           `gorm:"size:100" json:"region,omitempty"`
	Phone        string           `gorm:"size:30" json:"phone,omitempty"`
	LogoURL      string           `gorm:"size:500" json:"logo_url,omitempty"`
	Status       ModerationStatus `gorm:"type:varchar(20);not null;default:'pending_approval';index" json:"status"`
	Review       `gorm:"embedded"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CompanySummary is the public projection embedded in job listings.
type CompanySummary struct {
	ID           uint   `json:"id"`
	BusinessName string `json:"business_name"`
	Industry     string `json:"industry,omitempty"`
	City         string `json:"city,omitempty"`
	Region       string `json:"region,omitempty"`
	LogoURL      string `json:"logo_url,omitempty"`
}

// Summary returns the public projection of c.
func (c *Company) Summary() *CompanySummary {
	if c == nil {
		return nil
	}
	return &CompanySummary{
		ID:           c.ID,
		BusinessName: c.BusinessName,
		Industry:     c.Industry,
		City:         c.City,
		Region:       c.Region,
		LogoURL:      c.LogoURL,
	}
}

// OMILOrganization is a municipal employment office.
type OMILOrganization struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	UserID        uint             `gorm:"uniqueIndex;not null" json:"user_id"`
	User          *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Name          string           `gorm:"size:200;not null" json:"name"`
	Municipality  string           `gorm:"size:100;not null" json:"municipality"`
	Region        string           `gorm:"size:100" json:"region,omitempty"`
	ContactName   string           `gorm:"size:200" json:"contact_name,omitempty"`
	Phone         string           `gorm:"size:30" json:"phone,omitempty"`
	Status        ModerationStatus `gorm:"type:varchar(20);not null;default:'pending_approval';index" json:"status"`
	ApprovalNotes string           `gorm:"type:text" json:"approval_notes,omitempty"`
	Review        `gorm:"embedded"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName keeps the short table name used by reports and migrations.
func (OMILOrganization) TableName() string {
	return "omil_organizations"
}
