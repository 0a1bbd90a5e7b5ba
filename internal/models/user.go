// Package models contains data structures for the job board domain.
package models

import (
	"time"
)

// UserType identifies which portal a user belongs to.
type UserType string

const (
	UserTypeJobSeeker UserType = "job_seeker"
	UserTypeCompany   UserType = "company"
	UserTypeOMIL      UserType = "omil"
	UserTypeAdmin     UserType = "admin"
)

// Valid reports whether t is a known user type.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeJobSeeker, UserTypeCompany, UserTypeOMIL, UserTypeAdmin:
		return true
	}
	return false
}

// AccountStatus is the account lifecycle state.
type AccountStatus string

const (
	AccountPendingVerification AccountStatus = "pending_verification"
	AccountActive              AccountStatus = "active"
	AccountSuspended           AccountStatus = "suspended"
	AccountClosed              AccountStatus = "closed"
)

// Valid reports whether s is a known account status.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountPendingVerification, AccountActive, AccountSuspended, AccountClosed:
		return true
	}
	return false
}

// User is an authenticated principal of any portal.
type User struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	Email            string        `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Password         string        `gorm:"not null" json:"-"`
	UserType         UserType      `gorm:"type:varchar(20);not null;index" json:"user_type"`
	AccountStatus    AccountStatus `gorm:"type:varchar(30);not null;default:'pending_verification';index" json:"account_status"`
	SuspensionReason string        `gorm:"type:text" json:"suspension_reason,omitempty"`
	SuspendedAt      *time.Time    `json:"suspended_at,omitempty"`
	EmailVerifiedAt  *time.Time    `json:"email_verified_at,omitempty"`
	LastLoginAt      *time.Time    `json:"last_login_at,omitempty"`
	CreatedAt        time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// IsAdmin reports whether the user may use the back-office.
func (u *User) IsAdmin() bool {
	return u.UserType == UserTypeAdmin
}

// CanLogin reports whether the account status allows issuing tokens.
func (u *User) CanLogin() bool {
	return u.AccountStatus == AccountActive
}
