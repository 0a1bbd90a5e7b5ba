package service

import (
	"context"
	"fmt"
	"time"

	"empleos/internal/auth"
	"empleos/internal/cache"
	"empleos/internal/featureflags"
	"empleos/internal/mailer"
	"empleos/internal/models"
	"empleos/internal/moderation"
	"empleos/internal/notifications"
	"empleos/internal/observability"
	"empleos/internal/repository"
)

// AdminService manages user accounts and the audit trail for the
// back-office.
type AdminService struct {
	users      repository.UserRepository
	companies  repository.CompanyRepository
	omils      repository.OMILRepository
	profiles   repository.ProfileRepository
	moderation repository.ModerationRepository
	audit      repository.AuditLogRepository
	jwt        *auth.TokenManager
	notifier   *notifications.Notifier
	mail       mailer.Mailer
	flags      *featureflags.Manager
	now        func() time.Time
}

// AdminDeps groups the collaborators of AdminService.
type AdminDeps struct {
	Users      repository.UserRepository
	Companies  repository.CompanyRepository
	OMILs      repository.OMILRepository
	Profiles   repository.ProfileRepository
	Moderation repository.ModerationRepository
	Audit      repository.AuditLogRepository
	JWT        *auth.TokenManager
	Notifier   *notifications.Notifier
	Mailer     mailer.Mailer
	Flags      *featureflags.Manager
}

// NewAdminService returns an AdminService.
func NewAdminService(deps AdminDeps) *AdminService {
	return &AdminService{
		users:      deps.Users,
		companies:  deps.Companies,
		omils:      deps.OMILs,
		profiles:   deps.Profiles,
		moderation: deps.Moderation,
		audit:      deps.Audit,
		jwt:        deps.JWT,
		notifier:   deps.Notifier,
		mail:       deps.Mailer,
		flags:      deps.Flags,
		now:        time.Now,
	}
}

// AdminUserDetail is a user with the records owned by its portal.
type AdminUserDetail struct {
	User    *models.User             `json:"user"`
	Profile *models.JobSeekerProfile `json:"profile,omitempty"`
	Company *models.Company          `json:"company,omitempty"`
	OMIL    *models.OMILOrganization `json:"omil,omitempty"`
}

// ImpersonationResult is returned by Impersonate.
type ImpersonationResult struct {
	Token          string       `json:"token"`
	ExpiresAt      time.Time    `json:"expires_at"`
	User           *models.User `json:"user"`
	ImpersonatorID uint         `json:"impersonator_id"`
}

// ListUsers lists accounts matching filter.
func (s *AdminService) ListUsers(ctx context.Context, filter repository.UserFilter) (models.Page[models.User], error) {
	if filter.UserType != "" && !filter.UserType.Valid() {
		return models.Page[models.User]{}, models.NewValidationError(fmt.Sprintf("invalid user_type %q", filter.UserType))
	}
	if filter.AccountStatus != "" && !filter.AccountStatus.Valid() {
		return models.Page[models.User]{}, models.NewValidationError(fmt.Sprintf("invalid account_status %q", filter.AccountStatus))
	}
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return models.Page[models.User]{}, err
	}
	return models.NewPage(users, total), nil
}

// GetUser returns a user and the portal records it owns.
func (s *AdminService) GetUser(ctx context.Context, id uint) (*AdminUserDetail, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &AdminUserDetail{User: user}

	switch user.UserType {
	case models.UserTypeJobSeeker:
		detail.Profile, err = s.profiles.GetByUserID(ctx, id)
	case models.UserTypeCompany:
		detail.Company, err = s.companies.GetByUserID(ctx, id)
	case models.UserTypeOMIL:
		detail.OMIL, err = s.omils.GetByUserID(ctx, id)
	}
	if err != nil && !models.IsCode(err, models.CodeNotFound) {
		return nil, err
	}
	return detail, nil
}

// SetUserStatus suspends or reactivates an account. Admin accounts and
// the acting admin cannot be changed.
func (s *AdminService) SetUserStatus(ctx context.Context, adminID, targetID uint, status models.AccountStatus, reason, ip string) (*models.User, error) {
	verb, err := moderation.VerbForAccountStatus(status)
	if err != nil {
		return nil, err
	}
	if adminID == targetID {
		return nil, models.NewForbiddenError("You cannot change your own account status")
	}

	user, err := s.moderation.TransitionUser(ctx, targetID, func(u *models.User) (*models.AuditLog, error) {
		if u.IsAdmin() {
			return nil, models.NewForbiddenError("Admin accounts cannot be changed")
		}
		previous := u.AccountStatus
		next, err := moderation.NextUserStatus(previous, verb)
		if err != nil {
			return nil, err
		}
		u.AccountStatus = next
		if next == models.AccountSuspended {
			now := s.now().UTC()
			u.SuspendedAt = &now
			u.SuspensionReason = reason
		} else {
			u.SuspendedAt = nil
			u.SuspensionReason = ""
		}
		return &models.AuditLog{
			AdminID:    adminID,
			ActionType: moderation.ActionType(verb, moderation.User),
			EntityType: models.EntityUser,
			EntityID:   targetID,
			Details:    models.MustJSON(map[string]any{"previous_status": previous, "reason": reason}),
			IPAddress:  ip,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	observability.RecordTransition(string(moderation.User), string(verb))
	cache.InvalidateDashboard(ctx)
	notifyUser(ctx, s.notifier, user.ID, notifications.Event{
		Type:       notifications.EventAccountStatus,
		EntityType: models.EntityUser,
		EntityID:   user.ID,
		Status:     string(user.AccountStatus),
		Message:    reason,
	})
	deliverMail(ctx, s.mail, mailer.TemplateAccountStatus, user.Email, mailer.Data{
		Status: accountStatusLabel(user.AccountStatus),
		Reason: reason,
	})
	return user, nil
}

func accountStatusLabel(status models.AccountStatus) string {
	switch status {
	case models.AccountActive:
		return "activa"
	case models.AccountSuspended:
		return "suspendida"
	}
	return string(status)
}

// Impersonate issues a short-lived token for targetID carrying adminID as
// the impersonator. Every impersonation is audited.
func (s *AdminService) Impersonate(ctx context.Context, adminID, targetID uint, ip string) (*ImpersonationResult, error) {
	if !s.flags.Enabled(featureflags.AdminImpersonation, adminID) {
		return nil, models.NewForbiddenError("Impersonation is disabled")
	}
	if adminID == targetID {
		return nil, models.NewForbiddenError("You cannot impersonate yourself")
	}
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.IsAdmin() {
		return nil, models.NewForbiddenError("Admin accounts cannot be impersonated")
	}
	if target.AccountStatus == models.AccountClosed {
		return nil, models.NewForbiddenError("Closed accounts cannot be impersonated")
	}

	token, claims, err := s.jwt.IssueImpersonation(target, adminID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	err = s.audit.Create(ctx, &models.AuditLog{
		AdminID:    adminID,
		ActionType: moderation.ActionType(moderation.Impersonate, moderation.User),
		EntityType: models.EntityUser,
		EntityID:   targetID,
		Details:    models.MustJSON(map[string]any{"jti": claims.ID, "expires_at": claims.ExpiresAt.Time}),
		IPAddress:  ip,
	})
	if err != nil {
		return nil, err
	}
	return &ImpersonationResult{
		Token:          token,
		ExpiresAt:      claims.ExpiresAt.Time,
		User:           target,
		ImpersonatorID: adminID,
	}, nil
}

// ListAuditLogs returns audit entries newest first.
func (s *AdminService) ListAuditLogs(ctx context.Context, filter models.AuditFilter) (models.Page[models.AuditLog], error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return models.Page[models.AuditLog]{}, models.NewValidationError("from_date must not be after to_date")
	}
	entries, total, err := s.audit.List(ctx, filter)
	if err != nil {
		return models.Page[models.AuditLog]{}, err
	}
	return models.NewPage(entries, total), nil
}
