package service

import (
	"context"
	"strings"
	"time"

	"empleos/internal/auth"
	"empleos/internal/mailer"
	"empleos/internal/models"
	"empleos/internal/observability"
	"empleos/internal/repository"
	"empleos/internal/validation"
)

const (
	verifyEmailTTL   = 48 * time.Hour
	passwordResetTTL = time.Hour
)

// AuthService handles registration, login and the e-mail token flows.
type AuthService struct {
	users       repository.UserRepository
	companies   repository.CompanyRepository
	tokens      repository.TokenRepository
	settings    *SettingsService
	jwt         *auth.TokenManager
	mail        mailer.Mailer
	frontendURL string
	now         func() time.Time
}

// NewAuthService returns an AuthService. frontendURL is the base of links
// sent by e-mail.
func NewAuthService(
	users repository.UserRepository,
	companies repository.CompanyRepository,
	tokens repository.TokenRepository,
	settings *SettingsService,
	jwt *auth.TokenManager,
	mail mailer.Mailer,
	frontendURL string,
) *AuthService {
	return &AuthService{
		users:       users,
		companies:   companies,
		tokens:      tokens,
		settings:    settings,
		jwt:         jwt,
		mail:        mail,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         time.Now,
	}
}

// RegisterJobSeekerInput is the job seeker sign-up form.
type RegisterJobSeekerInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	RUT       string `json:"rut"`
	Phone     string `json:"phone"`
}

// RegisterCompanyInput is the company sign-up form.
type RegisterCompanyInput struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	BusinessName string `json:"business_name"`
	LegalName    string `json:"legal_name"`
	RUT          string `json:"rut"`
	Industry     string `json:"industry"`
	Size         string `json:"size"`
	Website      string `json:"website"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Region       string `json:"region"`
	Phone        string `json:"phone"`
}

// RegisterOMILInput is the OMIL sign-up form.
type RegisterOMILInput struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	Municipality string `json:"municipality"`
	Region       string `json:"region"`
	ContactName  string `json:"contact_name"`
	Phone        string `json:"phone"`
}

// LoginResult is returned by Login.
type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      *models.User    `json:"user"`
	Company   *models.Company `json:"company,omitempty"`
}

func (s *AuthService) newAccount(email, password string, userType models.UserType) (*models.User, error) {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &models.User{
		Email:         email,
		Password:      hash,
		UserType:      userType,
		AccountStatus: models.AccountPendingVerification,
	}, nil
}

type field struct{ name, value string }

// required reports the first blank field, in argument order.
func required(fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return models.NewValidationError(f.name + " is required")
		}
	}
	return nil
}

// RegisterJobSeeker creates a job seeker with an empty profile and sends
// the verification e-mail.
func (s *AuthService) RegisterJobSeeker(ctx context.Context, in RegisterJobSeekerInput) (*models.User, error) {
	if err := required(field{"first_name", in.FirstName}, field{"last_name", in.LastName}); err != nil {
		return nil, err
	}
	user, err := s.newAccount(in.Email, in.Password, models.UserTypeJobSeeker)
	if err != nil {
		return nil, err
	}

	profile := &models.JobSeekerProfile{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     strings.TrimSpace(in.Phone),
	}
	if in.RUT != "" {
		if err := validation.ValidateRUT(in.RUT); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		profile.RUT = validation.NormalizeRUT(in.RUT)
	}

	if err := s.users.CreateJobSeeker(ctx, user, profile); err != nil {
		return nil, err
	}
	s.sendVerification(ctx, user)
	return user, nil
}

// RegisterCompany creates the company user and its pending company.
func (s *AuthService) RegisterCompany(ctx context.Context, in RegisterCompanyInput) (*models.User, *models.Company, error) {
	if !s.settings.Bool(ctx, models.SettingAllowCompanyRegistration, true) {
		return nil, nil, models.NewForbiddenError("Company registration is disabled")
	}
	if err := required(field{"business_name", in.BusinessName}, field{"rut", in.RUT}); err != nil {
		return nil, nil, err
	}
	if err := validation.ValidateRUT(in.RUT); err != nil {
		return nil, nil, models.NewValidationError(err.Error())
	}
	user, err := s.newAccount(in.Email, in.Password, models.UserTypeCompany)
	if err != nil {
		return nil, nil, err
	}

	company := &models.Company{
		BusinessName: strings.TrimSpace(in.BusinessName),
		LegalName:    strings.TrimSpace(in.LegalName),
		RUT:          validation.NormalizeRUT(in.RUT),
		Industry:     in.Industry,
		Size:         in.Size,
		Website:      in.Website,
		Address:      in.Address,
		City:         in.City,
		Region:       in.Region,
		Phone:        in.Phone,
		Status:       models.StatusPendingApproval,
	}
	if err := s.users.CreateCompanyAccount(ctx, user, company); err != nil {
		return nil, nil, err
	}
	s.sendVerification(ctx, user)
	return user, company, nil
}

// RegisterOMIL creates the OMIL user and its pending organization.
func (s *AuthService) RegisterOMIL(ctx context.Context, in RegisterOMILInput) (*models.User, *models.OMILOrganization, error) {
	if !s.settings.Bool(ctx, models.SettingAllowOMILRegistration, true) {
		return nil, nil, models.NewForbiddenError("OMIL registration is disabled")
	}
	if err := required(field{"name", in.Name}, field{"municipality", in.Municipality}); err != nil {
		return nil, nil, err
	}
	user, err := s.newAccount(in.Email, in.Password, models.UserTypeOMIL)
	if err != nil {
		return nil, nil, err
	}

	org := &models.OMILOrganization{
		Name:         strings.TrimSpace(in.Name),
		Municipality: strings.TrimSpace(in.Municipality),
		Region:       in.Region,
		ContactName:  in.ContactName,
		Phone:        in.Phone,
		Status:       models.StatusPendingApproval,
	}
	if err := s.users.CreateOMILAccount(ctx, user, org); err != nil {
		return nil, nil, err
	}
	s.sendVerification(ctx, user)
	return user, org, nil
}

// Login checks credentials and account state. portal restricts the
// accepted user type; empty accepts any.
func (s *AuthService) Login(ctx context.Context, email, password string, portal models.UserType) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		auth.CheckAbsentPassword(password)
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if portal != "" && user.UserType != portal {
		return nil, models.NewForbiddenError("This account cannot sign in here")
	}

	switch user.AccountStatus {
	case models.AccountActive:
	case models.AccountPendingVerification:
		return nil, models.NewForbiddenError("Email address not verified")
	case models.AccountSuspended:
		return nil, models.NewForbiddenError("Account suspended")
	default:
		return nil, models.NewForbiddenError("Account closed")
	}

	token, claims, err := s.jwt.Issue(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		observability.LogAsyncError(ctx, "auth.touch_last_login", err, map[string]any{"user_id": user.ID})
	} else {
		user.LastLoginAt = &now
	}

	result := &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}
	if user.UserType == models.UserTypeCompany {
		company, err := s.companies.GetByUserID(ctx, user.ID)
		if err != nil && !models.IsCode(err, models.CodeNotFound) {
			return nil, err
		}
		result.Company = company
	}
	return result, nil
}

// Logout revokes the presented token.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := s.jwt.Revoke(ctx, claims); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// VerifyEmail consumes a verification token and activates the account.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return models.NewValidationError("token is required")
	}
	consumed, err := s.tokens.Consume(ctx, auth.DigestToken(token), models.TokenVerifyEmail, s.now().UTC())
	if err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, consumed.UserID)
	if err != nil {
		return err
	}
	if user.AccountStatus != models.AccountPendingVerification {
		return nil
	}
	now := s.now().UTC()
	user.AccountStatus = models.AccountActive
	user.EmailVerifiedAt = &now
	return s.users.Update(ctx, user)
}

// ForgotPassword issues a reset token when email belongs to an account.
// It reports success either way.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil || user.AccountStatus == models.AccountClosed {
		return nil
	}

	token, err := s.issueToken(ctx, user.ID, models.TokenPasswordReset, passwordResetTTL)
	if err != nil {
		return err
	}
	deliverMail(ctx, s.mail, mailer.TemplatePasswordReset, user.Email, mailer.Data{
		Link:     s.frontendURL + "/reset-password?token=" + token,
		ValidFor: "1 hora",
	})
	return nil
}

// ResetPassword consumes a reset token and stores the new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if strings.TrimSpace(token) == "" {
		return models.NewValidationError("token is required")
	}
	if err := validation.ValidatePassword(password); err != nil {
		return models.NewValidationError(err.Error())
	}
	consumed, err := s.tokens.Consume(ctx, auth.DigestToken(token), models.TokenPasswordReset, s.now().UTC())
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.users.UpdatePassword(ctx, consumed.UserID, hash)
}

// ResendVerification issues a fresh verification token for a pending
// account. Unknown or already verified addresses are ignored.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil || user == nil || user.AccountStatus != models.AccountPendingVerification {
		return err
	}
	s.sendVerification(ctx, user)
	return nil
}

func (s *AuthService) sendVerification(ctx context.Context, user *models.User) {
	token, err := s.issueToken(ctx, user.ID, models.TokenVerifyEmail, verifyEmailTTL)
	if err != nil {
		observability.LogAsyncError(ctx, "auth.verification_token", err, map[string]any{"user_id": user.ID})
		return
	}
	deliverMail(ctx, s.mail, mailer.TemplateVerifyEmail, user.Email, mailer.Data{
		Link:     s.frontendURL + "/verify-email?token=" + token,
		ValidFor: "48 horas",
	})
}

// issueToken replaces any unused token of tokenType with a new one.
func (s *AuthService) issueToken(ctx context.Context, userID uint, tokenType models.TokenType, ttl time.Duration) (string, error) {
	if err := s.tokens.DeleteUnused(ctx, userID, tokenType); err != nil {
		return "", err
	}
	token, digest, err := auth.NewOpaqueToken()
	if err != nil {
		return "", models.NewInternalError(err)
	}
	err = s.tokens.Create(ctx, &models.UserToken{
		UserID:    userID,
		TokenHash: digest,
		TokenType: tokenType,
		ExpiresAt: s.now().UTC().Add(ttl),
	})
	if err != nil {
		return "", err
	}
	return token, nil
}
