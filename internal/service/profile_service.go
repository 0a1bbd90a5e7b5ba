package service

import (
	"context"
	"strings"
	"time"

	"empleos/internal/models"
	"empleos/internal/repository"
	"empleos/internal/validation"
)

// ProfileService manages the job seeker profile and the company profile.
type ProfileService struct {
	profiles  repository.ProfileRepository
	companies repository.CompanyRepository
}

// NewProfileService returns a ProfileService.
func NewProfileService(profiles repository.ProfileRepository, companies repository.CompanyRepository) *ProfileService {
	return &ProfileService{profiles: profiles, companies: companies}
}

// UpdateProfileInput carries the editable job seeker fields. Nil fields are
// left unchanged.
type UpdateProfileInput struct {
	FirstName            *string    `json:"first_name"`
	LastName             *string    `json:"last_name"`
	RUT                  *string    `json:"rut"`
	Phone                *string    `json:"phone"`
	BirthDate            *time.Time `json:"birth_date"`
	City                 *string    `json:"city"`
	Region               *string    `json:"region"`
	Headline             *string    `json:"headline"`
	Bio                  *string    `json:"bio"`
	DisabilityCredential *bool      `json:"disability_credential"`
	AccessibilityNeeds   *string    `json:"accessibility_needs"`
}

// GetProfile returns the job seeker profile of userID.
func (s *ProfileService) GetProfile(ctx context.Context, userID uint) (*models.JobSeekerProfile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

// UpdateProfile applies in to the profile of userID.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.JobSeekerProfile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		if strings.TrimSpace(*in.FirstName) == "" {
			return nil, models.NewValidationError("first_name must not be empty")
		}
		profile.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		if strings.TrimSpace(*in.LastName) == "" {
			return nil, models.NewValidationError("last_name must not be empty")
		}
		profile.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.RUT != nil {
		if *in.RUT == "" {
			profile.RUT = ""
		} else {
			if err := validation.ValidateRUT(*in.RUT); err != nil {
				return nil, models.NewValidationError(err.Error())
			}
			profile.RUT = validation.NormalizeRUT(*in.RUT)
		}
	}
	if in.Bio != nil && len([]rune(*in.Bio)) > 2000 {
		return nil, models.NewValidationError("bio must be at most 2000 characters")
	}
	if in.BirthDate != nil && in.BirthDate.After(time.Now()) {
		return nil, models.NewValidationError("birth_date must be in the past")
	}

	setString(&profile.Phone, in.Phone)
	setString(&profile.City, in.City)
	setString(&profile.Region, in.Region)
	setString(&profile.Headline, in.Headline)
	setString(&profile.Bio, in.Bio)
	setString(&profile.AccessibilityNeeds, in.AccessibilityNeeds)
	if in.BirthDate != nil {
		profile.BirthDate = in.BirthDate
	}
	if in.DisabilityCredential != nil {
		profile.DisabilityCredential = *in.DisabilityCredential
	}

	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// UpdateCompanyInput carries the editable company fields. The RUT and the
// moderation fields are not editable.
type UpdateCompanyInput struct {
	BusinessName *string `json:"business_name"`
	LegalName    *string `json:"legal_name"`
	Industry     *string `json:"industry"`
	Size         *string `json:"size"`
	Website      *string `json:"website"`
	Description  *string `json:"description"`
	Address      *string `json:"address"`
	City         *string `json:"city"`
	Region       *string `json:"region"`
	Phone        *string `json:"phone"`
	LogoURL      *string `json:"logo_url"`
}

// GetCompanyProfile returns the company owned by userID.
func (s *ProfileService) GetCompanyProfile(ctx context.Context, userID uint) (*models.Company, error) {
	return s.companies.GetByUserID(ctx, userID)
}

// UpdateCompanyProfile applies in to the company owned by userID.
func (s *ProfileService) UpdateCompanyProfile(ctx context.Context, userID uint, in UpdateCompanyInput) (*models.Company, error) {
	company, err := s.companies.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.BusinessName != nil && strings.TrimSpace(*in.BusinessName) == "" {
		return nil, models.NewValidationError("business_name must not be empty")
	}

	setString(&company.BusinessName, in.BusinessName)
	setString(&company.LegalName, in.LegalName)
	setString(&company.Industry, in.Industry)
	setString(&company.Size, in.Size)
	setString(&company.Website, in.Website)
	setString(&company.Description, in.Description)
	setString(&company.Address, in.Address)
	setString(&company.City, in.City)
	setString(&company.Region, in.Region)
	setString(&company.Phone, in.Phone)
	setString(&company.LogoURL, in.LogoURL)

	if err := s.companies.UpdateProfile(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// ItemService is CRUD over one kind of CV entry of the acting job seeker.
type ItemService[E any, P repository.OwnedItem[E]] struct {
	repo     repository.ItemRepository[E, P]
	validate func(P) error
}

// NewItemService returns an ItemService; validate runs before every write.
func NewItemService[E any, P repository.OwnedItem[E]](repo repository.ItemRepository[E, P], validate func(P) error) *ItemService[E, P] {
	return &ItemService[E, P]{repo: repo, validate: validate}
}

// List returns the entries of userID.
func (s *ItemService[E, P]) List(ctx context.Context, userID uint) ([]E, error) {
	return s.repo.List(ctx, userID)
}

// Create adds item for userID.
func (s *ItemService[E, P]) Create(ctx context.Context, userID uint, item P) error {
	if err := s.check(item); err != nil {
		return err
	}
	return s.repo.Create(ctx, userID, item)
}

// Update replaces the entry item identifies; it must belong to userID.
func (s *ItemService[E, P]) Update(ctx context.Context, userID uint, item P) error {
	if err := s.check(item); err != nil {
		return err
	}
	return s.repo.Update(ctx, userID, item)
}

// Delete removes entry id of userID.
func (s *ItemService[E, P]) Delete(ctx context.Context, userID, id uint) error {
	return s.repo.Delete(ctx, userID, id)
}

func (s *ItemService[E, P]) check(item P) error {
	if s.validate == nil {
		return nil
	}
	return s.validate(item)
}

// ValidateEducation requires institution and degree and a coherent period.
func ValidateEducation(e *models.Education) error {
	if strings.TrimSpace(e.Institution) == "" || strings.TrimSpace(e.Degree) == "" {
		return models.NewValidationError("institution and degree are required")
	}
	return validatePeriod(e.StartDate, e.EndDate, e.Current)
}

// ValidateExperience requires company and position and a coherent period.
func ValidateExperience(e *models.Experience) error {
	if strings.TrimSpace(e.Company) == "" || strings.TrimSpace(e.Position) == "" {
		return models.NewValidationError("company and position are required")
	}
	return validatePeriod(e.StartDate, e.EndDate, e.Current)
}

// ValidateSkill requires a name.
func ValidateSkill(s *models.Skill) error {
	if strings.TrimSpace(s.Name) == "" {
		return models.NewValidationError("name is required")
	}
	return nil
}

// ValidateLanguage requires a name.
func ValidateLanguage(l *models.Language) error {
	if strings.TrimSpace(l.Name) == "" {
		return models.NewValidationError("name is required")
	}
	return nil
}

// ValidatePortfolioItem requires a title; URL, when set, must be http(s).
func ValidatePortfolioItem(p *models.PortfolioItem) error {
	if strings.TrimSpace(p.Title) == "" {
		return models.NewValidationError("title is required")
	}
	if p.URL != "" && !strings.HasPrefix(p.URL, "http://") && !strings.HasPrefix(p.URL, "https://") {
		return models.NewValidationError("url must start with http:// or https://")
	}
	return nil
}

func validatePeriod(start, end *time.Time, current bool) error {
	if current && end != nil {
		return models.NewValidationError("current entries must not have an end_date")
	}
	if start != nil && end != nil && end.Before(*start) {
		return models.NewValidationError("end_date must not be before start_date")
	}
	return nil
}
