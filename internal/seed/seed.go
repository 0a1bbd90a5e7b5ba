package seed

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"empleos/internal/models"
	"empleos/internal/repository"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed presets/*.yml
var presetFS embed.FS

// Options configuration for the seeder
type Options struct {
	Companies             int   `yaml:"companies"`
	JobsPerCompany        int   `yaml:"jobs_per_company"`
	Seekers               int   `yaml:"seekers"`
	OMILs                 int   `yaml:"omils"`
	ApplicationsPerSeeker int   `yaml:"applications_per_seeker"`
	SavedPerSeeker        int   `yaml:"saved_per_seeker"`
	MaxDays               int   `yaml:"max_days"`
	Seed                  int64 `yaml:"seed"`
	SkipBcrypt            bool  `yaml:"skip_bcrypt"`
	DryRun                bool  `yaml:"-"`
}

// DefaultOptions is a small but complete data set.
func DefaultOptions() Options {
	return Options{
		Companies:             8,
		JobsPerCompany:        4,
		Seekers:               25,
		OMILs:                 3,
		ApplicationsPerSeeker: 3,
		SavedPerSeeker:        2,
		MaxDays:               90,
	}
}

// LoadPreset reads options from a YAML file, or from a built-in preset
// when nameOrPath is not a file. Omitted keys keep their default.
func LoadPreset(nameOrPath string) (Options, error) {
	data, err := os.ReadFile(nameOrPath)
	if errors.Is(err, os.ErrNotExist) {
		data, err = presetFS.ReadFile("presets/" + nameOrPath + ".yml")
	}
	if err != nil {
		return Options{}, fmt.Errorf("preset %q not found: %w", nameOrPath, err)
	}
	return parsePreset(data)
}

func parsePreset(data []byte) (Options, error) {
	opts := DefaultOptions()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil {
		return Options{}, fmt.Errorf("decode preset: %w", err)
	}
	if opts.Companies < 0 || opts.JobsPerCompany < 0 || opts.Seekers < 0 || opts.OMILs < 0 ||
		opts.ApplicationsPerSeeker < 0 || opts.SavedPerSeeker < 0 {
		return Options{}, errors.New("preset counts must not be negative")
	}
	return opts, nil
}

// Summary counts what a run created.
type Summary struct {
	Companies    int
	OMILs        int
	Jobs         int
	Seekers      int
	Applications int
	SavedJobs    int
	AuditLogs    int
}

// Seeder populates a database with demo data.
type Seeder struct {
	db       *gorm.DB
	opts     Options
	settings repository.SettingRepository
}

// NewSeeder creates a Seeder for db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	s := &Seeder{db: db, opts: opts}
	if db != nil {
		s.settings = repository.NewSettingRepository(db)
	}
	return s
}

// companyStatus spreads companies over the moderation states: most are
// active, the rest wait in the queue or were rejected.
func companyStatus(i int) models.ModerationStatus {
	switch i % 5 {
	case 3:
		return models.StatusPendingApproval
	case 4:
		return models.StatusRejected
	}
	return models.StatusActive
}

var jobStatusCycle = []models.ModerationStatus{
	models.StatusActive, models.StatusActive, models.StatusPendingApproval,
	models.StatusDraft, models.StatusActive, models.StatusClosed, models.StatusRejected,
}

// Run seeds default settings and the demo data set.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	if !s.opts.DryRun {
		if err := s.settings.SeedDefaults(ctx); err != nil {
			return nil, fmt.Errorf("seed default settings: %w", err)
		}
	}

	f, err := NewFactory(s.db, s.opts, s.opts.Seed)
	if err != nil {
		return nil, err
	}
	sum := &Summary{}

	moderator, err := f.CreateUser(models.UserTypeAdmin, f.email("moderacion", "demo.empleos.cl"))
	if err != nil {
		return nil, fmt.Errorf("create moderator: %w", err)
	}

	audit := func(entity string, id uint, status models.ModerationStatus, reviewedAt *time.Time) error {
		if reviewedAt == nil {
			return nil
		}
		if err := f.CreateAudit(moderator.ID, entity, id, status, *reviewedAt); err != nil {
			return err
		}
		sum.AuditLogs++
		return nil
	}

	var activeJobs []*models.Job
	for i := 0; i < s.opts.Companies; i++ {
		company, err := f.CreateCompany(companyStatus(i), moderator.ID)
		if err != nil {
			return nil, fmt.Errorf("create company: %w", err)
		}
		sum.Companies++
		if err := audit(models.EntityCompany, company.ID, company.Status, company.ReviewedAt); err != nil {
			return nil, err
		}
		if company.Status != models.StatusActive {
			continue
		}

		for j := 0; j < s.opts.JobsPerCompany; j++ {
			job, err := f.CreateJob(company, jobStatusCycle[(i+j)%len(jobStatusCycle)], moderator.ID)
			if err != nil {
				return nil, fmt.Errorf("create job: %w", err)
			}
			sum.Jobs++
			if err := audit(models.EntityJob, job.ID, job.Status, job.ReviewedAt); err != nil {
				return nil, err
			}
			if job.Status == models.StatusActive {
				activeJobs = append(activeJobs, job)
			}
		}
	}

	for i := 0; i < s.opts.OMILs; i++ {
		org, err := f.CreateOMIL(companyStatus(i), moderator.ID)
		if err != nil {
			return nil, fmt.Errorf("create omil: %w", err)
		}
		sum.OMILs++
		if err := audit(models.EntityOMIL, org.ID, org.Status, org.ReviewedAt); err != nil {
			return nil, err
		}
	}

	for i := 0; i < s.opts.Seekers; i++ {
		seeker, _, err := f.CreateJobSeeker()
		if err != nil {
			return nil, fmt.Errorf("create job seeker: %w", err)
		}
		sum.Seekers++
		if len(activeJobs) == 0 {
			continue
		}

		// Distinct jobs per seeker keep the (seeker, job) pairs unique.
		applied := min(s.opts.ApplicationsPerSeeker, len(activeJobs))
		for k := 0; k < applied; k++ {
			if _, err := f.CreateApplication(seeker, activeJobs[(i+k)%len(activeJobs)]); err != nil {
				return nil, fmt.Errorf("create application: %w", err)
			}
			sum.Applications++
		}
		saved := min(s.opts.SavedPerSeeker, len(activeJobs))
		for k := 0; k < saved; k++ {
			if _, err := f.CreateSavedJob(seeker, activeJobs[(i+k+1)%len(activeJobs)]); err != nil {
				return nil, fmt.Errorf("create saved job: %w", err)
			}
			sum.SavedJobs++
		}
	}

	log.Printf("seeded %d companies, %d OMILs, %d jobs, %d job seekers, %d applications, %d saved jobs",
		sum.Companies, sum.OMILs, sum.Jobs, sum.Seekers, sum.Applications, sum.SavedJobs)
	return sum, nil
}

// clearOrder lists tables children first so foreign keys never block.
var clearOrder = []string{
	"saved_jobs", "applications", "jobs", "audit_logs", "user_tokens",
	"educations", "experiences", "skills", "languages", "portfolio_items",
	"job_seeker_profiles", "companies", "omil_organizations", "users",
}

// ClearAll deletes every domain row except system settings. Audit logs
// are removed with raw statements, bypassing their append-only hooks, so
// this must never run outside development.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range clearOrder {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}
