// Package seed provides helpers to create demo data for the job board.
// These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"strings"
	"time"

	"empleos/internal/models"
	"empleos/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "Demo12345"

var (
	regions = []string{
		"Metropolitana", "Valparaíso", "Biobío", "Araucanía", "Los Lagos",
		"Antofagasta", "Coquimbo", "Maule", "O'Higgins", "Ñuble",
	}
	industries = []string{
		"Retail", "Tecnología", "Salud", "Educación", "Logística",
		"Construcción", "Servicios financieros", "Alimentación", "Turismo",
	}
	companySizes = []string{"micro", "pequeña", "mediana", "grande"}
	jobTypes     = []models.JobType{
		models.JobTypeFullTime, models.JobTypePartTime, models.JobTypeContract,
		models.JobTypeInternship, models.JobTypeTemporary,
	}
	workModes        = []models.WorkMode{models.WorkModeOnsite, models.WorkModeRemote, models.WorkModeHybrid}
	inclusiveNotes   = []string{"Accesibilidad universal en oficinas", "Intérprete de lengua de señas disponible", "Horario flexible", "Apoyo de tutor laboral", "Software lector de pantalla"}
	rejectionReasons = []string{
		"La información de la empresa no pudo ser verificada",
		"La descripción no cumple las políticas de publicación",
		"Faltan datos de contacto válidos de la organización",
	}
)

// Factory builds domain entities and persists them to the database.
// In DryRun mode nothing is written and synthetic IDs are assigned.
type Factory struct {
	db   *gorm.DB
	opts Options
	fake *gofakeit.Faker
	now  time.Time
	hash string
	// synthetic ID counter when running in DryRun mode
	nextID uint
	ruts   map[string]bool
	emails map[string]bool
}

// NewFactory creates a Factory bound to db. seed 0 picks a random seed.
func NewFactory(db *gorm.DB, opts Options, seed int64) (*Factory, error) {
	cost := bcrypt.DefaultCost
	if opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	return &Factory{
		db:     db,
		opts:   opts,
		fake:   gofakeit.New(seed),
		now:    time.Now().UTC(),
		hash:   string(hash),
		nextID: 1000,
		ruts:   make(map[string]bool),
		emails: make(map[string]bool),
	}, nil
}

func (f *Factory) create(kind string, value any, setID func(uint)) error {
	if f.opts.DryRun {
		f.nextID++
		setID(f.nextID)
		log.Printf("[dry-run] create %s id=%d", kind, f.nextID)
		return nil
	}
	return f.db.Create(value).Error
}

// createdAt returns a timestamp spread over the last MaxDays days.
func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	start := f.now.AddDate(0, 0, -maxDays)
	return f.fake.DateRange(start, f.now)
}

// RUT returns an unused, valid RUT in [min, max].
func (f *Factory) RUT(min, max int) string {
	for {
		rut := validation.FormatRUT(f.fake.Number(min, max))
		if !f.ruts[rut] {
			f.ruts[rut] = true
			return rut
		}
	}
}

func (f *Factory) email(local, domain string) string {
	base := strings.ToLower(strings.NewReplacer(" ", ".", "'", "").Replace(local))
	for i := 0; ; i++ {
		candidate := fmt.Sprintf("%s@%s", base, domain)
		if i > 0 {
			candidate = fmt.Sprintf("%s%d@%s", base, i, domain)
		}
		if !f.emails[candidate] {
			f.emails[candidate] = true
			return candidate
		}
	}
}

// CreateUser persists an active user of userType. Overrides run before saving.
func (f *Factory) CreateUser(userType models.UserType, email string, overrides ...func(*models.User)) (*models.User, error) {
	created := f.createdAt()
	user := &models.User{
		Email:           email,
		Password:        f.hash,
		UserType:        userType,
		AccountStatus:   models.AccountActive,
		EmailVerifiedAt: &created,
		CreatedAt:       created,
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.create("user", user, func(id uint) { user.ID = id }); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateJobSeeker persists a job seeker with a filled-in profile and CV.
func (f *Factory) CreateJobSeeker() (*models.User, *models.JobSeekerProfile, error) {
	first, last := f.fake.FirstName(), f.fake.LastName()
	user, err := f.CreateUser(models.UserTypeJobSeeker, f.email(first+"."+last, "demo.empleos.cl"))
	if err != nil {
		return nil, nil, err
	}

	profile := &models.JobSeekerProfile{
		UserID:               user.ID,
		FirstName:            first,
		LastName:             last,
		RUT:                  f.RUT(10_000_000, 25_999_999),
		Phone:                "+569" + f.fake.Numerify("########"),
		City:                 f.fake.City(),
		Region:               f.fake.RandomString(regions),
		Headline:             f.fake.JobTitle(),
		Bio:                  f.fake.Paragraph(1, 3, 10, " "),
		DisabilityCredential: f.fake.Number(0, 100) < 40,
	}
	if profile.DisabilityCredential {
		profile.AccessibilityNeeds = f.fake.RandomString(inclusiveNotes)
	}
	if err := f.create("profile", profile, func(id uint) { profile.ID = id }); err != nil {
		return nil, nil, err
	}

	started := f.now.AddDate(-f.fake.Number(1, 8), 0, 0)
	experience := &models.Experience{
		UserID:      user.ID,
		Company:     f.fake.Company(),
		Position:    f.fake.JobTitle(),
		Description: f.fake.Sentence(12),
		StartDate:   &started,
		Current:     true,
	}
	if err := f.create("experience", experience, func(id uint) { experience.ID = id }); err != nil {
		return nil, nil, err
	}
	skill := &models.Skill{UserID: user.ID, Name: f.fake.HackerNoun(), Level: f.fake.RandomString([]string{"básico", "intermedio", "avanzado"})}
	if err := f.create("skill", skill, func(id uint) { skill.ID = id }); err != nil {
		return nil, nil, err
	}
	return user, profile, nil
}

// CreateCompany persists a company in status together with its owner.
// Active and rejected companies are stamped as reviewed by adminID.
func (f *Factory) CreateCompany(status models.ModerationStatus, adminID uint) (*models.Company, error) {
	name := f.fake.Company()
	owner, err := f.CreateUser(models.UserTypeCompany, f.email("rrhh."+name, "empresa.demo.cl"))
	if err != nil {
		return nil, err
	}

	company := &models.Company{
		UserID:       owner.ID,
		BusinessName: name,
		LegalName:    name + " " + f.fake.CompanySuffix(),
		RUT:          f.RUT(76_000_000, 77_999_999),
		Industry:     f.fake.RandomString(industries),
		Size:         f.fake.RandomString(companySizes),
		Website:      f.fake.URL(),
		Description:  f.fake.Paragraph(1, 2, 12, " "),
		City:         f.fake.City(),
		Region:       f.fake.RandomString(regions),
		Phone:        "+562" + f.fake.Numerify("########"),
		Status:       status,
		CreatedAt:    owner.CreatedAt,
	}
	f.review(&company.Review, status, adminID, company.CreatedAt)
	if err := f.create("company", company, func(id uint) { company.ID = id }); err != nil {
		return nil, err
	}
	company.User = owner
	return company, nil
}

// CreateOMIL persists an OMIL organization in status with its owner.
func (f *Factory) CreateOMIL(status models.ModerationStatus, adminID uint) (*models.OMILOrganization, error) {
	municipality := f.fake.City()
	owner, err := f.CreateUser(models.UserTypeOMIL, f.email("omil."+municipality, "municipio.demo.cl"))
	if err != nil {
		return nil, err
	}

	org := &models.OMILOrganization{
		UserID:       owner.ID,
		Name:         "OMIL " + municipality,
		Municipality: municipality,
		Region:       f.fake.RandomString(regions),
		ContactName:  f.fake.Name(),
		Phone:        "+562" + f.fake.Numerify("########"),
		Status:       status,
		CreatedAt:    owner.CreatedAt,
	}
	f.review(&org.Review, status, adminID, org.CreatedAt)
	if status == models.StatusActive {
		org.ApprovalNotes = "Convenio municipal verificado"
	}
	if err := f.create("omil", org, func(id uint) { org.ID = id }); err != nil {
		return nil, err
	}
	return org, nil
}

// CreateJob persists a posting of company in status.
func (f *Factory) CreateJob(company *models.Company, status models.ModerationStatus, adminID uint) (*models.Job, error) {
	salaryMin := int64(f.fake.Number(5, 15)) * 100_000
	salaryMax := salaryMin + int64(f.fake.Number(1, 8))*100_000
	created := f.createdAt()
	if created.Before(company.CreatedAt) {
		created = company.CreatedAt
	}

	job := &models.Job{
		CompanyID:    company.ID,
		Title:        f.fake.JobTitle(),
		Description:  f.fake.Paragraph(2, 3, 12, "\n\n"),
		Requirements: f.fake.Sentence(14),
		Benefits:     f.fake.Sentence(8),
		Location:     company.City,
		Region:       company.Region,
		JobType:      jobTypes[f.fake.Number(0, len(jobTypes)-1)],
		WorkMode:     workModes[f.fake.Number(0, len(workModes)-1)],
		SalaryMin:    &salaryMin,
		SalaryMax:    &salaryMax,
		Vacancies:    f.fake.Number(1, 5),
		Inclusive:    f.fake.RandomString(inclusiveNotes),
		Status:       status,
		CreatedAt:    created,
	}
	if status != models.StatusDraft {
		job.SubmittedAt = &created
	}
	f.review(&job.Review, status, adminID, created)
	if status == models.StatusClosed {
		closed := created.Add(72 * time.Hour)
		job.ClosedAt = &closed
	}
	if err := f.create("job", job, func(id uint) { job.ID = id }); err != nil {
		return nil, err
	}
	job.Company = company
	return job, nil
}

// CreateApplication persists an application of seeker to job.
func (f *Factory) CreateApplication(seeker *models.User, job *models.Job) (*models.Application, error) {
	created := f.createdAt()
	if created.Before(job.CreatedAt) {
		created = job.CreatedAt
	}
	app := &models.Application{
		JobID:       job.ID,
		JobSeekerID: seeker.ID,
		Status:      models.ApplicationStatuses[f.fake.Number(0, len(models.ApplicationStatuses)-1)],
		CoverLetter: f.fake.Paragraph(1, 2, 10, " "),
		CreatedAt:   created,
	}
	if err := f.create("application", app, func(id uint) { app.ID = id }); err != nil {
		return nil, err
	}
	return app, nil
}

// CreateSavedJob persists a bookmark of job by seeker.
func (f *Factory) CreateSavedJob(seeker *models.User, job *models.Job) (*models.SavedJob, error) {
	saved := &models.SavedJob{JobSeekerID: seeker.ID, JobID: job.ID, CreatedAt: f.createdAt()}
	if err := f.create("saved job", saved, func(id uint) { saved.ID = id }); err != nil {
		return nil, err
	}
	return saved, nil
}

// CreateAudit persists the audit entry of a seeded moderation decision.
func (f *Factory) CreateAudit(adminID uint, entity string, entityID uint, status models.ModerationStatus, at time.Time) error {
	verb := "approve"
	details := map[string]any{"previous_status": models.StatusPendingApproval}
	if status == models.StatusRejected {
		verb = "reject"
		details["reason"] = rejectionReasons[0]
	}
	entry := &models.AuditLog{
		AdminID:    adminID,
		ActionType: verb + "_" + entity,
		EntityType: entity,
		EntityID:   entityID,
		Details:    models.MustJSON(details),
		IPAddress:  "127.0.0.1",
		CreatedAt:  at,
	}
	return f.create("audit log", entry, func(id uint) { entry.ID = id })
}

// review stamps r consistently with status.
func (f *Factory) review(r *models.Review, status models.ModerationStatus, adminID uint, created time.Time) {
	at := created.Add(time.Duration(f.fake.Number(1, 48)) * time.Hour)
	switch status {
	case models.StatusActive, models.StatusClosed:
		r.MarkApproved(adminID, at)
	case models.StatusRejected:
		r.MarkRejected(adminID, f.fake.RandomString(rejectionReasons), at)
	}
}
