package models

import "time"

// JobSeekerProfile holds the personal data of a job seeker.
type JobSeekerProfile struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	UserID               uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	FirstName            string     `gorm:"size:100;not null" json:"first_name"`
	LastName             string     `gorm:"size:100;not null" json:"last_name"`
	RUT                  string     `gorm:"size:12;index" json:"rut,omitempty"`
	Phone                string     `gorm:"size:30" json:"phone,omitempty"`
	BirthDate            *time.Time `json:"birth_date,omitempty"`
	City                 string     `gorm:"size:100" json:"city,omitempty"`
	Region               string     `gorm:"size:100" json:"region,omitempty"`
	Headline             string     `gorm:"size:200" json:"headline,omitempty"`
	Bio                  string     `gorm:"type:text" json:"bio,omitempty"`
	DisabilityCredential bool       `gorm:"not null;default:false" json:"disability_credential"`
	AccessibilityNeeds   string     `gorm:"type:text" json:"accessibility_needs,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// OwnedItem is implemented by profile entries that belong to one job seeker.
type OwnedItem interface {
	OwnerID() uint
	SetOwnerID(id uint)
	ItemID() uint
	SetItemID(id uint)
}

// Education is a study entry of a job seeker's CV.
type Education struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"index;not null" json:"user_id"`
	Institution  string     `gorm:"size:200;not null" json:"institution"`
	Degree       string     `gorm:"size:200;not null" json:"degree"`
	FieldOfStudy string     `gorm:"size:200" json:"field_of_study,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Current      bool       `json:"current"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (e *Education) OwnerID() uint      { return e.UserID }
func (e *Education) SetOwnerID(id uint) { e.UserID = id }
func (e *Education) ItemID() uint       { return e.ID }
func (e *Education) SetItemID(id uint)  { e.ID = id }
func (Education) TableName() string     { return "educations" }

// Experience is a work history entry.
type Experience struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	Company     string     `gorm:"size:200;not null" json:"company"`
	Position    string     `gorm:"size:200;not null" json:"position"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Current     bool       `json:"current"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (e *Experience) OwnerID() uint      { return e.UserID }
func (e *Experience) SetOwnerID(id uint) { e.UserID = id }
func (e *Experience) ItemID() uint       { return e.ID }
func (e *Experience) SetItemID(id uint)  { e.ID = id }

// Skill is a self-declared competence.
type Skill struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Level     string    `gorm:"size:30" json:"level,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Skill) OwnerID() uint      { return s.UserID }
func (s *Skill) SetOwnerID(id uint) { s.UserID = id }
func (s *Skill) ItemID() uint       { return s.ID }
func (s *Skill) SetItemID(id uint)  { s.ID = id }

// Language is a spoken or signed language with proficiency.
type Language struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Proficiency string    `gorm:"size:30" json:"proficiency,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (l *Language) OwnerID() uint      { return l.UserID }
func (l *Language) SetOwnerID(id uint) { l.UserID = id }
func (l *Language) ItemID() uint       { return l.ID }
func (l *Language) SetItemID(id uint)  { l.ID = id }

// PortfolioItem links to external work samples.
type PortfolioItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	URL         string    `gorm:"size:500" json:"url,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *PortfolioItem) OwnerID() uint      { return p.UserID }
func (p *PortfolioItem) SetOwnerID(id uint) { p.UserID = id }
func (p *PortfolioItem) ItemID() uint       { return p.ID }
func (p *PortfolioItem) SetItemID(id uint)  { p.ID = id }
func (PortfolioItem) TableName() string     { return "portfolio_items" }
