package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles. Jobseekers receive push notifications; employers own
// companies and postings; admins can drive the scheduler by hand.
const (
	RoleJobseeker = "jobseeker"
	RoleEmployer  = "employer"
	RoleAdmin     = "admin"
)

// Job lifecycle states.
const (
	JobStatusActive   = "active"
	JobStatusInactive = "inactive"
	JobStatusDraft    = "draft"
)

// Application lifecycle states.
const (
	ApplicationPending     = "pending"
	ApplicationReviewing   = "reviewing"
	ApplicationShortlisted = "shortlisted"
	ApplicationRejected    = "rejected"
	ApplicationHired       = "hired"
)

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	FirstName   string `gorm:"not null" json:"first_name"`
	LastName    string `gorm:"not null" json:"last_name"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	Password    string `gorm:"not null" json:"-"`
	Role        string `gorm:"index;default:'jobseeker'" json:"role"`
	PhoneNumber string `json:"phone_number,omitempty"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	// FCMToken is the device push registration for this user. Nil means
	// the user never opted into notifications (or the token was cleaned
	// up after the gateway reported it unregistered).
	FCMToken *string `gorm:"type:varchar(500)" json:"-"`

	PostedJobs   []Job            `gorm:"foreignKey:EmployerID" json:"posted_jobs,omitempty"`
	Applications []JobApplication `gorm:"foreignKey:UserID" json:"applications,omitempty"`
}

type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Website     string `json:"website,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`
	Location    string `json:"location,omitempty"`

	// Owning employer account.
	UserID uint `gorm:"index" json:"user_id"`

	Jobs []Job `json:"jobs,omitempty"`
}

type Category struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool   `gorm:"index;default:true" json:"is_active"`

	Jobs []Job `gorm:"many2many:job_categories;" json:"jobs,omitempty"`
}

type Job struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title       string `gorm:"not null" json:"title"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text;not null" json:"description"`
	Location    string `gorm:"not null" json:"location"`
	Salary      string `json:"salary,omitempty"`
	JobType     string `gorm:"not null" json:"job_type"`
	Experience  string `json:"experience,omitempty"`
	Skills      string `json:"skills,omitempty"`
	Status      string `gorm:"index;default:'active'" json:"status"`
	ApplyLink   string `json:"apply_link,omitempty"`
	Tags        string `json:"tags,omitempty"`
	Country     string `json:"country,omitempty"`
	IsFeatured  bool   `gorm:"default:false" json:"is_featured"`
	Vacancy     int    `gorm:"default:1" json:"vacancy"`
	Views       int    `gorm:"default:0" json:"views"`

	EmployerID uint    `gorm:"index;not null" json:"employer_id"`
	CompanyID  uint    `gorm:"index;not null" json:"company_id"`
	Company    Company `json:"company"`

	Categories []Category `gorm:"many2many:job_categories;" json:"categories,omitempty"`

	Applications []JobApplication `gorm:"foreignKey:JobID" json:"applications,omitempty"`
}

type JobApplication struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	JobID  uint `gorm:"uniqueIndex:idx_applications_job_user;not null" json:"job_id"`
	UserID uint `gorm:"uniqueIndex:idx_applications_job_user;not null" json:"user_id"`

	Job  Job  `json:"job,omitempty"`
	User User `json:"user,omitempty"`

	CoverLetter string `gorm:"type:text" json:"cover_letter,omitempty"`
	ResumeLink  string `json:"resume_link,omitempty"`
	Status      string `gorm:"index;default:'pending'" json:"status"`
}
